package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/program"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/submission"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/activities"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage/memory"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

type captureBroadcaster struct {
	events []string
}

func (c *captureBroadcaster) Broadcast(event string, _ any) {
	c.events = append(c.events, event)
}

func fixedNow() time.Time {
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func newService(t *testing.T) (*Service, *memory.Store, *captureBroadcaster) {
	t.Helper()
	store := memory.New()
	cast := &captureBroadcaster{}
	acts := activities.New(store, cast, logger.Nop())
	svc := New(store, store, store, nil, acts, cast, logger.Nop()).WithClock(fixedNow)
	return svc, store, cast
}

func seedProgram(t *testing.T, store *memory.Store, name string, published bool, criteria *program.RuleGroup) program.Program {
	t.Helper()
	p, err := store.CreateProgram(context.Background(), program.Program{Name: name, Published: published, Criteres: criteria})
	if err != nil {
		t.Fatalf("seed program: %v", err)
	}
	return p
}

func validForm() submission.Form {
	amount := 150000.0
	return submission.Form{
		ApplicantType:         submission.ApplicantPhysique,
		Email:                 "sara@example.com",
		Nom:                   "Alami",
		Prenom:                "Sara",
		Telephone:             "0612345678",
		Sexe:                  "femme",
		Age:                   29,
		SecteurTravail:        "industrie",
		Region:                "Casablanca-Settat",
		StatutJuridique:       "auto-entrepreneur",
		AnneeCreation:         "2024",
		MontantInvestissement: &amount,
		AcceptPrivacyPolicy:   true,
	}
}

func TestSubmitRejectsInvalidForm(t *testing.T) {
	svc, _, _ := newService(t)

	form := validForm()
	form.Email = ""

	_, err := svc.Submit(context.Background(), form)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["email"]; !ok {
		t.Fatalf("fields = %v", verr.Fields)
	}
}

func TestSubmitMatchesOnlyPublishedPrograms(t *testing.T) {
	svc, store, cast := newService(t)
	ctx := context.Background()

	openToAll := &program.RuleGroup{Combinator: program.CombinatorAnd}
	seedProgram(t, store, "published open", true, openToAll)
	seedProgram(t, store, "draft open", false, openToAll)
	seedProgram(t, store, "published strict", true, &program.RuleGroup{
		Rules: []program.RuleNode{
			{Rule: &program.Rule{Field: program.FieldApplicantType, Operator: program.OpEq, Value: "morale"}},
		},
	})

	result, err := svc.Submit(ctx, validForm())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(result.Programs) != 1 || result.Programs[0].Name != "published open" {
		t.Fatalf("matched = %+v", result.Programs)
	}
	if len(result.Test.MatchedPrograms) != 1 {
		t.Fatalf("persisted matches = %v", result.Test.MatchedPrograms)
	}

	// form:submitted plus the activity:new fan-out.
	foundSubmit := false
	for _, event := range cast.events {
		if event == EventFormSubmitted {
			foundSubmit = true
		}
	}
	if !foundSubmit {
		t.Fatalf("events = %v", cast.events)
	}
}

func TestSubmitNilCriteriaMatchesEverything(t *testing.T) {
	svc, store, _ := newService(t)
	seedProgram(t, store, "no criteria", true, nil)

	result, err := svc.Submit(context.Background(), validForm())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(result.Programs) != 1 {
		t.Fatalf("matched = %+v", result.Programs)
	}
}

func TestSubmitReusesPersonByEmail(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, validForm())
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	form := validForm()
	form.Email = "SARA@example.com"
	form.Telephone = "0698765432"
	second, err := svc.Submit(ctx, form)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if first.Test.PersonID != second.Test.PersonID {
		t.Fatal("resubmission should reuse the person record")
	}

	person, err := store.GetPerson(ctx, first.Test.PersonID)
	if err != nil {
		t.Fatalf("get person: %v", err)
	}
	if person.Telephone != "0698765432" {
		t.Fatalf("identity not refreshed: %+v", person)
	}

	tests, err := store.ListTestsByPerson(ctx, person.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(tests) != 2 {
		t.Fatalf("history = %d", len(tests))
	}
}

// flakyPersonStore fails email lookups with a non-not-found error.
type flakyPersonStore struct {
	*memory.Store
	lookupErr error
	created   int
}

func (f *flakyPersonStore) GetPersonByEmail(ctx context.Context, email string) (submission.Person, error) {
	return submission.Person{}, f.lookupErr
}

func (f *flakyPersonStore) CreatePerson(ctx context.Context, p submission.Person) (submission.Person, error) {
	f.created++
	return f.Store.CreatePerson(ctx, p)
}

func TestSubmitPropagatesPersonLookupFailure(t *testing.T) {
	store := memory.New()
	lookupErr := errors.New("connection refused")
	persons := &flakyPersonStore{Store: store, lookupErr: lookupErr}
	svc := New(store, persons, store, nil, nil, nil, logger.Nop()).WithClock(fixedNow)

	_, err := svc.Submit(context.Background(), validForm())
	if !errors.Is(err, lookupErr) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	if persons.created != 0 {
		t.Fatal("a failed lookup must not fall through to creation")
	}

	// A genuine not-found lookup still creates the person.
	persons.lookupErr = memory.ErrNotFound
	if _, err := svc.Submit(context.Background(), validForm()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if persons.created != 1 {
		t.Fatalf("created = %d", persons.created)
	}
}

func TestRequestContactIsIdempotent(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	result, err := svc.Submit(ctx, validForm())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	updated, err := svc.RequestContact(ctx, result.Test.ID)
	if err != nil || !updated.ContactRequested {
		t.Fatalf("request contact: %+v, %v", updated, err)
	}
	again, err := svc.RequestContact(ctx, result.Test.ID)
	if err != nil || !again.ContactRequested {
		t.Fatalf("second request: %+v, %v", again, err)
	}

	if _, err := svc.RequestContact(ctx, "missing"); !errors.Is(err, memory.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPhonesByEmail(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, validForm()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	form := validForm()
	form.Telephone = "0698765432"
	if _, err := svc.Submit(ctx, form); err != nil {
		t.Fatalf("submit: %v", err)
	}

	phones, err := svc.PhonesByEmail(ctx, "sara@example.com")
	if err != nil {
		t.Fatalf("phones: %v", err)
	}
	if len(phones) != 2 {
		t.Fatalf("phones = %v", phones)
	}

	if _, err := svc.PhonesByEmail(ctx, "  "); err == nil {
		t.Fatal("blank email should be rejected")
	}
}

func TestHistory(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	result, err := svc.Submit(ctx, validForm())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	person, tests, err := svc.History(ctx, result.Test.PersonID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if person.Email != "sara@example.com" || len(tests) != 1 {
		t.Fatalf("person = %+v, tests = %d", person, len(tests))
	}

	if _, _, err := svc.History(ctx, "missing"); !errors.Is(err, memory.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
