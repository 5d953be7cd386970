// Package tests runs the eligibility pipeline: validate a questionnaire
// submission, evaluate every published program's criteria against it, and
// persist the outcome.
package tests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/activity"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/program"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/submission"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/activities"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage/memory"
	"github.com/yassinekamouss/tamkeen-sub000/internal/rules"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

// EventFormSubmitted is the realtime event name for completed submissions.
const EventFormSubmitted = "form:submitted"

// ValidationError carries per-field validation messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("submission invalid: %d field(s)", len(e.Fields))
}

// Result is the outcome of a submission: the persisted test and the programs
// it matched.
type Result struct {
	Test     submission.Test
	Programs []program.Program
}

// Service runs the eligibility pipeline.
type Service struct {
	tests       storage.TestStore
	persons     storage.PersonStore
	programs    storage.ProgramStore
	evaluator   *rules.Evaluator
	activities  *activities.Service
	broadcaster activities.Broadcaster
	translate   submission.Translator
	log         *logger.Logger
	now         func() time.Time
}

// New constructs the submission service. Activities and broadcaster may be
// nil.
func New(tests storage.TestStore, persons storage.PersonStore, programs storage.ProgramStore, evaluator *rules.Evaluator, acts *activities.Service, broadcaster activities.Broadcaster, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("tests")
	}
	if evaluator == nil {
		evaluator = rules.NewEvaluator(log)
	}
	return &Service{
		tests:       tests,
		persons:     persons,
		programs:    programs,
		evaluator:   evaluator,
		activities:  acts,
		broadcaster: broadcaster,
		log:         log,
		now:         time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithTranslator sets the validation message translator.
func (s *Service) WithTranslator(tr submission.Translator) *Service {
	s.translate = tr
	return s
}

// RevenueYears exposes the disclosure-year computation at the service clock.
func (s *Service) RevenueYears(anneeCreation string) []int {
	return submission.RevenueYears(anneeCreation, s.now())
}

// Submit validates the form, matches it against every published program, and
// persists the test linked to its person. A *ValidationError is returned when
// the form is incomplete.
func (s *Service) Submit(ctx context.Context, form submission.Form) (Result, error) {
	now := s.now()
	if errs := submission.Validate(form, now, s.translate); len(errs) > 0 {
		return Result{}, &ValidationError{Fields: errs}
	}

	person, err := s.upsertPerson(ctx, form)
	if err != nil {
		return Result{}, fmt.Errorf("persist person: %w", err)
	}

	published, err := s.programs.ListPrograms(ctx, true)
	if err != nil {
		return Result{}, fmt.Errorf("list programs: %w", err)
	}

	facts := form.Facts()
	var matched []program.Program
	matchedIDs := make([]string, 0, len(published))
	for _, p := range published {
		if s.evaluator.Evaluate(p.Criteres, facts) {
			matched = append(matched, p)
			matchedIDs = append(matchedIDs, p.ID)
		}
	}

	test, err := s.tests.CreateTest(ctx, submission.Test{
		PersonID:        person.ID,
		Form:            form,
		MatchedPrograms: matchedIDs,
		CreatedAt:       now.UTC(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("persist test: %w", err)
	}

	s.log.WithField("test_id", test.ID).
		WithField("person_id", person.ID).
		WithField("matched", len(matchedIDs)).
		Info("eligibility test submitted")

	if s.activities != nil {
		s.activities.Record(ctx, activity.KindTestSubmitted,
			fmt.Sprintf("Test d'éligibilité soumis (%d programme(s) correspondant(s))", len(matchedIDs)),
			person.Email)
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(EventFormSubmitted, map[string]any{
			"testId":        test.ID,
			"applicantType": string(form.ApplicantType),
			"matched":       len(matchedIDs),
			"createdAt":     test.CreatedAt,
		})
	}

	return Result{Test: test, Programs: matched}, nil
}

// RequestContact marks a test as wanting follow-up contact.
func (s *Service) RequestContact(ctx context.Context, testID string) (submission.Test, error) {
	test, err := s.tests.GetTest(ctx, testID)
	if err != nil {
		return submission.Test{}, err
	}
	if test.ContactRequested {
		return test, nil
	}
	test.ContactRequested = true
	updated, err := s.tests.UpdateTest(ctx, test)
	if err != nil {
		return submission.Test{}, err
	}
	s.log.WithField("test_id", testID).Info("contact requested")
	return updated, nil
}

// PhonesByEmail returns the distinct phone numbers previously used with an
// email address.
func (s *Service) PhonesByEmail(ctx context.Context, email string) ([]string, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("email is required")
	}
	return s.tests.ListPhonesByEmail(ctx, email)
}

// History returns a person and their submitted tests, newest first.
func (s *Service) History(ctx context.Context, personID string) (submission.Person, []submission.Test, error) {
	person, err := s.persons.GetPerson(ctx, personID)
	if err != nil {
		return submission.Person{}, nil, err
	}
	tests, err := s.tests.ListTestsByPerson(ctx, personID)
	if err != nil {
		return submission.Person{}, nil, err
	}
	return person, tests, nil
}

// upsertPerson resolves the submitting person by email, refreshing identity
// fields on resubmission. Only a not-found lookup falls through to creation;
// any other storage failure is propagated.
func (s *Service) upsertPerson(ctx context.Context, form submission.Form) (submission.Person, error) {
	existing, err := s.persons.GetPersonByEmail(ctx, form.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) && !errors.Is(err, memory.ErrNotFound) {
		return submission.Person{}, err
	}
	if err == nil {
		changed := false
		if form.Nom != "" && form.Nom != existing.Nom {
			existing.Nom = form.Nom
			changed = true
		}
		if form.Prenom != "" && form.Prenom != existing.Prenom {
			existing.Prenom = form.Prenom
			changed = true
		}
		if form.Telephone != "" && form.Telephone != existing.Telephone {
			existing.Telephone = form.Telephone
			changed = true
		}
		if !changed {
			return existing, nil
		}
		return s.persons.UpdatePerson(ctx, existing)
	}

	return s.persons.CreatePerson(ctx, submission.Person{
		Email:     strings.ToLower(strings.TrimSpace(form.Email)),
		Nom:       form.Nom,
		Prenom:    form.Prenom,
		Telephone: form.Telephone,
	})
}
