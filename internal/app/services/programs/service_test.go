package programs

import (
	"context"
	"errors"
	"testing"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/activity"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/program"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/activities"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage/memory"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	acts := activities.New(store, nil, logger.Nop())
	return New(store, acts, logger.Nop()), store
}

func TestCreateRequiresName(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.Create(context.Background(), program.Program{Name: "  "}, "admin"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestCreatePersistsCriteriaVerbatim(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	criteria := &program.RuleGroup{
		Combinator: program.CombinatorOr,
		Rules: []program.RuleNode{
			{Rule: &program.Rule{Field: program.FieldSecteurActivite, Operator: program.OpEq, Value: "industrie"}},
			{Rule: &program.Rule{Field: program.FieldBrancheActivite, Operator: program.OpEq, Value: "textile"}},
		},
	}

	created, err := svc.Create(ctx, program.Program{Name: "Forsa", Criteres: criteria}, "admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Criteres == nil || len(got.Criteres.Rules) != 2 {
		t.Fatalf("criteria lost: %+v", got.Criteres)
	}
	if got.Criteres.Combinator != program.CombinatorOr {
		t.Fatalf("combinator = %q", got.Criteres.Combinator)
	}
}

func TestCreateRecordsActivity(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, program.Program{Name: "Forsa"}, "admin@example.com"); err != nil {
		t.Fatalf("create: %v", err)
	}

	recent, err := store.ListRecentActivity(ctx, 5)
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if len(recent) != 1 || recent[0].Kind != activity.KindProgramCreated {
		t.Fatalf("recent = %+v", recent)
	}
	if recent[0].Actor != "admin@example.com" {
		t.Fatalf("actor = %q", recent[0].Actor)
	}
}

func TestSetPublishedToggle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, program.Program{Name: "Forsa"}, "admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Published {
		t.Fatal("programs start unpublished")
	}

	published, err := svc.SetPublished(ctx, created.ID, true, "admin")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !published.Published {
		t.Fatal("publish did not stick")
	}

	visible, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 {
		t.Fatalf("published list = %d", len(visible))
	}

	if _, err := svc.SetPublished(ctx, "missing", true, "admin"); !errors.Is(err, memory.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetHero(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, program.Program{Name: "Forsa"}, "admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	hero := &program.Hero{TitleFr: "Financez votre projet", TitleAr: "موّل مشروعك"}
	withHero, err := svc.SetHero(ctx, created.ID, hero)
	if err != nil {
		t.Fatalf("set hero: %v", err)
	}
	if withHero.Hero == nil || withHero.Hero.TitleAr == "" {
		t.Fatalf("hero = %+v", withHero.Hero)
	}

	cleared, err := svc.SetHero(ctx, created.ID, nil)
	if err != nil {
		t.Fatalf("clear hero: %v", err)
	}
	if cleared.Hero != nil {
		t.Fatal("hero should be cleared")
	}
}
