// Package programs manages grant programs and their eligibility criteria.
package programs

import (
	"context"
	"fmt"
	"strings"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/activity"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/program"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/activities"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

// Service manages program records. Criteria documents are persisted verbatim:
// the builder owns their shape, the evaluator interprets them at submission
// time.
type Service struct {
	store      storage.ProgramStore
	activities *activities.Service
	log        *logger.Logger
}

// New constructs a program service. The activity service may be nil.
func New(store storage.ProgramStore, acts *activities.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("programs")
	}
	return &Service{store: store, activities: acts, log: log}
}

// Create validates and persists a new program.
func (s *Service) Create(ctx context.Context, p program.Program, actor string) (program.Program, error) {
	if err := validate(p); err != nil {
		return program.Program{}, err
	}

	created, err := s.store.CreateProgram(ctx, p)
	if err != nil {
		return program.Program{}, err
	}
	s.log.WithField("program_id", created.ID).WithField("name", created.Name).Info("program created")
	s.record(ctx, activity.KindProgramCreated, fmt.Sprintf("Programme %q créé", created.Name), actor)
	return created, nil
}

// Update replaces a program record.
func (s *Service) Update(ctx context.Context, p program.Program, actor string) (program.Program, error) {
	if strings.TrimSpace(p.ID) == "" {
		return program.Program{}, fmt.Errorf("program id is required")
	}
	if err := validate(p); err != nil {
		return program.Program{}, err
	}

	updated, err := s.store.UpdateProgram(ctx, p)
	if err != nil {
		return program.Program{}, err
	}
	s.log.WithField("program_id", updated.ID).Info("program updated")
	s.record(ctx, activity.KindProgramUpdated, fmt.Sprintf("Programme %q mis à jour", updated.Name), actor)
	return updated, nil
}

// Get returns one program.
func (s *Service) Get(ctx context.Context, id string) (program.Program, error) {
	return s.store.GetProgram(ctx, id)
}

// List returns programs, optionally only published ones.
func (s *Service) List(ctx context.Context, publishedOnly bool) ([]program.Program, error) {
	return s.store.ListPrograms(ctx, publishedOnly)
}

// Delete removes a program.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteProgram(ctx, id); err != nil {
		return err
	}
	s.log.WithField("program_id", id).Info("program deleted")
	return nil
}

// SetPublished toggles whether the program participates in eligibility
// evaluation.
func (s *Service) SetPublished(ctx context.Context, id string, published bool, actor string) (program.Program, error) {
	p, err := s.store.GetProgram(ctx, id)
	if err != nil {
		return program.Program{}, err
	}
	p.Published = published
	updated, err := s.store.UpdateProgram(ctx, p)
	if err != nil {
		return program.Program{}, err
	}
	s.log.WithField("program_id", id).WithField("published", published).Info("program publication changed")
	s.record(ctx, activity.KindProgramUpdated, fmt.Sprintf("Programme %q %s", updated.Name, publicationLabel(published)), actor)
	return updated, nil
}

// SetHero sets or clears the featured homepage placement.
func (s *Service) SetHero(ctx context.Context, id string, hero *program.Hero) (program.Program, error) {
	p, err := s.store.GetProgram(ctx, id)
	if err != nil {
		return program.Program{}, err
	}
	p.Hero = hero
	updated, err := s.store.UpdateProgram(ctx, p)
	if err != nil {
		return program.Program{}, err
	}
	s.log.WithField("program_id", id).WithField("featured", hero != nil).Info("program hero changed")
	return updated, nil
}

func (s *Service) record(ctx context.Context, kind, message, actor string) {
	if s.activities != nil {
		s.activities.Record(ctx, kind, message, actor)
	}
}

func validate(p program.Program) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

func publicationLabel(published bool) string {
	if published {
		return "publié"
	}
	return "dépublié"
}
