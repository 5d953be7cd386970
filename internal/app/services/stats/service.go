// Package stats computes the admin dashboard aggregates.
package stats

import (
	"context"
	"fmt"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/submission"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

// ProgramCount is how often one program matched submissions.
type ProgramCount struct {
	ProgramID string `json:"programId"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
}

// Dashboard is the aggregate view behind the admin home screen.
type Dashboard struct {
	TotalTests        int            `json:"totalTests"`
	TotalUsers        int            `json:"totalUsers"`
	TotalPrograms     int            `json:"totalPrograms"`
	PublishedPrograms int            `json:"publishedPrograms"`
	ContactRequests   int            `json:"contactRequests"`
	ApplicantTypes    map[string]int `json:"applicantTypes"`
	ProgramMatches    []ProgramCount `json:"programMatches"`
}

// Service computes dashboard aggregates on demand.
type Service struct {
	tests    storage.TestStore
	persons  storage.PersonStore
	programs storage.ProgramStore
	log      *logger.Logger
}

// New constructs a stats service.
func New(tests storage.TestStore, persons storage.PersonStore, programs storage.ProgramStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("stats")
	}
	return &Service{tests: tests, persons: persons, programs: programs, log: log}
}

// Dashboard aggregates submissions, users, and program match counts.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	tests, err := s.tests.ListTests(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list tests: %w", err)
	}
	_, totalUsers, err := s.persons.ListPersons(ctx, 0, 1)
	if err != nil {
		return Dashboard{}, fmt.Errorf("count users: %w", err)
	}
	programs, err := s.programs.ListPrograms(ctx, false)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list programs: %w", err)
	}

	out := Dashboard{
		TotalTests:    len(tests),
		TotalUsers:    totalUsers,
		TotalPrograms: len(programs),
		ApplicantTypes: map[string]int{
			string(submission.ApplicantPhysique): 0,
			string(submission.ApplicantMorale):   0,
		},
	}

	matchCounts := make(map[string]int)
	for _, test := range tests {
		out.ApplicantTypes[string(test.Form.ApplicantType)]++
		if test.ContactRequested {
			out.ContactRequests++
		}
		for _, programID := range test.MatchedPrograms {
			matchCounts[programID]++
		}
	}

	for _, p := range programs {
		if p.Published {
			out.PublishedPrograms++
		}
		out.ProgramMatches = append(out.ProgramMatches, ProgramCount{
			ProgramID: p.ID,
			Name:      p.Name,
			Count:     matchCounts[p.ID],
		})
	}

	return out, nil
}
