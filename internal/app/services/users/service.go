// Package users serves the back-office view over people who submitted
// eligibility tests, including the spreadsheet export.
package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/submission"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

// DefaultPageSize bounds the user listing.
const DefaultPageSize = 20

// Page is one page of the user listing.
type Page struct {
	Users  []submission.Person `json:"users"`
	Total  int                 `json:"total"`
	Offset int                 `json:"offset"`
	Limit  int                 `json:"limit"`
}

// Service reads people and their test history.
type Service struct {
	persons storage.PersonStore
	tests   storage.TestStore
	log     *logger.Logger
}

// New constructs a user service.
func New(persons storage.PersonStore, tests storage.TestStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{persons: persons, tests: tests, log: log}
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, offset, limit int) (Page, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	users, total, err := s.persons.ListPersons(ctx, offset, limit)
	if err != nil {
		return Page{}, err
	}
	return Page{Users: users, Total: total, Offset: offset, Limit: limit}, nil
}

// Export builds an xlsx workbook of every user and their test history.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	users, _, err := s.persons.ListPersons(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	wb := excelize.NewFile()
	defer wb.Close()

	const sheet = "Utilisateurs"
	if err := wb.SetSheetName(wb.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	headers := []string{"Email", "Nom", "Prénom", "Téléphone", "Inscrit le", "Tests soumis", "Dernier test", "Contact demandé", "Programmes correspondants"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := wb.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, user := range users {
		tests, err := s.tests.ListTestsByPerson(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("tests for %s: %w", user.ID, err)
		}

		var lastTest string
		contact := false
		matched := 0
		if len(tests) > 0 {
			lastTest = tests[0].CreatedAt.Format(time.RFC3339)
		}
		for _, test := range tests {
			if test.ContactRequested {
				contact = true
			}
			matched += len(test.MatchedPrograms)
		}

		values := []any{
			user.Email,
			user.Nom,
			user.Prenom,
			user.Telephone,
			user.CreatedAt.Format(time.RFC3339),
			len(tests),
			lastTest,
			contactLabel(contact),
			matched,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := wb.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
		row++
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.log.WithField("users", len(users)).Info("user export generated")
	return buf.Bytes(), nil
}

func contactLabel(requested bool) string {
	if requested {
		return "oui"
	}
	return "non"
}

// ExportFilename builds the attachment name for an export at a moment in
// time.
func ExportFilename(now time.Time) string {
	return strings.Join([]string{"utilisateurs", now.Format("2006-01-02")}, "-") + ".xlsx"
}
