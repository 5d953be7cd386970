// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/activity"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/adminuser"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/news"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/partner"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/program"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/submission"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.ProgramStore = (*Store)(nil)
var _ storage.TestStore = (*Store)(nil)
var _ storage.PersonStore = (*Store)(nil)
var _ storage.NewsStore = (*Store)(nil)
var _ storage.PartnerStore = (*Store)(nil)
var _ storage.AdminStore = (*Store)(nil)
var _ storage.SessionStore = (*Store)(nil)
var _ storage.ActivityStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- ProgramStore -----------------------------------------------------------

func (s *Store) CreateProgram(ctx context.Context, p program.Program) (program.Program, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	criteresJSON, err := json.Marshal(p.Criteres)
	if err != nil {
		return program.Program{}, err
	}
	heroJSON, err := json.Marshal(p.Hero)
	if err != nil {
		return program.Program{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO programs (id, name, description, link, criteres, published, hero, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.Name, p.Description, p.Link, criteresJSON, p.Published, heroJSON, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return program.Program{}, err
	}
	return p, nil
}

func (s *Store) UpdateProgram(ctx context.Context, p program.Program) (program.Program, error) {
	existing, err := s.GetProgram(ctx, p.ID)
	if err != nil {
		return program.Program{}, err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	criteresJSON, err := json.Marshal(p.Criteres)
	if err != nil {
		return program.Program{}, err
	}
	heroJSON, err := json.Marshal(p.Hero)
	if err != nil {
		return program.Program{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE programs
		SET name = $2, description = $3, link = $4, criteres = $5, published = $6, hero = $7, updated_at = $8
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Link, criteresJSON, p.Published, heroJSON, p.UpdatedAt)
	if err != nil {
		return program.Program{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return program.Program{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) GetProgram(ctx context.Context, id string) (program.Program, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, link, criteres, published, hero, created_at, updated_at
		FROM programs
		WHERE id = $1
	`, id)
	return scanProgram(row)
}

func (s *Store) ListPrograms(ctx context.Context, publishedOnly bool) ([]program.Program, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, link, criteres, published, hero, created_at, updated_at
		FROM programs
		WHERE $1 = false OR published = true
		ORDER BY created_at
	`, publishedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []program.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) DeleteProgram(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgram(row rowScanner) (program.Program, error) {
	var (
		p           program.Program
		criteresRaw []byte
		heroRaw     []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Link, &criteresRaw, &p.Published, &heroRaw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return program.Program{}, err
	}
	if len(criteresRaw) > 0 && string(criteresRaw) != "null" {
		_ = json.Unmarshal(criteresRaw, &p.Criteres)
	}
	if len(heroRaw) > 0 && string(heroRaw) != "null" {
		_ = json.Unmarshal(heroRaw, &p.Hero)
	}
	return p, nil
}

// --- TestStore --------------------------------------------------------------

func (s *Store) CreateTest(ctx context.Context, t submission.Test) (submission.Test, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	formJSON, err := json.Marshal(t.Form)
	if err != nil {
		return submission.Test{}, err
	}
	matchedJSON, err := json.Marshal(t.MatchedPrograms)
	if err != nil {
		return submission.Test{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO eligibility_tests (id, person_id, form, matched_programs, contact_requested, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID, t.PersonID, formJSON, matchedJSON, t.ContactRequested, t.CreatedAt)
	if err != nil {
		return submission.Test{}, err
	}
	return t, nil
}

func (s *Store) UpdateTest(ctx context.Context, t submission.Test) (submission.Test, error) {
	existing, err := s.GetTest(ctx, t.ID)
	if err != nil {
		return submission.Test{}, err
	}
	t.CreatedAt = existing.CreatedAt

	formJSON, err := json.Marshal(t.Form)
	if err != nil {
		return submission.Test{}, err
	}
	matchedJSON, err := json.Marshal(t.MatchedPrograms)
	if err != nil {
		return submission.Test{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE eligibility_tests
		SET person_id = $2, form = $3, matched_programs = $4, contact_requested = $5
		WHERE id = $1
	`, t.ID, t.PersonID, formJSON, matchedJSON, t.ContactRequested)
	if err != nil {
		return submission.Test{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return submission.Test{}, sql.ErrNoRows
	}
	return t, nil
}

func (s *Store) GetTest(ctx context.Context, id string) (submission.Test, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, person_id, form, matched_programs, contact_requested, created_at
		FROM eligibility_tests
		WHERE id = $1
	`, id)
	return scanTest(row)
}

func (s *Store) ListTests(ctx context.Context) ([]submission.Test, error) {
	return s.queryTests(ctx, `
		SELECT id, person_id, form, matched_programs, contact_requested, created_at
		FROM eligibility_tests
		ORDER BY created_at DESC
	`)
}

func (s *Store) ListTestsByPerson(ctx context.Context, personID string) ([]submission.Test, error) {
	return s.queryTests(ctx, `
		SELECT id, person_id, form, matched_programs, contact_requested, created_at
		FROM eligibility_tests
		WHERE person_id = $1
		ORDER BY created_at DESC
	`, personID)
}

func (s *Store) ListPhonesByEmail(ctx context.Context, email string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT form->>'telephone'
		FROM eligibility_tests
		WHERE lower(form->>'email') = lower($1)
		  AND coalesce(form->>'telephone', '') <> ''
		ORDER BY 1
	`, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phones []string
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			return nil, err
		}
		phones = append(phones, phone)
	}
	return phones, rows.Err()
}

func (s *Store) queryTests(ctx context.Context, query string, args ...any) ([]submission.Test, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []submission.Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func scanTest(row rowScanner) (submission.Test, error) {
	var (
		t          submission.Test
		formRaw    []byte
		matchedRaw []byte
	)
	if err := row.Scan(&t.ID, &t.PersonID, &formRaw, &matchedRaw, &t.ContactRequested, &t.CreatedAt); err != nil {
		return submission.Test{}, err
	}
	if len(formRaw) > 0 {
		_ = json.Unmarshal(formRaw, &t.Form)
	}
	if len(matchedRaw) > 0 {
		_ = json.Unmarshal(matchedRaw, &t.MatchedPrograms)
	}
	return t, nil
}

// --- PersonStore ------------------------------------------------------------

func (s *Store) CreatePerson(ctx context.Context, p submission.Person) (submission.Person, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO persons (id, email, nom, prenom, telephone, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7)
	`, p.ID, strings.TrimSpace(p.Email), p.Nom, p.Prenom, p.Telephone, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return submission.Person{}, err
	}
	return p, nil
}

func (s *Store) UpdatePerson(ctx context.Context, p submission.Person) (submission.Person, error) {
	existing, err := s.GetPerson(ctx, p.ID)
	if err != nil {
		return submission.Person{}, err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE persons
		SET email = lower($2), nom = $3, prenom = $4, telephone = $5, updated_at = $6
		WHERE id = $1
	`, p.ID, strings.TrimSpace(p.Email), p.Nom, p.Prenom, p.Telephone, p.UpdatedAt)
	if err != nil {
		return submission.Person{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return submission.Person{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) GetPerson(ctx context.Context, id string) (submission.Person, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, nom, prenom, telephone, created_at, updated_at
		FROM persons
		WHERE id = $1
	`, id)
	var p submission.Person
	if err := row.Scan(&p.ID, &p.Email, &p.Nom, &p.Prenom, &p.Telephone, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return submission.Person{}, err
	}
	return p, nil
}

func (s *Store) GetPersonByEmail(ctx context.Context, email string) (submission.Person, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, nom, prenom, telephone, created_at, updated_at
		FROM persons
		WHERE email = lower($1)
	`, strings.TrimSpace(email))
	var p submission.Person
	if err := row.Scan(&p.ID, &p.Email, &p.Nom, &p.Prenom, &p.Telephone, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return submission.Person{}, err
	}
	return p, nil
}

func (s *Store) ListPersons(ctx context.Context, offset, limit int) ([]submission.Person, int, error) {
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM persons`).Scan(&total); err != nil {
		return nil, 0, err
	}

	// limit <= 0 means the whole set (used by the export).
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, nom, prenom, telephone, created_at, updated_at
		FROM persons
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`, offset, limitArg)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []submission.Person
	for rows.Next() {
		var p submission.Person
		if err := rows.Scan(&p.ID, &p.Email, &p.Nom, &p.Prenom, &p.Telephone, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	return result, total, rows.Err()
}

// --- NewsStore --------------------------------------------------------------

func (s *Store) CreateArticle(ctx context.Context, a news.Article) (news.Article, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO news_articles (id, title, content, category, image, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID, a.Title, a.Content, a.Category, a.Image, a.Published, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return news.Article{}, err
	}
	return a, nil
}

func (s *Store) UpdateArticle(ctx context.Context, a news.Article) (news.Article, error) {
	existing, err := s.GetArticle(ctx, a.ID)
	if err != nil {
		return news.Article{}, err
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE news_articles
		SET title = $2, content = $3, category = $4, image = $5, published = $6, updated_at = $7
		WHERE id = $1
	`, a.ID, a.Title, a.Content, a.Category, a.Image, a.Published, a.UpdatedAt)
	if err != nil {
		return news.Article{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return news.Article{}, sql.ErrNoRows
	}
	return a, nil
}

func (s *Store) GetArticle(ctx context.Context, id string) (news.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, category, image, published, created_at, updated_at
		FROM news_articles
		WHERE id = $1
	`, id)
	var a news.Article
	if err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Category, &a.Image, &a.Published, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return news.Article{}, err
	}
	return a, nil
}

func (s *Store) ListArticles(ctx context.Context, publishedOnly bool) ([]news.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, category, image, published, created_at, updated_at
		FROM news_articles
		WHERE $1 = false OR published = true
		ORDER BY created_at DESC
	`, publishedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []news.Article
	for rows.Next() {
		var a news.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Category, &a.Image, &a.Published, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) DeleteArticle(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM news_articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT category
		FROM news_articles
		WHERE coalesce(category, '') <> ''
		ORDER BY category
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// --- PartnerStore -----------------------------------------------------------

func (s *Store) CreatePartner(ctx context.Context, p partner.Partner) (partner.Partner, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO partners (id, name, website, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Name, p.Website, p.Image, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return partner.Partner{}, err
	}
	return p, nil
}

func (s *Store) UpdatePartner(ctx context.Context, p partner.Partner) (partner.Partner, error) {
	existing, err := s.GetPartner(ctx, p.ID)
	if err != nil {
		return partner.Partner{}, err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE partners
		SET name = $2, website = $3, image = $4, updated_at = $5
		WHERE id = $1
	`, p.ID, p.Name, p.Website, p.Image, p.UpdatedAt)
	if err != nil {
		return partner.Partner{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return partner.Partner{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) GetPartner(ctx context.Context, id string) (partner.Partner, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, website, image, created_at, updated_at
		FROM partners
		WHERE id = $1
	`, id)
	var p partner.Partner
	if err := row.Scan(&p.ID, &p.Name, &p.Website, &p.Image, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return partner.Partner{}, err
	}
	return p, nil
}

func (s *Store) ListPartners(ctx context.Context) ([]partner.Partner, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, website, image, created_at, updated_at
		FROM partners
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []partner.Partner
	for rows.Next() {
		var p partner.Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.Website, &p.Image, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) DeletePartner(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM partners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- AdminStore -------------------------------------------------------------

func (s *Store) CreateAdmin(ctx context.Context, a adminuser.Admin) (adminuser.Admin, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7)
	`, a.ID, a.Name, strings.TrimSpace(a.Email), a.PasswordHash, string(a.Role), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return adminuser.Admin{}, err
	}
	return a, nil
}

func (s *Store) UpdateAdmin(ctx context.Context, a adminuser.Admin) (adminuser.Admin, error) {
	existing, err := s.GetAdmin(ctx, a.ID)
	if err != nil {
		return adminuser.Admin{}, err
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE admins
		SET name = $2, email = lower($3), password_hash = $4, role = $5, updated_at = $6
		WHERE id = $1
	`, a.ID, a.Name, strings.TrimSpace(a.Email), a.PasswordHash, string(a.Role), a.UpdatedAt)
	if err != nil {
		return adminuser.Admin{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return adminuser.Admin{}, sql.ErrNoRows
	}
	return a, nil
}

func (s *Store) GetAdmin(ctx context.Context, id string) (adminuser.Admin, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM admins
		WHERE id = $1
	`, id)
	return scanAdmin(row)
}

func (s *Store) GetAdminByEmail(ctx context.Context, email string) (adminuser.Admin, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM admins
		WHERE email = lower($1)
	`, strings.TrimSpace(email))
	return scanAdmin(row)
}

func (s *Store) ListAdmins(ctx context.Context) ([]adminuser.Admin, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM admins
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []adminuser.Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) DeleteAdmin(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanAdmin(row rowScanner) (adminuser.Admin, error) {
	var (
		a    adminuser.Admin
		role string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &role, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return adminuser.Admin{}, err
	}
	a.Role = adminuser.Role(role)
	return a, nil
}

// --- SessionStore -----------------------------------------------------------

func (s *Store) CreateSession(ctx context.Context, sess adminuser.Session) (adminuser.Session, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sess.CreatedAt = now
	sess.LastSeenAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_sessions (id, admin_id, token_hash, expires_at, last_seen_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sess.ID, sess.AdminID, sess.TokenHash, sess.ExpiresAt, sess.LastSeenAt, sess.CreatedAt)
	if err != nil {
		return adminuser.Session{}, err
	}
	return sess, nil
}

func (s *Store) GetSessionByTokenHash(ctx context.Context, tokenHash string) (adminuser.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, admin_id, token_hash, expires_at, last_seen_at, created_at
		FROM admin_sessions
		WHERE token_hash = $1 AND expires_at > now()
	`, tokenHash)
	var sess adminuser.Session
	if err := row.Scan(&sess.ID, &sess.AdminID, &sess.TokenHash, &sess.ExpiresAt, &sess.LastSeenAt, &sess.CreatedAt); err != nil {
		return adminuser.Session{}, err
	}
	return sess, nil
}

func (s *Store) TouchSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE admin_sessions SET last_seen_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteSessionsForAdmin(ctx context.Context, adminID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE admin_id = $1`, adminID)
	return err
}

// --- ActivityStore ----------------------------------------------------------

func (s *Store) CreateActivity(ctx context.Context, e activity.Entry) (activity.Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, kind, message, actor, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, e.ID, e.Kind, e.Message, e.Actor, e.CreatedAt)
	if err != nil {
		return activity.Entry{}, err
	}
	return e, nil
}

func (s *Store) ListRecentActivity(ctx context.Context, limit int) ([]activity.Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, message, actor, created_at
		FROM activity_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []activity.Entry
	for rows.Next() {
		var e activity.Entry
		if err := rows.Scan(&e.ID, &e.Kind, &e.Message, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
