// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/activity"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/adminuser"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/news"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/partner"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/program"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/submission"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = fmt.Errorf("record not found")

// Store holds every entity behind one mutex.
type Store struct {
	mu             sync.RWMutex
	nextID         int64
	programs       map[string]program.Program
	tests          map[string]submission.Test
	persons        map[string]submission.Person
	personsByEmail map[string]string
	articles       map[string]news.Article
	partners       map[string]partner.Partner
	admins         map[string]adminuser.Admin
	adminsByEmail  map[string]string
	sessions       map[string]adminuser.Session
	sessionsByHash map[string]string
	activities     []activity.Entry
}

var _ storage.ProgramStore = (*Store)(nil)
var _ storage.TestStore = (*Store)(nil)
var _ storage.PersonStore = (*Store)(nil)
var _ storage.NewsStore = (*Store)(nil)
var _ storage.PartnerStore = (*Store)(nil)
var _ storage.AdminStore = (*Store)(nil)
var _ storage.SessionStore = (*Store)(nil)
var _ storage.ActivityStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:         1,
		programs:       make(map[string]program.Program),
		tests:          make(map[string]submission.Test),
		persons:        make(map[string]submission.Person),
		personsByEmail: make(map[string]string),
		articles:       make(map[string]news.Article),
		partners:       make(map[string]partner.Partner),
		admins:         make(map[string]adminuser.Admin),
		adminsByEmail:  make(map[string]string),
		sessions:       make(map[string]adminuser.Session),
		sessionsByHash: make(map[string]string),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// ProgramStore implementation ------------------------------------------------

func (s *Store) CreateProgram(_ context.Context, p program.Program) (program.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.nextIDLocked()
	} else if _, exists := s.programs[p.ID]; exists {
		return program.Program{}, fmt.Errorf("program %s already exists", p.ID)
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.programs[p.ID] = p
	return p, nil
}

func (s *Store) UpdateProgram(_ context.Context, p program.Program) (program.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.programs[p.ID]
	if !ok {
		return program.Program{}, ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.programs[p.ID] = p
	return p, nil
}

func (s *Store) GetProgram(_ context.Context, id string) (program.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.programs[id]
	if !ok {
		return program.Program{}, ErrNotFound
	}
	return p, nil
}

func (s *Store) ListPrograms(_ context.Context, publishedOnly bool) ([]program.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]program.Program, 0, len(s.programs))
	for _, p := range s.programs {
		if publishedOnly && !p.Published {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteProgram(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.programs[id]; !ok {
		return ErrNotFound
	}
	delete(s.programs, id)
	return nil
}

// TestStore implementation ---------------------------------------------------

func (s *Store) CreateTest(_ context.Context, t submission.Test) (submission.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = s.nextIDLocked()
	} else if _, exists := s.tests[t.ID]; exists {
		return submission.Test{}, fmt.Errorf("test %s already exists", t.ID)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	s.tests[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTest(_ context.Context, t submission.Test) (submission.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tests[t.ID]
	if !ok {
		return submission.Test{}, ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	s.tests[t.ID] = t
	return t, nil
}

func (s *Store) GetTest(_ context.Context, id string) (submission.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tests[id]
	if !ok {
		return submission.Test{}, ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTests(_ context.Context) ([]submission.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]submission.Test, 0, len(s.tests))
	for _, t := range s.tests {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListTestsByPerson(_ context.Context, personID string) ([]submission.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []submission.Test
	for _, t := range s.tests {
		if t.PersonID == personID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListPhonesByEmail(_ context.Context, email string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	seen := make(map[string]struct{})
	var out []string
	for _, t := range s.tests {
		if strings.ToLower(t.Form.Email) != email {
			continue
		}
		phone := strings.TrimSpace(t.Form.Telephone)
		if phone == "" {
			continue
		}
		if _, dup := seen[phone]; dup {
			continue
		}
		seen[phone] = struct{}{}
		out = append(out, phone)
	}
	sort.Strings(out)
	return out, nil
}

// PersonStore implementation -------------------------------------------------

func (s *Store) CreatePerson(_ context.Context, p submission.Person) (submission.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(p.Email))
	if _, exists := s.personsByEmail[email]; exists {
		return submission.Person{}, fmt.Errorf("person with email %s already exists", p.Email)
	}
	if p.ID == "" {
		p.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.persons[p.ID] = p
	s.personsByEmail[email] = p.ID
	return p, nil
}

func (s *Store) UpdatePerson(_ context.Context, p submission.Person) (submission.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.persons[p.ID]
	if !ok {
		return submission.Person{}, ErrNotFound
	}
	delete(s.personsByEmail, strings.ToLower(existing.Email))
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.persons[p.ID] = p
	s.personsByEmail[strings.ToLower(strings.TrimSpace(p.Email))] = p.ID
	return p, nil
}

func (s *Store) GetPerson(_ context.Context, id string) (submission.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.persons[id]
	if !ok {
		return submission.Person{}, ErrNotFound
	}
	return p, nil
}

func (s *Store) GetPersonByEmail(_ context.Context, email string) (submission.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.personsByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return submission.Person{}, ErrNotFound
	}
	return s.persons[id], nil
}

func (s *Store) ListPersons(_ context.Context, offset, limit int) ([]submission.Person, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]submission.Person, 0, len(s.persons))
	for _, p := range s.persons {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

// NewsStore implementation ---------------------------------------------------

func (s *Store) CreateArticle(_ context.Context, a news.Article) (news.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = s.nextIDLocked()
	} else if _, exists := s.articles[a.ID]; exists {
		return news.Article{}, fmt.Errorf("article %s already exists", a.ID)
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.articles[a.ID] = a
	return a, nil
}

func (s *Store) UpdateArticle(_ context.Context, a news.Article) (news.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.articles[a.ID]
	if !ok {
		return news.Article{}, ErrNotFound
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	s.articles[a.ID] = a
	return a, nil
}

func (s *Store) GetArticle(_ context.Context, id string) (news.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.articles[id]
	if !ok {
		return news.Article{}, ErrNotFound
	}
	return a, nil
}

func (s *Store) ListArticles(_ context.Context, publishedOnly bool) ([]news.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]news.Article, 0, len(s.articles))
	for _, a := range s.articles {
		if publishedOnly && !a.Published {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteArticle(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[id]; !ok {
		return ErrNotFound
	}
	delete(s.articles, id)
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, a := range s.articles {
		cat := strings.TrimSpace(a.Category)
		if cat == "" {
			continue
		}
		if _, dup := seen[cat]; dup {
			continue
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	sort.Strings(out)
	return out, nil
}

// PartnerStore implementation ------------------------------------------------

func (s *Store) CreatePartner(_ context.Context, p partner.Partner) (partner.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.nextIDLocked()
	} else if _, exists := s.partners[p.ID]; exists {
		return partner.Partner{}, fmt.Errorf("partner %s already exists", p.ID)
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.partners[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePartner(_ context.Context, p partner.Partner) (partner.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.partners[p.ID]
	if !ok {
		return partner.Partner{}, ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.partners[p.ID] = p
	return p, nil
}

func (s *Store) GetPartner(_ context.Context, id string) (partner.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.partners[id]
	if !ok {
		return partner.Partner{}, ErrNotFound
	}
	return p, nil
}

func (s *Store) ListPartners(_ context.Context) ([]partner.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]partner.Partner, 0, len(s.partners))
	for _, p := range s.partners {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeletePartner(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.partners[id]; !ok {
		return ErrNotFound
	}
	delete(s.partners, id)
	return nil
}

// AdminStore implementation --------------------------------------------------

func (s *Store) CreateAdmin(_ context.Context, a adminuser.Admin) (adminuser.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(a.Email))
	if _, exists := s.adminsByEmail[email]; exists {
		return adminuser.Admin{}, fmt.Errorf("admin with email %s already exists", a.Email)
	}
	if a.ID == "" {
		a.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.admins[a.ID] = a
	s.adminsByEmail[email] = a.ID
	return a, nil
}

func (s *Store) UpdateAdmin(_ context.Context, a adminuser.Admin) (adminuser.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.admins[a.ID]
	if !ok {
		return adminuser.Admin{}, ErrNotFound
	}
	delete(s.adminsByEmail, strings.ToLower(existing.Email))
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	s.admins[a.ID] = a
	s.adminsByEmail[strings.ToLower(strings.TrimSpace(a.Email))] = a.ID
	return a, nil
}

func (s *Store) GetAdmin(_ context.Context, id string) (adminuser.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.admins[id]
	if !ok {
		return adminuser.Admin{}, ErrNotFound
	}
	return a, nil
}

func (s *Store) GetAdminByEmail(_ context.Context, email string) (adminuser.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.adminsByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return adminuser.Admin{}, ErrNotFound
	}
	return s.admins[id], nil
}

func (s *Store) ListAdmins(_ context.Context) ([]adminuser.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]adminuser.Admin, 0, len(s.admins))
	for _, a := range s.admins {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteAdmin(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.admins[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.adminsByEmail, strings.ToLower(a.Email))
	delete(s.admins, id)
	return nil
}

// SessionStore implementation ------------------------------------------------

func (s *Store) CreateSession(_ context.Context, sess adminuser.Session) (adminuser.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	sess.CreatedAt = now
	sess.LastSeenAt = now
	s.sessions[sess.ID] = sess
	s.sessionsByHash[sess.TokenHash] = sess.ID
	return sess, nil
}

func (s *Store) GetSessionByTokenHash(_ context.Context, tokenHash string) (adminuser.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.sessionsByHash[tokenHash]
	if !ok {
		return adminuser.Session{}, ErrNotFound
	}
	sess := s.sessions[id]
	if !sess.ExpiresAt.IsZero() && time.Now().UTC().After(sess.ExpiresAt) {
		return adminuser.Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *Store) TouchSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.LastSeenAt = time.Now().UTC()
	s.sessions[id] = sess
	return nil
}

func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.sessionsByHash, sess.TokenHash)
	delete(s.sessions, id)
	return nil
}

func (s *Store) DeleteSessionsForAdmin(_ context.Context, adminID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.AdminID == adminID {
			delete(s.sessionsByHash, sess.TokenHash)
			delete(s.sessions, id)
		}
	}
	return nil
}

// ActivityStore implementation -----------------------------------------------

func (s *Store) CreateActivity(_ context.Context, e activity.Entry) (activity.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = s.nextIDLocked()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.activities = append(s.activities, e)
	return e, nil
}

func (s *Store) ListRecentActivity(_ context.Context, limit int) ([]activity.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]activity.Entry, len(s.activities))
	copy(out, s.activities)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
