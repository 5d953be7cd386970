// Package admins manages back-office accounts, credentials, and sessions.
package admins

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/activity"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/adminuser"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/activities"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

// DefaultSessionTTL bounds how long an issued token stays valid.
const DefaultSessionTTL = 24 * time.Hour

const tokenIssuer = "tamkeen-sub"

// ErrInvalidCredentials is returned on failed login attempts. The cause
// (unknown email vs wrong password) is deliberately not distinguished.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

// ErrUnauthorized is returned when a token does not map to a live session.
var ErrUnauthorized = fmt.Errorf("unauthorized")

// Claims is the JWT payload for admin session tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service manages admin accounts and their sessions.
type Service struct {
	store      storage.AdminStore
	sessions   storage.SessionStore
	activities *activities.Service
	secret     []byte
	ttl        time.Duration
	log        *logger.Logger
	now        func() time.Time
}

// New constructs the admin service. The activity service may be nil.
func New(store storage.AdminStore, sessions storage.SessionStore, acts *activities.Service, secret []byte, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("admins")
	}
	return &Service{
		store:      store,
		sessions:   sessions,
		activities: acts,
		secret:     secret,
		ttl:        DefaultSessionTTL,
		log:        log,
		now:        time.Now,
	}
}

// WithSessionTTL overrides the session lifetime.
func (s *Service) WithSessionTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// WithClock overrides the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SessionTTL returns the configured session lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}

// Register creates an admin account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string, role adminuser.Role, actor string) (adminuser.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return adminuser.Admin{}, fmt.Errorf("email is required")
	}
	if len(password) < 8 {
		return adminuser.Admin{}, fmt.Errorf("password must be at least 8 characters")
	}
	if role != adminuser.RoleAdmin && role != adminuser.RoleSuperAdmin {
		return adminuser.Admin{}, fmt.Errorf("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return adminuser.Admin{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.store.CreateAdmin(ctx, adminuser.Admin{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return adminuser.Admin{}, err
	}

	s.log.WithField("admin_id", created.ID).WithField("role", string(created.Role)).Info("admin registered")
	if s.activities != nil {
		s.activities.Record(ctx, activity.KindAdminCreated, fmt.Sprintf("Administrateur %s ajouté", created.Email), actor)
	}
	return created, nil
}

// Authenticate checks the credentials and, on success, issues a signed token
// backed by a server-side session.
func (s *Service) Authenticate(ctx context.Context, email, password string) (adminuser.Admin, string, error) {
	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		// Equalize timing between unknown email and wrong password.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$invalidinvalidinvalidinvalidinvalidinvalidinvalidinval"), []byte(password))
		return adminuser.Admin{}, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return adminuser.Admin{}, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(admin)
	if err != nil {
		return adminuser.Admin{}, "", fmt.Errorf("issue token: %w", err)
	}

	if _, err := s.sessions.CreateSession(ctx, adminuser.Session{
		AdminID:   admin.ID,
		TokenHash: HashToken(token),
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}); err != nil {
		return adminuser.Admin{}, "", fmt.Errorf("create session: %w", err)
	}

	s.log.WithField("admin_id", admin.ID).Info("admin authenticated")
	return admin, token, nil
}

// Authorize resolves a presented token to its admin. The token must carry a
// valid signature and map to a live server-side session; the session's
// last-seen timestamp is refreshed.
func (s *Service) Authorize(ctx context.Context, token string) (adminuser.Admin, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return adminuser.Admin{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSessionByTokenHash(ctx, HashToken(token))
	if err != nil {
		return adminuser.Admin{}, ErrUnauthorized
	}
	_ = s.sessions.TouchSession(ctx, session.ID)

	admin, err := s.store.GetAdmin(ctx, claims.Subject)
	if err != nil {
		return adminuser.Admin{}, ErrUnauthorized
	}
	return admin, nil
}

// Logout invalidates the session behind a token. Unknown tokens are not an
// error.
func (s *Service) Logout(ctx context.Context, token string) error {
	session, err := s.sessions.GetSessionByTokenHash(ctx, HashToken(token))
	if err != nil {
		return nil
	}
	return s.sessions.DeleteSession(ctx, session.ID)
}

// Get returns one admin.
func (s *Service) Get(ctx context.Context, id string) (adminuser.Admin, error) {
	return s.store.GetAdmin(ctx, id)
}

// ListOthers returns every admin except the requesting one.
func (s *Service) ListOthers(ctx context.Context, excludeID string) ([]adminuser.Admin, error) {
	all, err := s.store.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]adminuser.Admin, 0, len(all))
	for _, a := range all {
		if a.ID != excludeID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Update changes an admin's profile. A non-empty password is re-hashed; blank
// fields keep their current value.
func (s *Service) Update(ctx context.Context, id, name, email, password string, role adminuser.Role) (adminuser.Admin, error) {
	admin, err := s.store.GetAdmin(ctx, id)
	if err != nil {
		return adminuser.Admin{}, err
	}

	if name = strings.TrimSpace(name); name != "" {
		admin.Name = name
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		admin.Email = email
	}
	if role != "" {
		if role != adminuser.RoleAdmin && role != adminuser.RoleSuperAdmin {
			return adminuser.Admin{}, fmt.Errorf("unknown role %q", role)
		}
		admin.Role = role
	}
	if password != "" {
		if len(password) < 8 {
			return adminuser.Admin{}, fmt.Errorf("password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return adminuser.Admin{}, fmt.Errorf("hash password: %w", err)
		}
		admin.PasswordHash = string(hash)
	}

	updated, err := s.store.UpdateAdmin(ctx, admin)
	if err != nil {
		return adminuser.Admin{}, err
	}
	if password != "" {
		// Credential change kills every open session for the account.
		_ = s.sessions.DeleteSessionsForAdmin(ctx, id)
	}
	s.log.WithField("admin_id", id).Info("admin updated")
	return updated, nil
}

// Delete removes an admin account and its sessions.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteAdmin(ctx, id); err != nil {
		return err
	}
	_ = s.sessions.DeleteSessionsForAdmin(ctx, id)
	s.log.WithField("admin_id", id).Info("admin deleted")
	return nil
}

// HashToken returns the hex SHA-256 of a token. Sessions store hashes, never
// tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *Service) issueToken(admin adminuser.Admin) (string, error) {
	now := s.now()
	claims := &Claims{
		Role: string(admin.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}
