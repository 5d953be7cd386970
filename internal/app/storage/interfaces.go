package storage

import (
	"context"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/activity"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/adminuser"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/news"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/partner"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/program"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/submission"
)

// ProgramStore persists grant programs and their criteria documents.
type ProgramStore interface {
	CreateProgram(ctx context.Context, p program.Program) (program.Program, error)
	UpdateProgram(ctx context.Context, p program.Program) (program.Program, error)
	GetProgram(ctx context.Context, id string) (program.Program, error)
	ListPrograms(ctx context.Context, publishedOnly bool) ([]program.Program, error)
	DeleteProgram(ctx context.Context, id string) error
}

// TestStore persists eligibility test submissions.
type TestStore interface {
	CreateTest(ctx context.Context, t submission.Test) (submission.Test, error)
	UpdateTest(ctx context.Context, t submission.Test) (submission.Test, error)
	GetTest(ctx context.Context, id string) (submission.Test, error)
	ListTests(ctx context.Context) ([]submission.Test, error)
	ListTestsByPerson(ctx context.Context, personID string) ([]submission.Test, error)
	ListPhonesByEmail(ctx context.Context, email string) ([]string, error)
}

// PersonStore persists applicants identified by email.
type PersonStore interface {
	CreatePerson(ctx context.Context, p submission.Person) (submission.Person, error)
	UpdatePerson(ctx context.Context, p submission.Person) (submission.Person, error)
	GetPerson(ctx context.Context, id string) (submission.Person, error)
	GetPersonByEmail(ctx context.Context, email string) (submission.Person, error)
	ListPersons(ctx context.Context, offset, limit int) ([]submission.Person, int, error)
}

// NewsStore persists articles and their categories.
type NewsStore interface {
	CreateArticle(ctx context.Context, a news.Article) (news.Article, error)
	UpdateArticle(ctx context.Context, a news.Article) (news.Article, error)
	GetArticle(ctx context.Context, id string) (news.Article, error)
	ListArticles(ctx context.Context, publishedOnly bool) ([]news.Article, error)
	DeleteArticle(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]string, error)
}

// PartnerStore persists partner entries.
type PartnerStore interface {
	CreatePartner(ctx context.Context, p partner.Partner) (partner.Partner, error)
	UpdatePartner(ctx context.Context, p partner.Partner) (partner.Partner, error)
	GetPartner(ctx context.Context, id string) (partner.Partner, error)
	ListPartners(ctx context.Context) ([]partner.Partner, error)
	DeletePartner(ctx context.Context, id string) error
}

// AdminStore persists back-office accounts.
type AdminStore interface {
	CreateAdmin(ctx context.Context, a adminuser.Admin) (adminuser.Admin, error)
	UpdateAdmin(ctx context.Context, a adminuser.Admin) (adminuser.Admin, error)
	GetAdmin(ctx context.Context, id string) (adminuser.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (adminuser.Admin, error)
	ListAdmins(ctx context.Context) ([]adminuser.Admin, error)
	DeleteAdmin(ctx context.Context, id string) error
}

// SessionStore tracks issued admin sessions by token hash.
type SessionStore interface {
	CreateSession(ctx context.Context, s adminuser.Session) (adminuser.Session, error)
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (adminuser.Session, error)
	TouchSession(ctx context.Context, id string) error
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsForAdmin(ctx context.Context, adminID string) error
}

// ActivityStore persists the dashboard activity log.
type ActivityStore interface {
	CreateActivity(ctx context.Context, e activity.Entry) (activity.Entry, error)
	ListRecentActivity(ctx context.Context, limit int) ([]activity.Entry, error)
}
