package app

import (
	"context"
	"fmt"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/activities"
	adminsvc "github.com/yassinekamouss/tamkeen-sub000/internal/app/services/admins"
	newssvc "github.com/yassinekamouss/tamkeen-sub000/internal/app/services/news"
	partnersvc "github.com/yassinekamouss/tamkeen-sub000/internal/app/services/partners"
	programsvc "github.com/yassinekamouss/tamkeen-sub000/internal/app/services/programs"
	statssvc "github.com/yassinekamouss/tamkeen-sub000/internal/app/services/stats"
	testsvc "github.com/yassinekamouss/tamkeen-sub000/internal/app/services/tests"
	usersvc "github.com/yassinekamouss/tamkeen-sub000/internal/app/services/users"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage/memory"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/system"
	"github.com/yassinekamouss/tamkeen-sub000/internal/realtime"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Programs   storage.ProgramStore
	Persons    storage.PersonStore
	Tests      storage.TestStore
	News       storage.NewsStore
	Partners   storage.PartnerStore
	Admins     storage.AdminStore
	Sessions   storage.SessionStore
	Activities storage.ActivityStore
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Hub        *realtime.Hub
	Programs   *programsvc.Service
	Tests      *testsvc.Service
	News       *newssvc.Service
	Partners   *partnersvc.Service
	Admins     *adminsvc.Service
	Users      *usersvc.Service
	Stats      *statssvc.Service
	Activities *activities.Service
}

// New builds a fully initialised application with the provided stores.
// jwtSecret signs admin session tokens and must not be empty.
func New(stores Stores, jwtSecret []byte, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if len(jwtSecret) == 0 {
		return nil, fmt.Errorf("jwt secret is required")
	}

	mem := memory.New()
	if stores.Programs == nil {
		stores.Programs = mem
	}
	if stores.Persons == nil {
		stores.Persons = mem
	}
	if stores.Tests == nil {
		stores.Tests = mem
	}
	if stores.News == nil {
		stores.News = mem
	}
	if stores.Partners == nil {
		stores.Partners = mem
	}
	if stores.Admins == nil {
		stores.Admins = mem
	}
	if stores.Sessions == nil {
		stores.Sessions = mem
	}
	if stores.Activities == nil {
		stores.Activities = mem
	}

	manager := system.NewManager()

	hub := realtime.NewHub(log, nil)
	acts := activities.New(stores.Activities, hub, log)

	app := &Application{
		manager:    manager,
		log:        log,
		Hub:        hub,
		Programs:   programsvc.New(stores.Programs, acts, log),
		Tests:      testsvc.New(stores.Tests, stores.Persons, stores.Programs, nil, acts, hub, log),
		News:       newssvc.New(stores.News, acts, log),
		Partners:   partnersvc.New(stores.Partners, log),
		Admins:     adminsvc.New(stores.Admins, stores.Sessions, acts, jwtSecret, log),
		Users:      usersvc.New(stores.Persons, stores.Tests, log),
		Stats:      statssvc.New(stores.Tests, stores.Persons, stores.Programs, log),
		Activities: acts,
	}

	if err := manager.Register(hub); err != nil {
		return nil, fmt.Errorf("register %s: %w", hub.Name(), err)
	}

	return app, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
