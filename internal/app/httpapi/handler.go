// Package httpapi exposes the REST and websocket API.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/adminuser"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/metrics"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/activities"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/admins"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/news"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/partners"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/programs"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/stats"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/tests"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/users"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage/memory"
	"github.com/yassinekamouss/tamkeen-sub000/internal/middleware"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

// Config tunes the handler.
type Config struct {
	// UploadDir is where multipart image uploads land. Empty disables
	// uploads.
	UploadDir string
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

// Services bundles everything the API serves.
type Services struct {
	Programs   *programs.Service
	Tests      *tests.Service
	News       *news.Service
	Partners   *partners.Service
	Admins     *admins.Service
	Users      *users.Service
	Stats      *stats.Service
	Activities *activities.Service
}

type handler struct {
	svc Services
	cfg Config
	log *logger.Logger
}

// NewRouter builds the full route table. realtimeFeed serves the websocket
// endpoint and may be nil.
func NewRouter(svc Services, realtimeFeed http.Handler, cfg Config, log *logger.Logger) *mux.Router {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{svc: svc, cfg: cfg, log: log}

	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	if realtimeFeed != nil {
		r.Handle("/ws", realtimeFeed).Methods(http.MethodGet)
	}

	// Eligibility pipeline.
	r.HandleFunc("/test/eligibilite", h.submitTest).Methods(http.MethodPost)
	r.HandleFunc("/test/eligibilite/phones", h.phonesByEmail).Methods(http.MethodGet)
	r.HandleFunc("/test/eligibilite/personne/{id}", h.personHistory).Methods(http.MethodGet)
	r.HandleFunc("/test/eligibilite/{id}/contact", h.requestContact).Methods(http.MethodPatch)

	// Public content.
	r.HandleFunc("/programs", h.listPrograms).Methods(http.MethodGet)
	r.HandleFunc("/programs/{id}", h.getProgram).Methods(http.MethodGet)
	r.HandleFunc("/news", h.listNews).Methods(http.MethodGet)
	r.HandleFunc("/news/categories", h.newsCategories).Methods(http.MethodGet)
	r.HandleFunc("/news/{id}", h.getNews).Methods(http.MethodGet)
	r.HandleFunc("/partenaires", h.listPartners).Methods(http.MethodGet)

	// Session entry point.
	r.HandleFunc("/admin/login", h.login).Methods(http.MethodPost)

	// Everything below requires a live admin session.
	authed := r.NewRoute().Subrouter()
	authed.Use(middleware.RequireAuth(svc.Admins))

	authed.HandleFunc("/programs", h.createProgram).Methods(http.MethodPost)
	authed.HandleFunc("/programs/{id}", h.updateProgram).Methods(http.MethodPut)
	authed.HandleFunc("/programs/{id}", h.deleteProgram).Methods(http.MethodDelete)
	authed.HandleFunc("/programs/{id}/toggle", h.toggleProgram).Methods(http.MethodPost)
	authed.HandleFunc("/programs/{id}/hero", h.setProgramHero).Methods(http.MethodPut)

	authed.HandleFunc("/admin/news", h.listAllNews).Methods(http.MethodGet)
	authed.HandleFunc("/admin/news", h.createNews).Methods(http.MethodPost)
	authed.HandleFunc("/admin/news/{id}", h.updateNews).Methods(http.MethodPut)
	authed.HandleFunc("/admin/news/{id}", h.deleteNews).Methods(http.MethodDelete)

	authed.HandleFunc("/partenaires", h.createPartner).Methods(http.MethodPost)
	authed.HandleFunc("/partenaires/{id}", h.updatePartner).Methods(http.MethodPut)
	authed.HandleFunc("/partenaires/{id}", h.deletePartner).Methods(http.MethodDelete)

	authed.HandleFunc("/admin/logout", h.logout).Methods(http.MethodPost)
	authed.HandleFunc("/admin/me", h.me).Methods(http.MethodGet)
	authed.HandleFunc("/admin/others", h.listOtherAdmins).Methods(http.MethodGet)
	authed.HandleFunc("/admin/activity", h.recentActivity).Methods(http.MethodGet)
	authed.HandleFunc("/admin/uploads", h.upload).Methods(http.MethodPost)

	authed.HandleFunc("/stats/admin", h.dashboard).Methods(http.MethodGet)
	authed.HandleFunc("/users", h.listUsers).Methods(http.MethodGet)
	authed.HandleFunc("/users/export", h.exportUsers).Methods(http.MethodGet)

	authed.HandleFunc("/admin/{id}", h.updateAdmin).Methods(http.MethodPut)

	// Account creation and deletion stay with super admins.
	super := r.NewRoute().Subrouter()
	super.Use(middleware.RequireAuth(svc.Admins), middleware.RequireRole(adminuser.RoleSuperAdmin))
	super.HandleFunc("/admin/register", h.registerAdmin).Methods(http.MethodPost)
	super.HandleFunc("/admin/{id}", h.deleteAdmin).Methods(http.MethodDelete)

	if cfg.UploadDir != "" {
		r.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))),
		).Methods(http.MethodGet)
	}

	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(body io.ReadCloser, dst any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// writeStoreError maps not-found store errors to 404.
func writeStoreError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, memory.ErrNotFound) {
		status = http.StatusNotFound
	}
	writeError(w, status, err)
}
