package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/adminuser"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/program"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/activities"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/admins"
	newssvc "github.com/yassinekamouss/tamkeen-sub000/internal/app/services/news"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/partners"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/programs"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/stats"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/tests"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/users"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage/memory"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

type fixture struct {
	router     http.Handler
	store      *memory.Store
	adminToken string
	superToken string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	log := logger.Nop()

	acts := activities.New(store, nil, log)
	adminSvc := admins.New(store, store, acts, []byte("test-secret"), log)
	svc := Services{
		Programs:   programs.New(store, acts, log),
		Tests:      tests.New(store, store, store, nil, acts, nil, log),
		News:       newssvc.New(store, acts, log),
		Partners:   partners.New(store, log),
		Admins:     adminSvc,
		Users:      users.New(store, store, log),
		Stats:      stats.New(store, store, store, log),
		Activities: acts,
	}

	ctx := context.Background()
	if _, err := adminSvc.Register(ctx, "Super", "super@example.com", "super secret", adminuser.RoleSuperAdmin, ""); err != nil {
		t.Fatalf("seed super admin: %v", err)
	}
	if _, err := adminSvc.Register(ctx, "Admin", "admin@example.com", "admin secret", adminuser.RoleAdmin, ""); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	_, superToken, err := adminSvc.Authenticate(ctx, "super@example.com", "super secret")
	if err != nil {
		t.Fatalf("login super: %v", err)
	}
	_, adminToken, err := adminSvc.Authenticate(ctx, "admin@example.com", "admin secret")
	if err != nil {
		t.Fatalf("login admin: %v", err)
	}

	router := NewRouter(svc, nil, Config{UploadDir: t.TempDir()}, log)
	return &fixture{router: router, store: store, adminToken: adminToken, superToken: superToken}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func validSubmission() map[string]any {
	return map[string]any{
		"applicantType":         "physique",
		"email":                 "sara@example.com",
		"nom":                   "Alami",
		"prenom":                "Sara",
		"telephone":             "0612345678",
		"sexe":                  "femme",
		"age":                   29,
		"secteurTravail":        "industrie",
		"region":                "Casablanca-Settat",
		"statutJuridique":       "auto-entrepreneur",
		"anneeCreation":         "2024",
		"montantInvestissement": 150000,
		"acceptPrivacyPolicy":   true,
	}
}

func TestSubmissionFlow(t *testing.T) {
	f := newFixture(t)

	create := f.do(t, http.MethodPost, "/programs", f.adminToken, map[string]any{
		"name":     "Forsa",
		"criteres": map[string]any{"combinator": "and", "rules": []any{}},
	})
	if create.Code != http.StatusCreated {
		t.Fatalf("create program: %d %s", create.Code, create.Body.String())
	}
	created := decodeBody[program.Program](t, create)

	toggle := f.do(t, http.MethodPost, "/programs/"+created.ID+"/toggle", f.adminToken, nil)
	if toggle.Code != http.StatusOK {
		t.Fatalf("toggle: %d %s", toggle.Code, toggle.Body.String())
	}

	submit := f.do(t, http.MethodPost, "/test/eligibilite", "", validSubmission())
	if submit.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", submit.Code, submit.Body.String())
	}
	result := decodeBody[struct {
		TestID   string            `json:"testId"`
		Programs []program.Program `json:"programs"`
	}](t, submit)
	if result.TestID == "" || len(result.Programs) != 1 {
		t.Fatalf("result = %+v", result)
	}

	contact := f.do(t, http.MethodPatch, "/test/eligibilite/"+result.TestID+"/contact", "", nil)
	if contact.Code != http.StatusOK {
		t.Fatalf("contact: %d %s", contact.Code, contact.Body.String())
	}

	phones := f.do(t, http.MethodGet, "/test/eligibilite/phones?email=sara@example.com", "", nil)
	if phones.Code != http.StatusOK {
		t.Fatalf("phones: %d", phones.Code)
	}
	phonesBody := decodeBody[struct {
		Phones []string `json:"phones"`
	}](t, phones)
	if len(phonesBody.Phones) != 1 || phonesBody.Phones[0] != "0612345678" {
		t.Fatalf("phones = %v", phonesBody.Phones)
	}
}

func TestSubmissionValidationErrors(t *testing.T) {
	f := newFixture(t)

	body := validSubmission()
	delete(body, "email")
	body["acceptPrivacyPolicy"] = false

	rec := f.do(t, http.MethodPost, "/test/eligibilite", "", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("code = %d %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[struct {
		Errors map[string]string `json:"errors"`
	}](t, rec)
	if _, ok := resp.Errors["email"]; !ok {
		t.Fatalf("errors = %v", resp.Errors)
	}
	if _, ok := resp.Errors["acceptPrivacyPolicy"]; !ok {
		t.Fatalf("errors = %v", resp.Errors)
	}

	unknown := validSubmission()
	unknown["surprise"] = true
	rec = f.do(t, http.MethodPost, "/test/eligibilite", "", unknown)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: %d", rec.Code)
	}
}

func TestProgramVisibility(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodPost, "/programs", f.adminToken, map[string]any{"name": "Draft"})

	public := f.do(t, http.MethodGet, "/programs", "", nil)
	if public.Code != http.StatusOK {
		t.Fatalf("public list: %d", public.Code)
	}
	if list := decodeBody[[]program.Program](t, public); len(list) != 0 {
		t.Fatalf("anon sees drafts: %+v", list)
	}

	authed := f.do(t, http.MethodGet, "/programs", f.adminToken, nil)
	if list := decodeBody[[]program.Program](t, authed); len(list) != 1 {
		t.Fatalf("admin list = %+v", list)
	}

	if rec := f.do(t, http.MethodPost, "/programs", "", map[string]any{"name": "x"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anon create: %d", rec.Code)
	}
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/admin/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "admin secret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}

	var cookie string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" {
			cookie = c.Value
			if !c.HttpOnly {
				t.Fatal("session cookie must be http-only")
			}
		}
	}
	if cookie == "" {
		t.Fatal("auth cookie not set")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: cookie})
	me := httptest.NewRecorder()
	f.router.ServeHTTP(me, req)
	if me.Code != http.StatusOK {
		t.Fatalf("me: %d %s", me.Code, me.Body.String())
	}
	admin := decodeBody[adminuser.Admin](t, me)
	if admin.Email != "admin@example.com" {
		t.Fatalf("me = %+v", admin)
	}

	bad := f.do(t, http.MethodPost, "/admin/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong",
	})
	if bad.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", bad.Code)
	}
}

func TestRoleEnforcement(t *testing.T) {
	f := newFixture(t)

	payload := map[string]string{
		"name":     "New Admin",
		"email":    "new@example.com",
		"password": "new password",
		"role":     "admin",
	}
	if rec := f.do(t, http.MethodPost, "/admin/register", f.adminToken, payload); rec.Code != http.StatusForbidden {
		t.Fatalf("admin register: %d", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/admin/register", f.superToken, payload); rec.Code != http.StatusCreated {
		t.Fatalf("super register: %d %s", rec.Code, rec.Body.String())
	}

	others := f.do(t, http.MethodGet, "/admin/others", f.superToken, nil)
	list := decodeBody[[]adminuser.Admin](t, others)
	if len(list) != 2 {
		t.Fatalf("others = %+v", list)
	}

	var target adminuser.Admin
	for _, a := range list {
		if a.Email == "new@example.com" {
			target = a
		}
	}
	if rec := f.do(t, http.MethodDelete, "/admin/"+target.ID, f.adminToken, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("admin delete: %d", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, "/admin/"+target.ID, f.superToken, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("super delete: %d", rec.Code)
	}
}

func TestLogoutKillsSession(t *testing.T) {
	f := newFixture(t)

	if rec := f.do(t, http.MethodPost, "/admin/logout", f.adminToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("logout: %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/admin/me", f.adminToken, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: %d", rec.Code)
	}
}

func TestNewsEndpoints(t *testing.T) {
	f := newFixture(t)

	draft := f.do(t, http.MethodPost, "/admin/news", f.adminToken, map[string]any{
		"title":    "Brouillon",
		"category": "economie",
	})
	if draft.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", draft.Code, draft.Body.String())
	}
	live := f.do(t, http.MethodPost, "/admin/news", f.adminToken, map[string]any{
		"title":     "Réforme des aides",
		"category":  "emploi",
		"published": true,
	})
	if live.Code != http.StatusCreated {
		t.Fatalf("create live: %d", live.Code)
	}

	public := f.do(t, http.MethodGet, "/news", "", nil)
	if list := decodeBody[[]map[string]any](t, public); len(list) != 1 {
		t.Fatalf("public news = %+v", list)
	}
	all := f.do(t, http.MethodGet, "/admin/news", f.adminToken, nil)
	if list := decodeBody[[]map[string]any](t, all); len(list) != 2 {
		t.Fatalf("admin news = %+v", list)
	}

	categories := f.do(t, http.MethodGet, "/news/categories", "", nil)
	if cats := decodeBody[[]string](t, categories); len(cats) != 2 {
		t.Fatalf("categories = %v", cats)
	}
}

func TestStatsAndActivity(t *testing.T) {
	f := newFixture(t)

	if rec := f.do(t, http.MethodPost, "/test/eligibilite", "", validSubmission()); rec.Code != http.StatusCreated {
		t.Fatalf("submit: %d", rec.Code)
	}

	dash := f.do(t, http.MethodGet, "/stats/admin", f.adminToken, nil)
	if dash.Code != http.StatusOK {
		t.Fatalf("stats: %d", dash.Code)
	}
	board := decodeBody[map[string]any](t, dash)
	if board["totalTests"].(float64) != 1 {
		t.Fatalf("stats = %v", board)
	}

	feed := f.do(t, http.MethodGet, "/admin/activity", f.adminToken, nil)
	if feed.Code != http.StatusOK {
		t.Fatalf("activity: %d", feed.Code)
	}
	if entries := decodeBody[[]map[string]any](t, feed); len(entries) == 0 {
		t.Fatal("activity feed empty after submission")
	}

	if rec := f.do(t, http.MethodGet, "/stats/admin", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anon stats: %d", rec.Code)
	}
}

func TestUsersEndpoints(t *testing.T) {
	f := newFixture(t)

	if rec := f.do(t, http.MethodPost, "/test/eligibilite", "", validSubmission()); rec.Code != http.StatusCreated {
		t.Fatalf("submit: %d", rec.Code)
	}

	list := f.do(t, http.MethodGet, "/users?limit=10", f.adminToken, nil)
	if list.Code != http.StatusOK {
		t.Fatalf("users: %d", list.Code)
	}
	page := decodeBody[struct {
		Total int `json:"total"`
	}](t, list)
	if page.Total != 1 {
		t.Fatalf("page = %+v", page)
	}

	export := f.do(t, http.MethodGet, "/users/export", f.adminToken, nil)
	if export.Code != http.StatusOK {
		t.Fatalf("export: %d", export.Code)
	}
	if ct := export.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type = %q", ct)
	}
	if export.Body.Len() == 0 {
		t.Fatal("empty export body")
	}
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t)

	upload := func(field string, content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile(field, "logo.png")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write part: %v", err)
		}
		_ = mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/admin/uploads", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+f.adminToken)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	// Minimal PNG signature makes DetectContentType return image/png.
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
	rec := upload("image", png)
	if rec.Code != http.StatusCreated {
		t.Fatalf("png upload: %d %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[map[string]string](t, rec)
	if !strings.HasPrefix(resp["url"], "/uploads/") || !strings.HasSuffix(resp["url"], ".png") {
		t.Fatalf("url = %q", resp["url"])
	}

	if rec := upload("image", []byte("#!/bin/sh\nrm -rf /")); rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("script upload: %d", rec.Code)
	}
	if rec := upload("wrong-field", png); rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong field: %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	if rec := f.do(t, http.MethodDelete, "/test/eligibilite", "", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestNotFoundMapping(t *testing.T) {
	f := newFixture(t)
	paths := []string{
		"/programs/" + "missing",
		"/test/eligibilite/personne/missing",
	}
	for _, path := range paths {
		if rec := f.do(t, http.MethodGet, path, f.adminToken, nil); rec.Code != http.StatusNotFound {
			t.Fatalf("%s: %d", path, rec.Code)
		}
	}
	if rec := f.do(t, http.MethodPatch, "/test/eligibilite/missing/contact", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("contact: %d", rec.Code)
	}
}
