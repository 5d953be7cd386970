package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/adminuser"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/admins"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/users"
	"github.com/yassinekamouss/tamkeen-sub000/internal/middleware"
)

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	admin, token, err := h.svc.Admins.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, admins.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.svc.Admins.SessionTTL() / time.Second),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"admin": admin,
		"token": token,
	})
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFrom(r); token != "" {
		if err := h.svc.Admins.Logout(r.Context(), token); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.AdminFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, fmt.Errorf("missing authorization"))
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

func (h *handler) registerAdmin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	role := adminuser.Role(payload.Role)
	if role == "" {
		role = adminuser.RoleAdmin
	}

	created, err := h.svc.Admins.Register(r.Context(), payload.Name, payload.Email, payload.Password, role, actorEmail(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) listOtherAdmins(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.AdminFrom(r.Context())
	others, err := h.svc.Admins.ListOthers(r.Context(), admin.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if others == nil {
		others = []adminuser.Admin{}
	}
	writeJSON(w, http.StatusOK, others)
}

// updateAdmin lets a super admin edit anyone and an admin edit only their own
// profile, never their own role.
func (h *handler) updateAdmin(w http.ResponseWriter, r *http.Request) {
	requester, _ := middleware.AdminFrom(r.Context())
	targetID := mux.Vars(r)["id"]

	if requester.Role != adminuser.RoleSuperAdmin && requester.ID != targetID {
		writeError(w, http.StatusForbidden, fmt.Errorf("insufficient role"))
		return
	}

	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if requester.Role != adminuser.RoleSuperAdmin {
		payload.Role = ""
	}

	updated, err := h.svc.Admins.Update(r.Context(), targetID, payload.Name, payload.Email, payload.Password, adminuser.Role(payload.Role))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	requester, _ := middleware.AdminFrom(r.Context())
	targetID := mux.Vars(r)["id"]
	if requester.ID == targetID {
		writeError(w, http.StatusBadRequest, fmt.Errorf("cannot delete own account"))
		return
	}
	if err := h.svc.Admins.Delete(r.Context(), targetID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Dashboard --------------------------------------------------------------

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.svc.Stats.Dashboard(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (h *handler) recentActivity(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.svc.Activities.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page, err := h.svc.Users.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) exportUsers(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Users.Export(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+users.ExportFilename(time.Now()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
