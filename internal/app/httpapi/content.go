package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	newsdomain "github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/news"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/partner"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/program"
	"github.com/yassinekamouss/tamkeen-sub000/internal/middleware"
)

// --- Programs ---------------------------------------------------------------

// listPrograms returns published programs; a caller with a live admin session
// sees drafts too.
func (h *handler) listPrograms(w http.ResponseWriter, r *http.Request) {
	publishedOnly := true
	if token := middleware.TokenFrom(r); token != "" {
		if _, err := h.svc.Admins.Authorize(r.Context(), token); err == nil {
			publishedOnly = false
		}
	}

	list, err := h.svc.Programs.List(r.Context(), publishedOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []program.Program{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getProgram(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Programs.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) createProgram(w http.ResponseWriter, r *http.Request) {
	var p program.Program
	if err := decodeJSON(r.Body, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.svc.Programs.Create(r.Context(), p, actorEmail(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateProgram(w http.ResponseWriter, r *http.Request) {
	var p program.Program
	if err := decodeJSON(r.Body, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p.ID = mux.Vars(r)["id"]
	updated, err := h.svc.Programs.Update(r.Context(), p, actorEmail(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteProgram(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Programs.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) toggleProgram(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	current, err := h.svc.Programs.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	updated, err := h.svc.Programs.SetPublished(r.Context(), id, !current.Published, actorEmail(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) setProgramHero(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Hero *program.Hero `json:"hero"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	updated, err := h.svc.Programs.SetHero(r.Context(), mux.Vars(r)["id"], payload.Hero)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// --- News -------------------------------------------------------------------

func (h *handler) listNews(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.News.List(r.Context(), true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []newsdomain.Article{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) listAllNews(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.News.List(r.Context(), false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []newsdomain.Article{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) newsCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.News.Categories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *handler) getNews(w http.ResponseWriter, r *http.Request) {
	article, err := h.svc.News.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (h *handler) createNews(w http.ResponseWriter, r *http.Request) {
	var article newsdomain.Article
	if err := decodeJSON(r.Body, &article); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.svc.News.Create(r.Context(), article, actorEmail(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateNews(w http.ResponseWriter, r *http.Request) {
	var article newsdomain.Article
	if err := decodeJSON(r.Body, &article); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	article.ID = mux.Vars(r)["id"]
	updated, err := h.svc.News.Update(r.Context(), article, actorEmail(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteNews(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.News.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Partners ---------------------------------------------------------------

func (h *handler) listPartners(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Partners.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []partner.Partner{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) createPartner(w http.ResponseWriter, r *http.Request) {
	var p partner.Partner
	if err := decodeJSON(r.Body, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.svc.Partners.Create(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updatePartner(w http.ResponseWriter, r *http.Request) {
	var p partner.Partner
	if err := decodeJSON(r.Body, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p.ID = mux.Vars(r)["id"]
	updated, err := h.svc.Partners.Update(r.Context(), p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deletePartner(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Partners.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func actorEmail(r *http.Request) string {
	if admin, ok := middleware.AdminFrom(r.Context()); ok {
		return admin.Email
	}
	return ""
}
