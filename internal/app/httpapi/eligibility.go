package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/submission"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/metrics"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/services/tests"
)

// submitTest runs the eligibility pipeline. Validation failures come back as
// 422 with the per-field message map.
func (h *handler) submitTest(w http.ResponseWriter, r *http.Request) {
	var form submission.Form
	if err := decodeJSON(r.Body, &form); err != nil {
		metrics.RecordSubmission("malformed", 0)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.svc.Tests.Submit(r.Context(), form)
	if err != nil {
		var verr *tests.ValidationError
		if errors.As(err, &verr) {
			metrics.RecordSubmission("invalid", 0)
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verr.Fields})
			return
		}
		metrics.RecordSubmission("error", 0)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	metrics.RecordSubmission("accepted", len(result.Programs))
	writeJSON(w, http.StatusCreated, map[string]any{
		"testId":   result.Test.ID,
		"programs": result.Programs,
	})
}

func (h *handler) requestContact(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	test, err := h.svc.Tests.RequestContact(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, test)
}

func (h *handler) phonesByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("email query parameter is required"))
		return
	}
	phones, err := h.svc.Tests.PhonesByEmail(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if phones == nil {
		phones = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"phones": phones})
}

func (h *handler) personHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	person, history, err := h.svc.Tests.History(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if history == nil {
		history = []submission.Test{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"personne": person,
		"tests":    history,
	})
}
