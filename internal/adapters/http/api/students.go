package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/gradecard/internal/domain/presenter"
)

// StudentDependencies defines the interface for student lookups.
type StudentDependencies interface {
	Lookup(ctx context.Context, raw string, l presenter.Locale) (presenter.Payload, error)
	Notice(err error, l presenter.Locale) presenter.Notice
	Locale(acceptLanguage string) presenter.Locale
}

// StudentsHandler handles student lookups.
type StudentsHandler struct {
	deps StudentDependencies
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(deps StudentDependencies) *StudentsHandler {
	return &StudentsHandler{deps: deps}
}

// HandleGetStudent handles GET /api/students/{id} and GET /api/students?id=.
// The raw input is passed through untouched so validation can report empty
// and malformed ids.
func (h *StudentsHandler) HandleGetStudent(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		raw = r.URL.Query().Get("id")
	}
	l := requestLocale(r, h.deps)

	payload, err := h.deps.Lookup(r.Context(), raw, l)
	if err != nil {
		writeNotice(w, h.deps, l, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}
