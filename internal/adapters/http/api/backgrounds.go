package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/okian/gradecard/internal/domain/background"
	"github.com/okian/gradecard/internal/domain/presenter"
)

// BackgroundDependencies defines the interface for background operations.
type BackgroundDependencies interface {
	Backgrounds() []background.Entry
	CurrentBackground() (background.Entry, bool, background.State)
	NextBackground(ctx context.Context) (background.Entry, error)
	RandomBackground(ctx context.Context) (background.Entry, error)
	SelectBackground(ctx context.Context, id string) (background.Entry, error)
	Notice(err error, l presenter.Locale) presenter.Notice
	Locale(acceptLanguage string) presenter.Locale
}

// BackgroundHandler handles background rotation requests.
type BackgroundHandler struct {
	deps BackgroundDependencies
}

// NewBackgroundHandler creates a new background handler.
func NewBackgroundHandler(deps BackgroundDependencies) *BackgroundHandler {
	return &BackgroundHandler{deps: deps}
}

type backgroundResponse struct {
	Entry *background.Entry `json:"entry"`
	State string            `json:"state"`
}

type backgroundListResponse struct {
	Entries []background.Entry `json:"entries"`
	Current string             `json:"current,omitempty"`
	State   string             `json:"state"`
}

type selectRequest struct {
	ID string `json:"id"`
}

// HandleList handles GET /api/backgrounds.
func (h *BackgroundHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	cur, ok, state := h.deps.CurrentBackground()
	resp := backgroundListResponse{Entries: h.deps.Backgrounds(), State: state.String()}
	if ok {
		resp.Current = cur.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCurrent handles GET /api/background.
func (h *BackgroundHandler) HandleCurrent(w http.ResponseWriter, _ *http.Request) {
	cur, ok, state := h.deps.CurrentBackground()
	resp := backgroundResponse{State: state.String()}
	if ok {
		resp.Entry = &cur
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleNext handles POST /api/background/next.
func (h *BackgroundHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.deps.NextBackground)
}

// HandleRandom handles POST /api/background/random.
func (h *BackgroundHandler) HandleRandom(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.deps.RandomBackground)
}

// HandleSelect handles PUT /api/background with {"id": "..."}.
func (h *BackgroundHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil || strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	h.respond(w, r, func(ctx context.Context) (background.Entry, error) {
		return h.deps.SelectBackground(ctx, strings.TrimSpace(req.ID))
	})
}

func (h *BackgroundHandler) respond(w http.ResponseWriter, r *http.Request, change func(context.Context) (background.Entry, error)) {
	e, err := change(r.Context())
	if err != nil {
		writeNotice(w, h.deps, requestLocale(r, h.deps), err)
		return
	}
	writeJSON(w, http.StatusOK, backgroundResponse{Entry: &e, State: background.Idle.String()})
}
