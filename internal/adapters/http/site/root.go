// Package site serves the embedded grade lookup page.
package site

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register mounts the page at / so it catches every path not claimed by the
// API.
func Register(r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Handle("/*", NewRootHandler())
}

// RootHandler serves the embedded page and its assets.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	h.files.ServeHTTP(w, r)
}
