package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pthm/wcx"
	"github.com/pthm/wcx/internal/storage"
	"github.com/pthm/wcx/lib/behavior"
)

const maxRecordBytes = 1 << 20

// ListComponents handles GET /components.
func (h *Handler) ListComponents(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// SaveComponent handles POST /components. The record must validate and
// its behavior must compile before it is stored.
func (h *Handler) SaveComponent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRecordBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("read body: "+err.Error()))
		return
	}
	if len(body) > maxRecordBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("record too large"))
		return
	}

	rec, err := wcx.ParseRecord(body)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := wcx.Check(rec); err != nil {
		h.fail(w, err)
		return
	}

	entry, err := h.repo.Save(r.Context(), rec)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.logger.Info("component saved",
		slog.String("name", entry.Name),
		slog.String("version", entry.Version),
		slog.String("id", entry.ID))
	writeJSON(w, http.StatusCreated, entry)
}

// GetComponent handles GET /components/{name}.
func (h *Handler) GetComponent(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GetScript handles GET /components/{name}/script.
func (h *Handler) GetScript(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	script, err := wcx.GenerateScript(rec)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.write(w, &wcx.Artifact{Format: wcx.FormatScript, Record: rec, Script: script})
}

// GetDocument handles GET /components/{name}/document.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	h.write(w, &wcx.Artifact{Format: wcx.FormatJSON, Record: rec, Document: wcx.GenerateDocument(rec)})
}

// Preview handles GET /components/{name}/preview. Query parameters become
// element attributes.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.load(w, r)
	if !ok {
		return
	}
	def, err := wcx.Reconstruct(rec)
	if err != nil {
		h.fail(w, err)
		return
	}
	attrs := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			attrs[k] = v[0]
		}
	}
	// Static renders before writing, so a template error leaves the body
	// empty and can still be reported as JSON.
	if err := wcx.Render(w, r, wcx.Static(def, attrs)); err != nil {
		h.fail(w, err)
	}
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*wcx.Record, bool) {
	name := chi.URLParam(r, "name")
	rec, _, err := h.repo.Get(r.Context(), name)
	if err != nil {
		h.fail(w, err)
		return nil, false
	}
	return rec, true
}

func (h *Handler) write(w http.ResponseWriter, art *wcx.Artifact) {
	if err := wcx.WriteArtifact(w, art); err != nil {
		h.logger.Error("write artifact failed", slog.String("error", err.Error()))
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, behavior.ErrEvaluation):
		return http.StatusUnprocessableEntity
	}
	return wcx.StatusFor(err)
}
