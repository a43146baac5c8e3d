package wcx

import (
	"net/http"
	"strconv"

	"github.com/a-h/templ"
)

// Render writes a templ component to the HTTP response.
//
//	func preview(w http.ResponseWriter, r *http.Request) {
//	    wcx.Render(w, r, wcx.Static(Counter, map[string]string{"label": "Hi"}))
//	}
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// WriteArtifact writes an export artifact with its content type.
func WriteArtifact(w http.ResponseWriter, art *Artifact) error {
	body, err := art.Bytes()
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", art.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if art.Record != nil {
		w.Header().Set("X-Component-Version", art.Record.Version)
	}
	_, err = w.Write(body)
	return err
}

// StatusFor maps wcx errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(err):
		return http.StatusNotFound
	case IsMalformedBehavior(err), IsInvalid(err):
		return http.StatusUnprocessableEntity
	case IsConfiguration(err):
		return http.StatusServiceUnavailable
	case IsTransport(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
