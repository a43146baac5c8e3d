// Package wcxecho serves wcx component artifacts from an Echo instance.
//
//	b := wcx.New()
//	b.Define(Counter)
//
//	e := echo.New()
//	wcxecho.Mount(e, b)
//	// GET /wc/click-counter.js   -> self-registering script
//	// GET /wc/click-counter.json -> JSON document
//
// Or mount on a group with middleware:
//
//	g := e.Group("/app", authMiddleware)
//	wcxecho.MountGroup(g, b)
package wcxecho

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/pthm/wcx"
)

// Option configures Mount and MountGroup.
type Option func(*options)

type options struct {
	path string
}

// WithPath sets the URL path prefix for artifact routes.
// Defaults to "/wc/".
func WithPath(path string) Option {
	return func(o *options) {
		if !strings.HasSuffix(path, "/") {
			path += "/"
		}
		o.path = path
	}
}

// Mount registers the artifact route on an Echo instance.
func Mount(e *echo.Echo, b *wcx.Builder, opts ...Option) {
	o := newOptions(opts)
	e.GET(o.path+":file", Handler(b))
}

// MountGroup registers the artifact route on an Echo group so it shares
// the group's middleware.
func MountGroup(g *echo.Group, b *wcx.Builder, opts ...Option) {
	o := newOptions(opts)
	g.GET(o.path+":file", Handler(b))
}

func newOptions(opts []Option) *options {
	o := &options{path: "/wc/"}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Handler serves "<name>.js" and "<name>.json" from b. It expects the
// file name in the ":file" path parameter.
func Handler(b *wcx.Builder) echo.HandlerFunc {
	return func(c echo.Context) error {
		file := c.Param("file")
		var (
			name   string
			format wcx.Format
		)
		switch {
		case strings.HasSuffix(file, ".js"):
			name, format = strings.TrimSuffix(file, ".js"), wcx.FormatScript
		case strings.HasSuffix(file, ".json"):
			name, format = strings.TrimSuffix(file, ".json"), wcx.FormatJSON
		default:
			return echo.NewHTTPError(http.StatusNotFound, "unknown artifact "+file)
		}

		art, err := b.Export(c.Request().Context(), name, wcx.ExportOptions{Format: format})
		if err != nil {
			return echo.NewHTTPError(wcx.StatusFor(err), err.Error())
		}
		return wcx.WriteArtifact(c.Response(), art)
	}
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return wcxecho.Render(c, wcx.Static(Counter, map[string]string{"label": "Hi"}))
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(c.Request().Context(), c.Response())
}
