package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/pthm/wcx"
	"github.com/pthm/wcx/example/components"
)

func main() {
	b := wcx.New()
	if err := components.Init(b); err != nil {
		log.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/wc/{file}", handleArtifact(b))
	mux.HandleFunc("/", handleIndex)

	addr := ":8080"
	fmt.Printf("Starting server at http://localhost%s\n", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	title := r.URL.Query().Get("title")
	if title == "" {
		title = "Today"
	}
	if err := wcx.Render(w, r, page(title)); err != nil {
		http.Error(w, err.Error(), wcx.StatusFor(err))
	}
}

// page server-renders every component so the list is visible before the
// scripts load, then includes each script to upgrade the elements.
func page(title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!doctype html><html><head><title>wcx todo</title>"); err != nil {
			return err
		}
		for _, def := range components.All {
			if _, err := fmt.Fprintf(w, `<script type="module" src="/wc/%s.js"></script>`, def.Name); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</head><body>"); err != nil {
			return err
		}
		body := []templ.Component{
			wcx.Static(components.TodoList, map[string]string{"title": title}),
			wcx.Static(components.AddTodo, map[string]string{"placeholder": "Add an item"}),
		}
		for _, c := range body {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

func handleArtifact(b *wcx.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := r.PathValue("file")
		format := wcx.FormatScript
		name, ok := strings.CutSuffix(file, ".js")
		if !ok {
			if name, ok = strings.CutSuffix(file, ".json"); !ok {
				http.NotFound(w, r)
				return
			}
			format = wcx.FormatJSON
		}
		art, err := b.Export(r.Context(), name, wcx.ExportOptions{Format: format})
		if err != nil {
			http.Error(w, err.Error(), wcx.StatusFor(err))
			return
		}
		if err := wcx.WriteArtifact(w, art); err != nil {
			log.Printf("write %s: %v", file, err)
		}
	}
}
