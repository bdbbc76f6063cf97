// Package views renders the HTML pages shown after following a confirmation link.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

const (
	PageSuccess = "success.html"
	PageError   = "error.html"
)

//go:embed templates/*.html
var templateFS embed.FS

type PageData struct {
	Title   string
	Kind    string
	Email   string
	Message string
}

type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	renderer := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageSuccess, PageError} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		renderer.pages[page] = tmpl
	}
	return renderer, nil
}

func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data PageData) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %s", page)
	}
	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := body.WriteTo(w)
	return err
}
