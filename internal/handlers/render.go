package handlers

import (
	"html/template"
	"log"
	"net/http"

	"stagepass/web/templates"
)

// Renderer renders the embedded HTML pages
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses all embedded page templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templates.FS, "*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes one page with the given status code
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Render %s: %v", name, err)
	}
}
