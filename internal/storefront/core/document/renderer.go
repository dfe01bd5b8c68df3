package document

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

type page struct {
	Doc       Document
	AutoPrint bool
	PrintedAt string
}

// Renderer executes the embedded document templates. Templates are parsed
// once in NewRenderer.
type Renderer struct {
	tmpl *template.Template
	now  func() time.Time
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("document: parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, now: time.Now}, nil
}

// RenderView writes the document as a page with print and close controls.
func (r *Renderer) RenderView(w io.Writer, doc Document) error {
	return r.render(w, "view.gohtml", page{Doc: doc})
}

// RenderPrintable writes the standalone document that prints itself on load.
func (r *Renderer) RenderPrintable(w io.Writer, doc Document) error {
	return r.render(w, "printable.gohtml", page{Doc: doc, PrintedAt: r.now().Format(dateLayout)})
}

func (r *Renderer) renderViewAndPrint(w io.Writer, doc Document) error {
	return r.render(w, "view.gohtml", page{Doc: doc, AutoPrint: true})
}

func (r *Renderer) render(w io.Writer, name string, p page) error {
	if err := r.tmpl.ExecuteTemplate(w, name, p); err != nil {
		return fmt.Errorf("document: render %s: %w", name, err)
	}
	return nil
}
