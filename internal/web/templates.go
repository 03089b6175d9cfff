// Package web renders the demo page and the HTML fragments pushed over SSE.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// DownloadPlaceholder is the link target shown once a job completes.
const DownloadPlaceholder = "#download"

// Templates holds the parsed page and fragment templates. It satisfies
// push.Renderer.
type Templates struct {
	page     *template.Template
	progress *template.Template
	done     *template.Template
}

// New parses the embedded templates.
func New() (*Templates, error) {
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	progress, err := template.ParseFS(templateFS, "templates/progress.html")
	if err != nil {
		return nil, fmt.Errorf("parse progress template: %w", err)
	}
	done, err := template.ParseFS(templateFS, "templates/done.html")
	if err != nil {
		return nil, fmt.Errorf("parse done template: %w", err)
	}
	return &Templates{page: page, progress: progress, done: done}, nil
}

// RenderPage writes the full page bound to clientID.
func (t *Templates) RenderPage(w io.Writer, clientID string) error {
	if err := t.page.Execute(w, struct{ ClientID string }{clientID}); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// RenderProgress renders the progress bar fragment for percent.
func (t *Templates) RenderProgress(percent int) (string, error) {
	return execute(t.progress, struct{ Percent int }{percent})
}

// RenderDone renders the completion fragment.
func (t *Templates) RenderDone() (string, error) {
	return execute(t.done, struct{ DownloadURL string }{DownloadPlaceholder})
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
