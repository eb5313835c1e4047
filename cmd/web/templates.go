package main

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/myrjola/liftcoach/internal/i18n"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"t": i18n.Translate,
	}).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// render executes the base template into a buffer first so that a failing template results in a clean 500.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, data any) {
	buf := new(bytes.Buffer)
	if err := app.templates.ExecuteTemplate(buf, "base", data); err != nil {
		app.serverError(w, r, fmt.Errorf("execute template: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
