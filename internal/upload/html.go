package upload

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

var (
	uploadTemplate = template.Must(template.ParseFS(templatesFS, "templates/layout.html", "templates/upload.html"))
	resultTemplate = template.Must(template.ParseFS(templatesFS, "templates/layout.html", "templates/result.html"))
)

// render executes tmpl into a buffer so template errors never produce a
// half-written page
func render(w http.ResponseWriter, status int, tmpl *template.Template, data interface{}) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("Error rendering template", "template", tmpl.Name(), "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
