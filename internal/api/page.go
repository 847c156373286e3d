package api

import (
	"bytes"
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/starford/corner/internal/dashboard"
)

//go:embed page.html.tmpl
var pageSource string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

// PageHandler serves the server-rendered dashboard.
type PageHandler struct {
	svc *dashboard.Service
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(svc *dashboard.Service) *PageHandler {
	return &PageHandler{svc: svc}
}

// ServeHTTP renders the dashboard at the current civil instant.
func (p *PageHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p.svc.Page(p.svc.Now())); err != nil {
		slog.Error("render page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
