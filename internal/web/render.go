package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/hpungsan/degreeplan/internal/errors"
	"github.com/hpungsan/degreeplan/internal/ops"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "evaluations", "majors"
}

// MajorsPageData is the template data for the majors page.
type MajorsPageData struct {
	PageData
	Majors []ops.MajorSummary
}

// EvaluationsPageData is the template data for the evaluation history page.
type EvaluationsPageData struct {
	PageData
	Items      []ops.EvaluationItem
	Pagination ops.Pagination
	Major      string
}

// EvaluationPageData is the template data for a single evaluation.
type EvaluationPageData struct {
	PageData
	Evaluation *ops.EvaluationRecord
	AdviceHTML template.HTML
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    *zap.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}

	funcMap := template.FuncMap{
		"add":           func(a, b int) int { return a + b },
		"sub":           func(a, b int) int { return a - b },
		"formatTime":    formatTime,
		"formatPercent": formatPercent,
		"ratioPercent":  func(r float64) string { return formatPercent(r * 100) },
		"deref":         deref,
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"majors":      "majors.html",
		"evaluations": "evaluations.html",
		"evaluation":  "evaluation.html",
		"error":       "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		logger:    logger,
	}
}

func (r *Renderer) page(title, nav string) PageData {
	return PageData{Title: title, Version: r.version, Nav: nav}
}

// renderPage renders a named page template with HTTP 200.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", zap.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("template execution failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError writes an error as JSON for API routes and JSON clients,
// and as an error page otherwise.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	pErr, ok := errors.As(err)
	if !ok {
		pErr = errors.NewInternal(err)
	}

	status := pErr.Status
	message := pErr.Message
	if pErr.Code == errors.ErrInternal {
		r.logger.Error("internal error", zap.String("path", req.URL.Path), zap.Error(err))
		message = "an internal error occurred"
	}

	if wantsJSON(req) {
		body := map[string]any{
			"code":    string(pErr.Code),
			"message": message,
			"status":  status,
		}
		if pErr.Code != errors.ErrInternal && pErr.Details != nil {
			body["details"] = pErr.Details
		}
		renderJSON(w, status, map[string]any{"error": body})
		return
	}

	r.renderPageStatus(w, status, "error", ErrorPageData{
		PageData:   r.page(fmt.Sprintf("Error %d", status), ""),
		StatusCode: status,
		Message:    message,
	})
}

func wantsJSON(req *http.Request) bool {
	return strings.HasPrefix(req.URL.Path, "/api/") ||
		strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
// goldmark drops raw HTML by default, so model output cannot inject markup.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}

// formatPercent formats a percentage with at most two decimals.
func formatPercent(p float64) string {
	s := fmt.Sprintf("%.2f", p)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + "%"
}

// deref dereferences a *string, returning "" if nil.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
