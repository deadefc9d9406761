package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/logging"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/ops"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "glossary", "lookup"
}

// CellView is one editable cell as the table shows it.
type CellView struct {
	Field   string
	Value   string
	Pending bool // Value is a staged replacement
}

// RowView is one table row.
type RowView struct {
	Row       int
	Word      string
	Sense     string
	CreatedAt string
	Cells     []CellView
}

// GlossaryPageData is the template data for the glossary table.
type GlossaryPageData struct {
	PageData
	Rows           []RowView
	Columns        []string
	Senses         []string
	Pagination     ops.Pagination
	Text           string
	Sense          string
	MissingExample bool
	MissingNote    bool
	Editing        bool
	PendingRows    int
	UndoDepth      int
	RedoDepth      int
	Records        int
	Message        string
	Back           string // current table URL, posted back by action forms
}

// CardView is a lookup card with its rendered body.
type CardView struct {
	ops.Card
	Body template.HTML
}

// LookupPageData is the template data for the lookup page.
type LookupPageData struct {
	PageData
	Term        string
	Headword    string
	CorrectedTo string
	DidYouMean  []string
	Cards       []CardView
	HasResult   bool
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
	log       *slog.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, log *slog.Logger) *Renderer {
	funcMap := template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
		"fieldLabel": fieldLabel,
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"glossary": "glossary.html",
		"lookup":   "lookup.html",
		"error":    "error.html",
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
		log:       logging.OrNop(log),
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For HTMX requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.log.Error("template not found", "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.log.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	gErr, ok := errors.As(err)
	if !ok {
		gErr = errors.NewInternal(err)
	}

	status := gErr.Status
	message := gErr.Message
	if gErr.Code == errors.ErrInternal {
		r.log.Error("request failed", "path", req.URL.Path, "error", err)
		message = "internal error"
	}

	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if strings.Contains(req.Header.Get("Accept"), "application/json") {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    string(gErr.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
		},
		StatusCode: status,
		Message:    message,
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark. Raw HTML in
// the source is dropped by goldmark's default renderer.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// cardMarkdown lays out a lookup card: definition paragraph, then the
// translation as a quote.
func cardMarkdown(c ops.Card) string {
	var b strings.Builder
	if c.DefinitionEn != "" {
		b.WriteString(escapeMarkdown(c.DefinitionEn))
		b.WriteString("\n\n")
	}
	if c.TranslationJa != "" {
		b.WriteString("> ")
		b.WriteString(escapeMarkdown(c.TranslationJa))
		b.WriteString("\n")
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`,
	"<", `\<`, ">", `\>`, "#", `\#`,
)

// escapeMarkdown keeps service text literal inside a card.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(glossary.CollapseWhitespace(s))
}

func fieldLabel(f string) string {
	switch glossary.Field(f) {
	case glossary.FieldWord:
		return "Word"
	case glossary.FieldSense:
		return "Sense"
	case glossary.FieldDefinitionEn:
		return "Definition (EN)"
	case glossary.FieldTranslationJa:
		return "Translation (JA)"
	case glossary.FieldExampleEn:
		return "Example"
	case glossary.FieldNote:
		return "Note"
	}
	return f
}
