package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/app"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	app      *app.App
	renderer *Renderer
}

// HandleGlossary handles GET /glossary: the filtered table.
func (h *Handlers) HandleGlossary(w http.ResponseWriter, r *http.Request) {
	h.renderGlossary(w, r, http.StatusOK, listInputFrom(r), "")
}

func (h *Handlers) renderGlossary(w http.ResponseWriter, r *http.Request, status int, input ops.ListInput, message string) {
	result := ops.List(h.app.Editor, input)

	columns := make([]string, len(glossary.EditableFields))
	for i, f := range glossary.EditableFields {
		columns[i] = string(f)
	}

	rows := make([]RowView, len(result.Items))
	for i, item := range result.Items {
		rv := RowView{
			Row:       item.Row,
			Word:      item.Word,
			Sense:     item.Sense,
			CreatedAt: item.CreatedAt,
			Cells:     make([]CellView, len(glossary.EditableFields)),
		}
		for j, f := range glossary.EditableFields {
			cell := CellView{Field: string(f), Value: item.Get(f)}
			if v, ok := item.Pending[f]; ok {
				cell.Value = v
				cell.Pending = true
			}
			rv.Cells[j] = cell
		}
		rows[i] = rv
	}

	back := "/glossary"
	if r.Method == http.MethodGet {
		back = r.URL.RequestURI()
	}

	st := ops.Status(h.app.Editor)
	h.renderer.renderPageStatus(w, r, status, "glossary", GlossaryPageData{
		PageData: PageData{
			Title:   "Glossary",
			Version: h.renderer.version,
			Nav:     "glossary",
		},
		Rows:           rows,
		Columns:        columns,
		Senses:         result.Senses,
		Pagination:     result.Pagination,
		Text:           input.Text,
		Sense:          input.Sense,
		MissingExample: input.MissingExample,
		MissingNote:    input.MissingNote,
		Editing:        result.Mode == "editing",
		PendingRows:    result.PendingRows,
		UndoDepth:      result.UndoDepth,
		RedoDepth:      result.RedoDepth,
		Records:        st.Records,
		Message:        message,
		Back:           back,
	})
}

// HandleBeginEdit handles POST /glossary/edit: switch to edit mode.
func (h *Handlers) HandleBeginEdit(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, ops.BeginEdit(h.app.Editor))
}

// HandleStage handles POST /glossary/stage: stage one cell. A rejected
// value re-renders the table with the reason.
func (h *Handlers) HandleStage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.StageInput{
		RowRef: ops.RowRef{
			Word:      r.PostFormValue("word"),
			Sense:     r.PostFormValue("sense"),
			CreatedAt: r.PostFormValue("created_at"),
		},
		Field: r.PostFormValue("field"),
		Value: r.PostFormValue("value"),
	}

	result, err := ops.Stage(h.app.Editor, input)
	if err != nil {
		if gErr, ok := errors.As(err); ok && gErr.Code == errors.ErrValidationFailed && !wantsJSON(r) {
			reason, _ := gErr.Details["reason"].(string)
			h.renderGlossary(w, r, gErr.Status, ops.ListInput{}, fmt.Sprintf("%s: %s", fieldLabel(input.Field), reason))
			return
		}
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, result)
}

// HandleSave handles POST /glossary/save: commit pending edits.
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, ops.Commit(r.Context(), h.app.Editor))
}

// HandleDiscard handles POST /glossary/discard: drop pending edits.
func (h *Handlers) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, ops.Discard(h.app.Editor))
}

// HandleUndo handles POST /glossary/undo.
func (h *Handlers) HandleUndo(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, ops.Undo(r.Context(), h.app.Editor))
}

// HandleRedo handles POST /glossary/redo.
func (h *Handlers) HandleRedo(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, ops.Redo(r.Context(), h.app.Editor))
}

// HandleClear handles POST /glossary/clear. The form must carry confirm=true.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	result, err := ops.Clear(r.Context(), h.app.Editor, ops.ClearInput{Confirm: r.PostFormValue("confirm") == "true"})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, result)
}

// HandleLookup handles GET /lookup?q=term: show the cards for a term.
func (h *Handlers) HandleLookup(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	data := LookupPageData{
		PageData: PageData{
			Title:   "Lookup",
			Version: h.renderer.version,
			Nav:     "lookup",
		},
		Term: term,
	}

	if term == "" {
		h.renderer.renderPage(w, r, "lookup", data)
		return
	}

	result, err := ops.Lookup(r.Context(), h.app.Editor, h.app.Lookup, h.app.Metrics, ops.LookupInput{Term: term})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	data.Term = result.Term
	data.HasResult = true
	data.Headword = result.Result.Headword
	if result.Result.CorrectedTo != nil {
		data.CorrectedTo = *result.Result.CorrectedTo
	}
	data.DidYouMean = result.Result.DidYouMean
	data.Cards = make([]CardView, len(result.Cards))
	for i, c := range result.Cards {
		data.Cards[i] = CardView{Card: c, Body: renderMarkdown(cardMarkdown(c))}
	}
	h.renderer.renderPage(w, r, "lookup", data)
}

// HandleLookupSave handles POST /lookup/save: append the chosen cards.
func (h *Handlers) HandleLookupSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	senses := r.PostForm["sense"]
	if len(senses) == 0 {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("select at least one card to save"))
		return
	}

	result, err := ops.Lookup(r.Context(), h.app.Editor, h.app.Lookup, h.app.Metrics, ops.LookupInput{
		Term: r.PostFormValue("term"),
		Save: senses,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.done(w, r, result)
}

// HandleExport handles GET /export.tsv: download the glossary.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	c := h.app.Editor.Collection()
	if len(c) == 0 {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("no data to export"))
		return
	}

	var buf bytes.Buffer
	if err := ops.WriteTSV(&buf, c); err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ops.DefaultExportName(time.Now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// done finishes a state-changing request: JSON clients get the result,
// htmx gets a client redirect, browsers get a 303 back to the table.
func (h *Handlers) done(w http.ResponseWriter, r *http.Request, result any) {
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	target := backTo(r)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// backTo returns the glossary URL the form came from, keeping its filters.
func backTo(r *http.Request) string {
	back := r.FormValue("back")
	if strings.HasPrefix(back, "/glossary") && !strings.ContainsAny(back, "\\\r\n") {
		return back
	}
	return "/glossary"
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func listInputFrom(r *http.Request) ops.ListInput {
	return ops.ListInput{
		Text:           r.URL.Query().Get("text"),
		Sense:          r.URL.Query().Get("sense"),
		MissingExample: parseBoolParam(r, "missing_example"),
		MissingNote:    parseBoolParam(r, "missing_note"),
		Limit:          parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:         parseIntParam(r, "offset", 0),
	}
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1" || s == "on"
}
