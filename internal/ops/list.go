package ops

import (
	"sort"
	"strings"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/editor"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Text           string `json:"text,omitempty"`  // case-insensitive substring
	Sense          string `json:"sense,omitempty"` // exact match
	MissingExample bool   `json:"missing_example,omitempty"`
	MissingNote    bool   `json:"missing_note,omitempty"`
	Limit          int    `json:"limit,omitempty"` // default: 50, max: 500
	Offset         int    `json:"offset,omitempty"`
}

// ListItem is one row as displayed: its position, identity, stored values
// and any staged values that would replace them on commit.
type ListItem struct {
	Row int    `json:"row"`
	ID  string `json:"id"`
	glossary.Record
	Pending map[glossary.Field]string `json:"pending,omitempty"`
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items       []ListItem `json:"items"`
	Senses      []string   `json:"senses"`
	Pagination  Pagination `json:"pagination"`
	Mode        string     `json:"mode"`
	PendingRows int        `json:"pending_rows"`
	UndoDepth   int        `json:"undo_depth"`
	RedoDepth   int        `json:"redo_depth"`
}

// List returns the filtered rows of the collection with pagination.
func List(ed *editor.Editor, input ListInput) *ListOutput {
	st := ed.State()

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	matched := Filter(st.Records, input)
	total := len(matched)
	page := []ListItem{}
	if offset < total {
		page = matched[offset:min(offset+limit, total)]
	}
	overlayPending(page, st.Pending)

	return &ListOutput{
		Items:  page,
		Senses: Senses(st.Records),
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(page) < total,
			Total:   total,
		},
		Mode:        st.Mode.String(),
		PendingRows: pendingRows(st.Pending),
		UndoDepth:   st.UndoDepth,
		RedoDepth:   st.RedoDepth,
	}
}

// Filter returns the rows of c that pass every filter in input, in
// collection order. Pagination fields are ignored.
func Filter(c glossary.Collection, input ListInput) []ListItem {
	text := strings.ToLower(strings.TrimSpace(input.Text))
	items := []ListItem{}
	for i, r := range c {
		if input.Sense != "" && r.Sense != input.Sense {
			continue
		}
		if input.MissingExample && strings.TrimSpace(r.ExampleEn) != "" {
			continue
		}
		if input.MissingNote && strings.TrimSpace(r.Note) != "" {
			continue
		}
		if text != "" && !strings.Contains(searchText(r), text) {
			continue
		}
		items = append(items, ListItem{
			Row:    i + 1,
			ID:     string(glossary.IdentityOf(r)),
			Record: r,
		})
	}
	return items
}

func searchText(r glossary.Record) string {
	return strings.ToLower(strings.Join([]string{
		r.Word, r.Sense, r.DefinitionEn, r.TranslationJa, r.ExampleEn, r.Note,
	}, " "))
}

// Senses returns the distinct non-empty senses of c, sorted.
func Senses(c glossary.Collection) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range c {
		if r.Sense == "" || seen[r.Sense] {
			continue
		}
		seen[r.Sense] = true
		out = append(out, r.Sense)
	}
	sort.Strings(out)
	return out
}

func overlayPending(items []ListItem, pending []editor.PendingEdit) {
	if len(pending) == 0 {
		return
	}
	byRow := make(map[glossary.RowID][]editor.PendingEdit)
	for _, p := range pending {
		byRow[p.Row] = append(byRow[p.Row], p)
	}
	for i := range items {
		edits := byRow[glossary.RowID(items[i].ID)]
		if len(edits) == 0 {
			continue
		}
		items[i].Pending = make(map[glossary.Field]string, len(edits))
		for _, p := range edits {
			items[i].Pending[p.Field] = p.Value
		}
	}
}

func pendingRows(pending []editor.PendingEdit) int {
	rows := make(map[glossary.RowID]bool)
	for _, p := range pending {
		rows[p.Row] = true
	}
	return len(rows)
}
