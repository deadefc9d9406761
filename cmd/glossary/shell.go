package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/app"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/editor"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/ops"
)

const shellHelp = `Commands:
  list [text]               show rows (staged values marked *)
  edit                      enter edit mode
  set <row> <field> <value> stage a value; fields: word, sense, definition_en,
                            translation_ja, example_en, note
  pending                   show staged values
  save                      commit staged values as one undoable step
  discard                   drop staged values and leave edit mode
  undo | redo               step through committed history
  status                    record count and history depth
  help                      this text
  quit                      leave (staged values are dropped)
`

// shell is an interactive session over one Editor. Staged values live only
// as long as the process.
type shell struct {
	a      *app.App
	out    io.Writer
	prompt bool
}

func newShell(a *app.App, out io.Writer, prompt bool) *shell {
	return &shell{a: a, out: out, prompt: prompt}
}

// run reads commands from in until quit or EOF.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		if s.prompt {
			fmt.Fprint(s.out, s.promptText())
		}
		if !sc.Scan() {
			break
		}
		if s.exec(ctx, sc.Text()) {
			break
		}
	}
	s.leave()
	return sc.Err()
}

func (s *shell) promptText() string {
	if s.a.Editor.Mode() == editor.Editing {
		return "glossary (editing)> "
	}
	return "glossary> "
}

// exec runs one command line and reports whether the session should end.
func (s *shell) exec(ctx context.Context, line string) bool {
	cmd, rest := cutWord(line)
	switch strings.ToLower(cmd) {
	case "":
	case "list", "ls":
		s.list(rest)
	case "edit":
		ops.BeginEdit(s.a.Editor)
		fmt.Fprintln(s.out, "Editing. Stage values with 'set', then 'save' or 'discard'.")
	case "set":
		s.set(rest)
	case "pending":
		s.pending()
	case "save", "commit":
		res := ops.Commit(ctx, s.a.Editor)
		if res.AppliedRows == 0 {
			fmt.Fprintln(s.out, "Nothing to save.")
		} else {
			fmt.Fprintf(s.out, "Saved %d row(s).\n", res.AppliedRows)
		}
		s.warnings(res.Warnings)
	case "discard":
		ops.Discard(s.a.Editor)
		fmt.Fprintln(s.out, "Discarded staged values.")
	case "undo":
		s.history("undo", ops.Undo(ctx, s.a.Editor))
	case "redo":
		s.history("redo", ops.Redo(ctx, s.a.Editor))
	case "status":
		st := ops.Status(s.a.Editor)
		fmt.Fprintf(s.out, "%s · %d records · %d pending rows · undo %d · redo %d\n",
			st.Mode, st.Records, st.PendingRows, st.UndoDepth, st.RedoDepth)
	case "help", "?":
		fmt.Fprint(s.out, shellHelp)
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type 'help'.\n", cmd)
	}
	return false
}

// leave drops staged values on the way out.
func (s *shell) leave() {
	if n := len(s.a.Editor.State().Pending); n > 0 {
		fmt.Fprintf(s.out, "Dropping %d staged value(s).\n", n)
	}
	if s.a.Editor.Mode() == editor.Editing {
		s.a.Editor.Discard()
	}
}

func (s *shell) list(text string) {
	out := ops.List(s.a.Editor, ops.ListInput{Text: text, Limit: ops.MaxListLimit})
	if len(out.Items) == 0 {
		fmt.Fprintln(s.out, "No records.")
		return
	}

	tw := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tWORD\tSENSE\tDEFINITION\tTRANSLATION\tEXAMPLE\tNOTE")
	for _, item := range out.Items {
		cells := make([]string, 0, len(glossary.EditableFields))
		for _, f := range glossary.EditableFields {
			v := item.Get(f)
			if staged, ok := item.Pending[f]; ok {
				v = staged + "*"
			}
			cells = append(cells, truncate(v, 40))
		}
		fmt.Fprintf(tw, "%d\t%s\n", item.Row, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
	if out.Pagination.HasMore {
		fmt.Fprintf(s.out, "(%d of %d shown)\n", len(out.Items), out.Pagination.Total)
	}
}

func (s *shell) set(args string) {
	rowArg, rest := cutWord(args)
	field, value := cutWord(rest)
	row, err := strconv.Atoi(rowArg)
	if err != nil || field == "" {
		fmt.Fprintln(s.out, "Usage: set <row> <field> <value>")
		return
	}

	res, err := ops.Stage(s.a.Editor, ops.StageInput{
		RowRef: ops.RowRef{Row: row},
		Field:  field,
		Value:  value,
	})
	if err != nil {
		s.report(err)
		return
	}
	switch {
	case res.Stale:
		fmt.Fprintln(s.out, "That row no longer exists; nothing staged.")
	case res.Staged:
		fmt.Fprintf(s.out, "Staged row %d %s = %q (%d row(s) pending).\n", row, res.Field, res.Value, res.Pending)
	default:
		fmt.Fprintf(s.out, "Row %d %s unchanged (%d row(s) pending).\n", row, res.Field, res.Pending)
	}
}

func (s *shell) pending() {
	out := ops.Pending(s.a.Editor)
	if len(out.Items) == 0 {
		fmt.Fprintln(s.out, "Nothing staged.")
		return
	}
	for _, p := range out.Items {
		fmt.Fprintf(s.out, "row %d %s: %q -> %q\n", p.Row, p.Field, p.Original, p.Value)
	}
}

func (s *shell) history(op string, res *editor.HistoryResult) {
	if !res.Applied {
		fmt.Fprintf(s.out, "Nothing to %s.\n", op)
		return
	}
	fmt.Fprintf(s.out, "%s done: %d records (undo %d, redo %d).\n",
		strings.ToUpper(op[:1])+op[1:], res.Records, res.UndoDepth, res.RedoDepth)
	s.warnings(res.Warnings)
}

func (s *shell) warnings(ws []string) {
	for _, w := range ws {
		fmt.Fprintf(s.out, "warning: %s\n", w)
	}
}

func (s *shell) report(err error) {
	if gErr, ok := errors.As(err); ok {
		if reason, ok := gErr.Details["reason"].(string); ok {
			fmt.Fprintf(s.out, "Rejected: %s\n", reason)
			return
		}
		fmt.Fprintf(s.out, "[%s] %s\n", gErr.Code, gErr.Message)
		return
	}
	fmt.Fprintf(s.out, "error: %v\n", err)
}

// cutWord splits off the first whitespace-delimited word.
func cutWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
