package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/app"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/ops"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/web"
)

// newCLIApp creates the CLI application with all commands.
// a may be nil when only help or version output is needed.
func newCLIApp(a *app.App) *cli.App {
	cliApp := &cli.App{
		Name:    "glossary",
		Usage:   "Look up terms and keep a personal glossary",
		Version: Version,
		Commands: []*cli.Command{
			lookupCmd(a),
			addCmd(a),
			listCmd(a),
			editCmd(a),
			undoCmd(a),
			redoCmd(a),
			statusCmd(a),
			exportCmd(a),
			syncCmd(a),
			clearCmd(a),
			serveCmd(a),
			shellCmd(a),
		},
		// Values may contain commas.
		DisableSliceFlagSeparator: true,
	}
	// Disable default exit error handler to allow proper error return in tests
	cliApp.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return cliApp
}

// lookupCmd creates the lookup command.
func lookupCmd(a *app.App) *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Look up a term; --save appends the chosen senses",
		ArgsUsage: "<term>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "save", Aliases: []string{"s"}, Usage: "Sense to save (General, a domain name, or all); repeatable"},
		},
		Action: func(c *cli.Context) error {
			input := ops.LookupInput{
				Term: strings.Join(c.Args().Slice(), " "),
				Save: c.StringSlice("save"),
			}

			output, err := ops.Lookup(c.Context, a.Editor, a.Lookup, a.Metrics, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// addCmd creates the add command.
func addCmd(a *app.App) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Append a record",
		ArgsUsage: "[word]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "word", Aliases: []string{"w"}, Usage: "Headword (or first argument)"},
			&cli.StringFlag{Name: "sense", Usage: "Sense label (default: General)"},
			&cli.StringFlag{Name: "definition", Aliases: []string{"d"}, Usage: "English definition"},
			&cli.StringFlag{Name: "translation", Aliases: []string{"t"}, Usage: "Japanese translation"},
			&cli.StringFlag{Name: "example", Aliases: []string{"e"}, Usage: "Example sentence(s), separated by ';'"},
			&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "Note"},
		},
		Action: func(c *cli.Context) error {
			input := ops.AddInput{
				Word:          c.String("word"),
				Sense:         c.String("sense"),
				DefinitionEn:  c.String("definition"),
				TranslationJa: c.String("translation"),
				ExampleEn:     c.String("example"),
				Note:          c.String("note"),
			}
			if input.Word == "" && c.NArg() > 0 {
				input.Word = strings.Join(c.Args().Slice(), " ")
			}

			output, err := ops.Add(c.Context, a.Editor, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(a *app.App) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List records with optional filters",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Aliases: []string{"q"}, Usage: "Case-insensitive text search"},
			&cli.StringFlag{Name: "sense", Usage: "Exact sense"},
			&cli.BoolFlag{Name: "missing-example", Usage: "Only records without an example"},
			&cli.BoolFlag{Name: "missing-note", Usage: "Only records without a note"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum results"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Skip first N results"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				Text:           c.String("text"),
				Sense:          c.String("sense"),
				MissingExample: c.Bool("missing-example"),
				MissingNote:    c.Bool("missing-note"),
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
			}

			return outputJSON(ops.List(a.Editor, input))
		},
	}
}

// editCmd creates the edit command: stage and commit in one step.
func editCmd(a *app.App) *cli.Command {
	return &cli.Command{
		Name:  "edit",
		Usage: "Edit fields of one row as a single undoable step",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "row", Aliases: []string{"r"}, Usage: "1-based row number"},
			&cli.StringFlag{Name: "word", Usage: "Row identity: word"},
			&cli.StringFlag{Name: "sense", Usage: "Row identity: sense"},
			&cli.StringFlag{Name: "created-at", Usage: "Row identity: createdAt"},
			&cli.StringSliceFlag{Name: "set", Usage: "field=value; repeatable", Required: true},
			&cli.BoolFlag{Name: "dry-run", Usage: "Validate only; nothing is saved"},
		},
		Action: func(c *cli.Context) error {
			set, err := parseAssignments(c.StringSlice("set"))
			if err != nil {
				return outputError(err)
			}

			input := ops.EditInput{
				RowRef: ops.RowRef{
					Row:       c.Int("row"),
					Word:      c.String("word"),
					Sense:     c.String("sense"),
					CreatedAt: c.String("created-at"),
				},
				Set:    set,
				DryRun: c.Bool("dry-run"),
			}

			output, err := ops.Edit(c.Context, a.Editor, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// undoCmd creates the undo command.
func undoCmd(a *app.App) *cli.Command {
	return &cli.Command{
		Name:  "undo",
		Usage: "Revert the most recent committed edit",
		Action: func(c *cli.Context) error {
			return outputJSON(ops.Undo(c.Context, a.Editor))
		},
	}
}

// redoCmd creates the redo command.
func redoCmd(a *app.App) *cli.Command {
	return &cli.Command{
		Name:  "redo",
		Usage: "Reapply the most recently undone edit",
		Action: func(c *cli.Context) error {
			return outputJSON(ops.Redo(c.Context, a.Editor))
		},
	}
}

// statusCmd creates the status command.
func statusCmd(a *app.App) *cli.Command {
	return &cli.Command{
		Name:    "status",
		Aliases: []string{"history"},
		Usage:   "Show record count and undo/redo depth",
		Action: func(c *cli.Context) error {
			return outputJSON(ops.Status(a.Editor))
		},
	}
}

// exportCmd creates the export command.
func exportCmd(a *app.App) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the glossary to a TSV file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file (default: ~/.glossary/exports/glossary_<date>.tsv)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, a.Editor, a.Config, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// syncCmd creates the sync command.
func syncCmd(a *app.App) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Send records the class sheet does not have yet",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "class", Aliases: []string{"c"}, Usage: "Class name (remembered for later syncs)"},
		},
		Action: func(c *cli.Context) error {
			opener, err := a.Sheets(c.Context)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Sync(c.Context, a.Editor, a.KV, opener, a.Metrics, ops.SyncInput{ClassName: c.String("class")})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(a *app.App) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove every record (undo history is kept)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm clearing the glossary"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Clear(c.Context, a.Editor, ops.ClearInput{Confirm: c.Bool("yes")})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(a *app.App) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the local web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default from config: 127.0.0.1)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port (default from config: 8787)"},
		},
		Action: func(c *cli.Context) error {
			bind := a.Config.Web.Bind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := a.Config.Web.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("port %d out of range", port)))
			}

			srv := web.NewServer(a, Version, bind, port)
			if err := web.Run(c.Context, a, srv); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// shellCmd creates the interactive shell command.
func shellCmd(a *app.App) *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Interactive session with edit mode, staging and undo",
		Action: func(c *cli.Context) error {
			sh := newShell(a, os.Stdout, isTerminal())
			if err := sh.run(c.Context, os.Stdin); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if gErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", gErr.Code, gErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseAssignments turns ["field=value", ...] into a map. The value may
// contain '=' and may be empty; naming a field twice is an error.
func parseAssignments(pairs []string) (map[string]string, error) {
	set := make(map[string]string, len(pairs))
	for _, p := range pairs {
		field, value, ok := strings.Cut(p, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("--set %q: expected field=value", p))
		}
		if _, dup := set[field]; dup {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("--set: field %q given twice", field))
		}
		set[field] = value
	}
	return set, nil
}
