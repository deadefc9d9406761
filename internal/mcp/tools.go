package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Row addressing shared by the stage and edit tools.
var rowOptions = []mcp.ToolOption{
	mcp.WithNumber("row", mcp.Description("1-based row position as shown by glossary_list")),
	mcp.WithString("word", mcp.Description("Row word, with sense and created_at, instead of row")),
	mcp.WithString("sense", mcp.Description("Row sense (used with word and created_at)")),
	mcp.WithString("created_at", mcp.Description("Row createdAt timestamp (used with word and sense)")),
}

func withRow(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(append([]mcp.ToolOption{}, rowOptions...), opts...)
}

var lookupToolDef = mcp.NewTool("glossary_lookup",
	mcp.WithDescription("Look up a word or short phrase: a general sense plus up to three domain senses (e.g. Linguistics, SLA). Optionally save cards to the glossary."),
	mcp.WithString("term", mcp.Required(), mcp.Description("Word or short phrase")),
	mcp.WithArray("save", mcp.WithStringItems(), mcp.Description(`Card senses to save, e.g. ["General","SLA"], or ["all"]`)),
)

var addToolDef = mcp.NewTool("glossary_add",
	mcp.WithDescription("Append one entry to the glossary. Values are stored as given."),
	mcp.WithString("word", mcp.Required(), mcp.Description("Headword")),
	mcp.WithString("sense", mcp.Description("Sense label; defaults to General")),
	mcp.WithString("definition_en", mcp.Description("English definition")),
	mcp.WithString("translation_ja", mcp.Description("Japanese translation")),
	mcp.WithString("example_en", mcp.Description("Up to three short examples separated by ';'")),
	mcp.WithString("note", mcp.Description("One-line note")),
)

var listToolDef = mcp.NewTool("glossary_list",
	mcp.WithDescription("List glossary rows with filters. Rows carry their position, identity and any staged values."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("text", mcp.Description("Case-insensitive text filter over all fields")),
	mcp.WithString("sense", mcp.Description("Exact sense filter")),
	mcp.WithBoolean("missing_example", mcp.Description("Only rows without an example")),
	mcp.WithBoolean("missing_note", mcp.Description("Only rows without a note")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 50, max 500)")),
	mcp.WithNumber("offset", mcp.Description("Rows to skip")),
)

var beginEditToolDef = mcp.NewTool("glossary_begin_edit",
	mcp.WithDescription("Turn edit mode on so cell values can be staged."),
)

var stageToolDef = mcp.NewTool("glossary_stage",
	withRow(
		mcp.WithDescription("Validate and stage one cell value. Nothing changes until glossary_commit."),
		mcp.WithString("field", mcp.Required(), mcp.Description("word, sense, definition_en, translation_ja, example_en or note")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New raw value")),
	)...,
)

var pendingToolDef = mcp.NewTool("glossary_pending",
	mcp.WithDescription("Show staged edits awaiting commit."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var commitToolDef = mcp.NewTool("glossary_commit",
	mcp.WithDescription("Apply staged edits as one undoable step and leave edit mode."),
)

var discardToolDef = mcp.NewTool("glossary_discard",
	mcp.WithDescription("Drop staged edits and leave edit mode."),
)

var editToolDef = mcp.NewTool("glossary_edit",
	withRow(
		mcp.WithDescription("Stage several fields of one row and commit them as one undoable step."),
		mcp.WithObject("set", mcp.Required(), mcp.Description(`Field to value map, e.g. {"note":"...","example_en":"a; b"}`)),
		mcp.WithBoolean("dry_run", mcp.Description("Validate only; do not commit")),
	)...,
)

var undoToolDef = mcp.NewTool("glossary_undo",
	mcp.WithDescription("Restore the glossary to before the last committed edit."),
)

var redoToolDef = mcp.NewTool("glossary_redo",
	mcp.WithDescription("Re-apply the most recently undone edit."),
)

var statusToolDef = mcp.NewTool("glossary_status",
	mcp.WithDescription("Mode, record count, pending rows and undo/redo depth."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("glossary_export",
	mcp.WithDescription("Write the glossary to a TSV file (default ~/.glossary/exports/glossary_<date>.tsv)."),
	mcp.WithString("path", mcp.Description("Destination .tsv path")),
)

var syncToolDef = mcp.NewTool("glossary_sync",
	mcp.WithDescription(`Send entries the class sheet does not have yet to "Glossary Data – <class>".`),
	mcp.WithString("class_name", mcp.Description("Class name; remembered for later syncs")),
)

var clearToolDef = mcp.NewTool("glossary_clear",
	mcp.WithDescription("Delete every entry. Undo history is kept."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true")),
)
