package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/app"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	app *app.App
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(a *app.App) *Handlers {
	return &Handlers{app: a}
}

// decode unmarshals the tool arguments into T through JSON.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, errors.NewInvalidRequest(fmt.Sprintf("marshal args: %v", err))
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, errors.NewInvalidRequest(fmt.Sprintf("invalid arguments: %v", err))
	}
	return result, nil
}

// HandleLookup handles the glossary_lookup tool.
func (h *Handlers) HandleLookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.LookupInput](req)
	if err != nil {
		return errorResult(err), nil
	}
	out, err := ops.Lookup(ctx, h.app.Editor, h.app.Lookup, h.app.Metrics, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleAdd handles the glossary_add tool.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.AddInput](req)
	if err != nil {
		return errorResult(err), nil
	}
	out, err := ops.Add(ctx, h.app.Editor, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleList handles the glossary_list tool.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ListInput](req)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(ops.List(h.app.Editor, input))
}

// HandleBeginEdit handles the glossary_begin_edit tool.
func (h *Handlers) HandleBeginEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.BeginEdit(h.app.Editor))
}

// HandleStage handles the glossary_stage tool.
func (h *Handlers) HandleStage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.StageInput](req)
	if err != nil {
		return errorResult(err), nil
	}
	out, err := ops.Stage(h.app.Editor, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandlePending handles the glossary_pending tool.
func (h *Handlers) HandlePending(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Pending(h.app.Editor))
}

// HandleCommit handles the glossary_commit tool.
func (h *Handlers) HandleCommit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Commit(ctx, h.app.Editor))
}

// HandleDiscard handles the glossary_discard tool.
func (h *Handlers) HandleDiscard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Discard(h.app.Editor))
}

// HandleEdit handles the glossary_edit tool.
func (h *Handlers) HandleEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.EditInput](req)
	if err != nil {
		return errorResult(err), nil
	}
	out, err := ops.Edit(ctx, h.app.Editor, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleUndo handles the glossary_undo tool.
func (h *Handlers) HandleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Undo(ctx, h.app.Editor))
}

// HandleRedo handles the glossary_redo tool.
func (h *Handlers) HandleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Redo(ctx, h.app.Editor))
}

// HandleStatus handles the glossary_status tool.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Status(h.app.Editor))
}

// HandleExport handles the glossary_export tool.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ExportInput](req)
	if err != nil {
		return errorResult(err), nil
	}
	out, err := ops.Export(ctx, h.app.Editor, h.app.Config, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleSync handles the glossary_sync tool.
func (h *Handlers) HandleSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.SyncInput](req)
	if err != nil {
		return errorResult(err), nil
	}
	opener, err := h.app.Sheets(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	out, err := ops.Sync(ctx, h.app.Editor, h.app.KV, opener, h.app.Metrics, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleClear handles the glossary_clear tool.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ClearInput](req)
	if err != nil {
		return errorResult(err), nil
	}
	out, err := ops.Clear(ctx, h.app.Editor, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// errorResult renders err as an IsError tool result. INTERNAL errors keep
// their details out of the payload; a wrapped error keeps its wrapper text.
func errorResult(err error) *mcp.CallToolResult {
	errorObj := map[string]any{
		"code":    string(errors.ErrInternal),
		"message": "an internal error occurred",
		"status":  500,
	}

	if ge, ok := errors.As(err); ok {
		msg := ge.Message
		if prefix, wrapped := strings.CutSuffix(err.Error(), ge.Error()); wrapped && prefix != "" {
			msg = prefix + ge.Message
		}
		errorObj["code"] = string(ge.Code)
		errorObj["message"] = msg
		errorObj["status"] = ge.Status
		if ge.Code != errors.ErrInternal && ge.Details != nil {
			errorObj["details"] = ge.Details
		}
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
