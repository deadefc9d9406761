package ops

import (
	"context"
	"strings"
	"time"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/editor"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/metrics"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/sheets"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/store"
)

// SyncInput contains parameters for the Sync operation.
type SyncInput struct {
	// ClassName titles the sheet. A given name is remembered; when empty
	// the remembered one is used.
	ClassName string `json:"class_name,omitempty"`
}

// SyncOutput contains the result of the Sync operation.
type SyncOutput struct {
	Title     string `json:"title"`
	ClassName string `json:"class_name"`
	Created   bool   `json:"created"`
	Sent      int    `json:"sent"`
	Skipped   int    `json:"skipped"`
}

// Sync sends records the class sheet does not hold yet, matched by
// createdAt. Records without a createdAt get one at send time.
func Sync(ctx context.Context, ed *editor.Editor, kv store.KV, opener sheets.Opener, m *metrics.Metrics, input SyncInput) (*SyncOutput, error) {
	c := ed.Collection()
	if len(c) == 0 {
		return nil, errors.NewInvalidRequest("no data to send")
	}

	class := strings.TrimSpace(input.ClassName)
	if class != "" {
		if err := store.SetClassName(ctx, kv, class); err != nil {
			return nil, errors.NewInternal(err)
		}
	} else {
		remembered, err := store.ClassName(ctx, kv)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		class = remembered
	}

	title := sheets.TitleFor(class)
	sheet, created, err := opener.Open(ctx, title)
	if err != nil {
		return nil, errors.NewSyncFailed(title, err)
	}
	existing, err := sheet.CreatedAts(ctx)
	if err != nil {
		return nil, errors.NewSyncFailed(title, err)
	}

	stamp := glossary.FormatTime(time.Now())
	var rows [][]string
	for _, r := range c {
		if r.CreatedAt == "" {
			r.CreatedAt = stamp
		} else if existing[r.CreatedAt] {
			continue
		}
		rows = append(rows, sheets.Row(r))
	}

	out := &SyncOutput{
		Title:     title,
		ClassName: class,
		Created:   created,
		Skipped:   len(c) - len(rows),
	}
	for start := 0; start < len(rows); start += sheets.ChunkSize {
		chunk := rows[start:min(start+sheets.ChunkSize, len(rows))]
		if err := sheet.AppendRows(ctx, chunk); err != nil {
			m.Synced(out.Sent)
			return nil, errors.NewSyncFailed(title, err)
		}
		out.Sent += len(chunk)
	}
	m.Synced(out.Sent)
	return out, nil
}
