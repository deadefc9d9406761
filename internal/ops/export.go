package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/config"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/editor"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/errors"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/sheets"
)

// ExportHeader is the first line of an exported TSV file.
var ExportHeader = []string{"Word", "Sense", "Definition (EN)", "Translation (JA)", "Example", "Note", "CreatedAt"}

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string `json:"path,omitempty"` // optional, default: ~/.glossary/exports/glossary_<date>.tsv
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt string `json:"exported_at"`
}

// Export writes the glossary to a TSV file. An empty glossary is rejected.
func Export(ctx context.Context, ed *editor.Editor, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	c := ed.Collection()
	if len(c) == 0 {
		return nil, errors.NewInvalidRequest("no data to export")
	}

	exportPath := input.Path
	if exportPath == "" {
		dir, err := DefaultExportsDir()
		if err != nil {
			return nil, err
		}
		exportPath = filepath.Join(dir, DefaultExportName(now))
	}
	if err := ValidateExportPath(exportPath, cfg); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled(err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Temp file then rename, so a failed export leaves any existing file intact.
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if err := WriteTSV(file, c); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("export path is a symlink")
	}

	// Windows refuses to rename over an existing file; keep the old one.
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      len(c),
		ExportedAt: glossary.FormatTime(now),
	}, nil
}

// DefaultExportName is glossary_<YYYY-MM-DD>.tsv for the local date of now.
func DefaultExportName(now time.Time) string {
	return "glossary_" + now.Format("2006-01-02") + ExportExt
}

// WriteTSV writes ExportHeader and one line per record. Tabs in values
// become spaces and line breaks become " / ".
func WriteTSV(w io.Writer, c glossary.Collection) error {
	rows := make([][]string, 0, len(c)+1)
	rows = append(rows, ExportHeader)
	for _, r := range c {
		rows = append(rows, sheets.Row(r))
	}
	_, err := w.Write(sheets.EncodeRows(rows))
	return err
}
