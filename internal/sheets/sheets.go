// Package sheets is the spreadsheet-sync collaborator: it finds or creates
// a class sheet, reads which records it already holds and appends new rows.
package sheets

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	appconfig "github.com/Ponta-English-Teacher/domain-glossary-online/internal/config"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/glossary"
)

// Header is the first row of every sheet this package creates.
var Header = []string{"Word", "Sense", "Definition (EN)", "Translation (JA)", "Example (EN)", "Note", "Created At"}

// CreatedAtColumn is the zero-based index of the Created At column.
const CreatedAtColumn = 6

// ChunkSize bounds the rows sent in one AppendRows call.
const ChunkSize = 400

const baseTitle = "Glossary Data"

// Sheet is one open spreadsheet.
type Sheet interface {
	Title() string
	// CreatedAts returns the non-empty Created At values of the data rows.
	CreatedAts(ctx context.Context) (map[string]bool, error)
	// AppendRows adds rows after the last row.
	AppendRows(ctx context.Context, rows [][]string) error
}

// Opener finds sheets by title.
type Opener interface {
	// Open returns the sheet titled title, creating it with Header when it
	// does not exist. created reports whether it was created.
	Open(ctx context.Context, title string) (sheet Sheet, created bool, err error)
}

// Row renders r in Header column order.
func Row(r glossary.Record) []string {
	return []string{r.Word, r.Sense, r.DefinitionEn, r.TranslationJa, r.ExampleEn, r.Note, r.CreatedAt}
}

// TitleFor returns the sheet title for a class; an empty class gets the bare title.
func TitleFor(class string) string {
	class = strings.TrimSpace(class)
	if class == "" {
		return baseTitle
	}
	return baseTitle + " – " + class
}

// Open builds the Opener selected by cfg. baseDir anchors the default
// directory of the dir driver.
func Open(ctx context.Context, cfg appconfig.SyncConfig, baseDir string) (Opener, error) {
	switch cfg.Driver {
	case "", appconfig.SyncDriverDir:
		dir := cfg.Dir
		if dir == "" {
			dir = filepath.Join(baseDir, "sheets")
		}
		return NewDirOpener(dir), nil
	case appconfig.SyncDriverS3:
		return NewS3Opener(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			Prefix:          cfg.S3Prefix,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	}
	return nil, fmt.Errorf("unknown sync driver %q", cfg.Driver)
}

var unsafeTitleChars = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f]+`)

// objectName maps a sheet title to a file or object name.
func objectName(title string) string {
	name := strings.TrimSpace(unsafeTitleChars.ReplaceAllString(title, "_"))
	if name == "" || name == "." || name == ".." {
		name = "sheet"
	}
	return name + ".tsv"
}

// Cell makes a value safe for one TSV cell.
func Cell(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r\n", " / ")
	s = strings.ReplaceAll(s, "\n", " / ")
	return strings.ReplaceAll(s, "\r", " / ")
}

// EncodeRows renders rows as TSV lines, one per row, each cell passed through Cell.
func EncodeRows(rows [][]string) []byte {
	var b strings.Builder
	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(Cell(v))
		}
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// readCreatedAts collects column CreatedAtColumn from every line after the header.
func readCreatedAts(r io.Reader) (map[string]bool, error) {
	seen := make(map[string]bool)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		cols := strings.Split(sc.Text(), "\t")
		if len(cols) <= CreatedAtColumn {
			continue
		}
		if v := strings.TrimSpace(cols[CreatedAtColumn]); v != "" {
			seen[v] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return seen, nil
}
