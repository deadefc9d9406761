package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DirOpener keeps each sheet as a TSV file in one directory.
type DirOpener struct {
	dir string
}

func NewDirOpener(dir string) *DirOpener {
	return &DirOpener{dir: dir}
}

func (o *DirOpener) Open(ctx context.Context, title string) (Sheet, bool, error) {
	if err := os.MkdirAll(o.dir, 0700); err != nil {
		return nil, false, fmt.Errorf("create sheets directory: %w", err)
	}
	path := filepath.Join(o.dir, objectName(title))
	sheet := &dirSheet{title: title, path: path}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, os.ErrExist) {
		return sheet, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create sheet: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(EncodeRows([][]string{Header})); err != nil {
		return nil, false, fmt.Errorf("write sheet header: %w", err)
	}
	return sheet, true, nil
}

type dirSheet struct {
	title string
	path  string
}

func (s *dirSheet) Title() string { return s.title }

// Path is the backing file.
func (s *dirSheet) Path() string { return s.path }

func (s *dirSheet) CreatedAts(ctx context.Context) (map[string]bool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer f.Close()
	return readCreatedAts(f)
}

func (s *dirSheet) AppendRows(ctx context.Context, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open sheet: %w", err)
	}
	if _, err := f.Write(EncodeRows(rows)); err != nil {
		f.Close()
		return fmt.Errorf("append rows: %w", err)
	}
	return f.Close()
}
