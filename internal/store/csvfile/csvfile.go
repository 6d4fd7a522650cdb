// Package csvfile stores each owner's collections as CSV files, one file per
// collection: <root>/<owner>/<collection>.csv.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/emitrack/emitrack/internal/store"
)

// Backend is a store.Backend over a directory of CSV files.
type Backend struct {
	root string
	mu   sync.Mutex
}

// New returns a Backend rooted at root. The directory is created on first write.
func New(root string) *Backend {
	return &Backend{root: root}
}

// Path returns the file holding kind for owner.
func (b *Backend) Path(kind store.Kind, owner string) string {
	return filepath.Join(b.root, url.PathEscape(owner), string(kind)+".csv")
}

func (b *Backend) Load(ctx context.Context, kind store.Kind, owner string) ([]store.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read(kind, owner)
}

func (b *Backend) read(kind store.Kind, owner string) ([]store.Row, error) {
	path := b.Path(kind, owner)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		// A commit that died after moving the file aside leaves only the backup.
		if rerr := os.Rename(backupPath(path), path); rerr != nil {
			return nil, nil
		}
		f, err = os.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadRows(f, store.Header(kind))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// Commit rewrites every touched file. All new contents are written to temp
// files first. Each existing file is then moved aside and replaced; if any
// replacement fails the files already swapped are restored, so a failed
// commit leaves every collection as it was.
func (b *Backend) Commit(ctx context.Context, owner string, ops []store.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	byKind := make(map[store.Kind][]store.Row)
	var order []store.Kind
	for _, op := range ops {
		rows, ok := byKind[op.Kind]
		if !ok {
			if store.Header(op.Kind) == nil {
				return fmt.Errorf("unknown collection %q", op.Kind)
			}
			var err error
			if rows, err = b.read(op.Kind, owner); err != nil {
				return err
			}
			order = append(order, op.Kind)
		}
		byKind[op.Kind] = store.Apply(rows, op)
	}

	dir := filepath.Join(b.root, url.PathEscape(owner))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating owner dir: %w", err)
	}

	temps := make(map[store.Kind]string, len(order))
	cleanup := func() {
		for _, tmp := range temps {
			os.Remove(tmp)
		}
	}
	for _, kind := range order {
		tmp, err := writeTemp(dir, kind, byKind[kind])
		if err != nil {
			cleanup()
			return err
		}
		temps[kind] = tmp
	}

	var swaps []swap
	rollback := func() {
		for i := len(swaps) - 1; i >= 0; i-- {
			swaps[i].undo()
		}
		cleanup()
	}
	for _, kind := range order {
		sw := swap{target: b.Path(kind, owner)}
		if _, err := os.Stat(sw.target); err == nil {
			sw.backup = backupPath(sw.target)
			if err := rename(sw.target, sw.backup); err != nil {
				rollback()
				return fmt.Errorf("moving %s aside: %w", kind, err)
			}
		}
		swaps = append(swaps, sw)
		if err := rename(temps[kind], sw.target); err != nil {
			rollback()
			return fmt.Errorf("replacing %s: %w", kind, err)
		}
		swaps[len(swaps)-1].installed = true
		delete(temps, kind)
	}
	for _, sw := range swaps {
		if sw.backup != "" {
			os.Remove(sw.backup)
		}
	}
	return nil
}

// rename is swapped out by tests to make a replacement fail.
var rename = os.Rename

// swap tracks one collection file being replaced.
type swap struct {
	target    string
	backup    string // empty when the file did not exist
	installed bool
}

func (sw swap) undo() {
	if sw.backup != "" {
		os.Rename(sw.backup, sw.target)
		return
	}
	if sw.installed {
		os.Remove(sw.target)
	}
}

func backupPath(path string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, "."+name+".bak")
}

func writeTemp(dir string, kind store.Kind, rows []store.Row) (string, error) {
	f, err := os.CreateTemp(dir, "."+string(kind)+"-*.csv")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	if err := WriteRows(f, store.Header(kind), rows); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing %s: %w", kind, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return f.Name(), nil
}

func (b *Backend) Close() error { return nil }

// Owners lists the owners that have a directory under root.
func (b *Backend) Owners() ([]string, error) {
	entries, err := os.ReadDir(b.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing owners: %w", err)
	}
	var owners []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		owner, err := url.PathUnescape(e.Name())
		if err != nil {
			continue
		}
		owners = append(owners, owner)
	}
	return owners, nil
}

// ReadRows reads a CSV file whose first line is header.
func ReadRows(r io.Reader, header []string) ([]store.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if !slices.Equal(records[0], header) {
		return nil, fmt.Errorf("unexpected header %v", records[0])
	}

	rows := make([]store.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, store.Row(rec))
	}
	return rows, nil
}

// WriteRows writes header and rows as CSV.
func WriteRows(w io.Writer, header []string, rows []store.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
