// Package sqlite stores records in a single SQLite database. Each row is kept
// as a JSON array in its codec's column order.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/emitrack/emitrack/internal/store"
)

const driverName = "sqlite"

// Backend is a store.Backend over SQLite.
type Backend struct {
	db *sql.DB
}

// Open opens or creates the database at dbPath and migrates it.
func Open(dbPath string) (*Backend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	return &Backend{db: db}, nil
}

func (b *Backend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

const (
	selectRows = `SELECT data FROM records WHERE owner = ? AND kind = ? ORDER BY seq`
	upsertRow  = `INSERT INTO records (owner, kind, id, seq, data)
VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records WHERE owner = ? AND kind = ?), ?)
ON CONFLICT (owner, kind, id) DO UPDATE SET data = excluded.data`
	deleteRow = `DELETE FROM records WHERE owner = ? AND kind = ? AND id = ?`
)

func (b *Backend) Load(ctx context.Context, kind store.Kind, owner string) ([]store.Row, error) {
	rows, err := b.db.QueryContext(ctx, selectRows, owner, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	defer rows.Close()

	var out []store.Row
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		var row store.Row
		if err := json.Unmarshal([]byte(data), &row); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", kind, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind, err)
	}
	return out, nil
}

// Commit applies ops in one transaction.
func (b *Backend) Commit(ctx context.Context, owner string, ops []store.Op) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, op := range ops {
		if store.Header(op.Kind) == nil {
			return fmt.Errorf("op %d: unknown collection %q", i, op.Kind)
		}
		switch op.Type {
		case store.OpPut:
			data, err := json.Marshal(op.Row)
			if err != nil {
				return fmt.Errorf("op %d: encode row: %w", i, err)
			}
			kind := string(op.Kind)
			if _, err := tx.ExecContext(ctx, upsertRow, owner, kind, op.ID, owner, kind, string(data)); err != nil {
				return fmt.Errorf("op %d: put %s %s: %w", i, op.Kind, op.ID, err)
			}
		case store.OpDelete:
			if _, err := tx.ExecContext(ctx, deleteRow, owner, string(op.Kind), op.ID); err != nil {
				return fmt.Errorf("op %d: delete %s %s: %w", i, op.Kind, op.ID, err)
			}
		default:
			return fmt.Errorf("op %d: unknown op type %d", i, op.Type)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
