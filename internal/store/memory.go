package store

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process Backend holding rows until the process exits.
type Memory struct {
	mu   sync.Mutex
	data map[string]map[Kind][]Row
	err  error
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[Kind][]Row)}
}

// Fail makes every later Load and Commit return err, until called with nil.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Memory) Load(_ context.Context, kind Kind, owner string) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	rows := m.data[owner][kind]
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out, nil
}

func (m *Memory) Commit(_ context.Context, owner string, ops []Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	next := make(map[Kind][]Row, len(Kinds))
	for kind, rows := range m.data[owner] {
		next[kind] = rows
	}
	for _, op := range ops {
		next[op.Kind] = Apply(next[op.Kind], op)
	}
	m.data[owner] = next
	return nil
}

func (m *Memory) Close() error { return nil }

// Apply returns rows with op applied. rows is not modified.
func Apply(rows []Row, op Op) []Row {
	idx := slices.IndexFunc(rows, func(r Row) bool { return r.ID() == op.ID })
	switch op.Type {
	case OpPut:
		out := slices.Clone(rows)
		if idx >= 0 {
			out[idx] = slices.Clone(op.Row)
		} else {
			out = append(out, slices.Clone(op.Row))
		}
		return out
	case OpDelete:
		if idx < 0 {
			return rows
		}
		return slices.Delete(slices.Clone(rows), idx, idx+1)
	}
	return rows
}
