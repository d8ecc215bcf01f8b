package sheets

import (
	"context"
	"errors"
	"sync"
)

// fakeValues is an in-memory ValuesAPI. Rows are stored as written; row 1 is index 0.
type fakeValues struct {
	mu      sync.Mutex
	tables  map[string][][]string
	order   []string
	added   []string
	appends int
	updates []CellUpdate
	readErr error
}

var _ ValuesAPI = (*fakeValues)(nil)

func newFakeValues() *fakeValues {
	return &fakeValues{tables: map[string][][]string{}}
}

func (f *fakeValues) Titles(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...), nil
}

func (f *fakeValues) AddTable(_ context.Context, title string, _, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tables[title]; ok {
		return errors.New("table exists")
	}
	f.tables[title] = nil
	f.order = append(f.order, title)
	f.added = append(f.added, title)
	return nil
}

func (f *fakeValues) ReadRows(_ context.Context, table string, cols int) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	rows := f.tables[table]
	out := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > cols {
			row = row[:cols]
		}
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (f *fakeValues) AppendRows(_ context.Context, table string, rows [][]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tables[table]; !ok {
		return errors.New("no such table: " + table)
	}
	for _, row := range rows {
		f.tables[table] = append(f.tables[table], append([]string(nil), row...))
	}
	f.appends++
	return nil
}

func (f *fakeValues) UpdateCells(_ context.Context, table string, updates []CellUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.tables[table]
	for _, u := range updates {
		if u.Row < 1 || u.Row > len(rows) {
			return errors.New("row out of range")
		}
		row := rows[u.Row-1]
		for len(row) < u.Column-1+len(u.Values) {
			row = append(row, "")
		}
		copy(row[u.Column-1:], u.Values)
		rows[u.Row-1] = row
		f.updates = append(f.updates, u)
	}
	return nil
}

// rows returns the data rows of table, header excluded
func (f *fakeValues) rows(table string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tables[table]) == 0 {
		return nil
	}
	return f.tables[table][1:]
}
