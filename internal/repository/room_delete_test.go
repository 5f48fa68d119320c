package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

// scriptDB is a database/sql driver that records every statement and answers
// queries from rows.
type scriptDB struct {
	mu   sync.Mutex
	log  []string
	rows func(query string) []driver.Value
}

func (d *scriptDB) record(q string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log = append(d.log, q)
}

func (d *scriptDB) Connect(context.Context) (driver.Conn, error) { return scriptConn{d}, nil }
func (d *scriptDB) Driver() driver.Driver                        { return d }
func (d *scriptDB) Open(string) (driver.Conn, error)             { return scriptConn{d}, nil }

type scriptConn struct{ d *scriptDB }

func (c scriptConn) Prepare(q string) (driver.Stmt, error) { return scriptStmt{c.d, q}, nil }
func (c scriptConn) Close() error                          { return nil }
func (c scriptConn) Begin() (driver.Tx, error)             { c.d.record("BEGIN"); return scriptTx{c.d}, nil }

type scriptTx struct{ d *scriptDB }

func (t scriptTx) Commit() error   { t.d.record("COMMIT"); return nil }
func (t scriptTx) Rollback() error { t.d.record("ROLLBACK"); return nil }

type scriptStmt struct {
	d *scriptDB
	q string
}

func (s scriptStmt) Close() error  { return nil }
func (s scriptStmt) NumInput() int { return -1 }
func (s scriptStmt) Exec([]driver.Value) (driver.Result, error) {
	s.d.record(s.q)
	return driver.RowsAffected(1), nil
}
func (s scriptStmt) Query([]driver.Value) (driver.Rows, error) {
	s.d.record(s.q)
	var row []driver.Value
	if s.d.rows != nil {
		row = s.d.rows(s.q)
	}
	return &scriptRows{row: row}, nil
}

type scriptRows struct {
	row  []driver.Value
	done bool
}

func (r *scriptRows) Columns() []string {
	cols := make([]string, len(r.row))
	for i := range cols {
		cols[i] = "c"
	}
	return cols
}
func (r *scriptRows) Close() error { return nil }
func (r *scriptRows) Next(dest []driver.Value) error {
	if r.done || r.row == nil {
		return io.EOF
	}
	r.done = true
	copy(dest, r.row)
	return nil
}

func TestRoomDeleteLocksRoomBeforeCounting(t *testing.T) {
	cases := []struct {
		name    string
		exists  bool
		active  int64
		wantErr error
		wantLog []string
	}{
		{"deleted", true, 0, nil, []string{"BEGIN", "FOR UPDATE", "COUNT(*)", "DELETE FROM rooms", "COMMIT"}},
		{"active bookings", true, 2, ErrConflict, []string{"BEGIN", "FOR UPDATE", "COUNT(*)", "ROLLBACK"}},
		{"missing room", false, 0, ErrNotFound, []string{"BEGIN", "FOR UPDATE", "ROLLBACK"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := &scriptDB{rows: func(q string) []driver.Value {
				switch {
				case strings.Contains(q, "FOR UPDATE"):
					if tc.exists {
						return []driver.Value{int64(1)}
					}
					return nil
				case strings.Contains(q, "COUNT(*)"):
					return []driver.Value{tc.active}
				}
				return nil
			}}
			db := sql.OpenDB(d)
			defer db.Close()

			err := NewRoomRepo(db).Delete(context.Background(), 7)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			d.mu.Lock()
			defer d.mu.Unlock()
			if len(d.log) != len(tc.wantLog) {
				t.Fatalf("statements %q, want %q", d.log, tc.wantLog)
			}
			for i, want := range tc.wantLog {
				if !strings.Contains(d.log[i], want) {
					t.Errorf("statement %d = %q, want %q", i, d.log[i], want)
				}
			}
		})
	}
}
