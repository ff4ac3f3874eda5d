package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements TableStore on a local SQLite file. It is meant for
// development and offline deployments that do not reach the hosted table.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLiteStore opens or creates the database at dbPath and makes sure
// the student table exists.
func OpenSQLiteStore(dbPath, table string) (*SQLiteStore, error) {
	dsn := dbPath + "?mode=rwc"
	if dbPath == ":memory:" {
		dsn = dbPath
	} else if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db, dbPath: dbPath}

	if dbPath != ":memory:" {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createStudentTable(table); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createStudentTable(table string) error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		"UID" TEXT PRIMARY KEY,
		"Name" TEXT,
		"Number" TEXT,
		"Language" TEXT
	)`, quoteIdent(table))

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Select returns rows where column equals value
func (s *SQLiteStore) Select(ctx context.Context, table, column, value string) ([]Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", quoteIdent(table), quoteIdent(column))
	rows, err := s.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// Update sets values on matching rows and returns them
func (s *SQLiteStore) Update(ctx context.Context, table, column, value string, values Row) ([]Row, error) {
	if len(values) == 0 {
		return nil, errors.New("update needs at least one column")
	}

	keys := sortedKeys(values)
	assignments := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys)+1)
	for _, k := range keys {
		assignments = append(assignments, quoteIdent(k)+" = ?")
		args = append(args, values[k])
	}
	args = append(args, value)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ? RETURNING *",
		quoteIdent(table), strings.Join(assignments, ", "), quoteIdent(column))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", table, err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// Upsert inserts a row or replaces the row with the same primary key
func (s *SQLiteStore) Upsert(ctx context.Context, table string, row Row) error {
	if len(row) == 0 {
		return errors.New("upsert needs at least one column")
	}

	keys := sortedKeys(row)
	columns := make([]string, 0, len(keys))
	placeholders := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		columns = append(columns, quoteIdent(k))
		placeholders = append(placeholders, "?")
		args = append(args, row[k])
	}

	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", table, err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	out := []Row{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sortedKeys(r Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
