package repository

import (
	"context"
	"fmt"
	"strings"

	"go-student-scanner/internal/storage"
)

// tableStudentRepository implements StudentRepository over a TableStore
type tableStudentRepository struct {
	store storage.TableStore
	table string
}

// NewStudentRepository creates a repository reading the given table
func NewStudentRepository(store storage.TableStore, table string) StudentRepository {
	return &tableStudentRepository{
		store: store,
		table: table,
	}
}

func (r *tableStudentRepository) FindByUID(ctx context.Context, uid string) (*Student, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, ErrInvalidUID
	}

	rows, err := r.store.Select(ctx, r.table, ColumnUID, uid)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepositoryUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, ErrStudentNotFound
	}

	student := studentFromRow(rows[0])
	return &student, nil
}

func (r *tableStudentRepository) UpdateLanguage(ctx context.Context, uid, language string) ([]Student, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, ErrInvalidUID
	}

	rows, err := r.store.Update(ctx, r.table, ColumnUID, uid, storage.Row{ColumnLanguage: language})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepositoryUnavailable, err)
	}

	students := make([]Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, studentFromRow(row))
	}
	return students, nil
}
