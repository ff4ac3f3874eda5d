package repository

import (
	"context"
	"fmt"
	"strings"

	"go-student-scanner/internal/storage"
)

// Column names of the student table
const (
	ColumnUID      = "UID"
	ColumnName     = "Name"
	ColumnNumber   = "Number"
	ColumnLanguage = "Language"
)

// StudentRepository defines data access for student records
type StudentRepository interface {
	// FindByUID returns the first record with the given UID or ErrStudentNotFound
	FindByUID(ctx context.Context, uid string) (*Student, error)

	// UpdateLanguage sets the language preference and returns the updated records
	UpdateLanguage(ctx context.Context, uid, language string) ([]Student, error)
}

// Student is one row of the student table. Name and Language are nil when
// the column is null so callers can tell missing from empty.
type Student struct {
	UID      string
	Name     *string
	Number   interface{}
	Language *string
}

// FirstName returns the first space-separated token of the name
func (s *Student) FirstName() string {
	if s.Name == nil {
		return ""
	}
	return strings.Split(*s.Name, " ")[0]
}

// FullName returns the name or "" when the column is null
func (s *Student) FullName() string {
	if s.Name == nil {
		return ""
	}
	return *s.Name
}

// LanguageOr returns the language, or fallback when the column is absent
func (s *Student) LanguageOr(fallback string) string {
	if s.Language == nil {
		return fallback
	}
	return *s.Language
}

// studentFromRow maps a table row to a Student
func studentFromRow(row storage.Row) Student {
	return Student{
		UID:      stringValue(row[ColumnUID]),
		Name:     optionalString(row, ColumnName),
		Number:   row[ColumnNumber],
		Language: optionalString(row, ColumnLanguage),
	}
}

func optionalString(row storage.Row, column string) *string {
	v, ok := row[column]
	if !ok || v == nil {
		return nil
	}
	s := stringValue(v)
	return &s
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
