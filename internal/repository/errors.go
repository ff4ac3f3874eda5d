package repository

import "errors"

var (
	// ErrInvalidUID indicates an empty or malformed student identifier
	ErrInvalidUID = errors.New("invalid student UID")

	// ErrStudentNotFound indicates no record matches the UID
	ErrStudentNotFound = errors.New("student not found")

	// ErrRepositoryUnavailable indicates the table store could not be reached
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
