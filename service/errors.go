package service

import (
	"errors"
	"fmt"

	"github.com/odese/athenaeum/data"
)

var (
	ErrFailedValidation     = errors.New("failed validation")
	ErrRecordNotFound       = errors.New("record not found")
	ErrEditConflict         = errors.New("edit conflict")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrDuplicateRecord      = errors.New("duplicate record")
	ErrNotPermitted         = errors.New("not permitted")
	ErrBadRequest           = errors.New("bad request")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrContentTooLarge      = errors.New("content too large")
)

// Borrow/return business-rule violations. The messages match what callers
// see on the wire.
var (
	ErrDuplicateISBN         = errors.New("a book with this ISBN already exists")
	ErrDuplicateBorrowing    = errors.New("you already have this book borrowed")
	ErrBorrowingLimitReached = fmt.Errorf("you have reached the maximum allowed number of borrowed books (%d)", data.MaxBorrowingsPerUser)
	ErrNoCopiesAvailable     = errors.New("no available copies of this book")
	ErrNotTransactionOwner   = errors.New("this transaction doesn't belong to you")
	ErrAlreadyReturned       = errors.New("this book is already returned")
)

// ValidationError carries the per-field validation messages back to the
// transport layer. It matches ErrFailedValidation under errors.Is.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("failed validation: %v", e.Errors)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrFailedValidation
}

func (s *service) failedValidation(errorMap map[string]string) error {
	return &ValidationError{Errors: errorMap}
}
