// Package apperr defines the error kinds surfaced at collaborator
// boundaries. Callers wrap them with fmt.Errorf("...: %w") and test with
// errors.Is.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrIO            = errors.New("i/o")
	ErrParse         = errors.New("parse")
	ErrAlreadyExists = errors.New("already exists")
)
