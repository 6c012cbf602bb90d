package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a degreeplan error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrMajorNotFound      ErrorCode = "MAJOR_NOT_FOUND"     // 404
	ErrFileNotFound       ErrorCode = "FILE_NOT_FOUND"      // 404
	ErrNameAlreadyExists  ErrorCode = "NAME_ALREADY_EXISTS" // 409
	ErrCatalogInvalid     ErrorCode = "CATALOG_INVALID"     // 422
	ErrAdvisorUnavailable ErrorCode = "ADVISOR_UNAVAILABLE" // 502
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// PlannerError represents a structured error with code, status, and details.
type PlannerError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *PlannerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PlannerError {
	return &PlannerError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing stored record.
func NewNotFound(identifier string) *PlannerError {
	return &PlannerError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewMajorNotFound creates a 404 error when a major has no canonical match in the catalog.
func NewMajorNotFound(major string) *PlannerError {
	return &PlannerError{
		Code:    ErrMajorNotFound,
		Status:  404,
		Message: fmt.Sprintf("major not found: %s", major),
		Details: map[string]any{"major": major},
	}
}

// NewFileNotFound creates a 404 error for a missing input file.
func NewFileNotFound(path string) *PlannerError {
	return &PlannerError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewNameAlreadyExists creates a 409 error for major name collisions on import.
func NewNameAlreadyExists(name string) *PlannerError {
	return &PlannerError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("major %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// NewCatalogInvalid creates a 422 error for a catalog that fails structural validation.
func NewCatalogInvalid(problems []string) *PlannerError {
	return &PlannerError{
		Code:    ErrCatalogInvalid,
		Status:  422,
		Message: fmt.Sprintf("catalog failed validation: %d problem(s)", len(problems)),
		Details: map[string]any{"problems": problems},
	}
}

// NewAdvisorUnavailable creates a 502 error when the text generation backend fails.
func NewAdvisorUnavailable(err error) *PlannerError {
	msg := "advisor unavailable"
	if err != nil {
		msg = fmt.Sprintf("advisor unavailable: %v", err)
	}
	return &PlannerError{
		Code:    ErrAdvisorUnavailable,
		Status:  502,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PlannerError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PlannerError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// As returns the PlannerError in err's chain, if any.
func As(err error) (*PlannerError, bool) {
	var pErr *PlannerError
	if stderrors.As(err, &pErr) {
		return pErr, true
	}
	return nil, false
}

// Is checks if an error is a PlannerError with the given code.
func Is(err error, code ErrorCode) bool {
	if pErr, ok := As(err); ok {
		return pErr.Code == code
	}
	return false
}
