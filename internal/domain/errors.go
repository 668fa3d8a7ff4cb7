package domain

import (
	"errors"
	"fmt"
	"strings"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Transient reports whether the caller may silently retry the operation.
func (e *AppError) Transient() bool {
	return e.Code == CodePersistenceConflict
}

// Error codes surfaced to callers.
const (
	CodeNotFound              = "NOT_FOUND"
	CodeConflict              = "CONFLICT"
	CodeValidation            = "VALIDATION_ERROR"
	CodeInternal              = "INTERNAL_ERROR"
	CodeInvalidHandicap       = "INVALID_HANDICAP"
	CodeIncompleteHole        = "INCOMPLETE_HOLE"
	CodePersistenceConflict   = "PERSISTENCE_CONFLICT"
	CodeMissingCourseData     = "MISSING_COURSE_DATA"
	CodeDuplicateHandicapRank = "DUPLICATE_HANDICAP_RANK"
)

// ErrConcurrentModification is returned by a Store when the optimistic version
// check fails. The ledger retries it; callers never see it.
var ErrConcurrentModification = errors.New("concurrent modification")

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: CodeConflict, Message: msg, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg, Status: 400}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: msg, Status: 500, Cause: cause}
}

// Scoring error taxonomy.

func ErrInvalidHandicap(handicap, min, max int) *AppError {
	return &AppError{
		Code:    CodeInvalidHandicap,
		Message: fmt.Sprintf("course handicap %d outside allowed range %d..%d", handicap, min, max),
		Status:  422,
	}
}

func ErrIncompleteHole(hole int, missing []string) *AppError {
	return &AppError{
		Code:    CodeIncompleteHole,
		Message: fmt.Sprintf("hole %d missing entries for: %s", hole, strings.Join(missing, ", ")),
		Status:  409,
	}
}

func ErrPersistenceConflict(attempts int, cause error) *AppError {
	return &AppError{
		Code:    CodePersistenceConflict,
		Message: fmt.Sprintf("group update conflicted after %d attempts", attempts),
		Status:  409,
		Cause:   cause,
	}
}

func ErrMissingCourseData(msg string) *AppError {
	return &AppError{Code: CodeMissingCourseData, Message: msg, Status: 422}
}

func ErrDuplicateHandicapRank(rank int) *AppError {
	return &AppError{
		Code:    CodeDuplicateHandicapRank,
		Message: fmt.Sprintf("handicap rank %d assigned to more than one hole", rank),
		Status:  422,
	}
}

// IsTransient reports whether err is a retry-silently failure rather than a
// stop-and-report one.
func IsTransient(err error) bool {
	if errors.Is(err, ErrConcurrentModification) {
		return true
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Transient()
	}
	return false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
