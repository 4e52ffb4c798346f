package sqlgen

import (
	"errors"
	"fmt"
)

// Sentinel errors returned while rendering statements.
var (
	// ErrNoTable is returned when a statement has no target table.
	ErrNoTable = errors.New("chorm: no table specified")

	// ErrNoData is returned when an INSERT has no rows or no columns.
	ErrNoData = errors.New("chorm: no data to insert")

	// ErrMissingWhere is returned when a DELETE has no WHERE clause.
	ErrMissingWhere = errors.New("chorm: delete requires a where clause")

	// ErrNoUpdateValues is returned when an UPDATE has no assignments.
	ErrNoUpdateValues = errors.New("chorm: no values specified for update")

	// ErrInvalidArgument is the parent of every ValidationError.
	ErrInvalidArgument = errors.New("chorm: invalid argument")
)

// NoDataError reports an INSERT without rows.
type NoDataError struct {
	Table string
}

// Error returns the error string.
func (e *NoDataError) Error() string {
	return fmt.Sprintf("chorm: no data specified for insert into %s", e.Table)
}

// Is reports whether target is ErrNoData.
func (e *NoDataError) Is(target error) bool {
	return target == ErrNoData
}

// MissingWhereClauseError reports a DELETE rendered without any condition.
type MissingWhereClauseError struct {
	Table string
}

// Error returns the error string.
func (e *MissingWhereClauseError) Error() string {
	return fmt.Sprintf("chorm: delete from %s requires a where clause", e.Table)
}

// Is reports whether target is ErrMissingWhere.
func (e *MissingWhereClauseError) Is(target error) bool {
	return target == ErrMissingWhere
}

// ValidationError reports a malformed argument, naming the call that
// introduced it.
type ValidationError struct {
	Method string
	Reason string
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("chorm: %s: %s", e.Method, e.Reason)
}

// Is reports whether target is ErrInvalidArgument.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NewValidationError returns a ValidationError for method.
func NewValidationError(method, format string, args ...any) *ValidationError {
	return &ValidationError{Method: method, Reason: fmt.Sprintf(format, args...)}
}

// IsMissingWhere reports whether err is a MissingWhereClauseError.
func IsMissingWhere(err error) bool {
	var e *MissingWhereClauseError
	return errors.As(err, &e) || errors.Is(err, ErrMissingWhere)
}

// IsNoData reports whether err is a NoDataError.
func IsNoData(err error) bool {
	var e *NoDataError
	return errors.As(err, &e) || errors.Is(err, ErrNoData)
}
