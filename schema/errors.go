package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoTableName is returned for a blueprint without a table name.
	ErrNoTableName = errors.New("chorm: table name is required")
	// ErrViewTarget is returned when a materialized view has neither a TO
	// table nor an engine.
	ErrViewTarget = errors.New("chorm: materialized view needs a target table or an engine")
	// ErrDuplicateColumn matches every DuplicateColumnError.
	ErrDuplicateColumn = errors.New("chorm: duplicate column")
	// ErrInvalidDictionary is returned for an incomplete dictionary definition.
	ErrInvalidDictionary = errors.New("chorm: invalid dictionary definition")
)

// DuplicateColumnError lists column names declared more than once.
type DuplicateColumnError struct {
	Table   string
	Columns []string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("chorm: table %s declares duplicate columns: %s", e.Table, strings.Join(e.Columns, ", "))
}

// Is reports whether target is ErrDuplicateColumn.
func (e *DuplicateColumnError) Is(target error) bool {
	return target == ErrDuplicateColumn
}
