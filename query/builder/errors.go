package builder

import (
	"errors"

	"github.com/satishbabariya/chorm/query/sqlgen"
)

// Errors returned by ToSQL and the terminals.
var (
	ErrNoTable         = sqlgen.ErrNoTable
	ErrNoData          = sqlgen.ErrNoData
	ErrMissingWhere    = sqlgen.ErrMissingWhere
	ErrNoUpdateValues  = sqlgen.ErrNoUpdateValues
	ErrInvalidArgument = sqlgen.ErrInvalidArgument

	// ErrNoExecutor is returned by terminals of a builder created without an
	// executor.
	ErrNoExecutor = errors.New("chorm: query builder has no executor")
)

type (
	NoDataError             = sqlgen.NoDataError
	MissingWhereClauseError = sqlgen.MissingWhereClauseError
	ValidationError         = sqlgen.ValidationError
)
