package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPrimaryKey is returned by key-based operations on a model whose
	// struct declares no primary column.
	ErrNoPrimaryKey = errors.New("model has no primary key")
	// ErrNotFound is matched by NotFoundError.
	ErrNotFound = errors.New("record not found")
	// ErrZeroPrimaryKey is returned when deleting a record whose primary key
	// field holds its zero value.
	ErrZeroPrimaryKey = errors.New("primary key is not set")
	// ErrNotStruct is returned by New when T is not a struct type.
	ErrNotStruct = errors.New("model type must be a struct")
)

// NotFoundError reports a FindOrFail miss.
type NotFoundError struct {
	Table string
	ID    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record with id %v not found in table %s", e.ID, e.Table)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
