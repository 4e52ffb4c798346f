// Package model provides an active-record style repository over the query
// builder. A Model is bound to one executor at construction; there is no
// process-wide connection.
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/go-openapi/inflect"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"

	"github.com/satishbabariya/chorm/internal/debug"
	"github.com/satishbabariya/chorm/query/builder"
	"github.com/satishbabariya/chorm/runtime/connection"
)

// Tabler lets a model type name its own table.
type Tabler interface {
	TableName() string
}

type options struct {
	table  string
	logger *slog.Logger
}

// Option configures a Model.
type Option func(*options)

// WithTable overrides the table name.
func WithTable(table string) Option {
	return func(o *options) {
		o.table = table
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Model maps the struct type T to a table. Columns come from `ch` struct
// tags; see TagName.
type Model[T any] struct {
	exec    connection.Executor
	table   string
	fields  []field
	primary []field
	logger  *slog.Logger
}

// New binds T to exec. The table is taken from WithTable, then from a
// TableName method on T, then from the pluralized snake_case type name.
func New[T any](exec connection.Executor, opts ...Option) (*Model[T], error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, typ)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.table == "" {
		if t, ok := any(new(T)).(Tabler); ok {
			o.table = t.TableName()
		} else {
			o.table = inflect.Tableize(typ.Name())
		}
	}
	if o.logger == nil {
		o.logger = debug.With("component", "model", "table", o.table)
	}

	fields := structFields(typ)
	return &Model[T]{
		exec:    exec,
		table:   o.table,
		fields:  fields,
		primary: primaryKeys(fields),
		logger:  o.logger,
	}, nil
}

// Table returns the bound table name.
func (m *Model[T]) Table() string {
	return m.table
}

// Columns returns the mapped columns in field order.
func (m *Model[T]) Columns() []string {
	out := make([]string, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.column
	}
	return out
}

// PrimaryKeys returns the primary key columns.
func (m *Model[T]) PrimaryKeys() []string {
	out := make([]string, len(m.primary))
	for i, f := range m.primary {
		out[i] = f.column
	}
	return out
}

// Query starts a builder on the model's table.
func (m *Model[T]) Query() *builder.QueryBuilder {
	return builder.New(m.exec, m.table)
}

// All returns every row of the table.
func (m *Model[T]) All(ctx context.Context, opts ...connection.QueryOption) ([]T, error) {
	rows, err := m.Query().Get(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return m.Hydrate(rows)
}

// Find looks a record up by the first primary key. It returns nil, nil
// when no row matches.
func (m *Model[T]) Find(ctx context.Context, id any, opts ...connection.QueryOption) (*T, error) {
	if len(m.primary) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPrimaryKey, m.table)
	}
	return m.first(ctx, m.Query().Where(m.primary[0].column, id), opts)
}

// FindOrFail is Find, failing with a NotFoundError on a miss.
func (m *Model[T]) FindOrFail(ctx context.Context, id any, opts ...connection.QueryOption) (*T, error) {
	rec, err := m.Find(ctx, id, opts...)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &NotFoundError{Table: m.table, ID: id}
	}
	return rec, nil
}

// FindBy returns the first record matching every condition, or nil.
func (m *Model[T]) FindBy(ctx context.Context, conditions map[string]any, opts ...connection.QueryOption) (*T, error) {
	return m.first(ctx, m.Query().WhereMap(conditions), opts)
}

func (m *Model[T]) first(ctx context.Context, q *builder.QueryBuilder, opts []connection.QueryOption) (*T, error) {
	row, err := q.First(ctx, opts...)
	if err != nil || row == nil {
		return nil, err
	}
	return m.hydrateOne(row)
}

// Create builds a record from attributes without saving it. Keys may be
// column names or field names.
func (m *Model[T]) Create(attributes map[string]any) (*T, error) {
	return m.hydrateOne(attributes)
}

// CreateAndSave builds a record from attributes and inserts it.
func (m *Model[T]) CreateAndSave(ctx context.Context, attributes map[string]any, opts ...connection.QueryOption) (*T, error) {
	rec, err := m.Create(attributes)
	if err != nil {
		return nil, err
	}
	if _, err := m.Save(ctx, rec, opts...); err != nil {
		return nil, err
	}
	return rec, nil
}

// Hydrate decodes result rows into records. Column keys match fields by
// tag or by snake_case name; numbers and strings are converted weakly, and
// DateTime strings decode into time.Time.
func (m *Model[T]) Hydrate(rows []connection.Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		var rec T
		if err := decode(row, &rec); err != nil {
			m.logger.Debug("failed to hydrate row", "index", i, "error", err)
			return nil, fmt.Errorf("failed to hydrate %s row %d: %w", m.table, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *Model[T]) hydrateOne(row map[string]any) (*T, error) {
	recs, err := m.Hydrate([]connection.Row{row})
	if err != nil {
		return nil, err
	}
	return &recs[0], nil
}

// Count returns the number of rows.
func (m *Model[T]) Count(ctx context.Context, opts ...connection.QueryOption) (int64, error) {
	return m.Query().Count(ctx, opts...)
}

// Min returns the smallest value of column.
func (m *Model[T]) Min(ctx context.Context, column string, opts ...connection.QueryOption) (any, error) {
	return m.Query().Min(ctx, column, opts...)
}

// Max returns the largest value of column.
func (m *Model[T]) Max(ctx context.Context, column string, opts ...connection.QueryOption) (any, error) {
	return m.Query().Max(ctx, column, opts...)
}

// Sum returns the sum of column.
func (m *Model[T]) Sum(ctx context.Context, column string, opts ...connection.QueryOption) (float64, error) {
	return m.Query().Sum(ctx, column, opts...)
}

// Avg returns the average of column.
func (m *Model[T]) Avg(ctx context.Context, column string, opts ...connection.QueryOption) (float64, error) {
	return m.Query().Avg(ctx, column, opts...)
}

// Insert writes records in one INSERT.
func (m *Model[T]) Insert(ctx context.Context, records []T, opts ...connection.QueryOption) (*connection.Result, error) {
	rows := make([]builder.Row, len(records))
	for i := range records {
		rows[i] = m.ToRecord(&records[i])
	}
	return m.InsertRows(ctx, rows, opts...)
}

// InsertRows writes raw rows in one INSERT.
func (m *Model[T]) InsertRows(ctx context.Context, rows []builder.Row, opts ...connection.QueryOption) (*connection.Result, error) {
	return m.Query().Values(rows...).Exec(ctx, opts...)
}

// ToRecord returns the column values of rec in field order.
func (m *Model[T]) ToRecord(rec *T) builder.Row {
	v := reflect.ValueOf(rec).Elem()
	row := builder.Row{}
	for _, f := range m.fields {
		row = row.Set(f.column, v.FieldByIndex(f.index).Interface())
	}
	return row
}

// Save inserts rec. ClickHouse has no in-place upsert, so saving the same
// key twice relies on the table engine to collapse rows.
func (m *Model[T]) Save(ctx context.Context, rec *T, opts ...connection.QueryOption) (*connection.Result, error) {
	return m.InsertRows(ctx, []builder.Row{m.ToRecord(rec)}, opts...)
}

// DeleteWhere deletes rows matching every condition.
func (m *Model[T]) DeleteWhere(ctx context.Context, conditions map[string]any, opts ...connection.QueryOption) (*connection.Result, error) {
	return m.Query().WhereMap(conditions).SetDelete().Exec(ctx, opts...)
}

// DeleteByID deletes rows whose first primary key equals id.
func (m *Model[T]) DeleteByID(ctx context.Context, id any, opts ...connection.QueryOption) (*connection.Result, error) {
	if len(m.primary) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPrimaryKey, m.table)
	}
	return m.Query().Where(m.primary[0].column, id).SetDelete().Exec(ctx, opts...)
}

// Delete deletes rec by all of its primary keys. Every key must be set.
func (m *Model[T]) Delete(ctx context.Context, rec *T, opts ...connection.QueryOption) (*connection.Result, error) {
	if len(m.primary) == 0 {
		return nil, fmt.Errorf("cannot delete record: %w: %s", ErrNoPrimaryKey, m.table)
	}
	v := reflect.ValueOf(rec).Elem()
	q := m.Query()
	for _, f := range m.primary {
		fv := v.FieldByIndex(f.index)
		if fv.IsZero() {
			return nil, fmt.Errorf("cannot delete record: %w: %s", ErrZeroPrimaryKey, f.column)
		}
		q.Where(f.column, fv.Interface())
	}
	return q.SetDelete().Exec(ctx, opts...)
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			timeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		Squash:           true,
		TagName:          TagName,
		Result:           out,
		MatchName: func(key, fieldName string) bool {
			return normalizeName(key) == normalizeName(fieldName)
		},
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// dateTimeLayout covers DateTime and DateTime64 output of the JSON format.
const dateTimeLayout = "2006-01-02 15:04:05.999999999"

// timeHook decodes ClickHouse DateTime strings and unix timestamps.
func timeHook(from, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		if t, err := time.ParseInLocation(dateTimeLayout, v, time.UTC); err == nil {
			return t, nil
		}
		return cast.ToTimeInDefaultLocationE(v, time.UTC)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, err
		}
		return time.Unix(n, 0).UTC(), nil
	}
	return data, nil
}
