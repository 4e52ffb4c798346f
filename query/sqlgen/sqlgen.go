// Package sqlgen generates ClickHouse SQL from structured statement state.
package sqlgen

import (
	"strconv"
	"strings"
)

// StatementType selects which statement a Statement renders as.
type StatementType int

const (
	SelectStatement StatementType = iota
	InsertStatement
	UpdateStatement
	DeleteStatement
)

// String returns the SQL keyword for the statement type.
func (t StatementType) String() string {
	switch t {
	case InsertStatement:
		return "INSERT"
	case UpdateStatement:
		return "UPDATE"
	case DeleteStatement:
		return "DELETE"
	default:
		return "SELECT"
	}
}

// OrderBy represents an ORDER BY clause
type OrderBy struct {
	Column    Expression
	Direction string // "ASC" or "DESC"
}

// CTE is a named WITH expression.
type CTE struct {
	Name  string
	Query Expression
}

// Statement is the accumulated state of one query.
type Statement struct {
	Type    StatementType
	Table   string
	Columns []Expression
	Where   *WhereClause
	Having  *WhereClause
	Groups  []Expression
	Orders  []OrderBy
	Joins   []Join
	CTEs    []CTE
	Limit   *int
	Offset  *int
	Final   bool
	Sample  *float64
	Rows    []Row
	Updates Row
}

// Generator renders statements in the ClickHouse dialect. It holds no state
// and is safe for concurrent use.
type Generator struct{}

// NewGenerator creates a new SQL generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders s according to its type.
func (g *Generator) Generate(s *Statement) (string, error) {
	switch s.Type {
	case InsertStatement:
		return g.GenerateInsert(s)
	case UpdateStatement:
		return g.GenerateUpdate(s)
	case DeleteStatement:
		return g.GenerateDelete(s)
	default:
		return g.GenerateSelect(s)
	}
}

// GenerateSelect renders WITH, SELECT, FROM [FINAL] [SAMPLE], JOIN, WHERE,
// GROUP BY, HAVING, ORDER BY and LIMIT [OFFSET] in that fixed order.
func (g *Generator) GenerateSelect(s *Statement) (string, error) {
	if s.Table == "" {
		return "", ErrNoTable
	}

	var parts []string

	if len(s.CTEs) > 0 {
		ctes := make([]string, len(s.CTEs))
		for i, cte := range s.CTEs {
			ctes[i] = cte.Name + " AS (" + cte.Query.SQL() + ")"
		}
		parts = append(parts, "WITH "+strings.Join(ctes, ", "))
	}

	columns := "*"
	if len(s.Columns) > 0 {
		columns = render(s.Columns)
	}
	parts = append(parts, "SELECT "+columns)

	from := "FROM " + s.Table
	if s.Final {
		from += " FINAL"
	}
	if s.Sample != nil {
		from += " SAMPLE " + strconv.FormatFloat(*s.Sample, 'f', -1, 64)
	}
	parts = append(parts, from)

	if len(s.Joins) > 0 {
		parts = append(parts, buildJoins(s.Joins))
	}

	if !s.Where.IsEmpty() {
		where, err := s.Where.Build()
		if err != nil {
			return "", err
		}
		parts = append(parts, "WHERE "+where)
	}

	if len(s.Groups) > 0 {
		parts = append(parts, "GROUP BY "+render(s.Groups))
	}

	if !s.Having.IsEmpty() {
		having, err := s.Having.Build()
		if err != nil {
			return "", err
		}
		parts = append(parts, "HAVING "+having)
	}

	if len(s.Orders) > 0 {
		orders := make([]string, len(s.Orders))
		for i, o := range s.Orders {
			direction := "ASC"
			if strings.EqualFold(o.Direction, "DESC") {
				direction = "DESC"
			}
			orders[i] = o.Column.SQL() + " " + direction
		}
		parts = append(parts, "ORDER BY "+strings.Join(orders, ", "))
	}

	if s.Limit != nil {
		parts = append(parts, "LIMIT "+strconv.Itoa(*s.Limit))
		if s.Offset != nil {
			parts = append(parts, "OFFSET "+strconv.Itoa(*s.Offset))
		}
	}

	return strings.Join(parts, " "), nil
}

// GenerateInsert renders a multi-row INSERT. The first row's columns are
// authoritative: later rows render NULL for columns they lack and are
// rejected if they carry columns the first row does not.
func (g *Generator) GenerateInsert(s *Statement) (string, error) {
	if s.Table == "" {
		return "", ErrNoTable
	}
	if len(s.Rows) == 0 || s.Rows[0].Len() == 0 {
		return "", &NoDataError{Table: s.Table}
	}

	columns := s.Rows[0].Columns()
	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[c] = struct{}{}
	}

	rows := make([]string, len(s.Rows))
	for i, row := range s.Rows {
		for _, c := range row.Columns() {
			if _, ok := known[c]; !ok {
				return "", NewValidationError("insert", "row %d has column %q that is not present in the first row", i, c)
			}
		}
		values := make([]string, len(columns))
		for j, c := range columns {
			v, _ := row.Get(c)
			values[j] = FormatValue(v)
		}
		rows[i] = "(" + strings.Join(values, ", ") + ")"
	}

	return "INSERT INTO " + s.Table + " (" + strings.Join(columns, ", ") + ") VALUES " + strings.Join(rows, ", "), nil
}

// GenerateUpdate renders a mutation: ALTER TABLE t UPDATE a = 1 [WHERE ...].
func (g *Generator) GenerateUpdate(s *Statement) (string, error) {
	if s.Table == "" {
		return "", ErrNoTable
	}
	if s.Updates.Len() == 0 {
		return "", ErrNoUpdateValues
	}

	columns := s.Updates.Columns()
	sets := make([]string, len(columns))
	for i, c := range columns {
		v, _ := s.Updates.Get(c)
		sets[i] = c + " = " + FormatValue(v)
	}

	sql := "ALTER TABLE " + s.Table + " UPDATE " + strings.Join(sets, ", ")
	if !s.Where.IsEmpty() {
		where, err := s.Where.Build()
		if err != nil {
			return "", err
		}
		sql += " WHERE " + where
	}
	return sql, nil
}

// GenerateDelete renders ALTER TABLE t DELETE WHERE .... A WHERE clause is
// mandatory.
func (g *Generator) GenerateDelete(s *Statement) (string, error) {
	if s.Table == "" {
		return "", ErrNoTable
	}
	if s.Where.IsEmpty() {
		return "", &MissingWhereClauseError{Table: s.Table}
	}

	where, err := s.Where.Build()
	if err != nil {
		return "", err
	}
	return "ALTER TABLE " + s.Table + " DELETE WHERE " + where, nil
}
