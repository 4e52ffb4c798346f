// Package builder provides window function building functionality
package builder

import (
	"strconv"
	"strings"

	"github.com/satishbabariya/chorm/query/sqlgen"
)

// Window is an OVER (...) specification.
type Window struct {
	partition []string
	orders    []sqlgen.OrderBy
	frame     string
}

// Over starts an empty window specification.
func Over() *Window {
	return &Window{}
}

// PartitionBy sets the PARTITION BY columns
func (w *Window) PartitionBy(columns ...string) *Window {
	w.partition = columns
	return w
}

// OrderBy adds an ORDER BY term to the window
func (w *Window) OrderBy(column string, direction string) *Window {
	w.orders = append(w.orders, sqlgen.OrderBy{Column: sqlgen.Ident(column), Direction: direction})
	return w
}

// Rows sets a ROWS BETWEEN start AND end frame.
func (w *Window) Rows(start, end FrameBound) *Window {
	w.frame = "ROWS BETWEEN " + string(start) + " AND " + string(end)
	return w
}

// Range sets a RANGE BETWEEN start AND end frame.
func (w *Window) Range(start, end FrameBound) *Window {
	w.frame = "RANGE BETWEEN " + string(start) + " AND " + string(end)
	return w
}

// SQL renders the contents of the OVER parentheses.
func (w *Window) SQL() string {
	if w == nil {
		return ""
	}
	var parts []string
	if len(w.partition) > 0 {
		parts = append(parts, "PARTITION BY "+strings.Join(w.partition, ", "))
	}
	if len(w.orders) > 0 {
		orders := make([]string, len(w.orders))
		for i, o := range w.orders {
			dir := "ASC"
			if strings.EqualFold(o.Direction, "DESC") {
				dir = "DESC"
			}
			orders[i] = o.Column.SQL() + " " + dir
		}
		parts = append(parts, "ORDER BY "+strings.Join(orders, ", "))
	}
	if w.frame != "" {
		parts = append(parts, w.frame)
	}
	return strings.Join(parts, " ")
}

// FrameBound is one end of a window frame.
type FrameBound string

// UnboundedPreceding creates UNBOUNDED PRECEDING frame bound
func UnboundedPreceding() FrameBound { return "UNBOUNDED PRECEDING" }

// Preceding creates N PRECEDING frame bound
func Preceding(n int) FrameBound { return FrameBound(strconv.Itoa(n) + " PRECEDING") }

// CurrentRow creates CURRENT ROW frame bound
func CurrentRow() FrameBound { return "CURRENT ROW" }

// Following creates N FOLLOWING frame bound
func Following(n int) FrameBound { return FrameBound(strconv.Itoa(n) + " FOLLOWING") }

// UnboundedFollowing creates UNBOUNDED FOLLOWING frame bound
func UnboundedFollowing() FrameBound { return "UNBOUNDED FOLLOWING" }

// WindowFunc renders fn(args) OVER (window) [AS alias] as a select
// expression.
func WindowFunc(fn string, args []string, w *Window, alias string) sqlgen.Raw {
	sql := fn + "(" + strings.Join(args, ", ") + ") OVER (" + w.SQL() + ")"
	if alias != "" {
		sql += " AS " + alias
	}
	return sqlgen.NewRaw(sql)
}

// RowNumber renders row_number() OVER (...).
func RowNumber(w *Window, alias string) sqlgen.Raw {
	return WindowFunc("row_number", nil, w, alias)
}

// Rank renders rank() OVER (...).
func Rank(w *Window, alias string) sqlgen.Raw {
	return WindowFunc("rank", nil, w, alias)
}

// DenseRank renders dense_rank() OVER (...).
func DenseRank(w *Window, alias string) sqlgen.Raw {
	return WindowFunc("dense_rank", nil, w, alias)
}

// SumOver renders sum(column) OVER (...).
func SumOver(column string, w *Window, alias string) sqlgen.Raw {
	return WindowFunc("sum", []string{column}, w, alias)
}

// AvgOver renders avg(column) OVER (...).
func AvgOver(column string, w *Window, alias string) sqlgen.Raw {
	return WindowFunc("avg", []string{column}, w, alias)
}

// CountOver renders count(column) OVER (...); an empty column counts rows.
func CountOver(column string, w *Window, alias string) sqlgen.Raw {
	if column == "" {
		column = "*"
	}
	return WindowFunc("count", []string{column}, w, alias)
}

// LagInFrame renders lagInFrame(column, offset) OVER (...), ClickHouse's
// frame-bounded LAG.
func LagInFrame(column string, offset int, w *Window, alias string) sqlgen.Raw {
	return WindowFunc("lagInFrame", []string{column, strconv.Itoa(offset)}, w, alias)
}

// LeadInFrame renders leadInFrame(column, offset) OVER (...).
func LeadInFrame(column string, offset int, w *Window, alias string) sqlgen.Raw {
	return WindowFunc("leadInFrame", []string{column, strconv.Itoa(offset)}, w, alias)
}
