package sqlgen

import "fmt"

// AggregateFunction names an aggregate and the alias its result is read from.
type AggregateFunction struct {
	Function string
	Alias    string
}

// Aggregates used by the terminal helpers of the query builder.
var (
	CountAggregate = AggregateFunction{Function: "count", Alias: "count"}
	MinAggregate   = AggregateFunction{Function: "min", Alias: "min_value"}
	MaxAggregate   = AggregateFunction{Function: "max", Alias: "max_value"}
	SumAggregate   = AggregateFunction{Function: "sum", Alias: "sum_value"}
	AvgAggregate   = AggregateFunction{Function: "avg", Alias: "avg_value"}
)

// Expression renders the aggregate over column as a select expression,
// e.g. max(price) as max_value. An empty column renders as *.
func (a AggregateFunction) Expression(column string) Raw {
	if column == "" {
		column = "*"
	}
	return NewRaw(fmt.Sprintf("%s(%s) as %s", a.Function, column, a.Alias))
}
