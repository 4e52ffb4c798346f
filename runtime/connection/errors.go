package connection

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	// ErrRequestFailed wraps transport failures: refused connections,
	// timeouts and unreadable bodies.
	ErrRequestFailed = errors.New("clickhouse: request failed")

	// ErrInvalidResponse wraps a non-DDL response body that is not valid JSON.
	ErrInvalidResponse = errors.New("clickhouse: failed to parse response")

	// ErrQuery is matched by every QueryError.
	ErrQuery = errors.New("clickhouse: query failed")
)

var exceptionCode = regexp.MustCompile(`^\s*Code:\s*(\d+)`)

// QueryError is a non-2xx answer from the server.
type QueryError struct {
	StatusCode int
	// Code is the ClickHouse exception code, 0 when the body carries none.
	Code int
	Body string
	SQL  string
}

func newQueryError(status int, body, sql string) *QueryError {
	e := &QueryError{StatusCode: status, Body: body, SQL: sql}
	if m := exceptionCode.FindStringSubmatch(body); m != nil {
		e.Code, _ = strconv.Atoi(m[1])
	}
	return e
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("clickhouse: HTTP error %d: %s", e.StatusCode, e.Body)
}

// Is reports whether target is ErrQuery.
func (e *QueryError) Is(target error) bool {
	return target == ErrQuery
}

// IsQueryError reports whether err carries a server-side error and returns it.
func IsQueryError(err error) (*QueryError, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
