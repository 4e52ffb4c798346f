// Package update checks server compatibility.
package update

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-version"
)

// MinServerVersion is the oldest ClickHouse release chorm's DDL targets.
// Lightweight ALTER ... DELETE and IF [NOT] EXISTS clauses on columns need it.
const MinServerVersion = "21.8"

// ErrUnsupportedServer is returned for servers older than MinServerVersion.
var ErrUnsupportedServer = errors.New("unsupported server version")

var minConstraint = version.MustConstraints(version.NewConstraint(">= " + MinServerVersion))

// CheckServerVersion returns ErrUnsupportedServer when v is older than
// MinServerVersion.
func CheckServerVersion(v *version.Version) error {
	if v == nil {
		return fmt.Errorf("%w: unknown", ErrUnsupportedServer)
	}
	// Pre-release suffixes such as -testing would fail the constraint.
	core := v.Core()
	if !minConstraint.Check(core) {
		return fmt.Errorf("%w: %s (need %s or newer)", ErrUnsupportedServer, v.Original(), MinServerVersion)
	}
	return nil
}
