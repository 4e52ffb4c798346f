package generator

import (
	"fmt"
	"regexp"

	"github.com/go-openapi/inflect"
)

var seederPattern = regexp.MustCompile(`^(\w+?)_(?:table_)?seeder$`)

// SeederSpec describes a SQL seeder stub.
type SeederSpec struct {
	// Name is e.g. users_seeder; an optional numeric prefix orders seeders.
	Name string
	// Table overrides the table inferred from Name.
	Table string
}

// FileName is the seeder's file name, e.g. users_seeder.sql.
func (s SeederSpec) FileName() string {
	return inflect.Underscore(s.Name) + ".sql"
}

func (s SeederSpec) table() string {
	if s.Table != "" {
		return s.Table
	}
	if match := seederPattern.FindStringSubmatch(inflect.Underscore(s.Name)); match != nil {
		return match[1]
	}
	return ""
}

// SQL returns the stub script.
func (s SeederSpec) SQL() string {
	header := fmt.Sprintf("-- %s\n", inflect.Underscore(s.Name))
	table := s.table()
	if table == "" {
		return header
	}
	return header + "INSERT INTO " + table + " (id) VALUES\n    (1),\n    (2);\n"
}
