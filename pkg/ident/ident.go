// Package ident decides whether a user-supplied string may be used as a
// table identifier.
//
// Table and column names cannot be bound as query parameters, so every
// caller that interpolates a table name into SQL must pass it through
// CheckTable first.
package ident

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/kittclouds/rolodex/internal/errs"
)

// RegistryTable is the system table holding the registry itself.
const RegistryTable = "tables"

// reserved holds SQL keywords that may not be used as table names,
// compared against the upper-cased candidate.
var reserved = map[string]struct{}{}

func init() {
	for _, kw := range strings.Fields(`
		SELECT FROM WHERE INSERT DELETE UPDATE CREATE DROP
		ALTER TABLE INDEX VIEW TRIGGER AS AND OR NOT
		NULL JOIN ON IN IS LIKE BETWEEN EXISTS UNION
		ALL ANY DISTINCT GROUP BY HAVING ORDER LIMIT
		OFFSET ASC DESC INTO VALUES SET INNER LEFT RIGHT
		FULL OUTER CROSS NATURAL USING CASE WHEN THEN ELSE
		END CAST CONVERT EXCEPT INTERSECT`) {
		reserved[kw] = struct{}{}
	}
}

// isIdentifier accepts a letter or underscore followed by letters, digits
// and underscores. Letters and digits may be any Unicode letter or digit.
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// Valid reports whether name is a syntactically valid identifier that is not
// a reserved keyword.
func Valid(name string) bool {
	if !isIdentifier(name) {
		return false
	}
	_, isKeyword := reserved[strings.ToUpper(name)]
	return !isKeyword
}

// IsSystem reports whether name belongs to the registry or the engine.
func IsSystem(name string) bool {
	lower := strings.ToLower(name)
	return lower == RegistryTable || strings.HasPrefix(lower, "sqlite_")
}

// IsReserved reports whether name collides with the keyword deny-list.
func IsReserved(name string) bool {
	_, ok := reserved[strings.ToUpper(name)]
	return ok
}

// Check returns ErrInvalidIdentifier annotated with name when Valid fails.
func Check(name string) error {
	if !Valid(name) {
		return errors.Wrapf(errs.ErrInvalidIdentifier, "%q", name)
	}
	return nil
}

// CheckTable is Check plus the refusal of system table names. Every
// operation that puts a user table name into SQL goes through it.
func CheckTable(name string) error {
	if err := Check(name); err != nil {
		return err
	}
	if IsSystem(name) {
		return errors.Wrapf(errs.ErrInvalidIdentifier, "%q is a system table", name)
	}
	return nil
}

// Filter returns the names CheckTable accepts, in input order, along with
// the rejected ones.
func Filter(names []string) (valid, rejected []string) {
	for _, name := range names {
		if CheckTable(name) == nil {
			valid = append(valid, name)
		} else {
			rejected = append(rejected, name)
		}
	}
	return valid, rejected
}

// Quote double-quotes a name for DDL. The caller must have checked it.
func Quote(name string) string {
	return `"` + name + `"`
}
