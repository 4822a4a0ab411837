// Package crosstable runs combine and search queries across a caller-chosen
// set of contact tables, tagging every row with the table it came from.
//
// The engine holds no state of its own. Every call re-validates the table
// names it is given before any of them reach query text.
package crosstable

import (
	"sort"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kittclouds/rolodex/internal/errs"
	"github.com/kittclouds/rolodex/internal/metrics"
	"github.com/kittclouds/rolodex/internal/store"
	"github.com/kittclouds/rolodex/pkg/ident"
)

// Source executes a read query whose rows are store.ContactColumns followed
// by the provenance column. *store.SQLiteStore satisfies it.
type Source interface {
	QueryTagged(query string, args ...interface{}) ([]*store.TaggedRecord, error)
}

// Field selects the column a search matches against.
type Field string

const (
	FieldName         Field = "name"
	FieldRelationship Field = "relationship"
)

// ParseField maps user input onto a Field.
func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldName, "":
		return FieldName, nil
	case FieldRelationship:
		return FieldRelationship, nil
	}
	return "", errors.Wrapf(errs.ErrInvalidField, "%q", s)
}

// Engine builds and runs cross-table queries against a Source.
type Engine struct {
	src    Source
	logger logrus.FieldLogger
}

// New creates an engine. A nil logger discards diagnostics.
func New(src Source, logger logrus.FieldLogger) *Engine {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Engine{src: src, logger: logger}
}

// taggedSelect selects every contact column of table plus its name as the
// provenance tag.
func taggedSelect(table string) *goqu.SelectDataset {
	cols := append(store.SelectColumns(), goqu.V(table).As(store.SourceColumn))
	return store.Dialect().From(goqu.T(table)).Select(cols...)
}

// CombineSQL builds the UNION ALL query over tables. Callers must pass
// validated names.
func CombineSQL(tables []string) (string, []interface{}, error) {
	if len(tables) == 0 {
		return "", nil, errs.ErrInsufficientSelection
	}
	ds := taggedSelect(tables[0])
	for _, t := range tables[1:] {
		ds = ds.UnionAll(taggedSelect(t))
	}
	return ds.Prepared(true).ToSQL()
}

// SearchSQL builds the per-table LIKE query. The term is wrapped in % but
// not escaped, so % and _ in it act as wildcards.
func SearchSQL(table, term string, field Field) (string, []interface{}, error) {
	var cond exp.Expression
	switch field {
	case FieldName, FieldRelationship:
		cond = goqu.C(string(field)).Like("%" + term + "%")
	default:
		return "", nil, errors.Wrapf(errs.ErrInvalidField, "%q", field)
	}
	return taggedSelect(table).
		Where(cond).
		Order(goqu.C("id").Asc()).
		Prepared(true).ToSQL()
}

// Combine returns every record of the named tables, tagged with its source
// and stable-sorted by contact name. Duplicates across tables are kept.
//
// Fewer than two names fail with ErrInsufficientSelection; fewer than two
// valid names fail with ErrInvalidIdentifier.
func (e *Engine) Combine(tables []string) ([]*store.TaggedRecord, error) {
	if len(tables) < 2 {
		return nil, errors.Wrapf(errs.ErrInsufficientSelection, "%d table(s) selected", len(tables))
	}

	valid, rejected := ident.Filter(tables)
	if len(rejected) > 0 {
		e.logger.WithField("tables", rejected).Warn("combine: skipping invalid table names")
	}
	if len(valid) < 2 {
		return nil, errors.Wrapf(errs.ErrInvalidIdentifier, "only %d valid table(s) selected", len(valid))
	}

	query, args, err := CombineSQL(valid)
	if err != nil {
		return nil, errs.Storage(err, "build combine")
	}

	rows, err := e.src.QueryTagged(query, args...)
	if err != nil {
		return nil, err
	}

	// Byte-wise comparison is code-point order for UTF-8, case-sensitive.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Name < rows[j].Name
	})
	metrics.Rows("combine", len(rows))
	return rows, nil
}

// TableFailure records one table whose search query failed.
type TableFailure struct {
	Table string
	Err   error
}

// SearchReport is the result of a multi-table search.
type SearchReport struct {
	Records  []*store.TaggedRecord
	Skipped  []string       // invalid names, never queried
	Failures []TableFailure // valid names whose query failed
}

// Search runs a substring match on field in each table in order and
// concatenates the hits. A failing table is skipped; the rest still run.
// An empty table list yields an empty report.
func (e *Engine) Search(term string, tables []string, field Field) (*SearchReport, error) {
	if field != FieldName && field != FieldRelationship {
		return nil, errors.Wrapf(errs.ErrInvalidField, "%q", field)
	}

	report := &SearchReport{Records: []*store.TaggedRecord{}}
	valid, rejected := ident.Filter(tables)
	report.Skipped = rejected
	if len(rejected) > 0 {
		e.logger.WithField("tables", rejected).Warn("search: skipping invalid table names")
	}

	for _, table := range valid {
		query, args, err := SearchSQL(table, term, field)
		if err == nil {
			var rows []*store.TaggedRecord
			rows, err = e.src.QueryTagged(query, args...)
			if err == nil {
				report.Records = append(report.Records, rows...)
				continue
			}
		}
		e.logger.WithFields(logrus.Fields{
			"table": table,
			"error": err,
		}).Error("search: table query failed")
		report.Failures = append(report.Failures, TableFailure{Table: table, Err: err})
	}

	metrics.Rows("search", len(report.Records))
	return report, nil
}
