// Package bridge is the synchronous API a UI collaborator calls.
//
// No method returns an error or panics on a storage failure. Failures become
// false, nil or empty results, the diagnostic goes to the logger, and
// LastError reports which class of failure occurred so the caller can tell
// "nothing changed" apart from a successful no-op.
package bridge

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kittclouds/rolodex/internal/config"
	"github.com/kittclouds/rolodex/internal/errs"
	"github.com/kittclouds/rolodex/internal/metrics"
	"github.com/kittclouds/rolodex/internal/store"
	"github.com/kittclouds/rolodex/pkg/crosstable"
	"github.com/kittclouds/rolodex/pkg/ident"
	"github.com/kittclouds/rolodex/pkg/mentions"
)

// UnknownDate is returned by GetCreationDate for unregistered names.
const UnknownDate = "Unknown"

// Core holds the process-wide connection and the query engine over it.
type Core struct {
	store  *store.SQLiteStore
	engine *crosstable.Engine
	logger logrus.FieldLogger

	mu      sync.Mutex
	lastErr error
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Connect opens the database named by cfg. Returns nil on failure.
// A nil logger discards diagnostics.
func Connect(cfg *config.Config, logger logrus.FieldLogger, opts ...store.Option) *Core {
	if logger == nil {
		logger = discardLogger()
	}
	if cfg == nil {
		logger.Error("connect: no configuration")
		metrics.Observe("connect", errs.ErrConnectionFailure)
		return nil
	}
	if err := cfg.EnsureDir(); err != nil {
		logger.WithError(err).WithField("database", cfg.Database).Error("connect: cannot create database directory")
		return nil
	}
	return ConnectDSN(cfg.Database, logger, opts...)
}

// ConnectDSN opens dsn directly. Returns nil on failure.
func ConnectDSN(dsn string, logger logrus.FieldLogger, opts ...store.Option) *Core {
	if logger == nil {
		logger = discardLogger()
	}
	s, err := store.NewSQLiteStoreWithDSN(dsn, opts...)
	metrics.Observe("connect", err)
	if err != nil {
		logger.WithError(err).WithField("database", dsn).Error("connect failed")
		return nil
	}
	logger.WithField("database", dsn).Debug("connected")
	return &Core{
		store:  s,
		engine: crosstable.New(s, logger),
		logger: logger,
	}
}

// LastError returns the taxonomy sentinel of the most recent failed call, or
// nil if the most recent call succeeded. A nil Core reports
// ErrConnectionFailure.
func (c *Core) LastError() error {
	if c == nil {
		return errs.ErrConnectionFailure
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// finish records the outcome of op and logs failures.
func (c *Core) finish(op string, err error, fields logrus.Fields) bool {
	metrics.Observe(op, err)

	c.mu.Lock()
	c.lastErr = errs.Classify(err)
	c.mu.Unlock()

	if err != nil {
		entry := c.logger.WithFields(fields).WithError(err)
		if errors.Is(err, errs.ErrStorageFailure) {
			entry.Error(op + " failed")
		} else {
			entry.Warn(op + " rejected")
		}
		return false
	}
	return true
}

// ready fails op when there is no open connection. A nil Core, as returned
// by a failed Connect, fails every call without logging.
func (c *Core) ready(op string) bool {
	if c == nil {
		metrics.Observe(op, errs.ErrConnectionFailure)
		return false
	}
	if c.store == nil {
		return c.finish(op, errors.Wrap(errs.ErrConnectionFailure, "store closed"), nil)
	}
	return true
}

// =============================================================================
// Registry
// =============================================================================

// EnsureRegistry creates the registry table if needed.
func (c *Core) EnsureRegistry() bool {
	if !c.ready("ensure_registry") {
		return false
	}
	return c.finish("ensure_registry", c.store.EnsureRegistry(), nil)
}

// RegisterTable adds name to the registry without creating the table.
func (c *Core) RegisterTable(name string) bool {
	if !c.ready("register_table") {
		return false
	}
	_, err := c.store.RegisterTable(name)
	return c.finish("register_table", err, logrus.Fields{"table": name})
}

// ListTables returns all registered tables; empty on failure.
func (c *Core) ListTables() []*store.TableMetadata {
	if !c.ready("list_tables") {
		return []*store.TableMetadata{}
	}
	tables, err := c.store.ListTables()
	if !c.finish("list_tables", err, nil) || tables == nil {
		return []*store.TableMetadata{}
	}
	return tables
}

// GetCreationDate returns the RFC 3339 creation time of name, or
// UnknownDate.
func (c *Core) GetCreationDate(name string) string {
	if !c.ready("get_creation_date") {
		return UnknownDate
	}
	created, ok, err := c.store.GetCreationDate(name)
	if !c.finish("get_creation_date", err, logrus.Fields{"table": name}) || !ok {
		return UnknownDate
	}
	return created.Format(time.RFC3339)
}

// CreationTime is GetCreationDate as a time; ok is false when unknown.
func (c *Core) CreationTime(name string) (time.Time, bool) {
	if !c.ready("get_creation_date") {
		return time.Time{}, false
	}
	created, ok, err := c.store.GetCreationDate(name)
	if !c.finish("get_creation_date", err, logrus.Fields{"table": name}) {
		return time.Time{}, false
	}
	return created, ok
}

// UnregisterTable removes name from the registry.
func (c *Core) UnregisterTable(name string) bool {
	if !c.ready("unregister_table") {
		return false
	}
	return c.finish("unregister_table", c.store.UnregisterTable(name), logrus.Fields{"table": name})
}

// =============================================================================
// Table Store
// =============================================================================

// CreatePhysicalTable creates the contact table for name.
func (c *Core) CreatePhysicalTable(name string) bool {
	if !c.ready("create_physical_table") {
		return false
	}
	return c.finish("create_physical_table", c.store.CreatePhysicalTable(name), logrus.Fields{"table": name})
}

// CreateTable registers and creates name as one unit.
func (c *Core) CreateTable(name string) bool {
	if !c.ready("create_table") {
		return false
	}
	_, err := c.store.CreateTable(name)
	return c.finish("create_table", err, logrus.Fields{"table": name})
}

// DropPhysicalTable drops name and its registry row together.
func (c *Core) DropPhysicalTable(name string) bool {
	if !c.ready("drop_table") {
		return false
	}
	return c.finish("drop_table", c.store.DropPhysicalTable(name), logrus.Fields{"table": name})
}

// InsertRecord adds a contact to table.
func (c *Core) InsertRecord(table string, fields store.ContactFields) bool {
	_, ok := c.InsertRecordID(table, fields)
	return ok
}

// InsertRecordID is InsertRecord returning the new row id.
func (c *Core) InsertRecordID(table string, fields store.ContactFields) (int64, bool) {
	if !c.ready("insert_record") {
		return 0, false
	}
	id, err := c.store.InsertRecord(table, fields)
	return id, c.finish("insert_record", err, logrus.Fields{"table": table})
}

// FetchRecords returns all records of table; empty on failure.
func (c *Core) FetchRecords(table string) []*store.ContactRecord {
	if !c.ready("fetch_records") {
		return []*store.ContactRecord{}
	}
	records, err := c.store.FetchRecords(table)
	if !c.finish("fetch_records", err, logrus.Fields{"table": table}) {
		return []*store.ContactRecord{}
	}
	return records
}

// GetRecord returns one record or nil.
func (c *Core) GetRecord(table string, id int64) *store.ContactRecord {
	if !c.ready("get_record") {
		return nil
	}
	rec, err := c.store.GetRecord(table, id)
	if !c.finish("get_record", err, logrus.Fields{"table": table, "id": id}) {
		return nil
	}
	return rec
}

// UpdateRecord overwrites the editable fields of id.
func (c *Core) UpdateRecord(table string, id int64, fields store.ContactFields) bool {
	if !c.ready("update_record") {
		return false
	}
	return c.finish("update_record", c.store.UpdateRecord(table, id, fields),
		logrus.Fields{"table": table, "id": id})
}

// DeleteRecord removes id from table.
func (c *Core) DeleteRecord(table string, id int64) bool {
	if !c.ready("delete_record") {
		return false
	}
	return c.finish("delete_record", c.store.DeleteRecord(table, id),
		logrus.Fields{"table": table, "id": id})
}

// CountRecords returns the row count of table, or -1 on failure.
func (c *Core) CountRecords(table string) int {
	if !c.ready("count_records") {
		return -1
	}
	n, err := c.store.CountRecords(table)
	if !c.finish("count_records", err, logrus.Fields{"table": table}) {
		return -1
	}
	return n
}

// =============================================================================
// Cross-table queries
// =============================================================================

// Combine unions the named tables sorted by contact name; empty on failure.
func (c *Core) Combine(tables []string) []*store.TaggedRecord {
	if !c.ready("combine") {
		return []*store.TaggedRecord{}
	}
	rows, err := c.engine.Combine(tables)
	if !c.finish("combine", err, logrus.Fields{"tables": tables}) || rows == nil {
		return []*store.TaggedRecord{}
	}
	return rows
}

// Search matches term against field ("name" or "relationship") in each
// table. Tables whose query fails are logged and left out.
func (c *Core) Search(term string, tables []string, field string) []*store.TaggedRecord {
	if !c.ready("search") {
		return []*store.TaggedRecord{}
	}
	fields := logrus.Fields{"tables": tables, "field": field}

	f, err := crosstable.ParseField(field)
	if err != nil {
		c.finish("search", err, fields)
		return []*store.TaggedRecord{}
	}
	report, err := c.engine.Search(term, tables, f)
	if !c.finish("search", err, fields) {
		return []*store.TaggedRecord{}
	}
	for _, failure := range report.Failures {
		metrics.Observe("search_table", failure.Err)
	}
	return report.Records
}

// Mentions links contacts whose notes name contacts in any of tables.
func (c *Core) Mentions(tables []string) []mentions.Link {
	if !c.ready("mentions") {
		return []mentions.Link{}
	}

	valid, rejected := ident.Filter(tables)
	if len(rejected) > 0 {
		c.logger.WithField("tables", rejected).Warn("mentions: skipping invalid table names")
	}

	var all []*store.TaggedRecord
	for _, table := range valid {
		records, err := c.store.FetchRecords(table)
		if err != nil {
			c.logger.WithError(err).WithField("table", table).Error("mentions: fetch failed")
			continue
		}
		for _, r := range records {
			all = append(all, &store.TaggedRecord{ContactRecord: *r, SourceTable: table})
		}
	}

	links, err := mentions.Find(all)
	if !c.finish("mentions", err, logrus.Fields{"tables": valid}) {
		return []mentions.Link{}
	}
	return links
}

// =============================================================================
// Export/Import and lifecycle
// =============================================================================

// Export returns the JSON snapshot of every table, or nil on failure.
func (c *Core) Export() []byte {
	if !c.ready("export") {
		return nil
	}
	data, err := c.store.Export()
	if !c.finish("export", err, nil) {
		return nil
	}
	return data
}

// Import restores a snapshot produced by Export.
func (c *Core) Import(data []byte) bool {
	if !c.ready("import") {
		return false
	}
	return c.finish("import", c.store.Import(data), logrus.Fields{"bytes": len(data)})
}

// EngineInfo reports engine versions, or nil on failure.
func (c *Core) EngineInfo() *store.EngineInfo {
	if !c.ready("engine_info") {
		return nil
	}
	info, err := c.store.EngineInfo()
	if !c.finish("engine_info", err, nil) {
		return nil
	}
	return info
}

// Close releases the connection. Later calls fail with ErrConnectionFailure.
func (c *Core) Close() {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Close(); err != nil {
		c.logger.WithError(err).Error("close failed")
	}
	c.store = nil
}
