package store

import (
	"database/sql"
	"sync"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/ncruces/go-sqlite3"
	"github.com/pkg/errors"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/kittclouds/rolodex/internal/errs"
	"github.com/kittclouds/rolodex/pkg/ident"
)

// RegistryTable is the system table listing user tables.
const RegistryTable = ident.RegistryTable

// SQLiteStore is the SQLite-backed data store.
// A single connection is shared; writers are serialized by mu.
type SQLiteStore struct {
	mu  sync.RWMutex
	db  *sql.DB
	now func() time.Time
}

// registrySchema creates the metadata registry. Names compare
// case-insensitively because SQLite table names do.
const registrySchema = `
CREATE TABLE IF NOT EXISTS tables (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE COLLATE NOCASE,
    created_at INTEGER NOT NULL
);
`

// contactSchema is the fixed column set of every user table.
// %s is replaced by a validated, quoted identifier.
const contactSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    phone_contact TEXT,
    email TEXT,
    whatsapp_phone TEXT,
    signal_phone TEXT,
    telegram_handle TEXT,
    relationship TEXT,
    other_notes TEXT,
    created_at INTEGER NOT NULL,
    last_modified INTEGER NOT NULL
)`

// ContactColumns lists the contact table columns in storage order.
var ContactColumns = []string{
	"id", "name", "phone_contact", "email", "whatsapp_phone", "signal_phone",
	"telegram_handle", "relationship", "other_notes", "created_at", "last_modified",
}

// SourceColumn is the provenance column added by cross-table queries.
const SourceColumn = "source_table"

var dialect = goqu.Dialect("sqlite3")

// Dialect returns the goqu dialect matching the engine.
func Dialect() goqu.DialectWrapper { return dialect }

// SelectColumns returns ContactColumns as goqu identifiers.
func SelectColumns() []interface{} {
	cols := make([]interface{}, len(ContactColumns))
	for i, c := range ContactColumns {
		cols[i] = goqu.C(c)
	}
	return cols
}

// Option configures a store.
type Option func(*SQLiteStore)

// WithClock overrides time.Now for created_at/last_modified stamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

// NewSQLiteStore creates a new in-memory SQLite store.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:", opts...)
}

// NewSQLiteStoreWithDSN creates a store with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
// The registry table is created before returning.
func NewSQLiteStoreWithDSN(dsn string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(errs.ErrConnectionFailure, err.Error())
	}
	// One connection for the process lifetime. Also keeps ":memory:" a
	// single database.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(errs.ErrConnectionFailure, err.Error())
	}

	s := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.EnsureRegistry(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureRegistry creates the registry table if needed.
func (s *SQLiteStore) EnsureRegistry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(registrySchema)
	return errs.Storage(err, "ensure registry")
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// EngineInfo reports the SQLite and sqlite-vec versions.
func (s *SQLiteStore) EngineInfo() (*EngineInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var info EngineInfo
	err := s.db.QueryRow(`SELECT sqlite_version(), vec_version()`).Scan(&info.SQLite, &info.Vec)
	if err != nil {
		return nil, errs.Storage(err, "engine info")
	}
	return &info, nil
}

// =============================================================================
// Helpers
// =============================================================================

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// withTx runs fn in a transaction, rolling back on any error.
func (s *SQLiteStore) withTx(op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errs.Storage(err, op)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return errs.Storage(tx.Commit(), op)
}

func isUniqueViolation(err error) bool {
	var serr *sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode() == sqlite3.CONSTRAINT_UNIQUE
	}
	return false
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord reads ContactColumns followed by any extra destinations.
func scanRecord(sc rowScanner, extra ...interface{}) (*ContactRecord, error) {
	var r ContactRecord
	var phone, email, whatsapp, signal, telegram, relationship, notes sql.NullString
	var createdAt, lastModified int64

	dest := []interface{}{
		&r.ID, &r.Name, &phone, &email, &whatsapp, &signal,
		&telegram, &relationship, &notes, &createdAt, &lastModified,
	}
	if err := sc.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	r.PhoneContact = phone.String
	r.Email = email.String
	r.WhatsappPhone = whatsapp.String
	r.SignalPhone = signal.String
	r.TelegramHandle = telegram.String
	r.Relationship = relationship.String
	r.OtherNotes = notes.String
	r.CreatedAt = fromMillis(createdAt)
	r.LastModified = fromMillis(lastModified)
	return &r, nil
}

// QueryTagged runs a read query selecting ContactColumns plus SourceColumn.
// Used by the cross-table query engine.
func (s *SQLiteStore) QueryTagged(query string, args ...interface{}) ([]*TaggedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errs.Storage(err, "query")
	}
	defer rows.Close()

	var out []*TaggedRecord
	for rows.Next() {
		var source string
		r, err := scanRecord(rows, &source)
		if err != nil {
			return nil, errs.Storage(err, "scan tagged record")
		}
		out = append(out, &TaggedRecord{ContactRecord: *r, SourceTable: source})
	}
	return out, errs.Storage(rows.Err(), "query")
}

// Compile-time interface check
var _ Storer = (*SQLiteStore)(nil)
