package store

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/kittclouds/rolodex/internal/errs"
	"github.com/kittclouds/rolodex/pkg/ident"
)

// =============================================================================
// Metadata Registry
// =============================================================================

// RegisterTable records a new user table in the registry.
// Fails with ErrInvalidIdentifier or ErrDuplicateName.
func (s *SQLiteStore) RegisterTable(name string) (*TableMetadata, error) {
	if err := ident.CheckTable(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return registerTable(s.db, name, s.now())
}

func registerTable(q querier, name string, createdAt time.Time) (*TableMetadata, error) {
	var exists int
	err := q.QueryRow(`SELECT 1 FROM tables WHERE name = ? LIMIT 1`, name).Scan(&exists)
	if err == nil {
		return nil, errors.Wrapf(errs.ErrDuplicateName, "%q", name)
	}
	if err != sql.ErrNoRows {
		return nil, errs.Storage(err, "register table")
	}

	res, err := q.Exec(`INSERT INTO tables (name, created_at) VALUES (?, ?)`, name, toMillis(createdAt))
	if isUniqueViolation(err) {
		return nil, errors.Wrapf(errs.ErrDuplicateName, "%q", name)
	}
	if err != nil {
		return nil, errs.Storage(err, "register table")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, errs.Storage(err, "register table")
	}
	return &TableMetadata{ID: id, Name: name, CreatedAt: fromMillis(toMillis(createdAt))}, nil
}

// ListTables returns every registry row ordered by id.
func (s *SQLiteStore) ListTables() ([]*TableMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return listTables(s.db)
}

func listTables(q querier) ([]*TableMetadata, error) {
	rows, err := q.Query(`SELECT id, name, created_at FROM tables ORDER BY id`)
	if err != nil {
		return nil, errs.Storage(err, "list tables")
	}
	defer rows.Close()

	var tables []*TableMetadata
	for rows.Next() {
		var t TableMetadata
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.Name, &createdAt); err != nil {
			return nil, errs.Storage(err, "scan table")
		}
		t.CreatedAt = fromMillis(createdAt)
		tables = append(tables, &t)
	}
	return tables, errs.Storage(rows.Err(), "list tables")
}

// GetCreationDate returns when name was registered. ok is false when the
// name is unknown.
func (s *SQLiteStore) GetCreationDate(name string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var createdAt int64
	err := s.db.QueryRow(`SELECT created_at FROM tables WHERE name = ?`, name).Scan(&createdAt)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errs.Storage(err, "get creation date")
	}
	return fromMillis(createdAt), true, nil
}

// UnregisterTable removes the registry row for name. Absent names are not
// an error.
func (s *SQLiteStore) UnregisterTable(name string) error {
	if err := ident.CheckTable(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM tables WHERE name = ?`, name)
	return errs.Storage(err, "unregister table")
}
