package store

import (
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/kittclouds/rolodex/internal/errs"
	"github.com/kittclouds/rolodex/pkg/ident"
)

// =============================================================================
// Physical tables
// =============================================================================

// CreatePhysicalTable creates the contact table if it does not exist.
// It does not touch the registry; see CreateTable.
func (s *SQLiteStore) CreatePhysicalTable(name string) error {
	if err := ident.CheckTable(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return createPhysicalTable(s.db, name)
}

func createPhysicalTable(q querier, name string) error {
	_, err := q.Exec(fmt.Sprintf(contactSchema, ident.Quote(name)))
	return errs.Storage(err, "create table "+name)
}

// CreateTable registers name and creates its physical table in one
// transaction.
func (s *SQLiteStore) CreateTable(name string) (*TableMetadata, error) {
	if err := ident.CheckTable(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var meta *TableMetadata
	err := s.withTx("create table", func(tx *sql.Tx) error {
		var err error
		if meta, err = registerTable(tx, name, s.now()); err != nil {
			return err
		}
		return createPhysicalTable(tx, name)
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// DropPhysicalTable drops the table and removes its registry row in one
// transaction. Dropping an absent table is not an error.
func (s *SQLiteStore) DropPhysicalTable(name string) error {
	if err := ident.CheckTable(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx("drop table", func(tx *sql.Tx) error {
		return dropTable(tx, name)
	})
}

func dropTable(q querier, name string) error {
	if _, err := q.Exec(`DROP TABLE IF EXISTS ` + ident.Quote(name)); err != nil {
		return errs.Storage(err, "drop table "+name)
	}
	_, err := q.Exec(`DELETE FROM tables WHERE name = ?`, name)
	return errs.Storage(err, "unregister table "+name)
}

// =============================================================================
// Record CRUD
// =============================================================================

func fieldsRecord(f ContactFields) goqu.Record {
	return goqu.Record{
		"name":            f.Name,
		"phone_contact":   f.PhoneContact,
		"email":           f.Email,
		"whatsapp_phone":  f.WhatsappPhone,
		"signal_phone":    f.SignalPhone,
		"telegram_handle": f.TelegramHandle,
		"relationship":    f.Relationship,
		"other_notes":     f.OtherNotes,
	}
}

// InsertRecord appends a contact and returns its id.
func (s *SQLiteStore) InsertRecord(table string, fields ContactFields) (int64, error) {
	if err := ident.CheckTable(table); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := toMillis(s.now())
	row := fieldsRecord(fields)
	row["created_at"] = now
	row["last_modified"] = now

	return insertRow(s.db, table, row)
}

func insertRow(q querier, table string, row goqu.Record) (int64, error) {
	query, args, err := dialect.Insert(goqu.T(table)).Rows(row).Prepared(true).ToSQL()
	if err != nil {
		return 0, errs.Storage(err, "build insert")
	}

	res, err := q.Exec(query, args...)
	if err != nil {
		return 0, errs.Storage(err, "insert into "+table)
	}
	id, err := res.LastInsertId()
	return id, errs.Storage(err, "insert into "+table)
}

// FetchRecords returns every record of table in id order.
func (s *SQLiteStore) FetchRecords(table string) ([]*ContactRecord, error) {
	if err := ident.CheckTable(table); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fetchRecords(s.db, table)
}

func fetchRecords(q querier, table string) ([]*ContactRecord, error) {
	query, args, err := dialect.From(goqu.T(table)).
		Select(SelectColumns()...).
		Order(goqu.C("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, errs.Storage(err, "build select")
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, errs.Storage(err, "select from "+table)
	}
	defer rows.Close()

	records := []*ContactRecord{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errs.Storage(err, "scan record")
		}
		records = append(records, r)
	}
	return records, errs.Storage(rows.Err(), "select from "+table)
}

// GetRecord returns one record, or nil if id is absent.
func (s *SQLiteStore) GetRecord(table string, id int64) (*ContactRecord, error) {
	if err := ident.CheckTable(table); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args, err := dialect.From(goqu.T(table)).
		Select(SelectColumns()...).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, errs.Storage(err, "build select")
	}

	r, err := scanRecord(s.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Storage(err, "select from "+table)
	}
	return r, nil
}

// UpdateRecord overwrites the editable fields of id and refreshes
// last_modified. A missing id is a no-op.
func (s *SQLiteStore) UpdateRecord(table string, id int64, fields ContactFields) error {
	if err := ident.CheckTable(table); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row := fieldsRecord(fields)
	row["last_modified"] = toMillis(s.now())

	query, args, err := dialect.Update(goqu.T(table)).
		Set(row).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return errs.Storage(err, "build update")
	}

	_, err = s.db.Exec(query, args...)
	return errs.Storage(err, "update "+table)
}

// DeleteRecord removes id from table. A missing id is a no-op.
func (s *SQLiteStore) DeleteRecord(table string, id int64) error {
	if err := ident.CheckTable(table); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query, args, err := dialect.Delete(goqu.T(table)).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).ToSQL()
	if err != nil {
		return errs.Storage(err, "build delete")
	}

	_, err = s.db.Exec(query, args...)
	return errs.Storage(err, "delete from "+table)
}

// CountRecords returns the number of rows in table.
func (s *SQLiteStore) CountRecords(table string) (int, error) {
	if err := ident.CheckTable(table); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args, err := dialect.From(goqu.T(table)).
		Select(goqu.COUNT(goqu.Star())).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, errs.Storage(err, "build count")
	}

	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, errs.Storage(err, "count "+table)
	}
	return n, nil
}
