package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/kittclouds/rolodex/pkg/ident"
)

// ExportData is the portable JSON form of a whole database.
type ExportData struct {
	ExportedAt time.Time    `json:"exportedAt"`
	Tables     []*TableDump `json:"tables"`
}

// TableDump is one registered table and its records.
type TableDump struct {
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"createdAt"`
	Records   []*ContactRecord `json:"records"`
}

// Export serializes every registered table and its records to JSON bytes.
// This is a portable export that doesn't depend on sqlite3 serialization APIs.
func (s *SQLiteStore) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables, err := listTables(s.db)
	if err != nil {
		return nil, err
	}

	data := ExportData{ExportedAt: s.now().UTC(), Tables: []*TableDump{}}
	for _, t := range tables {
		if err := ident.CheckTable(t.Name); err != nil {
			// Rows written by older tools may not validate; never
			// interpolate them.
			continue
		}
		records, err := fetchRecords(s.db, t.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "export %s", t.Name)
		}
		data.Tables = append(data.Tables, &TableDump{
			Name:      t.Name,
			CreatedAt: t.CreatedAt,
			Records:   records,
		})
	}

	return json.Marshal(data)
}

// Import restores tables from an Export payload in one transaction.
// Tables with the same name are replaced; other tables are left alone.
func (s *SQLiteStore) Import(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	var importData ExportData
	if err := json.Unmarshal(data, &importData); err != nil {
		return errors.Wrap(err, "import unmarshal")
	}
	for _, t := range importData.Tables {
		if err := ident.CheckTable(t.Name); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx("import", func(tx *sql.Tx) error {
		for _, t := range importData.Tables {
			if err := dropTable(tx, t.Name); err != nil {
				return err
			}
			createdAt := t.CreatedAt
			if createdAt.IsZero() {
				createdAt = s.now()
			}
			if _, err := registerTable(tx, t.Name, createdAt); err != nil {
				return err
			}
			if err := createPhysicalTable(tx, t.Name); err != nil {
				return err
			}

			for _, r := range t.Records {
				row := fieldsRecord(r.ContactFields)
				if r.ID > 0 {
					row["id"] = r.ID
				}
				row["created_at"] = toMillis(orNow(r.CreatedAt, s.now))
				row["last_modified"] = toMillis(orNow(r.LastModified, s.now))
				if _, err := insertRow(tx, t.Name, row); err != nil {
					return errors.Wrapf(err, "import record %d", r.ID)
				}
			}
		}
		return nil
	})
}

func orNow(t time.Time, now func() time.Time) time.Time {
	if t.IsZero() {
		return now()
	}
	return t
}
