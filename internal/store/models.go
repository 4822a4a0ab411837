// Package store provides SQLite-backed persistence for Rolodex.
// A registry table tracks user-created contact tables, each of which shares
// one fixed column set.
package store

import "time"

// TableMetadata is one registry row.
type TableMetadata struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactFields are the user-editable columns, in their positional order.
type ContactFields struct {
	Name           string `json:"name"`
	PhoneContact   string `json:"phoneContact"`
	Email          string `json:"email"`
	WhatsappPhone  string `json:"whatsappPhone"`
	SignalPhone    string `json:"signalPhone"`
	TelegramHandle string `json:"telegramHandle"`
	Relationship   string `json:"relationship"`
	OtherNotes     string `json:"otherNotes"`
}

// FieldsFromSlice builds ContactFields from values in column order.
// Missing trailing values are left empty; extra values are ignored.
func FieldsFromSlice(values []string) ContactFields {
	var v [8]string
	copy(v[:], values)
	return ContactFields{
		Name:           v[0],
		PhoneContact:   v[1],
		Email:          v[2],
		WhatsappPhone:  v[3],
		SignalPhone:    v[4],
		TelegramHandle: v[5],
		Relationship:   v[6],
		OtherNotes:     v[7],
	}
}

// Slice returns the fields in column order.
func (f ContactFields) Slice() []string {
	return []string{
		f.Name, f.PhoneContact, f.Email, f.WhatsappPhone,
		f.SignalPhone, f.TelegramHandle, f.Relationship, f.OtherNotes,
	}
}

// ContactRecord is one row of a contact table.
type ContactRecord struct {
	ID int64 `json:"id"`
	ContactFields
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// TaggedRecord is a record returned by a cross-table query, labelled with
// the table it came from.
type TaggedRecord struct {
	ContactRecord
	SourceTable string `json:"sourceTable"`
}

// Storer defines the interface for contact persistence.
// SQLiteStore is the sole implementation.
type Storer interface {
	// Registry
	EnsureRegistry() error
	RegisterTable(name string) (*TableMetadata, error)
	ListTables() ([]*TableMetadata, error)
	GetCreationDate(name string) (time.Time, bool, error)
	UnregisterTable(name string) error

	// Physical tables
	CreatePhysicalTable(name string) error
	CreateTable(name string) (*TableMetadata, error)
	DropPhysicalTable(name string) error

	// Records
	InsertRecord(table string, fields ContactFields) (int64, error)
	FetchRecords(table string) ([]*ContactRecord, error)
	GetRecord(table string, id int64) (*ContactRecord, error)
	UpdateRecord(table string, id int64, fields ContactFields) error
	DeleteRecord(table string, id int64) error
	CountRecords(table string) (int, error)

	// Cross-table reads
	QueryTagged(query string, args ...interface{}) ([]*TaggedRecord, error)

	// Export/Import
	Export() ([]byte, error)
	Import(data []byte) error

	// Lifecycle
	EngineInfo() (*EngineInfo, error)
	Close() error
}

// EngineInfo reports the versions of the embedded engine.
type EngineInfo struct {
	SQLite string `json:"sqlite"`
	Vec    string `json:"vec"`
}
