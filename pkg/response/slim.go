// Package response builds the display rows handed to a UI collaborator.
// Result grids never show the row id or created_at, so neither is carried.
package response

import (
	"encoding/json"
	"time"

	"github.com/kittclouds/rolodex/internal/store"
)

// SlimRow is a combine/search/listing row as displayed.
type SlimRow struct {
	Name           string `json:"name"`
	PhoneContact   string `json:"phoneContact,omitempty"`
	Email          string `json:"email,omitempty"`
	WhatsappPhone  string `json:"whatsappPhone,omitempty"`
	SignalPhone    string `json:"signalPhone,omitempty"`
	TelegramHandle string `json:"telegramHandle,omitempty"`
	Relationship   string `json:"relationship,omitempty"`
	OtherNotes     string `json:"otherNotes,omitempty"`
	LastModified   string `json:"lastModified"`
	Source         string `json:"source,omitempty"`
}

// Header returns column titles matching Cells.
func Header(withSource bool) []string {
	h := []string{"Name", "Phone", "Email", "WhatsApp", "Signal", "Telegram", "Relationship", "Notes", "Last Modified"}
	if withSource {
		h = append(h, "Source")
	}
	return h
}

// Cells returns the row as strings in Header order.
func (r SlimRow) Cells(withSource bool) []string {
	c := []string{
		r.Name, r.PhoneContact, r.Email, r.WhatsappPhone, r.SignalPhone,
		r.TelegramHandle, r.Relationship, r.OtherNotes, r.LastModified,
	}
	if withSource {
		c = append(c, r.Source)
	}
	return c
}

func fromRecord(rec *store.ContactRecord, source string) SlimRow {
	return SlimRow{
		Name:           rec.Name,
		PhoneContact:   rec.PhoneContact,
		Email:          rec.Email,
		WhatsappPhone:  rec.WhatsappPhone,
		SignalPhone:    rec.SignalPhone,
		TelegramHandle: rec.TelegramHandle,
		Relationship:   rec.Relationship,
		OtherNotes:     rec.OtherNotes,
		LastModified:   rec.LastModified.Format(time.DateTime),
		Source:         source,
	}
}

// FromTagged converts cross-table results, preserving order.
func FromTagged(rows []*store.TaggedRecord) []SlimRow {
	out := make([]SlimRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRecord(&r.ContactRecord, r.SourceTable))
	}
	return out
}

// FromRecords converts a single table's records.
func FromRecords(records []*store.ContactRecord) []SlimRow {
	out := make([]SlimRow, 0, len(records))
	for _, r := range records {
		out = append(out, fromRecord(r, ""))
	}
	return out
}

// ResultResponse wraps rows with the count shown under result grids.
type ResultResponse struct {
	Count int       `json:"count"`
	Rows  []SlimRow `json:"rows"`
}

// MarshalResult creates the JSON payload for a result grid.
func MarshalResult(rows []*store.TaggedRecord) ([]byte, error) {
	slim := FromTagged(rows)
	return json.Marshal(ResultResponse{Count: len(slim), Rows: slim})
}
