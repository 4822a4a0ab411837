package main

import (
	"fmt"
	"os"

	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/kittclouds/rolodex/internal/store"
)

// fieldFlags binds one flag per contact field, in store column order.
type fieldFlags struct {
	values []*string
	set    map[int]bool
}

var fieldFlagNames = []struct{ name, help string }{
	{"name", "Contact name."},
	{"phone", "Phone number."},
	{"email", "Email address."},
	{"whatsapp", "WhatsApp number."},
	{"signal", "Signal number."},
	{"telegram", "Telegram handle."},
	{"relationship", "How you know them."},
	{"notes", "Free-form notes."},
}

func addFieldFlags(cmd *kingpin.CmdClause) *fieldFlags {
	f := &fieldFlags{set: make(map[int]bool)}
	for i, def := range fieldFlagNames {
		i := i
		f.values = append(f.values, cmd.Flag(def.name, def.help).
			Action(func(*kingpin.ParseContext) error {
				f.set[i] = true
				return nil
			}).String())
	}
	return f
}

// apply overwrites the fields given on the command line and keeps the rest.
func (f *fieldFlags) apply(base store.ContactFields) store.ContactFields {
	values := base.Slice()
	for i, v := range f.values {
		if f.set[i] {
			values[i] = *v
		}
	}
	return store.FieldsFromSlice(values)
}

var (
	entryCmd = app.Command("entry", "Manage the entries of a table.")

	entryAdd       = entryCmd.Command("add", "Add a contact to a table.")
	entryAddTable  = entryAdd.Arg("table", "Target table.").Required().String()
	entryAddFields = addFieldFlags(entryAdd)

	entryList      = entryCmd.Command("list", "List the contacts of a table.")
	entryListTable = entryList.Arg("table", "Table to list.").Required().String()

	entryEdit       = entryCmd.Command("edit", "Change fields of a contact. Omitted fields are kept.")
	entryEditTable  = entryEdit.Arg("table", "Table holding the entry.").Required().String()
	entryEditID     = entryEdit.Arg("id", "Entry id as shown by entry list.").Required().Int64()
	entryEditFields = addFieldFlags(entryEdit)

	entryDelete      = entryCmd.Command("delete", "Delete a contact.")
	entryDeleteTable = entryDelete.Arg("table", "Table holding the entry.").Required().String()
	entryDeleteID    = entryDelete.Arg("id", "Entry id as shown by entry list.").Required().Int64()
)

func doEntryAdd() {
	core, _ := openCore()
	defer core.Close()

	id, ok := core.InsertRecordID(*entryAddTable, entryAddFields.apply(store.ContactFields{}))
	mustOK(core, ok, "Add entry")
	fmt.Printf("Added entry %d to %s\n", id, *entryAddTable)
}

func doEntryList() {
	core, _ := openCore()
	defer core.Close()

	records := core.FetchRecords(*entryListTable)
	mustOK(core, core.LastError() == nil, "List entries")
	renderRecords(os.Stdout, records)
}

func doEntryEdit() {
	core, _ := openCore()
	defer core.Close()

	rec := core.GetRecord(*entryEditTable, *entryEditID)
	mustOK(core, core.LastError() == nil, "Load entry")
	if rec == nil {
		fail(core, "No entry %d in %s", *entryEditID, *entryEditTable)
		return
	}

	mustOK(core, core.UpdateRecord(*entryEditTable, *entryEditID,
		entryEditFields.apply(rec.ContactFields)), "Edit entry")
	fmt.Printf("Updated entry %d\n", *entryEditID)
}

func doEntryDelete() {
	core, _ := openCore()
	defer core.Close()

	mustOK(core, core.DeleteRecord(*entryDeleteTable, *entryDeleteID), "Delete entry")
	fmt.Printf("Deleted entry %d\n", *entryDeleteID)
}

func init() {
	commandHandlers = append(commandHandlers, func(command string) bool {
		switch command {
		case entryAdd.FullCommand():
			doEntryAdd()

		case entryList.FullCommand():
			doEntryList()

		case entryEdit.FullCommand():
			doEntryEdit()

		case entryDelete.FullCommand():
			doEntryDelete()

		default:
			return false
		}
		return true
	})
}
