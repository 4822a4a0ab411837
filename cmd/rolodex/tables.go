package main

import (
	"fmt"
	"os"
	"time"

	"github.com/kittclouds/rolodex/pkg/bridge"
)

var (
	tableCmd = app.Command("table", "Manage contact tables.")

	tableCreate     = tableCmd.Command("create", "Create a new table.")
	tableCreateName = tableCreate.Arg("name", "Table name (letters, digits, underscore).").
			Required().String()

	tableList = tableCmd.Command("list", "List tables with their creation date.")

	tableDrop     = tableCmd.Command("drop", "Delete a table and all its entries.")
	tableDropName = tableDrop.Arg("name", "Table to delete.").Required().String()
	tableDropYes  = tableDrop.Flag("yes", "Do not ask for confirmation.").Short('y').Bool()
)

func doTableCreate() {
	core, _ := openCore()
	defer core.Close()

	mustOK(core, core.CreateTable(*tableCreateName), "Create table")
	fmt.Printf("Created %s\n", *tableCreateName)
}

func doTableList() {
	core, _ := openCore()
	defer core.Close()

	rows, ok := listTableRows(core)
	mustOK(core, ok, "List tables")
	renderTableList(os.Stdout, rows, time.Now())
}

// listTableRows reports false when the registry could not be read. A table
// whose count fails is still listed, with records set to -1.
func listTableRows(core *bridge.Core) ([]tableRow, bool) {
	tables := core.ListTables()
	if core.LastError() != nil {
		return nil, false
	}
	rows := []tableRow{}
	for _, meta := range tables {
		rows = append(rows, tableRow{meta: meta, records: core.CountRecords(meta.Name)})
	}
	return rows, true
}

func doTableDrop() {
	core, _ := openCore()
	defer core.Close()

	if !*tableDropYes {
		n := core.CountRecords(*tableDropName)
		if !confirm(fmt.Sprintf("Delete %s and its %d entries?", *tableDropName, n)) {
			return
		}
	}
	mustOK(core, core.DropPhysicalTable(*tableDropName), "Drop table")
	fmt.Printf("Dropped %s\n", *tableDropName)
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	var answer string
	if _, err := fmt.Scanln(&answer); err != nil {
		return false
	}
	return answer == "y" || answer == "Y" || answer == "yes"
}

func init() {
	commandHandlers = append(commandHandlers, func(command string) bool {
		switch command {
		case tableCreate.FullCommand():
			doTableCreate()

		case tableList.FullCommand():
			doTableList()

		case tableDrop.FullCommand():
			doTableDrop()

		default:
			return false
		}
		return true
	})
}
