package main

import (
	"encoding/json"
	"os"

	"github.com/kittclouds/rolodex/pkg/response"
)

var (
	combineCmd    = app.Command("combine", "Show the entries of several tables as one list sorted by name.")
	combineTables = combineCmd.Arg("tables", "Two or more tables.").Required().Strings()
	combineJSON   = combineCmd.Flag("json", "Print JSON instead of a table.").Bool()

	searchCmd    = app.Command("search", "Find entries whose field contains a term.")
	searchTerm   = searchCmd.Arg("term", "Substring to look for. % and _ are wildcards.").Required().String()
	searchTables = searchCmd.Arg("tables", "Tables to search, in output order.").Required().Strings()
	searchField  = searchCmd.Flag("field", "Field to match.").Default("name").
			Enum("name", "relationship")
	searchJSON = searchCmd.Flag("json", "Print JSON instead of a table.").Bool()

	mentionsCmd    = app.Command("mentions", "List contacts whose notes name other contacts.")
	mentionsTables = mentionsCmd.Arg("tables", "Tables to scan.").Required().Strings()
	mentionsJSON   = mentionsCmd.Flag("json", "Print JSON instead of a table.").Bool()
)

func doCombine() {
	core, _ := openCore()
	defer core.Close()

	rows := core.Combine(*combineTables)
	mustOK(core, core.LastError() == nil, "Combine")

	if *combineJSON {
		data, err := response.MarshalResult(rows)
		failIfError(core, err, "Marshal")
		os.Stdout.Write(append(data, '\n'))
		return
	}
	renderTagged(os.Stdout, rows)
}

func doSearch() {
	core, _ := openCore()
	defer core.Close()

	rows := core.Search(*searchTerm, *searchTables, *searchField)
	mustOK(core, core.LastError() == nil, "Search")

	if *searchJSON {
		data, err := response.MarshalResult(rows)
		failIfError(core, err, "Marshal")
		os.Stdout.Write(append(data, '\n'))
		return
	}
	renderTagged(os.Stdout, rows)
}

func doMentions() {
	core, _ := openCore()
	defer core.Close()

	links := core.Mentions(*mentionsTables)
	mustOK(core, core.LastError() == nil, "Mentions")

	if *mentionsJSON {
		data, err := json.Marshal(links)
		failIfError(core, err, "Marshal")
		os.Stdout.Write(append(data, '\n'))
		return
	}
	renderLinks(os.Stdout, links)
}

func init() {
	commandHandlers = append(commandHandlers, func(command string) bool {
		switch command {
		case combineCmd.FullCommand():
			doCombine()

		case searchCmd.FullCommand():
			doSearch()

		case mentionsCmd.FullCommand():
			doMentions()

		default:
			return false
		}
		return true
	})
}
