package main

import (
	"fmt"
	"io"
	"os"

	humanize "github.com/dustin/go-humanize"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

var (
	exportCmd = app.Command("export", "Write every table and entry as JSON.")
	exportOut = exportCmd.Flag("output", "File to write, stdout if omitted.").Short('o').String()

	importCmd  = app.Command("import", "Restore tables from an export. Tables with the same name are replaced.")
	importFile = importCmd.Arg("file", "Export file, - for stdin.").Required().String()
)

func doExport() {
	core, _ := openCore()
	defer core.Close()

	data := core.Export()
	mustOK(core, data != nil, "Export")

	if *exportOut == "" {
		os.Stdout.Write(append(data, '\n'))
		return
	}
	failIfError(core, os.WriteFile(*exportOut, data, 0o600), "Write "+*exportOut)
	fmt.Fprintf(os.Stderr, "Wrote %s to %s\n", humanize.Bytes(uint64(len(data))), *exportOut)
}

func doImport() {
	var (
		data []byte
		err  error
	)
	if *importFile == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*importFile)
	}
	kingpin.FatalIfError(err, "Read %s", *importFile)

	core, _ := openCore()
	defer core.Close()

	mustOK(core, core.Import(data), "Import")
	fmt.Printf("Imported %s\n", humanize.Bytes(uint64(len(data))))
}

func init() {
	commandHandlers = append(commandHandlers, func(command string) bool {
		switch command {
		case exportCmd.FullCommand():
			doExport()

		case importCmd.FullCommand():
			doImport()

		default:
			return false
		}
		return true
	})
}
