package main

import (
	"os"

	humanize "github.com/dustin/go-humanize"
)

var infoCmd = app.Command("info", "Show the database location and engine versions.")

func doInfo() {
	core, cfg := openCore()
	defer core.Close()

	size := "-"
	if st, err := os.Stat(cfg.Database); err == nil {
		size = humanize.Bytes(uint64(st.Size()))
	}

	tables := core.ListTables()
	records := 0
	for _, t := range tables {
		if n := core.CountRecords(t.Name); n > 0 {
			records += n
		}
	}

	sqliteVersion, vecVersion := "?", "?"
	if info := core.EngineInfo(); info != nil {
		sqliteVersion, vecVersion = info.SQLite, info.Vec
	}

	table := newTable(os.Stdout, []string{"Key", "Value"})
	table.AppendBulk([][]string{
		{"Version", Version},
		{"Database", cfg.Database},
		{"Size", size},
		{"Tables", humanize.Comma(int64(len(tables)))},
		{"Entries", humanize.Comma(int64(records))},
		{"SQLite", sqliteVersion},
		{"sqlite-vec", vecVersion},
	})
	table.Render()
}

func init() {
	commandHandlers = append(commandHandlers, func(command string) bool {
		if command != infoCmd.FullCommand() {
			return false
		}
		doInfo()
		return true
	})
}
