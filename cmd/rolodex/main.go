package main

import (
	"os"

	"github.com/sirupsen/logrus"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/kittclouds/rolodex/internal/config"
	"github.com/kittclouds/rolodex/internal/logging"
	"github.com/kittclouds/rolodex/pkg/bridge"
)

// Version info
const Version = "0.3.0"

type CommandHandler func(command string) bool

var (
	app = kingpin.New("rolodex",
		"A personal contacts database organised in user-defined tables.")

	configPath = app.Flag("config", "The configuration file.").Short('c').
			Envar("ROLODEX_CONFIG").String()

	dbPath = app.Flag("db", "Database file, overrides the config.").
		Envar("ROLODEX_DB").String()

	verbose = app.Flag("verbose", "Log at debug level.").Short('v').Bool()

	showMetrics = app.Flag("metrics", "Print operation counters on exit.").Bool()

	commandHandlers []CommandHandler
)

func loadConfig() *config.Config {
	cfg, err := config.Load(*configPath)
	kingpin.FatalIfError(err, "Load config")

	if *dbPath != "" {
		cfg.Database = *dbPath
	}
	if *verbose {
		cfg.Logging.Level = logrus.DebugLevel.String()
	}
	kingpin.FatalIfError(cfg.Validate(), "Config")
	return cfg
}

// openCore connects to the configured database or exits.
func openCore() (*bridge.Core, *config.Config) {
	cfg := loadConfig()

	logger, err := logging.New(cfg.Logging)
	kingpin.FatalIfError(err, "Logging")

	core := bridge.Connect(cfg, logger)
	if core == nil {
		kingpin.Fatalf("Unable to open %s", cfg.Database)
	}
	return core, cfg
}

// fatalf prints and exits. Replaced in tests.
var fatalf = kingpin.Fatalf

// fail closes core, since deferred closes do not run on exit, then exits.
func fail(core *bridge.Core, format string, args ...interface{}) {
	core.Close()
	fatalf(format, args...)
}

// mustOK exits with the failure class when a bridge call reports false.
func mustOK(core *bridge.Core, ok bool, what string) {
	if !ok {
		fail(core, "%s: %v", what, core.LastError())
	}
}

// failIfError is kingpin.FatalIfError for code holding an open core.
func failIfError(core *bridge.Core, err error, what string) {
	if err != nil {
		fail(core, "%s: %v", what, err)
	}
}

func main() {
	app.HelpFlag.Short('h')
	app.Version(Version)
	app.UsageTemplate(kingpin.CompactUsageTemplate)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	for _, commandHandler := range commandHandlers {
		if commandHandler(command) {
			break
		}
	}

	if *showMetrics {
		kingpin.FatalIfError(renderMetrics(os.Stdout), "Metrics")
	}
}
