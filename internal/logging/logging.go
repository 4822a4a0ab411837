// Package logging builds the logrus logger that receives the diagnostics
// the bridge never returns to its caller.
package logging

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/kittclouds/rolodex/internal/config"
)

// New returns a logger writing text entries to stderr and, when cfg.File is
// set, to that file as well.
func New(cfg config.Logging) (*logrus.Logger, error) {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New with an explicit primary writer.
func NewWithOutput(cfg config.Logging, out io.Writer) (*logrus.Logger, error) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if cfg.File != "" {
		paths := lfshook.PathMap{}
		for _, l := range logrus.AllLevels {
			paths[l] = cfg.File
		}
		logger.AddHook(lfshook.NewHook(paths, &logrus.JSONFormatter{}))
	}
	return logger, nil
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
