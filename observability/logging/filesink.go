package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// FileSinkConfig controls optional log file rotation alongside stdout.
type FileSinkConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// SetupWithFileSink behaves like Setup but additionally tees JSON log output
// to a rotating file when cfg.Path is set, for deployments that want a local
// on-disk audit trail alongside stdout collection.
func SetupWithFileSink(service, env string, cfg FileSinkConfig) *slog.Logger {
	var writer io.Writer = os.Stdout
	if strings.TrimSpace(cfg.Path) != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
			Compress:   cfg.Compress,
		}
		writer = io.MultiWriter(os.Stdout, rotator)
	}
	return setup(service, env, writer)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
