package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Olprog59/go-crudstarter/internal/config"
)

// ParseLevel maps a config level to slog, defaulting to info / Convertit un niveau de config, info par défaut
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs the default slog logger and returns a flush function / Installe le logger slog par défaut et retourne une fonction de vidage
//
// The console handler writes text or JSON to stdout. When Loki is enabled the
// records are also pushed to Loki, and the returned function must be called on
// shutdown to flush the last batch.
func Setup(conf config.LoggingConfig, production bool) func() error {
	return setup(os.Stdout, conf, production)
}

func setup(w io.Writer, conf config.LoggingConfig, production bool) func() error {
	level := ParseLevel(conf.Level)

	var consoleHandler slog.Handler
	if strings.ToLower(conf.Format) == "json" {
		consoleHandler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: production,
		})
	} else {
		consoleHandler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}

	closer := func() error { return nil }
	handler := consoleHandler

	if conf.LokiEnabled {
		lokiHandler := NewLokiHandler(conf.LokiURL, conf.LokiLabels, conf.LokiBatchSize, level)
		handler = &multiHandler{
			consoleHandler: consoleHandler,
			lokiHandler:    lokiHandler,
		}
		closer = lokiHandler.Close
	}

	slog.SetDefault(slog.New(NewContextHandler(handler)))

	slog.Info("logging configured",
		"level", level.String(),
		"format", conf.Format,
		"loki_enabled", conf.LokiEnabled,
	)
	return closer
}
