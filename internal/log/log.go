package log

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"github.com/tuanvumaihuynh/inventory/internal/config"
)

// NewSlogLogger creates a new slog logger writing to w with the given configuration.
// It also becomes the process default logger.
func NewSlogLogger(cfg config.Log, w io.Writer) *slog.Logger {
	var handler slog.Handler

	if cfg.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     cfg.Level,
			AddSource: cfg.AddSource,
		})
	} else {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      cfg.Level,
			AddSource:  cfg.AddSource,
			TimeFormat: time.RFC3339,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Value.Kind() == slog.KindAny {
					if _, ok := a.Value.Any().(error); ok {
						return tint.Attr(9, a)
					}
				}
				return a
			},
		})
	}

	handler = newEnrichedHandler(handler)
	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
