package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config captures the settings needed to build the service logger.
type Config struct {
	// Level is the textual log level (trace, debug, info, warn, error).
	Level string
	// Format selects the encoding: json or text.
	Format string
	// AddSource toggles slog's source attribution.
	AddSource bool
	// Directory receives one log file per UTC day. Empty disables file output.
	Directory string
}

// ParseLevel converts textual levels into slog levels, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return slog.LevelDebug - 2
	case "debug", "dbg":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a slog.Logger writing to w.
func New(w io.Writer, cfg Config) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level), AddSource: cfg.AddSource}
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup builds the process logger, tees it to the daily file under cfg.Directory and
// redirects the standard log package to the same writer. The returned closer releases
// the file handle.
func Setup(cfg Config, now time.Time) (*slog.Logger, io.Closer, error) {
	var (
		writer io.Writer = os.Stdout
		closer io.Closer = io.NopCloser(nil)
	)

	if dir := strings.TrimSpace(cfg.Directory); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		name := filepath.Join(dir, now.UTC().Format("2006-01-02")+".log")
		file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		writer = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	logger := New(writer, cfg)
	log.SetOutput(writer)
	log.SetFlags(0)
	log.SetPrefix("")
	return logger, closer, nil
}
