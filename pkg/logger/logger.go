// Package logger builds the slog.Logger the engine's services share.
// JSON output for production aggregation, text for development readability.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Format represents logger output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Option configures logger creation.
type Option func(*config)

// WithLevel sets the minimum log level.
func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithFormat sets the output format. Unknown formats keep the default.
func WithFormat(f Format) Option {
	return func(c *config) {
		if f == FormatJSON || f == FormatText {
			c.format = f
		}
	}
}

// WithOutput sets a custom output destination, ignoring nil writers.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds static attributes to every log record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) {
		c.attrs = append(c.attrs, attrs...)
	}
}

// WithDevelopment switches to text output at debug level.
func WithDevelopment(service string) Option {
	return func(c *config) {
		c.level = slog.LevelDebug
		c.format = FormatText
		if service != "" {
			c.attrs = append(c.attrs, slog.String("service", service))
		}
	}
}

// WithProduction uses JSON output at info level.
func WithProduction(service string) Option {
	return func(c *config) {
		c.level = slog.LevelInfo
		c.format = FormatJSON
		if service != "" {
			c.attrs = append(c.attrs, slog.String("service", service))
		}
	}
}

type config struct {
	level  slog.Level
	format Format
	output io.Writer
	attrs  []slog.Attr
}

// New creates a configured slog.Logger. Defaults are production-safe:
// JSON format at info level on stdout.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}

	var handler slog.Handler
	if cfg.format == FormatText {
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	}

	if len(cfg.attrs) > 0 {
		handler = handler.WithAttrs(cfg.attrs)
	}

	return slog.New(handler)
}
