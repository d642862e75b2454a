package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

const redacted = "[REDACTED]"

// Logger holds logger configuration
type Logger struct {
	Level string
	JSON  bool

	// Output defaults to os.Stdout
	Output io.Writer
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("BINFETCH_LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:        "log-json",
			Usage:       "Output logs in JSON format",
			Value:       false,
			Destination: &c.JSON,
			Sources:     cli.EnvVars("BINFETCH_LOG_JSON"),
		},
	}
}

// Configure configures and returns a logger. Any attribute value containing one of
// secrets is replaced before it is written.
func (c *Logger) Configure(secrets ...string) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	w := c.Output
	if w == nil {
		w = os.Stdout
	}

	redact := redactor(secrets)
	replaceAttr := func(groups []string, a slog.Attr) slog.Attr {
		if a.Value.Kind() == slog.KindGroup {
			return a
		}
		if v := a.Value.String(); redact(v) != v {
			return slog.String(a.Key, redact(v))
		}
		return a
	}

	var handler slog.Handler
	if c.JSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: replaceAttr,
		})
	} else {
		opts := []clog.Option{
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithReplaceAttr(replaceAttr),
			clog.WithAttrHook(redactedGoerrHook(redact)),
		}
		// clog detects a terminal on stdout only
		if w != os.Stdout {
			opts = append(opts, clog.WithColor(false))
		}
		handler = clog.New(opts...)
	}

	return slog.New(handler), nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, goerr.New("invalid log level", goerr.V("level", s))
	}
}

// redactor returns a function replacing every non-empty secret in a string
func redactor(secrets []string) func(string) string {
	var active []string
	for _, s := range secrets {
		if s != "" {
			active = append(active, s)
		}
	}

	return func(v string) string {
		for _, s := range active {
			v = strings.ReplaceAll(v, s, redacted)
		}
		return v
	}
}

// redactedGoerrHook prints goerr values and stack traces like clog.GoerrHook, but the
// trailing error dump bypasses ReplaceAttr and is redacted here instead
func redactedGoerrHook(redact func(string) string) clog.AttrHook {
	return func(groups []string, attr slog.Attr) *clog.HandleAttr {
		handle := clog.GoerrHook(groups, attr)
		if handle == nil || handle.Defer == nil {
			return handle
		}

		dump := handle.Defer
		handle.Defer = func(w io.Writer) {
			var buf bytes.Buffer
			dump(&buf)
			_, _ = io.WriteString(w, redact(buf.String()))
		}
		return handle
	}
}
