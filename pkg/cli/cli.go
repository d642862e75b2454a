package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/binfetch/pkg/cli/config"
	"github.com/m-mizutani/binfetch/pkg/domain/types"
	"github.com/m-mizutani/binfetch/pkg/utils/logging"
)

type runConfig struct {
	writer    io.Writer
	logWriter io.Writer
}

// Option is a functional option for Run
type Option func(*runConfig)

// WithWriter sets where command output such as the plan is printed
func WithWriter(w io.Writer) Option {
	return func(c *runConfig) {
		c.writer = w
	}
}

// WithLogWriter sets where logs are written
func WithLogWriter(w io.Writer) Option {
	return func(c *runConfig) {
		c.logWriter = w
	}
}

// Run runs the CLI application
func Run(ctx context.Context, args []string, opts ...Option) error {
	rc := runConfig{
		writer:    os.Stdout,
		logWriter: os.Stdout,
	}
	for _, opt := range opts {
		opt(&rc)
	}

	var (
		loggerCfg = config.Logger{Output: rc.logWriter}
		sentryCfg config.Sentry
		fetchCfg  config.Fetch
		hubCfg    config.Hub

		logger        *slog.Logger
		sentryEnabled bool
	)

	var flags []cli.Flag
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, fetchCfg.Flags()...)
	flags = append(flags, hubCfg.Flags()...)

	app := &cli.Command{
		Name:           "binfetch",
		Usage:          "Download and decompress dataset files from a dataset hub",
		Version:        types.Version,
		Writer:         rc.writer,
		Flags:          flags,
		DefaultCommand: "fetch",
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure(hubCfg.Token)
			if err != nil {
				return nil, err
			}
			logger = logger.With("run_id", uuid.NewString())

			sentryEnabled, err = sentryCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = logging.With(ctx, logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdFetch(&fetchCfg, &hubCfg),
			cmdPlan(&fetchCfg, &hubCfg),
			cmdExtract(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))

		if sentryEnabled {
			sentry.CaptureException(err)
			sentry.Flush(2 * time.Second)
		}
		return err
	}

	return nil
}
