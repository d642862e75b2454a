package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/binfetch/pkg/cli/config"
	"github.com/m-mizutani/binfetch/pkg/domain/interfaces"
	"github.com/m-mizutani/binfetch/pkg/usecase"
	"github.com/m-mizutani/binfetch/pkg/utils/logging"
)

func cmdFetch(fetchCfg *config.Fetch, hubCfg *config.Hub) *cli.Command {
	return &cli.Command{
		Name:    "fetch",
		Aliases: []string{"f"},
		Usage:   "Download every listed file and decompress zstd streams",
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := logging.From(ctx)

			specs, err := fetchCfg.LoadRepositories()
			if err != nil {
				return err
			}

			batch, err := newBatch(fetchCfg, hubCfg)
			if err != nil {
				return err
			}

			logger.Info("Starting batch",
				slog.String("config", fetchCfg.ConfigPath),
				slog.String("target_dir", fetchCfg.TargetDir),
				slog.Int("repositories", len(specs)),
			)

			if err := batch.Run(ctx, specs); err != nil {
				return goerr.Wrap(err, "failed to run batch")
			}

			if ctx.Err() != nil {
				logger.Info("Batch stopped by signal")
				return nil
			}

			logger.Info("Batch finished")
			return nil
		},
	}
}

func newBatch(fetchCfg *config.Fetch, hubCfg *config.Hub) (interfaces.BatchUseCase, error) {
	hubClient, err := hubCfg.NewClient()
	if err != nil {
		return nil, err
	}

	hubOpts, err := hubCfg.FetcherOptions()
	if err != nil {
		return nil, err
	}

	fetcher := usecase.NewFetcher(hubClient, append(fetchCfg.FetcherOptions(), hubOpts...)...)
	return usecase.NewBatch(fetcher, usecase.NewExtractor(), fetchCfg.TargetDir), nil
}
