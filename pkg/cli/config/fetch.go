package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/binfetch/pkg/domain/model"
	"github.com/m-mizutani/binfetch/pkg/infra/repolist"
	"github.com/m-mizutani/binfetch/pkg/usecase"
)

// Fetch holds batch configuration
type Fetch struct {
	ConfigPath string
	TargetDir  string
	RetryLimit int
	RetryDelay time.Duration
}

// Flags returns CLI flags for batch configuration
func (c *Fetch) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Repository list file (.json, .yaml or .toml)",
			Value:       repolist.DefaultFile,
			Destination: &c.ConfigPath,
			Sources:     cli.EnvVars("BINFETCH_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "target-dir",
			Aliases:     []string{"d"},
			Usage:       "Directory downloads and extracted files are written to",
			Value:       usecase.DefaultTargetDir,
			Destination: &c.TargetDir,
			Sources:     cli.EnvVars("BINFETCH_TARGET_DIR"),
		},
		&cli.IntFlag{
			Name:        "retry-limit",
			Usage:       "Download attempts per file",
			Value:       usecase.DefaultRetryLimit,
			Destination: &c.RetryLimit,
			Sources:     cli.EnvVars("BINFETCH_RETRY_LIMIT"),
		},
		&cli.DurationFlag{
			Name:        "retry-delay",
			Usage:       "Wait between download attempts",
			Value:       usecase.DefaultRetryDelay,
			Destination: &c.RetryDelay,
			Sources:     cli.EnvVars("BINFETCH_RETRY_DELAY"),
		},
	}
}

// LoadRepositories reads the repository list
func (c *Fetch) LoadRepositories() ([]*model.RepositorySpec, error) {
	return repolist.Load(c.ConfigPath)
}

// FetcherOptions returns fetcher options for the batch settings
func (c *Fetch) FetcherOptions() []usecase.FetcherOption {
	return []usecase.FetcherOption{
		usecase.WithTargetDir(c.TargetDir),
		usecase.WithRetryLimit(c.RetryLimit),
		usecase.WithRetryDelay(c.RetryDelay),
	}
}
