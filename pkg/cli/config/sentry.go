package config

import (
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/binfetch/pkg/domain/types"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN string
	Env string
}

// Flags returns CLI flags for error reporting
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN; fatal errors are reported when set",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("BINFETCH_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Destination: &c.Env,
			Sources:     cli.EnvVars("BINFETCH_SENTRY_ENV"),
		},
	}
}

// Configure initializes the Sentry client. It returns false when no DSN is set.
func (c *Sentry) Configure() (bool, error) {
	if c.DSN == "" {
		return false, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Env,
		Release:     "binfetch@" + types.Version,
	}); err != nil {
		return false, goerr.Wrap(err, "failed to initialize sentry")
	}

	return true, nil
}
