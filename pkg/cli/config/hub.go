package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/binfetch/pkg/domain/interfaces"
	"github.com/m-mizutani/binfetch/pkg/domain/types"
	"github.com/m-mizutani/binfetch/pkg/infra/hub"
	"github.com/m-mizutani/binfetch/pkg/usecase"
)

// Hub holds hub connection configuration
type Hub struct {
	Endpoint string
	Token    string
	Revision string
	RepoType string
	Timeout  time.Duration
}

// Flags returns CLI flags for hub configuration
func (c *Hub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "hub-endpoint",
			Usage:       "Hub base URL",
			Value:       hub.DefaultEndpoint,
			Destination: &c.Endpoint,
			Sources:     cli.EnvVars("BINFETCH_HUB_ENDPOINT", "HF_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:        "hub-token",
			Usage:       "Hub access token for private or gated repositories",
			Destination: &c.Token,
			Sources:     cli.EnvVars("BINFETCH_HUB_TOKEN", "HF_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "hub-revision",
			Usage:       "Branch, tag or commit files are fetched from",
			Value:       hub.DefaultRevision,
			Destination: &c.Revision,
			Sources:     cli.EnvVars("BINFETCH_HUB_REVISION"),
		},
		&cli.StringFlag{
			Name:        "hub-repo-type",
			Usage:       "Repository type (dataset, model, space)",
			Value:       types.RepoTypeDataset.String(),
			Destination: &c.RepoType,
			Sources:     cli.EnvVars("BINFETCH_HUB_REPO_TYPE"),
		},
		&cli.DurationFlag{
			Name:        "hub-timeout",
			Usage:       "Timeout of a single download request, 0 for none",
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("BINFETCH_HUB_TIMEOUT"),
		},
	}
}

// NewClient creates a hub client from the configuration
func (c *Hub) NewClient() (interfaces.HubClient, error) {
	if _, err := c.repoType(); err != nil {
		return nil, err
	}

	opts := []hub.Option{
		hub.WithEndpoint(c.Endpoint),
		hub.WithToken(c.Token),
	}
	if c.Timeout > 0 {
		opts = append(opts, hub.WithTimeout(c.Timeout))
	}

	return hub.NewClient(opts...), nil
}

// FetcherOptions returns fetcher options selecting what is fetched from the hub
func (c *Hub) FetcherOptions() ([]usecase.FetcherOption, error) {
	repoType, err := c.repoType()
	if err != nil {
		return nil, err
	}

	return []usecase.FetcherOption{
		usecase.WithRepoType(repoType),
		usecase.WithRevision(c.Revision),
	}, nil
}

func (c *Hub) repoType() (types.RepoType, error) {
	t := types.RepoType(c.RepoType)
	if !t.IsValid() {
		return "", goerr.New("invalid hub repository type", goerr.V("repo_type", c.RepoType))
	}
	return t, nil
}
