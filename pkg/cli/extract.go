package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/binfetch/pkg/usecase"
)

func cmdExtract() *cli.Command {
	var maxMemory uint64

	return &cli.Command{
		Name:      "extract",
		Aliases:   []string{"x"},
		Usage:     "Decompress local zstd files next to themselves",
		ArgsUsage: "<file.zst>...",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:        "max-memory",
				Usage:       "Upper bound of decoder memory in bytes, 0 for the codec default",
				Destination: &maxMemory,
				Sources:     cli.EnvVars("BINFETCH_EXTRACT_MAX_MEMORY"),
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return goerr.New("no file given to extract")
			}

			extractor := usecase.NewExtractor(usecase.WithMaxMemory(maxMemory))
			for _, path := range c.Args().Slice() {
				extractor.Extract(ctx, path)
			}
			return nil
		},
	}
}
