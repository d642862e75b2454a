package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/m-mizutani/binfetch/pkg/cli/config"
	"github.com/m-mizutani/binfetch/pkg/domain/model"
)

func cmdPlan(fetchCfg *config.Fetch, hubCfg *config.Hub) *cli.Command {
	var format string

	return &cli.Command{
		Name:  "plan",
		Usage: "Print where each listed file would be downloaded and extracted",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "Output format (text, json, yaml)",
				Value:       "text",
				Destination: &format,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			specs, err := fetchCfg.LoadRepositories()
			if err != nil {
				return err
			}

			batch, err := newBatch(fetchCfg, hubCfg)
			if err != nil {
				return err
			}

			return printPlan(c.Root().Writer, format, batch.Plan(specs))
		},
	}
}

func printPlan(w io.Writer, format string, items []*model.PlanItem) error {
	if items == nil {
		items = []*model.PlanItem{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			return goerr.Wrap(err, "failed to encode plan")
		}

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return goerr.Wrap(err, "failed to encode plan")
		}
		if err := enc.Close(); err != nil {
			return goerr.Wrap(err, "failed to encode plan")
		}

	case "text":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "REPO\tFILE\tDOWNLOAD\tEXTRACT")
		for _, item := range items {
			extract := item.ExtractPath
			if extract == "" {
				extract = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Repo, item.Filename, item.DownloadPath, extract)
		}
		if err := tw.Flush(); err != nil {
			return goerr.Wrap(err, "failed to write plan")
		}

	default:
		return goerr.New("unsupported plan format", goerr.V("format", format))
	}

	return nil
}
