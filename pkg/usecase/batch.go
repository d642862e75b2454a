package usecase

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/binfetch/pkg/domain/interfaces"
	"github.com/m-mizutani/binfetch/pkg/domain/model"
	"github.com/m-mizutani/binfetch/pkg/utils/logging"
	"github.com/m-mizutani/binfetch/pkg/utils/safe"
)

type batchUseCase struct {
	fetcher   interfaces.Fetcher
	extractor interfaces.Extractor
	targetDir string
}

// NewBatch creates a BatchUseCase writing under targetDir
func NewBatch(fetcher interfaces.Fetcher, extractor interfaces.Extractor, targetDir string) interfaces.BatchUseCase {
	return &batchUseCase{
		fetcher:   fetcher,
		extractor: extractor,
		targetDir: targetDir,
	}
}

// Run fetches and extracts every listed file of every repository, one after another.
// Per-file failures are logged by the fetcher and extractor and never stop the batch;
// only failing to create the target directory is returned.
func (uc *batchUseCase) Run(ctx context.Context, specs []*model.RepositorySpec) error {
	logger := logging.From(ctx)

	if err := os.MkdirAll(uc.targetDir, 0755); err != nil {
		return goerr.Wrap(err, "failed to create target directory", goerr.V("path", uc.targetDir))
	}

	for _, spec := range specs {
		for _, filename := range spec.Files {
			if ctx.Err() != nil {
				logger.Warn("Batch interrupted", "error", ctx.Err())
				return nil
			}

			logger.Info("Processing file", "filename", filename, "repo", spec.Repo)

			err := safe.Run(ctx, func(ctx context.Context) error {
				path, ok := uc.fetcher.Fetch(ctx, spec.Repo, filename)
				if !ok {
					return nil
				}
				uc.extractor.Extract(ctx, path)
				return nil
			})
			if err != nil {
				logger.Error("Failed to process file",
					"repo", spec.Repo,
					"filename", filename,
					"error", err,
				)
			}
		}
	}

	return nil
}

// Plan lists the download and extraction paths for every file without network access
func (uc *batchUseCase) Plan(specs []*model.RepositorySpec) []*model.PlanItem {
	var items []*model.PlanItem
	for _, spec := range specs {
		for _, filename := range spec.Files {
			downloadPath := uc.fetcher.LocalPath(filename)
			extractPath, _ := uc.extractor.OutputPath(downloadPath)

			items = append(items, &model.PlanItem{
				Repo:         spec.Repo,
				Filename:     filename,
				DownloadPath: downloadPath,
				ExtractPath:  extractPath,
			})
		}
	}
	return items
}
