package interfaces

import (
	"context"

	"github.com/m-mizutani/binfetch/pkg/domain/model"
)

// Fetcher retrieves one file with bounded retries
type Fetcher interface {
	// Fetch returns the local path and true on success. After the retry limit is
	// exhausted it returns false; failures are logged, never returned.
	Fetch(ctx context.Context, repo, filename string) (string, bool)

	// LocalPath returns where Fetch places filename
	LocalPath(filename string) string
}

// Extractor decompresses downloaded archives
type Extractor interface {
	// Extract decompresses path next to itself. Failures are logged, never returned.
	Extract(ctx context.Context, path string)

	// OutputPath returns the decompressed destination of path and whether path is
	// a compressed stream at all
	OutputPath(path string) (string, bool)
}

// BatchUseCase drives fetch and extraction over a repository list
type BatchUseCase interface {
	// Run processes every file of every repository in order
	Run(ctx context.Context, specs []*model.RepositorySpec) error

	// Plan lists what Run would do without touching the network
	Plan(specs []*model.RepositorySpec) []*model.PlanItem
}
