package interfaces

import (
	"context"

	"github.com/m-mizutani/binfetch/pkg/domain/model"
)

// HubClient defines operations against a hosted dataset hub
type HubClient interface {
	// Download retrieves a file into req.LocalDir and returns its local path.
	// An already present local file is returned without network access.
	Download(ctx context.Context, req *model.DownloadRequest) (string, error)
}
