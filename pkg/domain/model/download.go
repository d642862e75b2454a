package model

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/binfetch/pkg/domain/types"
)

// DownloadRequest describes a single file retrieval from the hub
type DownloadRequest struct {
	Repo     string         // Repository identifier
	Filename string         // Path of the file inside the repository
	RepoType types.RepoType // Kind of repository; dataset for binpacks
	Revision string         // Branch, tag or commit; empty means the hub default
	LocalDir string         // Directory the file is placed under
}

// LocalPath returns where the file is stored under LocalDir. Filenames that would
// land outside LocalDir are rejected.
func (r *DownloadRequest) LocalPath() (string, error) {
	if r.Filename == "" {
		return "", goerr.Wrap(types.ErrInvalidFilename, "empty filename")
	}

	base := filepath.Clean(r.LocalDir)
	destPath := filepath.Join(base, filepath.FromSlash(r.Filename))
	rel, err := filepath.Rel(base, destPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", goerr.Wrap(types.ErrInvalidFilename, "invalid file path detected",
			goerr.V("filename", r.Filename),
			goerr.V("local_dir", r.LocalDir),
		)
	}

	return destPath, nil
}
