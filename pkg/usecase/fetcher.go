package usecase

import (
	"context"
	"path/filepath"
	"time"

	"github.com/m-mizutani/binfetch/pkg/domain/interfaces"
	"github.com/m-mizutani/binfetch/pkg/domain/model"
	"github.com/m-mizutani/binfetch/pkg/domain/types"
	"github.com/m-mizutani/binfetch/pkg/utils/logging"
)

const (
	DefaultRetryLimit = 5
	DefaultRetryDelay = 5 * time.Second
	DefaultTargetDir  = "./binpacks"
)

// SleepFunc blocks for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

type fetcherConfig struct {
	retryLimit int
	retryDelay time.Duration
	targetDir  string
	repoType   types.RepoType
	revision   string
	sleep      SleepFunc
}

// FetcherOption is a functional option for the fetcher
type FetcherOption func(*fetcherConfig)

// WithRetryLimit sets the total number of attempts per file. Values below 1 mean 1.
func WithRetryLimit(limit int) FetcherOption {
	return func(c *fetcherConfig) {
		c.retryLimit = limit
	}
}

// WithRetryDelay sets the fixed delay between attempts
func WithRetryDelay(delay time.Duration) FetcherOption {
	return func(c *fetcherConfig) {
		c.retryDelay = delay
	}
}

// WithTargetDir sets the directory downloads are placed under
func WithTargetDir(dir string) FetcherOption {
	return func(c *fetcherConfig) {
		c.targetDir = dir
	}
}

// WithRepoType sets the hub repository type
func WithRepoType(repoType types.RepoType) FetcherOption {
	return func(c *fetcherConfig) {
		c.repoType = repoType
	}
}

// WithRevision pins the hub revision files are fetched from
func WithRevision(revision string) FetcherOption {
	return func(c *fetcherConfig) {
		c.revision = revision
	}
}

// WithSleep replaces the wait between attempts
func WithSleep(sleep SleepFunc) FetcherOption {
	return func(c *fetcherConfig) {
		c.sleep = sleep
	}
}

type fetcher struct {
	hubClient interfaces.HubClient
	cfg       fetcherConfig
}

// NewFetcher creates a Fetcher that retries hub downloads with a fixed delay
func NewFetcher(hubClient interfaces.HubClient, opts ...FetcherOption) interfaces.Fetcher {
	cfg := fetcherConfig{
		retryLimit: DefaultRetryLimit,
		retryDelay: DefaultRetryDelay,
		targetDir:  DefaultTargetDir,
		repoType:   types.RepoTypeDataset,
		sleep:      sleepContext,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.retryLimit < 1 {
		cfg.retryLimit = 1
	}

	return &fetcher{
		hubClient: hubClient,
		cfg:       cfg,
	}
}

// Fetch downloads filename from repo. Every error is retried alike until the limit.
func (f *fetcher) Fetch(ctx context.Context, repo, filename string) (string, bool) {
	logger := logging.From(ctx)

	req := &model.DownloadRequest{
		Repo:     repo,
		Filename: filename,
		RepoType: f.cfg.repoType,
		Revision: f.cfg.revision,
		LocalDir: f.cfg.targetDir,
	}

	for attempt := 1; attempt <= f.cfg.retryLimit; attempt++ {
		path, err := f.hubClient.Download(ctx, req)
		if err == nil {
			logger.Info("Downloaded file",
				"repo", repo,
				"filename", filename,
				"path", path,
				"attempt", attempt,
			)
			return path, true
		}

		logger.Warn("Download attempt failed",
			"repo", repo,
			"filename", filename,
			"attempt", attempt,
			"retry_limit", f.cfg.retryLimit,
			"permanent", types.IsPermanent(err),
			"error", err,
		)

		if attempt == f.cfg.retryLimit {
			break
		}

		logger.Info("Retrying download",
			"filename", filename,
			"delay", f.cfg.retryDelay,
		)
		if err := f.cfg.sleep(ctx, f.cfg.retryDelay); err != nil {
			logger.Warn("Download retry cancelled",
				"repo", repo,
				"filename", filename,
				"error", err,
			)
			return "", false
		}
	}

	logger.Error("Failed to download file",
		"repo", repo,
		"filename", filename,
		"attempts", f.cfg.retryLimit,
	)
	return "", false
}

// LocalPath returns where Fetch places filename
func (f *fetcher) LocalPath(filename string) string {
	req := &model.DownloadRequest{Filename: filename, LocalDir: f.cfg.targetDir}
	path, err := req.LocalPath()
	if err != nil {
		return filepath.Join(f.cfg.targetDir, filepath.FromSlash(filename))
	}
	return path
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
