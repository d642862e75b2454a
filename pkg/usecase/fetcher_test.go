package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/binfetch/pkg/domain/model"
	"github.com/m-mizutani/binfetch/pkg/domain/types"
	"github.com/m-mizutani/binfetch/pkg/usecase"
)

func TestFetcher_SucceedsAfterFailures(t *testing.T) {
	testCases := []struct {
		name     string
		failures int
	}{
		{name: "first attempt", failures: 0},
		{name: "after one failure", failures: 1},
		{name: "on last attempt", failures: 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := newTestContext(t)
			dir := t.TempDir()

			attempt := 0
			hub := &MockHubClient{
				downloadFunc: func(ctx context.Context, req *model.DownloadRequest) (string, error) {
					attempt++
					if attempt <= tc.failures {
						return "", errors.New("connection reset")
					}
					return filepath.Join(req.LocalDir, req.Filename), nil
				},
			}
			sleeper := &sleepRecorder{}

			f := usecase.NewFetcher(hub,
				usecase.WithTargetDir(dir),
				usecase.WithRetryDelay(7*time.Second),
				usecase.WithSleep(sleeper.Sleep),
			)

			path, ok := f.Fetch(ctx, "org/ds", "a.binpack.zst")
			gt.True(t, ok)
			gt.Equal(t, path, filepath.Join(dir, "a.binpack.zst"))
			gt.Equal(t, hub.CallCount("a.binpack.zst"), tc.failures+1)
			gt.A(t, sleeper.delays).Length(tc.failures)
			for _, d := range sleeper.delays {
				gt.Equal(t, d, 7*time.Second)
			}
		})
	}
}

func TestFetcher_ExhaustsRetries(t *testing.T) {
	ctx, buf := newTestContext(t)

	hub := &MockHubClient{
		downloadFunc: func(ctx context.Context, req *model.DownloadRequest) (string, error) {
			return "", errors.New("connection reset")
		},
	}
	sleeper := &sleepRecorder{}

	f := usecase.NewFetcher(hub,
		usecase.WithTargetDir(t.TempDir()),
		usecase.WithSleep(sleeper.Sleep),
	)

	path, ok := f.Fetch(ctx, "org/ds", "b.binpack.zst")
	gt.False(t, ok)
	gt.Equal(t, path, "")
	gt.Equal(t, hub.CallCount("b.binpack.zst"), usecase.DefaultRetryLimit)
	gt.A(t, sleeper.delays).Length(usecase.DefaultRetryLimit - 1)
	for _, d := range sleeper.delays {
		gt.Equal(t, d, usecase.DefaultRetryDelay)
	}

	logs := buf.String()
	gt.Equal(t, strings.Count(logs, "Download attempt failed"), usecase.DefaultRetryLimit)
	gt.S(t, logs).Contains("Failed to download file")
}

func TestFetcher_RetriesPermanentErrors(t *testing.T) {
	ctx, _ := newTestContext(t)

	hub := &MockHubClient{
		downloadFunc: func(ctx context.Context, req *model.DownloadRequest) (string, error) {
			return "", goerr.New("unexpected status code 404", goerr.T(types.ErrTagNotFound))
		},
	}
	sleeper := &sleepRecorder{}

	f := usecase.NewFetcher(hub,
		usecase.WithRetryLimit(3),
		usecase.WithTargetDir(t.TempDir()),
		usecase.WithSleep(sleeper.Sleep),
	)

	_, ok := f.Fetch(ctx, "org/ds", "missing.zst")
	gt.False(t, ok)
	gt.Equal(t, hub.CallCount("missing.zst"), 3)
	gt.A(t, sleeper.delays).Length(2)
}

func TestFetcher_CancelDuringSleep(t *testing.T) {
	ctx, buf := newTestContext(t)

	hub := &MockHubClient{
		downloadFunc: func(ctx context.Context, req *model.DownloadRequest) (string, error) {
			return "", errors.New("timeout")
		},
	}
	sleeper := &sleepRecorder{err: context.Canceled}

	f := usecase.NewFetcher(hub,
		usecase.WithTargetDir(t.TempDir()),
		usecase.WithSleep(sleeper.Sleep),
	)

	_, ok := f.Fetch(ctx, "org/ds", "a.zst")
	gt.False(t, ok)
	gt.Equal(t, hub.CallCount("a.zst"), 1)
	gt.S(t, buf.String()).Contains("Download retry cancelled")
}

func TestFetcher_DefaultSleepHonorsContext(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	hub := &MockHubClient{
		downloadFunc: func(ctx context.Context, req *model.DownloadRequest) (string, error) {
			return "", errors.New("timeout")
		},
	}

	f := usecase.NewFetcher(hub,
		usecase.WithTargetDir(t.TempDir()),
		usecase.WithRetryDelay(time.Hour),
	)

	start := time.Now()
	_, ok := f.Fetch(ctx, "org/ds", "a.zst")
	gt.False(t, ok)
	gt.True(t, time.Since(start) < time.Minute)
	gt.Equal(t, hub.CallCount("a.zst"), 1)
}

func TestFetcher_LimitBelowOne(t *testing.T) {
	ctx, _ := newTestContext(t)

	hub := &MockHubClient{
		downloadFunc: func(ctx context.Context, req *model.DownloadRequest) (string, error) {
			return "", errors.New("timeout")
		},
	}
	sleeper := &sleepRecorder{}

	f := usecase.NewFetcher(hub,
		usecase.WithRetryLimit(0),
		usecase.WithTargetDir(t.TempDir()),
		usecase.WithSleep(sleeper.Sleep),
	)

	_, ok := f.Fetch(ctx, "org/ds", "a.zst")
	gt.False(t, ok)
	gt.Equal(t, hub.CallCount("a.zst"), 1)
	gt.A(t, sleeper.delays).Length(0)
}

func TestFetcher_BuildsRequest(t *testing.T) {
	ctx, _ := newTestContext(t)
	dir := t.TempDir()

	var got *model.DownloadRequest
	hub := &MockHubClient{
		downloadFunc: func(ctx context.Context, req *model.DownloadRequest) (string, error) {
			got = req
			return req.LocalPath()
		},
	}

	f := usecase.NewFetcher(hub,
		usecase.WithTargetDir(dir),
		usecase.WithRepoType(types.RepoTypeModel),
		usecase.WithRevision("v2"),
	)

	path, ok := f.Fetch(ctx, "org/model", "sub/w.bin.zst")
	gt.True(t, ok)
	gt.Equal(t, path, filepath.Join(dir, "sub", "w.bin.zst"))
	gt.V(t, got).NotNil()
	gt.Equal(t, got.Repo, "org/model")
	gt.Equal(t, got.RepoType, types.RepoTypeModel)
	gt.Equal(t, got.Revision, "v2")
	gt.Equal(t, got.LocalDir, dir)
}

func TestFetcher_LocalPath(t *testing.T) {
	dir := t.TempDir()
	f := usecase.NewFetcher(&MockHubClient{}, usecase.WithTargetDir(dir))

	gt.Equal(t, f.LocalPath("a.binpack.zst"), filepath.Join(dir, "a.binpack.zst"))
	gt.Equal(t, f.LocalPath("x/y.zst"), filepath.Join(dir, "x", "y.zst"))

	// no file is created by planning
	_, err := os.Stat(filepath.Join(dir, "a.binpack.zst"))
	gt.True(t, os.IsNotExist(err))
}

func TestFetcher_CurrentDirectoryTarget(t *testing.T) {
	ctx, _ := newTestContext(t)

	hub := &MockHubClient{
		downloadFunc: func(ctx context.Context, req *model.DownloadRequest) (string, error) {
			return req.LocalPath()
		},
	}
	sleeper := &sleepRecorder{}

	f := usecase.NewFetcher(hub,
		usecase.WithTargetDir("."),
		usecase.WithSleep(sleeper.Sleep),
	)

	path, ok := f.Fetch(ctx, "org/ds", "a.binpack.zst")
	gt.True(t, ok)
	gt.Equal(t, path, "a.binpack.zst")
	gt.Equal(t, hub.CallCount("a.binpack.zst"), 1)
	gt.A(t, sleeper.delays).Length(0)
	gt.Equal(t, f.LocalPath("x/y.zst"), filepath.Join("x", "y.zst"))
}
