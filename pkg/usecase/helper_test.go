package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/binfetch/pkg/domain/model"
	"github.com/m-mizutani/binfetch/pkg/utils/logging"
)

// MockHubClient is a mock implementation of HubClient
type MockHubClient struct {
	downloadFunc func(ctx context.Context, req *model.DownloadRequest) (string, error)

	mu    sync.Mutex
	calls []model.DownloadRequest
}

func (m *MockHubClient) Download(ctx context.Context, req *model.DownloadRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, *req)
	m.mu.Unlock()

	if m.downloadFunc != nil {
		return m.downloadFunc(ctx, req)
	}
	return "", errors.New("mock not configured")
}

func (m *MockHubClient) CallCount(filename string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.calls {
		if c.Filename == filename {
			n++
		}
	}
	return n
}

// sleepRecorder replaces the retry wait and records requested delays
type sleepRecorder struct {
	delays []time.Duration
	err    error
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return s.err
}

// newTestContext returns a context whose logger writes text records into buf
func newTestContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logging.With(context.Background(), logger), &buf
}

// writeZstd compresses data into path
func writeZstd(t *testing.T, path string, data []byte) {
	t.Helper()

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	gt.NoError(t, err).Required()
	_, err = enc.Write(data)
	gt.NoError(t, err).Required()
	gt.NoError(t, enc.Close()).Required()

	gt.NoError(t, os.MkdirAll(filepath.Dir(path), 0755)).Required()
	gt.NoError(t, os.WriteFile(path, buf.Bytes(), 0644)).Required()
}
