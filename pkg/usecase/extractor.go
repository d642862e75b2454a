package usecase

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/binfetch/pkg/domain/interfaces"
	"github.com/m-mizutani/binfetch/pkg/utils/logging"
)

const (
	// CompressedSuffix marks files holding a zstd stream
	CompressedSuffix = ".zst"

	partialSuffix = ".partial"
)

type extractorConfig struct {
	maxMemory uint64
}

// ExtractorOption is a functional option for the extractor
type ExtractorOption func(*extractorConfig)

// WithMaxMemory caps the memory the zstd decoder may allocate. Zero keeps the codec default.
func WithMaxMemory(n uint64) ExtractorOption {
	return func(c *extractorConfig) {
		c.maxMemory = n
	}
}

type extractor struct {
	cfg extractorConfig
}

// NewExtractor creates an Extractor for zstd streams
func NewExtractor(opts ...ExtractorOption) interfaces.Extractor {
	var cfg extractorConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return &extractor{cfg: cfg}
}

// OutputPath strips the compression suffix from path
func (x *extractor) OutputPath(path string) (string, bool) {
	if !strings.HasSuffix(path, CompressedSuffix) || len(path) == len(CompressedSuffix) {
		return "", false
	}
	return strings.TrimSuffix(path, CompressedSuffix), true
}

// Extract decompresses path next to itself unless the output already exists.
// Errors are logged and swallowed.
func (x *extractor) Extract(ctx context.Context, path string) {
	logger := logging.From(ctx)

	dest, ok := x.OutputPath(path)
	if !ok {
		logger.Info("Not a compressed stream, skipping extraction", "path", path)
		return
	}

	if _, err := os.Stat(dest); err == nil {
		logger.Info("Skipping extraction, already exists", "path", dest)
		return
	} else if !os.IsNotExist(err) {
		logger.Error("Failed to check extraction destination",
			"path", dest,
			"error", goerr.Wrap(err, "failed to stat destination", goerr.V("path", dest)),
		)
		return
	}

	size, err := x.decompress(path, dest)
	if err != nil {
		logger.Error("Failed to extract file",
			"path", path,
			"error", err,
		)
		return
	}

	logger.Info("Extracted file",
		"from", path,
		"to", dest,
		"size_bytes", size,
	)
}

// decompress streams the zstd content of src into dest through a partial sibling
func (x *extractor) decompress(src, dest string) (written int64, err error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to open compressed file", goerr.V("path", src))
	}
	defer in.Close()

	var opts []zstd.DOption
	if x.cfg.maxMemory > 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(x.cfg.maxMemory))
	}

	dec, err := zstd.NewReader(in, opts...)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create zstd decoder", goerr.V("path", src))
	}
	defer dec.Close()

	tmpPath := dest + partialSuffix
	out, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create destination file", goerr.V("path", tmpPath))
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	written, err = io.Copy(out, dec)
	if err != nil {
		_ = out.Close()
		return 0, goerr.Wrap(err, "failed to decompress stream",
			goerr.V("src", src),
			goerr.V("written", written),
		)
	}
	if err := out.Close(); err != nil {
		return 0, goerr.Wrap(err, "failed to close destination file", goerr.V("path", tmpPath))
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return 0, goerr.Wrap(err, "failed to rename destination file", goerr.V("from", tmpPath), goerr.V("to", dest))
	}

	return written, nil
}
