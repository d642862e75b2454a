package hub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/binfetch/pkg/domain/interfaces"
	"github.com/m-mizutani/binfetch/pkg/domain/model"
	"github.com/m-mizutani/binfetch/pkg/domain/types"
	"github.com/m-mizutani/binfetch/pkg/utils/logging"
)

const (
	// DefaultEndpoint is the public Hugging Face Hub
	DefaultEndpoint = "https://huggingface.co"
	// DefaultRevision is used when a request names no revision
	DefaultRevision = "main"

	incompleteSuffix = ".incomplete"
)

type client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	userAgent  string
}

// Option is a functional option for the hub client
type Option func(*client)

// WithEndpoint sets the hub base URL
func WithEndpoint(endpoint string) Option {
	return func(c *client) {
		c.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithToken sets the bearer token sent with every request
func WithToken(token string) Option {
	return func(c *client) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds a single download request, body included. Zero means no limit.
func WithTimeout(timeout time.Duration) Option {
	return func(c *client) {
		c.httpClient = &http.Client{
			Transport: c.httpClient.Transport,
			Timeout:   timeout,
		}
	}
}

// NewClient creates a hub client
func NewClient(opts ...Option) interfaces.HubClient {
	c := &client{
		httpClient: &http.Client{},
		endpoint:   DefaultEndpoint,
		userAgent:  "binfetch/" + types.Version,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ResolveURL builds the download URL of a file on the hub
func ResolveURL(endpoint string, req *model.DownloadRequest) string {
	revision := req.Revision
	if revision == "" {
		revision = DefaultRevision
	}

	var prefix string
	switch req.RepoType {
	case types.RepoTypeModel:
		prefix = ""
	case types.RepoTypeSpace:
		prefix = "/spaces"
	default:
		prefix = "/datasets"
	}

	segments := strings.Split(req.Filename, "/")
	for i := range segments {
		segments[i] = url.PathEscape(segments[i])
	}

	return fmt.Sprintf("%s%s/%s/resolve/%s/%s",
		strings.TrimRight(endpoint, "/"),
		prefix,
		req.Repo,
		url.PathEscape(revision),
		strings.Join(segments, "/"),
	)
}

// Download fetches a file into req.LocalDir. An existing local file is returned as is.
func (c *client) Download(ctx context.Context, req *model.DownloadRequest) (string, error) {
	logger := logging.From(ctx)

	localPath, err := req.LocalPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(localPath); err == nil {
		logger.Debug("File already present, skipping download", "path", localPath)
		return localPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return "", goerr.Wrap(err, "failed to create parent directories", goerr.V("path", filepath.Dir(localPath)))
	}

	fileURL := ResolveURL(c.endpoint, req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create download request", goerr.V("url", fileURL))
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	logger.Debug("Requesting file from hub", "url", fileURL)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", goerr.Wrap(err, "failed to request file", goerr.V("url", fileURL), goerr.T(types.ErrTagNetwork))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, fileURL); err != nil {
		return "", err
	}

	if err := writeFile(localPath, resp.Body); err != nil {
		return "", goerr.Wrap(err, "failed to store downloaded file",
			goerr.V("url", fileURL),
			goerr.V("path", localPath),
		)
	}

	return localPath, nil
}

// checkStatus maps a non-success response to a tagged error
func checkStatus(resp *http.Response, fileURL string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	opts := []goerr.Option{
		goerr.V("url", fileURL),
		goerr.V("status", resp.StatusCode),
		goerr.V("body", string(body)),
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		opts = append(opts, goerr.T(types.ErrTagNotFound))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		opts = append(opts, goerr.T(types.ErrTagUnauthorized))
	case resp.StatusCode >= 500:
		opts = append(opts, goerr.T(types.ErrTagServerError))
	}

	return goerr.New(fmt.Sprintf("unexpected status code %d", resp.StatusCode), opts...)
}

// writeFile streams r into path through an incomplete sibling so that path only
// ever holds a finished download
func writeFile(path string, r io.Reader) (err error) {
	tmpPath := path + incompleteSuffix

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return goerr.Wrap(err, "failed to create file", goerr.V("path", tmpPath))
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	body := &bodyReader{r: r}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		if body.err != nil {
			return goerr.Wrap(body.err, "failed to read response body", goerr.V("path", tmpPath), goerr.T(types.ErrTagNetwork))
		}
		return goerr.Wrap(err, "failed to write file", goerr.V("path", tmpPath))
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close file", goerr.V("path", tmpPath))
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return goerr.Wrap(err, "failed to rename file", goerr.V("from", tmpPath), goerr.V("to", path))
	}

	return nil
}

// bodyReader remembers a read failure so it can be told apart from a write failure
type bodyReader struct {
	r   io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF {
		b.err = err
	}
	return n, err
}
