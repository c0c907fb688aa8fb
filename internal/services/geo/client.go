package geo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/muzykantov/geo-data-pipeline/internal/config"
	"github.com/muzykantov/geo-data-pipeline/internal/dataset"
	"github.com/muzykantov/geo-data-pipeline/internal/fileutil"
	"github.com/muzykantov/geo-data-pipeline/internal/logging"
	"github.com/muzykantov/geo-data-pipeline/internal/services"
)

const (
	defaultBaseURL   = "https://ftp.ncbi.nlm.nih.gov/geo"
	defaultTimeout   = 10 * time.Minute
	defaultUserAgent = "geopipe/dev"
)

// HTTPDoer describes the HTTP client used to download archives.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client downloads GEO supplementary archives.
type Client struct {
	baseURL   string
	userAgent string
	http      HTTPDoer
	logger    *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a client for baseURL. An empty base falls back to the
// NCBI GEO FTP mirror served over HTTPS.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := &Client{
		baseURL:   baseURL,
		userAgent: defaultUserAgent,
		http:      &http.Client{Timeout: defaultTimeout},
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "geo")
	return client
}

// NewConfiguredClient returns a client using the [fetch] settings.
func NewConfiguredClient(cfg *config.Config, logger *slog.Logger) *Client {
	if cfg == nil {
		return NewClient("", WithLogger(logger))
	}
	return NewClient(cfg.Fetch.BaseURL,
		WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout()}),
		WithUserAgent(cfg.Fetch.UserAgent),
		WithLogger(logger),
	)
}

// ArchiveURL returns the download location of ref's RAW archive.
func (c *Client) ArchiveURL(ref dataset.Ref) string {
	return ref.ArchiveURL(c.baseURL)
}

// Fetch downloads ref's archive to dest. The body is streamed into a
// temporary sibling and renamed onto dest only after the full, non-empty
// payload has arrived.
func (c *Client) Fetch(ctx context.Context, ref dataset.Ref, dest string) error {
	url := c.ArchiveURL(ref)
	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("downloading archive", logging.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return services.Wrap(services.ErrFetchFailed, "fetch", "build request", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrFetchFailed, "fetch", "download", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrFetchFailed, "fetch", "download",
			fmt.Sprintf("%s returned status %d", url, resp.StatusCode), nil)
	}

	file, err := fileutil.CreateAtomic(dest)
	if err != nil {
		return services.Wrap(services.ErrFetchFailed, "fetch", "create archive", dest, err)
	}
	defer file.Abort()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return services.Wrap(services.ErrFetchFailed, "fetch", "download", url, err)
	}
	written := file.Written()
	if written == 0 {
		return services.Wrap(services.ErrFetchFailed, "fetch", "download", url+" returned an empty body", nil)
	}
	if resp.ContentLength >= 0 && written != resp.ContentLength {
		return services.Wrap(services.ErrFetchFailed, "fetch", "download",
			fmt.Sprintf("%s truncated: got %d of %d bytes", url, written, resp.ContentLength), nil)
	}
	if err := file.Commit(); err != nil {
		return services.Wrap(services.ErrFetchFailed, "fetch", "write archive", dest, err)
	}

	logger.Info("archive downloaded",
		logging.String(logging.FieldEventType, "fetch_complete"),
		logging.String("path", dest),
		logging.Int64("bytes", written),
	)
	return nil
}
