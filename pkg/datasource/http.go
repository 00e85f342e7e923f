package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orbit/pkg/cache"
	orberrors "github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/hierarchy"
	"github.com/matzehuels/orbit/pkg/observability"
)

// DefaultTimeout bounds a single snapshot request.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps response reads so a misbehaving server cannot exhaust
// memory. Trees are small; 8 MiB is generous.
const maxBodySize = 8 << 20

// HTTPProvider fetches tree snapshots and node content over HTTP.
//
// Trees live at {base}/tree/{source}, content at {base}/content/{node}.
// Transient failures (network errors, 502/503/504) are retried with
// exponential backoff; rejections are returned immediately.
type HTTPProvider struct {
	base       *url.URL
	client     *http.Client
	logger     *log.Logger
	attempts   int
	retryDelay time.Duration
}

// HTTPOptions configures an HTTPProvider.
type HTTPOptions struct {
	BaseURL string
	Client  *http.Client
	Logger  *log.Logger

	// Retry policy for transient failures. Zero values mean 3 attempts
	// starting at a 1 second delay.
	Attempts   int
	RetryDelay time.Duration
}

// NewHTTPProvider validates the base URL and builds the provider.
func NewHTTPProvider(opts HTTPOptions) (*HTTPProvider, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, orberrors.New(orberrors.ErrCodeInvalidConfig, "invalid base URL %q", opts.BaseURL)
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: DefaultTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	return &HTTPProvider{
		base:       base,
		client:     opts.Client,
		logger:     opts.Logger,
		attempts:   opts.Attempts,
		retryDelay: opts.RetryDelay,
	}, nil
}

// FetchTree retrieves and decodes the tree snapshot for source.
func (p *HTTPProvider) FetchTree(ctx context.Context, source string) (*hierarchy.Tree, error) {
	body, err := p.fetch(ctx, p.base.JoinPath("tree", source).String())
	if err != nil {
		return nil, err
	}
	t, err := hierarchy.UnmarshalTree(body)
	if err != nil {
		return nil, orberrors.Wrap(orberrors.ErrCodeInvalidData, err, "decode tree %q", source)
	}
	return t, nil
}

// FetchContent retrieves one node's content bytes.
func (p *HTTPProvider) FetchContent(ctx context.Context, nodeID string) ([]byte, error) {
	return p.fetch(ctx, p.base.JoinPath("content", nodeID).String())
}

// fetch performs one GET with the retry policy: network failures and
// unavailable-service responses retry, everything else surfaces at once.
func (p *HTTPProvider) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	err := cache.Retry(ctx, p.attempts, p.retryDelay, func() error {
		b, err := p.fetchOnce(ctx, rawURL)
		if err != nil {
			if orberrors.Retryable(err) {
				return cache.Retryable(err)
			}
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		var re *cache.RetryableError
		if errors.As(err, &re) {
			err = re.Err
		}
		return nil, err
	}
	return body, nil
}

func (p *HTTPProvider) fetchOnce(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, orberrors.Wrap(orberrors.ErrCodeUnknownFetch, err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	observability.HTTP().OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	resp, err := p.client.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, ClassifyFetchError(err)
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path,
		resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 500 {
		p.logger.Warn("server error", "url", rawURL, "status", resp.StatusCode)
		return nil, orberrors.Wrap(orberrors.ErrCodeServer,
			&orberrors.ServerError{StatusCode: resp.StatusCode}, "fetch %s", rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, orberrors.New(orberrors.ErrCodeUnknownFetch,
			"unexpected status %d fetching %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, ClassifyFetchError(fmt.Errorf("read body: %w", err))
	}
	return body, nil
}
