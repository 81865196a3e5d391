// Package httpc wraps the HTTP access to the remote archive: whole-resource
// index fetches with bounded retry and single-shot byte-range data fetches.
package httpc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openclimdata/subgrib/internal/logger"
	"github.com/openclimdata/subgrib/pkg/auth"
	"github.com/openclimdata/subgrib/pkg/errors"
)

const userAgent = "subgrib/0.1"

// DefaultRetries is the attempt count for index fetches.
const DefaultRetries = 3

// DefaultRetrySleep is the pause between index fetch attempts.
const DefaultRetrySleep = 2 * time.Second

// Options configure a Client.
type Options struct {
	Timeout    time.Duration
	Retries    int
	RetrySleep time.Duration
	Auth       auth.Authenticator
}

// Client performs HTTP operations against a single archive base URL.
type Client struct {
	client     *http.Client
	base       *url.URL
	retries    int
	retrySleep time.Duration
	auth       auth.Authenticator
}

// New creates a client for the given base URL.
func New(baseURL string, opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base URL %q", baseURL)
	}
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	if opts.RetrySleep <= 0 {
		opts.RetrySleep = DefaultRetrySleep
	}
	return &Client{
		client:     &http.Client{Timeout: opts.Timeout},
		base:       base,
		retries:    opts.Retries,
		retrySleep: opts.RetrySleep,
		auth:       opts.Auth,
	}, nil
}

// URL resolves an identifier against the base URL.
func (c *Client) URL(identifier string) string {
	rel, err := url.Parse(identifier)
	if err != nil {
		return c.base.String() + identifier
	}
	return c.base.ResolveReference(rel).String()
}

func (c *Client) newRequest(ctx context.Context, resourceURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resourceURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", userAgent)
	if c.auth != nil {
		if err := c.auth.Apply(req); err != nil {
			return nil, errors.Wrap(err, "failed to apply authentication")
		}
	}
	return req, nil
}

// FetchIndex retrieves the whole body of an index resource. Transient
// failures (network errors, 5xx) are retried up to the configured attempt
// count; any other non-success status fails immediately.
func (c *Client) FetchIndex(ctx context.Context, identifier string) ([]byte, error) {
	resourceURL := c.URL(identifier)

	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if attempt > 1 {
			logger.Debug("retrying index fetch", logger.Fields{
				"url":     resourceURL,
				"attempt": attempt,
			})
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retrySleep):
			}
		}

		body, err, transient := c.fetchIndexOnce(ctx, resourceURL)
		if err == nil {
			return body, nil
		}
		if !transient {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) fetchIndexOnce(ctx context.Context, resourceURL string) (body []byte, err error, transient bool) {
	req, err := c.newRequest(ctx, resourceURL)
	if err != nil {
		return nil, err, false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", resourceURL), true
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		retErr := &errors.RetrievalError{URL: resourceURL, Status: resp.StatusCode}
		return nil, retErr, resp.StatusCode >= http.StatusInternalServerError
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", resourceURL), true
	}
	return body, nil, false
}

// FetchRange issues a single byte-range request for [offset, offset+length)
// of a data resource and copies the body to w. There is no retry at this
// layer: a failed data fetch aborts the whole operation.
func (c *Client) FetchRange(ctx context.Context, identifier string, offset, length int64, w io.Writer) error {
	// A zero-length segment contributes nothing, and "bytes=N-(N-1)" is
	// not a valid range header.
	if length == 0 {
		return nil
	}
	resourceURL := c.URL(identifier)

	req, err := c.newRequest(ctx, resourceURL)
	if err != nil {
		return err
	}
	// The range is inclusive on both ends.
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "fetching %s", resourceURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
		return &errors.RetrievalError{URL: resourceURL, Offset: offset, Length: length, Status: resp.StatusCode}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return errors.Wrapf(err, "reading %s", resourceURL)
	}
	if n != length {
		return errors.Wrapf(errors.ErrRetrieval,
			"%s: partial content mismatch: want %d bytes, got %d", resourceURL, length, n)
	}
	return nil
}
