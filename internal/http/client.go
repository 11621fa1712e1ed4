package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ligustah/glean/pkg/fragments"
)

// IDPlaceholder is replaced by the probed id in the URL template.
const IDPlaceholder = "{id}"

// maxBodySize bounds how much of a fragment response is read.
const maxBodySize = 1 << 20

// Common errors. Every non-success status also wraps fragments.ErrNoFragment.
var (
	ErrNotFound         = errors.New("http: fragment not found")
	ErrServerError      = errors.New("http: server error")
	ErrUnexpectedStatus = errors.New("http: unexpected status")
	ErrMalformed        = errors.New("http: malformed fragment body")
)

// Options configures the HTTP client.
type Options struct {
	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 100
	MaxIdleConnsPerHost int

	// Timeout for individual requests.
	// Default: 10s
	Timeout time.Duration
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxIdleConnsPerHost: 100,
		Timeout:             10 * time.Second,
	}
}

// Client fetches fragments by id from a templated URL. It implements
// fragments.Fetcher.
type Client struct {
	client   *http.Client
	opts     Options
	template string
}

// NewClient creates a new HTTP client for the given URL template.
func NewClient(template string, opts Options) *Client {
	transport := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		opts:     opts,
		template: template,
	}
}

// URL returns the fragment URL for id.
func (c *Client) URL(id int64) string {
	return strings.ReplaceAll(c.template, IDPlaceholder, strconv.FormatInt(id, 10))
}

// wireFragment uses pointers so missing fields can be told apart from
// zero values.
type wireFragment struct {
	Index *int64  `json:"index"`
	Text  *string `json:"text"`
}

// Fetch performs a single GET for id. There are no retries: a failed probe
// is replaced by the next random draw.
func (c *Client) Fetch(ctx context.Context, id int64) (fragments.Fragment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(id), nil)
	if err != nil {
		return fragments.Fragment{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fragments.Fragment{}, fmt.Errorf("fetch id %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return fragments.Fragment{}, fmt.Errorf("%w: %w", fragments.ErrNoFragment, checkStatusCode(resp.StatusCode))
	}

	var wf wireFragment
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&wf); err != nil {
		return fragments.Fragment{}, fmt.Errorf("%w: id %d: %w", ErrMalformed, id, err)
	}
	if wf.Index == nil || wf.Text == nil {
		return fragments.Fragment{}, fmt.Errorf("%w: id %d: missing index or text", ErrMalformed, id)
	}

	return fragments.Fragment{Index: *wf.Index, Text: *wf.Text}, nil
}

// checkStatusCode returns an appropriate error for non-success status codes.
func checkStatusCode(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return fmt.Errorf("%w: %d", ErrServerError, code)
	default:
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, code)
	}
}
