// Package avatar downloads friend profile icons and keeps a bounded on-disk
// cache of them so notifications can point at a local image file.
package avatar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"tools.zach/dev/leaguenotifier/internal/roster"
)

var (
	// ErrNoIcon is returned for friends without a usable icon reference.
	ErrNoIcon = errors.New("no profile icon")
	// ErrTooLarge is returned when an image exceeds the configured size cap.
	ErrTooLarge = errors.New("profile icon too large")
)

// DefaultURL is the community CDN template for profile icons.
const DefaultURL = "https://raw.communitydragon.org/latest/plugins/rcp-be-lol-game-data/global/default/v1/profile-icons/{icon}.jpg"

// ///////////////////////////////////////////////
// Fetcher
// ///////////////////////////////////////////////

// Fetcher downloads icon images over HTTP with a small retry budget.
type Fetcher struct {
	// template contains an {icon} placeholder.
	template string
	// maxBytes caps the response body size.
	maxBytes int64
	// client retries transient failures; its timeout bounds each attempt.
	client *retryablehttp.Client
}

// NewFetcher returns a Fetcher for urlTemplate. A zero maxBytes disables the
// size cap.
func NewFetcher(urlTemplate string, maxBytes int64, timeout time.Duration) *Fetcher {
	if urlTemplate == "" {
		urlTemplate = DefaultURL
	}
	c := retryablehttp.NewClient()
	c.RetryMax = 2
	c.RetryWaitMin = 200 * time.Millisecond
	c.RetryWaitMax = time.Second
	c.HTTPClient.Timeout = timeout
	c.Logger = nil // suppress retryablehttp's default logging
	return &Fetcher{template: urlTemplate, maxBytes: maxBytes, client: c}
}

// URL returns the download URL for ref.
func (f *Fetcher) URL(ref roster.IconRef) string {
	return strings.ReplaceAll(f.template, "{icon}", url.PathEscape(string(ref)))
}

// Open starts downloading ref and returns the response body. Reading past
// the size cap fails with [ErrTooLarge]. The caller must close the body.
func (f *Fetcher) Open(ctx context.Context, ref roster.IconRef) (io.ReadCloser, error) {
	if !ref.Valid() {
		return nil, ErrNoIcon
	}
	u := f.URL(ref)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", u, resp.StatusCode)
	}
	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %w (%d bytes)", u, ErrTooLarge, resp.ContentLength)
	}
	if f.maxBytes <= 0 {
		return resp.Body, nil
	}
	return &cappedBody{rc: resp.Body, left: f.maxBytes}, nil
}

// cappedBody fails once more than its budget has been read.
type cappedBody struct {
	rc   io.ReadCloser
	left int64
}

func (b *cappedBody) Read(p []byte) (int, error) {
	if b.left < 0 {
		return 0, ErrTooLarge
	}
	// Read one byte past the budget to tell "exactly at cap" from "over cap".
	if int64(len(p)) > b.left+1 {
		p = p[:b.left+1]
	}
	n, err := b.rc.Read(p)
	b.left -= int64(n)
	if b.left < 0 {
		return 0, ErrTooLarge
	}
	return n, err
}

func (b *cappedBody) Close() error { return b.rc.Close() }
