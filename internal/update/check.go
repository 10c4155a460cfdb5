// Package update checks for newer League Notifier releases via the release
// manifest.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// maxManifestBytes caps the manifest download.
const maxManifestBytes = 64 << 10

// ///////////////////////////////////////////////
// Checker
// ///////////////////////////////////////////////

// Checker reads the latest release version from a manifest URL.
//
// The manifest is a JSON object of version strings; the "." key holds the
// latest stable release.
type Checker struct {
	url    string
	client *retryablehttp.Client
}

// NewChecker returns a Checker for manifestURL. An empty URL disables checks.
func NewChecker(manifestURL string, timeout time.Duration) *Checker {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = 500 * time.Millisecond
	client.HTTPClient.Timeout = timeout
	client.Logger = nil
	return &Checker{url: manifestURL, client: client}
}

// ///////////////////////////////////////////////
// Public API
// ///////////////////////////////////////////////

// Check fetches the release manifest and logs if a newer version is available.
// It returns the latest version and whether it is newer than current.
// Failures are logged at debug and reported as ("", false).
func (c *Checker) Check(ctx context.Context, current string) (string, bool) {
	if c.url == "" {
		slog.Debug("skipping version check: no manifest URL configured")
		return "", false
	}
	latest, err := c.Latest(ctx)
	if err != nil {
		slog.Debug("version check failed", "error", err)
		return "", false
	}
	if latest == "" || latest == current {
		return latest, false
	}
	if semverLess(current, latest) {
		slog.Info("new version available", "current", current, "latest", latest)
		return latest, true
	}
	return latest, false
}

// Latest downloads the manifest and returns the version stored under ".".
func (c *Checker) Latest(ctx context.Context) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: status %d", c.url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	return ParseManifest(body)
}

// ParseManifest returns the latest stable version from release manifest
// JSON, or "" if the manifest has no "." entry.
func ParseManifest(data []byte) (string, error) {
	var manifest map[string]string
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", fmt.Errorf("parsing manifest: %w", err)
	}
	return manifest["."], nil
}

// ///////////////////////////////////////////////
// Version Comparison
// ///////////////////////////////////////////////

// semverLess returns true if a < b using simple numeric comparison.
// Handles versions like "0.1.0", "1.2.3". Non-semver strings are not compared.
// A pre-release version is less than the same version without one
// (e.g., "0.1.0-dev" < "0.1.0").
func semverLess(a, b string) bool {
	pa := parseSemver(a)
	pb := parseSemver(b)
	if pa == nil || pb == nil {
		return false
	}
	for i := 0; i < 3; i++ {
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	return hasPreRelease(a) && !hasPreRelease(b)
}

// hasPreRelease reports whether a version string carries a pre-release suffix.
func hasPreRelease(s string) bool {
	return strings.Contains(strings.TrimPrefix(s, "v"), "-")
}

// parseSemver splits "v1.2.3" or "0.1.0-dev" into [major, minor, patch].
// Returns nil if the string is not valid semver.
func parseSemver(s string) []int {
	parts := strings.SplitN(strings.TrimPrefix(s, "v"), ".", 3)
	if len(parts) != 3 {
		return nil
	}
	result := make([]int, 3)
	for i, p := range parts {
		if idx := strings.IndexAny(p, "-+"); idx >= 0 {
			p = p[:idx]
		}
		if p == "" {
			return nil
		}
		n := 0
		for _, c := range p {
			if c < '0' || c > '9' {
				return nil
			}
			n = n*10 + int(c-'0')
		}
		result[i] = n
	}
	return result
}
