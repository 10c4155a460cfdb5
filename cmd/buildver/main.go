// Package main prints a SemVer build version string for -X main.version.
//
// Output format depends on git state:
//
//	No tags, clean:     0.1.0-dev+05ffee5
//	No tags, dirty:     0.1.0-dev+05ffee5.dirty
//	On tag v0.1.0:      0.1.0
//	Dirty tag:          0.1.0-dirty
//	3 past v0.1.0:      0.1.0-dev.3+g1234567
//	Same but dirty:     0.1.0-dev.3+g1234567.dirty
//
// The untagged base comes from the release manifest.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"tools.zach/dev/leaguenotifier/internal/paths"
	"tools.zach/dev/leaguenotifier/internal/update"
)

// gitFunc runs git with args and returns trimmed stdout.
type gitFunc func(args ...string) (string, error)

func runGit(args ...string) (string, error) {
	out, err := exec.Command("git", args...).Output()
	return strings.TrimSpace(string(out)), err
}

func main() {
	fmt.Print(buildVersion(runGit, baseVersion(paths.ReleaseManifest)))
}

// buildVersion describes the checkout against v* tags, falling back to
// base-dev+<hash> when there are none.
func buildVersion(git gitFunc, base string) string {
	if desc, err := git("describe", "--tags", "--match", "v*", "--dirty"); err == nil && desc != "" {
		return formatTaggedVersion(desc)
	}

	hash, err := git("rev-parse", "--short=7", "HEAD")
	if err != nil || hash == "" {
		return base + "-dev"
	}
	if status, err := git("status", "--porcelain"); err == nil && status != "" {
		return fmt.Sprintf("%s-dev+%s.dirty", base, hash)
	}
	return fmt.Sprintf("%s-dev+%s", base, hash)
}

// formatTaggedVersion converts git describe output such as
// "v0.1.0-3-g1234567-dirty" into "0.1.0-dev.3+g1234567.dirty".
func formatTaggedVersion(desc string) string {
	dirty := strings.HasSuffix(desc, "-dirty")
	clean := strings.TrimPrefix(strings.TrimSuffix(desc, "-dirty"), "v")

	// git describe format: <tag>-<N>-g<abbreviated-hash>
	if rest, hash, ok := cutLast(clean, "-"); ok && strings.HasPrefix(hash, "g") {
		if tag, n, ok := cutLast(rest, "-"); ok && isDigits(n) {
			meta := hash
			if dirty {
				meta += ".dirty"
			}
			return fmt.Sprintf("%s-dev.%s+%s", tag, n, meta)
		}
	}

	if dirty {
		return clean + "-dirty"
	}
	return clean
}

// cutLast splits s around the last sep.
func cutLast(s, sep string) (before, after string, ok bool) {
	i := strings.LastIndex(s, sep)
	if i <= 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// baseVersion reads the "." entry of the manifest at path, or "0.0.0".
func baseVersion(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "0.0.0"
	}
	v, err := update.ParseManifest(data)
	if err != nil || v == "" {
		return "0.0.0"
	}
	return v
}
