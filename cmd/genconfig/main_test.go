package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"tools.zach/dev/leaguenotifier/internal/config"
)

// ///////////////////////////////////////////////
// parseSectionPath Tests
// ///////////////////////////////////////////////

func TestParseSectionPath(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    []string
	}{
		{"single segment", "notify", []string{"notify"}},
		{"two segments", "notify.sounds", []string{"notify", "sounds"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSectionPath(tt.section)
			if len(got) != len(tt.want) {
				t.Fatalf("parseSectionPath(%q) returned %d segments, want %d", tt.section, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseSectionPath(%q)[%d] = %q, want %q", tt.section, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// ///////////////////////////////////////////////
// sectionName Tests
// ///////////////////////////////////////////////

func TestSectionName(t *testing.T) {
	tests := []struct {
		section string
		want    string
	}{
		{"client", "Client"},
		{"notify.sounds", "Sounds"},
		{"Log", "Log"},
		{"a", "A"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := sectionName(tt.section); got != tt.want {
			t.Errorf("sectionName(%q) = %q, want %q", tt.section, got, tt.want)
		}
	}
}

// ///////////////////////////////////////////////
// injectOmitted Tests
// ///////////////////////////////////////////////

func TestInjectOmittedNoSection(t *testing.T) {
	out := injectOmitted(nil, config.ConfigDocs, nil, map[string]bool{})
	if len(out) != 0 {
		t.Errorf("injectOmitted with nil sectionStack produced %d lines, want 0", len(out))
	}
}

func TestInjectOmittedSkipsEmitted(t *testing.T) {
	docs := map[string]config.FieldDoc{
		"client.lockfile": {Comment: "Explicit path.", Alternatives: []string{`lockfile = "x"`}},
		"client.timeout":  {Comment: "Seconds."},
		"poll.interval":   {Comment: "Other section."},
	}
	emitted := map[string]bool{"client.timeout": true}

	out := injectOmitted(nil, docs, []string{"client"}, emitted)
	got := strings.Join(out, "\n")
	want := "\n# Explicit path.\n# lockfile = \"x\""
	if got != want {
		t.Errorf("injectOmitted = %q, want %q", got, want)
	}
	if !emitted["client.lockfile"] {
		t.Error("omitted key not marked emitted")
	}
}

// ///////////////////////////////////////////////
// render Tests
// ///////////////////////////////////////////////

func TestRenderParsesAsConfig(t *testing.T) {
	out, err := render(config.ExampleConfig(), config.ConfigDocs)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "# ///////////////////////////////////////////////\n# League Notifier Configuration") {
		t.Errorf("missing header:\n%s", out[:min(len(out), 120)])
	}
	for _, want := range []string{"# ///// Client /////", "[notify]", "# lockfile = ", "on_product_mismatch = \"abort_cycle\""} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	cfg := config.DefaultConfig()
	if _, err := toml.Decode(out, cfg); err != nil {
		t.Fatalf("rendered config does not parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("rendered config invalid: %v", err)
	}
}

// The committed config.default.toml must match what go generate produces.
func TestCommittedDefaultIsCurrent(t *testing.T) {
	want, err := render(config.ExampleConfig(), config.ConfigDocs)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got, err := os.ReadFile(filepath.Join("..", "..", "config.default.toml"))
	if err != nil {
		t.Fatalf("read committed default: %v", err)
	}
	if string(got) != want {
		t.Error("config.default.toml is stale; run go generate ./internal/config")
	}
}
