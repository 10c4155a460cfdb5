package update

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

// ///////////////////////////////////////////////
// parseSemver Tests
// ///////////////////////////////////////////////

func TestParseSemver(t *testing.T) {
	tests := []struct {
		input string
		want  []int
	}{
		{"1.2.3", []int{1, 2, 3}},
		{"v1.2.3", []int{1, 2, 3}},
		{"0.0.0", []int{0, 0, 0}},
		{"0.0.0-dev", []int{0, 0, 0}},
		{"1.0.0-beta+build123", []int{1, 0, 0}},
		{"v0.1.0", []int{0, 1, 0}},
		{"10.20.30", []int{10, 20, 30}},
		{"1.2.3-rc.1", []int{1, 2, 3}},
		{"1.2.3+metadata", []int{1, 2, 3}},

		// Invalid inputs should return nil.
		{"", nil},
		{"1.2", nil},
		{"1", nil},
		{"not.a.version", nil},
		{"v", nil},
		{"1.2.x", nil},
		{"a.b.c", nil},
		{"1.2.3.4", nil}, // SplitN with 3 means "3.4" is treated as one part; "3.4" has no '-' or '+', and '.' is not a digit, so nil
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseSemver(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseSemver(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// semverLess Tests
// ///////////////////////////////////////////////

func TestSemverLess(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"equal versions", "1.2.3", "1.2.3", false},
		{"a < b major", "0.9.9", "1.0.0", true},
		{"a > b major", "2.0.0", "1.9.9", false},
		{"a < b minor", "1.0.0", "1.1.0", true},
		{"a > b minor", "1.2.0", "1.1.0", false},
		{"a < b patch", "1.0.0", "1.0.1", true},
		{"a > b patch", "1.0.2", "1.0.1", false},
		{"with v prefix", "v0.1.0", "v0.2.0", true},
		{"mixed prefix", "0.1.0", "v0.2.0", true},
		{"pre-release stripped", "0.0.0-dev", "0.1.0", true},
		{"same with pre-release", "1.0.0-alpha", "1.0.0-beta", false}, // both parse to 1.0.0; no ordering between different pre-releases
		{"pre-release less than release", "0.1.0-dev", "0.1.0", true},
		{"release not less than pre-release", "0.1.0", "0.1.0-dev", false},
		{"pre-release less than release with v", "v1.0.0-rc.1", "v1.0.0", true},
		{"both pre-release equal numeric", "1.0.0-alpha", "1.0.0-alpha", false},
		{"invalid a", "invalid", "1.0.0", false},
		{"invalid b", "1.0.0", "invalid", false},
		{"both invalid", "foo", "bar", false},
		{"empty a", "", "1.0.0", false},
		{"empty b", "1.0.0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := semverLess(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("semverLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Check Tests (via httptest mock)
// ///////////////////////////////////////////////

func manifestServer(t *testing.T, manifest map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(manifest)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		latest     string
		current    string
		wantLatest string
		wantNewer  bool
	}{
		{"newer version available", "1.2.0", "1.0.0", "1.2.0", true},
		{"same version", "1.0.0", "1.0.0", "1.0.0", false},
		{"running ahead", "1.0.0", "1.1.0", "1.0.0", false},
		{"dev build behind release", "0.2.0", "0.2.0-dev", "0.2.0", true},
		{"missing key", "", "1.0.0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifest := map[string]string{}
			if tt.latest != "" {
				manifest["."] = tt.latest
			}
			server := manifestServer(t, manifest)

			c := NewChecker(server.URL, time.Second)
			latest, newer := c.Check(context.Background(), tt.current)
			if latest != tt.wantLatest || newer != tt.wantNewer {
				t.Errorf("Check(%q) = (%q, %v), want (%q, %v)", tt.current, latest, newer, tt.wantLatest, tt.wantNewer)
			}
		})
	}
}

func TestCheck_EmptyManifestURL(t *testing.T) {
	latest, newer := NewChecker("", time.Second).Check(context.Background(), "1.0.0")
	if latest != "" || newer {
		t.Errorf("Check = (%q, %v), want disabled", latest, newer)
	}
}

func TestCheck_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	latest, newer := NewChecker(url, 200*time.Millisecond).Check(context.Background(), "1.0.0")
	if latest != "" || newer {
		t.Errorf("Check = (%q, %v), want failure swallowed", latest, newer)
	}
}

// ///////////////////////////////////////////////
// Latest Tests
// ///////////////////////////////////////////////

func TestLatest_Non200(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	if _, err := NewChecker(server.URL, time.Second).Latest(context.Background()); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestLatest_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{".": "3.1.4"}`))
	}))
	defer server.Close()

	version, err := NewChecker(server.URL, time.Second).Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if version != "3.1.4" || hits.Load() != 2 {
		t.Errorf("version = %q after %d requests, want 3.1.4 after 2", version, hits.Load())
	}
}

func TestLatest_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	if _, err := NewChecker(server.URL, time.Second).Latest(context.Background()); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLatest_ValidManifest(t *testing.T) {
	server := manifestServer(t, map[string]string{".": "2.0.0", "1": "1.9.0"})

	version, err := NewChecker(server.URL, time.Second).Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if version != "2.0.0" {
		t.Errorf("version = %q, want %q", version, "2.0.0")
	}
}

func TestLatest_Canceled(t *testing.T) {
	server := manifestServer(t, map[string]string{".": "2.0.0"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewChecker(server.URL, time.Second).Latest(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

// ///////////////////////////////////////////////
// ParseManifest Tests
// ///////////////////////////////////////////////

func TestParseManifest(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    string
		wantErr bool
	}{
		{"root entry", `{".": "0.4.1"}`, "0.4.1", false},
		{"no root entry", `{"cmd": "1.0.0"}`, "", false},
		{"not json", `nope`, "", true},
		{"wrong shape", `{".": 3}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseManifest([]byte(tt.data))
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseManifest = (%q, %v), want (%q, wantErr %v)", got, err, tt.want, tt.wantErr)
			}
		})
	}
}
