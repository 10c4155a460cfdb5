// Package lcu talks to the League client's local REST API. It locates a
// running client through its lockfile or process arguments, authenticates
// with the per-launch password, and fetches the chat friend roster.
package lcu

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ///////////////////////////////////////////////
// Errors
// ///////////////////////////////////////////////

var (
	// ErrClientNotRunning is returned when no running client can be found.
	ErrClientNotRunning = errors.New("league client not running")
	// ErrLockfileMalformed is returned when a lockfile does not have the
	// expected five colon-separated fields.
	ErrLockfileMalformed = errors.New("malformed lockfile")
	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// ///////////////////////////////////////////////
// Session
// ///////////////////////////////////////////////

// Session holds what is needed to call one running client instance.
type Session struct {
	// Port is the loopback port the client API listens on.
	Port int
	// Password is the basic-auth password for user "riot".
	Password string
	// Scheme is "https" for every known client build.
	Scheme string
	// PID is the client process ID when known, 0 otherwise.
	PID int
}

// BaseURL returns the root URL of the client API.
func (s Session) BaseURL() string {
	scheme := s.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://127.0.0.1:" + strconv.Itoa(s.Port)
}

// ///////////////////////////////////////////////
// Lockfile
// ///////////////////////////////////////////////

// LockfileName is the file the client writes into its install directory
// while it runs.
const LockfileName = "lockfile"

// ParseLockfile parses the "name:pid:port:password:protocol" lockfile format.
func ParseLockfile(data []byte) (Session, error) {
	parts := strings.Split(strings.TrimSpace(string(data)), ":")
	if len(parts) != 5 {
		return Session{}, fmt.Errorf("%w: %d fields", ErrLockfileMalformed, len(parts))
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return Session{}, fmt.Errorf("%w: pid %q", ErrLockfileMalformed, parts[1])
	}
	port, err := strconv.Atoi(parts[2])
	if err != nil || port <= 0 || port > 65535 {
		return Session{}, fmt.Errorf("%w: port %q", ErrLockfileMalformed, parts[2])
	}
	if parts[3] == "" {
		return Session{}, fmt.Errorf("%w: empty password", ErrLockfileMalformed)
	}
	return Session{
		Port:     port,
		Password: parts[3],
		Scheme:   parts[4],
		PID:      pid,
	}, nil
}

// ReadLockfile reads and parses the lockfile at path. A missing file maps to
// [ErrClientNotRunning].
func ReadLockfile(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, ErrClientNotRunning
		}
		return Session{}, fmt.Errorf("read lockfile: %w", err)
	}
	s, err := ParseLockfile(data)
	if err != nil {
		return Session{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}
