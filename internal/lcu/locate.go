package lcu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// ///////////////////////////////////////////////
// Locator
// ///////////////////////////////////////////////

// Locator finds a running client. Sources are tried in order: the explicit
// lockfile path, a lockfile inside each install directory, then the command
// line of a running client process.
type Locator struct {
	// Lockfile is an explicit lockfile path; empty skips this source.
	Lockfile string
	// InstallDirs are searched for a lockfile.
	InstallDirs []string
	// ProcessNames are the executable names of the client UX process.
	ProcessNames []string

	// processes lists processes accepted by match; replaced in tests.
	processes func(ctx context.Context, match func(string) bool) ([]proc, error)
}

// proc is the subset of process information the locator reads.
type proc struct {
	Name string
	Args []string
}

// LockfilePaths returns every lockfile path the locator would read.
func (l *Locator) LockfilePaths() []string {
	var out []string
	if l.Lockfile != "" {
		out = append(out, l.Lockfile)
	}
	for _, dir := range l.InstallDirs {
		out = append(out, filepath.Join(dir, LockfileName))
	}
	return out
}

// Locate returns a session for the first client found, or
// [ErrClientNotRunning].
func (l *Locator) Locate(ctx context.Context) (Session, error) {
	for _, path := range l.LockfilePaths() {
		s, err := ReadLockfile(path)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrClientNotRunning) {
			slog.Debug("lockfile unusable", "path", path, "error", err)
		}
	}

	if len(l.ProcessNames) == 0 {
		return Session{}, ErrClientNotRunning
	}
	list := l.processes
	if list == nil {
		list = listProcesses
	}
	procs, err := list(ctx, l.matchesName)
	if err != nil {
		return Session{}, fmt.Errorf("list processes: %w", err)
	}
	for _, p := range procs {
		if s, ok := sessionFromArgs(p.Args); ok {
			return s, nil
		}
	}
	return Session{}, ErrClientNotRunning
}

// matchesName reports whether name is one of the configured process names,
// ignoring case and a trailing ".exe" on either side.
func (l *Locator) matchesName(name string) bool {
	name = trimExe(name)
	for _, n := range l.ProcessNames {
		if strings.EqualFold(trimExe(n), name) {
			return true
		}
	}
	return false
}

func trimExe(name string) string {
	if len(name) > 4 && strings.EqualFold(name[len(name)-4:], ".exe") {
		return name[:len(name)-4]
	}
	return name
}

// sessionFromArgs extracts --app-port and --remoting-auth-token from a client
// command line. Both must be present.
func sessionFromArgs(args []string) (Session, bool) {
	var s Session
	for _, a := range args {
		a = strings.Trim(a, `"`)
		switch {
		case strings.HasPrefix(a, "--app-port="):
			port, err := strconv.Atoi(strings.TrimPrefix(a, "--app-port="))
			if err == nil && port > 0 && port <= 65535 {
				s.Port = port
			}
		case strings.HasPrefix(a, "--remoting-auth-token="):
			s.Password = strings.TrimPrefix(a, "--remoting-auth-token=")
		}
	}
	if s.Port == 0 || s.Password == "" {
		return Session{}, false
	}
	s.Scheme = "https"
	return s, true
}

// listProcesses reads the argv of every visible process whose name is
// accepted by match. Processes that vanish or deny access while being
// inspected are skipped.
func listProcesses(ctx context.Context, match func(string) bool) ([]proc, error) {
	ps, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]proc, 0, len(ps))
	for _, p := range ps {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if !match(name) {
			continue
		}
		args, err := p.CmdlineSliceWithContext(ctx)
		if err != nil {
			continue
		}
		out = append(out, proc{Name: name, Args: args})
	}
	return out, nil
}
