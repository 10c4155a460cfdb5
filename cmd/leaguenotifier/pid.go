package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ///////////////////////////////////////////////
// Single Instance Lock
// ///////////////////////////////////////////////

// instanceLock is an advisory lock on the PID file. The file holds
// "PID:TOKEN"; the token lets Release skip removal if another instance has
// since taken the file over.
type instanceLock struct {
	path  string
	token string
	f     *os.File
}

// alreadyRunningError reports that another instance holds the lock.
type alreadyRunningError struct {
	pid int
}

func (e *alreadyRunningError) Error() string {
	if e.pid == 0 {
		return "another instance is already running"
	}
	return fmt.Sprintf("another instance is already running (pid %d)", e.pid)
}

// pidToken generates a random 16-character hex token.
func pidToken() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// acquireLock opens or creates the PID file at path and locks it. A file
// left behind by a crashed instance is not locked, so it is simply taken
// over. The lock is held until Release.
func acquireLock(path string) (*instanceLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open PID file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		pid, _, _ := readPID(path)
		return nil, &alreadyRunningError{pid: pid}
	}

	l := &instanceLock{path: path, token: pidToken(), f: f}
	if err := f.Truncate(0); err != nil {
		l.unlock()
		return nil, fmt.Errorf("truncate PID file: %w", err)
	}
	if _, err := f.WriteAt([]byte(fmt.Sprintf("%d:%s", os.Getpid(), l.token)), 0); err != nil {
		l.unlock()
		return nil, fmt.Errorf("write PID file: %w", err)
	}
	if err := f.Sync(); err != nil {
		l.unlock()
		return nil, fmt.Errorf("sync PID file: %w", err)
	}
	return l, nil
}

// Release unlocks the PID file and removes it if this instance still owns it.
func (l *instanceLock) Release() {
	if l == nil {
		return
	}
	l.unlock()
	if _, token, err := readPID(l.path); err == nil && token == l.token {
		os.Remove(l.path)
	}
}

func (l *instanceLock) unlock() {
	if l.f == nil {
		return
	}
	_ = unlockFile(l.f)
	l.f.Close()
	l.f = nil
}

// readPID parses a "PID:TOKEN" file.
func readPID(path string) (pid int, token string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, "", err
	}
	pidStr, token, _ := strings.Cut(strings.TrimSpace(string(data)), ":")
	pid, err = strconv.Atoi(pidStr)
	if err != nil {
		return 0, "", fmt.Errorf("parse PID file: %w", err)
	}
	return pid, token, nil
}
