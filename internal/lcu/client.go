package lcu

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"tools.zach/dev/leaguenotifier/internal/roster"
)

// FriendsPath is the chat endpoint returning the friend roster.
const FriendsPath = "/lol-chat/v1/friends"

// maxBodyBytes caps how much of a roster response is read.
const maxBodyBytes = 8 << 20

// ///////////////////////////////////////////////
// Client
// ///////////////////////////////////////////////

// Client fetches the friend roster from a running client. The session found
// by the [Locator] is cached until [Client.Invalidate] is called or a request
// fails at the transport level.
type Client struct {
	// locator finds a session when none is cached.
	locator *Locator
	// http talks to the loopback API; it trusts the client's self-signed
	// certificate and never dials anything but 127.0.0.1.
	http *http.Client

	// mu guards session.
	mu sync.Mutex
	// session is the cached session, nil when discovery must run again.
	session *Session
}

// NewClient returns a Client that discovers sessions with loc and bounds each
// request by timeout.
func NewClient(loc *Locator, timeout time.Duration) *Client {
	dialer := &net.Dialer{Timeout: timeout}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
				return nil, fmt.Errorf("refusing non-loopback address %s", addr)
			}
			return dialer.DialContext(ctx, network, addr)
		},
		// The client serves a certificate signed by a private root.
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		MaxIdleConns:        2,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: timeout,
	}
	return &Client{
		locator: loc,
		http:    &http.Client{Transport: transport, Timeout: timeout},
	}
}

// Session returns the cached session or runs discovery.
func (c *Client) Session(ctx context.Context) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return *c.session, nil
	}
	s, err := c.locator.Locate(ctx)
	if err != nil {
		return Session{}, err
	}
	c.session = &s
	return s, nil
}

// Invalidate drops the cached session so the next call rediscovers it.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

// Friends fetches the current roster. It returns [ErrClientNotRunning] when no
// client can be found. Transport failures also drop the cached session.
func (c *Client) Friends(ctx context.Context) ([]roster.FriendRecord, error) {
	s, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}

	var friends []roster.FriendRecord
	if err := c.get(ctx, s, FriendsPath, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

// get performs an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, s Session, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL()+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth("riot", s.Password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.Invalidate()
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("GET %s: %w %d", path, ErrUnexpectedStatus, resp.StatusCode)
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// InvalidateOn drops the cached session each time events fires, until ctx is
// done or events is closed.
func (c *Client) InvalidateOn(ctx context.Context, events <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			c.Invalidate()
		}
	}
}
