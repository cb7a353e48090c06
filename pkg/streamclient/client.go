// Package streamclient consumes a pointlight server: REST queries for
// actions and single poses, and websocket frame streams.
package streamclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-pointlight/internal/httpc"
	"github.com/teslashibe/go-pointlight/pkg/actions"
	"github.com/teslashibe/go-pointlight/pkg/player"
	"github.com/teslashibe/go-pointlight/pkg/web"
)

// ErrBadURL is returned for server URLs that are not http(s) or ws(s).
var ErrBadURL = errors.New("streamclient: unsupported server url")

// Client talks to one server.
type Client struct {
	httpBase string
	wsBase   string
	http     *http.Client
	dialer   websocket.Dialer
}

// New creates a client for a server base URL such as
// "http://localhost:8080". A bare host:port is treated as http.
func New(server string) (*Client, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadURL, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	httpURL, wsURL := *u, *u
	switch u.Scheme {
	case "http", "ws":
		httpURL.Scheme, wsURL.Scheme = "http", "ws"
	case "https", "wss":
		httpURL.Scheme, wsURL.Scheme = "https", "wss"
	default:
		return nil, fmt.Errorf("%w: %s", ErrBadURL, server)
	}

	return &Client{
		httpBase: httpURL.String(),
		wsBase:   wsURL.String(),
		http:     httpc.Client,
		dialer:   websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}, nil
}

// ActionList is the body of GET /api/actions.
type ActionList struct {
	Actions    []actions.Summary   `json:"actions"`
	Categories map[string][]string `json:"categories"`
}

// Actions lists the server's actions.
func (c *Client) Actions(ctx context.Context) (*ActionList, error) {
	var out ActionList
	if err := httpc.GetJSON(ctx, c.http, c.httpBase+"/api/actions", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search returns the actions matching a query.
func (c *Client) Search(ctx context.Context, q string) ([]actions.Summary, error) {
	var out struct {
		Actions []actions.Summary `json:"actions"`
	}
	u := c.httpBase + "/api/actions?q=" + url.QueryEscape(q)
	if err := httpc.GetJSON(ctx, c.http, u, &out); err != nil {
		return nil, err
	}
	return out.Actions, nil
}

// Pose is a single frame, with the phase name for phase-table actions.
type Pose struct {
	player.Frame
	Phase string `json:"phase,omitempty"`
}

// Pose fetches the pose of an action at time t.
func (c *Client) Pose(ctx context.Context, name string, t float64) (*Pose, error) {
	var out Pose
	u := fmt.Sprintf("%s/api/actions/%s/pose?t=%s", c.httpBase, url.PathEscape(name), formatFloat(t))
	if err := httpc.GetJSON(ctx, c.http, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Frames fetches frames sampled over [from, to] at fps.
func (c *Client) Frames(ctx context.Context, name string, from, to, fps float64) ([]player.Frame, error) {
	var out struct {
		Frames []player.Frame `json:"frames"`
	}
	q := url.Values{}
	q.Set("from", formatFloat(from))
	q.Set("to", formatFloat(to))
	q.Set("fps", formatFloat(fps))
	u := fmt.Sprintf("%s/api/actions/%s/frames?%s", c.httpBase, url.PathEscape(name), q.Encode())
	if err := httpc.GetJSON(ctx, c.http, u, &out); err != nil {
		return nil, err
	}
	return out.Frames, nil
}

// PlayLive starts an action on the shared broadcast.
func (c *Client) PlayLive(ctx context.Context, name string, req web.LiveRequest) error {
	u := fmt.Sprintf("%s/api/live/%s", c.httpBase, url.PathEscape(name))
	return httpc.PostJSON(ctx, c.http, u, req, nil)
}

// StopLive stops the shared broadcast.
func (c *Client) StopLive(ctx context.Context) error {
	return httpc.DoJSON(ctx, c.http, http.MethodDelete, c.httpBase+"/api/live", nil, nil)
}

// Options control a per-connection stream.
type Options struct {
	FPS   float64
	Speed float64
	Loop  bool
	// Format is "json" (default) or "binary".
	Format string
}

// DefaultOptions returns server defaults with looping on.
func DefaultOptions() Options {
	return Options{Loop: true}
}

// Stream opens a per-connection stream of one action and waits for the
// session hello.
func (c *Client) Stream(ctx context.Context, name string, opts Options) (*Stream, error) {
	q := url.Values{}
	if opts.FPS > 0 {
		q.Set("fps", formatFloat(opts.FPS))
	}
	if opts.Speed > 0 {
		q.Set("speed", formatFloat(opts.Speed))
	}
	q.Set("loop", strconv.FormatBool(opts.Loop))
	if opts.Format != "" {
		q.Set("format", opts.Format)
	}

	u := fmt.Sprintf("%s/ws/stream/%s?%s", c.wsBase, url.PathEscape(name), q.Encode())
	ws, err := c.dial(ctx, u)
	if err != nil {
		return nil, err
	}

	hello, err := readHello(ws)
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("stream hello: %w", err)
	}
	return newStream(ws, hello), nil
}

// Live joins the shared broadcast in format ("json", "binary" or empty
// for json).
func (c *Client) Live(ctx context.Context, format string) (*Stream, error) {
	u := c.wsBase + "/ws/live"
	if format != "" {
		u += "?format=" + url.QueryEscape(format)
	}
	ws, err := c.dial(ctx, u)
	if err != nil {
		return nil, err
	}
	return newStream(ws, web.Hello{}), nil
}

func (c *Client) dial(ctx context.Context, u string) (*websocket.Conn, error) {
	ws, resp, err := c.dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket connect failed: %s: %w", resp.Status, err)
		}
		return nil, fmt.Errorf("websocket connect failed: %w", err)
	}
	return ws, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
