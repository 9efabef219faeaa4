package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	// maxResponseBytes bounds how much of an upstream body is buffered.
	maxResponseBytes = 10 << 20

	// maxErrorSnippet bounds the upstream body kept in error messages (server logs only).
	maxErrorSnippet = 512

	defaultConnectTimeout = 30 * time.Second
	defaultPingTimeout    = 2 * time.Second
)

// Config holds the upstream settings for a Client.
type Config struct {
	// URL of the upstream prediction endpoint, e.g. http://127.0.0.1:5000/predict.
	URL string
	// Timeout bounds a whole forward. Zero leaves only transport defaults.
	Timeout time.Duration
	// ConnectTimeout bounds the TCP dial. Zero uses 30s.
	ConnectTimeout time.Duration
	// Transport overrides the HTTP transport (optional).
	Transport http.RoundTripper
}

// Client forwards prediction payloads to a single upstream. It holds no
// per-request state and is safe for concurrent use.
type Client struct {
	url        string
	probeAddr  string
	timeout    time.Duration
	httpClient *http.Client
}

// New validates cfg and constructs a Client.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("upstream url must be absolute http(s): %q", cfg.URL)
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	tr := cfg.Transport
	if tr == nil {
		tr = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   connectTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
	}
	timeout := cfg.Timeout
	if timeout < 0 {
		timeout = 0
	}
	// Timeout stays 0 on the http.Client; deadlines travel on the request context.
	return &Client{
		url:        u.String(),
		probeAddr:  hostPort(u),
		timeout:    timeout,
		httpClient: &http.Client{Transport: tr, Timeout: 0},
	}, nil
}

// URL returns the configured upstream URL.
func (c *Client) URL() string { return c.url }

// Predict POSTs payload to the upstream unchanged and returns the upstream
// body unchanged when the upstream answers 2xx with well-formed JSON.
func (c *Client) Predict(ctx context.Context, payload []byte) ([]byte, error) {
	start := time.Now()
	body, err := c.forward(ctx, payload)
	observeUpstream(outcomeOf(err), time.Since(start))
	return body, err
}

func (c *Client) forward(ctx context.Context, payload []byte) ([]byte, error) {
	logger := zerolog.Ctx(ctx)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if rid := RequestIDFrom(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}

	logger.Info().Str("upstream", c.url).Int("bytes", len(payload)).Msg("forwarding prediction request")
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isUnreachable(err) {
			return nil, ErrUnavailable(err)
		}
		return nil, fmt.Errorf("forward prediction: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}
	logger.Debug().
		Int("upstream_status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("dur", time.Since(start)).
		Msg("upstream responded")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrUpstreamStatus(resp.StatusCode, snippet(body))
	}
	if len(body) > maxResponseBytes {
		return nil, ErrInvalidResponse("body exceeds " + strconv.Itoa(maxResponseBytes) + " bytes")
	}
	if !json.Valid(body) {
		return nil, ErrInvalidResponse("body is not valid JSON: " + strconv.Quote(snippet(body)))
	}
	return body, nil
}

// Ping checks that the upstream host accepts TCP connections.
func (c *Client) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultPingTimeout)
		defer cancel()
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.probeAddr)
	if err != nil {
		return ErrUnavailable(err)
	}
	return conn.Close()
}

func hostPort(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port)
}

func snippet(b []byte) string {
	if len(b) > maxErrorSnippet {
		b = b[:maxErrorSnippet]
	}
	return string(b)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsUnavailable(err):
		return "unavailable"
	case IsUpstreamStatus(err):
		return "upstream_status"
	case IsInvalidResponse(err):
		return "invalid_response"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
