// Package echo posts profile submissions to the external echo endpoint.
package echo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/stemsi/profile-setup/internal/model"
)

// DefaultURL is the public echo service the profile page submits to.
const DefaultURL = "https://httpbin.org/post"

// Result describes a request that reached the responder.
type Result struct {
	StatusCode int
	Duration   time.Duration
}

// OK reports whether the responder answered with a 2xx status.
func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client issues one POST per submission. It never retries.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request. Zero leaves the transport defaults alone.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// NewClient builds a Client targeting url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{url: url}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{
		Transport: http.DefaultTransport.(*http.Transport).Clone(),
		Timeout:   c.timeout,
	}
	return c
}

// Post sends p as a JSON body. A non-nil error means the request never
// completed; a completed request with any status code returns a nil error.
func (c *Client) Post(ctx context.Context, p model.Profile) (Result, error) {
	body, err := EncodeProfile(p)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		return Result{Duration: duration}, fmt.Errorf("post profile: %w", err)
	}
	defer resp.Body.Close()

	// The echoed body is not interpreted; drain it so the connection is reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	return Result{StatusCode: resp.StatusCode, Duration: duration}, nil
}

// EncodeProfile renders the request body exactly as {"major":...,"year":...}
// with values copied verbatim. encoding/json escapes U+2028 and U+2029 even
// without HTML escaping, so those are written back as raw characters.
func EncodeProfile(p model.Profile) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators replaces the \u2028 and \u2029 escapes in encoded
// JSON with the characters themselves. Escape pairs are skipped whole so an
// escaped backslash followed by "u2028" is left alone.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		switch rest := b[i+1:]; {
		case bytes.HasPrefix(rest, []byte("u2028")):
			out = utf8.AppendRune(out, '\u2028')
			i += 5
		case bytes.HasPrefix(rest, []byte("u2029")):
			out = utf8.AppendRune(out, '\u2029')
			i += 5
		default:
			out = append(out, b[i], b[i+1])
			i++
		}
	}
	return out
}
