// internal/adapters/provider/client.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"place_reviews/internal/adapters/observability"
	"place_reviews/internal/domain"
)

const (
	maxBodyBytes    = 16 << 20
	maxDetailsBytes = 4096
)

// Authenticator attaches credentials to an outbound request.
type Authenticator func(r *http.Request)

// HeaderKey sends the key in a request header.
func HeaderKey(header, key string) Authenticator {
	return func(r *http.Request) {
		if key != "" {
			r.Header.Set(header, key)
		}
	}
}

// QueryKey sends the key as a query parameter.
func QueryKey(param, key string) Authenticator {
	return func(r *http.Request) {
		if key == "" {
			return
		}
		q := r.URL.Query()
		q.Set(param, key)
		r.URL.RawQuery = q.Encode()
	}
}

// Client issues single calls against one provider. It never retries; the
// caller decides what a failure means.
type Client struct {
	name    string
	base    string
	host    string
	hc      *http.Client
	auth    Authenticator
	timeout time.Duration
}

func New(name, base string, auth Authenticator, timeout time.Duration) (*Client, error) {
	u, err := url.ParseRequestURI(base)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid base URL %q: %w", name, base, err)
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if auth == nil {
		auth = func(*http.Request) {}
	}
	return &Client{
		name:    name,
		base:    strings.TrimRight(base, "/"),
		host:    u.Host,
		hc:      &http.Client{},
		auth:    auth,
		timeout: timeout,
	}, nil
}

func (c *Client) Name() string { return c.name }

// Call performs req and decodes the body as JSON. Failures are reported as
// domain.ErrTransport, domain.ErrProvider or domain.ErrMalformed.
func (c *Client) Call(ctx context.Context, req domain.Request) (domain.Raw, error) {
	target, err := c.resolve(req)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInput, c.name+": bad request target", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	method := req.Method
	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, domain.WrapError(domain.ErrInput, c.name+": encode request body", err)
		}
		body = bytes.NewReader(b)
		if method == "" {
			method = http.MethodPost
		}
	}
	if method == "" {
		method = http.MethodGet
	}

	hreq, err := http.NewRequestWithContext(callCtx, method, target, body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInput, c.name+": build request", err)
	}
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("User-Agent", "place-reviews/1.0")
	if body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	// absolute endpoints (poll locations) may point anywhere; keys only go to the base host
	if strings.EqualFold(hreq.URL.Host, c.host) {
		c.auth(hreq)
	}

	op := req.Op
	if op == "" {
		op = "call"
	}

	start := time.Now()
	resp, err := c.hc.Do(hreq)
	if err != nil {
		observability.ObserveExternal(c.name, op, 0, time.Since(start))
		// caller went away: surface the context error untouched
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, domain.WrapError(domain.ErrTransport, c.name+" request timed out", context.DeadlineExceeded)
		}
		return nil, domain.WrapError(domain.ErrTransport, c.name+" request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	observability.ObserveExternal(c.name, op, resp.StatusCode, time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.WrapError(domain.ErrTransport, c.name+" response read failed", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewError(domain.ErrProvider,
			fmt.Sprintf("%s %s failed with status %d", c.name, op, resp.StatusCode),
			clip(raw))
	}

	out, err := decode(raw)
	if err != nil {
		return nil, domain.NewError(domain.ErrMalformed,
			fmt.Sprintf("%s %s returned malformed JSON", c.name, op), clip(raw))
	}
	return out, nil
}

func (c *Client) resolve(req domain.Request) (string, error) {
	target := req.Endpoint
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = c.base + "/" + strings.TrimLeft(target, "/")
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if len(req.Params) > 0 {
		q := u.Query()
		for k, vs := range req.Params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// decode accepts an object, or an array which is exposed as {"data": [...]}.
func decode(raw []byte) (domain.Raw, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case []any:
		return domain.Raw{"data": t}, nil
	}
	return nil, fmt.Errorf("unexpected JSON root %T", v)
}

func clip(b []byte) string {
	if len(b) > maxDetailsBytes {
		b = b[:maxDetailsBytes]
	}
	return strings.TrimSpace(string(b))
}
