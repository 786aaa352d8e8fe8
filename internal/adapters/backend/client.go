// internal/adapters/backend/client.go
package backend

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

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"flight_gateway/internal/adapters/observability"
	"flight_gateway/internal/domain"
)

const (
	UserHeader = "X-User-Name"

	maxErrorBody = 64 << 10
)

type Options struct {
	Timeout         time.Duration // per call; 0 leaves only the caller's deadline
	RPS             int           // 0 disables client-side limiting
	BreakerFailures uint32        // consecutive infra faults before opening; 0 disables
	BreakerCooldown time.Duration
	Transport       http.RoundTripper
}

// Client is shared by all in-flight requests of one backend.
type Client struct {
	service string
	base    string
	hc      *http.Client
	rl      *rate.Limiter
	cb      *gobreaker.CircuitBreaker
}

func newClient(service, base string, o Options) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("%s: base URL is required", service)
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("%s: bad base URL: %w", service, err)
	}
	c := &Client{
		service: service,
		base:    strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: o.Timeout, Transport: o.Transport},
	}
	if o.RPS > 0 {
		c.rl = rate.NewLimiter(rate.Limit(o.RPS), o.RPS)
	}
	if o.BreakerFailures > 0 {
		c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    service,
			Timeout: o.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= o.BreakerFailures
			},
			// a backend that answered, whatever the status, is healthy
			IsSuccessful: func(err error) bool {
				var be *domain.BackendError
				return err == nil || errors.As(err, &be) || errors.Is(err, context.Canceled)
			},
		})
	}
	return c, nil
}

// call is one outbound request. endpoint is the route template used as the
// metrics label. in is JSON-encoded when non-nil; out is decoded from a 2xx
// body when non-nil.
type call struct {
	method   string
	endpoint string
	path     string
	query    url.Values
	username string
	in       any
	out      any
}

func (c *Client) do(ctx context.Context, cl call) error {
	if c.cb == nil {
		return c.roundTrip(ctx, cl)
	}
	_, err := c.cb.Execute(func() (any, error) { return nil, c.roundTrip(ctx, cl) })
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		observability.ObserveExternal(c.service, cl.endpoint, 0, 0)
		return &domain.InfraError{Service: c.service, Err: err}
	}
	return err
}

// roundTrip sends the request and classifies the answer: 2xx decodes into
// cl.out, any other status becomes a BackendError carrying the raw body,
// everything else is an InfraError. No retries.
func (c *Client) roundTrip(ctx context.Context, cl call) error {
	if c.rl != nil {
		if err := c.rl.Wait(ctx); err != nil {
			return &domain.InfraError{Service: c.service, Err: err}
		}
	}

	u := c.base + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.in != nil {
		b, err := json.Marshal(cl.in)
		if err != nil {
			return &domain.InfraError{Service: c.service, Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return &domain.InfraError{Service: c.service, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "flight-gateway/1.0")
	if cl.in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.username != "" {
		req.Header.Set(UserHeader, cl.username)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(c.service, cl.endpoint, 0, time.Since(start))
		return &domain.InfraError{Service: c.service, Err: err}
	}
	defer resp.Body.Close()
	observability.ObserveExternal(c.service, cl.endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if err != nil {
			return &domain.InfraError{Service: c.service, Err: err}
		}
		return &domain.BackendError{Service: c.service, Status: resp.StatusCode, Body: string(b)}
	}

	if cl.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return &domain.InfraError{Service: c.service, Err: fmt.Errorf("decode %s %s: %w", cl.method, cl.endpoint, err)}
	}
	return nil
}
