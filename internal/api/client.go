package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/renaix/chat-client/internal/logger"
	"github.com/renaix/chat-client/internal/session"
)

type Options struct {
	BaseURL            string
	Timeout            time.Duration
	RetryMaxElapsed    time.Duration
	RatePerSecond      int
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration
	Tokens             session.TokenProvider
	Logger             *zap.SugaredLogger
}

// Client is the transport collaborator: it owns connection reuse, retry,
// rate limiting and circuit breaking. Result normalization lives in
// Resolve, not here.
type Client struct {
	base            string
	http            *http.Client
	tokens          session.TokenProvider
	breaker         *gobreaker.CircuitBreaker
	limiter         *rate.Limiter
	retryMaxElapsed time.Duration
	log             *zap.SugaredLogger
}

func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RetryMaxElapsed == 0 {
		opts.RetryMaxElapsed = 20 * time.Second
	}
	if opts.RatePerSecond == 0 {
		opts.RatePerSecond = 10
	}
	if opts.BreakerMaxFailures == 0 {
		opts.BreakerMaxFailures = 5
	}
	if opts.BreakerTimeout == 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	tr := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}

	st := gobreaker.Settings{
		Name:    "renaix-api",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Infow("circuit breaker state", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &Client{
		base:            strings.TrimRight(opts.BaseURL, "/"),
		http:            &http.Client{Transport: tr, Timeout: opts.Timeout},
		tokens:          opts.Tokens,
		breaker:         gobreaker.NewCircuitBreaker(st),
		limiter:         rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.RatePerSecond),
		retryMaxElapsed: opts.RetryMaxElapsed,
		log:             log,
	}
}

// Call performs one API call and resolves the envelope into a payload of
// type T or an *Error. fallback is the operation's failure message when
// the server does not supply one.
func Call[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any, fallback string) (*T, error) {
	raw, err := c.do(ctx, method, path, query, body)
	var env *Envelope[T]
	if err == nil {
		env = new(Envelope[T])
		if uerr := json.Unmarshal(raw, env); uerr != nil {
			err = uerr
		}
	}
	return Resolve(env, err, fallback)
}

// CallEmpty is Call for operations with no response payload.
func CallEmpty(ctx context.Context, c *Client, method, path string, query url.Values, body any, fallback string) error {
	raw, err := c.do(ctx, method, path, query, body)
	var env *Envelope[json.RawMessage]
	if err == nil {
		env = new(Envelope[json.RawMessage])
		if uerr := json.Unmarshal(raw, env); uerr != nil {
			err = uerr
		}
	}
	return ResolveEmpty(env, err, fallback)
}

// do runs the request with retry on transport errors and 5xx. Non-5xx
// responses are returned as-is: the envelope carries the failure and is
// not the transport's concern.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = b
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	reqID := uuid.NewString()

	attempt := func() ([]byte, error) {
		var rd io.Reader
		if payload != nil {
			rd = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, rd)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", reqID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.tokens != nil {
			tok, err := c.tokens.Token()
			if err != nil {
				return nil, backoff.Permanent(err)
			}
			req.Header.Set("Authorization", "Bearer "+tok)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			c.log.Warnw("server error, retrying", "method", method, "path", path, "status", resp.StatusCode, "request_id", reqID)
			return nil, &serverError{status: resp.StatusCode, body: b}
		}
		return b, nil
	}

	run := func() ([]byte, error) {
		out, err := c.breaker.Execute(func() (interface{}, error) {
			return attempt()
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return out.([]byte), nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxElapsedTime = c.retryMaxElapsed
	res, err := backoff.RetryWithData(run, backoff.WithContext(b, ctx))
	if err != nil {
		// exhausted retries on a 5xx: hand the last body to the decoder,
		// the envelope may still name the failure
		var se *serverError
		if errors.As(err, &se) && len(se.body) > 0 {
			return se.body, nil
		}
		return nil, err
	}
	return res, nil
}

type serverError struct {
	status int
	body   []byte
}

func (e *serverError) Error() string { return http.StatusText(e.status) }
