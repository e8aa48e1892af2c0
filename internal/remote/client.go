package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the root URL of the backend, e.g. https://xyz.example.co.
	BaseURL string

	// APIKey is sent as the apikey header on every request.
	APIKey string

	// AccessToken is the member's session token. When empty the API key
	// is used as the bearer token.
	AccessToken string

	// Timeout bounds a single HTTP attempt. Defaults to 30s.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt on
	// 429, 5xx and transport errors. Defaults to 3.
	MaxRetries int

	// RetryInterval is the initial backoff interval. Defaults to 500ms.
	RetryInterval time.Duration

	// BreakerFailures is the number of consecutive failed calls that
	// opens the circuit. Defaults to 5.
	BreakerFailures uint32

	// BreakerCooldown is how long the circuit stays open. Defaults to 30s.
	BreakerCooldown time.Duration

	Logger *zap.Logger
}

// Client is a thin HTTP client for the backend's REST dialect. It handles
// API key authentication, JSON marshaling, retry with exponential backoff,
// and a circuit breaker that fails fast while the backend is down.
type Client struct {
	baseURL     string
	apiKey      string
	accessToken string
	httpClient  *http.Client
	maxRetries  int
	retryBase   time.Duration
	breaker     *gobreaker.CircuitBreaker
	log         *zap.Logger
}

// NewClient creates a backend client from opts.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	} else if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	c := &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		accessToken: opts.AccessToken,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		maxRetries: opts.MaxRetries,
		retryBase:  opts.RetryInterval,
		log:        opts.Logger,
	}

	failures := opts.BreakerFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// Client errors mean the backend is up.
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return !retryable(apiErr.StatusCode)
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Info("circuit breaker state",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return c
}

// request describes one REST call.
type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	prefer []string
}

// response is a successful reply.
type response struct {
	status int
	header http.Header
	body   []byte
}

// decode unmarshals the reply body into result.
func (r *response) decode(result interface{}) error {
	if result == nil || len(r.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, result); err != nil {
		return fmt.Errorf("unmarshaling response: %w", err)
	}
	return nil
}

// total parses the total from a Content-Range header such as "0-9/42" or
// "*/42".
func (r *response) total() (int, error) {
	cr := r.header.Get("Content-Range")
	i := strings.LastIndexByte(cr, '/')
	if i < 0 {
		return 0, fmt.Errorf("missing count in Content-Range %q", cr)
	}
	n, err := strconv.Atoi(cr[i+1:])
	if err != nil {
		return 0, fmt.Errorf("parsing count in Content-Range %q: %w", cr, err)
	}
	return n, nil
}

// do runs req through the circuit breaker with retries.
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	var payload []byte
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.retry(ctx, req, payload)
	})
	if err != nil {
		return nil, err
	}
	return out.(*response), nil
}

func (c *Client) retry(ctx context.Context, req request, payload []byte) (*response, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryBase
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)

	var resp *response
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		r, err := c.attempt(ctx, req, payload)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && !retryable(apiErr.StatusCode) {
				return backoff.Permanent(err)
			}
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			c.log.Debug("retrying backend request",
				zap.String("method", req.method),
				zap.String("path", req.path),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		resp = r
		return nil
	}, policy)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// attempt performs a single HTTP exchange.
func (c *Client) attempt(ctx context.Context, req request, payload []byte) (*response, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	token := c.accessToken
	if token == "" {
		token = c.apiKey
	}
	httpReq.Header.Set("apikey", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if len(req.prefer) > 0 {
		httpReq.Header.Set("Prefer", strings.Join(req.prefer, ","))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request %s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     req.method,
			Path:       req.path,
			Message:    strings.TrimSpace(string(body)),
		}
		var pgErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Hint    string `json:"hint"`
		}
		if json.Unmarshal(body, &pgErr) == nil && pgErr.Message != "" {
			apiErr.Code = pgErr.Code
			apiErr.Message = pgErr.Message
			apiErr.Hint = pgErr.Hint
		}
		return nil, apiErr
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}
