package rest

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"expensedash/internal/log"
	"expensedash/internal/metrics"
)

const maxBodyBytes = 4 << 20

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	InsecureTLS bool
	Logger      *log.Logger
	// HTTPClient overrides the pooled client built from the other options.
	HTTPClient *http.Client
}

// Client talks to the remote REST backend. All resources share one
// transport and one error taxonomy.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *log.Logger
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		transport := &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		}
		if opts.InsecureTLS {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // self-signed local backend
		}
		hc = &http.Client{Transport: transport, Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	return &Client{
		base:   base,
		http:   hc,
		logger: logger.WithComponent(log.ComponentREST),
	}, nil
}

// call performs one request and returns the body of a 2xx response.
func (c *Client) call(ctx context.Context, resource, op, method, path string, query url.Values, payload any) (body []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.BackendRequests.WithLabelValues(resource, op, metrics.Outcome(err)).Inc()
		metrics.BackendDuration.WithLabelValues(resource, op).Observe(time.Since(start).Seconds())
		fields := log.NewFields().WithEntity(resource, 0).WithOperation(op)
		fields[log.FieldURL] = path
		fields[log.FieldDuration] = time.Since(start).Milliseconds()
		if err != nil {
			c.logger.ErrorContext(ctx, "Backend call failed", fields.WithError(err).ToSlice()...)
			return
		}
		c.logger.DebugContext(ctx, "Backend call succeeded", fields.ToSlice()...)
	}()

	u := *c.base
	u.Path = c.base.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", resource, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: truncate(bytes.TrimSpace(body))}
	}
	return body, nil
}

// IsTimeout reports whether err came from a deadline or client timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
