// Package flywheel implements the hierarchy store contract over the
// container store's REST API.
package flywheel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/flywheel-apps/roi-import/internal/conf"
	"github.com/flywheel-apps/roi-import/internal/errors"
)

const (
	defaultTimeout = 30 * time.Second

	// Connection pool settings
	maxIdleConns        = 100
	maxIdleConnsPerHost = 10
	idleConnTimeout     = 90 * time.Second

	tlsHandshakeTimeout   = 10 * time.Second
	responseHeaderTimeout = 10 * time.Second
	dialTimeout           = 30 * time.Second
	dialKeepAlive         = 30 * time.Second

	defaultUserAgent = "ROI-Import"
)

// APIError is a non-2xx response from the store API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed with status %d: %s", e.Status, e.Body)
}

// Client talks to the container store's REST API. Thread-safe for
// concurrent use.
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	userAgent string
}

// NewClient builds a client from the connection settings. The API key is of
// the form "host[:port]:secret"; the host part derives the base URL unless an
// explicit host override is set.
func NewClient(settings *conf.FlywheelSettings) (*Client, error) {
	if settings.APIKey == "" {
		return nil, errors.Newf("no API key configured").
			Component("flywheel").
			Category(errors.CategoryConfiguration).
			Build()
	}

	baseURL, secret, err := splitAPIKey(settings.APIKey, settings.Host)
	if err != nil {
		return nil, errors.New(err).
			Component("flywheel").
			Category(errors.CategoryConfiguration).
			Build()
	}

	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: dialKeepAlive,
		}).DialContext,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdleConnsPerHost,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ResponseHeaderTimeout: responseHeaderTimeout,
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		baseURL:   baseURL,
		apiKey:    secret,
		userAgent: defaultUserAgent,
	}, nil
}

// splitAPIKey separates the host part from the trailing secret.
func splitAPIKey(key, hostOverride string) (baseURL, secret string, err error) {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		if hostOverride == "" {
			return "", "", fmt.Errorf("api key must be of form host[:port]:secret")
		}
		return strings.TrimSuffix(hostOverride, "/"), key, nil
	}

	secret = key[idx+1:]
	host := key[:idx]
	if hostOverride != "" {
		return strings.TrimSuffix(hostOverride, "/"), secret, nil
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return strings.TrimSuffix(host, "/"), secret, nil
}

// doJSON performs a request and decodes the JSON response into out.
// Numbers decode as json.Number so downstream normalization controls the
// final scalar types.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.New(err).
				Component("flywheel").
				Category(errors.CategoryStore).
				Context("operation", "encode-request").
				Build()
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return errors.New(err).
			Component("flywheel").
			Category(errors.CategoryStore).
			Context("path", path).
			Build()
	}

	req.Header.Set("Authorization", "scitran-user "+c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.New(err).
			Component("flywheel").
			Category(errors.CategoryNetwork).
			Context("method", method).
			Context("path", path).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	if out == nil {
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return errors.New(err).
			Component("flywheel").
			Category(errors.CategoryStore).
			Context("operation", "decode-response").
			Context("path", path).
			Build()
	}

	return nil
}
