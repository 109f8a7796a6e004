// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/movie-relay/relay/pkg/defaults"
	relayerrors "github.com/movie-relay/relay/pkg/errors"
)

const (
	// DefaultBaseURL is the TMDB v3 API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultLanguage is the locale requested from the catalog.
	DefaultLanguage = "en-US"
	// DefaultPage is the fixed source page.
	DefaultPage = 1
	// DefaultUserAgent identifies the relay to the catalog.
	DefaultUserAgent = "movie-relay/1.0"

	popularMoviesPath = "/movie/popular"
)

// Option configures a Client.
type Option func(*Client)

// Client calls the upstream movie catalog API. It is safe for concurrent use
// and holds no per-request state.
type Client struct {
	baseURL   string
	token     string
	language  string
	page      int
	timeout   time.Duration
	userAgent string
	http      *http.Client
}

// WithBaseURL sets the API root, e.g. https://api.themoviedb.org/3.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithToken sets the bearer credential sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLanguage sets the language query parameter.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.language = lang
	}
}

// WithPage sets the page query parameter.
func WithPage(page int) Option {
	return func(c *Client) {
		c.page = page
	}
}

// WithTimeout bounds each call, including reading the body. Zero disables
// the per-call bound and leaves only the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a catalog client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		language:  DefaultLanguage,
		page:      DefaultPage,
		timeout:   defaults.UpstreamTimeout,
		userAgent: DefaultUserAgent,
		http:      &http.Client{Transport: newDefaultTransport()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newDefaultTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,

		// Connection pooling
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,

		// Timeouts
		DialContext: (&net.Dialer{
			Timeout:   defaults.HTTPConnectTimeout,
			KeepAlive: defaults.HTTPKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   defaults.HTTPTLSHandshakeTimeout,
		ExpectContinueTimeout: defaults.HTTPExpectContinueTimeout,
		IdleConnTimeout:       defaults.HTTPIdleConnTimeout,
		ForceAttemptHTTP2:     true,

		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}

// PopularMoviesURL returns the fixed upstream URL for the popular list.
func (c *Client) PopularMoviesURL() string {
	q := url.Values{}
	q.Set("language", c.language)
	q.Set("page", strconv.Itoa(c.page))
	return c.baseURL + popularMoviesPath + "?" + q.Encode()
}

// popularResponse is the part of the upstream body the relay reads.
type popularResponse struct {
	Results *[]json.RawMessage `json:"results"`
}

// PopularMovies fetches the popular list and returns its results in
// upstream order. Records are returned as raw JSON, untouched.
//
// Errors are *errors.StructuredError with code:
//   - SERVICE_UNAVAILABLE for a non-200 status or a transport failure
//   - TIMEOUT when the per-call timeout or ctx deadline expires
//   - INTERNAL when the body is not a JSON object with a results array
func (c *Client) PopularMovies(ctx context.Context) ([]json.RawMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	items, err := c.popularMovies(ctx)
	observe(outcomeOf(err), time.Since(start))
	return items, err
}

func (c *Client) popularMovies(ctx context.Context) ([]json.RawMessage, error) {
	u := c.PopularMoviesURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, relayerrors.WrapWithContext(relayerrors.ErrCodeInternal, "failed to create catalog request", err,
			map[string]any{"url": u})
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	slog.Debug("catalog request", "url", u)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer func() {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		code := relayerrors.ErrCodeUnavailable
		if resp.StatusCode == http.StatusUnauthorized {
			code = relayerrors.ErrCodeUnauthorized
		}
		return nil, relayerrors.Wrap(relayerrors.ErrCodeUnavailable, "catalog returned non-OK status",
			relayerrors.NewWithContext(code, resp.Status, map[string]any{
				"status": resp.StatusCode,
			}))
	}

	var body popularResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, defaults.UpstreamMaxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		if ctx.Err() != nil {
			return nil, classifyTransportError(ctx, err)
		}
		return nil, relayerrors.Wrap(relayerrors.ErrCodeInternal, "failed to decode catalog response", err)
	}
	if body.Results == nil {
		return nil, relayerrors.New(relayerrors.ErrCodeInternal, "catalog response has no results array")
	}

	return *body.Results, nil
}

func classifyTransportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return relayerrors.Wrap(relayerrors.ErrCodeTimeout, "catalog request timed out", err)
	}
	return relayerrors.Wrap(relayerrors.ErrCodeUnavailable, "catalog request failed", err)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case relayerrors.IsCode(err, relayerrors.ErrCodeTimeout):
		return "timeout"
	case relayerrors.IsCode(err, relayerrors.ErrCodeUnauthorized):
		return "unauthorized"
	case Status(err) != 0:
		return "status"
	case relayerrors.CodeOf(err) == relayerrors.ErrCodeUnavailable:
		return "transport"
	default:
		return "decode"
	}
}

// Status returns the upstream HTTP status recorded in err, or 0.
func Status(err error) int {
	for err != nil {
		var se *relayerrors.StructuredError
		if !errors.As(err, &se) {
			return 0
		}
		if s, ok := se.Context["status"].(int); ok {
			return s
		}
		err = se.Cause
	}
	return 0
}

// String implements fmt.Stringer for logging.
func (c *Client) String() string {
	return fmt.Sprintf("catalog.Client{url=%s, tokenSet=%t}", c.PopularMoviesURL(), c.token != "")
}
