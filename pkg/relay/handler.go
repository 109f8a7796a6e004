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

package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/movie-relay/relay/pkg/defaults"
	relayerrors "github.com/movie-relay/relay/pkg/errors"
	"github.com/movie-relay/relay/pkg/serializer"
	"github.com/movie-relay/relay/pkg/server"
)

const (
	// ErrorCodeHeader carries the failure kind alongside a failure body.
	ErrorCodeHeader = "X-Relay-Error-Code"

	// MessageFetchFailed is returned for every upstream failure except timeouts.
	MessageFetchFailed = "Failed to fetch data"

	// MessageTimeout is returned when the upstream call exceeds its deadline.
	MessageTimeout = "Upstream request timed out"

	limitParam = "limit"
)

// Fetcher returns the upstream popular list in upstream order.
type Fetcher interface {
	PopularMovies(ctx context.Context) ([]json.RawMessage, error)
}

// FailureResponse is the body returned, with HTTP 200, when the upstream
// call fails.
type FailureResponse struct {
	Error string `json:"Error"`
}

// Option configures a Handler.
type Option func(*Handler)

// WithDefaultLimit sets the limit used when the query omits it.
func WithDefaultLimit(n int) Option {
	return func(h *Handler) {
		h.defaultLimit = n
	}
}

// Handler serves GET /api/popular_movies.
type Handler struct {
	fetcher      Fetcher
	defaultLimit int
}

// NewHandler returns a Handler reading from f.
func NewHandler(f Fetcher, opts ...Option) *Handler {
	h := &Handler{
		fetcher:      f,
		defaultLimit: defaults.PopularMoviesLimit,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandlePopularMovies returns the first limit upstream results as a JSON
// array. Upstream failures are reported with FailureResponse and HTTP 200;
// ErrorCodeHeader names the kind.
func (h *Handler) HandlePopularMovies(w http.ResponseWriter, r *http.Request) {
	if !server.AllowReadOnly(w, r) {
		return
	}

	limit, err := h.parseLimit(r)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "invalid limit", nil)
		return
	}

	items, err := h.fetcher.PopularMovies(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	slog.Debug("popular movies relayed",
		"requestID", server.RequestIDFromContext(r.Context()),
		"apiVersion", server.APIVersionFromContext(r.Context()),
		"upstream", len(items),
		"limit", limit,
	)

	serializer.RespondJSON(w, http.StatusOK, Head(items, limit))
}

func (h *Handler) parseLimit(r *http.Request) (int, error) {
	q := r.URL.Query()
	if !q.Has(limitParam) {
		return h.defaultLimit, nil
	}

	raw := q.Get(limitParam)
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, relayerrors.NewWithContext(relayerrors.ErrCodeInvalidRequest,
			"limit must be an integer", map[string]any{limitParam: raw})
	}
	return limit, nil
}

// Head returns the first limit items. A negative limit drops that many
// items from the end instead. The result is never nil.
func Head[T any](items []T, limit int) []T {
	n := limit
	if n < 0 {
		n += len(items)
	}
	n = max(0, min(n, len(items)))
	out := make([]T, n)
	copy(out, items[:n])
	return out
}

func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	code := relayerrors.CodeOf(err)
	msg := MessageFetchFailed
	if relayerrors.IsCode(err, relayerrors.ErrCodeTimeout) {
		code = relayerrors.ErrCodeTimeout
		msg = MessageTimeout
	}

	slog.Warn("upstream fetch failed",
		"requestID", server.RequestIDFromContext(r.Context()),
		"code", string(code),
		"error", err,
	)

	w.Header().Set(ErrorCodeHeader, string(code))
	serializer.RespondJSON(w, http.StatusOK, FailureResponse{Error: msg})
}
