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
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movie-relay/relay/pkg/catalog"
	relayerrors "github.com/movie-relay/relay/pkg/errors"
	"github.com/movie-relay/relay/pkg/server"
)

type fakeFetcher struct {
	items []json.RawMessage
	err   error
	calls int
}

func (f *fakeFetcher) PopularMovies(_ context.Context) ([]json.RawMessage, error) {
	f.calls++
	return f.items, f.err
}

func movies(n int) []json.RawMessage {
	out := make([]json.RawMessage, n)
	for i := range out {
		out[i] = json.RawMessage(fmt.Sprintf(`{"id":%d,"title":"Movie %d"}`, i+1, i+1))
	}
	return out
}

func serve(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.HandlePopularMovies(w, req)
	return w
}

func decodeIDs(t *testing.T, body []byte) []int {
	t.Helper()
	var items []struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &items))
	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func TestHandlePopularMovies_Limit(t *testing.T) {
	tests := []struct {
		name   string
		target string
		items  int
		want   []int
	}{
		{"default limit", "/api/popular_movies", 20, []int{1, 2, 3}},
		{"explicit limit", "/api/popular_movies?limit=5", 20, []int{1, 2, 3, 4, 5}},
		{"zero", "/api/popular_movies?limit=0", 20, []int{}},
		{"larger than results", "/api/popular_movies?limit=50", 4, []int{1, 2, 3, 4}},
		{"empty upstream", "/api/popular_movies?limit=2", 0, []int{}},
		{"negative drops from end", "/api/popular_movies?limit=-1", 4, []int{1, 2, 3}},
		{"negative beyond length", "/api/popular_movies?limit=-10", 4, []int{}},
		{"explicit plus sign", "/api/popular_movies?limit=%2B2", 4, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{items: movies(tt.items)}
			w := serve(t, NewHandler(f), tt.target)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Empty(t, w.Header().Get(ErrorCodeHeader))
			assert.Equal(t, tt.want, decodeIDs(t, w.Body.Bytes()))
			assert.Equal(t, 1, f.calls)
		})
	}
}

func TestHandlePopularMovies_EmptyIsArrayNotNull(t *testing.T) {
	w := serve(t, NewHandler(&fakeFetcher{items: movies(3)}), "/api/popular_movies?limit=0")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandlePopularMovies_RecordsVerbatim(t *testing.T) {
	record := json.RawMessage(`{"id":7,"title":"Café <Noir> & Co","genre_ids":[18,80],"adult":false,"extra":{"nested":null}}`)
	f := &fakeFetcher{items: []json.RawMessage{record}}

	w := serve(t, NewHandler(f), "/api/popular_movies?limit=1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "["+string(record)+"]", w.Body.String())
	assert.Contains(t, w.Body.String(), "<Noir> & Co")
}

func TestHandlePopularMovies_DefaultLimitOption(t *testing.T) {
	f := &fakeFetcher{items: movies(10)}
	w := serve(t, NewHandler(f, WithDefaultLimit(7)), "/api/popular_movies")

	assert.Len(t, decodeIDs(t, w.Body.Bytes()), 7)
}

func TestHandlePopularMovies_InvalidLimit(t *testing.T) {
	for _, v := range []string{"abc", "1.5", "", "9999999999999999999999"} {
		t.Run(v, func(t *testing.T) {
			f := &fakeFetcher{items: movies(5)}
			w := serve(t, NewHandler(f), "/api/popular_movies?limit="+v)

			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp server.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(relayerrors.ErrCodeInvalidRequest), resp.Code)
			assert.False(t, resp.Retryable)
			assert.Equal(t, v, resp.Details[limitParam])
			assert.Zero(t, f.calls, "upstream must not be called for a bad limit")
		})
	}
}

func TestHandlePopularMovies_MethodNotAllowed(t *testing.T) {
	f := &fakeFetcher{items: movies(5)}
	req := httptest.NewRequest(http.MethodPost, "/api/popular_movies", nil)
	w := httptest.NewRecorder()

	NewHandler(f).HandlePopularMovies(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET, HEAD", w.Header().Get("Allow"))
	assert.Zero(t, f.calls)
}

func TestHandlePopularMovies_Failures(t *testing.T) {
	nonOK := relayerrors.Wrap(relayerrors.ErrCodeUnavailable, "catalog returned non-OK status",
		relayerrors.NewWithContext(relayerrors.ErrCodeUnauthorized, "401 Unauthorized", map[string]any{"status": 401}))

	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantCode relayerrors.ErrorCode
	}{
		{"non-ok status", nonOK, MessageFetchFailed, relayerrors.ErrCodeUnavailable},
		{"transport", relayerrors.Wrap(relayerrors.ErrCodeUnavailable, "catalog request failed", fmt.Errorf("connection refused")), MessageFetchFailed, relayerrors.ErrCodeUnavailable},
		{"timeout", relayerrors.Wrap(relayerrors.ErrCodeTimeout, "catalog request timed out", context.DeadlineExceeded), MessageTimeout, relayerrors.ErrCodeTimeout},
		{"malformed body", relayerrors.New(relayerrors.ErrCodeInternal, "catalog response has no results array"), MessageFetchFailed, relayerrors.ErrCodeInternal},
		{"plain error", fmt.Errorf("boom"), MessageFetchFailed, relayerrors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, NewHandler(&fakeFetcher{err: tt.err}), "/api/popular_movies?limit=2")

			require.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"Error":%q}`, tt.wantMsg), w.Body.String())
			assert.Equal(t, string(tt.wantCode), w.Header().Get(ErrorCodeHeader))
		})
	}
}

func TestHandlePopularMovies_WithCatalogClient(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			_, _ = w.Write([]byte(`{"page":1,"results":[{"id":1},{"id":2},{"id":3},{"id":4}]}`))
		case "Bearer slow":
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key"}`))
		}
	}))
	defer upstream.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name     string
		opts     []catalog.Option
		wantIDs  []int
		wantBody string
		wantCode string
	}{
		{
			name:    "success",
			opts:    []catalog.Option{catalog.WithBaseURL(upstream.URL), catalog.WithToken("good")},
			wantIDs: []int{1, 2, 3},
		},
		{
			name:     "bad token",
			opts:     []catalog.Option{catalog.WithBaseURL(upstream.URL), catalog.WithToken("bad")},
			wantBody: `{"Error":"Failed to fetch data"}`,
			wantCode: "SERVICE_UNAVAILABLE",
		},
		{
			name:     "empty token",
			opts:     []catalog.Option{catalog.WithBaseURL(upstream.URL)},
			wantBody: `{"Error":"Failed to fetch data"}`,
			wantCode: "SERVICE_UNAVAILABLE",
		},
		{
			name:     "timeout",
			opts:     []catalog.Option{catalog.WithBaseURL(upstream.URL), catalog.WithToken("slow"), catalog.WithTimeout(50 * time.Millisecond)},
			wantBody: `{"Error":"Upstream request timed out"}`,
			wantCode: "TIMEOUT",
		},
		{
			name:     "unreachable",
			opts:     []catalog.Option{catalog.WithBaseURL(closedURL), catalog.WithToken("good")},
			wantBody: `{"Error":"Failed to fetch data"}`,
			wantCode: "SERVICE_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(catalog.NewClient(tt.opts...))
			w := serve(t, h, "/api/popular_movies")

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantCode, w.Header().Get(ErrorCodeHeader))
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
				return
			}
			assert.Equal(t, tt.wantIDs, decodeIDs(t, w.Body.Bytes()))
		})
	}
}

func TestHead(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		limit int
		want  []int
	}{
		{3, []int{1, 2, 3}},
		{0, []int{}},
		{5, []int{1, 2, 3, 4, 5}},
		{100, []int{1, 2, 3, 4, 5}},
		{-2, []int{1, 2, 3}},
		{-5, []int{}},
		{-100, []int{}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.limit), func(t *testing.T) {
			got := Head(items, tt.limit)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("does not alias input", func(t *testing.T) {
		got := Head(items, 2)
		got[0] = 99
		assert.Equal(t, 1, items[0])
	})

	t.Run("nil input", func(t *testing.T) {
		got := Head[int](nil, 3)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
