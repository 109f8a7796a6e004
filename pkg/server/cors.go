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

package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"github.com/movie-relay/relay/pkg/logging"
)

// corsAllowedMethods is every method a browser may ask about in a preflight.
var corsAllowedMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// corsMiddleware applies the origin allow-list. Requests from other origins
// are still served, only without Access-Control-Allow-* headers.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	if len(s.config.AllowedOrigins) == 0 {
		return next
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   corsAllowedMethods,
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   append([]string{"X-Request-Id", "X-API-Version"}, s.config.ExposedHeaders...),
		AllowCredentials: true,
		Logger:           logging.NewLogLogger(slog.LevelDebug),
		Debug:            slog.Default().Enabled(context.Background(), slog.LevelDebug),
	})

	return c.Handler(next)
}
