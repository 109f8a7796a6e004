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

// Package api wires the relay into the reusable pkg/server package.
//
// It builds the catalog client from the loaded configuration, registers
// the relay handler and hands lifecycle management to pkg/server.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	return api.Serve(ctx, cfg)
//
// # Endpoints
//
// Application endpoints:
//   - GET /api/popular_movies?limit=N - first N popular movies (default 3)
//   - GET /public/*                   - static files from the configured directory
//
// System endpoints:
//   - GET /        - service info
//   - GET /health  - liveness probe
//   - GET /ready   - readiness probe
//   - GET /metrics - Prometheus metrics
//
// Example:
//
//	curl "http://localhost:8000/api/popular_movies?limit=5"
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/movie-relay/relay/pkg/api.version=1.0.0'"
package api
