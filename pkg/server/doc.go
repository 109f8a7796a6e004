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

// Package server provides the HTTP server the relay runs in: routing,
// middleware, CORS, static files, health probes and graceful shutdown.
//
// # Usage
//
//	s := server.New(
//	    server.WithName("relayd"),
//	    server.WithVersion(version),
//	    server.WithHandler(map[string]http.HandlerFunc{
//	        "/api/popular_movies": h.HandlePopularMovies,
//	    }),
//	    server.WithAllowedOrigins("http://localhost:8080"),
//	    server.WithStaticDir("static/public"),
//	)
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
//
// # Endpoints
//
//	GET /         service name, version, readiness and routes
//	GET /health   liveness, always 200
//	GET /ready    readiness, 503 while starting or shutting down
//	GET /metrics  Prometheus exposition
//	GET /public/* regular files from the static directory; 404 otherwise
//
// Handlers passed through WithHandler are wrapped, outermost first, by
// metrics, API version negotiation, request ID, panic recovery and request
// logging. CORS wraps the whole mux.
//
// # Request IDs
//
// An X-Request-Id header carrying a valid UUID is reused, anything else is
// replaced. The ID is echoed in the response header, stored in the request
// context (see RequestIDFromContext) and included in every ErrorResponse.
//
// # CORS
//
// Only origins in the allow-list receive Access-Control-Allow-* headers.
// Requests from other origins are still served; the browser enforces the
// policy. All methods and request headers are allowed, and credentials are
// permitted.
//
// # Errors
//
// Errors written by the server use ErrorResponse:
//
//	{
//	  "code": "NOT_FOUND",
//	  "message": "Not Found",
//	  "details": {"path": "/nope"},
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2025-12-22T12:00:00Z",
//	  "retryable": false
//	}
//
// HTTPStatusFromCode maps error codes to statuses.
//
// # Configuration
//
//	PORT                      listen port (default 8000)
//	SHUTDOWN_TIMEOUT_SECONDS  graceful shutdown bound (default 30)
package server
