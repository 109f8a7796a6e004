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

package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/movie-relay/relay/pkg/catalog"
	"github.com/movie-relay/relay/pkg/config"
	"github.com/movie-relay/relay/pkg/defaults"
	"github.com/movie-relay/relay/pkg/relay"
	"github.com/movie-relay/relay/pkg/server"
)

const (
	name           = "relayd"
	versionDefault = "dev"

	// PopularMoviesPath is the relay endpoint.
	PopularMoviesPath = "/api/popular_movies"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/movie-relay/relay/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Name returns the service name.
func Name() string {
	return name
}

// Version returns the build version, commit and date.
func Version() (string, string, string) {
	return version, commit, date
}

// Serve starts the relay and blocks until ctx is cancelled or the process
// is signalled. Extra server options are applied after the ones derived
// from cfg.
func Serve(ctx context.Context, cfg *config.Config, opts ...server.Option) error {
	if cfg == nil {
		return errors.New("config is required")
	}

	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"config", cfg,
	)

	if cfg.APIToken == "" {
		slog.Warn("upstream API token is not set, catalog calls will be rejected",
			"env", config.EnvAPIToken)
	}
	if fi, err := os.Stat(cfg.StaticDir); err != nil || !fi.IsDir() {
		slog.Warn("static directory not found, /public will return 404", "dir", cfg.StaticDir)
	}

	s := NewServer(cfg, opts...)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

// NewServer wires cfg, the catalog client and the relay handler into a
// server without starting it.
func NewServer(cfg *config.Config, opts ...server.Option) *server.Server {
	client := catalog.NewClient(
		catalog.WithBaseURL(cfg.UpstreamBaseURL),
		catalog.WithToken(cfg.APIToken),
		catalog.WithLanguage(cfg.UpstreamLanguage),
		catalog.WithPage(cfg.UpstreamPage),
		catalog.WithTimeout(cfg.UpstreamTimeout),
		catalog.WithUserAgent(name+"/"+version),
	)
	slog.Debug("catalog client configured", "client", client.String())

	h := relay.NewHandler(client, relay.WithDefaultLimit(cfg.DefaultLimit))

	r := map[string]http.HandlerFunc{
		PopularMoviesPath: h.HandlePopularMovies,
	}

	base := []server.Option{
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(r),
		server.WithAllowedOrigins(cfg.AllowedOrigins...),
		server.WithExposedHeaders(relay.ErrorCodeHeader),
		server.WithStaticDir(cfg.StaticDir),
	}

	opts = append(base, opts...)
	// applied last so the failure body for an upstream timeout is always
	// written before the connection's write deadline
	opts = append(opts, server.WithMinWriteTimeout(cfg.UpstreamTimeout+defaults.ServerWriteTimeoutMargin))

	return server.New(opts...)
}
