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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"github.com/movie-relay/relay/pkg/defaults"
	"github.com/movie-relay/relay/pkg/serializer"
)

// Environment variables read by Load.
const (
	EnvAPIToken        = "TMDB_API_TOKEN"
	EnvAllowedOrigins  = "ALLOWED_ORIGINS"
	EnvStaticDir       = "STATIC_DIR"
	EnvUpstreamBaseURL = "TMDB_BASE_URL"
	EnvUpstreamLang    = "TMDB_LANGUAGE"
	EnvUpstreamPage    = "TMDB_PAGE"
	EnvUpstreamTimeout = "UPSTREAM_TIMEOUT"
	EnvConfigFile      = "RELAY_CONFIG"
)

// Defaults applied before any file or environment override.
const (
	DefaultAllowedOrigin   = "http://localhost:8080"
	DefaultStaticDir       = "static/public"
	DefaultUpstreamBaseURL = "https://api.themoviedb.org/3"
	DefaultUpstreamLang    = "en-US"
	DefaultUpstreamPage    = 1
	DefaultEnvFile         = ".env"

	redactedToken = "********"
)

// Config is the process-wide relay configuration. It is built once by Load
// and must not be modified afterwards.
type Config struct {
	// APIToken is the bearer credential for the upstream catalog API.
	APIToken string

	// AllowedOrigins lists browser origins allowed to read responses.
	AllowedOrigins []string

	// StaticDir is the directory served under /public.
	StaticDir string

	UpstreamBaseURL  string
	UpstreamLanguage string
	UpstreamPage     int
	UpstreamTimeout  time.Duration

	// DefaultLimit is used when a request omits the limit parameter.
	DefaultLimit int
}

// File is the on-disk configuration shape (YAML or JSON). Empty fields leave
// the defaults in place.
type File struct {
	APIToken       string       `json:"apiToken,omitempty" yaml:"apiToken,omitempty"`
	AllowedOrigins []string     `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
	StaticDir      string       `json:"staticDir,omitempty" yaml:"staticDir,omitempty"`
	DefaultLimit   *int         `json:"defaultLimit,omitempty" yaml:"defaultLimit,omitempty"`
	Upstream       UpstreamFile `json:"upstream,omitempty" yaml:"upstream,omitempty"`
}

// UpstreamFile holds the upstream section of File.
type UpstreamFile struct {
	BaseURL  string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Page     int    `json:"page,omitempty" yaml:"page,omitempty"`
	Timeout  string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		AllowedOrigins:   []string{DefaultAllowedOrigin},
		StaticDir:        DefaultStaticDir,
		UpstreamBaseURL:  DefaultUpstreamBaseURL,
		UpstreamLanguage: DefaultUpstreamLang,
		UpstreamPage:     DefaultUpstreamPage,
		UpstreamTimeout:  defaults.UpstreamTimeout,
		DefaultLimit:     defaults.PopularMoviesLimit,
	}
}

// Option configures Load.
type Option func(*loader)

type loader struct {
	envFile    string
	configFile string
	lookupEnv  func(string) (string, bool)
}

// WithEnvFile sets the dotenv file to read. An empty path disables dotenv.
func WithEnvFile(path string) Option {
	return func(l *loader) {
		l.envFile = path
	}
}

// WithConfigFile sets a YAML or JSON config file, taking precedence over
// the RELAY_CONFIG environment variable.
func WithConfigFile(path string) Option {
	return func(l *loader) {
		l.configFile = path
	}
}

// WithLookupEnv replaces os.LookupEnv, mainly for tests.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(l *loader) {
		if fn != nil {
			l.lookupEnv = fn
		}
	}
}

// Load builds the configuration. Precedence, lowest to highest: defaults,
// config file, dotenv file, process environment. The dotenv file never
// overrides a variable already present in the environment.
func Load(opts ...Option) (*Config, error) {
	l := &loader{
		envFile:   DefaultEnvFile,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(l)
	}

	dotenv := map[string]string{}
	if l.envFile != "" {
		m, err := godotenv.Read(l.envFile)
		switch {
		case err == nil:
			dotenv = m
			slog.Debug("loaded env file", "path", l.envFile, "keys", len(m))
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("env file not found, skipping", "path", l.envFile)
		default:
			return nil, fmt.Errorf("failed to read env file %s: %w", l.envFile, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := l.lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	cfg := Default()

	path := l.configFile
	if path == "" {
		path, _ = lookup(EnvConfigFile)
	}
	if path != "" {
		f, err := serializer.FromFile[File](path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		if err := cfg.applyFile(f); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyFile(f *File) error {
	if f.APIToken != "" {
		c.APIToken = f.APIToken
	}
	if len(f.AllowedOrigins) > 0 {
		c.AllowedOrigins = f.AllowedOrigins
	}
	if f.StaticDir != "" {
		c.StaticDir = f.StaticDir
	}
	if f.DefaultLimit != nil {
		c.DefaultLimit = *f.DefaultLimit
	}
	if f.Upstream.BaseURL != "" {
		c.UpstreamBaseURL = f.Upstream.BaseURL
	}
	if f.Upstream.Language != "" {
		c.UpstreamLanguage = f.Upstream.Language
	}
	if f.Upstream.Page != 0 {
		c.UpstreamPage = f.Upstream.Page
	}
	if f.Upstream.Timeout != "" {
		d, err := time.ParseDuration(f.Upstream.Timeout)
		if err != nil {
			return fmt.Errorf("upstream.timeout: %w", err)
		}
		c.UpstreamTimeout = d
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIToken); ok {
		c.APIToken = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvAllowedOrigins); ok && strings.TrimSpace(v) != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup(EnvStaticDir); ok && v != "" {
		c.StaticDir = v
	}
	if v, ok := lookup(EnvUpstreamBaseURL); ok && v != "" {
		c.UpstreamBaseURL = v
	}
	if v, ok := lookup(EnvUpstreamLang); ok && v != "" {
		c.UpstreamLanguage = v
	}
	if v, ok := lookup(EnvUpstreamPage); ok && v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvUpstreamPage, err)
		}
		c.UpstreamPage = page
	}
	if v, ok := lookup(EnvUpstreamTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvUpstreamTimeout, err)
		}
		c.UpstreamTimeout = d
	}
	return nil
}

// Validate checks the configuration and normalizes the language tag and
// origin list in place.
func (c *Config) Validate() error {
	u, err := url.Parse(c.UpstreamBaseURL)
	if err != nil {
		return fmt.Errorf("invalid upstream base URL %q: %w", c.UpstreamBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid upstream base URL %q: must be an absolute http(s) URL", c.UpstreamBaseURL)
	}

	tag, err := language.Parse(c.UpstreamLanguage)
	if err != nil {
		return fmt.Errorf("invalid upstream language %q: %w", c.UpstreamLanguage, err)
	}
	c.UpstreamLanguage = tag.String()

	if c.UpstreamPage < 1 {
		return fmt.Errorf("upstream page must be >= 1, got %d", c.UpstreamPage)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be > 0, got %s", c.UpstreamTimeout)
	}

	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if err := validateOrigin(o); err != nil {
			return err
		}
		origins = append(origins, o)
	}
	c.AllowedOrigins = origins

	if c.StaticDir == "" {
		return errors.New("static dir must not be empty")
	}
	return nil
}

// LogValue implements slog.LogValuer and never exposes the token.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("apiTokenSet", c.APIToken != ""),
		slog.Any("allowedOrigins", c.AllowedOrigins),
		slog.String("staticDir", c.StaticDir),
		slog.String("upstreamBaseURL", c.UpstreamBaseURL),
		slog.String("upstreamLanguage", c.UpstreamLanguage),
		slog.Int("upstreamPage", c.UpstreamPage),
		slog.Duration("upstreamTimeout", c.UpstreamTimeout),
		slog.Int("defaultLimit", c.DefaultLimit),
	)
}

// Redacted returns the configuration in file form with the token masked,
// suitable for printing.
func (c *Config) Redacted() *File {
	limit := c.DefaultLimit
	f := &File{
		AllowedOrigins: append([]string(nil), c.AllowedOrigins...),
		StaticDir:      c.StaticDir,
		DefaultLimit:   &limit,
		Upstream: UpstreamFile{
			BaseURL:  c.UpstreamBaseURL,
			Language: c.UpstreamLanguage,
			Page:     c.UpstreamPage,
			Timeout:  c.UpstreamTimeout.String(),
		},
	}
	if c.APIToken != "" {
		f.APIToken = redactedToken
	}
	return f
}

func validateOrigin(origin string) error {
	if origin == "*" {
		return nil
	}
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid allowed origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" || (u.Path != "" && u.Path != "/") {
		return fmt.Errorf("invalid allowed origin %q: must be scheme://host[:port]", origin)
	}
	if strings.HasSuffix(origin, "/") {
		return fmt.Errorf("invalid allowed origin %q: trailing slash", origin)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
