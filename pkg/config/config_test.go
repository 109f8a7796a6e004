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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envMap returns a lookup function backed by m instead of the process env.
func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(WithEnvFile(""), WithLookupEnv(envMap(nil)))
	require.NoError(t, err)

	assert.Empty(t, cfg.APIToken)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.AllowedOrigins)
	assert.Equal(t, "static/public", cfg.StaticDir)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.UpstreamBaseURL)
	assert.Equal(t, "en-US", cfg.UpstreamLanguage)
	assert.Equal(t, 1, cfg.UpstreamPage)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 3, cfg.DefaultLimit)
}

func TestLoad_EnvOverrides(t *testing.T) {
	cfg, err := Load(WithEnvFile(""), WithLookupEnv(envMap(map[string]string{
		EnvAPIToken:        " secret-token ",
		EnvAllowedOrigins:  "http://localhost:8080, https://movies.example.com",
		EnvStaticDir:       "/srv/public",
		EnvUpstreamBaseURL: "http://127.0.0.1:9999/3",
		EnvUpstreamLang:    "ko-kr",
		EnvUpstreamPage:    "2",
		EnvUpstreamTimeout: "1500ms",
	})))
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.APIToken)
	assert.Equal(t, []string{"http://localhost:8080", "https://movies.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "/srv/public", cfg.StaticDir)
	assert.Equal(t, "http://127.0.0.1:9999/3", cfg.UpstreamBaseURL)
	assert.Equal(t, "ko-KR", cfg.UpstreamLanguage)
	assert.Equal(t, 2, cfg.UpstreamPage)
	assert.Equal(t, 1500*time.Millisecond, cfg.UpstreamTimeout)
}

func TestLoad_DotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "TMDB_API_TOKEN=from-dotenv\nSTATIC_DIR=dotenv/public\n")

	t.Run("fills missing variables", func(t *testing.T) {
		cfg, err := Load(WithEnvFile(envFile), WithLookupEnv(envMap(nil)))
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", cfg.APIToken)
		assert.Equal(t, "dotenv/public", cfg.StaticDir)
	})

	t.Run("never overrides the environment", func(t *testing.T) {
		cfg, err := Load(WithEnvFile(envFile), WithLookupEnv(envMap(map[string]string{
			EnvAPIToken: "from-env",
		})))
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.APIToken)
		assert.Equal(t, "dotenv/public", cfg.StaticDir)
	})

	t.Run("missing file is ignored", func(t *testing.T) {
		_, err := Load(WithEnvFile(filepath.Join(t.TempDir(), ".env")), WithLookupEnv(envMap(nil)))
		require.NoError(t, err)
	})
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeFile(t, "relay.yaml", `
apiToken: from-file
allowedOrigins:
  - https://a.example.com
staticDir: file/public
defaultLimit: 5
upstream:
  baseURL: https://mirror.example.com/3
  language: fr-FR
  page: 3
  timeout: 4s
`)

	t.Run("file values applied", func(t *testing.T) {
		cfg, err := Load(WithEnvFile(""), WithConfigFile(path), WithLookupEnv(envMap(nil)))
		require.NoError(t, err)

		assert.Equal(t, "from-file", cfg.APIToken)
		assert.Equal(t, []string{"https://a.example.com"}, cfg.AllowedOrigins)
		assert.Equal(t, "file/public", cfg.StaticDir)
		assert.Equal(t, 5, cfg.DefaultLimit)
		assert.Equal(t, "https://mirror.example.com/3", cfg.UpstreamBaseURL)
		assert.Equal(t, "fr-FR", cfg.UpstreamLanguage)
		assert.Equal(t, 3, cfg.UpstreamPage)
		assert.Equal(t, 4*time.Second, cfg.UpstreamTimeout)
	})

	t.Run("env wins over file", func(t *testing.T) {
		cfg, err := Load(WithEnvFile(""), WithConfigFile(path), WithLookupEnv(envMap(map[string]string{
			EnvAPIToken: "from-env",
		})))
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.APIToken)
	})

	t.Run("path from RELAY_CONFIG", func(t *testing.T) {
		cfg, err := Load(WithEnvFile(""), WithLookupEnv(envMap(map[string]string{
			EnvConfigFile: path,
		})))
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.APIToken)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		bad := writeFile(t, "bad.yaml", "apiTokn: typo\n")
		_, err := Load(WithEnvFile(""), WithConfigFile(bad), WithLookupEnv(envMap(nil)))
		require.Error(t, err)
	})

	t.Run("bad timeout rejected", func(t *testing.T) {
		bad := writeFile(t, "bad.yaml", "upstream:\n  timeout: soon\n")
		_, err := Load(WithEnvFile(""), WithConfigFile(bad), WithLookupEnv(envMap(nil)))
		require.Error(t, err)
	})
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"relative base url", map[string]string{EnvUpstreamBaseURL: "/3"}},
		{"ftp base url", map[string]string{EnvUpstreamBaseURL: "ftp://example.com"}},
		{"bad language", map[string]string{EnvUpstreamLang: "not a tag!"}},
		{"non-numeric page", map[string]string{EnvUpstreamPage: "one"}},
		{"zero page", map[string]string{EnvUpstreamPage: "0"}},
		{"bad timeout", map[string]string{EnvUpstreamTimeout: "10"}},
		{"negative timeout", map[string]string{EnvUpstreamTimeout: "-1s"}},
		{"origin with path", map[string]string{EnvAllowedOrigins: "http://localhost:8080/app"}},
		{"origin with trailing slash", map[string]string{EnvAllowedOrigins: "http://localhost:8080/"}},
		{"origin without scheme", map[string]string{EnvAllowedOrigins: "localhost"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(WithEnvFile(""), WithLookupEnv(envMap(tt.env)))
			assert.Error(t, err)
		})
	}
}

func TestConfig_LogValueHidesToken(t *testing.T) {
	cfg := Default()
	cfg.APIToken = "super-secret"

	v := cfg.LogValue()
	assert.NotContains(t, v.String(), "super-secret")
	assert.Contains(t, v.String(), "apiTokenSet=true")
}

func TestConfig_Redacted(t *testing.T) {
	cfg := Default()
	cfg.APIToken = "secret-token"

	f := cfg.Redacted()
	assert.Equal(t, redactedToken, f.APIToken)
	assert.Equal(t, cfg.AllowedOrigins, f.AllowedOrigins)
	assert.Equal(t, "10s", f.Upstream.Timeout)
	require.NotNil(t, f.DefaultLimit)
	assert.Equal(t, 3, *f.DefaultLimit)

	f.AllowedOrigins[0] = "http://changed"
	assert.Equal(t, DefaultAllowedOrigin, cfg.AllowedOrigins[0])

	cfg.APIToken = ""
	assert.Empty(t, cfg.Redacted().APIToken)
}
