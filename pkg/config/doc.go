// Package config loads the relay's process-wide configuration.
//
// Configuration is read once at start-up and passed by pointer into the
// components that need it; nothing reads the environment at request time.
//
// Sources, lowest to highest precedence:
//
//   - built-in defaults (see Default)
//   - a YAML or JSON file named by --config or RELAY_CONFIG
//   - a dotenv file (".env" by default), only for keys absent from the environment
//   - the process environment
//
// Environment variables:
//
//	TMDB_API_TOKEN    bearer token for the catalog API (empty means upstream calls fail auth)
//	ALLOWED_ORIGINS   comma separated CORS allow-list (default http://localhost:8080)
//	STATIC_DIR        directory served under /public (default static/public)
//	TMDB_BASE_URL     catalog API base URL (default https://api.themoviedb.org/3)
//	TMDB_LANGUAGE     BCP 47 language tag sent upstream (default en-US)
//	TMDB_PAGE         fixed upstream page (default 1)
//	UPSTREAM_TIMEOUT  Go duration bounding each upstream call (default 10s)
package config
