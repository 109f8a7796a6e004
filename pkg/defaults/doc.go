// Package defaults provides centralized configuration constants for the relay.
//
// Timeouts are grouped by component:
//
//   - Server timeouts: for the inbound HTTP server
//   - Upstream timeouts: for calls to the movie catalog API
//
// Import and use constants directly:
//
//	ctx, cancel := context.WithTimeout(r.Context(), defaults.UpstreamTimeout)
//	defer cancel()
package defaults
