// Package catalog is the client for the upstream movie catalog API (TMDB v3).
//
// The relay only needs one call, the popular list on a fixed page:
//
//	c := catalog.NewClient(
//	    catalog.WithToken(cfg.APIToken),
//	    catalog.WithTimeout(cfg.UpstreamTimeout),
//	)
//	items, err := c.PopularMovies(ctx)
//
// Every request carries "Accept: application/json" and
// "Authorization: Bearer <token>". Result records are returned as
// json.RawMessage so their fields pass through unmodified.
//
// Failures are classified with pkg/errors codes (SERVICE_UNAVAILABLE,
// TIMEOUT, INTERNAL); Status extracts the upstream HTTP status when the
// failure was a non-200 response.
//
// Metrics:
//
//	relay_upstream_requests_total{outcome}   ok, status, unauthorized, timeout, transport, decode
//	relay_upstream_request_duration_seconds
package catalog
