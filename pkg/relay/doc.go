// Package relay implements GET /api/popular_movies: it fetches the upstream
// popular list, truncates it to the requested limit and returns the records
// unchanged.
//
// The limit query parameter defaults to 3. Zero yields an empty array and a
// negative value drops that many records from the end.
//
// Upstream failures never surface as HTTP errors. The response is 200 with
//
//	{"Error": "Failed to fetch data"}
//
// or, when the upstream call times out,
//
//	{"Error": "Upstream request timed out"}
//
// and the X-Relay-Error-Code header set to SERVICE_UNAVAILABLE, TIMEOUT or
// INTERNAL.
package relay
