// Package errors provides structured error types shared by the relay's
// packages so that HTTP handlers can map failures to responses without
// string matching.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeUnavailable,
//	    "catalog returned non-OK status",
//	    nil,
//	    map[string]any{
//	        "status": resp.StatusCode,
//	    },
//	)
package errors
