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

package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	relayerrors "github.com/movie-relay/relay/pkg/errors"
	"github.com/movie-relay/relay/pkg/serializer"
)

// WriteError writes a structured error response with the given status.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code relayerrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID := RequestIDFromContext(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// WriteErrorFromErr maps err to a structured error response. A
// *errors.StructuredError keeps its code, message and context; anything
// else is reported as INTERNAL with fallbackMessage.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string, extraDetails map[string]any) {
	var se *relayerrors.StructuredError
	if errors.As(err, &se) {
		details := mergeDetails(se.Context, extraDetails)
		if se.Cause != nil {
			details = mergeDetails(details, map[string]any{"error": se.Cause.Error()})
		}
		WriteError(w, r, HTTPStatusFromCode(se.Code), se.Code, se.Message, retryableFromCode(se.Code), details)
		return
	}

	details := extraDetails
	if err != nil {
		details = mergeDetails(details, map[string]any{"error": err.Error()})
	}
	WriteError(w, r, http.StatusInternalServerError, relayerrors.ErrCodeInternal, fallbackMessage,
		retryableFromCode(relayerrors.ErrCodeInternal), details)
}

// HTTPStatusFromCode maps an error code to its HTTP status.
func HTTPStatusFromCode(code relayerrors.ErrorCode) int {
	switch code {
	case relayerrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case relayerrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case relayerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case relayerrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case relayerrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case relayerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case relayerrors.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func retryableFromCode(code relayerrors.ErrorCode) bool {
	switch code {
	case relayerrors.ErrCodeTimeout, relayerrors.ErrCodeUnavailable, relayerrors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

// mergeDetails returns a new map with b layered over a, or nil when both
// are empty.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
