package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/equipeadalove/aduana/internal/common"
)

// Request errors.
var (
	ErrUnauthorized       = errors.New("session expired")
	ErrMalformedResponse  = errors.New("malformed response from server")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)

// APIError is a non-2xx response other than 401.
type APIError struct {
	Detail string
	Status int
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error (status %d): %s", e.Status, http.StatusText(e.Status))
}

// Server reports whether the failure is on the server side.
func (e *APIError) Server() bool {
	return e.Status >= http.StatusInternalServerError
}

// Message maps err to the text shown to the user. The server detail is used
// verbatim when present; transport and parse failures fall back to fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if msg, ok := common.UserMessage(err); ok {
		return msg
	}

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	case errors.Is(err, ErrUnauthorized):
		return "Session expired. Please log in again."
	case errors.Is(err, ErrServiceUnavailable):
		return "The server is unavailable right now. Try again in a moment."
	default:
		return fallback
	}
}

// detailFrom extracts the "detail" field of an error body. The backend sends
// either a string or a list of validation entries carrying "msg".
func detailFrom(body []byte) string {
	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}

	if len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil {
			return s
		}
		var entries []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(envelope.Detail, &entries); err == nil {
			msgs := make([]string, 0, len(entries))
			for _, e := range entries {
				if e.Msg != "" {
					msgs = append(msgs, e.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return envelope.Message
}
