package client

import (
	"encoding/json"
	"fmt"
)

// TransportError means the request never produced a response: connection
// refused, DNS failure, timeout.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("scanning service unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response from the scanning service. Message holds
// the collapsed detail string when the body carried one; Detail keeps the
// individual validation messages for structured bodies.
type ServerError struct {
	Status  int
	Message string
	Detail  []string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("scanning service: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("scanning service returned status %d", e.Status)
}

// errorBody is the service's error envelope. detail is either a plain string
// or a list of {"msg": ...} validation objects.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type detailItem struct {
	Msg string `json:"msg"`
}

// parseServerError collapses a non-2xx body into a ServerError. Bodies that
// are not the expected envelope yield an empty Message so callers can apply
// their own fallback.
func parseServerError(status int, body []byte) *ServerError {
	se := &ServerError{Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return se
	}

	var msg string
	if err := json.Unmarshal(eb.Detail, &msg); err == nil {
		se.Message = msg
		return se
	}

	var items []detailItem
	if err := json.Unmarshal(eb.Detail, &items); err == nil {
		for _, it := range items {
			if it.Msg != "" {
				se.Detail = append(se.Detail, it.Msg)
			}
		}
		if len(se.Detail) > 0 {
			// The first message wins for display.
			se.Message = se.Detail[0]
		}
	}
	return se
}
