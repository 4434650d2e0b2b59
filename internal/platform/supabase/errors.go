package supabase

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrNotFound is returned by lookups that address a single resource which does not exist.
var ErrNotFound = errors.New("supabase: not found")

// APIError is a non-2xx response from Supabase.
// PostgREST error bodies carry code, message, details and hint.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Code != "" {
		return fmt.Sprintf("supabase: http %d (%s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("supabase: http %d: %s", e.Status, msg)
}

// Temporary reports whether the failure is on the server side.
func (e *APIError) Temporary() bool { return e.Status >= 500 }

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	// details は文字列以外（オブジェクト）で返ることがあるので、失敗しても本文をそのまま使う
	var raw struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Details any    `json:"details"`
		Hint    any    `json:"hint"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		e.Message = string(body)
		return e
	}
	e.Code = stringify(raw.Code)
	e.Message = raw.Message
	if e.Message == "" {
		e.Message = raw.Msg
	}
	e.Details = stringify(raw.Details)
	e.Hint = stringify(raw.Hint)
	return e
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
