package core

import "fmt"

// Error is the structured error payload carried inside Result metadata and
// log records.
type Error struct {
	Message string         `json:"message,omitempty"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func NewError(err error, code string, details map[string]any) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{Message: msg, Code: code, Details: details}
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *Error) AsMap() map[string]any {
	out := map[string]any{"message": e.Message}
	if e.Code != "" {
		out["code"] = e.Code
	}
	if len(e.Details) > 0 {
		out["details"] = e.Details
	}
	return out
}
