// Package validate holds local request validation helpers.
package validate

import (
	"fmt"
	"strings"
)

// Error represents a validation error.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation: %s - %s", e.Field, e.Message)
}

// New creates a new validation error.
func New(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// Token validates a bot token format.
// Format: {bot_id}:{secret} where bot_id is numeric.
func Token(token string) error {
	if token == "" {
		return New("token", "cannot be empty")
	}

	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 {
		return New("token", "invalid format, expected {bot_id}:{secret}")
	}

	botID := parts[0]
	secret := parts[1]

	if botID == "" {
		return New("token", "bot_id cannot be empty")
	}
	for _, c := range botID {
		if c < '0' || c > '9' {
			return New("token", "bot_id must be numeric")
		}
	}

	if secret == "" {
		return New("token", "secret cannot be empty")
	}

	return nil
}

// Method validates a remote method name before it is spliced into the
// request path. Any non-empty name without path metacharacters is
// forwarded verbatim; the client does not keep a method list.
func Method(name string) error {
	if name == "" {
		return New("method", "cannot be empty")
	}
	if strings.ContainsAny(name, "/?#%& \t\r\n") {
		return New("method", "contains characters not allowed in a method name")
	}
	return nil
}
