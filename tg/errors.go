package tg

import (
	"errors"
	"fmt"
)

// Sentinel errors - use with errors.Is()
var (
	// ErrInvalidToken means the token failed local format validation.
	ErrInvalidToken = errors.New("minigram: invalid bot token format")

	// ErrUnauthorized means Telegram rejected the token (error_code 401)
	// while fetching updates. Polling cannot recover from this.
	ErrUnauthorized = errors.New("minigram: unauthorized (invalid token)")

	// ErrCircuitOpen means the circuit breaker rejected the call.
	ErrCircuitOpen = errors.New("minigram: circuit breaker open")

	// ErrResponseTooLarge means the response body exceeded the size cap.
	ErrResponseTooLarge = errors.New("minigram: response too large")

	// ErrAlreadyRunning means the polling loop was started twice.
	ErrAlreadyRunning = errors.New("minigram: polling already running")
)

// ValidationError represents a request validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("minigram: validation: %s - %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("minigram: config: %s - %s", e.Key, e.Message)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(key, message string) *ConfigError {
	return &ConfigError{Key: key, Message: message}
}
