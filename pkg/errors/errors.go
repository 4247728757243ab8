package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-related errors (timeouts included)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents markup parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeBlocked represents anti-bot challenge pages served instead of results
	ErrorTypeBlocked ErrorType = "blocked"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypeValidation represents request validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// SearchError represents a search-pipeline error
type SearchError struct {
	Type    ErrorType
	Country string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Country, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Country, e.Message)
}

// Unwrap returns the underlying error
func (e *SearchError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and worth retrying
func (e *SearchError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeBlocked:
		return true
	default:
		return false
	}
}

// New creates a new SearchError
func New(errType ErrorType, country, message string, err error) *SearchError {
	return &SearchError{
		Type:    errType,
		Country: country,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(country, message string, err error) *SearchError {
	return New(ErrorTypeNetwork, country, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(country, message string, err error) *SearchError {
	return New(ErrorTypeParsing, country, message, err)
}

// NewBlocked creates a new blocked-page error
func NewBlocked(country, message string) *SearchError {
	return New(ErrorTypeBlocked, country, message, nil)
}

// NewCache creates a new cache error
func NewCache(country, message string, err error) *SearchError {
	return New(ErrorTypeCache, country, message, err)
}

// NewValidation creates a new validation error
func NewValidation(message string) *SearchError {
	return New(ErrorTypeValidation, "", message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(country, message string) *SearchError {
	return New(ErrorTypeConfiguration, country, message, nil)
}

// TypeOf returns the ErrorType of err if it is a SearchError, or "" otherwise.
func TypeOf(err error) ErrorType {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Type
	}
	return ""
}

// IsRetryable reports whether err is a retryable SearchError.
func IsRetryable(err error) bool {
	var se *SearchError
	if errors.As(err, &se) {
		return se.IsRetryable()
	}
	return false
}
