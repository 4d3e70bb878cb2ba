package kbmodel

import (
	"errors"
	"fmt"
)

// Sentinel validation errors. These fail fast and are never retried.
var (
	ErrEmptyInput        = errors.New("input text is empty")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// ConfigError marks a dependency that was missing or invalid at
// construction. The owning operation stays permanently unavailable.
type ConfigError struct {
	Component string
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s misconfigured: %s", e.Component, e.Reason)
}

// ProviderError wraps any failure from an external embedding, storage or
// model provider. The retrieval path propagates it without retrying; the
// caller owns retry policy.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func WrapProvider(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}

// ItemError records the failure of a single item inside a batch whose
// siblings succeeded.
type ItemError struct {
	Id     string `json:"id"`
	Reason string `json:"reason"`
}

// BatchReport is the returned value for batch ingestion. It is not an
// error: partial success is the normal outcome of indexing a folder.
type BatchReport struct {
	Total   int         `json:"total"`
	Indexed int         `json:"indexed"`
	Errors  []ItemError `json:"errors"`
}
