package securestore

import (
	"errors"
	"fmt"
)

// Error types represent the stage at which an operation failed. Errors
// returned by the underlying Store are never wrapped in either type.

// ConfigError represents a missing or invalid configuration parameter
type ConfigError struct {
	Field   string // The configuration field that failed validation
	Value   any    // The invalid value, never a secret
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Crypto operations reported by CryptoError
const (
	OpHash    = "hash"
	OpDerive  = "derive"
	OpEncrypt = "encrypt"
	OpDecrypt = "decrypt"
)

// CryptoError represents a failure in one of the hashing, derivation or
// cipher stages
type CryptoError struct {
	Operation string // OpHash, OpDerive, OpEncrypt or OpDecrypt
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Operation, e.Message)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// Common sentinel errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrNotOpen            = errors.New("store is not open")
	ErrEmptyKey           = errors.New("key cannot be empty")
	ErrNilStore           = errors.New("underlying store cannot be nil")
	ErrInvalidCiphertext  = errors.New("invalid ciphertext")
	ErrInvalidPadding     = errors.New("invalid padding")
	ErrUnsupportedCipher  = errors.New("unsupported cipher algorithm")
	ErrUnsupportedHash    = errors.New("unsupported hash algorithm")
	ErrUnsupportedOpType  = errors.New("unsupported batch operation type")
	ErrInvalidKeyLength   = errors.New("invalid cipher key length")
	ErrInvalidIVLength    = errors.New("invalid initialization vector length")
	ErrMemoryLimitExceed  = errors.New("scrypt memory limit exceeded")
	ErrInvalidScryptParam = errors.New("invalid scrypt parameter")
	ErrStagePanic         = errors.New("panic during crypto operation")
)

// Helper functions for creating structured errors

// NewConfigError creates a new configuration error
func NewConfigError(field string, value any, message string) error {
	return &ConfigError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewCryptoError creates a new crypto error for the given operation
func NewCryptoError(operation string, err error) error {
	return &CryptoError{
		Operation: operation,
		Message:   err.Error(),
		Err:       err,
	}
}

// Error checking helpers

// IsConfigError checks if an error is, or wraps, a configuration error
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsCryptoError checks if an error is a crypto error
func IsCryptoError(err error) bool {
	var ce *CryptoError
	return errors.As(err, &ce)
}

// IsDecryptError checks if an error came from the decrypt stage
func IsDecryptError(err error) bool {
	var ce *CryptoError
	return errors.As(err, &ce) && ce.Operation == OpDecrypt
}

// IsNotFound checks if an error reports a missing record
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
