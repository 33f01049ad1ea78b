package securestore

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name    string
		err     *ConfigError
		wantMsg string
	}{
		{
			name:    "with field",
			err:     &ConfigError{Field: "keyHmac.algorithm", Value: "rot13", Message: "unsupported hash algorithm"},
			wantMsg: "config error: keyHmac.algorithm: unsupported hash algorithm",
		},
		{
			name:    "without field",
			err:     &ConfigError{Message: "config cannot be nil"},
			wantMsg: "config error: config cannot be nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ConfigError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}

	wrapped := &ConfigError{Field: "cipher.iv", Message: "bad", Err: ErrInvalidIVLength}
	if wrapped.Unwrap() != ErrInvalidIVLength {
		t.Error("ConfigError.Unwrap() did not return the cause")
	}
}

func TestCryptoError(t *testing.T) {
	err := NewCryptoError(OpDecrypt, ErrInvalidPadding)

	if got, want := err.Error(), "decrypt error: invalid padding"; got != want {
		t.Errorf("CryptoError.Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidPadding) {
		t.Error("CryptoError does not unwrap to its cause")
	}
	if !IsCryptoError(err) || !IsDecryptError(err) {
		t.Error("IsCryptoError/IsDecryptError = false, want true")
	}
	if IsDecryptError(NewCryptoError(OpDerive, ErrInvalidScryptParam)) {
		t.Error("IsDecryptError() = true for a derive error")
	}
}

func TestErrorHelpers(t *testing.T) {
	cfgErr := NewConfigError("valueScrypt.keylen", 0, "must be positive")
	stage := NewCryptoError(OpDerive, cfgErr)
	wrapped := fmt.Errorf("outer: %w", stage)

	tests := []struct {
		name       string
		err        error
		wantConfig bool
		wantCrypto bool
		wantNotFnd bool
	}{
		{"config", cfgErr, true, false, false},
		{"crypto wrapping config", stage, true, true, false},
		{"wrapped twice", wrapped, true, true, false},
		{"not found", ErrNotFound, false, false, true},
		{"wrapped not found", fmt.Errorf("get: %w", ErrNotFound), false, false, true},
		{"plain", errors.New("boom"), false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfigError(tt.err); got != tt.wantConfig {
				t.Errorf("IsConfigError() = %v, want %v", got, tt.wantConfig)
			}
			if got := IsCryptoError(tt.err); got != tt.wantCrypto {
				t.Errorf("IsCryptoError() = %v, want %v", got, tt.wantCrypto)
			}
			if got := IsNotFound(tt.err); got != tt.wantNotFnd {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.wantNotFnd)
			}
		})
	}
}
