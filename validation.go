package securestore

import (
	"fmt"
)

// Configuration validation helpers. Each returns a *ConfigError.

// maxDerivedKeyLength bounds the scrypt output length in bytes
const maxDerivedKeyLength = 1024

// ValidateKeyHMAC checks the storage key hash parameters
func ValidateKeyHMAC(cfg KeyHMACConfig) error {
	if _, err := lookupHash("keyHmac", cfg.Algorithm); err != nil {
		return err
	}
	if cfg.SecretKey == nil {
		return &ConfigError{Field: "keyHmac.key", Message: "secret key cannot be nil"}
	}
	return nil
}

// ValidateValueHMAC checks the password stage parameters
func ValidateValueHMAC(cfg ValueHMACConfig) error {
	if _, err := lookupHash("valueHmac", cfg.Algorithm); err != nil {
		return err
	}
	if cfg.SecretKey == nil {
		return &ConfigError{Field: "valueHmac.key", Message: "secret key cannot be nil"}
	}
	return nil
}

// ValidateScrypt checks the stretching parameters after defaults
func ValidateScrypt(cfg ScryptConfig) error {
	p := effectiveScrypt(cfg)

	if p.keyLen <= 0 || p.keyLen > maxDerivedKeyLength {
		return &ConfigError{
			Field:   "valueScrypt.keylen",
			Value:   p.keyLen,
			Message: fmt.Sprintf("derived key length must be between 1 and %d bytes", maxDerivedKeyLength),
			Err:     ErrInvalidScryptParam,
		}
	}
	if p.n <= 1 || p.n&(p.n-1) != 0 {
		return &ConfigError{Field: "valueScrypt.options.cost", Value: p.n, Message: "cost must be a power of two greater than 1", Err: ErrInvalidScryptParam}
	}
	if p.r <= 0 || p.p <= 0 || uint64(p.r)*uint64(p.p) >= 1<<30 {
		return &ConfigError{Field: "valueScrypt.options", Value: fmt.Sprintf("r=%d p=%d", p.r, p.p), Message: "block size and parallelization out of range", Err: ErrInvalidScryptParam}
	}
	if p.maxMem < 0 {
		return &ConfigError{Field: "valueScrypt.options.maxmem", Value: p.maxMem, Message: "memory limit cannot be negative", Err: ErrInvalidScryptParam}
	}
	// 128*N*r > maxmem, without overflowing
	if uint64(p.n) > uint64(p.maxMem)/(128*uint64(p.r)) {
		return &ConfigError{
			Field:   "valueScrypt.options.maxmem",
			Value:   p.maxMem,
			Message: fmt.Sprintf("cost %d with block size %d exceeds the memory limit of %d bytes", p.n, p.r, p.maxMem),
			Err:     ErrMemoryLimitExceed,
		}
	}
	if cfg.Salt == nil {
		return &ConfigError{Field: "valueScrypt.salt", Message: "salt cannot be nil"}
	}
	return nil
}

// ValidateCipher checks the cipher algorithm, IV and derived key length
func ValidateCipher(cfg CipherConfig, keyLen int) error {
	spec, err := lookupCipher(cfg.Algorithm)
	if err != nil {
		return err
	}
	if err := validateKeyLength(keyLen, spec); err != nil {
		return err
	}
	return validateIV(cfg.IV, spec)
}

// validateKeyLength checks the cipher key length for an algorithm
func validateKeyLength(n int, spec cipherSpec) error {
	if n != spec.keySize {
		return &ConfigError{
			Field:   "valueScrypt.keylen",
			Value:   n,
			Message: fmt.Sprintf("invalid key size: got %d bytes, expected %d bytes for %s", n, spec.keySize, spec.name),
			Err:     ErrInvalidKeyLength,
		}
	}
	return nil
}

// validateIV checks the initialization vector length for an algorithm
func validateIV(iv []byte, spec cipherSpec) error {
	for _, size := range spec.ivSizes {
		if len(iv) == size {
			return nil
		}
	}
	return &ConfigError{
		Field:   "cipher.iv",
		Value:   len(iv),
		Message: fmt.Sprintf("invalid IV size: got %d bytes, expected %v bytes for %s", len(iv), spec.ivSizes, spec.name),
		Err:     ErrInvalidIVLength,
	}
}
