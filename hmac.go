package securestore

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// hashFuncs maps OpenSSL style digest names to constructors
var hashFuncs = map[string]func() hash.Hash{
	"md5":        md5.New,
	"sha1":       sha1.New,
	"sha224":     sha256.New224,
	"sha256":     sha256.New,
	"sha384":     sha512.New384,
	"sha512":     sha512.New,
	"sha512-224": sha512.New512_224,
	"sha512-256": sha512.New512_256,
	"sha3-224":   sha3.New224,
	"sha3-256":   sha3.New256,
	"sha3-384":   sha3.New384,
	"sha3-512":   sha3.New512,
	"blake2b-256": func() hash.Hash {
		h, _ := blake2b.New256(nil)
		return h
	},
	"blake2b-512": func() hash.Hash {
		h, _ := blake2b.New512(nil)
		return h
	},
}

// HashAlgorithms returns the supported HMAC digest names, sorted
func HashAlgorithms() []string {
	names := make([]string, 0, len(hashFuncs))
	for name := range hashFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupHash returns the constructor for a digest name
func lookupHash(field, algorithm string) (func() hash.Hash, error) {
	if algorithm == "" {
		return nil, &ConfigError{Field: field, Message: "hash algorithm cannot be empty"}
	}
	fn, ok := hashFuncs[strings.ToLower(algorithm)]
	if !ok {
		return nil, &ConfigError{Field: field, Value: algorithm, Message: "unsupported hash algorithm", Err: ErrUnsupportedHash}
	}
	return fn, nil
}

// computeHMAC returns HMAC(secret, parts...) using the named digest
func computeHMAC(field, algorithm string, secret []byte, parts ...[]byte) ([]byte, error) {
	fn, err := lookupHash(field, algorithm)
	if err != nil {
		return nil, err
	}
	if secret == nil {
		return nil, &ConfigError{Field: field + ".key", Message: "secret key cannot be nil"}
	}

	mac := hmac.New(fn, secret)
	for _, p := range parts {
		mac.Write(p)
	}
	return mac.Sum(nil), nil
}

// HashKey computes the storage key for a logical key: HMAC over
// key || suffix, or over key alone when no suffix is configured.
// The result is deterministic for a fixed key and configuration.
func HashKey(key []byte, cfg KeyHMACConfig) ([]byte, error) {
	if cfg.Suffix != nil {
		return computeHMAC("keyHmac", cfg.Algorithm, cfg.SecretKey, key, cfg.Suffix)
	}
	return computeHMAC("keyHmac", cfg.Algorithm, cfg.SecretKey, key)
}
