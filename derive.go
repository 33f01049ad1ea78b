package securestore

import (
	"golang.org/x/crypto/scrypt"
)

// scryptParams are the effective scrypt parameters after defaults
type scryptParams struct {
	n, r, p, maxMem, keyLen int
}

// effectiveScrypt applies defaults to unset scrypt options
func effectiveScrypt(cfg ScryptConfig) scryptParams {
	p := scryptParams{
		n:      cfg.Options.Cost,
		r:      cfg.Options.BlockSize,
		p:      cfg.Options.Parallelization,
		maxMem: cfg.Options.MaxMemory,
		keyLen: cfg.KeyLength,
	}
	if p.n == 0 {
		p.n = DefaultScryptCost
	}
	if p.r == 0 {
		p.r = DefaultScryptBlockSize
	}
	if p.p == 0 {
		p.p = DefaultScryptParallelization
	}
	if p.maxMem == 0 {
		p.maxMem = DefaultScryptMaxMemory
	}
	return p
}

// DeriveCipherKey derives the per-record cipher key for a logical key.
// The password is HMAC over prefix || key (key alone without a prefix),
// which is then stretched with scrypt. Any failure is reported as a
// CryptoError for OpDerive.
func DeriveCipherKey(key []byte, h ValueHMACConfig, s ScryptConfig) ([]byte, error) {
	var (
		password []byte
		err      error
	)
	if h.Prefix != nil {
		password, err = computeHMAC("valueHmac", h.Algorithm, h.SecretKey, h.Prefix, key)
	} else {
		password, err = computeHMAC("valueHmac", h.Algorithm, h.SecretKey, key)
	}
	if err != nil {
		return nil, NewCryptoError(OpDerive, err)
	}

	if err := ValidateScrypt(s); err != nil {
		return nil, NewCryptoError(OpDerive, err)
	}

	p := effectiveScrypt(s)
	cipherKey, err := scrypt.Key(password, s.Salt, p.n, p.r, p.p, p.keyLen)
	if err != nil {
		return nil, NewCryptoError(OpDerive, err)
	}
	return cipherKey, nil
}
