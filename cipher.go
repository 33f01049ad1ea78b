package securestore

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/chacha20"
)

// CipherEngine encrypts and decrypts values under a single cipher key
// and initialization vector
type CipherEngine interface {
	// Encrypt encrypts plaintext, padding it when the mode requires it
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext and strips any padding
	Decrypt(ciphertext []byte) ([]byte, error)
}

type cipherMode uint8

const (
	modeCBC cipherMode = iota
	modeECB
	modeCTR
	modeChaCha20
)

// cipherSpec describes a supported algorithm
type cipherSpec struct {
	name    string
	mode    cipherMode
	keySize int
	ivSizes []int
}

var cipherSpecs = map[string]cipherSpec{
	"aes-128-cbc": {name: "aes-128-cbc", mode: modeCBC, keySize: 16, ivSizes: []int{aes.BlockSize}},
	"aes-192-cbc": {name: "aes-192-cbc", mode: modeCBC, keySize: 24, ivSizes: []int{aes.BlockSize}},
	"aes-256-cbc": {name: "aes-256-cbc", mode: modeCBC, keySize: 32, ivSizes: []int{aes.BlockSize}},
	"aes-128-ecb": {name: "aes-128-ecb", mode: modeECB, keySize: 16, ivSizes: []int{0}},
	"aes-192-ecb": {name: "aes-192-ecb", mode: modeECB, keySize: 24, ivSizes: []int{0}},
	"aes-256-ecb": {name: "aes-256-ecb", mode: modeECB, keySize: 32, ivSizes: []int{0}},
	"aes-128-ctr": {name: "aes-128-ctr", mode: modeCTR, keySize: 16, ivSizes: []int{aes.BlockSize}},
	"aes-192-ctr": {name: "aes-192-ctr", mode: modeCTR, keySize: 24, ivSizes: []int{aes.BlockSize}},
	"aes-256-ctr": {name: "aes-256-ctr", mode: modeCTR, keySize: 32, ivSizes: []int{aes.BlockSize}},
	"chacha20": {
		name:    "chacha20",
		mode:    modeChaCha20,
		keySize: chacha20.KeySize,
		ivSizes: []int{chacha20.NonceSize, chacha20.NonceSizeX},
	},
}

// CipherAlgorithms returns the supported cipher names, sorted
func CipherAlgorithms() []string {
	names := make([]string, 0, len(cipherSpecs))
	for name := range cipherSpecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupCipher(algorithm string) (cipherSpec, error) {
	if algorithm == "" {
		return cipherSpec{}, &ConfigError{Field: "cipher.algorithm", Message: "cipher algorithm cannot be empty"}
	}
	spec, ok := cipherSpecs[strings.ToLower(algorithm)]
	if !ok {
		return cipherSpec{}, &ConfigError{Field: "cipher.algorithm", Value: algorithm, Message: "unsupported cipher algorithm", Err: ErrUnsupportedCipher}
	}
	return spec, nil
}

// NewCipherEngine creates a cipher engine for the configured algorithm.
// The IV is used exactly as configured.
func NewCipherEngine(cfg CipherConfig, key []byte) (CipherEngine, error) {
	spec, err := lookupCipher(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	if err := validateKeyLength(len(key), spec); err != nil {
		return nil, err
	}
	if err := validateIV(cfg.IV, spec); err != nil {
		return nil, err
	}

	iv := cloneBytes(cfg.IV)

	if spec.mode == modeChaCha20 {
		return &chachaEngine{key: cloneBytes(key), nonce: iv}, nil
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	switch spec.mode {
	case modeCTR:
		return &ctrEngine{block: block, iv: iv}, nil
	default:
		padding := cfg.Options.AutoPadding == nil || *cfg.Options.AutoPadding
		return &blockEngine{block: block, iv: iv, ecb: spec.mode == modeECB, padding: padding}, nil
	}
}

// blockEngine implements CBC and ECB with optional PKCS#7 padding
type blockEngine struct {
	block   cipher.Block
	iv      []byte
	ecb     bool
	padding bool
}

func (e *blockEngine) Encrypt(plaintext []byte) ([]byte, error) {
	bs := e.block.BlockSize()

	data := plaintext
	if e.padding {
		data = pkcs7Pad(plaintext, bs)
	} else if len(data)%bs != 0 {
		return nil, fmt.Errorf("data length %d is not a multiple of the block size %d", len(data), bs)
	}

	out := make([]byte, len(data))
	if e.ecb {
		for i := 0; i < len(data); i += bs {
			e.block.Encrypt(out[i:i+bs], data[i:i+bs])
		}
	} else {
		cipher.NewCBCEncrypter(e.block, e.iv).CryptBlocks(out, data)
	}
	return out, nil
}

func (e *blockEngine) Decrypt(ciphertext []byte) ([]byte, error) {
	bs := e.block.BlockSize()

	if len(ciphertext)%bs != 0 || (e.padding && len(ciphertext) == 0) {
		return nil, ErrInvalidCiphertext
	}

	out := make([]byte, len(ciphertext))
	if e.ecb {
		for i := 0; i < len(ciphertext); i += bs {
			e.block.Decrypt(out[i:i+bs], ciphertext[i:i+bs])
		}
	} else {
		cipher.NewCBCDecrypter(e.block, e.iv).CryptBlocks(out, ciphertext)
	}

	if !e.padding {
		return out, nil
	}
	return pkcs7Unpad(out, bs)
}

// ctrEngine implements AES in counter mode
type ctrEngine struct {
	block cipher.Block
	iv    []byte
}

func (e *ctrEngine) Encrypt(plaintext []byte) ([]byte, error) {
	out := make([]byte, len(plaintext))
	cipher.NewCTR(e.block, e.iv).XORKeyStream(out, plaintext)
	return out, nil
}

func (e *ctrEngine) Decrypt(ciphertext []byte) ([]byte, error) {
	return e.Encrypt(ciphertext)
}

// chachaEngine implements the unauthenticated ChaCha20 stream cipher
type chachaEngine struct {
	key   []byte
	nonce []byte
}

func (e *chachaEngine) Encrypt(plaintext []byte) ([]byte, error) {
	c, err := chacha20.NewUnauthenticatedCipher(e.key, e.nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20 cipher: %w", err)
	}
	out := make([]byte, len(plaintext))
	c.XORKeyStream(out, plaintext)
	return out, nil
}

func (e *chachaEngine) Decrypt(ciphertext []byte) ([]byte, error) {
	return e.Encrypt(ciphertext)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrInvalidPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}

// EncryptValue encrypts plaintext under a derived cipher key. Errors are
// reported as a CryptoError for OpEncrypt.
func EncryptValue(plaintext, key []byte, cfg CipherConfig) ([]byte, error) {
	engine, err := NewCipherEngine(cfg, key)
	if err != nil {
		return nil, NewCryptoError(OpEncrypt, err)
	}
	ciphertext, err := engine.Encrypt(plaintext)
	if err != nil {
		return nil, NewCryptoError(OpEncrypt, err)
	}
	return ciphertext, nil
}

// DecryptValue decrypts ciphertext under a derived cipher key. Errors,
// including bad padding and truncated input, are reported as a
// CryptoError for OpDecrypt.
func DecryptValue(ciphertext, key []byte, cfg CipherConfig) ([]byte, error) {
	engine, err := NewCipherEngine(cfg, key)
	if err != nil {
		return nil, NewCryptoError(OpDecrypt, err)
	}
	plaintext, err := engine.Decrypt(ciphertext)
	if err != nil {
		return nil, NewCryptoError(OpDecrypt, err)
	}
	return plaintext, nil
}
