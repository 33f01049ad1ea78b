package securestore

import (
	"strings"
)

// Config holds the four layered sub-configurations. Every field is
// optional in an override layer; see Merge.
type Config struct {
	// Cipher selects the value encryption algorithm
	Cipher CipherConfig `yaml:"cipher"`

	// KeyHMAC derives storage keys from logical keys
	KeyHMAC KeyHMACConfig `yaml:"keyHmac"`

	// ValueHMAC is the password stage of cipher key derivation
	ValueHMAC ValueHMACConfig `yaml:"valueHmac"`

	// ValueScrypt is the stretching stage of cipher key derivation
	ValueScrypt ScryptConfig `yaml:"valueScrypt"`
}

// CipherConfig configures the value cipher
type CipherConfig struct {
	Algorithm string        `yaml:"algorithm"` // e.g. "aes-256-cbc"
	IV        Bytes         `yaml:"iv"`        // Used as-is for every record
	Options   CipherOptions `yaml:"options"`
}

// CipherOptions contains algorithm specific options
type CipherOptions struct {
	// AutoPadding toggles PKCS#7 padding for block modes. Defaults to true.
	AutoPadding *bool `yaml:"autoPadding"`
}

// KeyHMACConfig configures the storage key hash
type KeyHMACConfig struct {
	Algorithm string `yaml:"algorithm"` // e.g. "sha512"
	SecretKey Bytes  `yaml:"key"`
	Suffix    Bytes  `yaml:"suffix"` // Appended to the logical key
}

// ValueHMACConfig configures the password stage of cipher key derivation
type ValueHMACConfig struct {
	Algorithm string `yaml:"algorithm"`
	SecretKey Bytes  `yaml:"key"`
	Prefix    Bytes  `yaml:"prefix"` // Prepended to the logical key
}

// ScryptConfig configures the stretching stage of cipher key derivation
type ScryptConfig struct {
	KeyLength int           `yaml:"keylen"` // Must match the cipher key size
	Salt      Bytes         `yaml:"salt"`
	Options   ScryptOptions `yaml:"options"`
}

// ScryptOptions contains scrypt cost parameters. Zero values select the
// defaults below.
type ScryptOptions struct {
	Cost            int `yaml:"cost"`            // N, power of two > 1
	BlockSize       int `yaml:"blockSize"`       // r
	Parallelization int `yaml:"parallelization"` // p
	MaxMemory       int `yaml:"maxmem"`          // Upper bound for 128*N*r bytes
}

// Scrypt defaults
const (
	DefaultScryptCost            = 16384
	DefaultScryptBlockSize       = 8
	DefaultScryptParallelization = 1
	DefaultScryptMaxMemory       = 32 << 20
)

// Bytes is a byte slice that may be written in YAML as "hex:...",
// "base64:..." or a plain UTF-8 string. A plain string that itself starts
// with one of these prefixes is written with a "raw:" prefix.
type Bytes []byte

// Kind tags the representation of a Value
type Kind uint8

const (
	// KindBytes is raw binary data
	KindBytes Kind = iota
	// KindText is UTF-8 text
	KindText
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Value is a key or value in either of its accepted representations.
// Both are converted to bytes before any transform.
type Value struct {
	kind Kind
	data []byte
}

// BytesValue wraps raw bytes
func BytesValue(b []byte) Value {
	return Value{kind: KindBytes, data: b}
}

// Text wraps a string, encoded as UTF-8
func Text(s string) Value {
	return Value{kind: KindText, data: []byte(s)}
}

// Kind reports whether v holds bytes or text
func (v Value) Kind() Kind {
	return v.kind
}

// Bytes returns the byte form of v
func (v Value) Bytes() []byte {
	return v.data
}

// String returns v decoded as UTF-8
func (v Value) String() string {
	return string(v.data)
}

// Len returns the length of v in bytes
func (v Value) Len() int {
	return len(v.data)
}

// OpType identifies a batch operation
type OpType uint8

const (
	// OpPut stores a value
	OpPut OpType = iota + 1
	// OpDelete removes a value
	OpDelete
)

// String returns the string representation of the operation type
func (t OpType) String() string {
	switch t {
	case OpPut:
		return "put"
	case OpDelete:
		return "del"
	default:
		return "unknown"
	}
}

// ParseOpType parses "put", "del" or "delete"
func ParseOpType(s string) (OpType, error) {
	switch strings.ToLower(s) {
	case "put":
		return OpPut, nil
	case "del", "delete":
		return OpDelete, nil
	default:
		return 0, &ConfigError{Field: "type", Value: s, Message: "unknown operation type", Err: ErrUnsupportedOpType}
	}
}

// Operation is a logical batch operation
type Operation struct {
	Type   OpType
	Key    Value
	Value  Value   // Ignored for OpDelete
	Config *Config // Optional per-operation override
}

// Put returns a put operation
func Put(key, value Value) Operation {
	return Operation{Type: OpPut, Key: key, Value: value}
}

// Delete returns a delete operation
func Delete(key Value) Operation {
	return Operation{Type: OpDelete, Key: key}
}

// WithConfig returns a copy of op carrying the given override
func (op Operation) WithConfig(cfg *Config) Operation {
	op.Config = cfg
	return op
}

// BatchOp is a transformed operation as handed to the underlying store
type BatchOp struct {
	Type  OpType
	Key   []byte // Storage key
	Value []byte // Ciphertext, nil for OpDelete
}

// ReadOptions are per-call options for Get
type ReadOptions struct {
	// Config overrides the instance configuration
	Config *Config

	// AsText returns the value as KindText instead of KindBytes
	AsText bool
}

// WriteOptions are per-call options for Put, Delete and Batch
type WriteOptions struct {
	// Config overrides the instance configuration
	Config *Config
}
