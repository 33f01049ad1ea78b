package securestore

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/absfs/absfs"
	"gopkg.in/yaml.v3"
)

// Merge returns a copy of c with every field set in override replacing the
// corresponding field of c. Fields are merged one by one; an override that
// sets only KeyHMAC.SecretKey keeps the algorithm and suffix of c.
// A field is set when it is a non-empty string, a non-nil slice, a non-zero
// number or a non-nil pointer.
func (c Config) Merge(override *Config) Config {
	if override == nil {
		return c
	}
	o := override

	c.Cipher.Algorithm = mergeString(c.Cipher.Algorithm, o.Cipher.Algorithm)
	c.Cipher.IV = mergeBytes(c.Cipher.IV, o.Cipher.IV)
	if o.Cipher.Options.AutoPadding != nil {
		c.Cipher.Options.AutoPadding = o.Cipher.Options.AutoPadding
	}

	c.KeyHMAC.Algorithm = mergeString(c.KeyHMAC.Algorithm, o.KeyHMAC.Algorithm)
	c.KeyHMAC.SecretKey = mergeBytes(c.KeyHMAC.SecretKey, o.KeyHMAC.SecretKey)
	c.KeyHMAC.Suffix = mergeBytes(c.KeyHMAC.Suffix, o.KeyHMAC.Suffix)

	c.ValueHMAC.Algorithm = mergeString(c.ValueHMAC.Algorithm, o.ValueHMAC.Algorithm)
	c.ValueHMAC.SecretKey = mergeBytes(c.ValueHMAC.SecretKey, o.ValueHMAC.SecretKey)
	c.ValueHMAC.Prefix = mergeBytes(c.ValueHMAC.Prefix, o.ValueHMAC.Prefix)

	c.ValueScrypt.KeyLength = mergeInt(c.ValueScrypt.KeyLength, o.ValueScrypt.KeyLength)
	c.ValueScrypt.Salt = mergeBytes(c.ValueScrypt.Salt, o.ValueScrypt.Salt)
	so := o.ValueScrypt.Options
	c.ValueScrypt.Options.Cost = mergeInt(c.ValueScrypt.Options.Cost, so.Cost)
	c.ValueScrypt.Options.BlockSize = mergeInt(c.ValueScrypt.Options.BlockSize, so.BlockSize)
	c.ValueScrypt.Options.Parallelization = mergeInt(c.ValueScrypt.Options.Parallelization, so.Parallelization)
	c.ValueScrypt.Options.MaxMemory = mergeInt(c.ValueScrypt.Options.MaxMemory, so.MaxMemory)

	return c
}

// Resolve merges the per-call and per-operation layers over the instance
// configuration. Later layers take precedence; nil layers are skipped.
func Resolve(instance Config, layers ...*Config) Config {
	for _, layer := range layers {
		instance = instance.Merge(layer)
	}
	return instance
}

func mergeString(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

func mergeBytes(base, override Bytes) Bytes {
	if override != nil {
		return override
	}
	return base
}

func mergeInt(base, override int) int {
	if override != 0 {
		return override
	}
	return base
}

// clone returns a deep copy of c so the caller cannot mutate it afterwards
func (c Config) clone() Config {
	c.Cipher.IV = cloneBytes(c.Cipher.IV)
	if c.Cipher.Options.AutoPadding != nil {
		v := *c.Cipher.Options.AutoPadding
		c.Cipher.Options.AutoPadding = &v
	}
	c.KeyHMAC.SecretKey = cloneBytes(c.KeyHMAC.SecretKey)
	c.KeyHMAC.Suffix = cloneBytes(c.KeyHMAC.Suffix)
	c.ValueHMAC.SecretKey = cloneBytes(c.ValueHMAC.SecretKey)
	c.ValueHMAC.Prefix = cloneBytes(c.ValueHMAC.Prefix)
	c.ValueScrypt.Salt = cloneBytes(c.ValueScrypt.Salt)
	return c
}

func cloneBytes(b Bytes) Bytes {
	if b == nil {
		return nil
	}
	out := make(Bytes, len(b))
	copy(out, b)
	return out
}

// Validate checks that c is complete enough to serve every operation.
// An instance configuration only needs to validate when no per-call
// overrides are going to fill it in.
func (c *Config) Validate() error {
	if c == nil {
		return NewConfigError("", nil, "config cannot be nil")
	}
	if err := ValidateKeyHMAC(c.KeyHMAC); err != nil {
		return err
	}
	if err := ValidateValueHMAC(c.ValueHMAC); err != nil {
		return err
	}
	if err := ValidateScrypt(c.ValueScrypt); err != nil {
		return err
	}
	return ValidateCipher(c.Cipher, c.ValueScrypt.KeyLength)
}

// ParseConfig decodes a YAML configuration document
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Message: "failed to parse config", Err: err}
	}
	return &cfg, nil
}

// LoadConfig reads and decodes a YAML configuration file from fs
func LoadConfig(fs absfs.FileSystem, path string) (*Config, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// UnmarshalYAML decodes "hex:<digits>", "base64:<data>", "raw:<text>" or a
// literal string. The raw prefix is stripped and the rest kept verbatim.
func (b *Bytes) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	switch {
	case strings.HasPrefix(s, "raw:"):
		*b = Bytes(strings.TrimPrefix(s, "raw:"))
	case strings.HasPrefix(s, "hex:"):
		out, err := hex.DecodeString(strings.TrimPrefix(s, "hex:"))
		if err != nil {
			return fmt.Errorf("line %d: invalid hex: %w", node.Line, err)
		}
		*b = out
	case strings.HasPrefix(s, "base64:"):
		out, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, "base64:"))
		if err != nil {
			return fmt.Errorf("line %d: invalid base64: %w", node.Line, err)
		}
		*b = out
	default:
		*b = Bytes(s)
	}
	return nil
}
