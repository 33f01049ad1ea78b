// Package securestore provides a transparent encryption layer in front of
// a key-value store.
//
// # Overview
//
// A SecureStore wraps any Store implementation. Logical keys never reach
// the store: each one is replaced by an HMAC digest, the storage key.
// Values are encrypted under a per-record cipher key derived from the
// logical key and a secret, so no two records share a cipher key unless
// they share a logical key.
//
// # Key Derivation
//
// Storage key:
//
//	HMAC(keyHmac.algorithm, keyHmac.key, key || keyHmac.suffix)
//
// Cipher key:
//
//	password = HMAC(valueHmac.algorithm, valueHmac.key, valueHmac.prefix || key)
//	cipherKey = scrypt(password, valueScrypt.salt, N, r, p, valueScrypt.keylen)
//
// Both are deterministic. Changing any parameter makes previously written
// records unreachable or unreadable; nothing about the parameters is
// persisted.
//
// # Basic Usage
//
//	config := securestore.Config{
//	    Cipher: securestore.CipherConfig{
//	        Algorithm: "aes-192-cbc",
//	        IV:        iv, // 16 bytes
//	    },
//	    KeyHMAC:   securestore.KeyHMACConfig{Algorithm: "sha512", SecretKey: []byte("keyHmac key")},
//	    ValueHMAC: securestore.ValueHMACConfig{Algorithm: "sha512", SecretKey: []byte("valueHmac key")},
//	    ValueScrypt: securestore.ScryptConfig{
//	        KeyLength: 24,
//	        Salt:      []byte("valueScrypt salt"),
//	    },
//	}
//
//	db, err := securestore.New(securestore.NewMemStore(), config)
//	if err != nil {
//	    panic(err)
//	}
//	db.Open(ctx)
//	db.Put(ctx, securestore.Text("name"), securestore.Text("value"), nil)
//	v, err := db.Get(ctx, securestore.Text("name"), &securestore.ReadOptions{AsText: true})
//
// # Configuration Layers
//
// Every call and every batch operation may carry a partial Config. The
// effective configuration is resolved field by field: per-operation over
// per-call over the instance configuration given to New.
//
// # Security Considerations
//
// The supported ciphers (AES in CBC, ECB and CTR modes, ChaCha20) are not
// authenticated, and the configured IV is reused for every record.
// Padded modes detect most corruption as a padding error; stream modes
// do not detect it at all. Callers that need integrity must provide it
// elsewhere.
package securestore
