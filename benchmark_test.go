package securestore

import (
	"bytes"
	"context"
	"fmt"
	"testing"
)

func BenchmarkHashKey(b *testing.B) {
	for _, alg := range []string{"sha256", "sha512", "sha3-256", "blake2b-512"} {
		b.Run(alg, func(b *testing.B) {
			cfg := KeyHMACConfig{Algorithm: alg, SecretKey: []byte("secret")}
			key := []byte("user:1234567890")
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := HashKey(key, cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDeriveCipherKey(b *testing.B) {
	cfg := testConfig()
	for _, cost := range []int{1024, 16384} {
		b.Run(fmt.Sprintf("N=%d", cost), func(b *testing.B) {
			s := cfg.ValueScrypt
			s.Options.Cost = cost
			for i := 0; i < b.N; i++ {
				if _, err := DeriveCipherKey([]byte("key"), cfg.ValueHMAC, s); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEncryptValue(b *testing.B) {
	sizes := []int{
		1024,        // 1 KB
		64 * 1024,   // 64 KB
		1024 * 1024, // 1 MB
	}

	for _, alg := range []string{"aes-256-cbc", "aes-256-ctr", "chacha20"} {
		spec := cipherSpecs[alg]
		cfg := CipherConfig{Algorithm: alg, IV: make([]byte, spec.ivSizes[0])}
		key := bytes.Repeat([]byte{1}, spec.keySize)

		for _, size := range sizes {
			b.Run(fmt.Sprintf("%s/%dKB", alg, size/1024), func(b *testing.B) {
				data := make([]byte, size)
				b.SetBytes(int64(size))
				for i := 0; i < b.N; i++ {
					if _, err := EncryptValue(data, key, cfg); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkBatch(b *testing.B) {
	ctx := context.Background()
	s := newTestStore(b, NewMemStore())

	for _, n := range []int{1, 16, 64} {
		ops := make([]Operation, n)
		for i := range ops {
			ops[i] = Put(Text(fmt.Sprintf("key-%d", i)), Text("value"))
		}

		b.Run(fmt.Sprintf("ops=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if err := s.Batch(ctx, ops, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
