package securestore

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Status is the lifecycle state of a SecureStore
type Status uint8

const (
	StatusNew Status = iota
	StatusOpening
	StatusOpen
	StatusClosing
	StatusClosed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusOpening:
		return "opening"
	case StatusOpen:
		return "open"
	case StatusClosing:
		return "closing"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SecureStore wraps a Store with transparent key hashing and value
// encryption
type SecureStore struct {
	db     Store
	config Config
	logger *zap.Logger

	mu     sync.RWMutex
	status Status
}

// Option configures a SecureStore
type Option func(*SecureStore)

// WithLogger sets the logger. Keys, values and secrets are never logged.
func WithLogger(logger *zap.Logger) Option {
	return func(s *SecureStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a secure store over db. config is the instance default
// layer; it is copied and may be partial when every call supplies the
// missing fields.
func New(db Store, config Config, opts ...Option) (*SecureStore, error) {
	if db == nil {
		return nil, ErrNilStore
	}

	s := &SecureStore{
		db:     db,
		config: config.clone(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Status returns the lifecycle state
func (s *SecureStore) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Open opens the underlying store
func (s *SecureStore) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusOpen:
		return nil
	case StatusNew, StatusClosed:
	default:
		return fmt.Errorf("cannot open store while %s", s.status)
	}

	prev := s.status
	s.status = StatusOpening
	if err := s.db.Open(ctx); err != nil {
		s.status = prev
		s.logger.Debug("open failed", zap.Error(err))
		return err
	}
	s.status = StatusOpen
	s.logger.Debug("store opened")
	return nil
}

// Close closes the underlying store
func (s *SecureStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusOpen {
		return ErrNotOpen
	}

	s.status = StatusClosing
	if err := s.db.Close(ctx); err != nil {
		s.status = StatusOpen
		s.logger.Debug("close failed", zap.Error(err))
		return err
	}
	s.status = StatusClosed
	s.logger.Debug("store closed")
	return nil
}

func (s *SecureStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status != StatusOpen {
		return ErrNotOpen
	}
	return nil
}

func checkKey(key Value) error {
	if key.Len() == 0 {
		return &ConfigError{Field: "key", Message: "key cannot be empty", Err: ErrEmptyKey}
	}
	return nil
}

// storageKey hashes a logical key, reporting failures for OpHash
func storageKey(key Value, cfg Config) ([]byte, error) {
	dbKey, err := HashKey(key.Bytes(), cfg.KeyHMAC)
	if err != nil {
		return nil, NewCryptoError(OpHash, err)
	}
	return dbKey, nil
}

// cipherKey derives the cipher key for key. A key length the configured
// cipher cannot use is rejected before any stretching work.
func cipherKey(key Value, cfg Config) ([]byte, error) {
	if spec, err := lookupCipher(cfg.Cipher.Algorithm); err == nil {
		if err := validateKeyLength(cfg.ValueScrypt.KeyLength, spec); err != nil {
			return nil, NewCryptoError(OpDerive, err)
		}
	}
	return DeriveCipherKey(key.Bytes(), cfg.ValueHMAC, cfg.ValueScrypt)
}

// recoverStage converts a panic in the given stage into a CryptoError
func recoverStage(stage *string, err *error) {
	if r := recover(); r != nil {
		*err = NewCryptoError(*stage, fmt.Errorf("%w: %v", ErrStagePanic, r))
	}
}

// transform turns a logical operation into the record operation the
// underlying store sees
func (s *SecureStore) transform(op Operation, cfg Config) (out BatchOp, err error) {
	if err := checkKey(op.Key); err != nil {
		return BatchOp{}, err
	}

	stage := OpHash
	defer recoverStage(&stage, &err)

	switch op.Type {
	case OpPut:
		stage = OpDerive
		key, err := cipherKey(op.Key, cfg)
		if err != nil {
			return BatchOp{}, err
		}
		stage = OpEncrypt
		ciphertext, err := EncryptValue(op.Value.Bytes(), key, cfg.Cipher)
		if err != nil {
			return BatchOp{}, err
		}
		stage = OpHash
		dbKey, err := storageKey(op.Key, cfg)
		if err != nil {
			return BatchOp{}, err
		}
		return BatchOp{Type: OpPut, Key: dbKey, Value: ciphertext}, nil

	case OpDelete:
		dbKey, err := storageKey(op.Key, cfg)
		if err != nil {
			return BatchOp{}, err
		}
		return BatchOp{Type: OpDelete, Key: dbKey}, nil

	default:
		return BatchOp{}, &ConfigError{Field: "type", Value: op.Type, Message: "unknown operation type", Err: ErrUnsupportedOpType}
	}
}

// openRecord derives the cipher key for key and decrypts a stored record
func openRecord(key Value, encrypted []byte, cfg Config) (plaintext []byte, err error) {
	stage := OpDerive
	defer recoverStage(&stage, &err)

	k, err := cipherKey(key, cfg)
	if err != nil {
		return nil, err
	}
	stage = OpDecrypt
	return DecryptValue(encrypted, k, cfg.Cipher)
}

// decodeText replaces each invalid UTF-8 byte with U+FFFD
func decodeText(b []byte) []byte {
	if utf8.Valid(b) {
		return b
	}
	return []byte(string([]rune(string(b))))
}

// Get fetches and decrypts the value stored under key. Errors from the
// underlying store, including ErrNotFound, are returned unchanged;
// decryption failures are CryptoErrors for OpDecrypt.
func (s *SecureStore) Get(ctx context.Context, key Value, opts *ReadOptions) (Value, error) {
	if err := s.checkOpen(); err != nil {
		return Value{}, err
	}
	if err := checkKey(key); err != nil {
		return Value{}, err
	}

	cfg := Resolve(s.config, opts.config())

	dbKey, err := storageKey(key, cfg)
	if err != nil {
		return Value{}, err
	}

	encrypted, err := s.db.Get(ctx, dbKey)
	if err != nil {
		return Value{}, err
	}

	plaintext, err := openRecord(key, encrypted, cfg)
	if err != nil {
		s.logger.Debug("decrypt failed", zap.Error(err))
		return Value{}, err
	}

	if opts != nil && opts.AsText {
		return Value{kind: KindText, data: decodeText(plaintext)}, nil
	}
	return BytesValue(plaintext), nil
}

// Put encrypts value and stores it under the hashed key
func (s *SecureStore) Put(ctx context.Context, key, value Value, opts *WriteOptions) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	op, err := s.transform(Put(key, value), Resolve(s.config, opts.config()))
	if err != nil {
		return err
	}
	return s.db.Put(ctx, op.Key, op.Value)
}

// Delete removes the record stored under the hashed key
func (s *SecureStore) Delete(ctx context.Context, key Value, opts *WriteOptions) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	op, err := s.transform(Delete(key), Resolve(s.config, opts.config()))
	if err != nil {
		return err
	}
	return s.db.Delete(ctx, op.Key)
}

func (o *ReadOptions) config() *Config {
	if o == nil {
		return nil
	}
	return o.Config
}

func (o *WriteOptions) config() *Config {
	if o == nil {
		return nil
	}
	return o.Config
}
