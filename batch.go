package securestore

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// transformBatch hashes, derives and encrypts every operation
// concurrently. The result has the same order as ops regardless of which
// transform finishes first. The first failure is returned and the partial
// result discarded; transforms already running are left to finish. A
// panic inside a transform is reported as a CryptoError for its stage.
func (s *SecureStore) transformBatch(ops []Operation, call *Config) ([]BatchOp, error) {
	out := make([]BatchOp, len(ops))

	var g errgroup.Group
	for i, op := range ops {
		g.Go(func() error {
			cfg := Resolve(s.config, call, op.Config)
			t, err := s.transform(op, cfg)
			if err != nil {
				return err
			}
			out[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Batch transforms ops and forwards them to the underlying store in one
// Batch call. If any operation fails to transform nothing is written and
// that error is returned. The store's own result is returned unchanged.
func (s *SecureStore) Batch(ctx context.Context, ops []Operation, opts *WriteOptions) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if len(ops) == 0 {
		return nil
	}

	log := s.logger.With(zap.String("batch", uuid.New().String()), zap.Int("ops", len(ops)))
	log.Debug("transforming batch")

	transformed, err := s.transformBatch(ops, opts.config())
	if err != nil {
		log.Debug("batch aborted", zap.Error(err))
		return err
	}

	if err := s.db.Batch(ctx, transformed); err != nil {
		log.Debug("store batch failed", zap.Error(err))
		return err
	}
	log.Debug("batch written")
	return nil
}

// ChainedBatch accumulates operations for a single Batch call
type ChainedBatch struct {
	store *SecureStore
	ops   []Operation
}

// NewBatch starts an empty chained batch
func (s *SecureStore) NewBatch() *ChainedBatch {
	return &ChainedBatch{store: s}
}

// Put queues a put with an optional per-operation override
func (b *ChainedBatch) Put(key, value Value, cfg *Config) *ChainedBatch {
	b.ops = append(b.ops, Put(key, value).WithConfig(cfg))
	return b
}

// Delete queues a delete with an optional per-operation override
func (b *ChainedBatch) Delete(key Value, cfg *Config) *ChainedBatch {
	b.ops = append(b.ops, Delete(key).WithConfig(cfg))
	return b
}

// Len returns the number of queued operations
func (b *ChainedBatch) Len() int {
	return len(b.ops)
}

// Clear drops every queued operation
func (b *ChainedBatch) Clear() *ChainedBatch {
	b.ops = nil
	return b
}

// Write submits the queued operations. The batch is cleared on success.
func (b *ChainedBatch) Write(ctx context.Context, opts *WriteOptions) error {
	if err := b.store.Batch(ctx, b.ops, opts); err != nil {
		return err
	}
	b.ops = nil
	return nil
}
