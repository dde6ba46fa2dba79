// Package store owns the persisted chain state: the ordered activity chain
// and the finished-id set, kept under two well-known keys of a durable
// key-value backend.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Rusith21/Autism-parent-app/internal/domain"
	"github.com/Rusith21/Autism-parent-app/internal/platform/logger"
)

// Persisted keys. The values fully replace the key on every write.
const (
	ChainKey    = "chain"
	FinishedKey = "finished"
)

// KV is the durable primitive underneath the chain store. Implementations
// must make every write immediately durable and visible to the next read.
type KV interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, value string) error
	GetStringList(ctx context.Context, key string) ([]string, error)
	SetStringList(ctx context.Context, key string, values []string) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// ChainStore reads and writes chain state. It keeps no in-memory cache:
// each call goes back to the KV backend, so instances are stateless and
// safe to reconstruct at any time.
type ChainStore interface {
	// LoadChain returns the persisted chain, or an empty chain when the key
	// is absent or the stored bytes no longer decode. Corrupted local state
	// must never block the user.
	LoadChain(ctx context.Context) (domain.Chain, error)
	// SaveChain replaces the persisted chain.
	SaveChain(ctx context.Context, chain domain.Chain) error
	// LoadFinished returns the persisted finished set.
	LoadFinished(ctx context.Context) (domain.FinishedSet, error)
	// MarkFinished records id as finished. Marking an already-finished id
	// is a no-op.
	MarkFinished(ctx context.Context, id string) error
	// ResetAll clears both the chain and the finished set.
	ResetAll(ctx context.Context) error
}

type chainStore struct {
	kv  KV
	log *logger.Logger
}

func NewChainStore(kv KV, baseLog *logger.Logger) ChainStore {
	return &chainStore{
		kv:  kv,
		log: baseLog.With("store", "ChainStore"),
	}
}

func (s *chainStore) LoadChain(ctx context.Context) (domain.Chain, error) {
	raw, ok, err := s.kv.GetString(ctx, ChainKey)
	if err != nil {
		return nil, fmt.Errorf("load chain: %w", err)
	}
	if !ok || raw == "" {
		return domain.Chain{}, nil
	}
	var chain domain.Chain
	if err := json.Unmarshal([]byte(raw), &chain); err != nil {
		// Malformed local cache: recover as empty instead of failing the
		// caller.
		s.log.Warn("persisted chain did not decode, treating as empty", "error", err)
		return domain.Chain{}, nil
	}
	return chain, nil
}

func (s *chainStore) SaveChain(ctx context.Context, chain domain.Chain) error {
	raw, err := json.Marshal(chain)
	if err != nil {
		return fmt.Errorf("encode chain: %w", err)
	}
	if err := s.kv.SetString(ctx, ChainKey, string(raw)); err != nil {
		return fmt.Errorf("save chain: %w", err)
	}
	return nil
}

func (s *chainStore) LoadFinished(ctx context.Context) (domain.FinishedSet, error) {
	ids, err := s.kv.GetStringList(ctx, FinishedKey)
	if err != nil {
		return nil, fmt.Errorf("load finished: %w", err)
	}
	return domain.FinishedSet(ids), nil
}

func (s *chainStore) MarkFinished(ctx context.Context, id string) error {
	finished, err := s.LoadFinished(ctx)
	if err != nil {
		return err
	}
	if finished.Contains(id) {
		return nil
	}
	finished = finished.Add(id)
	if err := s.kv.SetStringList(ctx, FinishedKey, finished); err != nil {
		return fmt.Errorf("mark finished: %w", err)
	}
	return nil
}

func (s *chainStore) ResetAll(ctx context.Context) error {
	if err := s.kv.Delete(ctx, ChainKey, FinishedKey); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}
