// Package redis is a credstore.Store kept in Redis. It suits a backend that
// holds sessions on behalf of browser clients and runs more than one replica:
// every replica sees the same credentials under the same namespace.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/safescrow/dashboard/pkg/credstore"
)

// Config controls key layout and expiry.
type Config struct {
	// Namespace prefixes both keys, e.g. "escrow:session:<user>". Required.
	Namespace string

	// TTL expires both keys when set. Zero keeps them until Clear.
	TTL time.Duration
}

type Store struct {
	rdb goredis.UniversalClient
	cfg Config
}

var _ credstore.Store = (*Store)(nil)

// New wraps an existing client. The caller owns the client's lifecycle.
func New(rdb goredis.UniversalClient, cfg Config) (*Store, error) {
	if rdb == nil {
		return nil, errors.New("credstore/redis: nil client")
	}
	if cfg.Namespace == "" {
		return nil, errors.New("credstore/redis: namespace is required")
	}
	return &Store{rdb: rdb, cfg: cfg}, nil
}

func (s *Store) key(slot string) string {
	return s.cfg.Namespace + ":" + slot
}

// Save writes both keys in one MULTI/EXEC block.
func (s *Store) Save(ctx context.Context, access, refresh string) error {
	if access == "" {
		return credstore.ErrEmptyAccessToken
	}

	_, err := s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, s.key(credstore.KeyAccessToken), access, s.cfg.TTL)
		if refresh != "" {
			p.Set(ctx, s.key(credstore.KeyRefreshToken), refresh, s.cfg.TTL)
		} else if s.cfg.TTL > 0 {
			p.Expire(ctx, s.key(credstore.KeyRefreshToken), s.cfg.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (credstore.Credentials, error) {
	vals, err := s.rdb.MGet(ctx,
		s.key(credstore.KeyAccessToken),
		s.key(credstore.KeyRefreshToken),
	).Result()
	if err != nil {
		return credstore.Credentials{}, fmt.Errorf("failed to load credentials: %w", err)
	}

	var creds credstore.Credentials
	if v, ok := vals[0].(string); ok {
		creds.AccessToken = v
	}
	if v, ok := vals[1].(string); ok {
		creds.RefreshToken = v
	}
	return creds, nil
}

func (s *Store) Clear(ctx context.Context) error {
	err := s.rdb.Del(ctx,
		s.key(credstore.KeyAccessToken),
		s.key(credstore.KeyRefreshToken),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
