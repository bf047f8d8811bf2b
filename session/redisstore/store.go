package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-portal-session/internal/errors"
	"github.com/jrsteele09/go-portal-session/session"
	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Store keeps each profile's session in one Redis hash.
// Writes run as MULTI/EXEC so a reader sees either the old hash or the new one.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ session.Store = (*Store)(nil)

// New wraps an existing client. A zero ttl keeps sessions until cleared.
func New(client *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Dial parses a redis:// URL, connects and pings the server
func Dial(ctx context.Context, redisURL, prefix string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid redis url")
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, pkgerrors.WithMessagef(errors.ErrStoreUnavailable, "ping %s: %v", opts.Addr, err)
	}
	return New(client, prefix, ttl), nil
}

func (s *Store) key(profileID string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, profileID)
}

// Write replaces the whole hash for a profile
func (s *Store) Write(ctx context.Context, profileID string, sess session.Session) error {
	if profileID == "" {
		return fmt.Errorf("profileID is required")
	}
	if err := session.Validate(sess); err != nil {
		return err
	}

	key := s.key(profileID)
	fields := sess.Fields()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return pkgerrors.WithMessagef(errors.ErrStoreUnavailable, "write %s: %v", key, err)
	}
	return nil
}

// Read loads the hash in a single round trip. Incomplete hashes read as nil.
func (s *Store) Read(ctx context.Context, profileID string) (*session.Session, error) {
	key := s.key(profileID)
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, pkgerrors.WithMessagef(errors.ErrStoreUnavailable, "read %s: %v", key, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	sess := session.FromFields(fields)
	if !sess.Complete() {
		return nil, nil
	}
	return &sess, nil
}

// Clear deletes the hash; deleting a missing key is not an error
func (s *Store) Clear(ctx context.Context, profileID string) error {
	key := s.key(profileID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return pkgerrors.WithMessagef(errors.ErrStoreUnavailable, "clear %s: %v", key, err)
	}
	return nil
}

// Close releases the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}
