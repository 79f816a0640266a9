package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"

	"github.com/kailas-cloud/paralegal/internal/db"
)

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().Get().Key(key).Build()
	data, err := s.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// Set stores a value at the given key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.b().Set().Key(key).Value(string(value)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// unlockScript deletes the lock only while it still carries the caller's token.
const unlockScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`

// TryLock acquires key with SET NX PX under a fresh owner token.
// Returns ok=false when another holder owns it.
func (s *Store) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	cmd := s.b().Arbitrary("SET").Keys(key).
		Args(token, "NX", "PX", strconv.FormatInt(ttl.Milliseconds(), 10)).
		Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return "", false, nil
		}
		return "", false, &db.Error{Op: db.OpSet, Err: err}
	}
	return token, true, nil
}

// Unlock releases a lock taken with TryLock. A lock that expired and was
// taken over by another holder is left alone and reported as ErrLockNotHeld.
func (s *Store) Unlock(ctx context.Context, key, token string) error {
	cmd := s.b().Eval().Script(unlockScript).Numkeys(1).Key(key).Arg(token).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return &db.Error{Op: db.OpEval, Err: err}
	}
	if n == 0 {
		return db.ErrLockNotHeld
	}
	return nil
}
