package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/affiliate/backend/internal/domain/onboarding"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultSessionKeyPrefix = "affiliate:onboarding:"
	defaultSessionTTL       = 24 * time.Hour
)

// RedisSessionRepository stores onboarding sessions in Redis so that
// several gateway instances can serve the same user.
//
// Keys:
//
//	<prefix>session:<id>   JSON encoded session
//	<prefix>user:<userID>  id of the user's live session
//
// Both keys expire after the configured TTL, which bounds abandoned sessions.
type RedisSessionRepository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSessionRepository creates a repository on an existing Redis client
func NewRedisSessionRepository(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSessionRepository {
	if keyPrefix == "" {
		keyPrefix = defaultSessionKeyPrefix
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessionRepository{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (r *RedisSessionRepository) sessionKey(id uuid.UUID) string {
	return r.keyPrefix + "session:" + id.String()
}

func (r *RedisSessionRepository) userKey(userID string) string {
	return r.keyPrefix + "user:" + userID
}

// FindByID loads a session by ID
func (r *RedisSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*onboarding.OnboardingSession, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return decodeSession(data)
}

// FindLiveByUser loads the user's active session through the user index
func (r *RedisSessionRepository) FindLiveByUser(ctx context.Context, userID string) (*onboarding.OnboardingSession, error) {
	raw, err := r.client.Get(ctx, r.userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user session index: %w", err)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, shared.ErrNotFound
	}

	session, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsLive() {
		return nil, shared.ErrNotFound
	}
	return session, nil
}

// Save writes the session inside a WATCH transaction. The write is rejected
// with ErrConcurrencyConflict if the stored version differs from the
// session's version or if the key changed while the transaction was open,
// and with ErrNotFound if a previously stored session has been deleted.
func (r *RedisSessionRepository) Save(ctx context.Context, session *onboarding.OnboardingSession) error {
	key := r.sessionKey(session.ID)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if session.IsStored() {
				return shared.ErrNotFound
			}
		case err != nil:
			return fmt.Errorf("failed to read session version: %w", err)
		default:
			stored, err := decodeSession(data)
			if err != nil {
				return err
			}
			if stored.Version != session.Version {
				return shared.ErrConcurrencyConflict
			}
			session.IncrementVersion()
		}

		encoded, err := encodeSession(session)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, r.ttl)
			if session.IsLive() {
				pipe.Set(ctx, r.userKey(session.UserID), session.ID.String(), r.ttl)
			} else {
				pipe.Del(ctx, r.userKey(session.UserID))
			}
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return shared.ErrConcurrencyConflict
	}
	if err != nil {
		return err
	}
	session.MarkStored()
	return nil
}

// Delete removes the session and, if it still points at it, the user index
func (r *RedisSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	session, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	userKey := r.userKey(session.UserID)
	indexed, err := r.client.Get(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to read user session index: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.sessionKey(id))
		if indexed == id.String() {
			pipe.Del(ctx, userKey)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ensure RedisSessionRepository implements SessionRepository
var _ onboarding.SessionRepository = (*RedisSessionRepository)(nil)
