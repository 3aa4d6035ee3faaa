package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
)

const sessionKeyPrefix = "booking:session:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore keeps sessions in Redis so the wizard survives instance
// restarts and works behind a load balancer.
func NewRedisStore(client *redis.Client, ttl time.Duration) SessionStore {
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NotFound("booking session", err)
	}
	if err != nil {
		return nil, apperrors.Infrastructure("failed to load booking session", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to decode booking session: %w", err)
	}
	return &session, nil
}

func (s *redisStore) Save(ctx context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode booking session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID.String(), payload, s.ttl).Err(); err != nil {
		return apperrors.Infrastructure("failed to save booking session", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+id.String()).Err(); err != nil {
		return apperrors.Infrastructure("failed to delete booking session", err)
	}
	return nil
}
