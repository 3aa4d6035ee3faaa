package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	apperrors "github.com/hopewell-clinic/booking-api/pkg/errors"
)

// SessionStore keeps open wizard sessions. Entries expire after the draft
// TTL so abandoned wizards clean themselves up.
type SessionStore interface {
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type memoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore is the single-instance session store, used when Redis is
// not configured.
func NewMemoryStore(ttl time.Duration) SessionStore {
	return &memoryStore{
		cache: gocache.New(ttl, ttl),
	}
}

func (s *memoryStore) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	v, ok := s.cache.Get(id.String())
	if !ok {
		return nil, apperrors.NotFound("booking session", nil)
	}
	return v.(*Session), nil
}

func (s *memoryStore) Save(_ context.Context, session *Session) error {
	s.cache.Set(session.ID.String(), session, gocache.DefaultExpiration)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.cache.Delete(id.String())
	return nil
}
