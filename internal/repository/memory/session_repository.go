package memory

import (
	"context"
	"time"

	"ai-promptscope-be/internal/repository/contract"
	"ai-promptscope-be/pkg/negotiation"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps live negotiation state in process memory.
// TTL eviction realizes session expiry: an evicted session simply stops
// resolving and the next call on it is rejected as unknown.
type SessionRepository struct {
	cache *cache.Cache
}

var _ contract.SessionRepository = &SessionRepository{}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *SessionRepository) Save(_ context.Context, session *negotiation.Session) error {
	r.cache.Set(session.RequestId, session, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(_ context.Context, requestId string) (*negotiation.Session, error) {
	if x, found := r.cache.Get(requestId); found {
		return x.(*negotiation.Session), nil
	}
	return nil, nil
}

func (r *SessionRepository) Delete(_ context.Context, requestId string) error {
	r.cache.Delete(requestId)
	return nil
}
