package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-promptscope-be/internal/repository/contract"
	"ai-promptscope-be/pkg/negotiation"

	"github.com/redis/go-redis/v9"
)

// SessionRepository stores negotiation sessions in Redis so a session
// survives a process restart and several instances can share one
// session space. Writes to one session are serialized per instance by
// the service's lock registry; trace sequencing across instances is
// handled by the ledger seeding its counter from the durable store.
// Sessions serialize to JSON and expire via the key TTL.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var _ contract.SessionRepository = &SessionRepository{}

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{client: client, ttl: ttl}
}

func sessionKey(requestId string) string {
	return "negotiation:session:" + requestId
}

func (r *SessionRepository) Save(ctx context.Context, session *negotiation.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.RequestId, err)
	}
	return r.client.Set(ctx, sessionKey(session.RequestId), payload, r.ttl).Err()
}

func (r *SessionRepository) Get(ctx context.Context, requestId string) (*negotiation.Session, error) {
	payload, err := r.client.Get(ctx, sessionKey(requestId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var session negotiation.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", requestId, err)
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, requestId string) error {
	return r.client.Del(ctx, sessionKey(requestId)).Err()
}
