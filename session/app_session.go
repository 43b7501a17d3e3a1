package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type AppSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAppSessionStore(rdb *redis.Client, ttl time.Duration) *AppSessionStore {
	return &AppSessionStore{rdb: rdb, ttl: ttl}
}

type AppSession struct {
	OperatorID string `json:"oid"`
	IssuedAt   int64  `json:"iat"`
	ExpiresAt  int64  `json:"exp"`
}

func key(id string) string       { return fmt.Sprintf("kc:sess:%s", id) }
func opSetKey(oid string) string { return fmt.Sprintf("kc:op_sessions:%s", oid) }

func (s *AppSessionStore) Create(ctx context.Context, id, operatorID string) error {
	now := time.Now()
	b, _ := json.Marshal(AppSession{
		OperatorID: operatorID,
		IssuedAt:   now.Unix(),
		ExpiresAt:  now.Add(s.ttl).Unix(),
	})
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(id), b, s.ttl)
	pipe.SAdd(ctx, opSetKey(operatorID), id)
	pipe.Expire(ctx, opSetKey(operatorID), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *AppSessionStore) Get(ctx context.Context, id string) (*AppSession, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var as AppSession
	if err := json.Unmarshal(b, &as); err != nil {
		return nil, err
	}
	return &as, nil
}

func (s *AppSessionStore) Delete(ctx context.Context, id string) error {
	as, _ := s.Get(ctx, id) // 忽略失败
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(id))
	if as != nil {
		pipe.SRem(ctx, opSetKey(as.OperatorID), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// ✅ 关键：停用账号时，撤销该账号的所有会话
func (s *AppSessionStore) RevokeAllForOperator(ctx context.Context, operatorID string) error {
	ids, err := s.rdb.SMembers(ctx, opSetKey(operatorID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, sid := range ids {
		pipe.Del(ctx, key(sid))
	}
	pipe.Del(ctx, opSetKey(operatorID))
	_, err = pipe.Exec(ctx)
	return err
}
