// internal/service/inventory/infrastructure/redis_receipt_store.go
package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"korber/internal/pkg/redis"
	"korber/internal/service/inventory/domain"
)

const receiptKeyPrefix = "inventory:receipt:%s"

// RedisReceiptStore 用 Redis 保存预占回执，SETNX + TTL 实现有限期去重窗口。
type RedisReceiptStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReceiptStore(client *redis.Client, ttl time.Duration) *RedisReceiptStore {
	return &RedisReceiptStore{client: client, ttl: ttl}
}

func (s *RedisReceiptStore) Get(ctx context.Context, token string) (*domain.ReservationReceipt, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(receiptKeyPrefix, token))
	if err != nil {
		return nil, errors.Wrap(err, "redis get receipt")
	}
	if data == nil {
		return nil, nil
	}
	var receipt domain.ReservationReceipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, errors.Wrap(err, "unmarshal receipt")
	}
	return &receipt, nil
}

func (s *RedisReceiptStore) PutIfAbsent(ctx context.Context, receipt *domain.ReservationReceipt) (*domain.ReservationReceipt, error) {
	data, err := json.Marshal(receipt)
	if err != nil {
		return nil, errors.Wrap(err, "marshal receipt")
	}
	ok, err := s.client.SetIfAbsent(ctx, fmt.Sprintf(receiptKeyPrefix, receipt.Token), data, s.ttl)
	if err != nil {
		return nil, errors.Wrap(err, "redis setnx receipt")
	}
	if ok {
		return receipt, nil
	}
	// 并发写输了，以先写入的为准
	return s.Get(ctx, receipt.Token)
}
