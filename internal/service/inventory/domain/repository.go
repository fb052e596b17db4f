// internal/service/inventory/domain/repository.go
package domain

import (
	"context"
	"time"
)

// BatchRepository 是批次集合的持久化出站端口，由基础设施层实现。
type BatchRepository interface {
	// FindByProductID 返回商品的全部批次（含数量为 0 的），按过期日升序。
	FindByProductID(ctx context.Context, productID int64) ([]Batch, error)

	// FindAllocatable 返回商品数量大于 0 的批次，按过期日升序。
	// 注意这个候选集和 FindByProductID 的口径不同，见 DESIGN.md。
	FindAllocatable(ctx context.Context, productID int64) ([]Batch, error)

	// SaveAll 把整组更新后的批次作为一个事务落库：要么全部生效要么全部失败。
	SaveAll(ctx context.Context, batches []Batch) error
}

// ReservationReceipt 是一次成功预占的回执。
// 按 Token 去重，保证预占调用在幂等窗口内可以安全重放。
type ReservationReceipt struct {
	Token            string    `json:"token"`
	ProductID        int64     `json:"productId"`
	Quantity         int       `json:"quantity"`
	ReservedBatchIDs []int64   `json:"reservedBatchIds"`
	ReservedAt       time.Time `json:"reservedAt"`
}

// ReceiptStore 保存预占回执，带有限期的去重窗口。
type ReceiptStore interface {
	// Get 按 token 查回执，不存在返回 (nil, nil)。
	Get(ctx context.Context, token string) (*ReservationReceipt, error)

	// PutIfAbsent 在 token 首次出现时保存回执。
	// 如果 token 已存在，返回已保存的回执（本次的不写入）。
	PutIfAbsent(ctx context.Context, receipt *ReservationReceipt) (*ReservationReceipt, error)
}

// ProductLocker 提供按商品粒度的单写者临界区。
// 同一商品的预占必须串行，不同商品之间互不影响。
type ProductLocker interface {
	// Lock 阻塞直到拿到 productID 的锁或 ctx 结束，成功时返回解锁函数。
	Lock(ctx context.Context, productID int64) (func(), error)
}
