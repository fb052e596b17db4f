// internal/service/order/domain/repository.go
package domain

import "context"

// OrderRepository 定义了订单聚合的持久化接口。
// 它位于领域层，但由基础设施层实现。
type OrderRepository interface {
	// Save 保存订单并回填自增 ID。
	Save(ctx context.Context, order *Order) error

	// FindByID 根据 ID 查找一个订单聚合。
	FindByID(ctx context.Context, id int64) (*Order, error)
}
