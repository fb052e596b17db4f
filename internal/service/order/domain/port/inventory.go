// internal/service/order/domain/port/inventory.go
package port

import "context"

// ProductAvailability 是库存服务返回的商品可用性快照。
type ProductAvailability struct {
	ProductID      int64
	ProductName    string
	TotalAvailable int
}

// InventoryService 是下单流程依赖的库存出站端口。
// 实现负责把传输层的失败翻译成 order/domain 里定义的错误分类。
type InventoryService interface {
	// CheckAvailability 查询商品当前可用量。只读。
	CheckAvailability(ctx context.Context, productID int64) (*ProductAvailability, error)

	// Reserve 以给定的幂等 token 预占库存，返回被扣减的批次 ID（按扣减顺序）。
	Reserve(ctx context.Context, productID int64, quantity int, token string) ([]int64, error)
}
