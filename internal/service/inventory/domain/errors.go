// internal/service/inventory/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound 商品在库存里没有任何批次记录。
	ErrProductNotFound = errors.New("product not found in inventory")

	// ErrInvalidQuantity 请求数量为负。0 是合法的空预占。
	ErrInvalidQuantity = errors.New("quantity must not be negative")
)

// InsufficientStockError 可用总量不足以满足请求。
// 不可重试：库存不补充，重试同样的请求不可能成功。
type InsufficientStockError struct {
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient inventory: requested %d, available %d", e.Requested, e.Available)
}
