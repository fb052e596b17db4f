// internal/service/order/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// 下单失败的错误分类。每一类对应一个明确的对外语义，
// 接口层按这个分类映射 HTTP 状态码，不对错误串做字符串匹配。
var (
	// ErrInvalidQuantity 请求数量必须为正。
	ErrInvalidQuantity = errors.New("order quantity must be positive")

	// ErrProductNotFound 库存服务不认识这个商品。
	ErrProductNotFound = errors.New("product not found in inventory")

	// ErrOrderNotFound 订单不存在。
	ErrOrderNotFound = errors.New("order not found")

	// ErrUpstreamUnavailable 库存服务不可达或返回了 5xx。
	// 可重试：没有任何库存被扣减。
	ErrUpstreamUnavailable = errors.New("inventory service unavailable")

	// ErrReservationFailed 预占被库存服务明确拒绝（非库存不足的业务失败）。
	ErrReservationFailed = errors.New("inventory reservation rejected")

	// ErrAmbiguousReservation 预占调用超时，库存可能已扣也可能没扣。
	// 不能盲目重试，必须带同样的预占 token 重放。
	ErrAmbiguousReservation = errors.New("reservation outcome unknown: request timed out in flight")

	// ErrOrderStorage 库存已扣减但订单落库失败。需要人工或对账介入。
	ErrOrderStorage = errors.New("inventory reserved but order persistence failed")
)

// InsufficientStockError 可用库存不足。不可重试。
type InsufficientStockError struct {
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient inventory: requested %d, available %d", e.Requested, e.Available)
}
