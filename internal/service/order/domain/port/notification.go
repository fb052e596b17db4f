// internal/service/order/domain/port/notification.go
package port

import (
	"context"

	"korber/internal/service/order/domain"
)

// NotificationProducer 是下单成功后对外广播事件的出站端口。
// 通知是尽力而为的：发送失败不影响订单结果。
type NotificationProducer interface {
	SendOrderPlaced(ctx context.Context, order *domain.Order) error
	Close() error
}
