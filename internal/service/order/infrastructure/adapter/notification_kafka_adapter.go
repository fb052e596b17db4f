// internal/service/order/infrastructure/adapter/notification_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"korber/internal/pkg/mq"
	"korber/internal/service/order/domain"
)

// OrderPlacedEvent 是广播到 Kafka 的订单事件。
type OrderPlacedEvent struct {
	OrderID          int64     `json:"orderId"`
	ProductID        int64     `json:"productId"`
	ProductName      string    `json:"productName"`
	Quantity         int       `json:"quantity"`
	ReservedBatchIDs []int64   `json:"reservedBatchIds"`
	PlacedAt         time.Time `json:"placedAt"`
}

// NotificationKafkaAdapter 实现了 port.NotificationProducer 接口。
type NotificationKafkaAdapter struct {
	writer *kafka.Writer
}

func NewNotificationKafkaAdapter(writer *kafka.Writer) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: writer}
}

// SendOrderPlaced 发布下单成功事件。消息按商品 ID 分区，
// 同一商品的事件保持有序。
func (a *NotificationKafkaAdapter) SendOrderPlaced(ctx context.Context, order *domain.Order) error {
	event := OrderPlacedEvent{
		OrderID:          order.ID,
		ProductID:        order.ProductID,
		ProductName:      order.ProductName,
		Quantity:         order.Quantity,
		ReservedBatchIDs: order.ReservedBatchIDs,
		PlacedAt:         order.CreatedAt,
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order placed event: %w", err)
	}

	// mq.ProduceMessage 会自动注入追踪上下文
	key := strconv.FormatInt(order.ProductID, 10)
	return mq.ProduceMessage(ctx, a.writer, []byte(key), eventBytes)
}

// Close 关闭底层的 Kafka writer。
func (a *NotificationKafkaAdapter) Close() error {
	return a.writer.Close()
}
