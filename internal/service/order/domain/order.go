// internal/service/order/domain/order.go
package domain

import (
	"errors"
	"time"
)

// Status 是订单的生命周期状态。下单成功即 PLACED，
// 后续的履约流转（发货、签收）由运营侧触发。
type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
)

// Order 是订单聚合的根实体。
// ReservedBatchIDs 记录这张订单从哪些批次扣的货，顺序即扣减顺序。
type Order struct {
	ID               int64
	ProductID        int64
	ProductName      string
	Quantity         int
	Status           Status
	ReservedBatchIDs []int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewOrder 在库存预占成功之后创建订单实例。
func NewOrder(productID int64, productName string, quantity int, reservedBatchIDs []int64) (*Order, error) {
	if productID <= 0 || quantity <= 0 {
		return nil, errors.New("cannot create order with empty required fields")
	}
	now := time.Now()
	return &Order{
		ProductID:        productID,
		ProductName:      productName,
		Quantity:         quantity,
		Status:           StatusPlaced,
		ReservedBatchIDs: reservedBatchIDs,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// MarkAsShipped 将订单状态流转到已发货。
func (o *Order) MarkAsShipped() error {
	if o.Status != StatusPlaced {
		return errors.New("only placed orders can be shipped")
	}
	o.Status = StatusShipped
	o.UpdatedAt = time.Now()
	return nil
}

// MarkAsDelivered 将订单状态流转到已签收。
func (o *Order) MarkAsDelivered() error {
	if o.Status != StatusShipped {
		return errors.New("only shipped orders can be delivered")
	}
	o.Status = StatusDelivered
	o.UpdatedAt = time.Now()
	return nil
}
