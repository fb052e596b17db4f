// internal/service/order/infrastructure/models.go
package infrastructure

import "time"

// OrderModel 是 Order 领域对象在数据库中的表示。
// ReservedBatchIDs 以 JSON 数组存储，保留扣减顺序。
type OrderModel struct {
	ID               int64 `gorm:"primaryKey;autoIncrement"`
	ProductID        int64 `gorm:"index"`
	ProductName      string
	Quantity         int
	Status           string
	ReservedBatchIDs string `gorm:"type:json"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}
