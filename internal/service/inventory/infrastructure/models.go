// internal/service/inventory/infrastructure/models.go
package infrastructure

import "time"

// BatchModel 是 Batch 领域对象在数据库中的表示。
type BatchModel struct {
	BatchID     int64 `gorm:"primaryKey;autoIncrement"`
	ProductID   int64 `gorm:"index"`
	ProductName string
	Quantity    int
	ExpiryDate  time.Time `gorm:"type:date"`
}

func (BatchModel) TableName() string {
	return "inventory_batches"
}
