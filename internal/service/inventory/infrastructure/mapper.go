// internal/service/inventory/infrastructure/mapper.go
package infrastructure

import (
	"korber/internal/service/inventory/domain"
)

// ToDomainBatch 将数据库模型转换为领域模型
func ToDomainBatch(model *BatchModel) domain.Batch {
	return domain.Batch{
		BatchID:     model.BatchID,
		ProductID:   model.ProductID,
		ProductName: model.ProductName,
		Quantity:    model.Quantity,
		ExpiryDate:  model.ExpiryDate,
	}
}

// FromDomainBatch 将领域模型转换为数据库模型 (用于更新)
func FromDomainBatch(b domain.Batch) *BatchModel {
	return &BatchModel{
		BatchID:     b.BatchID,
		ProductID:   b.ProductID,
		ProductName: b.ProductName,
		Quantity:    b.Quantity,
		ExpiryDate:  b.ExpiryDate,
	}
}
