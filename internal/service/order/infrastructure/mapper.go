// internal/service/order/infrastructure/mapper.go
package infrastructure

import (
	"encoding/json"

	"korber/internal/service/order/domain"
)

// ToDomainOrder 将数据库模型转换为领域模型
func ToDomainOrder(model *OrderModel) (*domain.Order, error) {
	var batchIDs []int64
	if model.ReservedBatchIDs != "" {
		if err := json.Unmarshal([]byte(model.ReservedBatchIDs), &batchIDs); err != nil {
			return nil, err
		}
	}
	return &domain.Order{
		ID:               model.ID,
		ProductID:        model.ProductID,
		ProductName:      model.ProductName,
		Quantity:         model.Quantity,
		Status:           domain.Status(model.Status),
		ReservedBatchIDs: batchIDs,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}, nil
}

// FromDomainOrder 将领域模型转换为数据库模型
func FromDomainOrder(order *domain.Order) (*OrderModel, error) {
	batchIDs, err := json.Marshal(order.ReservedBatchIDs)
	if err != nil {
		return nil, err
	}
	return &OrderModel{
		ID:               order.ID,
		ProductID:        order.ProductID,
		ProductName:      order.ProductName,
		Quantity:         order.Quantity,
		Status:           string(order.Status),
		ReservedBatchIDs: string(batchIDs),
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}, nil
}
