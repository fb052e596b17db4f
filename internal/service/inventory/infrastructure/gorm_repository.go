// internal/service/inventory/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"korber/internal/service/inventory/domain"
)

// GormBatchRepository 是 BatchRepository 的 GORM 实现。
type GormBatchRepository struct {
	db *gorm.DB
}

func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByProductID 返回商品的全部批次，包含数量为 0 的，按过期日升序。
func (r *GormBatchRepository) FindByProductID(ctx context.Context, productID int64) ([]domain.Batch, error) {
	var models []BatchModel
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("expiry_date ASC, batch_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrapf(err, "query batches for product %d", productID)
	}
	return toDomainBatches(models), nil
}

// FindAllocatable 只返回数量大于 0 的批次，作为分配的候选集。
func (r *GormBatchRepository) FindAllocatable(ctx context.Context, productID int64) ([]domain.Batch, error) {
	var models []BatchModel
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND quantity > 0", productID).
		Order("expiry_date ASC, batch_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrapf(err, "query allocatable batches for product %d", productID)
	}
	return toDomainBatches(models), nil
}

// SaveAll 在一个事务里写回整组批次的数量变更。
func (r *GormBatchRepository) SaveAll(ctx context.Context, batches []domain.Batch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, b := range batches {
			model := FromDomainBatch(b)
			err := tx.Model(&BatchModel{}).
				Where("batch_id = ?", model.BatchID).
				Update("quantity", model.Quantity).Error
			if err != nil {
				return errors.Wrapf(err, "update batch %d", model.BatchID)
			}
		}
		return nil
	})
}

func toDomainBatches(models []BatchModel) []domain.Batch {
	batches := make([]domain.Batch, 0, len(models))
	for i := range models {
		batches = append(batches, ToDomainBatch(&models[i]))
	}
	return batches
}
