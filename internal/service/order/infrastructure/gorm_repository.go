// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"korber/internal/service/order/domain"
)

// GormOrderRepository 是 OrderRepository 的 GORM 实现。
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save 保存订单，新订单插入后回填自增 ID。
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	model, err := FromDomainOrder(order)
	if err != nil {
		return errors.Wrap(err, "map order to model")
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return errors.Wrap(err, "save order")
	}
	order.ID = model.ID
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrapf(err, "query order %d", id)
	}
	return ToDomainOrder(&model)
}
