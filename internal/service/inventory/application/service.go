// internal/service/inventory/application/service.go
package application

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"korber/internal/pkg/logger"
	"korber/internal/service/inventory/domain"
)

// InventoryService 编排可用性查询和批次预占。
// 预占是整个引擎唯一的写路径，按商品串行执行。
type InventoryService struct {
	batchRepo    domain.BatchRepository
	receiptStore domain.ReceiptStore
	locker       domain.ProductLocker
	strategy     domain.AllocationStrategy
}

func NewInventoryService(
	batchRepo domain.BatchRepository,
	receiptStore domain.ReceiptStore,
	locker domain.ProductLocker,
	strategy domain.AllocationStrategy,
) *InventoryService {
	return &InventoryService{
		batchRepo:    batchRepo,
		receiptStore: receiptStore,
		locker:       locker,
		strategy:     strategy,
	}
}

// GetAvailability 返回商品的完整批次视图。只读，不会改变任何状态。
func (s *InventoryService) GetAvailability(ctx context.Context, productID int64) (*AvailabilityView, error) {
	batches, err := s.batchRepo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, domain.ErrProductNotFound
	}
	// 视图按策略的消耗顺序展示，调用方看到的就是预占会使用的顺序
	batches = s.strategy.SortForAllocation(batches)

	view := &AvailabilityView{
		ProductID:      productID,
		ProductName:    batches[0].ProductName,
		Batches:        make([]BatchView, 0, len(batches)),
		TotalAvailable: domain.TotalQuantity(batches),
	}
	for _, b := range batches {
		view.Batches = append(view.Batches, BatchView{
			BatchID:    b.BatchID,
			Quantity:   b.Quantity,
			ExpiryDate: b.ExpiryDate.Format("2006-01-02"),
		})
	}
	return view, nil
}

// Reserve 按配置的策略对一个商品执行一次预占。
//
// 流程：去重 -> 加商品锁 -> 锁内再去重 -> 取候选批次 -> 分配 -> 落库 -> 写回执。
// 去重在拿锁前后各查一次：锁前的检查让重放请求不必排队，
// 锁后的检查堵住同一 token 并发进入导致的双重扣减。
func (s *InventoryService) Reserve(ctx context.Context, cmd ReserveCommand) (*ReserveResult, error) {
	if cmd.Quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	if cmd.ReservationToken != "" {
		receipt, err := s.receiptStore.Get(ctx, cmd.ReservationToken)
		if err != nil {
			return nil, errors.Wrap(err, "receipt lookup failed")
		}
		if receipt != nil {
			return s.replay(ctx, receipt), nil
		}
	}

	unlock, err := s.locker.Lock(ctx, cmd.ProductID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to lock product %d", cmd.ProductID)
	}
	defer unlock()

	if cmd.ReservationToken != "" {
		receipt, err := s.receiptStore.Get(ctx, cmd.ReservationToken)
		if err != nil {
			return nil, errors.Wrap(err, "receipt lookup failed")
		}
		if receipt != nil {
			return s.replay(ctx, receipt), nil
		}
	}

	batches, err := s.batchRepo.FindAllocatable(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		// 候选集只含数量大于 0 的批次，区分不了"商品不存在"和"全部扣空"，
		// 这里回查全量批次来区分这两种失败
		all, err := s.batchRepo.FindByProductID(ctx, cmd.ProductID)
		if err != nil {
			return nil, err
		}
		if len(all) == 0 {
			return nil, domain.ErrProductNotFound
		}
		if cmd.Quantity == 0 {
			return &ReserveResult{ReservedBatchIDs: []int64{}}, nil
		}
		return nil, &domain.InsufficientStockError{Requested: cmd.Quantity, Available: 0}
	}

	// 数量 0 的预占合法但不触碰任何批次
	if cmd.Quantity == 0 {
		return &ReserveResult{ReservedBatchIDs: []int64{}}, nil
	}

	alloc, err := s.strategy.Allocate(batches, cmd.Quantity)
	if err != nil {
		return nil, err
	}

	if err := s.batchRepo.SaveAll(ctx, alloc.UpdatedBatches); err != nil {
		return nil, errors.Wrap(err, "failed to persist batch updates")
	}

	if cmd.ReservationToken != "" {
		receipt := &domain.ReservationReceipt{
			Token:            cmd.ReservationToken,
			ProductID:        cmd.ProductID,
			Quantity:         cmd.Quantity,
			ReservedBatchIDs: alloc.ConsumedBatchIDs,
			ReservedAt:       time.Now().UTC(),
		}
		// 扣减已经落库，回执写失败只降级为丢失去重窗口，不回滚预占
		if _, err := s.receiptStore.PutIfAbsent(ctx, receipt); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("token", cmd.ReservationToken).
				Int64("product_id", cmd.ProductID).
				Msg("reservation succeeded but receipt write failed, retries will not dedup")
		}
	}

	logger.Ctx(ctx).Info().
		Int64("product_id", cmd.ProductID).
		Int("quantity", cmd.Quantity).
		Ints64("batch_ids", alloc.ConsumedBatchIDs).
		Msg("✅ inventory reserved")

	return &ReserveResult{ReservedBatchIDs: alloc.ConsumedBatchIDs}, nil
}

func (s *InventoryService) replay(ctx context.Context, receipt *domain.ReservationReceipt) *ReserveResult {
	logger.Ctx(ctx).Info().
		Str("token", receipt.Token).
		Int64("product_id", receipt.ProductID).
		Msg("duplicate reservation token, replaying stored receipt")
	return &ReserveResult{ReservedBatchIDs: receipt.ReservedBatchIDs, Replayed: true}
}
