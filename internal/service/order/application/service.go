// internal/service/order/application/service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"korber/internal/pkg/logger"
	"korber/internal/service/order/domain"
	"korber/internal/service/order/domain/port"
)

// OrderService 编排下单流程：查可用性、预占库存、落库、广播事件。
type OrderService struct {
	orderRepo      domain.OrderRepository
	inventory      port.InventoryService
	notifier       port.NotificationProducer
	checkTimeout   time.Duration
	reserveTimeout time.Duration
}

func NewOrderService(
	orderRepo domain.OrderRepository,
	inventory port.InventoryService,
	notifier port.NotificationProducer,
	checkTimeout, reserveTimeout time.Duration,
) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		inventory:      inventory,
		notifier:       notifier,
		checkTimeout:   checkTimeout,
		reserveTimeout: reserveTimeout,
	}
}

// PlaceOrder 执行一次下单。
//
// 可用性检查是提前拒绝明显不可能成功的请求，不是预占的原子前置：
// 检查和预占之间库存可能变化，最终裁决权在库存服务的预占接口。
// 预占成功之后的失败（落库失败）不回滚库存，按 ErrOrderStorage 上抛，
// 留给对账流程处理，避免在这里引入补偿调用的二次失败问题。
func (s *OrderService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	checkCtx, cancelCheck := context.WithTimeout(ctx, s.checkTimeout)
	defer cancelCheck()
	availability, err := s.inventory.CheckAvailability(checkCtx, req.ProductID)
	if err != nil {
		// 检查步骤是只读的，超时也没有任何副作用，归为可重试的上游不可用
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, errors.Wrap(domain.ErrUpstreamUnavailable, err.Error())
		}
		return nil, err
	}
	if availability.TotalAvailable < req.Quantity {
		return nil, &domain.InsufficientStockError{
			Requested: req.Quantity,
			Available: availability.TotalAvailable,
		}
	}

	// 每次下单生成新的预占 token；重试同一次下单时库存侧按 token 去重
	token := uuid.NewString()
	reserveCtx, cancelReserve := context.WithTimeout(ctx, s.reserveTimeout)
	defer cancelReserve()
	batchIDs, err := s.inventory.Reserve(reserveCtx, req.ProductID, req.Quantity, token)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			// 请求在途中超时，扣减结果未知
			return nil, errors.Wrap(domain.ErrAmbiguousReservation, err.Error())
		}
		return nil, err
	}

	order, err := domain.NewOrder(req.ProductID, availability.ProductName, req.Quantity, batchIDs)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Int64("product_id", req.ProductID).
			Str("reservation_token", token).
			Msg("🛑 inventory reserved but order persistence failed")
		return nil, errors.Wrap(domain.ErrOrderStorage, err.Error())
	}

	// 通知是尽力而为的，失败只记日志
	if s.notifier != nil {
		if err := s.notifier.SendOrderPlaced(ctx, order); err != nil {
			logger.Ctx(ctx).Warn().Err(err).
				Int64("order_id", order.ID).
				Msg("order placed but notification publish failed")
		}
	}

	logger.Ctx(ctx).Info().
		Int64("order_id", order.ID).
		Int64("product_id", order.ProductID).
		Int("quantity", order.Quantity).
		Ints64("batch_ids", order.ReservedBatchIDs).
		Msg("✅ order placed")

	return &PlaceOrderResponse{
		OrderID:              order.ID,
		ProductID:            order.ProductID,
		ProductName:          order.ProductName,
		Quantity:             order.Quantity,
		Status:               string(order.Status),
		ReservedFromBatchIDs: order.ReservedBatchIDs,
		Message:              "order placed successfully",
	}, nil
}

// GetOrder 按 ID 查询订单。
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*PlaceOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PlaceOrderResponse{
		OrderID:              order.ID,
		ProductID:            order.ProductID,
		ProductName:          order.ProductName,
		Quantity:             order.Quantity,
		Status:               string(order.Status),
		ReservedFromBatchIDs: order.ReservedBatchIDs,
	}, nil
}
