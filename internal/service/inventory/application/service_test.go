package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"korber/internal/service/inventory/domain"
	"korber/internal/service/inventory/infrastructure"
)

// memBatchRepo 是 BatchRepository 的内存实现，测试专用。
type memBatchRepo struct {
	mu      sync.Mutex
	batches map[int64][]domain.Batch // productID -> batches
	saves   int
}

func newMemBatchRepo(batches ...domain.Batch) *memBatchRepo {
	repo := &memBatchRepo{batches: make(map[int64][]domain.Batch)}
	for _, b := range batches {
		repo.batches[b.ProductID] = append(repo.batches[b.ProductID], b)
	}
	return repo
}

func (r *memBatchRepo) FindByProductID(ctx context.Context, productID int64) ([]domain.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Batch, len(r.batches[productID]))
	copy(out, r.batches[productID])
	return out, nil
}

func (r *memBatchRepo) FindAllocatable(ctx context.Context, productID int64) ([]domain.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Batch
	for _, b := range r.batches[productID] {
		if b.Quantity > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBatchRepo) SaveAll(ctx context.Context, batches []domain.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	for _, updated := range batches {
		stored := r.batches[updated.ProductID]
		for i := range stored {
			if stored[i].BatchID == updated.BatchID {
				stored[i].Quantity = updated.Quantity
			}
		}
	}
	return nil
}

func (r *memBatchRepo) total(productID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.TotalQuantity(r.batches[productID])
}

// memReceiptStore 是 ReceiptStore 的内存实现。
type memReceiptStore struct {
	mu       sync.Mutex
	receipts map[string]*domain.ReservationReceipt
}

func newMemReceiptStore() *memReceiptStore {
	return &memReceiptStore{receipts: make(map[string]*domain.ReservationReceipt)}
}

func (s *memReceiptStore) Get(ctx context.Context, token string) (*domain.ReservationReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receipts[token], nil
}

func (s *memReceiptStore) PutIfAbsent(ctx context.Context, receipt *domain.ReservationReceipt) (*domain.ReservationReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.receipts[receipt.Token]; ok {
		return existing, nil
	}
	s.receipts[receipt.Token] = receipt
	return receipt, nil
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func newService(repo *memBatchRepo, store domain.ReceiptStore) *InventoryService {
	return NewInventoryService(repo, store, infrastructure.NewLocalProductLocker(), domain.StrategyFor(domain.StrategyOldestFirst))
}

func TestGetAvailabilityReturnsAllBatchesIncludingEmpty(t *testing.T) {
	repo := newMemBatchRepo(
		domain.Batch{BatchID: 1, ProductID: 1001, ProductName: "Greek Yogurt", Quantity: 0, ExpiryDate: date("2026-01-15")},
		domain.Batch{BatchID: 2, ProductID: 1001, ProductName: "Greek Yogurt", Quantity: 29, ExpiryDate: date("2026-05-31")},
	)
	svc := newService(repo, newMemReceiptStore())

	view, err := svc.GetAvailability(context.Background(), 1001)
	require.NoError(t, err)

	assert.Equal(t, "Greek Yogurt", view.ProductName)
	assert.Len(t, view.Batches, 2, "empty batches stay visible in the availability view")
	assert.Equal(t, 29, view.TotalAvailable)
}

func TestGetAvailabilityIsIdempotent(t *testing.T) {
	repo := newMemBatchRepo(
		domain.Batch{BatchID: 1, ProductID: 1001, ProductName: "Greek Yogurt", Quantity: 29, ExpiryDate: date("2026-05-31")},
	)
	svc := newService(repo, newMemReceiptStore())

	first, err := svc.GetAvailability(context.Background(), 1001)
	require.NoError(t, err)
	second, err := svc.GetAvailability(context.Background(), 1001)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 0, repo.saves, "a read must never write")
}

func TestGetAvailabilityUsesStrategyDisplayOrder(t *testing.T) {
	repo := newMemBatchRepo(
		domain.Batch{BatchID: 5, ProductID: 1002, ProductName: "Milk", Quantity: 39, ExpiryDate: date("2026-03-31")},
		domain.Batch{BatchID: 7, ProductID: 1002, ProductName: "Milk", Quantity: 40, ExpiryDate: date("2026-04-24")},
	)
	svc := NewInventoryService(
		repo,
		newMemReceiptStore(),
		infrastructure.NewLocalProductLocker(),
		domain.StrategyFor(domain.StrategyNewestFirst),
	)

	view, err := svc.GetAvailability(context.Background(), 1002)
	require.NoError(t, err)

	// NEWEST_FIRST 下视图按过期日降序，和预占的消耗顺序一致
	require.Len(t, view.Batches, 2)
	assert.Equal(t, int64(7), view.Batches[0].BatchID)
	assert.Equal(t, int64(5), view.Batches[1].BatchID)
}

func TestGetAvailabilityUnknownProduct(t *testing.T) {
	svc := newService(newMemBatchRepo(), newMemReceiptStore())

	_, err := svc.GetAvailability(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestReserveDecrementsOldestFirst(t *testing.T) {
	repo := newMemBatchRepo(
		domain.Batch{BatchID: 5, ProductID: 1002, ProductName: "Milk", Quantity: 39, ExpiryDate: date("2026-03-31")},
		domain.Batch{BatchID: 7, ProductID: 1002, ProductName: "Milk", Quantity: 40, ExpiryDate: date("2026-04-24")},
	)
	svc := newService(repo, newMemReceiptStore())

	result, err := svc.Reserve(context.Background(), ReserveCommand{ProductID: 1002, Quantity: 50})
	require.NoError(t, err)

	assert.Equal(t, []int64{5, 7}, result.ReservedBatchIDs)
	assert.False(t, result.Replayed)
	assert.Equal(t, 29, repo.total(1002))
}

func TestReserveNegativeQuantity(t *testing.T) {
	svc := newService(newMemBatchRepo(), newMemReceiptStore())

	_, err := svc.Reserve(context.Background(), ReserveCommand{ProductID: 1002, Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestReserveZeroQuantityIsNoOp(t *testing.T) {
	repo := newMemBatchRepo(
		domain.Batch{BatchID: 1, ProductID: 1001, Quantity: 10, ExpiryDate: date("2026-05-31")},
	)
	svc := newService(repo, newMemReceiptStore())

	result, err := svc.Reserve(context.Background(), ReserveCommand{ProductID: 1001, Quantity: 0})
	require.NoError(t, err)

	assert.Empty(t, result.ReservedBatchIDs)
	assert.Equal(t, 10, repo.total(1001))
	assert.Equal(t, 0, repo.saves)
}

func TestReserveInsufficientStockLeavesInventoryIntact(t *testing.T) {
	repo := newMemBatchRepo(
		domain.Batch{BatchID: 1, ProductID: 1001, Quantity: 10, ExpiryDate: date("2026-05-31")},
	)
	svc := newService(repo, newMemReceiptStore())

	_, err := svc.Reserve(context.Background(), ReserveCommand{ProductID: 1001, Quantity: 100})

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 100, insufficient.Requested)
	assert.Equal(t, 10, insufficient.Available)
	assert.Equal(t, 10, repo.total(1001))
	assert.Equal(t, 0, repo.saves)
}

func TestReserveUnknownProduct(t *testing.T) {
	svc := newService(newMemBatchRepo(), newMemReceiptStore())

	_, err := svc.Reserve(context.Background(), ReserveCommand{ProductID: 9999, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestReserveReplaysOnDuplicateToken(t *testing.T) {
	repo := newMemBatchRepo(
		domain.Batch{BatchID: 1, ProductID: 1001, Quantity: 10, ExpiryDate: date("2026-05-31")},
	)
	svc := newService(repo, newMemReceiptStore())

	first, err := svc.Reserve(context.Background(), ReserveCommand{ProductID: 1001, Quantity: 4, ReservationToken: "tok-1"})
	require.NoError(t, err)
	require.Equal(t, 6, repo.total(1001))

	second, err := svc.Reserve(context.Background(), ReserveCommand{ProductID: 1001, Quantity: 4, ReservationToken: "tok-1"})
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.ReservedBatchIDs, second.ReservedBatchIDs)
	assert.Equal(t, 6, repo.total(1001), "a replayed reservation must not decrement again")
}

func TestConcurrentReservesNeverOversell(t *testing.T) {
	repo := newMemBatchRepo(
		domain.Batch{BatchID: 1, ProductID: 1001, Quantity: 50, ExpiryDate: date("2026-03-01")},
		domain.Batch{BatchID: 2, ProductID: 1001, Quantity: 50, ExpiryDate: date("2026-04-01")},
	)
	svc := newService(repo, newMemReceiptStore())

	var g errgroup.Group
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 30; i++ {
		g.Go(func() error {
			_, err := svc.Reserve(context.Background(), ReserveCommand{ProductID: 1001, Quantity: 5})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return nil
			}
			var insufficient *domain.InsufficientStockError
			if !assert.ErrorAs(t, err, &insufficient) {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// 30 次 * 5 件 = 150 > 100 库存，成功的必须恰好扣完
	assert.Equal(t, 20, succeeded)
	assert.Equal(t, 0, repo.total(1001))
}
