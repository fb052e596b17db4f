package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func quantityByID(batches []Batch) map[int64]int {
	m := make(map[int64]int, len(batches))
	for _, b := range batches {
		m[b.BatchID] = b.Quantity
	}
	return m
}

func TestOldestFirstSingleBatch(t *testing.T) {
	batches := []Batch{
		{BatchID: 1, ProductID: 1001, Quantity: 29, ExpiryDate: date("2026-05-31")},
	}

	result, err := StrategyFor(StrategyOldestFirst).Allocate(batches, 3)
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, result.ConsumedBatchIDs)
	assert.Equal(t, 26, quantityByID(result.UpdatedBatches)[1])
}

func TestOldestFirstSpansBatchesInExpiryOrder(t *testing.T) {
	batches := []Batch{
		{BatchID: 2, ProductID: 1002, Quantity: 52, ExpiryDate: date("2026-05-30")},
		{BatchID: 5, ProductID: 1002, Quantity: 39, ExpiryDate: date("2026-03-31")},
		{BatchID: 7, ProductID: 1002, Quantity: 40, ExpiryDate: date("2026-04-24")},
	}

	result, err := StrategyFor(StrategyOldestFirst).Allocate(batches, 50)
	require.NoError(t, err)

	// 先耗尽最早过期的批次 5，再从批次 7 扣剩余的 11
	assert.Equal(t, []int64{5, 7}, result.ConsumedBatchIDs)

	updated := quantityByID(result.UpdatedBatches)
	assert.Equal(t, 0, updated[5])
	assert.Equal(t, 29, updated[7])
	assert.Equal(t, 52, updated[2], "later batch must stay untouched")
}

func TestNewestFirstMirrorsConsumptionOrder(t *testing.T) {
	batches := []Batch{
		{BatchID: 2, ProductID: 1002, Quantity: 52, ExpiryDate: date("2026-05-30")},
		{BatchID: 5, ProductID: 1002, Quantity: 39, ExpiryDate: date("2026-03-31")},
		{BatchID: 7, ProductID: 1002, Quantity: 40, ExpiryDate: date("2026-04-24")},
	}

	result, err := StrategyFor(StrategyNewestFirst).Allocate(batches, 60)
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 7}, result.ConsumedBatchIDs)

	updated := quantityByID(result.UpdatedBatches)
	assert.Equal(t, 0, updated[2])
	assert.Equal(t, 32, updated[7])
	assert.Equal(t, 39, updated[5])
}

func TestAllocateExpiryTieBreaksOnBatchID(t *testing.T) {
	sameDay := date("2026-06-15")
	batches := []Batch{
		{BatchID: 9, Quantity: 10, ExpiryDate: sameDay},
		{BatchID: 3, Quantity: 10, ExpiryDate: sameDay},
	}

	result, err := StrategyFor(StrategyOldestFirst).Allocate(batches, 15)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 9}, result.ConsumedBatchIDs)

	result, err = StrategyFor(StrategyNewestFirst).Allocate(batches, 15)
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 3}, result.ConsumedBatchIDs)
}

func TestAllocateSkipsEmptyBatches(t *testing.T) {
	batches := []Batch{
		{BatchID: 1, Quantity: 0, ExpiryDate: date("2026-01-01")},
		{BatchID: 2, Quantity: 8, ExpiryDate: date("2026-02-01")},
	}

	result, err := StrategyFor(StrategyOldestFirst).Allocate(batches, 5)
	require.NoError(t, err)

	assert.Equal(t, []int64{2}, result.ConsumedBatchIDs, "empty batch must not appear in the consumption list")
}

func TestAllocateZeroQuantityTouchesNothing(t *testing.T) {
	batches := []Batch{
		{BatchID: 1, Quantity: 12, ExpiryDate: date("2026-05-31")},
	}

	result, err := StrategyFor(StrategyOldestFirst).Allocate(batches, 0)
	require.NoError(t, err)

	assert.Empty(t, result.ConsumedBatchIDs)
	assert.Equal(t, 12, quantityByID(result.UpdatedBatches)[1])
}

func TestAllocateShortageReportsAvailableAndLeavesInputIntact(t *testing.T) {
	batches := []Batch{
		{BatchID: 1, Quantity: 10, ExpiryDate: date("2026-03-01")},
		{BatchID: 2, Quantity: 5, ExpiryDate: date("2026-04-01")},
	}

	result, err := StrategyFor(StrategyOldestFirst).Allocate(batches, 20)
	require.Nil(t, result)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 20, insufficient.Requested)
	assert.Equal(t, 15, insufficient.Available)

	// 输入切片必须保持原样
	assert.Equal(t, 10, batches[0].Quantity)
	assert.Equal(t, 5, batches[1].Quantity)
}

func TestAllocateConservesTotalQuantity(t *testing.T) {
	batches := []Batch{
		{BatchID: 1, Quantity: 7, ExpiryDate: date("2026-01-10")},
		{BatchID: 2, Quantity: 11, ExpiryDate: date("2026-02-10")},
		{BatchID: 3, Quantity: 4, ExpiryDate: date("2026-03-10")},
	}
	before := TotalQuantity(batches)

	for _, kind := range []StrategyKind{StrategyOldestFirst, StrategyNewestFirst} {
		result, err := StrategyFor(kind).Allocate(batches, 13)
		require.NoError(t, err)
		assert.Equal(t, before-13, TotalQuantity(result.UpdatedBatches), "strategy %s", kind)
	}
}

func TestStrategyForUnknownKindFallsBackToDefault(t *testing.T) {
	s := StrategyFor(StrategyKind("EXPIRY_ROULETTE"))
	assert.Equal(t, StrategyOldestFirst, s.Kind())
}

func TestAllocateDoesNotMutateInputOnSuccess(t *testing.T) {
	batches := []Batch{
		{BatchID: 1, Quantity: 9, ExpiryDate: date("2026-05-01")},
	}

	_, err := StrategyFor(StrategyOldestFirst).Allocate(batches, 4)
	require.NoError(t, err)
	assert.Equal(t, 9, batches[0].Quantity)
}
