// internal/service/inventory/domain/strategy.go
package domain

import "sort"

// StrategyKind 是分配策略的封闭枚举。不支持开放式扩展：
// 两种策略覆盖了先过期先出（默认）和后过期先出两类业务。
type StrategyKind string

const (
	StrategyOldestFirst StrategyKind = "OLDEST_FIRST" // 先过期先出 (FEFO)，默认
	StrategyNewestFirst StrategyKind = "NEWEST_FIRST" // 后过期先出
)

// AllocationStrategy 决定批次的消耗顺序，并执行一次纯内存的分配计算。
// 实现必须是无状态的：不持久化、不修改传入的切片。
type AllocationStrategy interface {
	Kind() StrategyKind

	// SortForAllocation 返回按消耗顺序排列的批次副本，输入不被修改。
	SortForAllocation(batches []Batch) []Batch

	// Allocate 在批次副本上计算一次分配。
	// 成功时返回消耗顺序的批次 ID 和更新后的批次集；
	// 总量不足时返回 *InsufficientStockError，输入保持原样。
	Allocate(batches []Batch, quantityNeeded int) (*AllocationResult, error)
}

// AllocationResult 是一次分配计算的结果。
// ConsumedBatchIDs 的顺序即消耗顺序，调用方必须原样保留。
type AllocationResult struct {
	ConsumedBatchIDs []int64
	UpdatedBatches   []Batch
}

// StrategyFor 按枚举值返回策略实现。
// 未知的 kind 回落到 OLDEST_FIRST：这是有意的文档化默认值，
// 不是错误（配置错误通过启动日志暴露，由组装层负责告警）。
func StrategyFor(kind StrategyKind) AllocationStrategy {
	switch kind {
	case StrategyNewestFirst:
		return newestFirst{}
	case StrategyOldestFirst:
		return oldestFirst{}
	default:
		return oldestFirst{}
	}
}

// oldestFirst 按过期日升序消耗，平局按批次 ID 升序，保证确定性。
type oldestFirst struct{}

func (oldestFirst) Kind() StrategyKind { return StrategyOldestFirst }

func (oldestFirst) SortForAllocation(batches []Batch) []Batch {
	sorted := make([]Batch, len(batches))
	copy(sorted, batches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ExpiryDate.Equal(sorted[j].ExpiryDate) {
			return sorted[i].ExpiryDate.Before(sorted[j].ExpiryDate)
		}
		return sorted[i].BatchID < sorted[j].BatchID
	})
	return sorted
}

func (s oldestFirst) Allocate(batches []Batch, quantityNeeded int) (*AllocationResult, error) {
	return consume(s.SortForAllocation(batches), quantityNeeded)
}

// newestFirst 是 oldestFirst 的镜像：过期日降序，平局按批次 ID 降序。
type newestFirst struct{}

func (newestFirst) Kind() StrategyKind { return StrategyNewestFirst }

func (newestFirst) SortForAllocation(batches []Batch) []Batch {
	sorted := make([]Batch, len(batches))
	copy(sorted, batches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ExpiryDate.Equal(sorted[j].ExpiryDate) {
			return sorted[i].ExpiryDate.After(sorted[j].ExpiryDate)
		}
		return sorted[i].BatchID > sorted[j].BatchID
	})
	return sorted
}

func (s newestFirst) Allocate(batches []Batch, quantityNeeded int) (*AllocationResult, error) {
	return consume(s.SortForAllocation(batches), quantityNeeded)
}

// consume 沿已排序的批次副本逐个扣减，直到满足请求数量。
// sorted 已经是调用方持有的副本，可以就地扣减。
func consume(sorted []Batch, quantityNeeded int) (*AllocationResult, error) {
	result := &AllocationResult{
		ConsumedBatchIDs: []int64{},
		UpdatedBatches:   sorted,
	}
	remaining := quantityNeeded

	for i := range sorted {
		if remaining <= 0 {
			break
		}
		if sorted[i].Quantity <= 0 {
			// 空批次不参与分配，也不出现在消耗清单里
			continue
		}
		take := min(remaining, sorted[i].Quantity)
		sorted[i].Quantity -= take
		remaining -= take
		result.ConsumedBatchIDs = append(result.ConsumedBatchIDs, sorted[i].BatchID)
	}

	if remaining > 0 {
		return nil, &InsufficientStockError{
			Requested: quantityNeeded,
			Available: TotalQuantity(sorted) + (quantityNeeded - remaining),
		}
	}
	return result, nil
}
