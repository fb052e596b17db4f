// internal/service/inventory/domain/batch.go
package domain

import "time"

// Batch 是某个商品的一个带效期的库存批次。
// Quantity 永远不允许为负；数量为 0 的批次保留记录（审计需要），
// 只是不再参与分配。批次只由分配引擎扣减，创建和删除都不在核心范围内。
type Batch struct {
	BatchID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	ExpiryDate  time.Time // 只使用日期部分
}

// TotalQuantity 汇总一组批次的可用数量。
func TotalQuantity(batches []Batch) int {
	total := 0
	for _, b := range batches {
		total += b.Quantity
	}
	return total
}
