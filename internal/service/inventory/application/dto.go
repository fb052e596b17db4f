// internal/service/inventory/application/dto.go
package application

// BatchView 是单个批次的对外视图。
type BatchView struct {
	BatchID    int64  `json:"batchId"`
	Quantity   int    `json:"quantity"`
	ExpiryDate string `json:"expiryDate"` // YYYY-MM-DD
}

// AvailabilityView 是商品可用性查询的结果。
// Batches 的口径是全部批次（含数量为 0 的），按过期日升序。
type AvailabilityView struct {
	ProductID      int64       `json:"productId"`
	ProductName    string      `json:"productName"`
	Batches        []BatchView `json:"batches"`
	TotalAvailable int         `json:"totalAvailable"`
}

// ReserveCommand 是一次预占请求。
// ReservationToken 由调用方提供，用于幂等去重；空串表示不做去重。
type ReserveCommand struct {
	ProductID        int64
	Quantity         int
	ReservationToken string
}

// ReserveResult 是一次预占的结果，Replayed 表示本次命中了去重回执。
type ReserveResult struct {
	ReservedBatchIDs []int64
	Replayed         bool
}
