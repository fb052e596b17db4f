// internal/service/order/application/dto.go
package application

// PlaceOrderRequest 是下单接口的入参。
type PlaceOrderRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// PlaceOrderResponse 是下单成功的出参。
type PlaceOrderResponse struct {
	OrderID              int64   `json:"orderId"`
	ProductID            int64   `json:"productId"`
	ProductName          string  `json:"productName"`
	Quantity             int     `json:"quantity"`
	Status               string  `json:"status"`
	ReservedFromBatchIDs []int64 `json:"reservedFromBatchIds"`
	Message              string  `json:"message"`
}
