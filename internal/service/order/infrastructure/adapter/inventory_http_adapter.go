// internal/service/order/infrastructure/adapter/inventory_http_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"korber/internal/pkg/httpclient"
	"korber/internal/service/order/domain"
	"korber/internal/service/order/domain/port"
)

// InventoryServiceName 是库存服务在注册中心里的逻辑名。
const InventoryServiceName = "inventory-service"

// InventoryHTTPAdapter 实现了 port.InventoryService 接口。
// 负责把库存服务的 HTTP 状态码翻译成 order/domain 的错误分类，
// 上层编排代码不接触任何传输层细节。
type InventoryHTTPAdapter struct {
	client *httpclient.Client
}

func NewInventoryHTTPAdapter(client *httpclient.Client) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{client: client}
}

type availabilityResponse struct {
	ProductID      int64  `json:"productId"`
	ProductName    string `json:"productName"`
	TotalAvailable int    `json:"totalAvailable"`
}

type reserveRequest struct {
	ProductID        int64  `json:"productId"`
	Quantity         int    `json:"quantity"`
	ReservationToken string `json:"reservationToken"`
}

type reserveResponse struct {
	Success          bool    `json:"success"`
	Message          string  `json:"message"`
	ReservedBatchIDs []int64 `json:"reservedBatchIds"`
	Requested        int     `json:"requested"`
	Available        int     `json:"available"`
}

// CheckAvailability 查询商品可用量。
func (a *InventoryHTTPAdapter) CheckAvailability(ctx context.Context, productID int64) (*port.ProductAvailability, error) {
	var resp availabilityResponse
	err := a.client.GetJSON(ctx, InventoryServiceName, fmt.Sprintf("/inventory/%d", productID), &resp)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.Code == http.StatusNotFound {
				return nil, domain.ErrProductNotFound
			}
			return nil, errors.Wrap(domain.ErrUpstreamUnavailable, statusErr.Error())
		}
		return nil, transportError(err)
	}
	return &port.ProductAvailability{
		ProductID:      resp.ProductID,
		ProductName:    resp.ProductName,
		TotalAvailable: resp.TotalAvailable,
	}, nil
}

// Reserve 调用库存服务的预占接口。
func (a *InventoryHTTPAdapter) Reserve(ctx context.Context, productID int64, quantity int, token string) ([]int64, error) {
	req := reserveRequest{ProductID: productID, Quantity: quantity, ReservationToken: token}
	var resp reserveResponse
	err := a.client.PostJSON(ctx, InventoryServiceName, "/inventory/update", req, &resp)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			switch statusErr.Code {
			case http.StatusUnprocessableEntity:
				// 422 的响应体里带着 requested/available
				var body reserveResponse
				if jsonErr := json.Unmarshal(statusErr.Body, &body); jsonErr == nil && body.Requested > 0 {
					return nil, &domain.InsufficientStockError{
						Requested: body.Requested,
						Available: body.Available,
					}
				}
				return nil, &domain.InsufficientStockError{Requested: quantity}
			case http.StatusBadRequest:
				return nil, errors.Wrap(domain.ErrReservationFailed, statusErr.Error())
			default:
				return nil, errors.Wrap(domain.ErrUpstreamUnavailable, statusErr.Error())
			}
		}
		return nil, transportError(err)
	}
	if !resp.Success {
		return nil, errors.Wrap(domain.ErrReservationFailed, resp.Message)
	}
	return resp.ReservedBatchIDs, nil
}

// transportError 区分超时取消和普通网络失败：
// 前者保留 context 错误让编排层识别出"结果未知"，后者归为上游不可用。
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return errors.Wrap(domain.ErrUpstreamUnavailable, err.Error())
}
