// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"korber/internal/pkg/logger"
	"korber/internal/service/order/application"
	"korber/internal/service/order/domain"
)

var placeOrderTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "order_place_total",
	Help: "Order placement attempts by outcome.",
}, []string{"outcome"})

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Requested int    `json:"requested,omitempty"`
	Available int    `json:"available,omitempty"`
}

// OrderHandler 封装了 order 服务的 HTTP 处理器
type OrderHandler struct {
	service *application.OrderService
}

func NewOrderHandler(service *application.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/order", h.handlePlaceOrder)
	mux.HandleFunc("/order/", h.handleGetOrder)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())
}

func (h *OrderHandler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req application.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.PlaceOrder(ctx, &req)
	if err != nil {
		h.writePlaceOrderError(ctx, w, err)
		return
	}

	placeOrderTotal.WithLabelValues("success").Inc()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/order/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	resp, err := h.service.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.Ctx(ctx).Error().Err(err).Int64("order_id", id).Msg("order query failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// writePlaceOrderError 按错误分类映射 HTTP 状态码：
//   - 参数非法 -> 400
//   - 商品不存在 -> 404
//   - 库存不足 -> 422
//   - 库存服务不可达 -> 502
//   - 结果未知 / 落库失败 / 其他 -> 500，code 区分可对账的场景
func (h *OrderHandler) writePlaceOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientStockError
	var status int
	var resp errorResponse

	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		status = http.StatusBadRequest
		resp = errorResponse{Code: "INVALID_QUANTITY", Message: err.Error()}
	case errors.Is(err, domain.ErrProductNotFound):
		status = http.StatusNotFound
		resp = errorResponse{Code: "PRODUCT_NOT_FOUND", Message: err.Error()}
	case errors.As(err, &insufficient):
		status = http.StatusUnprocessableEntity
		resp = errorResponse{
			Code:      "INSUFFICIENT_STOCK",
			Message:   insufficient.Error(),
			Requested: insufficient.Requested,
			Available: insufficient.Available,
		}
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
		resp = errorResponse{Code: "UPSTREAM_UNAVAILABLE", Message: err.Error()}
	case errors.Is(err, domain.ErrAmbiguousReservation):
		status = http.StatusInternalServerError
		resp = errorResponse{Code: "RESERVATION_OUTCOME_UNKNOWN", Message: err.Error()}
	case errors.Is(err, domain.ErrOrderStorage):
		status = http.StatusInternalServerError
		resp = errorResponse{Code: "ORDER_STORAGE_FAILURE", Message: err.Error()}
	case errors.Is(err, domain.ErrReservationFailed):
		status = http.StatusInternalServerError
		resp = errorResponse{Code: "RESERVATION_FAILED", Message: err.Error()}
	default:
		status = http.StatusInternalServerError
		resp = errorResponse{Code: "INTERNAL", Message: "internal error"}
		logger.Ctx(ctx).Error().Err(err).Msg("order placement failed")
	}

	placeOrderTotal.WithLabelValues(strings.ToLower(resp.Code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
