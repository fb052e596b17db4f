// internal/service/inventory/interfaces/http_handler.go
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
	"korber/internal/service/inventory/application"
	"korber/internal/service/inventory/domain"
)

var (
	reserveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_reserve_total",
		Help: "Reservation attempts by outcome.",
	}, []string{"outcome"})

	availabilityTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_availability_queries_total",
		Help: "Availability queries served.",
	})
)

// InventoryHandler 封装了 inventory 服务的 HTTP 处理器
type InventoryHandler struct {
	service *application.InventoryService
}

func NewInventoryHandler(service *application.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *InventoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/inventory/update", h.handleReserve)
	mux.HandleFunc("/inventory/", h.handleGetAvailability)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())
}

// updateRequest 是预占接口的请求体。
// reservationToken 可选，带上它同样的请求可以安全重试。
type updateRequest struct {
	ProductID        int64  `json:"productId"`
	Quantity         int    `json:"quantity"`
	ReservationToken string `json:"reservationToken"`
}

type updateResponse struct {
	Success          bool    `json:"success"`
	Message          string  `json:"message"`
	ReservedBatchIDs []int64 `json:"reservedBatchIds,omitempty"`
	Requested        int     `json:"requested,omitempty"`
	Available        int     `json:"available,omitempty"`
}

func (h *InventoryHandler) handleGetAvailability(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/inventory/")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}
	availabilityTotal.Inc()

	view, err := h.service.GetAvailability(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.Ctx(ctx).Error().Err(err).Int64("product_id", productID).Msg("availability query failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

func (h *InventoryHandler) handleReserve(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Reserve(ctx, application.ReserveCommand{
		ProductID:        req.ProductID,
		Quantity:         req.Quantity,
		ReservationToken: req.ReservationToken,
	})
	if err != nil {
		h.writeReserveError(ctx, w, err)
		return
	}

	reserveTotal.WithLabelValues("success").Inc()
	msg := "inventory reserved"
	if result.Replayed {
		msg = "duplicate reservation token, previous result returned"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updateResponse{
		Success:          true,
		Message:          msg,
		ReservedBatchIDs: result.ReservedBatchIDs,
	})
}

// writeReserveError 按错误类型映射 HTTP 状态码：
//   - 商品不存在 / 数量非法 -> 400（写路径上这是调用方的请求错误）
//   - 库存不足 -> 422，带上 requested/available 给调用方透传
//   - 其他 -> 500
func (h *InventoryHandler) writeReserveError(ctx context.Context, w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		reserveTotal.WithLabelValues("insufficient").Inc()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(updateResponse{
			Success:   false,
			Message:   insufficient.Error(),
			Requested: insufficient.Requested,
			Available: insufficient.Available,
		})
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrInvalidQuantity):
		reserveTotal.WithLabelValues("bad_request").Inc()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(updateResponse{Success: false, Message: err.Error()})
	default:
		reserveTotal.WithLabelValues("error").Inc()
		logger.Ctx(ctx).Error().Err(err).Msg("reservation failed")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(updateResponse{Success: false, Message: "internal error"})
	}
}
