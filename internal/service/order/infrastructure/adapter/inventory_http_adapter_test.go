package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"korber/internal/pkg/httpclient"
	"korber/internal/service/order/domain"
)

func newAdapter(t *testing.T, handler http.Handler) *InventoryHTTPAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := httpclient.NewClient(otel.Tracer("test"), httpclient.StaticResolver{
		InventoryServiceName: server.URL,
	})
	return NewInventoryHTTPAdapter(client)
}

func TestCheckAvailabilityDecodesResponse(t *testing.T) {
	a := newAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inventory/1002", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"productId":      1002,
			"productName":    "Whole Milk",
			"totalAvailable": 29,
		})
	}))

	availability, err := a.CheckAvailability(context.Background(), 1002)
	require.NoError(t, err)

	assert.Equal(t, int64(1002), availability.ProductID)
	assert.Equal(t, "Whole Milk", availability.ProductName)
	assert.Equal(t, 29, availability.TotalAvailable)
}

func TestCheckAvailabilityMapsNotFound(t *testing.T) {
	a := newAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "product not found in inventory", http.StatusNotFound)
	}))

	_, err := a.CheckAvailability(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCheckAvailabilityMapsServerErrorToUpstreamUnavailable(t *testing.T) {
	a := newAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := a.CheckAvailability(context.Background(), 1002)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestReserveSendsTokenAndDecodesBatchIDs(t *testing.T) {
	a := newAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inventory/update", r.URL.Path)
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tok-42", req["reservationToken"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":          true,
			"message":          "inventory reserved",
			"reservedBatchIds": []int64{5, 7},
		})
	}))

	batchIDs, err := a.Reserve(context.Background(), 1002, 50, "tok-42")
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 7}, batchIDs)
}

func TestReserveMapsInsufficientStockWithNumbers(t *testing.T) {
	a := newAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   false,
			"message":   "insufficient inventory: requested 100, available 29",
			"requested": 100,
			"available": 29,
		})
	}))

	_, err := a.Reserve(context.Background(), 1002, 100, "tok-1")

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 100, insufficient.Requested)
	assert.Equal(t, 29, insufficient.Available)
}

func TestReserveMapsBadRequestToReservationFailed(t *testing.T) {
	a := newAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quantity must not be negative", http.StatusBadRequest)
	}))

	_, err := a.Reserve(context.Background(), 1002, -1, "tok-1")
	assert.ErrorIs(t, err, domain.ErrReservationFailed)
}

func TestReservePreservesContextDeadlineError(t *testing.T) {
	a := newAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := a.Reserve(ctx, 1002, 1, "tok-1")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReserveMapsConnectionRefusedToUpstreamUnavailable(t *testing.T) {
	client := httpclient.NewClient(otel.Tracer("test"), httpclient.StaticResolver{
		InventoryServiceName: "http://127.0.0.1:1", // nothing listens here
	})
	a := NewInventoryHTTPAdapter(client)

	_, err := a.Reserve(context.Background(), 1002, 1, "tok-1")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
