package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/cache"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/checkout"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/ledger/memory"
	mock_notify "gitlab.ozon.dev/pupkingeorgij/orderflow/internal/notify/mocks"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/returns"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/snapshot"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/status"
)

type nopPersister struct{}

func (nopPersister) Load() (snapshot.Data, error) { return snapshot.Data{}, nil }
func (nopPersister) Save(snapshot.Data) error     { return nil }

type testEnv struct {
	server *Server
	store  *memory.Store
	orders *cache.Service
}

func newTestEnv(t *testing.T) testEnv {
	ctrl := gomock.NewController(t)
	notifier := mock_notify.NewMockDispatcher(ctrl)
	notifier.EXPECT().NotifySellerNewOrder(gomock.Any(), gomock.Any()).AnyTimes()
	notifier.EXPECT().NotifyBuyerOrderStatus(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	notifier.EXPECT().NotifySellerReturnRequest(gomock.Any(), gomock.Any()).AnyTimes()
	notifier.EXPECT().NotifyBuyerReturnStatus(gomock.Any(), gomock.Any()).AnyTimes()

	store := memory.New()
	store.AddProduct(memory.Product{ID: "p-a", SellerID: "A", Stock: 10})
	store.AddProduct(memory.Product{ID: "p-b", SellerID: "B", Stock: 1})

	state := cache.NewState(nopPersister{}, zap.NewNop())
	orders := cache.NewService(state, store, notifier, zap.NewNop())
	rets := returns.NewService(store, state, notifier, 7, zap.NewNop())
	co := checkout.New(store, notifier, zap.NewNop())

	return testEnv{
		server: New(co, orders, rets, zap.NewNop()),
		store:  store,
		orders: orders,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func checkoutBody(quantityB int) map[string]any {
	return map[string]any{
		"buyer_id":       "buyer-1",
		"payment_method": "cod",
		"items": []map[string]any{
			{"product_id": "p-a", "product_name": "Shirt", "price": 100, "quantity": 1, "seller_id": "A"},
			{"product_id": "p-b", "product_name": "Mug", "price": 50, "quantity": quantityB, "seller_id": "B"},
		},
	}
}

func (e testEnv) placeOrders(t *testing.T) checkoutResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/checkout", jsonBody(t, checkoutBody(1)))
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp checkoutResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestHandleCheckout(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "invalid request body",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request body",
		},
		{
			name:           "missing buyer",
			body:           map[string]any{"payment_method": "cod"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "buyer_id is required",
		},
		{
			name:           "unknown payment method",
			body:           map[string]any{"buyer_id": "buyer-1", "payment_method": "barter"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid payment method",
		},
		{
			name:           "empty cart",
			body:           map[string]any{"buyer_id": "buyer-1", "payment_method": "card"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "negative price",
			body: map[string]any{
				"buyer_id":       "buyer-1",
				"payment_method": "card",
				"items":          []map[string]any{{"product_id": "p-a", "price": -100, "quantity": 1, "seller_id": "A"}},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "insufficient stock",
			body:           checkoutBody(2),
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := httptest.NewRequest(http.MethodPost, "/checkout", jsonBody(t, tt.body))
			w := httptest.NewRecorder()

			env.server.handleCheckout(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, resp["error"])
			}
			assert.Empty(t, env.store.Orders())
		})
	}

	t.Run("success tracks orders in both views", func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.placeOrders(t)

		require.Len(t, resp.OrderNumbers, 2)
		assert.Equal(t, resp.BaseNumber+"#1", resp.OrderNumbers[0])
		assert.Len(t, env.orders.BuyerOrders("buyer-1"), 2)
		assert.Len(t, env.orders.SellerOrders("A"), 1)
		assert.Len(t, env.orders.SellerOrders("B"), 1)
	})
}

func TestHandleListOrders(t *testing.T) {
	env := newTestEnv(t)
	env.placeOrders(t)

	req := httptest.NewRequest(http.MethodGet, "/buyers/buyer-1/orders", nil)
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var buyer []cache.BuyerOrder
	require.NoError(t, json.NewDecoder(w.Body).Decode(&buyer))
	require.Len(t, buyer, 2)
	for _, o := range buyer {
		assert.Equal(t, status.BuyerPending, o.BuyerStatus)
	}

	req = httptest.NewRequest(http.MethodGet, "/sellers/A/orders?refresh=true", nil)
	w = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var seller []cache.SellerOrder
	require.NoError(t, json.NewDecoder(w.Body).Decode(&seller))
	require.Len(t, seller, 1)
	assert.Equal(t, status.SellerPending, seller[0].SellerStatus)
	assert.Equal(t, status.SellerPaymentPending, seller[0].PaymentStatus)
}

func TestHandleSellerStatus(t *testing.T) {
	env := newTestEnv(t)
	placed := env.placeOrders(t)
	number := placed.OrderNumbers[0]

	tests := []struct {
		name           string
		orderNumber    string
		body           map[string]any
		expectedStatus int
		expectedSeller status.Seller
	}{
		{
			name:           "unknown status",
			orderNumber:    number,
			body:           map[string]any{"status": "lost"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown order",
			orderNumber:    "ORD-0000000000#1",
			body:           map[string]any{"status": "to_ship"},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "shipped without tracking number",
			orderNumber:    number,
			body:           map[string]any{"status": "shipped"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "shipped",
			orderNumber:    number,
			body:           map[string]any{"status": "shipped", "tracking_number": " jne-1 "},
			expectedStatus: http.StatusOK,
			expectedSeller: status.SellerShipped,
		},
		{
			name:           "completed",
			orderNumber:    number,
			body:           map[string]any{"status": "completed"},
			expectedStatus: http.StatusOK,
			expectedSeller: status.SellerCompleted,
		},
		{
			name:           "terminal order",
			orderNumber:    number,
			body:           map[string]any{"status": "to_ship"},
			expectedStatus: http.StatusConflict,
		},
	}

	// cases share one order and run in sequence
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/orders/x/seller-status", jsonBody(t, tt.body))
			req = mux.SetURLVars(req, map[string]string{"id": tt.orderNumber})
			w := httptest.NewRecorder()

			env.server.handleSellerStatus(w, req)

			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedSeller != "" {
				var got cache.SellerOrder
				require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
				assert.Equal(t, tt.expectedSeller, got.SellerStatus)
			}
		})
	}

	buyer := env.orders.BuyerOrders("buyer-1")
	for _, o := range buyer {
		if o.OrderNumber == number {
			assert.Equal(t, status.BuyerDelivered, o.BuyerStatus)
			assert.Equal(t, "JNE-1", o.TrackingNumber)
			assert.NotNil(t, o.DeliveredAt)
		}
	}
}

func TestHandleCancelAndReceived(t *testing.T) {
	env := newTestEnv(t)
	placed := env.placeOrders(t)
	number := placed.OrderNumbers[1]

	call := func(handler http.HandlerFunc, orderNumber string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/orders/x", nil)
		req = mux.SetURLVars(req, map[string]string{"id": orderNumber})
		w := httptest.NewRecorder()
		handler(w, req)
		return w
	}

	w := call(env.server.handleReceived, number)
	assert.Equal(t, http.StatusConflict, w.Code, "pending orders cannot be received")

	w = call(env.server.handleCancel, number)
	require.Equal(t, http.StatusOK, w.Code)
	var got cache.BuyerOrder
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, status.BuyerCancelled, got.BuyerStatus)

	w = call(env.server.handleCancel, number)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(env.server.handleCancel, "ORD-missing#9")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReturnFlow(t *testing.T) {
	env := newTestEnv(t)
	placed := env.placeOrders(t)
	order := placed.Orders[0]

	createReturn := func(orderID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/returns", jsonBody(t, map[string]any{
			"order_id": orderID,
			"buyer_id": "buyer-1",
			"items":    []map[string]any{{"product_id": "p-a", "quantity": 1}},
			"reason":   "wrong size",
			"type":     "return_refund",
		}))
		w := httptest.NewRecorder()
		env.server.Handler().ServeHTTP(w, req)
		return w
	}

	w := createReturn(order.ID)
	assert.Equal(t, http.StatusConflict, w.Code, "not delivered yet")

	w = createReturn("no-such-order")
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, err := env.orders.UpdateSellerStatus(context.Background(), order.OrderNumber, status.SellerCompleted, "")
	require.NoError(t, err)

	w = createReturn(order.ID)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ret domain.ReturnRequest
	require.NoError(t, json.NewDecoder(w.Body).Decode(&ret))
	assert.Equal(t, domain.ReturnPendingReview, ret.Status)
	assert.Equal(t, int64(100), ret.Amount)

	transition := func(to domain.ReturnStatus, actor domain.Role) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/returns/%s/status", ret.ID), jsonBody(t, map[string]any{
			"status": to,
			"actor":  actor,
		}))
		w := httptest.NewRecorder()
		env.server.Handler().ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusForbidden, transition(domain.ReturnApproved, domain.RoleBuyer).Code)
	assert.Equal(t, http.StatusConflict, transition(domain.ReturnRefunded, domain.RoleSeller).Code)
	assert.Equal(t, http.StatusOK, transition(domain.ReturnApproved, domain.RoleSeller).Code)
	assert.Equal(t, http.StatusOK, transition(domain.ReturnRefunded, domain.RoleAdmin).Code)

	w = createReturn(order.ID)
	assert.Equal(t, http.StatusBadRequest, w.Code, "item already returned")

	req := httptest.NewRequest(http.MethodGet, "/returns/"+ret.ID, nil)
	w = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.ReturnRequest
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, domain.ReturnRefunded, got.Status)
	assert.Len(t, got.History, 3)

	req = httptest.NewRequest(http.MethodGet, "/sellers/A/returns", nil)
	w = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)
	var list []domain.ReturnRequest
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Len(t, list, 1)

	req = httptest.NewRequest(http.MethodGet, "/returns/missing", nil)
	w = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleCheckout_PartialFailureTracksCommittedOrders(t *testing.T) {
	env := newTestEnv(t)
	env.store.SetBalance("buyer-1", 10)
	body := checkoutBody(1)
	body["loyalty_used"] = 500

	req := httptest.NewRequest(http.MethodPost, "/checkout", jsonBody(t, body))
	w := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp struct {
		Committed []string `json:"committed"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Committed, 2)

	buyer := env.orders.BuyerOrders("buyer-1")
	require.Len(t, buyer, 2)
	numbers := []string{buyer[0].OrderNumber, buyer[1].OrderNumber}
	assert.ElementsMatch(t, resp.Committed, numbers)
	assert.Len(t, env.orders.SellerOrders("A"), 1)
	assert.Len(t, env.orders.SellerOrders("B"), 1)
	assert.Equal(t, int64(10), env.store.Balance("buyer-1"))
}

func TestRespondFailure_PartialCheckout(t *testing.T) {
	err := &checkout.Failure{
		Step:      checkout.StepLoyalty,
		Kind:      checkout.ErrLedgerUpdateFailed,
		Cause:     errors.New("balance would go negative"),
		Committed: []string{"ORD-2025000001#1", "ORD-2025000001#2"},
	}
	w := httptest.NewRecorder()

	respondFailure(w, err)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp struct {
		Error     string   `json:"error"`
		Committed []string `json:"committed"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, err.Committed, resp.Committed)
	assert.Contains(t, resp.Error, "loyalty")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	env.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
