package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/cache"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/checkout"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/returns"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/status"
)

type Checkouter interface {
	Checkout(ctx context.Context, req checkout.Request) (checkout.Result, error)
}

type Orders interface {
	Track(orders ...domain.Order)
	BuyerOrders(buyerID string) []cache.BuyerOrder
	SellerOrders(sellerID string) []cache.SellerOrder
	RefreshBuyer(ctx context.Context, buyerID string) error
	RefreshSeller(ctx context.Context, sellerID string) error
	UpdateSellerStatus(ctx context.Context, orderNumber string, target status.Seller, trackingNumber string) (cache.SellerOrder, error)
	ConfirmReceived(ctx context.Context, orderNumber string) (cache.BuyerOrder, error)
	Cancel(ctx context.Context, orderNumber string) (cache.BuyerOrder, error)
}

type Returns interface {
	Create(ctx context.Context, req returns.CreateRequest) (domain.ReturnRequest, error)
	Transition(ctx context.Context, id string, to domain.ReturnStatus, actor domain.Role, note string) (domain.ReturnRequest, error)
	Get(id string) (domain.ReturnRequest, error)
	ForBuyer(buyerID string) []domain.ReturnRequest
	ForSeller(sellerID string) []domain.ReturnRequest
}

type Server struct {
	checkout Checkouter
	orders   Orders
	returns  Returns
	logger   *zap.Logger
	server   *http.Server

	// shippingFee applies when a checkout request does not name one.
	shippingFee int64
}

func New(checkout Checkouter, orders Orders, returns Returns, logger *zap.Logger) *Server {
	return &Server{
		checkout: checkout,
		orders:   orders,
		returns:  returns,
		logger:   logger.Named("http"),
	}
}

func (s *Server) SetDefaultShippingFee(fee int64) {
	s.shippingFee = fee
}

// Run blocks until the listener stops. A clean Shutdown returns nil.
func (s *Server) Run(port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.logger.Info("server starting", zap.String("port", port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("shutting down server")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server shutdown completed")
	return nil
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestLogMiddleware)

	r.HandleFunc("/checkout", s.handleCheckout).Methods(http.MethodPost).Name("checkout")

	r.HandleFunc("/buyers/{id}/orders", s.handleBuyerOrders).Methods(http.MethodGet).Name("buyer_orders")
	r.HandleFunc("/sellers/{id}/orders", s.handleSellerOrders).Methods(http.MethodGet).Name("seller_orders")
	r.HandleFunc("/orders/{id}/seller-status", s.handleSellerStatus).Methods(http.MethodPut).Name("seller_status")
	r.HandleFunc("/orders/{id}/received", s.handleReceived).Methods(http.MethodPost).Name("confirm_received")
	r.HandleFunc("/orders/{id}/cancel", s.handleCancel).Methods(http.MethodPost).Name("cancel_order")

	r.HandleFunc("/returns", s.handleCreateReturn).Methods(http.MethodPost).Name("create_return")
	r.HandleFunc("/returns/{id}", s.handleGetReturn).Methods(http.MethodGet).Name("get_return")
	r.HandleFunc("/returns/{id}/status", s.handleReturnStatus).Methods(http.MethodPut).Name("return_status")
	r.HandleFunc("/buyers/{id}/returns", s.handleBuyerReturns).Methods(http.MethodGet).Name("buyer_returns")
	r.HandleFunc("/sellers/{id}/returns", s.handleSellerReturns).Methods(http.MethodGet).Name("seller_returns")

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet).Name("metrics")

	return r
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondFailure maps a service error onto a status code. A partially
// committed checkout also reports the orders that were written.
func respondFailure(w http.ResponseWriter, err error) {
	code := statusCode(err)

	var f *checkout.Failure
	if errors.As(err, &f) && f.Partial() {
		respondJSON(w, code, map[string]any{
			"error":     err.Error(),
			"committed": f.Committed,
		})
		return
	}
	respondError(w, code, err.Error())
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrInvalidPrice),
		errors.Is(err, checkout.ErrInvalidDiscount),
		errors.Is(err, checkout.ErrMissingSellerInfo),
		errors.Is(err, cache.ErrTrackingNumberRequired),
		errors.Is(err, status.ErrUnknownStatus),
		errors.Is(err, returns.ErrInvalidItems),
		errors.Is(err, returns.ErrInvalidType):
		return http.StatusBadRequest
	case errors.Is(err, returns.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, cache.ErrOrderNotFound),
		errors.Is(err, returns.ErrNotFound),
		errors.Is(err, returns.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, checkout.ErrInsufficientStock),
		errors.Is(err, cache.ErrInvalidTransition),
		errors.Is(err, returns.ErrInvalidTransition),
		errors.Is(err, returns.ErrOrderNotDelivered),
		errors.Is(err, returns.ErrNotEligible):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
