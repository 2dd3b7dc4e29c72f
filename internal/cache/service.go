package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/ledger"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/notify"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/status"
)

var (
	ErrOrderNotFound          = errors.New("order not found in cache")
	ErrTrackingNumberRequired = errors.New("tracking number is required to mark an order shipped")
	ErrInvalidTransition      = errors.New("invalid status transition")
)

// BuyerOrder is an order as the buyer sees it.
type BuyerOrder struct {
	domain.Order
	BuyerStatus status.Buyer `json:"buyer_status"`
}

// SellerOrder is an order as the seller sees it.
type SellerOrder struct {
	domain.Order
	SellerStatus  status.Seller        `json:"seller_status"`
	PaymentStatus status.SellerPayment `json:"seller_payment_status"`
}

func buyerOrder(o domain.Order) BuyerOrder {
	return BuyerOrder{
		Order:       o,
		BuyerStatus: status.BuyerView(o.Payment, o.Shipment).Reviewed(o.IsReviewed),
	}
}

func sellerOrder(o domain.Order) SellerOrder {
	return SellerOrder{
		Order:         o,
		SellerStatus:  status.SellerView(o.Payment, o.Shipment),
		PaymentStatus: status.SellerPaymentView(o.Payment),
	}
}

// Service runs order status transitions against the cache and the ledger:
// the cache changes first, the ledger write follows, and a failed write puts
// the cache entry back.
type Service struct {
	state    *State
	store    ledger.Store
	notifier notify.Dispatcher
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(state *State, store ledger.Store, notifier notify.Dispatcher, logger *zap.Logger) *Service {
	return &Service{
		state:    state,
		store:    store,
		notifier: notifier,
		logger:   logger.Named("orders"),
		now:      time.Now,
	}
}

func (s *Service) State() *State {
	return s.state
}

func (s *Service) BuyerOrders(buyerID string) []BuyerOrder {
	orders := s.state.List(ViewBuyer, func(o domain.Order) bool { return o.BuyerID == buyerID })
	out := make([]BuyerOrder, len(orders))
	for i, o := range orders {
		out[i] = buyerOrder(o)
	}
	return out
}

func (s *Service) SellerOrders(sellerID string) []SellerOrder {
	orders := s.state.List(ViewSeller, func(o domain.Order) bool { return o.SellerID == sellerID })
	out := make([]SellerOrder, len(orders))
	for i, o := range orders {
		out[i] = sellerOrder(o)
	}
	return out
}

// Track adds freshly created orders to both views.
func (s *Service) Track(orders ...domain.Order) {
	for _, o := range orders {
		s.state.Commit(s.state.ApplyOptimistic(ViewBuyer, o))
		s.state.Commit(s.state.ApplyOptimistic(ViewSeller, o))
	}
}

// sellerStage orders the forward path of a seller's order. Cancelling is
// allowed from any non-terminal stage and sits outside it.
var sellerStage = map[status.Seller]int{
	status.SellerPending:   0,
	status.SellerToShip:    1,
	status.SellerShipped:   2,
	status.SellerCompleted: 3,
}

// UpdateSellerStatus moves a seller's order to target. Shipping needs a
// tracking number; completing stamps the delivery time.
func (s *Service) UpdateSellerStatus(ctx context.Context, orderNumber string, target status.Seller, trackingNumber string) (SellerOrder, error) {
	current, ok := s.state.Get(ViewSeller, orderNumber)
	if !ok {
		return SellerOrder{}, fmt.Errorf("%s: %w", orderNumber, ErrOrderNotFound)
	}

	from := status.SellerView(current.Payment, current.Shipment)
	if from.Terminal() {
		return SellerOrder{}, fmt.Errorf("%s is %s: %w", orderNumber, from, ErrInvalidTransition)
	}
	if target != status.SellerCancelled && sellerStage[target] < sellerStage[from] {
		return SellerOrder{}, fmt.Errorf("%s: %s -> %s: %w", orderNumber, from, target, ErrInvalidTransition)
	}

	next := current.Clone()
	next.Shipment = status.Backend(target)
	next.Status = status.OrderOf(next.Shipment)

	switch target {
	case status.SellerShipped:
		tracking := strings.ToUpper(strings.TrimSpace(trackingNumber))
		if tracking == "" {
			return SellerOrder{}, ErrTrackingNumberRequired
		}
		next.TrackingNumber = tracking
	case status.SellerCompleted:
		now := s.now().UTC()
		next.DeliveredAt = &now
	}

	if err := s.apply(ctx, ViewSeller, next); err != nil {
		return SellerOrder{}, err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(ViewSeller), string(target)).Inc()
	buyerStatus := status.BuyerView(next.Payment, next.Shipment)
	s.notifier.NotifyBuyerOrderStatus(ctx, next, string(buyerStatus))
	s.logger.Info("seller status updated",
		zap.String("order_number", orderNumber),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)
	return sellerOrder(next), nil
}

// ConfirmReceived is the buyer acknowledging a shipped or delivered order.
func (s *Service) ConfirmReceived(ctx context.Context, orderNumber string) (BuyerOrder, error) {
	current, ok := s.state.Get(ViewBuyer, orderNumber)
	if !ok {
		return BuyerOrder{}, fmt.Errorf("%s: %w", orderNumber, ErrOrderNotFound)
	}

	from := status.BuyerView(current.Payment, current.Shipment)
	if from != status.BuyerShipped && from != status.BuyerDelivered {
		return BuyerOrder{}, fmt.Errorf("%s is %s: %w", orderNumber, from, ErrInvalidTransition)
	}

	next := current.Clone()
	next.Shipment = status.ShipmentReceived
	next.Status = status.OrderOf(next.Shipment)
	if next.DeliveredAt == nil {
		now := s.now().UTC()
		next.DeliveredAt = &now
	}

	if err := s.apply(ctx, ViewBuyer, next); err != nil {
		return BuyerOrder{}, err
	}
	metrics.StatusTransitionsTotal.WithLabelValues(string(ViewBuyer), string(status.BuyerDelivered)).Inc()
	return buyerOrder(next), nil
}

// Cancel is only open to the buyer while the seller has not started on the
// order.
func (s *Service) Cancel(ctx context.Context, orderNumber string) (BuyerOrder, error) {
	current, ok := s.state.Get(ViewBuyer, orderNumber)
	if !ok {
		return BuyerOrder{}, fmt.Errorf("%s: %w", orderNumber, ErrOrderNotFound)
	}

	from := status.BuyerView(current.Payment, current.Shipment)
	if from != status.BuyerPending {
		return BuyerOrder{}, fmt.Errorf("%s is %s: %w", orderNumber, from, ErrInvalidTransition)
	}

	next := current.Clone()
	next.Shipment = status.ShipmentCancelled
	next.Status = status.OrderOf(next.Shipment)

	if err := s.apply(ctx, ViewBuyer, next); err != nil {
		return BuyerOrder{}, err
	}
	metrics.StatusTransitionsTotal.WithLabelValues(string(ViewBuyer), string(status.BuyerCancelled)).Inc()
	return buyerOrder(next), nil
}

func (s *Service) apply(ctx context.Context, view View, next domain.Order) error {
	pending := s.state.ApplyOptimistic(view, next)

	err := s.store.UpdateOrderStatus(ctx, domain.StatusUpdate{
		OrderID:        next.ID,
		Shipment:       next.Shipment,
		TrackingNumber: next.TrackingNumber,
		DeliveredAt:    next.DeliveredAt,
	})
	if err != nil {
		s.state.Rollback(pending)
		s.logger.Warn("status write failed, rolled back",
			zap.String("view", string(view)),
			zap.String("order_number", next.OrderNumber),
			zap.Error(err),
		)
		return err
	}

	s.state.Commit(pending)
	return nil
}

// RefreshBuyer reloads a buyer's orders and return requests from the ledger.
func (s *Service) RefreshBuyer(ctx context.Context, buyerID string) error {
	var (
		orders  []domain.Order
		returns []domain.ReturnRequest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.store.OrdersByBuyer(gctx, buyerID)
		if err != nil {
			return fmt.Errorf("failed to load orders of buyer %s: %w", buyerID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		returns, err = s.store.ReturnRequestsByBuyer(gctx, buyerID)
		if err != nil {
			return fmt.Errorf("failed to load returns of buyer %s: %w", buyerID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("refresh_buyer").Inc()
		return err
	}

	s.state.Replace(ViewBuyer, func(o domain.Order) bool { return o.BuyerID == buyerID }, orders)
	s.state.ReplaceReturns(func(r domain.ReturnRequest) bool { return r.BuyerID == buyerID }, returns)
	return nil
}

// RefreshSeller reloads a seller's orders and return requests from the ledger.
func (s *Service) RefreshSeller(ctx context.Context, sellerID string) error {
	var (
		orders  []domain.Order
		returns []domain.ReturnRequest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.store.OrdersBySeller(gctx, sellerID)
		if err != nil {
			return fmt.Errorf("failed to load orders of seller %s: %w", sellerID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		returns, err = s.store.ReturnRequestsBySeller(gctx, sellerID)
		if err != nil {
			return fmt.Errorf("failed to load returns of seller %s: %w", sellerID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("refresh_seller").Inc()
		return err
	}

	s.state.Replace(ViewSeller, func(o domain.Order) bool { return o.SellerID == sellerID }, orders)
	s.state.ReplaceReturns(func(r domain.ReturnRequest) bool { return r.SellerID == sellerID }, returns)
	return nil
}
