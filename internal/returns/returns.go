package returns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/cache"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/ledger"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/notify"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/status"
)

const DefaultWindowDays = 7

var (
	ErrNotFound          = errors.New("return request not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotDelivered = errors.New("order has not been delivered")
	ErrNotEligible       = errors.New("return window has closed")
	ErrInvalidItems      = errors.New("invalid return items")
	ErrInvalidType       = errors.New("invalid return type")
	ErrInvalidTransition = errors.New("invalid return status transition")
	ErrForbidden         = errors.New("actor may not perform this transition")
)

var transitions = map[domain.ReturnStatus][]domain.ReturnStatus{
	domain.ReturnPendingReview:          {domain.ReturnSellerResponseRequired, domain.ReturnApproved, domain.ReturnRejected},
	domain.ReturnSellerResponseRequired: {domain.ReturnApproved, domain.ReturnRejected},
	domain.ReturnApproved:               {domain.ReturnRefunded},
}

func allowed(from, to domain.ReturnStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// buyerNotified lists the statuses the buyer hears about.
func buyerNotified(s domain.ReturnStatus) bool {
	return s == domain.ReturnApproved || s == domain.ReturnRejected || s == domain.ReturnRefunded
}

type ItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateRequest struct {
	OrderID     string            `json:"order_id"`
	BuyerID     string            `json:"buyer_id"`
	Items       []ItemRequest     `json:"items"`
	Reason      string            `json:"reason"`
	Description string            `json:"description"`
	Evidence    []string          `json:"evidence"`
	Type        domain.ReturnType `json:"type"`
}

type Service struct {
	store      ledger.Store
	state      *cache.State
	notifier   notify.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	windowDays int
}

func NewService(store ledger.Store, state *cache.State, notifier notify.Dispatcher, windowDays int, logger *zap.Logger) *Service {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Service{
		store:      store,
		state:      state,
		notifier:   notifier,
		logger:     logger.Named("returns"),
		now:        time.Now,
		windowDays: windowDays,
	}
}

// DaysSinceDelivery is floor((now - deliveredAt) / 24h). A delivery time in
// the future gives a negative count.
func DaysSinceDelivery(deliveredAt, now time.Time) int {
	const day = 24 * time.Hour
	d := now.Sub(deliveredAt)
	days := d / day
	if d < 0 && d%day != 0 {
		days--
	}
	return int(days)
}

// Eligible reports whether a return may be opened windowDays after delivery,
// both ends inclusive.
func Eligible(deliveredAt, now time.Time, windowDays int) bool {
	days := DaysSinceDelivery(deliveredAt, now)
	return days >= 0 && days <= windowDays
}

// Create opens a return against a delivered order. All checks run before the
// ledger is touched.
func (s *Service) Create(ctx context.Context, req CreateRequest) (domain.ReturnRequest, error) {
	order, err := s.findOrder(ctx, req.BuyerID, req.OrderID)
	if err != nil {
		return domain.ReturnRequest{}, err
	}

	if status.OrderOf(order.Shipment) != status.OrderDelivered || order.DeliveredAt == nil {
		return domain.ReturnRequest{}, fmt.Errorf("order %s: %w", order.OrderNumber, ErrOrderNotDelivered)
	}
	now := s.now().UTC()
	if !Eligible(*order.DeliveredAt, now, s.windowDays) {
		return domain.ReturnRequest{}, fmt.Errorf("order %s delivered %d days ago: %w",
			order.OrderNumber, DaysSinceDelivery(*order.DeliveredAt, now), ErrNotEligible)
	}
	if req.Type != domain.ReturnForRefund && req.Type != domain.RefundOnly {
		return domain.ReturnRequest{}, fmt.Errorf("%q: %w", req.Type, ErrInvalidType)
	}

	claimed, err := s.claimedQuantities(ctx, order)
	if err != nil {
		return domain.ReturnRequest{}, err
	}
	items, err := returnItems(order, req.Items, claimed)
	if err != nil {
		return domain.ReturnRequest{}, err
	}

	r := domain.ReturnRequest{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		BuyerID:     order.BuyerID,
		SellerID:    order.SellerID,
		Items:       items,
		Reason:      req.Reason,
		Description: req.Description,
		Evidence:    req.Evidence,
		Type:        req.Type,
		Amount:      amount(items),
		CreatedAt:   now,
	}
	r.Append(domain.ReturnHistoryEntry{Status: domain.ReturnPendingReview, Timestamp: now, Actor: domain.RoleBuyer})

	id, err := s.store.CreateReturnRequest(ctx, &r)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("create_return").Inc()
		return domain.ReturnRequest{}, fmt.Errorf("failed to create return request: %w", err)
	}
	r.ID = id
	s.state.PutReturn(r)

	metrics.ReturnTransitionsTotal.WithLabelValues(string(r.Status)).Inc()
	s.notifier.NotifySellerReturnRequest(ctx, r)
	s.logger.Info("return request created",
		zap.String("return_id", id),
		zap.String("order_number", r.OrderNumber),
		zap.Int64("amount", r.Amount),
	)
	return r, nil
}

// Transition moves a request along the return state machine and appends one
// history entry. Buyers cannot move a request once it is opened.
func (s *Service) Transition(ctx context.Context, id string, to domain.ReturnStatus, actor domain.Role, note string) (domain.ReturnRequest, error) {
	r, ok := s.state.Return(id)
	if !ok {
		return domain.ReturnRequest{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if actor != domain.RoleSeller && actor != domain.RoleAdmin {
		return domain.ReturnRequest{}, fmt.Errorf("%s: %w", actor, ErrForbidden)
	}
	if !allowed(r.Status, to) {
		return domain.ReturnRequest{}, fmt.Errorf("%s -> %s: %w", r.Status, to, ErrInvalidTransition)
	}

	ts := s.now().UTC()
	if n := len(r.History); n > 0 && ts.Before(r.History[n-1].Timestamp) {
		ts = r.History[n-1].Timestamp
	}
	entry := domain.ReturnHistoryEntry{Status: to, Timestamp: ts, Actor: actor, Note: note}

	if err := s.store.AppendReturnHistory(ctx, id, entry); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("append_return_history").Inc()
		return domain.ReturnRequest{}, fmt.Errorf("failed to append history to %s: %w", id, err)
	}
	r.Append(entry)
	s.state.PutReturn(r)

	metrics.ReturnTransitionsTotal.WithLabelValues(string(to)).Inc()
	if buyerNotified(to) {
		s.notifier.NotifyBuyerReturnStatus(ctx, r)
	}
	s.logger.Info("return request moved",
		zap.String("return_id", id),
		zap.String("status", string(to)),
		zap.String("actor", string(actor)),
	)
	return r, nil
}

func (s *Service) Get(id string) (domain.ReturnRequest, error) {
	r, ok := s.state.Return(id)
	if !ok {
		return domain.ReturnRequest{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return r, nil
}

func (s *Service) ForBuyer(buyerID string) []domain.ReturnRequest {
	return s.state.Returns(func(r domain.ReturnRequest) bool { return r.BuyerID == buyerID })
}

func (s *Service) ForSeller(sellerID string) []domain.ReturnRequest {
	return s.state.Returns(func(r domain.ReturnRequest) bool { return r.SellerID == sellerID })
}

// findOrder prefers the cached buyer view and falls back to the ledger.
func (s *Service) findOrder(ctx context.Context, buyerID, orderID string) (domain.Order, error) {
	cached := s.state.List(cache.ViewBuyer, func(o domain.Order) bool {
		return o.ID == orderID && o.BuyerID == buyerID
	})
	if len(cached) > 0 {
		return cached[0], nil
	}

	orders, err := s.store.OrdersByBuyer(ctx, buyerID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to load orders of %s: %w", buyerID, err)
	}
	for _, o := range orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return domain.Order{}, fmt.Errorf("%s: %w", orderID, ErrOrderNotFound)
}

// claimedQuantities sums, per product, what earlier requests on the order
// already claim. Rejected requests free their items again. Cached copies win
// over the ledger since they carry the newest status.
func (s *Service) claimedQuantities(ctx context.Context, order domain.Order) (map[string]int, error) {
	stored, err := s.store.ReturnRequestsByBuyer(ctx, order.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load returns of %s: %w", order.BuyerID, err)
	}

	prior := make(map[string]domain.ReturnRequest)
	for _, r := range stored {
		if r.OrderID == order.ID {
			prior[r.ID] = r
		}
	}
	for _, r := range s.state.Returns(func(r domain.ReturnRequest) bool { return r.OrderID == order.ID }) {
		prior[r.ID] = r
	}

	claimed := make(map[string]int)
	for _, r := range prior {
		if r.Status == domain.ReturnRejected {
			continue
		}
		for _, it := range r.Items {
			claimed[it.ProductID] += it.Quantity
		}
	}
	return claimed, nil
}

// returnItems checks the requested lines against what is left of the order
// after earlier claims and freezes the purchase price onto each.
func returnItems(order domain.Order, requested []ItemRequest, claimed map[string]int) ([]domain.ReturnItem, error) {
	if len(requested) == 0 {
		return nil, fmt.Errorf("no items: %w", ErrInvalidItems)
	}
	ordered := make(map[string]domain.OrderItem, len(order.Items))
	for _, it := range order.Items {
		ordered[it.ProductID] = it
	}

	seen := make(map[string]struct{}, len(requested))
	out := make([]domain.ReturnItem, 0, len(requested))
	for _, rq := range requested {
		it, ok := ordered[rq.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s not in order: %w", rq.ProductID, ErrInvalidItems)
		}
		if _, dup := seen[rq.ProductID]; dup {
			return nil, fmt.Errorf("product %s listed twice: %w", rq.ProductID, ErrInvalidItems)
		}
		seen[rq.ProductID] = struct{}{}
		left := it.Quantity - claimed[rq.ProductID]
		if rq.Quantity < 1 || rq.Quantity > left {
			return nil, fmt.Errorf("product %s: quantity %d of %d returnable: %w", rq.ProductID, rq.Quantity, left, ErrInvalidItems)
		}
		out = append(out, domain.ReturnItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.Price,
			Quantity:    rq.Quantity,
		})
	}
	return out, nil
}

func amount(items []domain.ReturnItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Price * int64(it.Quantity)
	}
	return sum
}
