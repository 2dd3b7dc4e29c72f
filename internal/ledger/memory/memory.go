package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/ledger"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/status"
)

var _ ledger.Store = (*Store)(nil)

type Product struct {
	ID       string
	SellerID string
	Stock    int
	Sales    int
}

type CartItem struct {
	ProductID string
	Price     int64
	Quantity  int
}

// Store keeps the whole ledger in memory. Like the postgres ledger it offers
// no multi-call atomicity; each method locks only for its own duration.
type Store struct {
	mu         sync.Mutex
	products   map[string]*Product
	balances   map[string]int64
	carts      map[string][]CartItem
	cartTotals map[string]int64
	orders     map[string]domain.Order
	returns    map[string]domain.ReturnRequest
}

func New() *Store {
	return &Store{
		products:   make(map[string]*Product),
		balances:   make(map[string]int64),
		carts:      make(map[string][]CartItem),
		cartTotals: make(map[string]int64),
		orders:     make(map[string]domain.Order),
		returns:    make(map[string]domain.ReturnRequest),
	}
}

func (s *Store) AddProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
}

func (s *Store) Product(id string) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, false
	}
	return *p, true
}

func (s *Store) SetBalance(buyerID string, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[buyerID] = balance
}

func (s *Store) Balance(buyerID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[buyerID]
}

func (s *Store) PutCart(cartID string, items []CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cartID] = append([]CartItem(nil), items...)
	s.cartTotals[cartID] = cartTotal(items)
}

func (s *Store) Cart(cartID string) ([]CartItem, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CartItem(nil), s.carts[cartID]...), s.cartTotals[cartID]
}

// Orders returns every stored order sorted by order number.
func (s *Store) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out
}

func (s *Store) CreateOrder(_ context.Context, order *domain.Order) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	o := order.Clone()
	o.ID = id
	o.Items = nil
	s.orders[id] = o
	return id, nil
}

func (s *Store) CreateOrderItems(_ context.Context, orderID string, items []domain.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, ledger.ErrNotFound)
	}
	withItems := domain.Order{Items: items}.Clone()
	o.Items = append(o.Items, withItems.Items...)
	s.orders[orderID] = o
	return nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, upd domain.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[upd.OrderID]
	if !ok {
		return fmt.Errorf("order %s: %w", upd.OrderID, ledger.ErrNotFound)
	}
	o.Shipment = upd.Shipment
	o.Status = status.OrderOf(upd.Shipment)
	if upd.TrackingNumber != "" {
		o.TrackingNumber = upd.TrackingNumber
	}
	if upd.DeliveredAt != nil {
		t := *upd.DeliveredAt
		o.DeliveredAt = &t
	}
	s.orders[upd.OrderID] = o
	return nil
}

func (s *Store) OrdersByBuyer(_ context.Context, buyerID string) ([]domain.Order, error) {
	return s.ordersWhere(func(o domain.Order) bool { return o.BuyerID == buyerID }), nil
}

func (s *Store) OrdersBySeller(_ context.Context, sellerID string) ([]domain.Order, error) {
	return s.ordersWhere(func(o domain.Order) bool { return o.SellerID == sellerID }), nil
}

func (s *Store) ordersWhere(keep func(domain.Order) bool) []domain.Order {
	out := []domain.Order{}
	for _, o := range s.Orders() {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func (s *Store) GetStock(_ context.Context, productID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return 0, fmt.Errorf("product %s: %w", productID, ledger.ErrNotFound)
	}
	return p.Stock, nil
}

func (s *Store) SetStock(_ context.Context, productID string, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return fmt.Errorf("product %s: %w", productID, ledger.ErrNotFound)
	}
	p.Stock = stock
	return nil
}

func (s *Store) IncrementSalesCount(_ context.Context, productID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[productID]; ok {
		p.Sales += delta
	}
	return nil
}

func (s *Store) GetProductSeller(_ context.Context, productID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return "", fmt.Errorf("product %s: %w", productID, ledger.ErrNotFound)
	}
	return p.SellerID, nil
}

func (s *Store) GetLoyaltyBalance(_ context.Context, buyerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[buyerID]
	if !ok {
		return 0, fmt.Errorf("buyer %s: %w", buyerID, ledger.ErrNotFound)
	}
	return b, nil
}

func (s *Store) SetLoyaltyBalance(_ context.Context, buyerID string, balance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.balances[buyerID]; !ok {
		return fmt.Errorf("buyer %s: %w", buyerID, ledger.ErrNotFound)
	}
	s.balances[buyerID] = balance
	return nil
}

func (s *Store) DeleteCartItems(_ context.Context, cartID string, productIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		drop[id] = struct{}{}
	}
	kept := s.carts[cartID][:0]
	for _, it := range s.carts[cartID] {
		if _, ok := drop[it.ProductID]; !ok {
			kept = append(kept, it)
		}
	}
	s.carts[cartID] = kept
	return nil
}

func (s *Store) RecomputeCartTotal(_ context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartTotals[cartID] = cartTotal(s.carts[cartID])
	return nil
}

func (s *Store) CreateReturnRequest(_ context.Context, req *domain.ReturnRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[req.OrderID]; !ok {
		return "", fmt.Errorf("order %s: %w", req.OrderID, ledger.ErrNotFound)
	}
	id := uuid.New().String()
	r := req.Clone()
	r.ID = id
	s.returns[id] = r
	return id, nil
}

func (s *Store) AppendReturnHistory(_ context.Context, requestID string, entry domain.ReturnHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.returns[requestID]
	if !ok {
		return fmt.Errorf("return %s: %w", requestID, ledger.ErrNotFound)
	}
	r.Append(entry)
	s.returns[requestID] = r
	return nil
}

func (s *Store) ReturnRequestsByBuyer(_ context.Context, buyerID string) ([]domain.ReturnRequest, error) {
	return s.returnsWhere(func(r domain.ReturnRequest) bool { return r.BuyerID == buyerID }), nil
}

func (s *Store) ReturnRequestsBySeller(_ context.Context, sellerID string) ([]domain.ReturnRequest, error) {
	return s.returnsWhere(func(r domain.ReturnRequest) bool { return r.SellerID == sellerID }), nil
}

func (s *Store) returnsWhere(keep func(domain.ReturnRequest) bool) []domain.ReturnRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.ReturnRequest{}
	for _, r := range s.returns {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func cartTotal(items []CartItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}
