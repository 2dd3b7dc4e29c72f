package cache

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/snapshot"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/status"
)

type View string

const (
	ViewBuyer  View = "buyer"
	ViewSeller View = "seller"
)

func (v View) other() View {
	if v == ViewBuyer {
		return ViewSeller
	}
	return ViewBuyer
}

type Persister interface {
	Load() (snapshot.Data, error)
	Save(data snapshot.Data) error
}

type entry struct {
	order domain.Order
	rev   uint64
}

// Pending is the handle ApplyOptimistic returns. It carries the entry as it
// was before the change and is consumed by exactly one Commit or Rollback.
type Pending struct {
	view        View
	orderNumber string
	prev        domain.Order
	existed     bool
	rev         uint64
}

// State holds the buyer-side and seller-side order collections plus the
// return requests, keyed by order number and request ID. All mutation goes
// through ApplyOptimistic, Commit, Rollback and the Replace/Put commands.
type State struct {
	mu      sync.RWMutex
	views   map[View]map[string]*entry
	returns map[string]domain.ReturnRequest
	nextRev uint64

	persister Persister
	logger    *zap.Logger
}

func NewState(persister Persister, logger *zap.Logger) *State {
	return &State{
		views: map[View]map[string]*entry{
			ViewBuyer:  make(map[string]*entry),
			ViewSeller: make(map[string]*entry),
		},
		returns:   make(map[string]domain.ReturnRequest),
		persister: persister,
		logger:    logger.Named("order-cache"),
	}
}

// Hydrate replaces the in-memory state with the persisted snapshot. A snapshot
// holding a status pair outside the known vocabulary is refused as a whole and
// leaves the state untouched.
func (s *State) Hydrate() error {
	data, err := s.persister.Load()
	if err != nil {
		return err
	}
	for _, orders := range [][]domain.Order{data.BuyerOrders, data.SellerOrders} {
		for _, o := range orders {
			if err := knownStatuses(o); err != nil {
				return fmt.Errorf("invalid snapshot order %s: %w", o.OrderNumber, err)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[ViewBuyer] = make(map[string]*entry, len(data.BuyerOrders))
	s.views[ViewSeller] = make(map[string]*entry, len(data.SellerOrders))
	for _, o := range data.BuyerOrders {
		s.putLocked(ViewBuyer, o)
	}
	for _, o := range data.SellerOrders {
		s.putLocked(ViewSeller, o)
	}
	s.returns = make(map[string]domain.ReturnRequest, len(data.ReturnRequests))
	for _, r := range data.ReturnRequests {
		s.returns[r.ID] = r.Clone()
	}
	s.updateGaugesLocked()

	s.logger.Info("order cache hydrated",
		zap.Int("buyer_orders", len(data.BuyerOrders)),
		zap.Int("seller_orders", len(data.SellerOrders)),
		zap.Int("return_requests", len(data.ReturnRequests)),
	)
	return nil
}

func knownStatuses(o domain.Order) error {
	if _, err := status.ParsePayment(string(o.Payment)); err != nil {
		return err
	}
	_, err := status.ParseShipment(string(o.Shipment))
	return err
}

func (s *State) Get(view View, orderNumber string) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.views[view][orderNumber]
	if !ok {
		return domain.Order{}, false
	}
	return e.order.Clone(), true
}

// List returns the orders of one view matching keep, newest first.
func (s *State) List(view View, keep func(domain.Order) bool) []domain.Order {
	s.mu.RLock()
	out := make([]domain.Order, 0)
	for _, e := range s.views[view] {
		if keep(e.order) {
			out = append(out, e.order.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].OrderNumber < out[j].OrderNumber
	})
	return out
}

// ApplyOptimistic writes next into the view immediately and remembers the
// entry it replaced.
func (s *State) ApplyOptimistic(view View, next domain.Order) Pending {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Pending{view: view, orderNumber: next.OrderNumber}
	if e, ok := s.views[view][next.OrderNumber]; ok {
		p.prev = e.order.Clone()
		p.existed = true
	}
	p.rev = s.putLocked(view, next)
	return p
}

// Commit makes the optimistic entry final and copies its status fields onto
// the matching order in the other view.
func (s *State) Commit(p Pending) {
	s.mu.Lock()
	e, ok := s.views[p.view][p.orderNumber]
	if ok {
		if other, found := s.views[p.view.other()][p.orderNumber]; found {
			propagate(&other.order, e.order)
			s.nextRev++
			other.rev = s.nextRev
		}
	}
	data := s.dataLocked()
	s.mu.Unlock()

	s.save(data)
}

// Rollback restores the entry captured by ApplyOptimistic. A newer
// optimistic write to the same entry wins and is left alone.
func (s *State) Rollback(p Pending) {
	s.mu.Lock()
	e, ok := s.views[p.view][p.orderNumber]
	if ok && e.rev != p.rev {
		s.mu.Unlock()
		s.logger.Warn("rollback skipped, entry changed since optimistic write",
			zap.String("view", string(p.view)), zap.String("order_number", p.orderNumber))
		return
	}
	if p.existed {
		s.views[p.view][p.orderNumber] = &entry{order: p.prev.Clone(), rev: p.rev}
	} else {
		delete(s.views[p.view], p.orderNumber)
	}
	s.updateGaugesLocked()
	data := s.dataLocked()
	s.mu.Unlock()

	metrics.OptimisticRollbacksTotal.Inc()
	s.save(data)
}

// Replace swaps every order of view for which owned is true with fresh.
func (s *State) Replace(view View, owned func(domain.Order) bool, fresh []domain.Order) {
	s.mu.Lock()
	for number, e := range s.views[view] {
		if owned(e.order) {
			delete(s.views[view], number)
		}
	}
	for _, o := range fresh {
		s.putLocked(view, o)
	}
	s.updateGaugesLocked()
	data := s.dataLocked()
	s.mu.Unlock()

	s.save(data)
}

func (s *State) PutReturn(req domain.ReturnRequest) {
	s.mu.Lock()
	s.returns[req.ID] = req.Clone()
	s.updateGaugesLocked()
	data := s.dataLocked()
	s.mu.Unlock()

	s.save(data)
}

// ReplaceReturns swaps the requests for which owned is true with fresh.
func (s *State) ReplaceReturns(owned func(domain.ReturnRequest) bool, fresh []domain.ReturnRequest) {
	s.mu.Lock()
	for id, r := range s.returns {
		if owned(r) {
			delete(s.returns, id)
		}
	}
	for _, r := range fresh {
		s.returns[r.ID] = r.Clone()
	}
	s.updateGaugesLocked()
	data := s.dataLocked()
	s.mu.Unlock()

	s.save(data)
}

func (s *State) Return(id string) (domain.ReturnRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.returns[id]
	if !ok {
		return domain.ReturnRequest{}, false
	}
	return r.Clone(), true
}

// Returns lists requests matching keep, oldest first.
func (s *State) Returns(keep func(domain.ReturnRequest) bool) []domain.ReturnRequest {
	s.mu.RLock()
	out := make([]domain.ReturnRequest, 0)
	for _, r := range s.returns {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *State) putLocked(view View, o domain.Order) uint64 {
	s.nextRev++
	s.views[view][o.OrderNumber] = &entry{order: o.Clone(), rev: s.nextRev}
	s.updateGaugesLocked()
	return s.nextRev
}

func (s *State) dataLocked() snapshot.Data {
	data := snapshot.Data{
		BuyerOrders:    make([]domain.Order, 0, len(s.views[ViewBuyer])),
		SellerOrders:   make([]domain.Order, 0, len(s.views[ViewSeller])),
		ReturnRequests: make([]domain.ReturnRequest, 0, len(s.returns)),
	}
	for _, e := range s.views[ViewBuyer] {
		data.BuyerOrders = append(data.BuyerOrders, e.order.Clone())
	}
	for _, e := range s.views[ViewSeller] {
		data.SellerOrders = append(data.SellerOrders, e.order.Clone())
	}
	for _, r := range s.returns {
		data.ReturnRequests = append(data.ReturnRequests, r.Clone())
	}
	sort.Slice(data.BuyerOrders, func(i, j int) bool { return data.BuyerOrders[i].OrderNumber < data.BuyerOrders[j].OrderNumber })
	sort.Slice(data.SellerOrders, func(i, j int) bool { return data.SellerOrders[i].OrderNumber < data.SellerOrders[j].OrderNumber })
	sort.Slice(data.ReturnRequests, func(i, j int) bool { return data.ReturnRequests[i].ID < data.ReturnRequests[j].ID })
	return data
}

// save is best effort: the ledger, not the snapshot, is the source of truth.
func (s *State) save(data snapshot.Data) {
	if err := s.persister.Save(data); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("snapshot_save").Inc()
		s.logger.Error("failed to persist order cache", zap.Error(err))
	}
}

func (s *State) updateGaugesLocked() {
	metrics.OrderCacheItems.WithLabelValues(string(ViewBuyer)).Set(float64(len(s.views[ViewBuyer])))
	metrics.OrderCacheItems.WithLabelValues(string(ViewSeller)).Set(float64(len(s.views[ViewSeller])))
	metrics.OrderCacheItems.WithLabelValues("returns").Set(float64(len(s.returns)))
}

func propagate(dst *domain.Order, src domain.Order) {
	dst.Status = src.Status
	dst.Payment = src.Payment
	dst.Shipment = src.Shipment
	dst.IsPaid = src.IsPaid
	dst.TrackingNumber = src.TrackingNumber
	dst.DeliveredAt = nil
	if src.DeliveredAt != nil {
		t := *src.DeliveredAt
		dst.DeliveredAt = &t
	}
}
