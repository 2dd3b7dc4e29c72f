package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/snapshot"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/status"
)

type memPersister struct {
	mu      sync.Mutex
	data    snapshot.Data
	saves   int
	saveErr error
}

func (p *memPersister) Load() (snapshot.Data, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data, nil
}

func (p *memPersister) Save(data snapshot.Data) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	if p.saveErr != nil {
		return p.saveErr
	}
	p.data = data
	return nil
}

func sampleOrder() domain.Order {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return domain.Order{
		ID:          "order-1",
		OrderNumber: "ORD-2025000001#1",
		BuyerID:     "buyer-1",
		SellerID:    "seller-A",
		Items: []domain.OrderItem{
			{ProductID: "p1", ProductName: "Shirt", Price: 100, Quantity: 2, Variant: &domain.Variant{Size: "L"}},
		},
		Subtotal:      200,
		Total:         200,
		Status:        status.OrderPending,
		Payment:       status.PaymentPending,
		Shipment:      status.ShipmentWaitingForSeller,
		PaymentMethod: domain.PaymentCOD,
		CreatedAt:     created,
	}
}

func TestState_RollbackRestoresEntry(t *testing.T) {
	state := NewState(&memPersister{}, zap.NewNop())
	before := sampleOrder()
	state.Commit(state.ApplyOptimistic(ViewSeller, before))

	next := before.Clone()
	next.Shipment = status.ShipmentShipped
	next.Status = status.OrderShipped
	next.TrackingNumber = "TRK1"
	next.Items[0].Variant.Size = "XL"

	pending := state.ApplyOptimistic(ViewSeller, next)
	got, _ := state.Get(ViewSeller, before.OrderNumber)
	assert.Equal(t, status.ShipmentShipped, got.Shipment)

	state.Rollback(pending)
	after, ok := state.Get(ViewSeller, before.OrderNumber)
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestState_RollbackOfNewEntryRemovesIt(t *testing.T) {
	state := NewState(&memPersister{}, zap.NewNop())
	pending := state.ApplyOptimistic(ViewBuyer, sampleOrder())
	state.Rollback(pending)

	_, ok := state.Get(ViewBuyer, sampleOrder().OrderNumber)
	assert.False(t, ok)
}

func TestState_StaleRollbackIsSkipped(t *testing.T) {
	state := NewState(&memPersister{}, zap.NewNop())
	base := sampleOrder()
	state.Commit(state.ApplyOptimistic(ViewSeller, base))

	first := base.Clone()
	first.Shipment = status.ShipmentProcessing
	p1 := state.ApplyOptimistic(ViewSeller, first)

	second := base.Clone()
	second.Shipment = status.ShipmentCancelled
	state.ApplyOptimistic(ViewSeller, second)

	state.Rollback(p1)
	got, _ := state.Get(ViewSeller, base.OrderNumber)
	assert.Equal(t, status.ShipmentCancelled, got.Shipment)
}

func TestState_CommitPropagatesToOtherView(t *testing.T) {
	persister := &memPersister{}
	state := NewState(persister, zap.NewNop())
	o := sampleOrder()
	state.Commit(state.ApplyOptimistic(ViewBuyer, o))
	state.Commit(state.ApplyOptimistic(ViewSeller, o))

	delivered := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	next := o.Clone()
	next.Shipment = status.ShipmentDelivered
	next.Status = status.OrderDelivered
	next.DeliveredAt = &delivered
	state.Commit(state.ApplyOptimistic(ViewSeller, next))

	buyer, ok := state.Get(ViewBuyer, o.OrderNumber)
	require.True(t, ok)
	assert.Equal(t, status.ShipmentDelivered, buyer.Shipment)
	assert.Equal(t, status.OrderDelivered, buyer.Status)
	require.NotNil(t, buyer.DeliveredAt)
	assert.Equal(t, delivered, *buyer.DeliveredAt)

	require.Len(t, persister.data.BuyerOrders, 1)
	assert.Equal(t, status.ShipmentDelivered, persister.data.BuyerOrders[0].Shipment)
}

func TestState_Hydrate(t *testing.T) {
	o := sampleOrder()
	persister := &memPersister{data: snapshot.Data{
		BuyerOrders:    []domain.Order{o},
		ReturnRequests: []domain.ReturnRequest{{ID: "ret-1", BuyerID: "buyer-1"}},
	}}
	state := NewState(persister, zap.NewNop())
	require.NoError(t, state.Hydrate())

	got, ok := state.Get(ViewBuyer, o.OrderNumber)
	require.True(t, ok)
	assert.Equal(t, o, got)
	_, ok = state.Get(ViewSeller, o.OrderNumber)
	assert.False(t, ok)

	ret, ok := state.Return("ret-1")
	require.True(t, ok)
	assert.Equal(t, "buyer-1", ret.BuyerID)
}

func TestState_HydrateRefusesUnknownStatus(t *testing.T) {
	good := sampleOrder()
	tests := []struct {
		name   string
		mutate func(o *domain.Order)
		seller bool
	}{
		{name: "shipment in buyer view", mutate: func(o *domain.Order) { o.Shipment = "in_transit" }},
		{name: "payment in seller view", mutate: func(o *domain.Order) { o.Payment = "chargeback" }, seller: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := sampleOrder()
			bad.OrderNumber = "ORD-2025000009#1"
			tt.mutate(&bad)
			data := snapshot.Data{BuyerOrders: []domain.Order{good}}
			if tt.seller {
				data.SellerOrders = []domain.Order{bad}
			} else {
				data.BuyerOrders = append(data.BuyerOrders, bad)
			}

			state := NewState(&memPersister{data: data}, zap.NewNop())
			err := state.Hydrate()
			assert.ErrorIs(t, err, status.ErrUnknownStatus)
			assert.ErrorContains(t, err, bad.OrderNumber)

			_, ok := state.Get(ViewBuyer, good.OrderNumber)
			assert.False(t, ok)
			assert.Empty(t, state.List(ViewBuyer, func(domain.Order) bool { return true }))
		})
	}
}

func TestState_SaveFailureIsNotFatal(t *testing.T) {
	persister := &memPersister{saveErr: errors.New("disk full")}
	state := NewState(persister, zap.NewNop())

	assert.NotPanics(t, func() {
		state.Commit(state.ApplyOptimistic(ViewBuyer, sampleOrder()))
	})
	_, ok := state.Get(ViewBuyer, sampleOrder().OrderNumber)
	assert.True(t, ok)
	assert.Equal(t, 1, persister.saves)
}

func TestState_Replace(t *testing.T) {
	state := NewState(&memPersister{}, zap.NewNop())
	mine := sampleOrder()
	theirs := sampleOrder()
	theirs.OrderNumber = "ORD-2025000002#1"
	theirs.BuyerID = "buyer-2"
	state.Commit(state.ApplyOptimistic(ViewBuyer, mine))
	state.Commit(state.ApplyOptimistic(ViewBuyer, theirs))

	fresh := sampleOrder()
	fresh.OrderNumber = "ORD-2025000003#1"
	state.Replace(ViewBuyer, func(o domain.Order) bool { return o.BuyerID == "buyer-1" }, []domain.Order{fresh})

	_, ok := state.Get(ViewBuyer, mine.OrderNumber)
	assert.False(t, ok)
	_, ok = state.Get(ViewBuyer, theirs.OrderNumber)
	assert.True(t, ok)
	_, ok = state.Get(ViewBuyer, fresh.OrderNumber)
	assert.True(t, ok)
}

func TestState_ListNewestFirst(t *testing.T) {
	state := NewState(&memPersister{}, zap.NewNop())
	older := sampleOrder()
	newer := sampleOrder()
	newer.OrderNumber = "ORD-2025000009#1"
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	state.Commit(state.ApplyOptimistic(ViewBuyer, older))
	state.Commit(state.ApplyOptimistic(ViewBuyer, newer))

	list := state.List(ViewBuyer, func(domain.Order) bool { return true })
	require.Len(t, list, 2)
	assert.Equal(t, newer.OrderNumber, list[0].OrderNumber)
}
