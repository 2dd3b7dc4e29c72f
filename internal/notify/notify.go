//go:generate mockgen -source ./notify.go -destination=./mocks/notify.go -package=mock_notify
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
)

type Kind string

const (
	KindBuyerOrderStatus    Kind = "buyer_order_status"
	KindSellerNewOrder      Kind = "seller_new_order"
	KindSellerReturnRequest Kind = "seller_return_request"
	KindBuyerReturnStatus   Kind = "buyer_return_status"
)

type Event struct {
	Kind        Kind      `json:"kind"`
	RecipientID string    `json:"recipient_id"`
	OrderID     string    `json:"order_id,omitempty"`
	OrderNumber string    `json:"order_number,omitempty"`
	ReturnID    string    `json:"return_id,omitempty"`
	Status      string    `json:"status"`
	Total       int64     `json:"total,omitempty"`
	At          time.Time `json:"at"`
}

// Dispatcher delivers user-facing notifications. None of the methods report
// failure; callers must not depend on delivery.
type Dispatcher interface {
	NotifyBuyerOrderStatus(ctx context.Context, order domain.Order, status string)
	NotifySellerNewOrder(ctx context.Context, order domain.Order)
	NotifySellerReturnRequest(ctx context.Context, req domain.ReturnRequest)
	NotifyBuyerReturnStatus(ctx context.Context, req domain.ReturnRequest)
}

// Publisher is the transport a Notifier writes serialized events to: a kafka
// producer or the postgres outbox.
type Publisher interface {
	SendMessage(ctx context.Context, topic string, key []byte, value []byte) error
}

type Launcher interface {
	Go(ctx context.Context, kind string, fn func(ctx context.Context) error)
}

type Notifier struct {
	launcher  Launcher
	publisher Publisher
	topic     string
	now       func() time.Time
}

func NewNotifier(launcher Launcher, publisher Publisher, topic string) *Notifier {
	return &Notifier{
		launcher:  launcher,
		publisher: publisher,
		topic:     topic,
		now:       time.Now,
	}
}

func (n *Notifier) NotifyBuyerOrderStatus(ctx context.Context, order domain.Order, status string) {
	n.emit(ctx, Event{
		Kind:        KindBuyerOrderStatus,
		RecipientID: order.BuyerID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      status,
		Total:       order.Total,
	})
}

func (n *Notifier) NotifySellerNewOrder(ctx context.Context, order domain.Order) {
	n.emit(ctx, Event{
		Kind:        KindSellerNewOrder,
		RecipientID: order.SellerID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Total:       order.Total,
	})
}

func (n *Notifier) NotifySellerReturnRequest(ctx context.Context, req domain.ReturnRequest) {
	n.emit(ctx, Event{
		Kind:        KindSellerReturnRequest,
		RecipientID: req.SellerID,
		OrderID:     req.OrderID,
		OrderNumber: req.OrderNumber,
		ReturnID:    req.ID,
		Status:      string(req.Status),
		Total:       req.Amount,
	})
}

func (n *Notifier) NotifyBuyerReturnStatus(ctx context.Context, req domain.ReturnRequest) {
	n.emit(ctx, Event{
		Kind:        KindBuyerReturnStatus,
		RecipientID: req.BuyerID,
		OrderID:     req.OrderID,
		OrderNumber: req.OrderNumber,
		ReturnID:    req.ID,
		Status:      string(req.Status),
		Total:       req.Amount,
	})
}

func (n *Notifier) emit(ctx context.Context, ev Event) {
	ev.At = n.now().UTC()
	n.launcher.Go(ctx, string(ev.Kind), func(ctx context.Context) error {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to encode %s event: %w", ev.Kind, err)
		}
		return n.publisher.SendMessage(ctx, n.topic, []byte(ev.RecipientID), payload)
	})
}
