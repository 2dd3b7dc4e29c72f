package postgresql

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ecodeclub/ekit/slice"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/status"
)

type orderRow struct {
	ID             string     `db:"id"`
	OrderNumber    string     `db:"order_number"`
	BuyerID        string     `db:"buyer_id"`
	SellerID       string     `db:"seller_id"`
	Subtotal       int64      `db:"subtotal"`
	ShippingFee    int64      `db:"shipping_fee"`
	Discount       int64      `db:"discount"`
	Total          int64      `db:"total"`
	Status         string     `db:"status"`
	PaymentStatus  string     `db:"payment_status"`
	ShipmentStatus string     `db:"shipment_status"`
	IsPaid         bool       `db:"is_paid"`
	IsReviewed     bool       `db:"is_reviewed"`
	Address        []byte     `db:"address"`
	PaymentMethod  string     `db:"payment_method"`
	TrackingNumber *string    `db:"tracking_number"`
	CreatedAt      time.Time  `db:"created_at"`
	DeliveredAt    *time.Time `db:"delivered_at"`
}

type orderItemRow struct {
	OrderID     string `db:"order_id"`
	ProductID   string `db:"product_id"`
	ProductName string `db:"product_name"`
	Image       string `db:"image"`
	Price       int64  `db:"price"`
	Quantity    int    `db:"quantity"`
	Variant     []byte `db:"variant"`
}

type returnRow struct {
	ID          string    `db:"id"`
	OrderID     string    `db:"order_id"`
	OrderNumber string    `db:"order_number"`
	BuyerID     string    `db:"buyer_id"`
	SellerID    string    `db:"seller_id"`
	Items       []byte    `db:"items"`
	Reason      string    `db:"reason"`
	Description string    `db:"description"`
	Evidence    []byte    `db:"evidence"`
	Type        string    `db:"type"`
	Status      string    `db:"status"`
	Amount      int64     `db:"amount"`
	CreatedAt   time.Time `db:"created_at"`
}

type historyRow struct {
	RequestID string    `db:"request_id"`
	Status    string    `db:"status"`
	Actor     string    `db:"actor"`
	Note      string    `db:"note"`
	CreatedAt time.Time `db:"created_at"`
}

func toOrder(r orderRow, items []orderItemRow) (domain.Order, error) {
	payment, err := status.ParsePayment(r.PaymentStatus)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: %w", r.ID, err)
	}
	shipment, err := status.ParseShipment(r.ShipmentStatus)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: %w", r.ID, err)
	}

	o := domain.Order{
		ID:            r.ID,
		OrderNumber:   r.OrderNumber,
		BuyerID:       r.BuyerID,
		SellerID:      r.SellerID,
		Subtotal:      r.Subtotal,
		ShippingFee:   r.ShippingFee,
		Discount:      r.Discount,
		Total:         r.Total,
		Status:        status.Order(r.Status),
		Payment:       payment,
		Shipment:      shipment,
		IsPaid:        r.IsPaid,
		IsReviewed:    r.IsReviewed,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		CreatedAt:     r.CreatedAt,
		DeliveredAt:   r.DeliveredAt,
	}
	if r.TrackingNumber != nil {
		o.TrackingNumber = *r.TrackingNumber
	}
	if len(r.Address) > 0 {
		if err := json.Unmarshal(r.Address, &o.Address); err != nil {
			return domain.Order{}, fmt.Errorf("order %s: failed to decode address: %w", r.ID, err)
		}
	}

	o.Items = make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		item := domain.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Image:       it.Image,
			Price:       it.Price,
			Quantity:    it.Quantity,
		}
		if len(it.Variant) > 0 && string(it.Variant) != "null" {
			item.Variant = &domain.Variant{}
			if err := json.Unmarshal(it.Variant, item.Variant); err != nil {
				return domain.Order{}, fmt.Errorf("order %s: failed to decode variant: %w", r.ID, err)
			}
		}
		o.Items = append(o.Items, item)
	}
	return o, nil
}

func toReturn(r returnRow, history []historyRow) (domain.ReturnRequest, error) {
	req := domain.ReturnRequest{
		ID:          r.ID,
		OrderID:     r.OrderID,
		OrderNumber: r.OrderNumber,
		BuyerID:     r.BuyerID,
		SellerID:    r.SellerID,
		Reason:      r.Reason,
		Description: r.Description,
		Type:        domain.ReturnType(r.Type),
		Status:      domain.ReturnStatus(r.Status),
		Amount:      r.Amount,
		CreatedAt:   r.CreatedAt,
	}
	if err := json.Unmarshal(r.Items, &req.Items); err != nil {
		return domain.ReturnRequest{}, fmt.Errorf("return %s: failed to decode items: %w", r.ID, err)
	}
	if len(r.Evidence) > 0 {
		if err := json.Unmarshal(r.Evidence, &req.Evidence); err != nil {
			return domain.ReturnRequest{}, fmt.Errorf("return %s: failed to decode evidence: %w", r.ID, err)
		}
	}
	req.History = slice.Map(history, func(_ int, h historyRow) domain.ReturnHistoryEntry {
		return domain.ReturnHistoryEntry{
			Status:    domain.ReturnStatus(h.Status),
			Timestamp: h.CreatedAt,
			Actor:     domain.Role(h.Actor),
			Note:      h.Note,
		}
	})
	return req, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
