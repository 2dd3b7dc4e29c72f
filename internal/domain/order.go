package domain

import (
	"time"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/status"
)

type PaymentMethod string

const (
	PaymentCOD     PaymentMethod = "cod"
	PaymentCard    PaymentMethod = "card"
	PaymentEWallet PaymentMethod = "ewallet"
)

// Prepaid methods settle before the seller sees the order.
func (m PaymentMethod) Prepaid() bool {
	return m != PaymentCOD
}

// Variant is either a size/color pair or a generic option name/value.
type Variant struct {
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
	OptionName  string `json:"option_name,omitempty"`
	OptionValue string `json:"option_value,omitempty"`
}

type CartLine struct {
	ProductID   string   `json:"product_id"`
	ProductName string   `json:"product_name"`
	Image       string   `json:"image,omitempty"`
	Price       int64    `json:"price"`
	Quantity    int      `json:"quantity"`
	SellerID    string   `json:"seller_id,omitempty"`
	Variant     *Variant `json:"variant,omitempty"`
}

type Address struct {
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Postal    string `json:"postal"`
}

// OrderItem is frozen at checkout; nothing joins back to the live product.
type OrderItem struct {
	ProductID   string   `json:"product_id"`
	ProductName string   `json:"product_name"`
	Image       string   `json:"image,omitempty"`
	Price       int64    `json:"price"`
	Quantity    int      `json:"quantity"`
	Variant     *Variant `json:"variant,omitempty"`
}

type Order struct {
	ID             string          `json:"id"`
	OrderNumber    string          `json:"order_number"`
	BuyerID        string          `json:"buyer_id"`
	SellerID       string          `json:"seller_id"`
	Items          []OrderItem     `json:"items"`
	Subtotal       int64           `json:"subtotal"`
	ShippingFee    int64           `json:"shipping_fee"`
	Discount       int64           `json:"discount"`
	Total          int64           `json:"total"`
	Status         status.Order    `json:"status"`
	Payment        status.Payment  `json:"payment_status"`
	Shipment       status.Shipment `json:"shipment_status"`
	IsPaid         bool            `json:"is_paid"`
	IsReviewed     bool            `json:"is_reviewed"`
	Address        Address         `json:"address"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	DeliveredAt    *time.Time      `json:"delivered_at,omitempty"`
}

// Recalculate derives subtotal and total from the items.
func (o *Order) Recalculate() {
	var subtotal int64
	for _, it := range o.Items {
		subtotal += it.Price * int64(it.Quantity)
	}
	o.Subtotal = subtotal
	o.Total = subtotal + o.ShippingFee - o.Discount
}

// Clone deep-copies the slices and pointers so a snapshot cannot be mutated
// through the original.
func (o Order) Clone() Order {
	c := o
	if o.Items != nil {
		c.Items = make([]OrderItem, len(o.Items))
		for i, it := range o.Items {
			if it.Variant != nil {
				v := *it.Variant
				it.Variant = &v
			}
			c.Items[i] = it
		}
	}
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		c.DeliveredAt = &t
	}
	return c
}

// StatusUpdate is what the ledger persists when an order moves.
type StatusUpdate struct {
	OrderID        string
	Shipment       status.Shipment
	TrackingNumber string
	DeliveredAt    *time.Time
}
