package status

import (
	"errors"
	"fmt"
)

var ErrUnknownStatus = errors.New("unknown status")

// Payment is the persisted payment_status column.
type Payment string

const (
	PaymentPending           Payment = "pending"
	PaymentPaid              Payment = "paid"
	PaymentFailed            Payment = "failed"
	PaymentRefunded          Payment = "refunded"
	PaymentPartiallyRefunded Payment = "partially_refunded"
)

// Shipment is the persisted shipment_status column.
type Shipment string

const (
	ShipmentWaitingForSeller Shipment = "waiting_for_seller"
	ShipmentProcessing       Shipment = "processing"
	ShipmentReadyToShip      Shipment = "ready_to_ship"
	ShipmentShipped          Shipment = "shipped"
	ShipmentOutForDelivery   Shipment = "out_for_delivery"
	ShipmentDelivered        Shipment = "delivered"
	ShipmentReceived         Shipment = "received"
	ShipmentFailedToDeliver  Shipment = "failed_to_deliver"
	ShipmentReturned         Shipment = "returned"
	ShipmentCancelled        Shipment = "cancelled"
)

// Order is the coarse order.status column kept next to the raw pair.
type Order string

const (
	OrderPending    Order = "pending"
	OrderProcessing Order = "processing"
	OrderShipped    Order = "shipped"
	OrderDelivered  Order = "delivered"
	OrderCancelled  Order = "cancelled"
)

type Seller string

const (
	SellerPending   Seller = "pending"
	SellerToShip    Seller = "to_ship"
	SellerShipped   Seller = "shipped"
	SellerCompleted Seller = "completed"
	SellerCancelled Seller = "cancelled"
)

type Buyer string

const (
	BuyerPending   Buyer = "pending"
	BuyerConfirmed Buyer = "confirmed"
	BuyerShipped   Buyer = "shipped"
	BuyerDelivered Buyer = "delivered"
	BuyerReturned  Buyer = "returned"
	BuyerCancelled Buyer = "cancelled"
	BuyerReviewed  Buyer = "reviewed"
)

type SellerPayment string

const (
	SellerPaymentPending  SellerPayment = "pending"
	SellerPaymentPaid     SellerPayment = "paid"
	SellerPaymentRefunded SellerPayment = "refunded"
)

func ParsePayment(s string) (Payment, error) {
	switch p := Payment(s); p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded, PaymentPartiallyRefunded:
		return p, nil
	}
	return "", fmt.Errorf("payment status %q: %w", s, ErrUnknownStatus)
}

func ParseShipment(s string) (Shipment, error) {
	switch sh := Shipment(s); sh {
	case ShipmentWaitingForSeller, ShipmentProcessing, ShipmentReadyToShip,
		ShipmentShipped, ShipmentOutForDelivery, ShipmentDelivered, ShipmentReceived,
		ShipmentFailedToDeliver, ShipmentReturned, ShipmentCancelled:
		return sh, nil
	}
	return "", fmt.Errorf("shipment status %q: %w", s, ErrUnknownStatus)
}

func ParseSeller(s string) (Seller, error) {
	switch st := Seller(s); st {
	case SellerPending, SellerToShip, SellerShipped, SellerCompleted, SellerCancelled:
		return st, nil
	}
	return "", fmt.Errorf("seller status %q: %w", s, ErrUnknownStatus)
}

// Terminal reports whether no further seller transition is allowed.
func (s Seller) Terminal() bool {
	return s == SellerCompleted || s == SellerCancelled
}

func (b Buyer) Terminal() bool {
	switch b {
	case BuyerDelivered, BuyerReviewed, BuyerReturned, BuyerCancelled:
		return true
	}
	return false
}
