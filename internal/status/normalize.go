package status

// shipmentSignal reports which side of the lifecycle a shipment status puts the
// order in. waiting_for_seller carries no signal and defers to payment.
type shipmentSignal int

const (
	signalNone shipmentSignal = iota
	signalPreparing
	signalInTransit
	signalArrived
	signalReturned
	signalFailed
)

func signalOf(s Shipment) shipmentSignal {
	switch s {
	case ShipmentWaitingForSeller:
		return signalNone
	case ShipmentProcessing, ShipmentReadyToShip:
		return signalPreparing
	case ShipmentShipped, ShipmentOutForDelivery:
		return signalInTransit
	case ShipmentDelivered, ShipmentReceived:
		return signalArrived
	case ShipmentReturned:
		return signalReturned
	case ShipmentFailedToDeliver, ShipmentCancelled:
		return signalFailed
	}
	panic("status: unmapped shipment status " + string(s))
}

func refunded(p Payment) bool {
	switch p {
	case PaymentRefunded, PaymentPartiallyRefunded:
		return true
	case PaymentPending, PaymentPaid, PaymentFailed:
		return false
	}
	panic("status: unmapped payment status " + string(p))
}

// SellerView projects a persisted pair onto the seller dashboard vocabulary.
func SellerView(p Payment, s Shipment) Seller {
	switch signalOf(s) {
	case signalArrived:
		return SellerCompleted
	case signalInTransit:
		return SellerShipped
	case signalPreparing:
		return SellerToShip
	case signalReturned, signalFailed:
		return SellerCancelled
	case signalNone:
	}
	if refunded(p) {
		return SellerCancelled
	}
	return SellerPending
}

// BuyerView projects a persisted pair onto the buyer vocabulary. Buyers see
// "confirmed" where sellers see "to_ship", and a returned parcel stays
// "returned" instead of collapsing into cancelled.
func BuyerView(p Payment, s Shipment) Buyer {
	switch signalOf(s) {
	case signalArrived:
		return BuyerDelivered
	case signalInTransit:
		return BuyerShipped
	case signalPreparing:
		return BuyerConfirmed
	case signalReturned:
		return BuyerReturned
	case signalFailed:
		return BuyerCancelled
	case signalNone:
	}
	if refunded(p) {
		return BuyerCancelled
	}
	return BuyerPending
}

// Reviewed upgrades delivered to reviewed once the buyer has left a review.
func (b Buyer) Reviewed(isReviewed bool) Buyer {
	if b == BuyerDelivered && isReviewed {
		return BuyerReviewed
	}
	return b
}

func SellerPaymentView(p Payment) SellerPayment {
	switch p {
	case PaymentPaid:
		return SellerPaymentPaid
	case PaymentRefunded, PaymentPartiallyRefunded:
		return SellerPaymentRefunded
	case PaymentPending, PaymentFailed:
		return SellerPaymentPending
	}
	panic("status: unmapped payment status " + string(p))
}

// Backend translates a seller action into the normalized write vocabulary.
// It is not the inverse of SellerView: ready_to_ship, out_for_delivery,
// received, returned and failed_to_deliver are never produced here.
func Backend(s Seller) Shipment {
	switch s {
	case SellerPending:
		return ShipmentWaitingForSeller
	case SellerToShip:
		return ShipmentProcessing
	case SellerShipped:
		return ShipmentShipped
	case SellerCompleted:
		return ShipmentDelivered
	case SellerCancelled:
		return ShipmentCancelled
	}
	panic("status: unmapped seller status " + string(s))
}

// OrderOf derives the coarse order.status column from a shipment status.
func OrderOf(s Shipment) Order {
	switch signalOf(s) {
	case signalNone:
		return OrderPending
	case signalPreparing:
		return OrderProcessing
	case signalInTransit:
		return OrderShipped
	case signalArrived:
		return OrderDelivered
	case signalReturned, signalFailed:
		return OrderCancelled
	}
	panic("status: unmapped shipment status " + string(s))
}
