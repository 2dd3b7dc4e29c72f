//go:generate mockgen -source ./ledger.go -destination=./mocks/ledger.go -package=mock_ledger
package ledger

import (
	"context"
	"errors"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
)

var ErrNotFound = errors.New("not found")

// Store is the durable order ledger. Every call is its own round trip; there is
// no cross-call transaction.
type Store interface {
	CreateOrder(ctx context.Context, order *domain.Order) (string, error)
	CreateOrderItems(ctx context.Context, orderID string, items []domain.OrderItem) error
	UpdateOrderStatus(ctx context.Context, upd domain.StatusUpdate) error
	OrdersByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	OrdersBySeller(ctx context.Context, sellerID string) ([]domain.Order, error)

	GetStock(ctx context.Context, productID string) (int, error)
	SetStock(ctx context.Context, productID string, stock int) error
	IncrementSalesCount(ctx context.Context, productID string, delta int) error
	GetProductSeller(ctx context.Context, productID string) (string, error)

	GetLoyaltyBalance(ctx context.Context, buyerID string) (int64, error)
	SetLoyaltyBalance(ctx context.Context, buyerID string, balance int64) error

	DeleteCartItems(ctx context.Context, cartID string, productIDs []string) error
	RecomputeCartTotal(ctx context.Context, cartID string) error

	CreateReturnRequest(ctx context.Context, req *domain.ReturnRequest) (string, error)
	AppendReturnHistory(ctx context.Context, requestID string, entry domain.ReturnHistoryEntry) error
	ReturnRequestsByBuyer(ctx context.Context, buyerID string) ([]domain.ReturnRequest, error)
	ReturnRequestsBySeller(ctx context.Context, sellerID string) ([]domain.ReturnRequest, error)
}
