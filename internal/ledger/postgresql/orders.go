package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ecodeclub/ekit/slice"
	"github.com/google/uuid"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/ledger"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/status"
)

var _ ledger.Store = (*Ledger)(nil)

const orderColumns = `id, order_number, buyer_id, seller_id, subtotal, shipping_fee, discount, total,
    status, payment_status, shipment_status, is_paid, is_reviewed, address, payment_method,
    tracking_number, created_at, delivered_at`

// Ledger is the order ledger backed by postgres. Each method is a separate
// round trip; callers compose them without a surrounding transaction.
type Ledger struct {
	db db.DB
}

func New(database db.DB) *Ledger {
	return &Ledger{db: database}
}

func (l *Ledger) CreateOrder(ctx context.Context, order *domain.Order) (string, error) {
	address, err := json.Marshal(order.Address)
	if err != nil {
		return "", fmt.Errorf("failed to encode address: %w", err)
	}

	id := uuid.New().String()
	_, err = l.db.Exec(ctx, `
        INSERT INTO orders (
            id, order_number, buyer_id, seller_id, subtotal, shipping_fee, discount, total,
            status, payment_status, shipment_status, is_paid, address, payment_method, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `, id, order.OrderNumber, order.BuyerID, order.SellerID, order.Subtotal, order.ShippingFee,
		order.Discount, order.Total, string(order.Status), string(order.Payment), string(order.Shipment),
		order.IsPaid, string(address), string(order.PaymentMethod), order.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert order %s: %w", order.OrderNumber, err)
	}
	return id, nil
}

func (l *Ledger) CreateOrderItems(ctx context.Context, orderID string, items []domain.OrderItem) error {
	return db.InTx(ctx, l.db, func(tx db.Tx) error {
		for _, it := range items {
			var variant *string
			if it.Variant != nil {
				raw, err := json.Marshal(it.Variant)
				if err != nil {
					return fmt.Errorf("failed to encode variant: %w", err)
				}
				s := string(raw)
				variant = &s
			}
			if _, err := tx.Exec(ctx, `
                INSERT INTO order_items (
                    order_id, product_id, product_name, image, price, quantity, variant
                ) VALUES ($1, $2, $3, $4, $5, $6, $7)
            `, orderID, it.ProductID, it.ProductName, it.Image, it.Price, it.Quantity, variant); err != nil {
				return fmt.Errorf("failed to insert item %s of order %s: %w", it.ProductID, orderID, err)
			}
		}
		return nil
	})
}

func (l *Ledger) UpdateOrderStatus(ctx context.Context, upd domain.StatusUpdate) error {
	tag, err := l.db.Exec(ctx, `
        UPDATE orders
        SET
            status = $2,
            shipment_status = $3,
            tracking_number = COALESCE($4, tracking_number),
            delivered_at = COALESCE($5, delivered_at)
        WHERE id = $1
    `, upd.OrderID, string(status.OrderOf(upd.Shipment)), string(upd.Shipment), nullable(upd.TrackingNumber), upd.DeliveredAt)
	if err != nil {
		return fmt.Errorf("failed to update order %s status: %w", upd.OrderID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", upd.OrderID, ledger.ErrNotFound)
	}
	return nil
}

func (l *Ledger) OrdersByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return l.ordersWhere(ctx, "buyer_id", buyerID)
}

func (l *Ledger) OrdersBySeller(ctx context.Context, sellerID string) ([]domain.Order, error) {
	return l.ordersWhere(ctx, "seller_id", sellerID)
}

// ordersWhere loads orders and their items in two queries. column is always
// one of the fixed owner columns above.
func (l *Ledger) ordersWhere(ctx context.Context, column, id string) ([]domain.Order, error) {
	var rows []orderRow
	if err := l.db.Select(ctx, &rows,
		"SELECT "+orderColumns+" FROM orders WHERE "+column+" = $1 ORDER BY created_at DESC", id); err != nil {
		return nil, fmt.Errorf("failed to select orders by %s: %w", column, err)
	}
	if len(rows) == 0 {
		return []domain.Order{}, nil
	}

	ids := slice.Map(rows, func(_ int, r orderRow) string { return r.ID })
	var items []orderItemRow
	if err := l.db.Select(ctx, &items, `
        SELECT order_id, product_id, product_name, image, price, quantity, variant
        FROM order_items
        WHERE order_id = ANY($1)
        ORDER BY id ASC
    `, ids); err != nil {
		return nil, fmt.Errorf("failed to select order items: %w", err)
	}

	byOrder := make(map[string][]orderItemRow, len(rows))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, r := range rows {
		o, err := toOrder(r, byOrder[r.ID])
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
