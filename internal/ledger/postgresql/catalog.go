package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/ledger"
)

func (l *Ledger) GetStock(ctx context.Context, productID string) (int, error) {
	var stock int
	err := l.db.ExecQueryRow(ctx, "SELECT stock FROM products WHERE id = $1", productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("product %s: %w", productID, ledger.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to read stock of %s: %w", productID, err)
	}
	return stock, nil
}

// SetStock overwrites the stock column with a value the caller computed from
// an earlier read. No version check is made.
func (l *Ledger) SetStock(ctx context.Context, productID string, stock int) error {
	tag, err := l.db.Exec(ctx, "UPDATE products SET stock = $2 WHERE id = $1", productID, stock)
	if err != nil {
		return fmt.Errorf("failed to write stock of %s: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", productID, ledger.ErrNotFound)
	}
	return nil
}

func (l *Ledger) IncrementSalesCount(ctx context.Context, productID string, delta int) error {
	_, err := l.db.Exec(ctx, "UPDATE products SET sales_count = sales_count + $2 WHERE id = $1", productID, delta)
	if err != nil {
		return fmt.Errorf("failed to bump sales count of %s: %w", productID, err)
	}
	return nil
}

func (l *Ledger) GetProductSeller(ctx context.Context, productID string) (string, error) {
	var sellerID *string
	err := l.db.ExecQueryRow(ctx, "SELECT seller_id FROM products WHERE id = $1", productID).Scan(&sellerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("product %s: %w", productID, ledger.ErrNotFound)
		}
		return "", fmt.Errorf("failed to read seller of %s: %w", productID, err)
	}
	if sellerID == nil {
		return "", nil
	}
	return *sellerID, nil
}

func (l *Ledger) GetLoyaltyBalance(ctx context.Context, buyerID string) (int64, error) {
	var balance int64
	err := l.db.ExecQueryRow(ctx, "SELECT bazcoins FROM buyers WHERE id = $1", buyerID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("buyer %s: %w", buyerID, ledger.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to read balance of %s: %w", buyerID, err)
	}
	return balance, nil
}

func (l *Ledger) SetLoyaltyBalance(ctx context.Context, buyerID string, balance int64) error {
	tag, err := l.db.Exec(ctx, "UPDATE buyers SET bazcoins = $2 WHERE id = $1", buyerID, balance)
	if err != nil {
		return fmt.Errorf("failed to write balance of %s: %w", buyerID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("buyer %s: %w", buyerID, ledger.ErrNotFound)
	}
	return nil
}

func (l *Ledger) DeleteCartItems(ctx context.Context, cartID string, productIDs []string) error {
	_, err := l.db.Exec(ctx, "DELETE FROM cart_items WHERE cart_id = $1 AND product_id = ANY($2)", cartID, productIDs)
	if err != nil {
		return fmt.Errorf("failed to delete items from cart %s: %w", cartID, err)
	}
	return nil
}

func (l *Ledger) RecomputeCartTotal(ctx context.Context, cartID string) error {
	_, err := l.db.Exec(ctx, `
        UPDATE carts
        SET total = COALESCE((SELECT SUM(price * quantity) FROM cart_items WHERE cart_id = $1), 0)
        WHERE id = $1
    `, cartID)
	if err != nil {
		return fmt.Errorf("failed to recompute total of cart %s: %w", cartID, err)
	}
	return nil
}
