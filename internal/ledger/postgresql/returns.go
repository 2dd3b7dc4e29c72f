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
)

// CreateReturnRequest inserts the request together with the history it was
// opened with.
func (l *Ledger) CreateReturnRequest(ctx context.Context, req *domain.ReturnRequest) (string, error) {
	items, err := json.Marshal(req.Items)
	if err != nil {
		return "", fmt.Errorf("failed to encode return items: %w", err)
	}
	evidence, err := json.Marshal(req.Evidence)
	if err != nil {
		return "", fmt.Errorf("failed to encode evidence: %w", err)
	}

	id := uuid.New().String()
	err = db.InTx(ctx, l.db, func(tx db.Tx) error {
		if _, err := tx.Exec(ctx, `
            INSERT INTO return_requests (
                id, order_id, order_number, buyer_id, seller_id, items, reason, description,
                evidence, type, status, amount, created_at
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        `, id, req.OrderID, req.OrderNumber, req.BuyerID, req.SellerID, string(items), req.Reason,
			req.Description, string(evidence), string(req.Type), string(req.Status), req.Amount, req.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert return request: %w", err)
		}
		for _, h := range req.History {
			if err := insertHistory(ctx, tx, id, h); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// AppendReturnHistory adds one entry and moves the request's status column in
// the same transaction, so the column always equals the newest entry.
func (l *Ledger) AppendReturnHistory(ctx context.Context, requestID string, entry domain.ReturnHistoryEntry) error {
	return db.InTx(ctx, l.db, func(tx db.Tx) error {
		tag, err := tx.Exec(ctx, "UPDATE return_requests SET status = $2 WHERE id = $1", requestID, string(entry.Status))
		if err != nil {
			return fmt.Errorf("failed to update return %s status: %w", requestID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("return %s: %w", requestID, ledger.ErrNotFound)
		}
		return insertHistory(ctx, tx, requestID, entry)
	})
}

func insertHistory(ctx context.Context, tx db.Tx, requestID string, h domain.ReturnHistoryEntry) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO return_history (request_id, status, actor, note, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, requestID, string(h.Status), string(h.Actor), h.Note, h.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append history to return %s: %w", requestID, err)
	}
	return nil
}

func (l *Ledger) ReturnRequestsByBuyer(ctx context.Context, buyerID string) ([]domain.ReturnRequest, error) {
	return l.returnsWhere(ctx, "buyer_id", buyerID)
}

func (l *Ledger) ReturnRequestsBySeller(ctx context.Context, sellerID string) ([]domain.ReturnRequest, error) {
	return l.returnsWhere(ctx, "seller_id", sellerID)
}

func (l *Ledger) returnsWhere(ctx context.Context, column, id string) ([]domain.ReturnRequest, error) {
	var rows []returnRow
	if err := l.db.Select(ctx, &rows, `
        SELECT id, order_id, order_number, buyer_id, seller_id, items, reason, description,
               evidence, type, status, amount, created_at
        FROM return_requests
        WHERE `+column+` = $1
        ORDER BY created_at DESC
    `, id); err != nil {
		return nil, fmt.Errorf("failed to select returns by %s: %w", column, err)
	}
	if len(rows) == 0 {
		return []domain.ReturnRequest{}, nil
	}

	ids := slice.Map(rows, func(_ int, r returnRow) string { return r.ID })
	var history []historyRow
	if err := l.db.Select(ctx, &history, `
        SELECT request_id, status, actor, note, created_at
        FROM return_history
        WHERE request_id = ANY($1)
        ORDER BY created_at ASC, id ASC
    `, ids); err != nil {
		return nil, fmt.Errorf("failed to select return history: %w", err)
	}

	byRequest := make(map[string][]historyRow, len(rows))
	for _, h := range history {
		byRequest[h.RequestID] = append(byRequest[h.RequestID], h)
	}

	out := make([]domain.ReturnRequest, 0, len(rows))
	for _, r := range rows {
		req, err := toReturn(r, byRequest[r.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}
