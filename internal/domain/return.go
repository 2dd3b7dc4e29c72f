package domain

import (
	"time"
)

type ReturnStatus string

const (
	ReturnPendingReview          ReturnStatus = "pending_review"
	ReturnSellerResponseRequired ReturnStatus = "seller_response_required"
	ReturnApproved               ReturnStatus = "approved"
	ReturnRejected               ReturnStatus = "rejected"
	ReturnRefunded               ReturnStatus = "refunded"
)

func (s ReturnStatus) Terminal() bool {
	return s == ReturnRejected || s == ReturnRefunded
}

type ReturnType string

const (
	ReturnForRefund ReturnType = "return_refund"
	RefundOnly      ReturnType = "refund_only"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

type ReturnItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
}

type ReturnHistoryEntry struct {
	Status    ReturnStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Actor     Role         `json:"actor"`
	Note      string       `json:"note,omitempty"`
}

type ReturnRequest struct {
	ID          string               `json:"id"`
	OrderID     string               `json:"order_id"`
	OrderNumber string               `json:"order_number"`
	BuyerID     string               `json:"buyer_id"`
	SellerID    string               `json:"seller_id"`
	Items       []ReturnItem         `json:"items"`
	Reason      string               `json:"reason"`
	Description string               `json:"description,omitempty"`
	Evidence    []string             `json:"evidence,omitempty"`
	Type        ReturnType           `json:"type"`
	Status      ReturnStatus         `json:"status"`
	Amount      int64                `json:"amount"`
	History     []ReturnHistoryEntry `json:"history"`
	CreatedAt   time.Time            `json:"created_at"`
}

// Append adds a history entry and moves the current status with it.
func (r *ReturnRequest) Append(e ReturnHistoryEntry) {
	r.History = append(r.History, e)
	r.Status = e.Status
}

func (r ReturnRequest) Clone() ReturnRequest {
	c := r
	c.Items = cloneSlice(r.Items)
	c.Evidence = cloneSlice(r.Evidence)
	c.History = cloneSlice(r.History)
	return c
}

// cloneSlice keeps nil and empty distinct.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
