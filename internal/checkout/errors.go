package checkout

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidPrice       = errors.New("price must not be negative")
	ErrInvalidDiscount    = errors.New("invalid discount")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrMissingSellerInfo  = errors.New("missing seller info")
	ErrLedgerUpdateFailed = errors.New("loyalty ledger update failed")
	ErrPersistence        = errors.New("persistence error")
)

type Step string

const (
	StepValidate Step = "validate"
	StepGroup    Step = "group"
	StepCreate   Step = "create_orders"
	StepStock    Step = "stock"
	StepLoyalty  Step = "loyalty"
	StepCart     Step = "cart_cleanup"
)

// Failure is returned for every checkout error. Committed lists the order
// numbers already written when the step failed; they are not undone. Orders
// holds those of them whose items were written too, ready for the cache.
type Failure struct {
	Step      Step
	Kind      error
	Cause     error
	Committed []string
	Orders    []domain.Order
}

func (f *Failure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "checkout failed at %s: %v", f.Step, f.Kind)
	if f.Cause != nil {
		fmt.Fprintf(&b, ": %v", f.Cause)
	}
	if len(f.Committed) > 0 {
		fmt.Fprintf(&b, " (committed orders: %s)", strings.Join(f.Committed, ", "))
	}
	return b.String()
}

func (f *Failure) Unwrap() []error {
	if f.Cause == nil {
		return []error{f.Kind}
	}
	return []error{f.Kind, f.Cause}
}

// Partial reports whether some orders were committed before the failure.
func (f *Failure) Partial() bool {
	return len(f.Committed) > 0
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrInvalidDiscount):
		return "invalid"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrMissingSellerInfo):
		return "missing_seller"
	case errors.Is(err, ErrLedgerUpdateFailed):
		return "ledger_update_failed"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "error"
	}
}
