package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/ledger"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/notify"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/status"
)

type Request struct {
	BuyerID       string
	CartID        string
	Lines         []domain.CartLine
	Address       domain.Address
	PaymentMethod domain.PaymentMethod

	// ShippingFee is charged once per seller order.
	ShippingFee int64
	Discount    int64

	LoyaltyUsed   int64
	LoyaltyEarned int64
}

type Result struct {
	BaseNumber string
	Orders     []domain.Order
}

func (r Result) OrderNumbers() []string {
	out := make([]string, len(r.Orders))
	for i, o := range r.Orders {
		out[i] = o.OrderNumber
	}
	return out
}

type Orchestrator struct {
	store    ledger.Store
	notifier notify.Dispatcher
	logger   *zap.Logger

	now   func() time.Time
	randN func(n int) int
}

func New(store ledger.Store, notifier notify.Dispatcher, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		notifier: notifier,
		logger:   logger.Named("checkout"),
		now:      time.Now,
		randN:    rand.IntN,
	}
}

type sellerGroup struct {
	sellerID string
	lines    []domain.CartLine
}

// Checkout splits the cart into one order per seller. The steps are separate
// ledger round trips: a failure after the first order was written leaves the
// earlier orders in place and lists them in the returned *Failure.
func (o *Orchestrator) Checkout(ctx context.Context, req Request) (Result, error) {
	res, err := o.checkout(ctx, req)

	metrics.CheckoutsTotal.WithLabelValues(outcomeOf(err)).Inc()
	if err != nil {
		var f *Failure
		if errors.As(err, &f) && f.Partial() {
			metrics.PartialCheckoutsTotal.Inc()
		}
		o.logger.Warn("checkout failed", zap.String("buyer_id", req.BuyerID), zap.Error(err))
		return Result{}, err
	}

	o.logger.Info("checkout completed",
		zap.String("buyer_id", req.BuyerID),
		zap.String("base_number", res.BaseNumber),
		zap.Int("orders", len(res.Orders)),
	)
	return res, nil
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	return outcome(err)
}

func (o *Orchestrator) checkout(ctx context.Context, req Request) (Result, error) {
	if len(req.Lines) == 0 {
		return Result{}, &Failure{Step: StepValidate, Kind: ErrEmptyCart}
	}
	if req.Discount < 0 || req.ShippingFee < 0 || req.LoyaltyUsed < 0 || req.LoyaltyEarned < 0 {
		return Result{}, &Failure{Step: StepValidate, Kind: ErrInvalidDiscount,
			Cause: errors.New("negative amounts are not allowed")}
	}

	if err := o.validateStock(ctx, req.Lines); err != nil {
		return Result{}, err
	}

	groups, err := o.groupBySeller(ctx, req.Lines)
	if err != nil {
		return Result{}, err
	}

	discounts, err := allocateDiscount(groups, req.ShippingFee, req.Discount)
	if err != nil {
		return Result{}, err
	}

	now := o.now().UTC()
	base := fmt.Sprintf("ORD-%d%06d", now.Year(), o.randN(1_000_000))

	var (
		orders    []domain.Order
		committed []string
	)
	fail := func(step Step, kind, cause error) (Result, error) {
		return Result{}, &Failure{Step: step, Kind: kind, Cause: cause, Committed: committed, Orders: orders}
	}

	for i, g := range groups {
		order := newOrder(req, g, fmt.Sprintf("%s#%d", base, i+1), discounts[i], now)

		id, err := o.store.CreateOrder(ctx, &order)
		if err != nil {
			return fail(StepCreate, ErrPersistence, fmt.Errorf("failed to create order %s: %w", order.OrderNumber, err))
		}
		order.ID = id
		committed = append(committed, order.OrderNumber)

		if err := o.store.CreateOrderItems(ctx, id, order.Items); err != nil {
			return fail(StepCreate, ErrPersistence, fmt.Errorf("failed to create items for %s: %w", order.OrderNumber, err))
		}
		orders = append(orders, order)
		metrics.OrdersCreatedTotal.Inc()
	}

	for _, g := range groups {
		for _, line := range g.lines {
			if err := o.adjustStock(ctx, line); err != nil {
				return fail(StepStock, ErrPersistence, err)
			}
		}
	}

	if req.LoyaltyUsed != 0 || req.LoyaltyEarned != 0 {
		if err := o.updateLoyalty(ctx, req.BuyerID, req.LoyaltyUsed, req.LoyaltyEarned); err != nil {
			return fail(StepLoyalty, ErrLedgerUpdateFailed, err)
		}
	}

	if req.CartID != "" {
		if err := o.clearCart(ctx, req.CartID, req.Lines); err != nil {
			return fail(StepCart, ErrPersistence, err)
		}
	}

	for _, order := range orders {
		o.notifier.NotifySellerNewOrder(ctx, order)
		o.notifier.NotifyBuyerOrderStatus(ctx, order, "placed")
	}

	return Result{BaseNumber: base, Orders: orders}, nil
}

// validateStock skips lines whose product the ledger does not know.
func (o *Orchestrator) validateStock(ctx context.Context, lines []domain.CartLine) error {
	for _, line := range lines {
		if line.Quantity < 1 {
			return &Failure{Step: StepValidate, Kind: ErrInvalidQuantity,
				Cause: fmt.Errorf("product %s: quantity %d", line.ProductID, line.Quantity)}
		}
		if line.Price < 0 {
			return &Failure{Step: StepValidate, Kind: ErrInvalidPrice,
				Cause: fmt.Errorf("product %s: price %d", line.ProductID, line.Price)}
		}
		stock, err := o.store.GetStock(ctx, line.ProductID)
		if errors.Is(err, ledger.ErrNotFound) {
			o.logger.Debug("stock unknown, trusting cart", zap.String("product_id", line.ProductID))
			continue
		}
		if err != nil {
			return &Failure{Step: StepValidate, Kind: ErrPersistence,
				Cause: fmt.Errorf("failed to read stock for %s: %w", line.ProductID, err)}
		}
		if stock < line.Quantity {
			return &Failure{Step: StepValidate, Kind: ErrInsufficientStock,
				Cause: fmt.Errorf("product %s: have %d, want %d", line.ProductID, stock, line.Quantity)}
		}
	}
	return nil
}

// groupBySeller keeps sellers in order of first appearance in the cart.
func (o *Orchestrator) groupBySeller(ctx context.Context, lines []domain.CartLine) ([]sellerGroup, error) {
	var groups []sellerGroup
	index := make(map[string]int)

	for _, line := range lines {
		sellerID := line.SellerID
		if sellerID == "" {
			resolved, err := o.store.GetProductSeller(ctx, line.ProductID)
			switch {
			case errors.Is(err, ledger.ErrNotFound):
			case err != nil:
				return nil, &Failure{Step: StepGroup, Kind: ErrPersistence,
					Cause: fmt.Errorf("failed to look up seller of %s: %w", line.ProductID, err)}
			default:
				sellerID = resolved
			}
		}
		if sellerID == "" {
			return nil, &Failure{Step: StepGroup, Kind: ErrMissingSellerInfo,
				Cause: fmt.Errorf("product %s", line.ProductID)}
		}

		i, ok := index[sellerID]
		if !ok {
			i = len(groups)
			index[sellerID] = i
			groups = append(groups, sellerGroup{sellerID: sellerID})
		}
		groups[i].lines = append(groups[i].lines, line)
	}
	return groups, nil
}

// allocateDiscount spreads the checkout discount over the seller orders in
// grouping order. No order absorbs more than its own subtotal plus shipping.
func allocateDiscount(groups []sellerGroup, shipping, discount int64) ([]int64, error) {
	out := make([]int64, len(groups))
	remaining := discount
	for i, g := range groups {
		gross := subtotal(g.lines) + shipping
		take := min(remaining, gross)
		out[i] = take
		remaining -= take
	}
	if remaining > 0 {
		return nil, &Failure{Step: StepValidate, Kind: ErrInvalidDiscount,
			Cause: fmt.Errorf("discount %d exceeds order total by %d", discount, remaining)}
	}
	return out, nil
}

func subtotal(lines []domain.CartLine) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Price * int64(l.Quantity)
	}
	return sum
}

func newOrder(req Request, g sellerGroup, number string, discount int64, now time.Time) domain.Order {
	order := domain.Order{
		OrderNumber:   number,
		BuyerID:       req.BuyerID,
		SellerID:      g.sellerID,
		Items:         make([]domain.OrderItem, 0, len(g.lines)),
		ShippingFee:   req.ShippingFee,
		Discount:      discount,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now,
	}
	for _, line := range g.lines {
		item := domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Image:       line.Image,
			Price:       line.Price,
			Quantity:    line.Quantity,
		}
		if line.Variant != nil {
			v := *line.Variant
			item.Variant = &v
		}
		order.Items = append(order.Items, item)
	}

	if req.PaymentMethod.Prepaid() {
		order.Payment = status.PaymentPaid
		order.Shipment = status.ShipmentProcessing
		order.IsPaid = true
	} else {
		order.Payment = status.PaymentPending
		order.Shipment = status.ShipmentWaitingForSeller
	}
	order.Status = status.OrderOf(order.Shipment)
	order.Recalculate()
	return order
}

// adjustStock reads and writes back the stock level. Two checkouts racing on
// the same product can lose one decrement.
func (o *Orchestrator) adjustStock(ctx context.Context, line domain.CartLine) error {
	stock, err := o.store.GetStock(ctx, line.ProductID)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read stock for %s: %w", line.ProductID, err)
	}
	if err := o.store.SetStock(ctx, line.ProductID, stock-line.Quantity); err != nil {
		return fmt.Errorf("failed to set stock for %s: %w", line.ProductID, err)
	}
	if err := o.store.IncrementSalesCount(ctx, line.ProductID, line.Quantity); err != nil {
		return fmt.Errorf("failed to increment sales for %s: %w", line.ProductID, err)
	}
	return nil
}

// updateLoyalty applies spend and earn from a single read of the balance.
func (o *Orchestrator) updateLoyalty(ctx context.Context, buyerID string, used, earned int64) error {
	balance, err := o.store.GetLoyaltyBalance(ctx, buyerID)
	if err != nil {
		return fmt.Errorf("failed to read balance of %s: %w", buyerID, err)
	}
	next := balance - used + earned
	if next < 0 {
		return fmt.Errorf("balance of %s would become %d", buyerID, next)
	}
	if err := o.store.SetLoyaltyBalance(ctx, buyerID, next); err != nil {
		return fmt.Errorf("failed to write balance of %s: %w", buyerID, err)
	}
	return nil
}

func (o *Orchestrator) clearCart(ctx context.Context, cartID string, lines []domain.CartLine) error {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	if err := o.store.DeleteCartItems(ctx, cartID, ids); err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	if err := o.store.RecomputeCartTotal(ctx, cartID); err != nil {
		return fmt.Errorf("failed to recompute cart total: %w", err)
	}
	return nil
}
