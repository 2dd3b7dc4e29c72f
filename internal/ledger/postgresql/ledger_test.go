package postgresql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_db "gitlab.ozon.dev/pupkingeorgij/orderflow/internal/db/mocks"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/ledger"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/status"
)

type fakeRow struct {
	val interface{}
	err error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	switch d := dest[0].(type) {
	case *int:
		*d = r.val.(int)
	case *int64:
		*d = r.val.(int64)
	case **string:
		s := r.val.(string)
		*d = &s
	}
	return nil
}

func TestLedger_CreateOrder(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)
		l := New(mockDB)

		order := &domain.Order{
			OrderNumber:   "ORD-2025123456#1",
			BuyerID:       "buyer-1",
			SellerID:      "seller-A",
			Subtotal:      200,
			Total:         200,
			Status:        status.OrderPending,
			Payment:       status.PaymentPending,
			Shipment:      status.ShipmentWaitingForSeller,
			PaymentMethod: domain.PaymentCOD,
			CreatedAt:     created,
		}

		mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Eq(order.OrderNumber), gomock.Eq("buyer-1"), gomock.Eq("seller-A"),
			gomock.Eq(int64(200)), gomock.Eq(int64(0)), gomock.Eq(int64(0)), gomock.Eq(int64(200)),
			gomock.Eq("pending"), gomock.Eq("pending"), gomock.Eq("waiting_for_seller"),
			gomock.Eq(false), gomock.Any(), gomock.Eq("cod"), gomock.Eq(created),
		).Return(pgconn.CommandTag("INSERT 0 1"), nil)

		id, err := l.CreateOrder(ctx, order)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)
		l := New(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, expectedErr)

		_, err := l.CreateOrder(ctx, &domain.Order{OrderNumber: "ORD-1"})
		assert.ErrorIs(t, err, expectedErr)
		assert.Contains(t, err.Error(), "failed to insert order ORD-1")
	})
}

func TestLedger_CreateOrderItems(t *testing.T) {
	ctx := context.Background()
	items := []domain.OrderItem{
		{ProductID: "p1", ProductName: "Shirt", Price: 100, Quantity: 2, Variant: &domain.Variant{Size: "M"}},
		{ProductID: "p2", ProductName: "Mug", Price: 50, Quantity: 1},
	}

	t.Run("one row per item in a transaction", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)
		mockTx := mock_db.NewMockTx(ctrl)
		l := New(mockDB)

		mockDB.EXPECT().BeginTx(ctx).Return(mockTx, nil)
		mockTx.EXPECT().Exec(ctx, gomock.Any(), "order-1", "p1", "Shirt", "", int64(100), 2, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, args ...interface{}) (pgconn.CommandTag, error) {
				variant := args[6].(*string)
				require.NotNil(t, variant)
				assert.JSONEq(t, `{"size":"M"}`, *variant)
				return pgconn.CommandTag("INSERT 0 1"), nil
			})
		mockTx.EXPECT().Exec(ctx, gomock.Any(), "order-1", "p2", "Mug", "", int64(50), 1, gomock.Nil()).
			Return(pgconn.CommandTag("INSERT 0 1"), nil)
		mockTx.EXPECT().Commit(ctx).Return(nil)

		require.NoError(t, l.CreateOrderItems(ctx, "order-1", items))
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)
		mockTx := mock_db.NewMockTx(ctrl)
		l := New(mockDB)

		mockDB.EXPECT().BeginTx(ctx).Return(mockTx, nil)
		mockTx.EXPECT().Exec(ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("constraint violation"))
		mockTx.EXPECT().Rollback(ctx).Return(nil)

		err := l.CreateOrderItems(ctx, "order-1", items)
		assert.ErrorContains(t, err, "failed to insert item p1 of order order-1")
	})
}

func TestLedger_UpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("derives the order column", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)
		l := New(mockDB)

		tracking := "JT123"
		mockDB.EXPECT().Exec(ctx, gomock.Any(), "order-1", "shipped", "shipped", &tracking, gomock.Nil()).
			Return(pgconn.CommandTag("UPDATE 1"), nil)

		err := l.UpdateOrderStatus(ctx, domain.StatusUpdate{
			OrderID: "order-1", Shipment: status.ShipmentShipped, TrackingNumber: tracking,
		})
		assert.NoError(t, err)
	})

	t.Run("unknown order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)
		l := New(mockDB)

		mockDB.EXPECT().Exec(ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgconn.CommandTag("UPDATE 0"), nil)

		err := l.UpdateOrderStatus(ctx, domain.StatusUpdate{OrderID: "missing", Shipment: status.ShipmentCancelled})
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})
}

func TestLedger_GetStock(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)
		l := New(mockDB)

		mockDB.EXPECT().ExecQueryRow(ctx, gomock.Any(), "p1").Return(fakeRow{val: 7})

		stock, err := l.GetStock(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 7, stock)
	})

	t.Run("missing product", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)
		l := New(mockDB)

		mockDB.EXPECT().ExecQueryRow(ctx, gomock.Any(), "ghost").Return(fakeRow{err: pgx.ErrNoRows})

		_, err := l.GetStock(ctx, "ghost")
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})
}

func TestLedger_LoyaltyBalance(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockDB := mock_db.NewMockDB(ctrl)
	l := New(mockDB)

	mockDB.EXPECT().ExecQueryRow(ctx, gomock.Any(), "buyer-1").Return(fakeRow{val: int64(120)})
	mockDB.EXPECT().Exec(ctx, gomock.Any(), "buyer-1", int64(95)).Return(pgconn.CommandTag("UPDATE 1"), nil)

	balance, err := l.GetLoyaltyBalance(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, int64(120), balance)
	require.NoError(t, l.SetLoyaltyBalance(ctx, "buyer-1", 95))
}

func TestLedger_OrdersByBuyer(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 3, 10, 8, 45, 22, 0, time.UTC)

	t.Run("joins items onto their orders", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)
		l := New(mockDB)

		mockDB.EXPECT().Select(ctx, gomock.Any(), gomock.Any(), "buyer-1").
			DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
				*dest.(*[]orderRow) = []orderRow{
					{ID: "o1", OrderNumber: "ORD-1#1", BuyerID: "buyer-1", SellerID: "A", Subtotal: 200, Total: 200,
						Status: "processing", PaymentStatus: "paid", ShipmentStatus: "ready_to_ship",
						Address: []byte(`{"city":"Manila"}`), PaymentMethod: "card", CreatedAt: created},
					{ID: "o2", OrderNumber: "ORD-1#2", BuyerID: "buyer-1", SellerID: "B", Subtotal: 50, Total: 50,
						Status: "pending", PaymentStatus: "pending", ShipmentStatus: "waiting_for_seller",
						PaymentMethod: "cod", CreatedAt: created},
				}
				return nil
			})
		mockDB.EXPECT().Select(ctx, gomock.Any(), gomock.Any(), []string{"o1", "o2"}).
			DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
				*dest.(*[]orderItemRow) = []orderItemRow{
					{OrderID: "o1", ProductID: "p1", ProductName: "Shirt", Price: 100, Quantity: 2, Variant: []byte(`{"color":"red"}`)},
					{OrderID: "o2", ProductID: "p2", ProductName: "Mug", Price: 50, Quantity: 1},
				}
				return nil
			})

		orders, err := l.OrdersByBuyer(ctx, "buyer-1")
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "Manila", orders[0].Address.City)
		assert.Equal(t, status.ShipmentReadyToShip, orders[0].Shipment)
		require.Len(t, orders[0].Items, 1)
		assert.Equal(t, "red", orders[0].Items[0].Variant.Color)
		assert.Nil(t, orders[1].Items[0].Variant)
	})

	t.Run("unknown persisted status is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)
		l := New(mockDB)

		mockDB.EXPECT().Select(ctx, gomock.Any(), gomock.Any(), "buyer-1").
			DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
				*dest.(*[]orderRow) = []orderRow{{ID: "o1", PaymentStatus: "paid", ShipmentStatus: "teleported"}}
				return nil
			})
		mockDB.EXPECT().Select(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		_, err := l.OrdersByBuyer(ctx, "buyer-1")
		assert.ErrorIs(t, err, status.ErrUnknownStatus)
	})
}

func TestLedger_AppendReturnHistory(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	entry := domain.ReturnHistoryEntry{Status: domain.ReturnApproved, Timestamp: at, Actor: domain.RoleSeller}

	t.Run("status and history move together", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)
		mockTx := mock_db.NewMockTx(ctrl)
		l := New(mockDB)

		mockDB.EXPECT().BeginTx(ctx).Return(mockTx, nil)
		gomock.InOrder(
			mockTx.EXPECT().Exec(ctx, gomock.Any(), "ret-1", "approved").Return(pgconn.CommandTag("UPDATE 1"), nil),
			mockTx.EXPECT().Exec(ctx, gomock.Any(), "ret-1", "approved", "seller", "", at).Return(pgconn.CommandTag("INSERT 0 1"), nil),
		)
		mockTx.EXPECT().Commit(ctx).Return(nil)

		assert.NoError(t, l.AppendReturnHistory(ctx, "ret-1", entry))
	})

	t.Run("unknown request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)
		mockTx := mock_db.NewMockTx(ctrl)
		l := New(mockDB)

		mockDB.EXPECT().BeginTx(ctx).Return(mockTx, nil)
		mockTx.EXPECT().Exec(ctx, gomock.Any(), "ret-x", "approved").Return(pgconn.CommandTag("UPDATE 0"), nil)
		mockTx.EXPECT().Rollback(ctx).Return(nil)

		assert.ErrorIs(t, l.AppendReturnHistory(ctx, "ret-x", entry), ledger.ErrNotFound)
	})
}
