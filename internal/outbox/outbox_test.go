package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_db "gitlab.ozon.dev/pupkingeorgij/orderflow/internal/db/mocks"
)

func TestTaskRepo_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("assigns id and status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)
		repo := &TaskRepo{now: func() time.Time { return now }}

		task := &Task{Topic: "order_notifications", Key: "buyer-1", Payload: []byte(`{"kind":"seller_new_order"}`)}
		mockDB.EXPECT().Exec(ctx, gomock.Any(), gomock.Any(), TaskStatusCreated, task.Payload,
			"order_notifications", "buyer-1", now, now).
			Return(pgconn.CommandTag("INSERT 0 1"), nil)

		err := repo.Create(ctx, mockDB, task)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.Equal(t, TaskStatusCreated, task.Status)
		assert.Equal(t, now, task.CreatedAt)
	})

	t.Run("insert error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)
		repo := NewTaskRepo()

		mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
			gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("connection reset"))

		err := repo.Create(ctx, mockDB, &Task{Topic: "t"})
		assert.ErrorContains(t, err, "failed to insert outbox task")
	})
}

func TestTaskRepo_UpdateTaskStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockDB := mock_db.NewMockDB(ctrl)

		mockDB.EXPECT().Exec(ctx, gomock.Any(), id, TaskStatusDone, 1, gomock.Nil(), gomock.Nil()).
			Return(pgconn.CommandTag("UPDATE 0"), nil)

		err := NewTaskRepo().UpdateTaskStatus(ctx, mockDB, id, TaskStatusDone, 1, nil, nil)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("inside transaction", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockTx := mock_db.NewMockTx(ctrl)

		mockTx.EXPECT().Exec(ctx, gomock.Any(), id, TaskStatusProcessing, 0, gomock.Nil(), gomock.Nil()).
			Return(pgconn.CommandTag("UPDATE 1"), nil)

		err := NewTaskRepo().UpdateTaskStatusTx(ctx, mockTx, id, TaskStatusProcessing, 0, nil, nil)
		assert.NoError(t, err)
	})
}

func TestTaskRepo_GetProcessableTasksTx(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockTx := mock_db.NewMockTx(ctrl)

	mockTx.EXPECT().Select(ctx, gomock.Any(), gomock.Any(), TaskStatusCreated, TaskStatusFailed, 5, 10).
		DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
			*dest.(*[]*Task) = []*Task{{ID: uuid.New(), Topic: "t"}}
			return nil
		})

	tasks, err := NewTaskRepo().GetProcessableTasksTx(ctx, mockTx, 10, 5)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}
