package outbox

import (
	"context"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/db"
)

// Stager writes messages into the outbox table instead of sending them. The
// kafka publisher relays them later.
type Stager struct {
	db   db.DB
	repo Repository
}

func NewStager(database db.DB, repo Repository) *Stager {
	return &Stager{db: database, repo: repo}
}

func (s *Stager) SendMessage(ctx context.Context, topic string, key []byte, value []byte) error {
	return s.repo.Create(ctx, s.db, &Task{
		Topic:   topic,
		Key:     string(key),
		Payload: value,
	})
}
