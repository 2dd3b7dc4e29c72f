package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6432")
	t.Setenv("POSTGRES_USER", "orders")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "ledger")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("OUTBOX_POLL_MS", "250")
	t.Setenv("NOTIFY_VIA_OUTBOX", "false")
	t.Setenv("RETURN_WINDOW_DAYS", "7")
	t.Setenv("SHIPPING_FEE", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "host=db.internal port=6432 user=orders password=secret dbname=ledger sslmode=disable", cfg.DB.DSN())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Kafka.PollInterval)
	assert.False(t, cfg.UseOutbox)
	assert.Equal(t, 7, cfg.ReturnWindowDays)
	assert.Equal(t, int64(50), cfg.ShippingFee)
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("DB_PORT", "five-four-three-two")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PORT")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Ledger)
	assert.Equal(t, "order_notifications", cfg.Kafka.Topic)
	assert.True(t, cfg.UseOutbox)
	assert.False(t, cfg.Kafka.Console)
	assert.Equal(t, 7, cfg.ReturnWindowDays)
}

func TestLoad_LedgerBackend(t *testing.T) {
	tests := []struct {
		name    string
		ledger  string
		outbox  string
		wantErr string
	}{
		{name: "memory without outbox", ledger: "memory", outbox: "false"},
		{name: "memory with outbox", ledger: "memory", outbox: "true", wantErr: "NOTIFY_VIA_OUTBOX"},
		{name: "unknown backend", ledger: "sqlite", outbox: "false", wantErr: "LEDGER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LEDGER", tt.ledger)
			t.Setenv("NOTIFY_VIA_OUTBOX", tt.outbox)

			cfg, err := Load()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ledger, cfg.Ledger)
		})
	}
}
