package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       DBConfig
	Kafka    KafkaConfig
	HTTPPort string
	LogLevel string

	// Ledger selects the order ledger backend: "postgres" or "memory".
	Ledger string

	// SnapshotPath is where the local order cache is persisted between runs.
	SnapshotPath string

	// UseOutbox stages notifications in postgres instead of writing to kafka
	// directly.
	UseOutbox bool

	NotifyWorkers int
	NotifyQueue   int

	ReturnWindowDays int
	ShippingFee      int64
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	GroupID      string
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int

	// Console prints events to stdout instead of talking to a broker.
	Console bool
}

// LoadEnv looks for .env in the working directory and up to two parents, then
// falls back to .example.env. A missing file is not an error; the process
// environment may already be populated.
func LoadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		log.Printf("config: cannot resolve working directory: %v", err)
		return
	}

	dirs := []string{wd, filepath.Join(wd, ".."), filepath.Join(wd, "..", "..")}
	for _, name := range []string{".env", ".example.env"} {
		for _, dir := range dirs {
			path := filepath.Join(dir, name)
			if err := godotenv.Load(path); err == nil {
				log.Printf("Loaded environment variables from %s", path)
				return
			}
		}
	}
}

func Load() (Config, error) {
	LoadEnv()

	var errs []string
	intEnv := func(key string, def int) int {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return n
	}

	cfg := Config{
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     intEnv("DB_PORT", 5432),
			User:     env("POSTGRES_USER", "postgres"),
			Password: env("POSTGRES_PASSWORD", "postgres"),
			Name:     env("POSTGRES_DB", "orderflow"),
		},
		Kafka: KafkaConfig{
			Brokers:      strings.Split(env("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:        env("KAFKA_TOPIC", "order_notifications"),
			GroupID:      env("KAFKA_GROUP_ID", "order-notification-consumer-group"),
			PollInterval: time.Duration(intEnv("OUTBOX_POLL_MS", 500)) * time.Millisecond,
			BatchSize:    intEnv("OUTBOX_BATCH_SIZE", 50),
			MaxAttempts:  intEnv("OUTBOX_MAX_ATTEMPTS", 5),
			Console:      env("KAFKA_CONSOLE", "false") == "true",
		},
		HTTPPort:         env("HTTP_PORT", "9000"),
		LogLevel:         env("LOG_LEVEL", "info"),
		Ledger:           env("LEDGER", "postgres"),
		SnapshotPath:     env("SNAPSHOT_PATH", "orders_snapshot.json"),
		UseOutbox:        env("NOTIFY_VIA_OUTBOX", "true") == "true",
		NotifyWorkers:    intEnv("NOTIFY_WORKERS", 2),
		NotifyQueue:      intEnv("NOTIFY_QUEUE", 256),
		ReturnWindowDays: intEnv("RETURN_WINDOW_DAYS", 7),
		ShippingFee:      int64(intEnv("SHIPPING_FEE", 0)),
	}
	if cfg.Ledger != "postgres" && cfg.Ledger != "memory" {
		errs = append(errs, fmt.Sprintf("LEDGER: unknown backend %q", cfg.Ledger))
	}
	if cfg.Ledger == "memory" && cfg.UseOutbox {
		errs = append(errs, "NOTIFY_VIA_OUTBOX: the outbox needs the postgres ledger")
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
