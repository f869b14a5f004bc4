package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("PORT", "")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Redis.CheckinLock)
	assert.Len(t, cfg.Kafka.Topics.All(), 5)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("CHECKIN_LOCK_TTL_SECONDS", "3")
	t.Setenv("SYNC_INTERVAL_MINUTES", "0")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3*time.Second, cfg.Redis.CheckinLock)
	assert.Equal(t, time.Duration(0), cfg.Sync.Interval)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}
