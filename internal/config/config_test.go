package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"ENV", "DB_DRIVER", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "HASH_ROUNDS", "USE_KAFKA", "CLICKHOUSE_ADDR", "KAFKA_BROKERS"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.True(t, cfg.IsLocal())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 300*time.Second, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 10, cfg.HashRounds)
	assert.False(t, cfg.UseKafka)
	assert.Empty(t, cfg.ClickHouseAddr)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("ACCESS_TOKEN_TTL", "120")
	t.Setenv("REFRESH_TOKEN_TTL", "48h")
	t.Setenv("OUTBOX_LIMIT", "50")
	t.Setenv("USE_KAFKA", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CACHE_TTL", "nonsense")

	cfg := LoadConfig()

	assert.False(t, cfg.IsLocal())
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 2*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 50, cfg.OutboxLimit)
	assert.True(t, cfg.UseKafka)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}
