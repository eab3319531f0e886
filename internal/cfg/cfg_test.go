package cfg

import (
	"testing"
	"time"

	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_USER", "shop")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "marble_db")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	c, err := Load(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "3000", c.Http.Port)
	assert.Equal(t, 5*time.Second, c.Http.ReadTimeout)
	assert.Equal(t, "localhost", c.Db.Host)
	assert.Equal(t, "db/migrations", c.Db.MigrationsPath)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "orders.placed", c.Kafka.Topic)
	assert.Equal(t, 10, c.Outbox.BatchSize)
	assert.Equal(t, 3*time.Second, c.Redis.Timeout)
	assert.Equal(t, "http://minio:9000/product-images", c.Minio.PublicBaseURL)
	assert.Equal(t, 10*time.Second, c.App.ShutdownTimeout)
}

func TestLoad_LegacyPortVariable(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8081")

	c, err := Load(logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "8081", c.Http.Port)

	t.Setenv("HTTP_PORT", "9090")
	c, err = Load(logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Http.Port)
}

func TestLoad_MissingPostgresUser(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POSTGRES_USER", "")

	_, err := Load(logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_USER")
}

func TestLoad_MissingKafkaBrokers(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KAFKA_BROKERS", "")

	_, err := Load(logger.NewNop())
	require.Error(t, err)
}

func TestLoad_InvalidDurations(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PRODUCT_TTL", "three minutes")

	_, err := Load(logger.NewNop())
	require.Error(t, err)
}

func TestLoad_InvalidOutboxBatch(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OUTBOX_BATCH_SIZE", "0")

	_, err := Load(logger.NewNop())
	require.Error(t, err)
}

func TestLoad_NonPositiveOutboxDurations(t *testing.T) {
	cases := map[string]string{
		"OUTBOX_POLL_INTERVAL": "0s",
		"OUTBOX_STALE_AFTER":   "-1m",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(key, value)

			_, err := Load(logger.NewNop())
			require.ErrorIs(t, err, e.ErrIncorrectEnvVariable)
		})
	}
}
