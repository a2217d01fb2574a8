package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "nope")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")

	assert.Equal(t, 7, EnvIntDefault("X_INT", 7))
	assert.True(t, EnvBoolDefault("X_BOOL", true))
	assert.Equal(t, time.Minute, EnvDurationDefault("X_DUR", time.Minute))
	assert.Equal(t, "fallback", EnvDefault("X_MISSING", "fallback"))
}

func TestLoad_OptionalIntegrations(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("CLOUDINARY_URL", "")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LISTING_STRICT_FILTERS", "true")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.KafkaConfigured())
	assert.False(t, cfg.CloudinaryConfigured())
	assert.False(t, cfg.RedisConfigured())
	assert.True(t, cfg.StrictListing)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxImageBytes)
	assert.Contains(t, cfg.CORSOrigins, "http://localhost:5173")
}
