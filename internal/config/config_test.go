package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSourceURL = "https://example.test/bulletin"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3001", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, DefaultSourceURL, cfg.SourceURL)
	assert.Equal(t, 30*time.Second, cfg.SourceTimeout)
	assert.Equal(t, DefaultUserAgent, cfg.SourceUserAgent)
	assert.Equal(t, "Asia/Manila", cfg.SourceLocation.String())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, time.Duration(0), cfg.RefreshInterval)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "seismic-records", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SOURCE_URL", testSourceURL)
	t.Setenv("SOURCE_TIMEOUT", "5s")
	t.Setenv("SOURCE_USER_AGENT", "quake-test/1.0")
	t.Setenv("SOURCE_TIMEZONE", "UTC")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("REFRESH_INTERVAL", "1m")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "quakes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, testSourceURL, cfg.SourceURL)
	assert.Equal(t, 5*time.Second, cfg.SourceTimeout)
	assert.Equal(t, "quake-test/1.0", cfg.SourceUserAgent)
	assert.Equal(t, time.UTC, cfg.SourceLocation)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "quakes", cfg.KafkaTopic)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "4000")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.HTTPAddr)
}

func TestLoad_HTTPAddrWinsOverPort(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("HTTP_ADDR", ":5000")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.HTTPAddr)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDurations(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SOURCE_TIMEOUT", "bad"},
		{"SOURCE_TIMEOUT", "0s"},
		{"CACHE_TTL", "-1m"},
		{"CACHE_TTL", "forever"},
		{"REFRESH_INTERVAL", "-5s"},
		{"REFRESH_INTERVAL", "often"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_InvalidSourceURL(t *testing.T) {
	for _, v := range []string{"not a url", "ftp://example.test/x", "/relative/path"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("SOURCE_URL", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "SOURCE_URL")
		})
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("SOURCE_TIMEZONE", "Mars/Olympus_Mons")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOURCE_TIMEZONE")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_EmptyCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS_ALLOWED_ORIGINS")
}
