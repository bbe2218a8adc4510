package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POST_SOURCE", "twitter")
	t.Setenv("TWITTER_BEARER_TOKEN", "test-bearer-token")
}

func TestLoad_AllRequiredVarsSet(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "twitter", cfg.PostSource)
	assert.Equal(t, "test-bearer-token", cfg.TwitterBearerToken)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing TWITTER_BEARER_TOKEN",
			env:     map[string]string{"TWITTER_BEARER_TOKEN": ""},
			wantErr: "TWITTER_BEARER_TOKEN is required",
		},
		{
			name:    "missing FINNHUB_API_KEY for finnhub source",
			env:     map[string]string{"POST_SOURCE": "finnhub", "FINNHUB_API_KEY": ""},
			wantErr: "FINNHUB_API_KEY is required",
		},
		{
			name:    "unknown post source",
			env:     map[string]string{"POST_SOURCE": "reddit"},
			wantErr: `POST_SOURCE must be "twitter" or "finnhub", got "reddit"`,
		},
		{
			name:    "zero topic count",
			env:     map[string]string{"TOPIC_COUNT": "0"},
			wantErr: "TOPIC_COUNT must be positive",
		},
		{
			name:    "zero cache ttl",
			env:     map[string]string{"POST_CACHE_TTL": "0s"},
			wantErr: "POST_CACHE_TTL must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "https://api.twitter.com", cfg.TwitterBaseURL)
	assert.Equal(t, time.Hour, cfg.PostCacheTTL)
	assert.Equal(t, time.Minute, cfg.MemoryCacheTTL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 100, cfg.RateLimitPerHour)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, 5, cfg.TopicCount)
	assert.Equal(t, "*/15 * * * *", cfg.WarmSchedule)
	assert.Empty(t, cfg.WarmSymbols())
}

func TestLoad_FinnhubSource(t *testing.T) {
	t.Setenv("POST_SOURCE", "finnhub")
	t.Setenv("FINNHUB_API_KEY", "fh-key")
	t.Setenv("TWITTER_BEARER_TOKEN", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "finnhub", cfg.PostSource)
	assert.Equal(t, "fh-key", cfg.FinnhubAPIKey)
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("POST_CACHE_TTL", "30m")
	t.Setenv("WARM_WATCHLIST", " AAPL, $TSLA ,, NVDA ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, 30*time.Minute, cfg.PostCacheTTL)
	assert.Equal(t, []string{"AAPL", "$TSLA", "NVDA"}, cfg.WarmSymbols())
}
