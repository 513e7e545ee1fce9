package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsift/internal/config"
)

func TestLoadNotifyConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadNotifyConfig()
	require.NoError(t, err)
	assert.False(t, cfg.DiscordEnabled)
	assert.False(t, cfg.SlackEnabled)
	assert.False(t, cfg.TelegramEnabled)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 10, cfg.MaxConcurrent)
}

func TestLoadNotifyConfig_Telegram(t *testing.T) {
	t.Setenv("TELEGRAM_ENABLED", "true")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234567890")

	cfg, err := config.LoadNotifyConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234567890), cfg.TelegramChatID)
}

func TestLoadNotifyConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"discord without url", map[string]string{"DISCORD_ENABLED": "true"}},
		{"slack without url", map[string]string{"SLACK_ENABLED": "true"}},
		{"telegram without chat", map[string]string{"TELEGRAM_ENABLED": "true", "TELEGRAM_BOT_TOKEN": "t"}},
		{"bad chat id", map[string]string{"TELEGRAM_CHAT_ID": "general"}},
		{"zero concurrency", map[string]string{"NOTIFY_MAX_CONCURRENT": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.LoadNotifyConfig()
			assert.Error(t, err)
		})
	}
}
