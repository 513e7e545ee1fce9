package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"feedsift/pkg/config"
)

func TestGetEnvString(t *testing.T) {
	assert.Equal(t, "def", config.GetEnvString("FEEDSIFT_ENV_UNSET", "def"))

	t.Setenv("FEEDSIFT_ENV_STR", "value")
	assert.Equal(t, "value", config.GetEnvString("FEEDSIFT_ENV_STR", "def"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset", "", 10},
		{"valid", "25", 25},
		{"padded", " 3 ", 3},
		{"invalid", "ten", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FEEDSIFT_ENV_INT", tt.value)
			assert.Equal(t, tt.want, config.GetEnvInt("FEEDSIFT_ENV_INT", 10))
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FEEDSIFT_ENV_BOOL", "true")
	assert.True(t, config.GetEnvBool("FEEDSIFT_ENV_BOOL", false))

	t.Setenv("FEEDSIFT_ENV_BOOL", "0")
	assert.False(t, config.GetEnvBool("FEEDSIFT_ENV_BOOL", true))

	t.Setenv("FEEDSIFT_ENV_BOOL", "maybe")
	assert.True(t, config.GetEnvBool("FEEDSIFT_ENV_BOOL", true))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("FEEDSIFT_ENV_DUR", "90s")
	assert.Equal(t, 90*time.Second, config.GetEnvDuration("FEEDSIFT_ENV_DUR", time.Second))

	t.Setenv("FEEDSIFT_ENV_DUR", "later")
	assert.Equal(t, time.Second, config.GetEnvDuration("FEEDSIFT_ENV_DUR", time.Second))
}

func TestGetEnvStringList(t *testing.T) {
	t.Setenv("FEEDSIFT_ENV_LIST", "tech, finance ,,")
	assert.Equal(t, []string{"tech", "finance"}, config.GetEnvStringList("FEEDSIFT_ENV_LIST", nil))

	t.Setenv("FEEDSIFT_ENV_LIST", " , ")
	assert.Equal(t, []string{"x"}, config.GetEnvStringList("FEEDSIFT_ENV_LIST", []string{"x"}))
}

func TestGetEnvString_BlankIsUnset(t *testing.T) {
	t.Setenv("FEEDSIFT_ENV_STR", "   ")
	assert.Equal(t, "def", config.GetEnvString("FEEDSIFT_ENV_STR", "def"))
}
