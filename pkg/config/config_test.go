package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg := fromViper(newTestViper())

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 4*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Session.Secure)
	assert.Equal(t, "/uploads", cfg.Upload.PublicPath)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, int64(81*1024*1024), cfg.Upload.MaxRequestBytes)
	assert.False(t, cfg.Notifications.Twilio.Enabled())
	assert.False(t, cfg.Notifications.SMTP.Enabled())
	assert.Empty(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperProductionSecureCookie(t *testing.T) {
	t.Setenv("ENV", EnvProduction)
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("ALLOWED_ORIGINS", "https://nexus.club, https://admin.nexus.club ,")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("TWILIO_FROM_NUMBER", "+15550000")

	cfg := fromViper(newTestViper())

	require.True(t, cfg.Session.Secure)
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"https://nexus.club", "https://admin.nexus.club"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Notifications.Twilio.Enabled())
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}
