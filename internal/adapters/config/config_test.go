package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestGetQRDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()

	cfg := GetQR()
	assert.Equal(t, 300, cfg.DefaultSize)
	assert.Equal(t, 100, cfg.MinSize)
	assert.Equal(t, 1000, cfg.MaxSize)
	assert.Equal(t, 3, cfg.HighResScale)
	assert.Equal(t, 1200*time.Millisecond, cfg.CleanupDelay)
	assert.Equal(t, "exports", cfg.ExportDir)
	assert.Equal(t, int64(5<<20), cfg.MaxLogoBytes)
	assert.Equal(t, int64(20), cfg.PresetsPerUser)
	assert.Equal(t, time.Hour, cfg.PreviewIdle)
	assert.Equal(t, 10*time.Minute, cfg.PreviewSweep)
}

func TestGetQRRepairsBounds(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()

	viper.Set("settings.qr.min-size", 0)
	viper.Set("settings.qr.max-size", -5)
	viper.Set("settings.qr.default-size", 50)
	viper.Set("settings.qr.hr-scale", 0)
	viper.Set("settings.qr.cleanup-delay", "2s")
	viper.Set("settings.qr.preview-sweep", 0)

	cfg := GetQR()
	assert.Equal(t, 1, cfg.MinSize)
	assert.Equal(t, 1, cfg.MaxSize)
	assert.Equal(t, 1, cfg.DefaultSize)
	assert.Equal(t, 3, cfg.HighResScale)
	assert.Equal(t, 2*time.Second, cfg.CleanupDelay)
	assert.Equal(t, 10*time.Minute, cfg.PreviewSweep)
}
