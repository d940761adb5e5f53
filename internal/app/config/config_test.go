package config

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "tiny", cfg.ModelSize)
	assert.Equal(t, "cpu", cfg.Device)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "int8", cfg.ComputeType)
	assert.NotEmpty(t, cfg.CacheDir)
	assert.True(t, cfg.VAD.Enabled)
	assert.Equal(t, 500, cfg.VAD.MinSilenceMs)
	assert.Equal(t, 400, cfg.VAD.SpeechPadMs)

	require.NoError(t, cfg.Validate())
}

func TestDefaultThreadsBounded(t *testing.T) {
	cfg := Default()
	assert.GreaterOrEqual(t, cfg.CPUThreads, 1)
	assert.LessOrEqual(t, cfg.CPUThreads, 4)
	if runtime.NumCPU() >= 4 {
		assert.Equal(t, 4, cfg.CPUThreads)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TranscriptionConfig)
		wantErr string
	}{
		{"valid_default", func(c *TranscriptionConfig) {}, ""},
		{"base_model", func(c *TranscriptionConfig) { c.ModelSize = "base" }, ""},
		{"small_model", func(c *TranscriptionConfig) { c.ModelSize = "small" }, ""},
		{"large_model_rejected", func(c *TranscriptionConfig) { c.ModelSize = "large" }, "unknown model size"},
		{"empty_model_rejected", func(c *TranscriptionConfig) { c.ModelSize = "" }, "unknown model size"},
		{"cuda_rejected", func(c *TranscriptionConfig) { c.Device = "cuda" }, "unsupported device"},
		{"zero_threads_rejected", func(c *TranscriptionConfig) { c.CPUThreads = 0 }, "thread count"},
		{"empty_cache_rejected", func(c *TranscriptionConfig) { c.CacheDir = "" }, "cache directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestAutoDetect(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.AutoDetect())

	cfg.Language = "auto"
	assert.True(t, cfg.AutoDetect())

	cfg.Language = ""
	assert.True(t, cfg.AutoDetect())

	cfg.Language = "de"
	assert.False(t, cfg.AutoDetect())
}
