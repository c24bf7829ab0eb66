package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultedConfig(t *testing.T) (*Configuration, *viper.Viper) {
	t.Helper()
	v := viper.New()
	SetupViper(v, "")
	cfg, err := New(v)
	require.NoError(t, err)
	return cfg, v
}

func TestDefaults(t *testing.T) {
	cfg, _ := newDefaultedConfig(t)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 6060, cfg.AdminPort)
	assert.True(t, cfg.EnableGzip)
	assert.Equal(t, BackendFiles, cfg.Creatives.Backend)
	assert.Equal(t, "./data/creatives", cfg.Creatives.Directory)
	assert.Equal(t, "./data/components", cfg.Paths.ComponentsDir)
	assert.Equal(t, "./data/libraries", cfg.Paths.LibrariesDir)
	assert.Equal(t, "./static/serviceworker", cfg.Paths.TemplatesDir)
	assert.Equal(t, 30, cfg.CreativeCache.TTLMinutes)
	assert.Equal(t, 60, cfg.CreativeCache.SweepIntervalSeconds)
	assert.Equal(t, 16*1024*1024, cfg.AssetCache.SizeBytes)
	assert.Equal(t, 5000, cfg.Bundles.AssemblyTimeoutMS)
	assert.Equal(t, "player", cfg.ServiceWorker.ViewType)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	SetupViper(v, "")
	v.Set("port", 9000)
	v.Set("creatives.backend", BackendHTTP)
	v.Set("creatives.endpoint", "http://content.internal/creatives")
	v.Set("service_worker.view_type", "kiosk")

	cfg, err := New(v)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, BackendHTTP, cfg.Creatives.Backend)
	assert.Equal(t, "http://content.internal/creatives", cfg.Creatives.Endpoint)
	assert.Equal(t, "kiosk", cfg.ServiceWorker.ViewType)
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		description string
		set         map[string]interface{}
		wantError   string
	}{
		{
			description: "non-positive port",
			set:         map[string]interface{}{"port": 0},
			wantError:   "port must be positive",
		},
		{
			description: "non-positive admin port",
			set:         map[string]interface{}{"admin_port": -1},
			wantError:   "admin_port must be positive",
		},
		{
			description: "unknown backend",
			set:         map[string]interface{}{"creatives.backend": "s3"},
			wantError:   "creatives.backend must be",
		},
		{
			description: "files backend without directory",
			set:         map[string]interface{}{"creatives.directory": ""},
			wantError:   "creatives.directory is required",
		},
		{
			description: "http backend without endpoint",
			set:         map[string]interface{}{"creatives.backend": BackendHTTP},
			wantError:   "creatives.endpoint is required",
		},
		{
			description: "missing templates dir",
			set:         map[string]interface{}{"paths.templates_dir": ""},
			wantError:   "paths.templates_dir is required",
		},
		{
			description: "non-positive cache ttl",
			set:         map[string]interface{}{"creative_cache.ttl_minutes": 0},
			wantError:   "creative_cache.ttl_minutes must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			v := viper.New()
			SetupViper(v, "")
			for key, value := range tt.set {
				v.Set(key, value)
			}

			_, err := New(v)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantError), "error %q should mention %q", err.Error(), tt.wantError)
		})
	}
}

func TestValidationAggregatesErrors(t *testing.T) {
	v := viper.New()
	SetupViper(v, "")
	v.Set("port", 0)
	v.Set("creative_cache.ttl_minutes", 0)

	_, err := New(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port must be positive")
	assert.Contains(t, err.Error(), "creative_cache.ttl_minutes must be positive")
}
