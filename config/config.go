package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/viper"
)

// Configuration is the root of the server's config tree.
type Configuration struct {
	ExternalURL string `mapstructure:"external_url"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	AdminPort   int    `mapstructure:"admin_port"`
	EnableGzip  bool   `mapstructure:"enable_gzip"`

	Creatives     Creatives     `mapstructure:"creatives"`
	Paths         Paths         `mapstructure:"paths"`
	CreativeCache CreativeCache `mapstructure:"creative_cache"`
	AssetCache    AssetCache    `mapstructure:"asset_cache"`
	Bundles       Bundles       `mapstructure:"bundles"`
	ServiceWorker ServiceWorker `mapstructure:"service_worker"`
	Metrics       Metrics       `mapstructure:"metrics"`
}

// Creatives selects where raw creative documents come from.
type Creatives struct {
	// Backend is "files" or "http".
	Backend   string `mapstructure:"backend"`
	Directory string `mapstructure:"directory"`
	Endpoint  string `mapstructure:"endpoint"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

// Paths locates the on-disk asset and template roots.
type Paths struct {
	ComponentsDir string `mapstructure:"components_dir"`
	LibrariesDir  string `mapstructure:"libraries_dir"`
	TemplatesDir  string `mapstructure:"templates_dir"`
}

// CreativeCache controls the merged-creative cache.
type CreativeCache struct {
	TTLMinutes           int `mapstructure:"ttl_minutes"`
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds"`
}

// AssetCache controls the resolved-source byte cache.
type AssetCache struct {
	SizeBytes  int `mapstructure:"size_bytes"`
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

type Bundles struct {
	// AssemblyTimeoutMS bounds one bundle request end to end.
	AssemblyTimeoutMS int `mapstructure:"assembly_timeout_ms"`
}

type ServiceWorker struct {
	ViewType string `mapstructure:"view_type"`
}

type Metrics struct {
	Enabled bool `mapstructure:"enabled"`
}

const (
	BackendFiles = "files"
	BackendHTTP  = "http"
)

// New unmarshals and validates the configuration held by v.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	glog.Infof("Creative server configured on %s:%d (admin %d), creatives backend %q",
		c.Host, c.Port, c.AdminPort, c.Creatives.Backend)
	return &c, nil
}

func (cfg *Configuration) validate() error {
	var errs []string
	if cfg.Port <= 0 {
		errs = append(errs, fmt.Sprintf("port must be positive: %d", cfg.Port))
	}
	if cfg.AdminPort <= 0 {
		errs = append(errs, fmt.Sprintf("admin_port must be positive: %d", cfg.AdminPort))
	}
	switch cfg.Creatives.Backend {
	case BackendFiles:
		if cfg.Creatives.Directory == "" {
			errs = append(errs, "creatives.directory is required for the files backend")
		}
	case BackendHTTP:
		if cfg.Creatives.Endpoint == "" {
			errs = append(errs, "creatives.endpoint is required for the http backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("creatives.backend must be %q or %q: %q", BackendFiles, BackendHTTP, cfg.Creatives.Backend))
	}
	if cfg.Paths.ComponentsDir == "" {
		errs = append(errs, "paths.components_dir is required")
	}
	if cfg.Paths.LibrariesDir == "" {
		errs = append(errs, "paths.libraries_dir is required")
	}
	if cfg.Paths.TemplatesDir == "" {
		errs = append(errs, "paths.templates_dir is required")
	}
	if cfg.CreativeCache.TTLMinutes <= 0 {
		errs = append(errs, fmt.Sprintf("creative_cache.ttl_minutes must be positive: %d", cfg.CreativeCache.TTLMinutes))
	}
	if len(errs) > 0 {
		return errors.New("invalid configuration: " + strings.Join(errs, "; "))
	}
	return nil
}

// SetupViper sets the viper defaults and environment bindings the server
// expects. The command line takes precedence over environment variables,
// which take precedence over the config file.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/creative-server")
	}

	v.SetDefault("external_url", "")
	v.SetDefault("host", "")
	v.SetDefault("port", 8000)
	v.SetDefault("admin_port", 6060)
	v.SetDefault("enable_gzip", true)

	v.SetDefault("creatives.backend", BackendFiles)
	v.SetDefault("creatives.directory", "./data/creatives")
	v.SetDefault("creatives.endpoint", "")
	v.SetDefault("creatives.timeout_ms", 2000)

	v.SetDefault("paths.components_dir", "./data/components")
	v.SetDefault("paths.libraries_dir", "./data/libraries")
	v.SetDefault("paths.templates_dir", "./static/serviceworker")

	v.SetDefault("creative_cache.ttl_minutes", 30)
	v.SetDefault("creative_cache.sweep_interval_seconds", 60)

	v.SetDefault("asset_cache.size_bytes", 16*1024*1024)
	v.SetDefault("asset_cache.ttl_seconds", 300)

	v.SetDefault("bundles.assembly_timeout_ms", 5000)

	v.SetDefault("service_worker.view_type", "player")

	v.SetDefault("metrics.enabled", true)

	v.SetEnvPrefix("CREATIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.ReadInConfig()
}
