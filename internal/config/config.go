// Package config carga la configuración del Hub: YAML opcional, defaults sanos
// y overrides por variables de entorno (en ese orden), y luego Validate.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"app_env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string        `yaml:"addr"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres | sqlite
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
		// Solo memory: snapshot JSON opcional.
		SnapshotPath string `yaml:"snapshot_path"`
		Postgres     struct {
			MaxOpenConns int `yaml:"max_open_conns"`
			MaxIdleConns int `yaml:"max_idle_conns"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis (afecta al rate limiter)
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		CatalogTTL time.Duration `yaml:"catalog_ttl"`
	} `yaml:"cache"`

	Fleet struct {
		HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	} `yaml:"fleet"`

	Rate struct {
		Heartbeat struct {
			// 0 deshabilita el limiter.
			Limit  int           `yaml:"limit"`
			Window time.Duration `yaml:"window"`
		} `yaml:"heartbeat"`
	} `yaml:"rate"`

	Auth struct {
		// Vacío: rutas admin sin bearer (la auth es externa).
		AdminJWTSecret string `yaml:"admin_jwt_secret"`
	} `yaml:"auth"`

	Catalog struct {
		// YAML del catálogo; vacío usa el embebido.
		File string `yaml:"file"`
	} `yaml:"catalog"`
}

// Default devuelve la configuración sin YAML ni env.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load lee path (si no es vacío), aplica defaults, overrides de env y valida.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		// rutas relativas respecto al directorio del YAML
		base := filepath.Dir(path)
		if p := strings.TrimSpace(c.Catalog.File); p != "" && !filepath.IsAbs(p) {
			c.Catalog.File = filepath.Clean(filepath.Join(base, p))
		}
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// sane defaults
func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "fleethub:rl:"
	}
	if c.Cache.CatalogTTL == 0 {
		c.Cache.CatalogTTL = 5 * time.Minute
	}
	if c.Fleet.HeartbeatInterval == 0 {
		c.Fleet.HeartbeatInterval = 60 * time.Second
	}
	if c.Rate.Heartbeat.Window == 0 {
		c.Rate.Heartbeat.Window = time.Minute
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("HUB_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvDur("SHUTDOWN_TIMEOUT"); ok {
		c.Server.ShutdownTimeout = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("STORAGE_SNAPSHOT"); ok {
		c.Storage.SnapshotPath = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}
	if v, ok := getEnvDur("CATALOG_CACHE_TTL"); ok {
		c.Cache.CatalogTTL = v
	}

	// FLEET
	if v, ok := getEnvDur("HEARTBEAT_INTERVAL"); ok {
		c.Fleet.HeartbeatInterval = v
	}

	// RATE
	if v, ok := getEnvInt("RATE_HEARTBEAT_LIMIT"); ok {
		c.Rate.Heartbeat.Limit = v
	}
	if v, ok := getEnvDur("RATE_HEARTBEAT_WINDOW"); ok {
		c.Rate.Heartbeat.Window = v
	}

	// AUTH
	if v, ok := getEnvStr("ADMIN_JWT_SECRET"); ok {
		c.Auth.AdminJWTSecret = v
	}

	// CATALOG
	if v, ok := getEnvStr("CATALOG_FILE"); ok {
		c.Catalog.File = v
	}
}

// Validate rechaza combinaciones que impedirían arrancar el Hub.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "postgres", "postgresql", "pg":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("config: storage.dsn requerido para driver %s", c.Storage.Driver)
		}
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("config: storage.driver desconocido %q (memory|postgres|sqlite)", c.Storage.Driver)
	}

	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Cache.Redis.Addr) == "" {
			return fmt.Errorf("config: cache.redis.addr requerido con cache.kind=redis")
		}
	default:
		return fmt.Errorf("config: cache.kind desconocido %q (memory|redis)", c.Cache.Kind)
	}

	if c.Fleet.HeartbeatInterval <= 0 {
		return fmt.Errorf("config: fleet.heartbeat_interval debe ser > 0")
	}
	if c.Rate.Heartbeat.Limit < 0 {
		return fmt.Errorf("config: rate.heartbeat.limit debe ser >= 0")
	}
	if c.Rate.Heartbeat.Limit > 0 && c.Rate.Heartbeat.Window <= 0 {
		return fmt.Errorf("config: rate.heartbeat.window debe ser > 0")
	}
	if s := c.Auth.AdminJWTSecret; s != "" && len(s) < 32 && strings.EqualFold(c.App.Env, "prod") {
		return fmt.Errorf("config: auth.admin_jwt_secret demasiado corto para prod (min 32)")
	}
	return nil
}
