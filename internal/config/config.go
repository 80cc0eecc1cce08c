package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Store struct {
		Backend   string `yaml:"backend"`
		Namespace string `yaml:"namespace"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		Duration     string `yaml:"duration"`
		AdvanceDelay string `yaml:"advance_delay"`
		AllowRestart bool   `yaml:"allow_restart"`
		Retention    string `yaml:"retention"`
	} `yaml:"quiz"`
	Data struct {
		Source string `yaml:"source"`
	} `yaml:"data"`
	Admin struct {
		Username     string `yaml:"username"`
		Password     string `yaml:"password"`
		PasswordHash string `yaml:"password_hash"`
		JWTSecret    string `yaml:"jwt_secret"`
		TokenTTL     string `yaml:"token_ttl"`
	} `yaml:"admin"`
	Site struct {
		Title        string `yaml:"title"`
		PrimaryColor string `yaml:"primary_color"`
	} `yaml:"site"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Store.Backend == "" {
		switch {
		case c.Postgres.URL != "":
			c.Store.Backend = BackendPostgres
		case c.Redis.Addr != "":
			c.Store.Backend = BackendRedis
		default:
			c.Store.Backend = BackendMemory
		}
	}
	if c.Store.Namespace == "" {
		c.Store.Namespace = "qcm"
	}
	if c.Admin.Username == "" {
		c.Admin.Username = "admin"
	}
	if c.Admin.PasswordHash == "" && c.Admin.Password == "" {
		c.Admin.Password = "1234"
	}
	if c.Admin.JWTSecret == "" {
		c.Admin.JWTSecret = os.Getenv("JWT_SECRET")
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
