// Package config carga la configuración desde .env + variables de entorno.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type StorageDriver string

const (
	DriverMemory   StorageDriver = "memory"
	DriverSQLite   StorageDriver = "sqlite"
	DriverPostgres StorageDriver = "postgres"
)

// Config holds application configuration
type Config struct {
	Port int

	Storage    StorageDriver
	DBDSN      string // postgres
	SQLitePath string

	LogLevel  string
	LogFormat string
	AppName   string

	// Usuario que firma created_by cuando el request no trae X-User.
	DefaultUser string

	CORSAllowedOrigins []string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	Matching Matching
}

// Matching agrupa los defaults del motor de recomendación.
type Matching struct {
	DefaultMaxInbreeding float64
	DefaultTopN          int
	MaxBatchFemales      int
	BatchTimeout         time.Duration
	Workers              int
}

// Defaults devuelve la configuración usada cuando no hay env.
func Defaults() Config {
	return Config{
		Port:               8080,
		Storage:            DriverMemory,
		SQLitePath:         "data/herd.db",
		LogLevel:           "info",
		LogFormat:          "text",
		AppName:            "herd-mating",
		DefaultUser:        "Pedro",
		CORSAllowedOrigins: []string{"*"},
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       60 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		Matching: Matching{
			DefaultMaxInbreeding: 6.0,
			DefaultTopN:          5,
			MaxBatchFemales:      100,
			BatchTimeout:         30 * time.Second,
			Workers:              4,
		},
	}
}

// Load reads configuration from environment variables
func Load() (Config, error) {
	// .env es opcional
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv arma la config a partir de un lookup (os.LookupEnv en prod, map en tests).
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Defaults()
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	var errs []error
	parseInt := func(key string, dst *int) {
		if v := get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	parseFloat := func(key string, dst *float64) {
		if v := get(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	parseDuration := func(key string, dst *time.Duration) {
		if v := get(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	parseInt("PORT", &cfg.Port)

	cfg.DBDSN = get("DB_DSN")
	if v := get("SQLITE_PATH"); v != "" {
		cfg.SQLitePath = v
	}
	switch d := strings.ToLower(get("STORAGE_DRIVER")); d {
	case "":
		// Sin driver explícito: postgres si hay DSN, sqlite si hay path, si no memoria.
		if cfg.DBDSN != "" {
			cfg.Storage = DriverPostgres
		} else if get("SQLITE_PATH") != "" {
			cfg.Storage = DriverSQLite
		}
	default:
		cfg.Storage = StorageDriver(d)
	}

	if v := get("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := get("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := get("APP_NAME"); v != "" {
		cfg.AppName = v
	}
	if v := get("DEFAULT_USER"); v != "" {
		cfg.DefaultUser = v
	}
	if v := get("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := make([]string, 0)
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSAllowedOrigins = origins
	}

	parseDuration("READ_TIMEOUT", &cfg.ReadTimeout)
	parseDuration("WRITE_TIMEOUT", &cfg.WriteTimeout)
	parseDuration("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)

	parseFloat("DEFAULT_MAX_INBREEDING", &cfg.Matching.DefaultMaxInbreeding)
	parseInt("DEFAULT_TOP_N", &cfg.Matching.DefaultTopN)
	parseInt("MAX_BATCH_FEMALES", &cfg.Matching.MaxBatchFemales)
	parseDuration("BATCH_TIMEOUT", &cfg.Matching.BatchTimeout)
	parseInt("BATCH_WORKERS", &cfg.Matching.Workers)

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	switch c.Storage {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH required for sqlite driver"))
		}
	case DriverPostgres:
		if c.DBDSN == "" {
			errs = append(errs, errors.New("DB_DSN required for postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage))
	}

	m := c.Matching
	if m.DefaultMaxInbreeding < 0 || math.IsNaN(m.DefaultMaxInbreeding) || math.IsInf(m.DefaultMaxInbreeding, 0) {
		errs = append(errs, fmt.Errorf("DEFAULT_MAX_INBREEDING must be a finite value >= 0, got %v", m.DefaultMaxInbreeding))
	}
	if m.DefaultTopN <= 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_TOP_N must be > 0, got %d", m.DefaultTopN))
	}
	if m.MaxBatchFemales <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BATCH_FEMALES must be > 0, got %d", m.MaxBatchFemales))
	}
	if m.BatchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("BATCH_TIMEOUT must be > 0, got %s", m.BatchTimeout))
	}
	if m.Workers <= 0 {
		errs = append(errs, fmt.Errorf("BATCH_WORKERS must be > 0, got %d", m.Workers))
	}
	if strings.TrimSpace(c.DefaultUser) == "" {
		errs = append(errs, errors.New("DEFAULT_USER must not be empty"))
	}

	return errors.Join(errs...)
}

// Addr devuelve ":<port>" para http.Server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
