package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Addr               string        `koanf:"app_addr"`
	Environment        string        `koanf:"app_env"`
	DatabaseURL        string        `koanf:"database_url"`
	StorageDriver      string        `koanf:"storage_driver"`
	DBConnectAttempts  uint          `koanf:"db_connect_attempts"`
	JWTSecret          string        `koanf:"jwt_secret"`
	TokenTTL           time.Duration `koanf:"token_ttl"`
	SeedAdminEmail     string        `koanf:"seed_admin_email"`
	SeedAdminPassword  string        `koanf:"seed_admin_password"`
	RedisAddr          string        `koanf:"redis_addr"`
	SummaryCacheTTL    time.Duration `koanf:"summary_cache_ttl"`
	UploadDir          string        `koanf:"upload_dir"`
	UploadSweepEvery   time.Duration `koanf:"upload_sweep_interval"`
	ImportMaxBytes     int64         `koanf:"import_max_bytes"`
	MaxBodyBytes       int64         `koanf:"max_body_bytes"`
	LoginRatePerMinute int           `koanf:"login_rate_per_minute"`
	CORSOrigins        []string      `koanf:"cors_origins"`
	LogLevel           string        `koanf:"log_level"`
	MetricsEnabled     bool          `koanf:"metrics_enabled"`
}

func Default() Config {
	return Config{
		Addr:               ":5000",
		Environment:        "development",
		StorageDriver:      StoragePostgres,
		DBConnectAttempts:  5,
		TokenTTL:           24 * time.Hour,
		SummaryCacheTTL:    5 * time.Minute,
		UploadDir:          "data/uploads",
		UploadSweepEvery:   time.Hour,
		ImportMaxBytes:     5 << 20,
		MaxBodyBytes:       1 << 20,
		LoginRatePerMinute: 10,
		CORSOrigins:        []string{"http://localhost:3000"},
		LogLevel:           "info",
		MetricsEnabled:     true,
	}
}

// Load layers defaults, an optional YAML file named by CONFIG_FILE, and the
// environment. A .env file in the working directory is read first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// APP_ADDR -> app_addr, matching the koanf tags and the YAML keys.
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return invalid("DATABASE_URL is required when STORAGE_DRIVER is postgres")
		}
	case StorageMemory:
	default:
		return invalid("STORAGE_DRIVER must be postgres or memory")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		if c.IsProduction() {
			return invalid("JWT_SECRET must be set to a strong value in production")
		}
	}
	if c.IsProduction() && c.StorageDriver == StorageMemory {
		return invalid("STORAGE_DRIVER=memory is not allowed in production")
	}
	if c.TokenTTL <= 0 {
		return invalid("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return invalid("MAX_BODY_BYTES must be at least 1024")
	}
	if c.ImportMaxBytes < 1024 {
		return invalid("IMPORT_MAX_BYTES must be at least 1024")
	}
	if c.LoginRatePerMinute <= 0 {
		return invalid("LOGIN_RATE_PER_MINUTE must be positive")
	}
	if strings.TrimSpace(c.UploadDir) == "" {
		return invalid("UPLOAD_DIR is required")
	}
	if c.DBConnectAttempts == 0 {
		return invalid("DB_CONNECT_ATTEMPTS must be at least 1")
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}

// splitList flattens comma separated entries coming from a single env value.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
