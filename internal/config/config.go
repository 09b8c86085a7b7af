package config

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppCfg struct{ Env, Port, BaseURL, LogLevel string }
type DBCfg struct{ DSN string }
type RedisCfg struct {
	Addr    string
	LockTTL time.Duration
}

type SecurityCfg struct {
	AESKey     []byte // decrypts "enc:" provider settings; optional
	AdminToken string // guards order status/cancel APIs
}

type GatewayCfg struct {
	TimeoutSec int
	MaxRetries uint64
	Culture    string
}

type ReconcileCfg struct {
	Every  time.Duration
	Batch  int
	MinAge time.Duration
}

// BuckarooCfg holds env fallbacks for settings missing from the database
type BuckarooCfg struct {
	WebsiteKey, SecretKey string
	TestMode              bool
}

type Cfg struct {
	App       AppCfg
	DB        DBCfg
	Redis     RedisCfg
	Sec       SecurityCfg
	Gateway   GatewayCfg
	Reconcile ReconcileCfg
	Buckaroo  BuckarooCfg
}

// Load reads configuration from the environment, after loading .env if present
func Load() Cfg {
	_ = godotenv.Load(".env")

	cfg, err := fromViper(viper.New())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.DB.DSN == "" {
		log.Fatal().Msg("DB_DSN is required")
	}
	return cfg
}

type configError string

func (e configError) Error() string { return string(e) }

func fromViper(v *viper.Viper) (Cfg, error) {
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("ORDER_LOCK_TTL", "30s")
	v.SetDefault("GATEWAY_TIMEOUT_SEC", 30)
	v.SetDefault("GATEWAY_MAX_RETRIES", 2)
	v.SetDefault("GATEWAY_CULTURE", "en-US")
	v.SetDefault("RECONCILE_EVERY", "1m")
	v.SetDefault("RECONCILE_BATCH", 50)
	v.SetDefault("RECONCILE_MIN_AGE", "15m")
	v.SetDefault("BUCKAROO_TEST_MODE", true)

	var key []byte
	if keyB64 := strings.TrimSpace(v.GetString("AES_256_KEY_BASE64")); keyB64 != "" {
		k, err := base64.StdEncoding.DecodeString(keyB64)
		if err != nil || len(k) != 32 {
			return Cfg{}, configError("AES_256_KEY_BASE64 must be a valid 32-byte base64 key")
		}
		key = k
	}

	cfg := Cfg{
		App: AppCfg{
			Env:      v.GetString("APP_ENV"),
			Port:     v.GetString("APP_PORT"),
			BaseURL:  strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBCfg{DSN: v.GetString("DB_DSN")},
		Redis: RedisCfg{
			Addr:    v.GetString("REDIS_ADDR"),
			LockTTL: v.GetDuration("ORDER_LOCK_TTL"),
		},
		Sec: SecurityCfg{
			AESKey:     key,
			AdminToken: strings.TrimSpace(v.GetString("ADMIN_TOKEN")),
		},
		Gateway: GatewayCfg{
			TimeoutSec: v.GetInt("GATEWAY_TIMEOUT_SEC"),
			MaxRetries: v.GetUint64("GATEWAY_MAX_RETRIES"),
			Culture:    v.GetString("GATEWAY_CULTURE"),
		},
		Reconcile: ReconcileCfg{
			Every:  v.GetDuration("RECONCILE_EVERY"),
			Batch:  v.GetInt("RECONCILE_BATCH"),
			MinAge: v.GetDuration("RECONCILE_MIN_AGE"),
		},
		Buckaroo: BuckarooCfg{
			WebsiteKey: v.GetString("BUCKAROO_WEBSITE_KEY"),
			SecretKey:  v.GetString("BUCKAROO_SECRET_KEY"),
			TestMode:   v.GetBool("BUCKAROO_TEST_MODE"),
		},
	}

	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:" + cfg.App.Port
	}
	if cfg.Redis.LockTTL <= 0 {
		return Cfg{}, configError("ORDER_LOCK_TTL must be positive")
	}
	if cfg.Reconcile.Every <= 0 {
		return Cfg{}, configError("RECONCILE_EVERY must be positive")
	}
	return cfg, nil
}

// BuckarooDefaults returns the env fallbacks keyed like persisted settings
func (c Cfg) BuckarooDefaults() map[string]string {
	out := map[string]string{}
	if c.Buckaroo.WebsiteKey != "" {
		out["WebsiteKey"] = c.Buckaroo.WebsiteKey
	}
	if c.Buckaroo.SecretKey != "" {
		out["SecretKey"] = c.Buckaroo.SecretKey
	}
	if c.Buckaroo.TestMode {
		out["TestMode"] = "true"
	} else {
		out["TestMode"] = "false"
	}
	return out
}

// IsDevelopment reports whether pretty logging should be used
func (c Cfg) IsDevelopment() bool {
	return c.App.Env == "development"
}
