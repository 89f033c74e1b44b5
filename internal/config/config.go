package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
	SessionTTL   time.Duration
}

type ExtractionConfig struct {
	BaseURL string
	Timeout time.Duration
}

type PricingConfig struct {
	DefaultTaxRate    float64
	MinorUnitExponent int
}

type QuotationConfig struct {
	AllowDemoIngest bool
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Extraction  ExtractionConfig
	Pricing     PricingConfig
	Quotation   QuotationConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:        v.GetString("HTTP_HOST"),
			Port:        v.GetInt("HTTP_PORT"),
			CORSOrigins: parseList(v.GetString("HTTP_CORS_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			SessionTTL:   v.GetDuration("SESSION_TTL"),
		},
		Extraction: ExtractionConfig{
			BaseURL: v.GetString("EXTRACTION_URL"),
			Timeout: v.GetDuration("EXTRACTION_TIMEOUT"),
		},
		Pricing: PricingConfig{
			DefaultTaxRate:    v.GetFloat64("PRICING_DEFAULT_TAX_RATE"),
			MinorUnitExponent: v.GetInt("PRICING_MINOR_UNIT_EXPONENT"),
		},
		Quotation: QuotationConfig{
			AllowDemoIngest: v.GetBool("QUOTATION_ALLOW_DEMO_INGEST"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = 12 * time.Hour
	}
	if cfg.Extraction.Timeout == 0 {
		cfg.Extraction.Timeout = 90 * time.Second
	}
	if cfg.Pricing.DefaultTaxRate == 0 {
		cfg.Pricing.DefaultTaxRate = 0.18
	}
	if cfg.Pricing.MinorUnitExponent == 0 {
		cfg.Pricing.MinorUnitExponent = 2
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Extraction.BaseURL == "" {
		return fmt.Errorf("EXTRACTION_URL is required")
	}
	if cfg.Pricing.DefaultTaxRate < 0 || cfg.Pricing.DefaultTaxRate > 1 {
		return fmt.Errorf("PRICING_DEFAULT_TAX_RATE must be within [0,1]")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
