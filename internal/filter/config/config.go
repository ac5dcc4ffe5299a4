package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// SettingsDB is the bbolt file holding rule lists, options and statistics.
	SettingsDB string `koanf:"settings_db" validate:"required"`

	// Listen is the address of the local control API.
	Listen string `koanf:"listen" validate:"required,hostname_port"`

	// StartURL is the page the browser opens first.
	StartURL string `koanf:"start_url" validate:"required,http_url"`

	// BrowserURL is the DevTools endpoint of a running browser. Empty launches a local one.
	BrowserURL string `koanf:"browser_url" validate:"omitempty,url"`

	Headless bool `koanf:"headless"`

	// ClassifierURL is the zero-shot classification endpoint.
	ClassifierURL string `koanf:"classifier_url" validate:"required,http_url"`

	// ClassifierFallbackURL is a completion endpoint tried when the primary fails.
	ClassifierFallbackURL string `koanf:"classifier_fallback_url" validate:"omitempty,http_url"`

	ClassifierToken string `koanf:"classifier_token"`

	ClassifierTimeout time.Duration `koanf:"classifier_timeout" validate:"gt=0"`

	// CacheSize bounds the relevance verdict cache. 0 disables caching.
	CacheSize int `koanf:"cache_size" validate:"gte=0"`

	// MaxInflight bounds concurrent classifier calls.
	MaxInflight int `koanf:"max_inflight" validate:"gte=1"`
}

// DEFAULT_APP_CONFIG defines the default application configuration.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:                   "prod",
	LogLevel:              "info",
	SettingsDB:            "/var/lib/tubefilter/settings.db",
	Listen:                "127.0.0.1:8765",
	StartURL:              "https://www.youtube.com/",
	Headless:              true,
	ClassifierURL:         "https://api-inference.huggingface.co/models/facebook/bart-large-mnli",
	ClassifierFallbackURL: "http://localhost:8080/v1/completions",
	ClassifierTimeout:     10 * time.Second,
	CacheSize:             1000,
	MaxInflight:           4,
}

// validHTTPURL accepts absolute http and https URLs with a host.
func validHTTPURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// envLoader loads environment variables with the prefix "TUBEFILTER_".
// Keys are lowercased and values containing spaces or commas become lists.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "TUBEFILTER_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "TUBEFILTER_"))
			value = strings.TrimSpace(value)

			if value == "" {
				return key, value
			}

			if strings.Contains(value, " ") || strings.Contains(value, ",") {
				parts := strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
				return key, parts
			}

			return key, value
		},
	}), nil)
}

var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("http_url", validHTTPURL)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	err = registerValidation(validate)
	if err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
