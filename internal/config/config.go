package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Onboarding OnboardingConfig `yaml:"onboarding"`
	Payment    PaymentConfig    `yaml:"payment"`
	Search     SearchConfig     `yaml:"search"`
	Session    SessionConfig    `yaml:"session"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite, badger or memory
	Path   string `yaml:"path"`
}

type CatalogConfig struct {
	Path string `yaml:"path"` // empty uses the embedded reference data
}

type OnboardingConfig struct {
	InviteCode     string        `yaml:"invite_code"`
	Pattern        string        `yaml:"pattern"` // L = letter, D = digit, one per position
	SignalDuration time.Duration `yaml:"signal_duration"`
}

type PaymentConfig struct {
	Provider    string `yaml:"provider"` // mock or stripe
	Amount      int64  `yaml:"amount"`   // smallest currency unit
	Currency    string `yaml:"currency"`
	Description string `yaml:"description"`
	MockOutcome string `yaml:"mock_outcome"`
	StripeKey   string `yaml:"-"`
}

type SearchConfig struct {
	Debounce       time.Duration `yaml:"debounce"`
	MinQuery       int           `yaml:"min_query"`
	MaxSuggestions int           `yaml:"max_suggestions"`
	RecentLimit    int           `yaml:"recent_limit"`
	CacheSize      int           `yaml:"cache_size"`
	Typing         time.Duration `yaml:"typing"`
	Hold           time.Duration `yaml:"hold"`
	Deleting       time.Duration `yaml:"deleting"`
	Pause          time.Duration `yaml:"pause"`
	StartDelay     time.Duration `yaml:"start_delay"`
}

type SessionConfig struct {
	Splash        time.Duration `yaml:"splash"`
	ProgressMin   int           `yaml:"progress_min"`
	ProgressMax   int           `yaml:"progress_max"`
	PlayerBaseURL string        `yaml:"player_base_url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         6541,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "data/dishuflix.db",
		},
		Onboarding: OnboardingConfig{
			InviteCode:     "DI5HU3",
			Pattern:        "LLDLLD",
			SignalDuration: 500 * time.Millisecond,
		},
		Payment: PaymentConfig{
			Provider:    "mock",
			Amount:      19900, // 199.00 INR
			Currency:    "INR",
			Description: "Lifetime Access Pass",
			MockOutcome: "success",
		},
		Search: SearchConfig{
			Debounce:       300 * time.Millisecond,
			MinQuery:       2,
			MaxSuggestions: 5,
			RecentLimit:    6,
			CacheSize:      128,
			Typing:         120 * time.Millisecond,
			Hold:           1500 * time.Millisecond,
			Deleting:       60 * time.Millisecond,
			Pause:          500 * time.Millisecond,
			StartDelay:     100 * time.Millisecond,
		},
		Session: SessionConfig{
			Splash:        2500 * time.Millisecond,
			ProgressMin:   10,
			ProgressMax:   90,
			PlayerBaseURL: "https://player4u.xyz/embed?key=",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.Payment.StripeKey = os.Getenv("STRIPE_SECRET_KEY")

	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "badger", "memory":
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}

	if len(c.Onboarding.InviteCode) != len(c.Onboarding.Pattern) {
		return fmt.Errorf("onboarding: invite code length %d does not match pattern length %d",
			len(c.Onboarding.InviteCode), len(c.Onboarding.Pattern))
	}
	for i, r := range c.Onboarding.Pattern {
		if r != 'L' && r != 'D' {
			return fmt.Errorf("onboarding.pattern: position %d must be L or D, got %q", i, r)
		}
	}

	switch c.Payment.Provider {
	case "mock":
	case "stripe":
		if c.Payment.StripeKey == "" {
			return fmt.Errorf("payment: stripe provider requires STRIPE_SECRET_KEY")
		}
	default:
		return fmt.Errorf("payment.provider: unknown provider %q", c.Payment.Provider)
	}
	if c.Payment.Amount <= 0 {
		return fmt.Errorf("payment.amount must be positive")
	}

	if c.Search.MinQuery < 1 || c.Search.MaxSuggestions < 1 || c.Search.RecentLimit < 1 {
		return fmt.Errorf("search: min_query, max_suggestions and recent_limit must be at least 1")
	}
	if c.Search.Debounce <= 0 {
		return fmt.Errorf("search.debounce must be positive")
	}

	if c.Session.ProgressMin < 0 || c.Session.ProgressMax > 100 || c.Session.ProgressMin > c.Session.ProgressMax {
		return fmt.Errorf("session: progress range [%d,%d] outside [0,100]",
			c.Session.ProgressMin, c.Session.ProgressMax)
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
