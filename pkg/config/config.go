package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Backend struct {
		Type         string        `yaml:"type"` // none, kafka, clickhouse
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		BatchBytes   int           `yaml:"batch_bytes"`
		BatchSize    int           `yaml:"batch_size"`
		Linger       time.Duration `yaml:"linger"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Cache struct {
		Enabled      bool          `yaml:"enabled"`
		Addr         string        `yaml:"addr"`
		Password     string        `yaml:"password"`
		DB           int           `yaml:"db"`
		DecisionTTL  time.Duration `yaml:"decision_ttl"`
	} `yaml:"cache"`
	Providers struct {
		SocialSecurityURL   string        `yaml:"social_security_url"`
		SocialSecurityToken string        `yaml:"social_security_token"`
		OpenFinanceURL      string        `yaml:"open_finance_url"`
		OpenFinanceToken    string        `yaml:"open_finance_token"`
		Timeout             time.Duration `yaml:"timeout"`
	} `yaml:"providers"`
	Model struct {
		Type         string        `yaml:"type"` // logistic or http
		ServiceURL   string        `yaml:"service_url"`
		Timeout      time.Duration `yaml:"timeout"`
		ArtifactPath string        `yaml:"artifact_path"`
	} `yaml:"model"`
	Risk struct {
		ScorecardConf string `yaml:"scorecard_conf"`
		PricingConf   string `yaml:"pricing_conf"`
		Costs         struct {
			LGD          float64 `yaml:"lgd"`
			Funding      float64 `yaml:"funding"`
			Opex         float64 `yaml:"opex"`
			MarginTarget float64 `yaml:"margin_target"`
		} `yaml:"costs"`
	} `yaml:"risk"`
	Eligibility struct {
		MinBand        string  `yaml:"min_band"`
		MaxIncomeRatio float64 `yaml:"max_income_ratio"`
	} `yaml:"eligibility"`
	RateLimit struct {
		Enabled      bool    `yaml:"enabled"`
		Capacity     float64 `yaml:"capacity"`
		RefillPerSec float64 `yaml:"refill_per_sec"`
	} `yaml:"rate_limit"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PD_MODEL_PATH"); v != "" {
		c.Model.ArtifactPath = v
	}
	if v := os.Getenv("SCORING_CONF"); v != "" {
		c.Risk.ScorecardConf = v
	}
	if v := os.Getenv("PRICING_CONF"); v != "" {
		c.Risk.PricingConf = v
	}
	if v := os.Getenv("SOCIAL_SECURITY_URL"); v != "" {
		c.Providers.SocialSecurityURL = v
	}
	if v := os.Getenv("OPEN_FINANCE_URL"); v != "" {
		c.Providers.OpenFinanceURL = v
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Addr = v
	}

	return c, nil
}

var validBands = map[string]bool{"A": true, "B": true, "C": true, "D": true, "E": true}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Backend.Type {
	case "", "none", "kafka", "clickhouse":
	default:
		return fmt.Errorf("backend.type must be 'none', 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	switch c.Model.Type {
	case "logistic", "http":
	default:
		return fmt.Errorf("model.type must be 'logistic' or 'http', got '%s'", c.Model.Type)
	}
	if c.Model.Type == "logistic" && c.Model.ArtifactPath == "" {
		return fmt.Errorf("model.artifact_path is required for logistic model")
	}
	if c.Model.Type == "http" && c.Model.ServiceURL == "" {
		return fmt.Errorf("model.service_url is required for http model")
	}
	if c.Risk.ScorecardConf == "" {
		return fmt.Errorf("risk.scorecard_conf is required")
	}
	if c.Risk.PricingConf == "" {
		return fmt.Errorf("risk.pricing_conf is required")
	}
	if c.Eligibility.MinBand != "" && !validBands[c.Eligibility.MinBand] {
		return fmt.Errorf("eligibility.min_band must be one of A-E, got '%s'", c.Eligibility.MinBand)
	}
	if c.Eligibility.MaxIncomeRatio < 0 || c.Eligibility.MaxIncomeRatio > 1 {
		return fmt.Errorf("eligibility.max_income_ratio must be in [0,1]")
	}
	return nil
}
