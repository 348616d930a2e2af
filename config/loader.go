package config

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Extract  ExtractConfig
	Inegi    InegiConfig
	Output   OutputConfig
	Database DatabaseConfig
	Env      string
}

type ExtractConfig struct {
	Backoff BackoffConfig
	Timeout time.Duration `mapstructure:"timeout"`
}

type BackoffConfig struct {
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
	RetryMax     int           `mapstructure:"retry_max"`
}

type InegiConfig struct {
	BaseURL     string            `mapstructure:"base_url"`
	Language    string            `mapstructure:"language"`
	Geography   string            `mapstructure:"geography"`
	Latest      bool              `mapstructure:"latest"`
	Source      string            `mapstructure:"source"`
	Version     string            `mapstructure:"version"`
	CatalogFile string            `mapstructure:"catalog_file"`
	Indicators  []IndicatorConfig `mapstructure:"indicators"`
}

// IndicatorConfig is one entry of the indicator catalog. Name is optional; series without a
// catalog name fall back to the description the API sends.
type IndicatorConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

type OutputConfig struct {
	Dir   string `mapstructure:"dir"`
	Round bool   `mapstructure:"round"`
}

type DatabaseConfig struct {
	Driver            string   `mapstructure:"driver"`
	Path              string   `mapstructure:"path"`
	ConnInitFnQueries []string `mapstructure:"conn_init_fn_queries"`
}

// NewConfig loads the configuration from the provided base config reader
// and merges it with the environment-specific configuration.
func NewConfig(baseConfigReader io.Reader, envConfigReader io.Reader, env string) (*Config, error) {
	if env == "" {
		env = "dev"
	}

	viper.SetConfigType("yaml")

	if err := viper.ReadConfig(baseConfigReader); err != nil {
		return nil, fmt.Errorf("error reading base config: %w", err)
	}

	// Merge with environment-specific configuration (only if provided)
	if envConfigReader != nil {
		if err := viper.MergeConfig(envConfigReader); err != nil {
			log.Printf("Error merging environment-specific config: %s", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	config.Env = env

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// IndicatorIDs returns the configured indicator identifiers in declaration order.
func (c *Config) IndicatorIDs() []string {
	ids := make([]string, 0, len(c.Inegi.Indicators))
	for _, indicator := range c.Inegi.Indicators {
		ids = append(ids, indicator.ID)
	}
	return ids
}

func (c *Config) validate() error {
	for i, indicator := range c.Inegi.Indicators {
		if strings.TrimSpace(indicator.ID) == "" {
			return fmt.Errorf("inegi.indicators[%d]: id is required", i)
		}
	}
	return nil
}
