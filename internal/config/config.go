// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for a CLI valuation run.
type Configuration struct {
	Logging     LoggingConfig          `yaml:"logging,omitempty" mapstructure:"logging"`
	Output      OutputConfig           `yaml:"output,omitempty" mapstructure:"output"`
	Assumptions map[string]interface{} `yaml:"assumptions" mapstructure:"assumptions"`
	Bounds      dcf.Bounds             `yaml:"bounds,omitempty" mapstructure:"bounds"`
	Provider    ProviderConfig         `yaml:"provider,omitempty" mapstructure:"provider"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// ProviderConfig configures the financial data provider used to prefill
// assumptions from a ticker symbol.
type ProviderConfig struct {
	APIKey    string        `yaml:"apiKey,omitempty" mapstructure:"apiKey"`
	BaseURL   string        `yaml:"baseURL,omitempty" mapstructure:"baseURL"`
	Timeout   time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
	CacheTTL  time.Duration `yaml:"cacheTTL,omitempty" mapstructure:"cacheTTL"`
	CachePath string        `yaml:"cachePath,omitempty" mapstructure:"cachePath"` // optional SQLite file
}

// ApplyDefaults fills unset provider fields. An empty API key is read from
// the ALPHA_VANTAGE_KEY environment variable.
func (p *ProviderConfig) ApplyDefaults() {
	if p.APIKey == "" {
		p.APIKey = strings.TrimSpace(os.Getenv(constants.APIKeyEnv))
	}
	if p.BaseURL == "" {
		p.BaseURL = constants.DefaultProviderBaseURL
	}
	if p.Timeout <= 0 {
		p.Timeout = constants.DefaultProviderTimeoutSeconds * time.Second
	}
	if p.CacheTTL <= 0 {
		p.CacheTTL = constants.DefaultCacheTTLHours * time.Hour
	}
}

// Enabled reports whether enough is configured to reach the provider.
func (p ProviderConfig) Enabled() bool {
	return p.APIKey != ""
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if configuration.Assumptions == nil {
		configuration.Assumptions = make(map[string]interface{})
	}
	configuration.Provider.ApplyDefaults()

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate checks the option strings of the configuration. Assumptions are
// left to the valuation validator.
func (conf *Configuration) Validate() error {
	if conf.Output.Format != "" {
		if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
			return err
		}
	}
	if err := validation.ValidateLogLevel(conf.Logging.Level); err != nil {
		return err
	}
	return validation.ValidateLogFormat(conf.Logging.Format)
}
