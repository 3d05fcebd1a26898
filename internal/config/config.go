package config

import (
	"fmt"
	"strings"

	"parallel-compress-go/internal/codec"

	"github.com/spf13/viper"
)

// Config represents the main configuration structure
type Config struct {
	Algorithm       string        `mapstructure:"algorithm"`
	Level           int           `mapstructure:"level"` // 0 selects the algorithm default
	OutputDirectory string        `mapstructure:"output_directory"`
	Workers         int           `mapstructure:"workers"` // 0 selects min(NumCPU, files)
	Samples         SamplesConfig `mapstructure:"samples"`
	Logging         LoggingConfig `mapstructure:"logging"`
}

// SamplesConfig contains settings for demo sample-file generation
type SamplesConfig struct {
	Directory string `mapstructure:"directory"`
	Count     int    `mapstructure:"count"`
	SizeKB    int    `mapstructure:"size_kb"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Algorithm: "gzip",
		Level:     0,
		Workers:   0,
		Samples: SamplesConfig{
			Directory: "sample_files",
			Count:     5,
			SizeKB:    100,
		},
		Logging: LoggingConfig{
			Level:      "info",
			FilePath:   "parallel-compress.log",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		// Look for config file in current directory and home directory
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.parallel-compress")
		viper.AddConfigPath("/etc/parallel-compress")
	}

	// Enable environment variable support
	viper.SetEnvPrefix("PARALLEL_COMPRESS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	// Unmarshal config
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate and normalize config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	algorithm, err := codec.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return err
	}
	c.Algorithm = algorithm.String()

	if c.Level != 0 && !algorithm.ValidLevel(c.Level) {
		return fmt.Errorf("invalid %s compression level: %d", algorithm, c.Level)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %d", c.Workers)
	}

	if c.Samples.Count <= 0 {
		c.Samples.Count = 5
	}
	if c.Samples.SizeKB <= 0 {
		c.Samples.SizeKB = 100
	}
	if c.Samples.Directory == "" {
		c.Samples.Directory = "sample_files"
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	return nil
}

// EffectiveLevel returns the configured level or the algorithm default when
// the level is unset.
func (c *Config) EffectiveLevel(algorithm codec.Algorithm) int {
	if c.Level == 0 {
		return algorithm.DefaultLevel()
	}
	return c.Level
}
