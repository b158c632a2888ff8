package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Analysis thresholds
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold" yaml:"fuzzy_threshold"`
	MaxTermsFuzzy  int     `mapstructure:"max_terms_fuzzy" yaml:"max_terms_fuzzy"`
	MaxCategories  int     `mapstructure:"max_categories" yaml:"max_categories"`

	// Loader limits
	MaxRows       int `mapstructure:"max_rows" yaml:"max_rows"`
	MaxFileSizeMB int `mapstructure:"max_file_size_mb" yaml:"max_file_size_mb"`

	Stopwords []string `mapstructure:"stopwords" yaml:"stopwords"`
	OutputDir string   `mapstructure:"output_dir" yaml:"output_dir"`

	// Dashboard feed
	DashboardAddr string `mapstructure:"dashboard_addr" yaml:"dashboard_addr"`
	DashboardURL  string `mapstructure:"dashboard_url" yaml:"dashboard_url"`

	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Dir returns ~/.tabloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabloom"), nil
}

// Default returns the built-in configuration.
func Default() (*Global, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return &Global{
		FuzzyThreshold: 88,
		MaxTermsFuzzy:  500,
		MaxCategories:  200,
		MaxRows:        10_000_000,
		MaxFileSizeMB:  1000,
		Stopwords:      []string{},
		OutputDir:      "./output",
		DashboardAddr:  "127.0.0.1:8050",
		DashboardURL:   "http://127.0.0.1:8050",
		LogFile:        filepath.Join(dir, "tabloom.log"),
		LogLevel:       "info",
	}, nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABLOOM")
	v.AutomaticEnv()

	def, err := Default()
	if err != nil {
		return nil, err
	}
	v.SetDefault("fuzzy_threshold", def.FuzzyThreshold)
	v.SetDefault("max_terms_fuzzy", def.MaxTermsFuzzy)
	v.SetDefault("max_categories", def.MaxCategories)
	v.SetDefault("max_rows", def.MaxRows)
	v.SetDefault("max_file_size_mb", def.MaxFileSizeMB)
	v.SetDefault("stopwords", def.Stopwords)
	v.SetDefault("output_dir", def.OutputDir)
	v.SetDefault("dashboard_addr", def.DashboardAddr)
	v.SetDefault("dashboard_url", def.DashboardURL)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("log_level", def.LogLevel)

	dir := filepath.Dir(def.LogFile)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports out-of-range values.
func (c *Global) Validate() error {
	var problems []string
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 100 {
		problems = append(problems, fmt.Sprintf("fuzzy_threshold must be within 0-100 (got %v)", c.FuzzyThreshold))
	}
	if c.MaxTermsFuzzy < 0 {
		problems = append(problems, fmt.Sprintf("max_terms_fuzzy must not be negative (got %d)", c.MaxTermsFuzzy))
	}
	if c.MaxCategories < 1 {
		problems = append(problems, fmt.Sprintf("max_categories must be positive (got %d)", c.MaxCategories))
	}
	if c.MaxRows < 0 {
		problems = append(problems, fmt.Sprintf("max_rows must not be negative (got %d)", c.MaxRows))
	}
	if c.MaxFileSizeMB < 0 {
		problems = append(problems, fmt.Sprintf("max_file_size_mb must not be negative (got %d)", c.MaxFileSizeMB))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
