package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Dataset
	DataPath    string `mapstructure:"data_path" yaml:"data_path"`
	Source      string `mapstructure:"source" yaml:"source" validate:"oneof=csv duckdb"`
	DuckDBPath  string `mapstructure:"duckdb_path" yaml:"duckdb_path"`
	DuckDBTable string `mapstructure:"duckdb_table" yaml:"duckdb_table" validate:"required_if=Source duckdb"`
	MaxRows     int    `mapstructure:"max_rows" yaml:"max_rows" validate:"gte=0"`

	// Analyses
	Format        string   `mapstructure:"format" yaml:"format" validate:"oneof=markdown md csv json yaml yml"`
	TopN          int      `mapstructure:"top_n" yaml:"top_n" validate:"gte=0"`
	ReferenceDate string   `mapstructure:"reference_date" yaml:"reference_date" validate:"omitempty,datetime=2006-01-02"`
	KeywordMode   string   `mapstructure:"keyword_mode" yaml:"keyword_mode" validate:"oneof=substring wholeword whole-word word"`
	Keywords      []string `mapstructure:"keywords" yaml:"keywords" validate:"dive,required"`
	ReportsDir    string   `mapstructure:"reports_dir" yaml:"reports_dir"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=trace debug info warn warning error disabled off"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=console json"`
}

// Keys lists the settable configuration keys.
func Keys() []string {
	return []string{
		"data_path", "source", "duckdb_path", "duckdb_table", "max_rows",
		"format", "top_n", "reference_date", "keyword_mode", "keywords", "reports_dir",
		"log_level", "log_format",
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field values; the error lists every offending key.
func (c *Global) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s=%v fails %s", fe.Field(), fe.Value(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".showlens"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.showlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
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
// Precedence: env (SHOWLENS_*) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SHOWLENS")
	v.AutomaticEnv()

	v.SetDefault("data_path", "")
	v.SetDefault("source", "csv")
	v.SetDefault("duckdb_path", "")
	v.SetDefault("duckdb_table", "titles")
	v.SetDefault("max_rows", 0)
	v.SetDefault("format", "markdown")
	v.SetDefault("top_n", 0)
	v.SetDefault("reference_date", "")
	v.SetDefault("keyword_mode", "substring")
	v.SetDefault("keywords", []string{"kill", "violence"})
	v.SetDefault("reports_dir", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.ReportsDir == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		c.ReportsDir = filepath.Join(dir, "reports")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Set assigns one key from its string form and re-validates.
func (c *Global) Set(key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	var err error
	switch key {
	case "data_path":
		c.DataPath = val
	case "source":
		c.Source = strings.ToLower(val)
	case "duckdb_path":
		c.DuckDBPath = val
	case "duckdb_table":
		c.DuckDBTable = val
	case "max_rows":
		c.MaxRows, err = atoi()
	case "format":
		c.Format = strings.ToLower(val)
	case "top_n":
		c.TopN, err = atoi()
	case "reference_date":
		c.ReferenceDate = val
	case "keyword_mode":
		c.KeywordMode = strings.ToLower(val)
	case "keywords":
		c.Keywords = nil
		for _, k := range strings.Split(val, ",") {
			if k = strings.TrimSpace(k); k != "" {
				c.Keywords = append(c.Keywords, k)
			}
		}
	case "reports_dir":
		c.ReportsDir = val
	case "log_level":
		c.LogLevel = strings.ToLower(val)
	case "log_format":
		c.LogFormat = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err != nil {
		return err
	}
	return c.Validate()
}
