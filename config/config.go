package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the effective server configuration after defaults, .env, the optional
// YAML file, and REALTY_* environment variables have been applied (in that order).
type Config struct {
	DatasetPath  string   `mapstructure:"dataset_path" yaml:"dataset_path"`
	DatasetTable string   `mapstructure:"dataset_table" yaml:"dataset_table"`
	UploadDir    string   `mapstructure:"upload_dir" yaml:"upload_dir"`
	AllowedDirs  []string `mapstructure:"allowed_dirs" yaml:"allowed_dirs"`

	// EnableUploads exposes the upload_dataset tool.
	EnableUploads bool `mapstructure:"enable_uploads" yaml:"enable_uploads"`

	MaxConcurrentRequests int   `mapstructure:"max_concurrent_requests" yaml:"max_concurrent_requests"`
	MaxOpenDatasets       int   `mapstructure:"max_open_datasets" yaml:"max_open_datasets"`
	MaxRows               int   `mapstructure:"max_rows" yaml:"max_rows"`
	MaxUploadBytes        int64 `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	CompareRowLimit       int   `mapstructure:"compare_row_limit" yaml:"compare_row_limit"`
	SingleRowLimit        int   `mapstructure:"single_row_limit" yaml:"single_row_limit"`
	AreaListLimit         int   `mapstructure:"area_list_limit" yaml:"area_list_limit"`

	OperationTimeout      time.Duration `mapstructure:"operation_timeout" yaml:"operation_timeout"`
	AcquireRequestTimeout time.Duration `mapstructure:"acquire_request_timeout" yaml:"acquire_request_timeout"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	ModelName string `mapstructure:"model_name" yaml:"model_name"`
}

// Load builds a Config. cfgFile is optional; when set it must exist and parse.
// A missing .env file is not an error.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", cfgFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	c.normalize()
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset_path", DefaultDatasetPath)
	v.SetDefault("dataset_table", "")
	v.SetDefault("upload_dir", DefaultUploadDir)
	v.SetDefault("allowed_dirs", []string{})
	v.SetDefault("enable_uploads", true)
	v.SetDefault("max_concurrent_requests", DefaultMaxConcurrentRequests)
	v.SetDefault("max_open_datasets", DefaultMaxOpenDatasets)
	v.SetDefault("max_rows", DefaultMaxRows)
	v.SetDefault("max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("compare_row_limit", DefaultCompareRowLimit)
	v.SetDefault("single_row_limit", DefaultSingleRowLimit)
	v.SetDefault("area_list_limit", DefaultAreaListLimit)
	v.SetDefault("operation_timeout", DefaultOperationTimeout)
	v.SetDefault("acquire_request_timeout", DefaultAcquireRequestTimeout)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("model_name", "gpt-4o")
}

// normalize trims list entries and falls back to defaults for non-positive bounds.
func (c *Config) normalize() {
	dirs := make([]string, 0, len(c.AllowedDirs))
	for _, d := range c.AllowedDirs {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, d)
		}
	}
	c.AllowedDirs = dirs

	if c.MaxConcurrentRequests <= 0 {
		c.MaxConcurrentRequests = DefaultMaxConcurrentRequests
	}
	if c.MaxOpenDatasets <= 0 {
		c.MaxOpenDatasets = DefaultMaxOpenDatasets
	}
	if c.MaxRows <= 0 {
		c.MaxRows = DefaultMaxRows
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.CompareRowLimit <= 0 {
		c.CompareRowLimit = DefaultCompareRowLimit
	}
	if c.SingleRowLimit <= 0 {
		c.SingleRowLimit = DefaultSingleRowLimit
	}
	if c.AreaListLimit <= 0 {
		c.AreaListLimit = DefaultAreaListLimit
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// SecurityRoots returns the directories datasets may be opened from. When none are
// configured explicitly, the preloaded dataset's directory and the upload dir are used.
func (c *Config) SecurityRoots() []string {
	if len(c.AllowedDirs) > 0 {
		return c.AllowedDirs
	}
	var roots []string
	if c.DatasetPath != "" && !strings.Contains(c.DatasetPath, "://") {
		roots = append(roots, filepath.Dir(c.DatasetPath))
	}
	if c.UploadDir != "" {
		roots = append(roots, c.UploadDir)
	}
	return roots
}

// YAML renders the effective configuration.
func (c *Config) YAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("config: encode yaml: %w", err)
	}
	return string(b), nil
}
