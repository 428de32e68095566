// Package config loads the configuration of the binaries from a YAML file,
// .env files and environment variables.
//
// Environment variables named in `env` struct tags override YAML values.
// .env files are loaded first: ENV_FILE when set, otherwise .env.local and
// then .env. Missing files are ignored.
//
// Example config.yml:
//
//	server:
//	  addr: ":8080"
//	models:
//	  dir: /opt/cyberbullying/models
//	cleaning:
//	  lemmatize_mode: token
//	logging:
//	  json: true
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/baditaflorin/go_cyberbullying/internal/adapters/logger"
	"github.com/baditaflorin/go_cyberbullying/internal/adapters/modelstore"
	"github.com/baditaflorin/go_cyberbullying/internal/core/cleaning"
	"github.com/baditaflorin/go_cyberbullying/internal/core/dispatch"
)

// EnvConfigPath names the variable holding the config file path.
const EnvConfigPath = "CYBERBULLYING_CONFIG"

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"CYBERBULLYING_ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"CYBERBULLYING_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"CYBERBULLYING_WRITE_TIMEOUT"`
	MaxRequestBytes int           `yaml:"max_request_bytes" env:"CYBERBULLYING_MAX_REQUEST_BYTES"`
	MaxBatchSize    int           `yaml:"max_batch_size" env:"CYBERBULLYING_MAX_BATCH_SIZE"`
	WarmUp          bool          `yaml:"warm_up" env:"CYBERBULLYING_WARM_UP"`
}

// ModelsConfig locates the model artifacts.
type ModelsConfig struct {
	Dir        string        `yaml:"dir" env:"CYBERBULLYING_MODEL_DIR"`
	Binary     string        `yaml:"binary" env:"CYBERBULLYING_BINARY_MODEL"`
	Classifier string        `yaml:"classifier" env:"CYBERBULLYING_CLASSIFIER_MODEL"`
	CacheSize  int           `yaml:"cache_size" env:"CYBERBULLYING_MODEL_CACHE_SIZE"`
	CacheTTL   time.Duration `yaml:"cache_ttl" env:"CYBERBULLYING_MODEL_CACHE_TTL"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Output    string `yaml:"output" env:"CYBERBULLYING_LOG_OUTPUT"`
	JSON      bool   `yaml:"json" env:"CYBERBULLYING_LOG_JSON"`
	Async     bool   `yaml:"async" env:"CYBERBULLYING_LOG_ASYNC"`
	AddSource bool   `yaml:"add_source" env:"CYBERBULLYING_LOG_SOURCE"`
}

// Settings converts the section to logger settings.
func (c LoggingConfig) Settings() logger.Settings {
	return logger.Settings{
		Output:    c.Output,
		JSON:      c.JSON,
		Async:     c.Async,
		AddSource: c.AddSource,
	}
}

// Config is the complete binary configuration.
type Config struct {
	Server   ServerConfig     `yaml:"server"`
	Models   ModelsConfig     `yaml:"models"`
	Cleaning cleaning.Options `yaml:"cleaning"`
	Logging  LoggingConfig    `yaml:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			MaxRequestBytes: 4 * 1024 * 1024,
			MaxBatchSize:    10000,
		},
		Models: ModelsConfig{
			Dir:        modelstore.DefaultDir(),
			Binary:     dispatch.DefaultBinaryModel,
			Classifier: dispatch.DefaultClassifierModel,
			CacheSize:  modelstore.DefaultCacheSize,
			CacheTTL:   modelstore.DefaultCacheTTL,
		},
		Cleaning: cleaning.DefaultOptions(),
		Logging: LoggingConfig{
			Output:    "stdout",
			Async:     true,
			AddSource: true,
		},
	}
}

// Load reads the configuration. An empty path falls back to
// $CYBERBULLYING_CONFIG and then to the defaults alone. YAML values are
// decoded over the defaults and environment variables win over both.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, &ValidationError{Field: "server.addr", Message: "is required"})
	}
	if c.Server.MaxRequestBytes < 0 {
		errs = append(errs, &ValidationError{Field: "server.max_request_bytes", Message: "must not be negative"})
	}
	if c.Server.MaxBatchSize < 0 {
		errs = append(errs, &ValidationError{Field: "server.max_batch_size", Message: "must not be negative"})
	}
	if c.Models.Binary == "" {
		errs = append(errs, &ValidationError{Field: "models.binary", Message: "is required"})
	}
	if c.Models.Classifier == "" {
		errs = append(errs, &ValidationError{Field: "models.classifier", Message: "is required"})
	}
	if c.Models.CacheSize < 0 {
		errs = append(errs, &ValidationError{Field: "models.cache_size", Message: "must not be negative"})
	}
	if err := c.Cleaning.Validate(); err != nil {
		errs = append(errs, &ValidationError{Field: "cleaning", Message: err.Error()})
	}
	return errors.Join(errs...)
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	if err := godotenv.Load(".env.local"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env.local: %w", err)
	}
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// applyEnvOverrides sets every field carrying an `env` tag whose variable is set.
func applyEnvOverrides(cfg any) {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	applyEnvToStruct(v)
}

func applyEnvToStruct(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			applyEnvToStruct(field)
			continue
		}

		envTag := t.Field(i).Tag.Get("env")
		if envTag == "" {
			continue
		}
		if envVal := os.Getenv(envTag); envVal != "" {
			setFieldFromString(field, envVal)
		}
	}
}

func setFieldFromString(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			if d, err := time.ParseDuration(val); err == nil {
				field.SetInt(int64(d))
			}
		} else if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(i)
		}
	case reflect.Bool:
		s := strings.ToLower(strings.TrimSpace(val))
		field.SetBool(s == "true" || s == "1" || s == "yes")
	}
}
