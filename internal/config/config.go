// Package config loads service configuration from YAML with MOCKAPI_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Lookup and update modes for the student service.
const (
	LookupScan       = "scan"
	LookupFirstEntry = "first-entry"
	UpdateMerge      = "merge"
	UpdateReplace    = "replace"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Students StudentsConfig `yaml:"students"`
	Storage  StorageConfig  `yaml:"storage"`
	Blob     BlobConfig     `yaml:"blob"`
	Logging  LogConfig      `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// ServerConfig contains listener and timeout settings shared by both services
type ServerConfig struct {
	SimulationsAddr string        `yaml:"simulations_addr"`
	StudentsAddr    string        `yaml:"students_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StudentsConfig selects the behaviour of the name lookup and update endpoints
type StudentsConfig struct {
	LookupMode string `yaml:"lookup_mode"`
	UpdateMode string `yaml:"update_mode"`
}

// StorageConfig selects the student persistence backend
type StorageConfig struct {
	Driver      string      `yaml:"driver"` // memory|sqlite|postgres|mysql
	SQLitePath  string      `yaml:"sqlite_path"`
	PostgresDSN string      `yaml:"postgres_dsn"`
	MySQLDSN    string      `yaml:"mysql_dsn"`
	Retry       RetryConfig `yaml:"retry"`
}

// RetryConfig contains settings for connection retries
type RetryConfig struct {
	MaxRetries    int           `yaml:"max_retries"`
	InitialDelay  time.Duration `yaml:"initial_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
	JitterFactor  float64       `yaml:"jitter_factor"`
}

// BlobConfig selects where submitted simulation bodies are archived
type BlobConfig struct {
	Driver string   `yaml:"driver"` // none|memory|fs|s3
	FSRoot string   `yaml:"fs_root"`
	S3     S3Config `yaml:"s3"`
}

// S3Config holds bucket settings for the s3 blob driver
type S3Config struct {
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	PathStyle       bool   `yaml:"path_style"`
}

// LogConfig contains settings for logging
type LogConfig struct {
	Level       string `yaml:"level"`
	LogToFile   bool   `yaml:"log_to_file"`
	LogFilePath string `yaml:"log_file_path"`
	MaxSize     int    `yaml:"max_size"`    // megabytes
	MaxBackups  int    `yaml:"max_backups"` // rotated files kept
	MaxAge      int    `yaml:"max_age"`     // days
	Compress    bool   `yaml:"compress"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// TracingConfig controls the OpenTelemetry tracer provider
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			SimulationsAddr: ":8000",
			StudentsAddr:    ":8001",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Students: StudentsConfig{
			LookupMode: LookupScan,
			UpdateMode: UpdateMerge,
		},
		Storage: StorageConfig{
			Driver:      "memory",
			SQLitePath:  "mockapi.db",
			PostgresDSN: "postgres://localhost/mockapi?sslmode=disable",
			MySQLDSN:    "root@tcp(localhost:3306)/mockapi",
			Retry: RetryConfig{
				MaxRetries:    5,
				InitialDelay:  200 * time.Millisecond,
				MaxDelay:      5 * time.Second,
				BackoffFactor: 2.0,
				JitterFactor:  0.1,
			},
		},
		Blob: BlobConfig{
			Driver: "memory",
			FSRoot: "./archive",
			S3:     S3Config{Region: "us-east-1"},
		},
		Logging: LogConfig{
			Level:       "info",
			LogFilePath: "mockapi.log",
			MaxSize:     10,
			MaxBackups:  3,
			MaxAge:      28,
			Compress:    true,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "mockapi",
		},
		Tracing: TracingConfig{
			ServiceName: "mockapi",
			SampleRatio: 1.0,
		},
	}
}

// Load reads configuration from a file over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Decoding into the populated defaults keeps keys the file omits.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"MOCKAPI_SIMULATIONS_ADDR":  &c.Server.SimulationsAddr,
		"MOCKAPI_STUDENTS_ADDR":     &c.Server.StudentsAddr,
		"MOCKAPI_LOOKUP_MODE":       &c.Students.LookupMode,
		"MOCKAPI_UPDATE_MODE":       &c.Students.UpdateMode,
		"MOCKAPI_STORAGE_DRIVER":    &c.Storage.Driver,
		"MOCKAPI_SQLITE_PATH":       &c.Storage.SQLitePath,
		"MOCKAPI_POSTGRES_DSN":      &c.Storage.PostgresDSN,
		"MOCKAPI_MYSQL_DSN":         &c.Storage.MySQLDSN,
		"MOCKAPI_BLOB_DRIVER":       &c.Blob.Driver,
		"MOCKAPI_BLOB_FS_ROOT":      &c.Blob.FSRoot,
		"MOCKAPI_BLOB_S3_BUCKET":    &c.Blob.S3.Bucket,
		"MOCKAPI_BLOB_S3_REGION":    &c.Blob.S3.Region,
		"MOCKAPI_BLOB_S3_ENDPOINT":  &c.Blob.S3.Endpoint,
		"MOCKAPI_LOG_LEVEL":         &c.Logging.Level,
		"MOCKAPI_LOG_FILE":          &c.Logging.LogFilePath,
		"MOCKAPI_TRACING_SERVICE":   &c.Tracing.ServiceName,
		"MOCKAPI_METRICS_NAMESPACE": &c.Metrics.Namespace,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	bools := map[string]*bool{
		"MOCKAPI_BLOB_S3_PATH_STYLE": &c.Blob.S3.PathStyle,
		"MOCKAPI_LOG_TO_FILE":        &c.Logging.LogToFile,
		"MOCKAPI_METRICS_ENABLED":    &c.Metrics.Enabled,
		"MOCKAPI_TRACING_ENABLED":    &c.Tracing.Enabled,
	}
	for key, dst := range bools {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
	}
	return nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	check := func(field, value string, allowed ...string) {
		for _, a := range allowed {
			if strings.EqualFold(value, a) {
				return
			}
		}
		errs = append(errs, fmt.Errorf("%s: unsupported value %q (want one of %s)", field, value, strings.Join(allowed, ", ")))
	}
	check("students.lookup_mode", c.Students.LookupMode, LookupScan, LookupFirstEntry)
	check("students.update_mode", c.Students.UpdateMode, UpdateMerge, UpdateReplace)
	check("storage.driver", c.Storage.Driver, "memory", "sqlite", "postgres", "mysql")
	check("blob.driver", c.Blob.Driver, "none", "memory", "fs", "s3")
	if strings.EqualFold(c.Blob.Driver, "s3") && c.Blob.S3.Bucket == "" {
		errs = append(errs, errors.New("blob.s3.bucket: required for s3 driver"))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio: %v out of range [0,1]", c.Tracing.SampleRatio))
	}
	return errors.Join(errs...)
}
