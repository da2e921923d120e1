/*
Package configs is responsible for loading and parsing the application's configuration settings.

Values are read from operating system environment variables first; command-line flags given
to the server override them. Optional integrations (the PostgreSQL execution log and S3
snapshot storage) are disabled when their settings are left empty.
*/
package configs

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

const (
	// DevelopmentEnv is the default environment name.
	DevelopmentEnv = "development"

	defaultPort            = 5000
	defaultDevOrigin       = "http://localhost:5173"
	defaultExecutorURL     = "https://emkc.org/api/v2/piston/execute"
	defaultExecutorTimeout = 10 * time.Second
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string

	// Execution Settings
	ExecutorURL     string
	ExecutorTimeout time.Duration

	// S3 Storage Settings
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// Database Settings
	DatabaseDSN string
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == DevelopmentEnv
}

// SnapshotsEnabled reports whether S3 snapshot storage is configured.
func (c *AppConfig) SnapshotsEnabled() bool {
	return c.S3BucketName != ""
}

// ExecutionLogEnabled reports whether the PostgreSQL execution log is configured.
func (c *AppConfig) ExecutionLogEnabled() bool {
	return c.DatabaseDSN != ""
}

// Load reads the configuration from the environment and then applies the overrides in
// args (typically os.Args[1:]). It returns pflag.ErrHelp when help was requested.
func Load(args []string) (*AppConfig, error) {
	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	flags := pflag.NewFlagSet("coderoom", pflag.ContinueOnError)
	flags.StringVar(&cfg.Environment, "environment", cfg.Environment, "running environment (development enables debug logs and open CORS)")
	flags.IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	flags.StringSliceVar(&cfg.AllowedOrigins, "allowed-origins", cfg.AllowedOrigins, "origins allowed for CORS and websocket upgrades")
	flags.StringVar(&cfg.ExecutorURL, "executor-url", cfg.ExecutorURL, "Piston-compatible execute endpoint")
	flags.DurationVar(&cfg.ExecutorTimeout, "executor-timeout", cfg.ExecutorTimeout, "hard timeout for one code execution")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = DevelopmentEnv
	}

	cfg.Port = defaultPort
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
		}
		cfg.Port = port
	}

	// --- Security Settings ---
	cfg.AllowedOrigins = splitList(os.Getenv("ALLOWED_ORIGINS"))
	if len(cfg.AllowedOrigins) == 0 && cfg.Environment == DevelopmentEnv {
		cfg.AllowedOrigins = []string{defaultDevOrigin}
	}

	// --- Execution Settings ---
	cfg.ExecutorURL = os.Getenv("EXECUTOR_URL")
	if cfg.ExecutorURL == "" {
		cfg.ExecutorURL = defaultExecutorURL
	}

	cfg.ExecutorTimeout = defaultExecutorTimeout
	if timeoutStr := os.Getenv("EXECUTOR_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid EXECUTOR_TIMEOUT environment variable: %w", err)
		}
		cfg.ExecutorTimeout = timeout
	}

	// --- S3 Storage Settings ---
	cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")

	// --- Database Settings ---
	cfg.DatabaseDSN = os.Getenv("DATABASE_URL")

	return cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", c.Port, 1024, 65535)
	}

	if c.ExecutorTimeout <= 0 {
		return fmt.Errorf("executor timeout must be positive, got %s", c.ExecutorTimeout)
	}

	s3Settings := map[string]string{
		"S3_BUCKET_NAME":       c.S3BucketName,
		"S3_ENDPOINT":          c.S3Endpoint,
		"S3_ACCESS_KEY_ID":     c.S3AccessKeyID,
		"S3_SECRET_ACCESS_KEY": c.S3SecretAccessKey,
	}
	var set, missing []string
	for name, value := range s3Settings {
		if value == "" {
			missing = append(missing, name)
		} else {
			set = append(set, name)
		}
	}
	if len(set) > 0 && len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("incomplete S3 configuration, missing %s", strings.Join(missing, ", "))
	}

	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
