package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig

	// Import/Export configuration
	Import ImportConfig

	Log      LogConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Comments CommentsConfig
	Spam     SpamConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
}

// ImportConfig holds import job settings
type ImportConfig struct {
	MaxUploadSize       int64 // in bytes
	UploadDir           string
	WorkerConcurrency   int
	PollInterval        time.Duration
	NoticeFlushSize     int
	ExportFlushEvery    int
	DefaultSkipExisting bool
}

// LogConfig holds logging settings
type LogConfig struct {
	Level      string
	Format     string // "json" or "pretty"
	File       string // optional rotating log file
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// AuthConfig holds the shared secret used to verify identity tokens
type AuthConfig struct {
	JWTSecret string
}

// RedisConfig holds notification queue settings. Empty URL disables the queue.
type RedisConfig struct {
	URL       string
	NotifyKey string
}

// CommentsConfig holds namespace settings for comment threads
type CommentsConfig struct {
	NamespaceFile      string
	Namespaces         map[int]string
	ContentNamespaces  []int
	EnabledNamespaces  map[int]bool
	MaxMentions        int
	AnonymousByAddress bool
}

// SpamConfig holds spam filter settings
type SpamConfig struct {
	WordlistPath     string
	Words            []string
	MaxExternalLinks int // 0 disables the link limit
}

// namespaceFile is the on-disk layout of COMMENTS_NAMESPACE_FILE
type namespaceFile struct {
	Namespaces                map[int]string `yaml:"namespaces"`
	ContentNamespaces         []int          `yaml:"content_namespaces"`
	CommentsEnabledNamespaces map[int]bool   `yaml:"comments_enabled_namespaces"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 300*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "page_comments"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Import: ImportConfig{
			MaxUploadSize:       getInt64Env("MAX_UPLOAD_SIZE", 500*1024*1024), // 500MB
			UploadDir:           getEnv("UPLOAD_DIR", "./data/uploads"),
			WorkerConcurrency:   getIntEnv("IMPORT_WORKERS", 2),
			PollInterval:        getDurationEnv("IMPORT_POLL_INTERVAL", 2*time.Second),
			NoticeFlushSize:     getIntEnv("IMPORT_NOTICE_FLUSH", 1000),
			ExportFlushEvery:    getIntEnv("EXPORT_FLUSH_EVERY", 100),
			DefaultSkipExisting: getBoolEnv("IMPORT_SKIP_EXISTING", true),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getIntEnv("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getIntEnv("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getIntEnv("LOG_MAX_AGE_DAYS", 30),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			NotifyKey: getEnv("REDIS_NOTIFY_KEY", "comments:notifications"),
		},
		Comments: CommentsConfig{
			NamespaceFile:      getEnv("COMMENTS_NAMESPACE_FILE", ""),
			MaxMentions:        getIntEnv("COMMENTS_MAX_MENTIONS", 10),
			AnonymousByAddress: getBoolEnv("COMMENTS_ANON_BY_ADDRESS", true),
		},
		Spam: SpamConfig{
			WordlistPath:     getEnv("SPAM_WORDLIST_PATH", ""),
			Words:            getListEnv("SPAM_WORDS"),
			MaxExternalLinks: getIntEnv("SPAM_MAX_EXTERNAL_LINKS", 0),
		},
	}

	if cfg.Comments.NamespaceFile != "" {
		if err := cfg.Comments.LoadFile(cfg.Comments.NamespaceFile); err != nil {
			return nil, err
		}
	}

	content, err := getIntListEnv("COMMENTS_CONTENT_NAMESPACES")
	if err != nil {
		return nil, err
	}
	if content != nil {
		cfg.Comments.ContentNamespaces = content
	}

	enabled, err := parseEnabledList(os.Getenv("COMMENTS_ENABLED_NAMESPACES"))
	if err != nil {
		return nil, err
	}
	for ns, on := range enabled {
		if cfg.Comments.EnabledNamespaces == nil {
			cfg.Comments.EnabledNamespaces = make(map[int]bool)
		}
		cfg.Comments.EnabledNamespaces[ns] = on
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile merges namespace settings from a YAML file
func (c *CommentsConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read namespace file: %w", err)
	}
	return c.parseYAML(data)
}

func (c *CommentsConfig) parseYAML(data []byte) error {
	var f namespaceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse namespace file: %w", err)
	}
	if len(f.Namespaces) > 0 {
		c.Namespaces = f.Namespaces
	}
	if f.ContentNamespaces != nil {
		c.ContentNamespaces = f.ContentNamespaces
	}
	if f.CommentsEnabledNamespaces != nil {
		c.EnabledNamespaces = f.CommentsEnabledNamespaces
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Comments.MaxMentions <= 0 {
		return fmt.Errorf("COMMENTS_MAX_MENTIONS must be positive")
	}
	if c.Import.ExportFlushEvery <= 0 {
		return fmt.Errorf("EXPORT_FLUSH_EVERY must be positive")
	}
	if c.Import.WorkerConcurrency <= 0 {
		return fmt.Errorf("IMPORT_WORKERS must be positive")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getIntListEnv(key string) ([]int, error) {
	parts := getListEnv(key)
	if parts == nil {
		return nil, nil
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid namespace %q", key, p)
		}
		out = append(out, n)
	}
	return out, nil
}

// parseEnabledList reads "0=true,2=false" style lists
func parseEnabledList(value string) (map[int]bool, error) {
	out := make(map[int]bool)
	if value == "" {
		return out, nil
	}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, raw, found := strings.Cut(part, "=")
		ns, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("COMMENTS_ENABLED_NAMESPACES: invalid namespace %q", key)
		}
		on := true
		if found {
			on, err = strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("COMMENTS_ENABLED_NAMESPACES: invalid flag %q", raw)
			}
		}
		out[ns] = on
	}
	return out, nil
}
