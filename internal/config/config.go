// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Bot       BotConfig
	Data      DataConfig
	Lookup    LookupConfig
	Lists     ListsConfig
	Scheduler SchedulerConfig
	Sync      SyncConfig
	HTTP      HTTPConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// BotConfig holds chat platform configuration.
type BotConfig struct {
	// Token authenticates against the chat platform. Required.
	Token string
	// AdminUserID is the single user allowed into admin flows (0 disables them).
	AdminUserID int64
	// MessagesPerMinute caps inbound messages per user before throttling.
	MessagesPerMinute int
}

// DataConfig holds persistent storage configuration.
type DataConfig struct {
	// BasePath is the directory holding the store file and backups.
	BasePath string
}

// LookupConfig holds external book lookup configuration.
type LookupConfig struct {
	// BaseURL of the lookup service (default: Open Library).
	BaseURL string
	// Timeout bounds a single lookup call (default: 15s).
	Timeout time.Duration
}

// ListsConfig holds list rendering configuration.
type ListsConfig struct {
	// PageSize is the number of items per rendered page (default: 10).
	PageSize int
}

// SchedulerConfig holds daily job configuration.
type SchedulerConfig struct {
	// RecommendHour is the local hour (0-23) for the daily recommendation.
	RecommendHour int
	// BackupHour is the local hour (0-23) for the daily backup.
	BackupHour int
}

// SyncConfig holds optional backup sync collaborator credentials.
// The bot only records these for the external sync tooling; it never
// pushes anywhere itself.
type SyncConfig struct {
	Remote string
	Token  string
}

// HTTPConfig holds the ops HTTP server configuration.
type HTTPConfig struct {
	Port string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for the store file and backups")
	adminUserID := flag.String("admin-user-id", "", "Chat user ID allowed into admin flows")
	lookupBaseURL := flag.String("lookup-base-url", "", "Book lookup service base URL")
	lookupTimeout := flag.String("lookup-timeout", "", "Book lookup timeout (default: 15s)")
	pageSize := flag.String("page-size", "", "List page size (default: 10)")
	recommendHour := flag.String("recommend-hour", "", "Local hour for daily recommendation (default: 9)")
	backupHour := flag.String("backup-hour", "", "Local hour for daily backup (default: 3)")
	messagesPerMinute := flag.String("messages-per-minute", "", "Per-user inbound message cap (default: 20)")
	httpPort := flag.String("http-port", "", "Ops HTTP server port (default: 8090)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Bot: BotConfig{
			Token:             getConfigValue("", "BOT_TOKEN", ""),
			AdminUserID:       getInt64ConfigValue(*adminUserID, "ADMIN_USER_ID", 0),
			MessagesPerMinute: getIntConfigValue(*messagesPerMinute, "MESSAGES_PER_MINUTE", 20),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Lookup: LookupConfig{
			BaseURL: getConfigValue(*lookupBaseURL, "LOOKUP_BASE_URL", "https://openlibrary.org"),
		},
		Lists: ListsConfig{
			PageSize: getIntConfigValue(*pageSize, "PAGE_SIZE", 10),
		},
		Scheduler: SchedulerConfig{
			RecommendHour: getIntConfigValue(*recommendHour, "RECOMMEND_HOUR", 9),
			BackupHour:    getIntConfigValue(*backupHour, "BACKUP_HOUR", 3),
		},
		Sync: SyncConfig{
			Remote: getConfigValue("", "SYNC_REMOTE", ""),
			Token:  getConfigValue("", "SYNC_TOKEN", ""),
		},
		HTTP: HTTPConfig{
			Port: getConfigValue(*httpPort, "HTTP_PORT", "8090"),
		},
	}

	// Parse lookup timeout.
	timeoutStr := getConfigValue(*lookupTimeout, "LOOKUP_TIMEOUT", "15s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid lookup timeout %q: %w", timeoutStr, err)
	}
	cfg.Lookup.Timeout = timeout

	// Expand and validate data path.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return errors.New("BOT_TOKEN is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Lists.PageSize < 1 {
		return fmt.Errorf("invalid page size: %d", c.Lists.PageSize)
	}

	if c.Scheduler.RecommendHour < 0 || c.Scheduler.RecommendHour > 23 {
		return fmt.Errorf("invalid recommend hour: %d", c.Scheduler.RecommendHour)
	}
	if c.Scheduler.BackupHour < 0 || c.Scheduler.BackupHour > 23 {
		return fmt.Errorf("invalid backup hour: %d", c.Scheduler.BackupHour)
	}

	return nil
}

// StorePath returns the full path of the SQLite store file.
func (c *Config) StorePath() string {
	return filepath.Join(c.Data.BasePath, "shelftalk.db")
}

// BackupPath returns the directory backups are written to.
func (c *Config) BackupPath() string {
	return filepath.Join(c.Data.BasePath, "backups")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "ShelfTalk", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getInt64ConfigValue returns an int64 from flag, env var, or default.
func getInt64ConfigValue(flagValue, envKey string, defaultValue int64) int64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int64
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
