package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// The session secret may be left empty; ResolveSecret then falls back to the key file
// stored next to the database.
type AppConfig struct {
	AppPort   string
	Host      string
	SecretKey string
	// Storage
	DatabaseDriver string
	DatabasePath   string
	DatabaseURI    string
	// Request handling
	MaxContentLength int64
	ThreadsPerPage   int
	PostsPerPage     int
	RecentPostsLimit int
	AllowedOrigins   []string
	// Sessions
	SessionStore        string
	SessionCookieName   string
	SessionCookieSecure bool
	SessionTTLHours     int
	// Redis backs server-side sessions when SessionStore is "redis"
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	SessionStoreCookie = "cookie"
	SessionStoreRedis  = "redis"
)

// DefaultConfigPath is read when no --config flag is given.
var DefaultConfigPath = filepath.Join("config", "config.json")

// LoadFile builds a configuration from the given JSON file; a missing file is not an error.
// Precedence: JSON file -> defaults -> environment variable overrides.
func LoadFile(path string) AppConfig {
	var c AppConfig
	if err := loadJSONConfig(path, &c); err != nil {
		log.Printf("ignoring invalid config file %s: %v", path, err)
	}
	applyDefaults(&c)
	applyEnvOverrides(&c)
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	return c
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into out if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.Host = getString(app, "Host")
		out.SecretKey = getString(app, "SecretKey")
		if v := getInt(app, "MaxContentLength"); v != 0 {
			out.MaxContentLength = int64(v)
		}
		if v := getInt(app, "ThreadsPerPage"); v != 0 {
			out.ThreadsPerPage = v
		}
		if v := getInt(app, "PostsPerPage"); v != 0 {
			out.PostsPerPage = v
		}
		if v := getInt(app, "RecentPostsLimit"); v != 0 {
			out.RecentPostsLimit = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		if v := getString(g, "Mode"); v != "" {
			out.GinMode = v
		}
		if v := getString(g, "LogPath"); v != "" {
			out.GinPath = v
		}
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DatabaseDriver = getString(dbs, "Driver")
		out.DatabasePath = getString(dbs, "Path")
		out.DatabaseURI = getString(dbs, "DatabaseURI")
	}

	if ss, ok := raw["session"].(map[string]any); ok {
		out.SessionStore = getString(ss, "Store")
		out.SessionCookieName = getString(ss, "CookieName")
		out.SessionCookieSecure = getBool(ss, "CookieSecure")
		if v := getInt(ss, "TTLHours"); v != 0 {
			out.SessionTTLHours = v
		}
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		if v := getInt(rds, "RedisPort"); v != 0 {
			out.RedisPort = v
		}
		if v := getInt(rds, "RedisDB"); v != 0 {
			out.RedisDB = v
		}
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		if v := getString(lg, "Level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(lg, "Path"); v != "" {
			out.LogPath = v
		}
		if v := getString(lg, "GinMode"); v != "" {
			out.GinMode = v
		}
		if v := getString(lg, "GinPath"); v != "" {
			out.GinPath = v
		}
		if v := getInt(lg, "MaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "MaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "MaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		out.LogCompress = getBool(lg, "Compress")
	}

	// Flat keys for backward compatibility
	if v := getString(raw, "AppPort"); v != "" && out.AppPort == "" {
		out.AppPort = v
	}
	if v := getString(raw, "SecretKey"); v != "" && out.SecretKey == "" {
		out.SecretKey = v
	}
	if v := getString(raw, "DatabasePath"); v != "" && out.DatabasePath == "" {
		out.DatabasePath = v
	}
	if v := getString(raw, "DatabaseURI"); v != "" && out.DatabaseURI == "" {
		out.DatabaseURI = v
	}
	if v := getString(raw, "LogLevel"); v != "" && out.LogLevel == "" {
		out.LogLevel = v
	}
	if v := getString(raw, "LogPath"); v != "" && out.LogPath == "" {
		out.LogPath = v
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = DriverSQLite
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "forum.db"
	}
	if c.MaxContentLength == 0 {
		c.MaxContentLength = 256 * 1024
	}
	if c.ThreadsPerPage == 0 {
		c.ThreadsPerPage = 20
	}
	if c.PostsPerPage == 0 {
		c.PostsPerPage = 50
	}
	if c.RecentPostsLimit == 0 {
		c.RecentPostsLimit = 10
	}
	if c.SessionStore == "" {
		c.SessionStore = SessionStoreCookie
	}
	if c.SessionCookieName == "" {
		c.SessionCookieName = "session"
	}
	if c.SessionTTLHours == 0 {
		c.SessionTTLHours = 24 * 7
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("HOST", ""); v != "" {
		c.Host = v
	}
	if v := getEnv("SECRET_KEY", ""); v != "" {
		c.SecretKey = v
	}
	if v := getEnv("DB_DRIVER", ""); v != "" {
		c.DatabaseDriver = strings.ToLower(v)
	}
	if v := getEnv("FORUM_DB_PATH", ""); v != "" {
		c.DatabasePath = v
	}
	if v := getEnv("DATABASE_URI", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("MAX_CONTENT_LENGTH", ""); v != "" {
		c.MaxContentLength = int64(mustParseInt(v))
	}
	if v := getEnv("THREADS_PER_PAGE", ""); v != "" {
		c.ThreadsPerPage = mustParseInt(v)
	}
	if v := getEnv("POSTS_PER_PAGE", ""); v != "" {
		c.PostsPerPage = mustParseInt(v)
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = readListEnv("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)
	}
	if v := getEnv("SESSION_STORE", ""); v != "" {
		c.SessionStore = strings.ToLower(v)
	}
	if v := getEnv("SESSION_COOKIE_NAME", ""); v != "" {
		c.SessionCookieName = v
	}
	if v := getEnv("SESSION_COOKIE_SECURE", ""); v != "" {
		c.SessionCookieSecure = v == "true"
	}
	if v := getEnv("SESSION_TTL_HOURS", ""); v != "" {
		c.SessionTTLHours = mustParseInt(v)
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
