// Package config provides centralized default values for the live site server
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, redact(key, val), redact(key, defaultValue))
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	log.Printf("Config override: %s (%d entries)", key, len(out))
	return out
}

// redact keeps secrets out of the override log.
func redact(key, val string) string {
	upper := strings.ToUpper(key)
	if val == "" {
		return val
	}
	for _, marker := range []string{"KEY", "SECRET", "TOKEN", "PASSWORD"} {
		if strings.Contains(upper, marker) {
			return "****"
		}
	}
	return val
}

// DefaultSuppressPatterns matches chatter emitted by third-party player embeds.
var DefaultSuppressPatterns = []string{
	"XML Parsing Error",
	"datacenter.live.qcloud.com",
	"not well-formed",
	"qcloud.com",
	"tcplayer",
	"mozPressure",
	"mozInputSource",
	"VideoJS",
	"downloadable font",
	"rejected by sanitizer",
	"yololiv.com",
	"static.yololiv.com",
	"font-family",
	"no supported format found",
	"hls.min",
	"source map error",
	"scroll anchoring",
	"request failed with status",
}

var (
	// Server Configuration
	// No write timeout: status websockets and the log stream stay open.
	Port              string
	ServerReadTimeout time.Duration
	ServerIdleTimeout time.Duration
	AllowedOrigins    []string

	// Remote store
	DataDir                  string
	DatabaseDriver           string
	SQLitePath               string
	TursoDatabaseURL         string
	TursoAuthToken           string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int
	RemoteTimeout            time.Duration
	SlowQueryThreshold       time.Duration
	AutoMigrate              bool

	// Local cache
	LocalCacheDir      string
	LocalCacheInMemory bool

	// Object storage
	StorageBackend     string
	MediaDir           string
	MediaBaseURL       string
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string
	StorageBucket      string
	MaxUploadBytes     int64
	MaxEmbedBytes      int
	UploadMaxAttempts  int
	UploadRetryDelay   time.Duration

	// Admin gate
	AdminUsername      string
	AdminPassword      string
	JWTSecret          string
	LoginRatePerMinute int
	AdminLoginDelay    time.Duration

	// Stream monitoring
	StreamPollInterval      time.Duration
	StreamCheckInterval     time.Duration
	StreamErrorThreshold    int
	StreamErrorLogSize      int
	SettingsRefreshInterval time.Duration

	// Integrations
	ResendAPIKey   string
	ReminderFrom   string
	AAIAPIKey      string
	AAIDailyTokens int
	CalendarDomain string
	SiteURL        string

	// Observability
	LogDir              string
	LogToFile           bool
	LogJSON             bool
	LogSuppressPatterns []string
	MetricsEnabled      bool

	// Site configuration file
	SiteConfigPath string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	AllowedOrigins = getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:8080", "http://127.0.0.1:8080"})

	// Remote store
	DataDir = getEnvString("DATA_DIR", "data")
	DatabaseDriver = getEnvString("DATABASE_DRIVER", "sqlite3")
	SQLitePath = getEnvString("SQLITE_PATH", "data/site.db")
	TursoDatabaseURL = getEnvString("TURSO_DATABASE_URL", "")
	TursoAuthToken = getEnvString("TURSO_AUTH_TOKEN", "")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)
	RemoteTimeout = getEnvDuration("REMOTE_TIMEOUT", 8*time.Second)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 500*time.Millisecond)
	AutoMigrate = getEnvBool("AUTO_MIGRATE", true)

	// Local cache
	LocalCacheDir = getEnvString("LOCAL_CACHE_DIR", "data/cache")
	LocalCacheInMemory = getEnvBool("LOCAL_CACHE_IN_MEMORY", false)

	// Object storage
	StorageBackend = getEnvString("STORAGE_BACKEND", "local")
	MediaDir = getEnvString("MEDIA_DIR", "data/media")
	MediaBaseURL = getEnvString("MEDIA_BASE_URL", "/media")
	SupabaseURL = getEnvString("SUPABASE_URL", "")
	SupabaseAnonKey = getEnvString("SUPABASE_ANON_KEY", "")
	SupabaseServiceKey = getEnvString("SUPABASE_SERVICE_KEY", "")
	StorageBucket = getEnvString("STORAGE_BUCKET", "images")
	MaxUploadBytes = getEnvInt64("MAX_UPLOAD_BYTES", 50*1024*1024)
	MaxEmbedBytes = getEnvInt("MAX_EMBED_BYTES", 1024*1024)
	UploadMaxAttempts = getEnvInt("UPLOAD_MAX_ATTEMPTS", 3)
	UploadRetryDelay = getEnvDuration("UPLOAD_RETRY_DELAY", time.Second)

	// Admin gate
	AdminUsername = getEnvString("ADMIN_USERNAME", "admin")
	AdminPassword = getEnvString("ADMIN_PASSWORD", "")
	JWTSecret = getEnvString("JWT_SECRET", "")
	LoginRatePerMinute = getEnvInt("LOGIN_RATE_PER_MINUTE", 10)
	AdminLoginDelay = getEnvDuration("ADMIN_LOGIN_DELAY", 300*time.Millisecond)

	// Stream monitoring
	StreamPollInterval = getEnvDuration("STREAM_POLL_INTERVAL", 500*time.Millisecond)
	StreamCheckInterval = getEnvDuration("STREAM_CHECK_INTERVAL", 30*time.Second)
	StreamErrorThreshold = getEnvInt("STREAM_ERROR_THRESHOLD", 3)
	StreamErrorLogSize = getEnvInt("STREAM_ERROR_LOG_SIZE", 10)
	SettingsRefreshInterval = getEnvDuration("SETTINGS_REFRESH_INTERVAL", 5*time.Minute)

	// Integrations
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	ReminderFrom = getEnvString("REMINDER_FROM", "schedule@rajcreationz.com")
	AAIAPIKey = getEnvString("AAI_API_KEY", "")
	AAIDailyTokens = getEnvInt("AAI_DAILY_TOKENS", 100000)
	CalendarDomain = getEnvString("CALENDAR_DOMAIN", "rajcreationz.com")
	SiteURL = getEnvString("SITE_URL", "http://localhost:8080")

	// Observability
	LogDir = getEnvString("LOG_DIR", "logs")
	LogToFile = getEnvBool("LOG_TO_FILE", false)
	LogJSON = getEnvBool("LOG_JSON", true)
	LogSuppressPatterns = getEnvList("LOG_SUPPRESS_PATTERNS", DefaultSuppressPatterns)
	MetricsEnabled = getEnvBool("METRICS_ENABLED", true)

	// Site configuration file
	SiteConfigPath = getEnvString("SITE_CONFIG_PATH", "config/site.yaml")
}
