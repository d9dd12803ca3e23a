package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	AppEnv   string
	HTTPAddr string

	// DataSource selects where request-time leads come from: "sheets" reads
	// the spreadsheet tabs directly, "database" reads the synced store.
	DataSource string

	GoogleSheetsID        string
	GoogleAPIKey          string
	GoogleCredentialsFile string
	OverviewRange         string
	LeadFormRange         string
	AIConversationRange   string

	DatabaseURL      string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisURL      string
	SheetCacheTTL time.Duration

	SupabaseJWTSecret  string
	CORSAllowedOrigins []string

	DashboardTimezone  string
	DefaultPhoneRegion string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	CSVOutputPath string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DataSource: strings.ToLower(getEnv("DATA_SOURCE", "sheets")),

		GoogleSheetsID:        getEnv("GOOGLE_SHEETS_ID", ""),
		GoogleAPIKey:          getEnv("GOOGLE_API_KEY", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		OverviewRange:         getEnv("SHEET_OVERVIEW_RANGE", "Overview!A1:Z"),
		LeadFormRange:         getEnv("SHEET_LEAD_FORM_RANGE", "Lead Form!A1:Z"),
		AIConversationRange:   getEnv("SHEET_AI_CONVERSATION_RANGE", "AI Conversations!A1:Z"),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getEnv("POSTGRES_DB", "postgres"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisURL:      getEnv("REDIS_URL", ""),
		SheetCacheTTL: time.Duration(getEnvInt("SHEET_CACHE_TTL_SECONDS", 60)) * time.Second,

		SupabaseJWTSecret:  getEnv("SUPABASE_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		DashboardTimezone:  getEnv("DASHBOARD_TIMEZONE", "UTC"),
		DefaultPhoneRegion: getEnv("DEFAULT_PHONE_REGION", "ZA"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 200),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/leads.csv"),
	}
}

// DSN returns the PostgreSQL connection string. DATABASE_URL, as handed out
// by Supabase, wins over the discrete settings.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Location resolves the dashboard time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DashboardTimezone)
	if err != nil {
		log.Printf("[config] Unknown DASHBOARD_TIMEZONE %q, using UTC", c.DashboardTimezone)
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
