package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string
	FSPath      string // Physical directory for file uploads
	FSURL       string // URL path prefix for file access

	BrokerageName         string
	DailyReportCron       string   // Empty disables the scheduled daily report
	DailyReportRecipients []string // First entry is the primary recipient
	LegacyDatabaseURL     string   // Postgres DSN of the legacy hosted backend, used by cmd/migrate
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		JWTSecret:             getEnv("JWT_SECRET", "secret"),
		MongoURI:              getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:                getEnv("DB_NAME", "broker-crm"),
		SkipAuth:              getEnv("SKIP_AUTH", "false") == "true",
		Environment:           getEnv("ENVIRONMENT", "development"),
		AppId:                 getEnv("APP_ID", "broker-crm"),
		FSPath:                getEnv("FS_PATH", "./uploads"),
		FSURL:                 getEnv("FS_URL", "/fs/uploads"),
		BrokerageName:         getEnv("BROKERAGE_NAME", "Broker CRM"),
		DailyReportCron:       getEnv("DAILY_REPORT_CRON", ""),
		DailyReportRecipients: splitList(getEnv("DAILY_REPORT_RECIPIENTS", "")),
		LegacyDatabaseURL:     getEnv("LEGACY_DATABASE_URL", ""),
	}, nil
}

// IsProduction reports whether the service runs with production logging.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
