package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasktrack/internal/timex"
	"github.com/joho/godotenv"
)

// envFile is loaded before reading the environment; a missing file is fine.
// Variables already present in the process environment win over the file.
var envFile = ".env"

func parseEnv(config *Config) {
	_ = godotenv.Load(envFile)

	setString(&config.DatabaseDSN, os.Getenv("DATABASE_DSN"))
	if port := os.Getenv("PORT"); port != "" {
		config.HTTPAddr = ":" + port
	}
	setString(&config.HTTPAddr, os.Getenv("HTTP_ADDR"))
	setString(&config.HealthAddrGRPC, os.Getenv("GRPC_HEALTH_ADDR"))
	setString(&config.CORSOrigin, os.Getenv("CORS_ORIGIN"))
	setString(&config.LogLevel, os.Getenv("LOG_LEVEL"))
	if proxies := getEnvAsList("TRUSTED_PROXIES"); proxies != nil {
		config.TrustedProxies = proxies
	}

	setString(&config.SecretKey, os.Getenv("JWT_SECRET"))
	config.SessionTTL = getEnvAsDuration("JWT_EXPIRY", config.SessionTTL)
	config.CookieSecure = getEnvAsBool("COOKIE_SECURE", config.CookieSecure)

	setString(&config.MailTransport, os.Getenv("MAIL_TRANSPORT"))
	setString(&config.SMTPHost, os.Getenv("SMTP_HOST"))
	config.SMTPPort = getEnvAsInt("SMTP_PORT", config.SMTPPort)
	setString(&config.SMTPUsername, os.Getenv("SMTP_USERNAME"))
	setString(&config.SMTPPassword, os.Getenv("SMTP_PASSWORD"))
	setString(&config.SMTPFrom, os.Getenv("SMTP_FROM_EMAIL"))

	setString(&config.S3RootUser, os.Getenv("S3_ROOT_USER"))
	setString(&config.S3RootPassword, os.Getenv("S3_ROOT_PASSWORD"))
	setString(&config.S3Bucket, os.Getenv("S3_BUCKET"))
	setString(&config.S3Region, os.Getenv("S3_REGION"))
	setString(&config.S3BaseEndpoint, os.Getenv("S3_BASE_ENDPOINT"))

	setString(&config.LimiterRedisURL, os.Getenv("LIMITER_REDIS_URL"))
	config.LoginMaxAttempts = getEnvAsInt("LOGIN_MAX_ATTEMPTS", config.LoginMaxAttempts)
	config.LoginWindow = getEnvAsDuration("LOGIN_WINDOW", config.LoginWindow)
}

func getEnvAsInt(key string, current int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return current
	}
	return value
}

func getEnvAsBool(key string, current bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return current
	}
	return value
}

// getEnvAsList splits a comma separated value; nil when the variable is unset
// or holds no items.
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvAsDuration accepts Go durations and day counts such as "1d".
func getEnvAsDuration(key string, current time.Duration) time.Duration {
	value, err := timex.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return current
	}
	return value
}
