package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/tasktrack/internal/flagx"
	"github.com/dmitrijs2005/tasktrack/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations go through
// timex.Duration so "12h", "1d" and nanosecond integers are accepted.
type JsonConfig struct {
	HTTPAddr         string         `json:"http_addr"`
	HealthAddrGRPC   string         `json:"grpc_health_addr"`
	DatabaseDSN      string         `json:"database_dsn"`
	CORSOrigin       string         `json:"cors_origin"`
	LogLevel         string         `json:"log_level"`
	TrustedProxies   []string       `json:"trusted_proxies"`
	SecretKey        string         `json:"secret_key"`
	SessionTTL       timex.Duration `json:"session_ttl"`
	CookieSecure     *bool          `json:"cookie_secure"`
	MailTransport    string         `json:"mail_transport"`
	SMTPHost         string         `json:"smtp_host"`
	SMTPPort         int            `json:"smtp_port"`
	SMTPUsername     string         `json:"smtp_username"`
	SMTPPassword     string         `json:"smtp_password"`
	SMTPFrom         string         `json:"smtp_from"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	LimiterRedisURL  string         `json:"limiter_redis_url"`
	LoginMaxAttempts int            `json:"login_max_attempts"`
	LoginWindow      timex.Duration `json:"login_window"`
}

// parseJson overlays values from the file named by -c / -config. Fields that
// are absent from the file keep their current value. An unreadable or
// malformed file panics: the server must not start half-configured.
func parseJson(config *Config) {
	path := flagx.ConfigFilePath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.HealthAddrGRPC, c.HealthAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.CORSOrigin, c.CORSOrigin)
	setString(&config.LogLevel, c.LogLevel)
	if c.TrustedProxies != nil {
		config.TrustedProxies = c.TrustedProxies
	}
	setString(&config.SecretKey, c.SecretKey)
	if c.SessionTTL.Duration > 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	setString(&config.MailTransport, c.MailTransport)
	setString(&config.SMTPHost, c.SMTPHost)
	if c.SMTPPort > 0 {
		config.SMTPPort = c.SMTPPort
	}
	setString(&config.SMTPUsername, c.SMTPUsername)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LimiterRedisURL, c.LimiterRedisURL)
	if c.LoginMaxAttempts > 0 {
		config.LoginMaxAttempts = c.LoginMaxAttempts
	}
	if c.LoginWindow.Duration > 0 {
		config.LoginWindow = c.LoginWindow.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
