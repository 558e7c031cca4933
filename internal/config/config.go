package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Pending store backends.
const (
	PendingBackendMemory = "memory"
	PendingBackendDynamo = "dynamo"
)

// Config holds all runtime configuration loaded from environment variables.
// Guild verification settings are not here; they live in the settings table.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	SettingsScope  string
	PendingBackend string

	SQLitePath string

	JWTPrivateKeyPath string // optional, only needed to mint actor tokens
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	GatewayURL     string
	GatewaySecret  string
	GatewayTimeout time.Duration
	GatewayRPS     int

	SNSRegion        string
	SNSAlertTopicARN string // empty disables SNS alerts

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	AlertEmail   string // empty disables email alerts

	AlertInterval time.Duration // repeat window for the same misconfiguration alert

	QRBaseURL string
	QRSize    int

	RateLimitPerMinute int
	RateLimitBurst     int

	AllowedOrigins  []string // CORS allowed origins
	ShutdownTimeout time.Duration
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	GuildSettings        string
	PendingVerifications string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			GuildSettings:        getEnv("DYNAMO_TABLE_GUILD_SETTINGS", "guild_settings"),
			PendingVerifications: getEnv("DYNAMO_TABLE_PENDING_VERIFICATIONS", "pending_verifications"),
		},
		SettingsScope:  getEnv("SETTINGS_SCOPE", "default"),
		PendingBackend: strings.ToLower(getEnv("PENDING_BACKEND", PendingBackendMemory)),

		SQLitePath: getEnv("SQLITE_PATH", "./verification.db"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", ""),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 5*time.Minute),

		GatewayURL:     getEnv("GATEWAY_URL", "http://localhost:8081"),
		GatewaySecret:  getEnv("GATEWAY_SECRET", ""),
		GatewayTimeout: getEnvDuration("GATEWAY_TIMEOUT", 10*time.Second),
		GatewayRPS:     getEnvInt("GATEWAY_RPS", 20),

		SNSRegion:        getEnv("SNS_REGION", "us-east-1"),
		SNSAlertTopicARN: getEnv("SNS_ALERT_TOPIC_ARN", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		AlertEmail:   getEnv("ALERT_EMAIL", ""),

		AlertInterval: getEnvDuration("ALERT_INTERVAL", 15*time.Minute),

		QRBaseURL: getEnv("QR_BASE_URL", "https://quickchart.io/qr"),
		QRSize:    getEnvInt("QR_SIZE", 250),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 5),

		AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
