package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort       string        // Application port
	PublicBaseURL string        // Base URL used in password reset links
	DBUser        string        // Database user
	DBPassword    string        // Database password
	DBHost        string        // Database host
	DBPort        string        // Database port
	DBName        string        // Database name
	JWTSecret     string        // JWT secret key
	AccessTTL     time.Duration // Access token lifetime
	RefreshTTL    time.Duration // Refresh token lifetime
	ResetTTL      time.Duration // Password reset token lifetime
	BcryptCost    int           // Bcrypt cost factor
	RedisAddr     string        // Redis server address
	RedisPass     string        // Redis password
	RedisDB       int           // Redis database number
	CacheTTL      time.Duration // Lifetime of cached responses
	RabbitMQURL   string        // RabbitMQ URL, empty disables publishing
	IsProd        bool          // Is production environment

	DefaultAccountType string // Type of the account created at signup
	PurgeRetentionDays int    // Days a soft-deleted user is kept before purge

	PasswordMinLength  int // Minimum password length
	PasswordMinUpper   int // Minimum uppercase letters
	PasswordMinDigit   int // Minimum digits
	PasswordMinSpecial int // Minimum special characters

	BlockSoftDeletedLogin   bool // Reject login and tokens of soft-deleted users
	HideSoftDeletedAccounts bool // Omit soft-deleted accounts from listings by default
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:       envStr("APP_PORT", "8080"),                         // Application port
		PublicBaseURL: envStr("PUBLIC_BASE_URL", "http://localhost:8080"), // Base URL for links
		DBUser:        os.Getenv("DB_USER"),                               // Database user
		DBPassword:    os.Getenv("DB_PASSWORD"),                           // Database password
		DBHost:        envStr("DB_HOST", "127.0.0.1"),                     // Database host
		DBPort:        envStr("DB_PORT", "3306"),                          // Database port
		DBName:        os.Getenv("DB_NAME"),                               // Database name
		JWTSecret:     os.Getenv("JWT_SECRET"),                            // JWT secret key
		AccessTTL:     envDur("ACCESS_TOKEN_TTL", 15*time.Minute),         // Access token lifetime
		RefreshTTL:    envDur("REFRESH_TOKEN_TTL", 7*24*time.Hour),        // Refresh token lifetime
		ResetTTL:      envDur("RESET_TOKEN_TTL", 72*time.Hour),            // Reset token lifetime
		BcryptCost:    envInt("BCRYPT_COST", 10),                          // Bcrypt cost
		RedisAddr:     envStr("REDIS_ADDR", "localhost:6379"),             // Redis server address
		RedisPass:     os.Getenv("REDIS_PASS"),                            // Redis password
		RedisDB:       envInt("REDIS_DB", 0),                              // Redis database number
		CacheTTL:      envDur("CACHE_TTL", 60*time.Second),                // Cache lifetime
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),                          // RabbitMQ URL
		IsProd:        os.Getenv("IS_PROD") == "true",                     // Is production environment

		DefaultAccountType: envStr("DEFAULT_ACCOUNT_TYPE", "WALLET"), // Default account type
		PurgeRetentionDays: envInt("PURGE_RETENTION_DAYS", 15),       // Retention window in days

		PasswordMinLength:  envInt("PASSWORD_MIN_LENGTH", 8),  // Minimum password length
		PasswordMinUpper:   envInt("PASSWORD_MIN_UPPER", 1),   // Minimum uppercase letters
		PasswordMinDigit:   envInt("PASSWORD_MIN_DIGIT", 1),   // Minimum digits
		PasswordMinSpecial: envInt("PASSWORD_MIN_SPECIAL", 1), // Minimum special characters

		BlockSoftDeletedLogin:   envBool("BLOCK_SOFT_DELETED_LOGIN", true),   // Soft-deleted users cannot log in
		HideSoftDeletedAccounts: envBool("HIDE_SOFT_DELETED_ACCOUNTS", true), // Hide soft-deleted accounts in lists
	}
}

// DSN builds the MySQL Data Source Name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&loc=UTC"
}

// PurgeRetention returns the retention window as a duration
func (c *Config) PurgeRetention() time.Duration {
	return time.Duration(c.PurgeRetentionDays) * 24 * time.Hour
}

// envStr returns the variable or a default
func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// envInt returns the variable as int or a default
func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

// envBool returns the variable as bool or a default
func envBool(k string, d bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(k)); err == nil {
		return b
	}
	return d
}

// envDur returns the variable as duration or a default
func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}
