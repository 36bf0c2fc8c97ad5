package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Token implementations selectable with AUTH_TOKEN_TYPE
const (
	TokenTypeJWT    = "jwt"
	TokenTypePaseto = "paseto"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Email    EmailConfig
	Google   GoogleConfig
	Weather  WeatherConfig
	FoodData FoodDataConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins
	Timezone        string   // used for "today" in sleep and calorie summaries
	// Peers whose X-Forwarded-For is believed. Empty means the TCP peer is the client.
	TrustedProxies []netip.Prefix
}

type DatabaseConfig struct {
	URL            string // full connection string, wins over the parts below
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB, empty for local
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	TokenType string // jwt or paseto
	JWTSecret []byte
	// PASETO symmetric key (must be 32 bytes for v4.local)
	PasetoKey            []byte
	SessionTokenDuration time.Duration
	BcryptCost           int

	OTPTTL         time.Duration
	OTPRateLimit   int
	OTPRateWindow  time.Duration
	LoginRateLimit int
	LoginWindow    time.Duration
	ResetCooldown  time.Duration
	OTPSweepPeriod time.Duration
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	FrontendURL  string // Frontend URL for reset links and OAuth redirects
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type WeatherConfig struct {
	APIKey  string
	BaseURL string
}

type FoodDataConfig struct {
	APIKey  string
	BaseURL string
}

// Load reads configuration from environment variables
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", getEnv("SERVER_PORT", "5000")),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
			Timezone:        getEnv("APP_TIMEZONE", "UTC"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "fitness"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TokenType:            strings.ToLower(getEnv("AUTH_TOKEN_TYPE", TokenTypeJWT)),
			JWTSecret:            []byte(getEnv("JWT_SECRET", "")),
			PasetoKey:            []byte(getEnv("PASETO_KEY", "")),
			SessionTokenDuration: getDurationEnv("SESSION_TOKEN_DURATION", 7*24*time.Hour),
			BcryptCost:           getIntEnv("BCRYPT_COST", 10),
			OTPTTL:               getDurationEnv("OTP_TTL", 10*time.Minute),
			OTPRateLimit:         getIntEnv("OTP_RATE_LIMIT", 5),
			OTPRateWindow:        getDurationEnv("OTP_RATE_WINDOW", time.Minute),
			LoginRateLimit:       getIntEnv("LOGIN_RATE_LIMIT", 20),
			LoginWindow:          getDurationEnv("LOGIN_RATE_WINDOW", 15*time.Minute),
			ResetCooldown:        getDurationEnv("RESET_COOLDOWN", 2*time.Minute),
			OTPSweepPeriod:       getDurationEnv("OTP_SWEEP_PERIOD", 5*time.Minute),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     getEnv("EMAIL_HOST_USER", getEnv("SMTP_USER", "")),
			SMTPPassword: getEnv("EMAIL_HOST_PASSWORD", getEnv("SMTP_PASS", "")),
			FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", getEnv("CLIENT_ID", "")),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", getEnv("CLIENT_SECRET", "")),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:5000/auth/google/callback"),
		},
		Weather: WeatherConfig{
			APIKey:  getEnv("WEATHER_API_KEY", ""),
			BaseURL: getEnv("WEATHER_API_URL", "https://api.weatherapi.com/v1"),
		},
		FoodData: FoodDataConfig{
			APIKey:  getEnv("USDA_API_KEY", ""),
			BaseURL: getEnv("USDA_API_URL", "https://api.nal.usda.gov/fdc/v1"),
		},
	}

	if err := cfg.Auth.validate(); err != nil {
		return nil, err
	}

	proxies, err := parsePrefixes(getSliceEnv("TRUSTED_PROXIES", nil))
	if err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	cfg.Server.TrustedProxies = proxies

	if _, err := time.LoadLocation(cfg.Server.Timezone); err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Server.Timezone, err)
	}

	return cfg, nil
}

func (c *AuthConfig) validate() error {
	switch c.TokenType {
	case TokenTypeJWT:
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 bytes, got %d", len(c.JWTSecret))
		}
	case TokenTypePaseto:
		// v4.local needs an exact 32 byte key
		if len(c.PasetoKey) != 32 {
			return fmt.Errorf("PASETO_KEY must be exactly 32 bytes, got %d", len(c.PasetoKey))
		}
	default:
		return fmt.Errorf("unsupported AUTH_TOKEN_TYPE %q", c.TokenType)
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.OTPRateLimit <= 0 {
		return fmt.Errorf("OTP_RATE_LIMIT must be positive, got %d", c.OTPRateLimit)
	}
	if c.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive, got %d", c.LoginRateLimit)
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"SESSION_TOKEN_DURATION", c.SessionTokenDuration},
		{"OTP_TTL", c.OTPTTL},
		{"OTP_RATE_WINDOW", c.OTPRateWindow},
		{"LOGIN_RATE_WINDOW", c.LoginWindow},
		{"RESET_COOLDOWN", c.ResetCooldown},
		{"OTP_SWEEP_PERIOD", c.OTPSweepPeriod},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	// Add channel_binding if configured (required for Neon DB)
	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

// Location returns the configured time zone, falling back to UTC
func (c *ServerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// parsePrefixes accepts CIDRs ("10.0.0.0/8") and bare addresses ("10.1.2.3")
func parsePrefixes(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}

		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// getDurationEnv accepts either a plain number of seconds or a Go duration string ("10m")
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
