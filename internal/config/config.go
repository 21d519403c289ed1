package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	RedisURL           string
	BaseURL            string // Public base URL embedded in short links and QR targets
	JWTSecret          string // Secret key for JWT token signing
	JWTTTL             int    // JWT token expiration time in hours
	IPHashSalt         string // Salt mixed into visitor IP hashes
	AllowPublicSignup  bool
	SuperuserEmail     string
	SuperuserPassword  string
	QRDefaultSize      int     // Rendered QR size in pixels when the request omits one
	RateLimitRPS       float64 // Rate limit for general API endpoints (requests per second)
	RateLimitBurst     int
	RateLimitAuthRPS   float64 // Stricter limit for auth endpoints
	RateLimitAuthBurst int
	RedirectRPS        float64 // More lenient limit for redirects
	RedirectBurst      int
}

func Load() *Config {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTTTL:             getEnvInt("JWT_TTL_HOURS", 24),
		IPHashSalt:         getEnv("IP_HASH_SALT", "makemeshort_salt"),
		AllowPublicSignup:  getEnvBool("ALLOW_PUBLIC_SIGNUP", false),
		SuperuserEmail:     getEnv("SUPERUSER_EMAIL", ""),
		SuperuserPassword:  getEnv("SUPERUSER_PASSWORD", ""),
		QRDefaultSize:      getEnvInt("QR_DEFAULT_SIZE", 200),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitAuthRPS:   getEnvFloat("RATE_LIMIT_AUTH_RPS", 5),
		RateLimitAuthBurst: getEnvInt("RATE_LIMIT_AUTH_BURST", 10),
		RedirectRPS:        getEnvFloat("RATE_LIMIT_REDIRECT_RPS", 30),
		RedirectBurst:      getEnvInt("RATE_LIMIT_REDIRECT_BURST", 60),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
