package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Env         string
	Port        string
	FEURL       string
	AdminAPIKey string
}

type DataBaseConfig struct {
	URL  string
	Type string
}

type RedisConfig struct {
	URL string
}

type BackendConfig struct {
	URL         string
	AgentAPIURL string
	Timeout     time.Duration
}

type WizardConfig struct {
	EntryMode  string
	SessionTTL time.Duration
	// SubmitTimeout bounds how long a session may stay loading before an
	// unfinished submission or payment is treated as interrupted.
	SubmitTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret string
}

type EmailConfig struct {
	SMTPHost    string
	SMTPPort    int
	From        string
	Password    string
	OfficeEmail string
}

type Config struct {
	Server   ServerConfig
	Database DataBaseConfig
	Redis    RedisConfig
	Backend  BackendConfig
	Wizard   WizardConfig
	Auth     AuthConfig
	Email    EmailConfig
	IsDev    bool
}

func validateEnv() {
	environmentVariables := []string{
		// server
		"ENV",
		"PORT",
		"FE_URL",
		"ADMIN_API_KEY",
		// database
		"DB_URL",
		// backend
		"BACKEND_URL",
		// auth
		"JWT_SECRET",
	}
	for _, env := range environmentVariables {
		if os.Getenv(env) == "" {
			log.Fatalf("Environment variable %s is not set", env)
		}
	}

}

func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	validateEnv()

	backendURL := os.Getenv("BACKEND_URL")

	return &Config{
		Server: ServerConfig{
			Env:         os.Getenv("ENV"),
			Port:        os.Getenv("PORT"),
			FEURL:       os.Getenv("FE_URL"),
			AdminAPIKey: os.Getenv("ADMIN_API_KEY"),
		},
		Database: DataBaseConfig{
			URL:  os.Getenv("DB_URL"),
			Type: getEnv("DB_TYPE", "postgres"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Backend: BackendConfig{
			URL:         backendURL,
			AgentAPIURL: getEnv("AGENT_API_URL", backendURL),
			Timeout:     getDuration("BACKEND_TIMEOUT", 30*time.Second),
		},
		Wizard: WizardConfig{
			EntryMode:     getEnv("WIZARD_ENTRY_MODE", "plain"),
			SessionTTL:    getDuration("WIZARD_SESSION_TTL", 24*time.Hour),
			SubmitTimeout: getDuration("WIZARD_SUBMIT_TIMEOUT", 2*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Email: EmailConfig{
			SMTPHost:    getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:    getInt("SMTP_PORT", 587),
			From:        getEnv("EMAIL_FROM", "no-reply@firstcaregroup.com"),
			Password:    os.Getenv("EMAIL_PASSWORD"),
			OfficeEmail: getEnv("OFFICE_EMAIL", "admin@firstcaregroup.com"),
		},

		IsDev: os.Getenv("ENV") == "development",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid duration for %s: %v, using %s", key, err, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid integer for %s: %v, using %d", key, err, fallback)
		return fallback
	}
	return n
}
