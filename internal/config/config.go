package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	// Signing secret shared with the identity provider realm (HS256).
	JWTSecret string

	// Base URL of the frontend; invitation links point at its /register page.
	FrontendURL string

	// How long a team invitation stays valid.
	InviteValidity time.Duration

	Keycloak KeycloakConfig
	SMTP     SMTPConfig
}

type KeycloakConfig struct {
	BaseURL       string
	Realm         string
	ClientID      string
	ClientSecret  string
	AdminUser     string
	AdminPassword string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	inviteValidity, err := time.ParseDuration(getEnv("INVITE_VALIDITY", "168h"))
	if err != nil {
		inviteValidity = 168 * time.Hour
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnvOrPanic("JWT_SECRET"),

		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		InviteValidity: inviteValidity,

		Keycloak: KeycloakConfig{
			BaseURL:       getEnv("KEYCLOAK_URL", "http://localhost:8180"),
			Realm:         getEnv("KEYCLOAK_REALM", "teamster"),
			ClientID:      getEnv("KEYCLOAK_CLIENT_ID", "teamster-api"),
			ClientSecret:  getEnv("KEYCLOAK_CLIENT_SECRET", ""),
			AdminUser:     getEnv("KEYCLOAK_ADMIN_USER", "admin"),
			AdminPassword: getEnv("KEYCLOAK_ADMIN_PASSWORD", ""),
		},

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
