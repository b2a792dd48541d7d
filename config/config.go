package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ChallengeTransport values accepted in OTP_TRANSPORT.
const (
	TransportLedger = "ledger"
	TransportToken  = "token"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string

	JWTSecret         string
	JWTPreviousSecret string
	JWTIssuer         string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	PurposeTokenTTL time.Duration

	SessionTTL    time.Duration
	OTPTTL        time.Duration
	OTPCodeLength int
	OTPRateWindow time.Duration
	OTPRateMax    int
	OTPTransport  string

	SweepInterval time.Duration

	ResendAPIKey string
	EmailFrom    string
	AppName      string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("error load env %s", err)
	}

	return Config{
		HTTPAddr:    envString("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTPreviousSecret: os.Getenv("JWT_PREVIOUS_SECRET"),
		JWTIssuer:         envString("JWT_ISSUER", "dacsanviet"),

		AccessTokenTTL:  envDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL: envDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		PurposeTokenTTL: envDuration("PURPOSE_TOKEN_TTL", 5*time.Minute),

		SessionTTL:    envDuration("SESSION_TTL", 7*24*time.Hour),
		OTPTTL:        envDuration("OTP_TTL", 5*time.Minute),
		OTPCodeLength: envInt("OTP_CODE_LENGTH", 6),
		OTPRateWindow: envDuration("OTP_RATE_WINDOW", 5*time.Minute),
		OTPRateMax:    envInt("OTP_RATE_MAX", 3),
		OTPTransport:  envString("OTP_TRANSPORT", TransportLedger),

		SweepInterval: envDuration("SWEEP_INTERVAL", time.Hour),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    envString("EMAIL_FROM", "no-reply@dacsanviet.vn"),
		AppName:      envString("APP_NAME", "DacSanViet"),
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using default", key, raw)
		return fallback
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid %s=%q, using default", key, raw)
		return fallback
	}
	return value
}
