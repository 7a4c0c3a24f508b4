package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadEnv sync.Once

// Config returns a single environment value, reading .env on first use.
func Config(key string) string {
	loadEnv.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Warning: .env file not found, reading from system environment variables")
		}
	})
	return os.Getenv(key)
}

type Settings struct {
	Environment string
	Port        string
	DatabaseURL string
	JWTSecret   string

	// PlatformFeeRate is the commission percentage applied when the
	// instructor has no active subscription plan.
	PlatformFeeRate float64

	BrevoAPIKey      string
	BrevoSenderEmail string
	BrevoSenderName  string

	PayPalClientID  string
	PayPalSecret    string
	PayPalAPIBase   string
	PayPalReturnURL string
	PayPalCancelURL string

	MidtransServerKey  string
	MidtransProduction bool

	CloudinaryURL string

	// FrontendURL prefixes links sent by email.
	FrontendURL string
	// Location is the wall clock lesson dates and times are written in.
	Location *time.Location

	AdminEmail    string
	AdminPassword string
	AdminFullName string
}

func Load() (Settings, error) {
	s := Settings{
		Environment:       valueOrDefault(Config("ENV"), "development"),
		Port:              valueOrDefault(Config("PORT"), "8080"),
		DatabaseURL:       Config("DATABASE_URL"),
		JWTSecret:         Config("JWT_SECRET"),
		BrevoAPIKey:       Config("BREVO_API_KEY"),
		BrevoSenderEmail:  valueOrDefault(Config("BREVO_SENDER_EMAIL"), "no-reply@autoescola.app"),
		BrevoSenderName:   valueOrDefault(Config("BREVO_SENDER_NAME"), "Drive Tutor"),
		PayPalClientID:    Config("PAYPAL_CLIENT_ID"),
		PayPalSecret:      Config("PAYPAL_SECRET"),
		PayPalAPIBase:     valueOrDefault(Config("PAYPAL_API_BASE"), "https://api-m.sandbox.paypal.com"),
		PayPalReturnURL:   Config("PAYPAL_RETURN_URL"),
		PayPalCancelURL:   Config("PAYPAL_CANCEL_URL"),
		MidtransServerKey: Config("MIDTRANS_SERVER_KEY"),
		CloudinaryURL:     Config("CLOUDINARY_URL"),
		FrontendURL:       valueOrDefault(Config("FRONTEND_URL"), "http://localhost:3000"),
		AdminEmail:        Config("ADMIN_EMAIL"),
		AdminPassword:     Config("ADMIN_PASSWORD"),
		AdminFullName:     valueOrDefault(Config("ADMIN_FULL_NAME"), "Administrator"),
	}

	rate, err := strconv.ParseFloat(valueOrDefault(Config("PLATFORM_FEE_RATE"), "10"), 64)
	if err != nil || rate < 0 || rate > 100 {
		return s, fmt.Errorf("PLATFORM_FEE_RATE must be a percentage between 0 and 100")
	}
	s.PlatformFeeRate = rate

	s.MidtransProduction, _ = strconv.ParseBool(valueOrDefault(Config("MIDTRANS_PRODUCTION"), "false"))

	loc, err := time.LoadLocation(valueOrDefault(Config("TIMEZONE"), "America/Sao_Paulo"))
	if err != nil {
		return s, fmt.Errorf("TIMEZONE: %w", err)
	}
	s.Location = loc

	if s.JWTSecret == "" {
		if s.Environment == "production" {
			return s, fmt.Errorf("JWT_SECRET is required in production")
		}
		s.JWTSecret = "development-secret"
	}

	return s, nil
}

func valueOrDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
