package config

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/openestate/realty-service/internal/utils"
)

type Config struct {
	AppName     string
	AppPort     string
	AppUrl      string
	DBUrl       string
	JWTSecret   string
	AMQPUrl     string // optional; empty disables event publishing
	DealQueue   string
	CORSOrigins []string
}

const defaultDealQueue = "deals.closed"

// LoadConfig reads everything from the environment. A local .env file
// is honored when present so dev setups do not need exported vars.
func LoadConfig() *Config {
	_ = godotenv.Load()

	appName := os.Getenv("APP_NAME")
	if appName == "" {
		appName = "realty-service"
	}

	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	appUrl := os.Getenv("APP_URL")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL env var is missing")
	}
	dbUrl := os.Getenv("DATABASE_URL")
	if dbUrl == "" {
		utils.Logger.Fatal("DATABASE_URL env var is missing")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		utils.Logger.Fatal("JWT_SECRET env var is missing")
	}

	dealQueue := os.Getenv("DEAL_QUEUE")
	if dealQueue == "" {
		dealQueue = defaultDealQueue
	}

	corsOrigins := []string{appUrl}
	if extra := os.Getenv("CORS_EXTRA_ORIGIN"); extra != "" {
		corsOrigins = append(corsOrigins, extra)
	}

	return &Config{
		AppName:     appName,
		AppPort:     appPort,
		AppUrl:      appUrl,
		DBUrl:       dbUrl,
		JWTSecret:   jwtSecret,
		AMQPUrl:     os.Getenv("AMQP_URL"),
		DealQueue:   dealQueue,
		CORSOrigins: corsOrigins,
	}
}
