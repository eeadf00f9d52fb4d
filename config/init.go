package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/inboxsweep/inboxsweep/internal/logger"
	"github.com/inboxsweep/inboxsweep/internal/tracing"
)

type Config struct {
	AppConfig         *AppConfig
	Logger            *logger.Config
	Tracing           *tracing.JaegerConfig
	GoogleOAuthConfig *GoogleOAuthConfig
	CleanupConfig     *CleanupConfig
	IMAPConfig        *IMAPConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:         &AppConfig{},
		Logger:            &logger.Config{},
		Tracing:           &tracing.JaegerConfig{},
		GoogleOAuthConfig: &GoogleOAuthConfig{},
		CleanupConfig:     &CleanupConfig{},
		IMAPConfig:        &IMAPConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading inboxsweep config: %v", err)
	}

	return config, nil
}
