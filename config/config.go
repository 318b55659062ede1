/*
config.go - Environment-driven server configuration

PURPOSE:
  Loads server settings from a .env file or environment variables via
  viper, with sane defaults for a single-venue deployment.

SEE ALSO:
  - cmd/server/main.go: Consumes the loaded config
*/
package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	App  AppConfig
	CORS CORSConfig
}

type AppConfig struct {
	Name        string
	Env         string
	Port        string
	DBPath      string
	CatalogPath string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "poscore")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("DB_PATH", "./data/poscore.db")
	viper.SetDefault("CATALOG_PATH", "./catalog.json")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")

	return &Config{
		App: AppConfig{
			Name:        viper.GetString("APP_NAME"),
			Env:         viper.GetString("APP_ENV"),
			Port:        viper.GetString("APP_PORT"),
			DBPath:      viper.GetString("DB_PATH"),
			CatalogPath: viper.GetString("CATALOG_PATH"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
		},
	}
}
