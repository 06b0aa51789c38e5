package main

import "os"

// Config holds environment-based configuration for the panel.
type Config struct {
	Port    string
	DataDir string
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Port:    getEnvOrDefault("PORT", "3000"),
		DataDir: getEnvOrDefault("DATA_DIR", "./data"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
