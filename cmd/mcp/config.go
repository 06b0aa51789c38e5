package main

import "os"

// Config holds environment-based configuration for the MCP sidecar.
type Config struct {
	AzureSubscriptionID string
	DataDir             string
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		AzureSubscriptionID: os.Getenv("AZURE_SUBSCRIPTION_ID"),
		DataDir:             getEnvOrDefault("DATA_DIR", "./data"),
	}
}

// HasAzure returns true if an Azure subscription is configured.
func (c *Config) HasAzure() bool {
	return c.AzureSubscriptionID != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
