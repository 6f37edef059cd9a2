package config

import (
	"os"
	"strconv"

	"github.com/spf13/viper"
)

func getEnv(key, defaultValue string) string {
	if viper.IsSet(key) {
		if value := viper.GetString(key); value != "" {
			return value
		}
	}
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if viper.IsSet(key) {
		if value := viper.GetInt(key); value != 0 {
			return value
		}
	}
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
