// Package config loads process configuration from the environment, with
// defaults suitable for local development.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full set of tunables the streamgraph daemon reads at
// startup.
type Config struct {
	Port            string
	GraphFile       string
	WatchGraphFile  bool
	MetricsInterval time.Duration
	AdminUsername   string
	AdminPassword   string
	AuthSecret      string
	LoginMaxFails   int
	LoginWindowSecs int
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		GraphFile:       getEnv("GRAPH_FILE", "./data/graph.json"),
		WatchGraphFile:  getEnvAsBool("WATCH_GRAPH_FILE", false),
		MetricsInterval: getEnvAsDuration("METRICS_INTERVAL", 5*time.Second),
		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "change-me"),
		AuthSecret:      getEnv("AUTH_SECRET", "change-me-in-production-please"),
		LoginMaxFails:   getEnvAsInt("LOGIN_MAX_FAILS", 5),
		LoginWindowSecs: getEnvAsInt("LOGIN_WINDOW_SECONDS", 900),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultVal
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultVal
}
