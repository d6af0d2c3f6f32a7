// Package config loads service settings from an optional YAML file with
// environment overrides. Environment wins so containerized deploys can
// keep a checked-in base file.
package config

import (
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	Addr            string  `yaml:"addr"`
	LogLevel        string  `yaml:"log_level"`
	DatabaseURL     string  `yaml:"database_url"`
	RedisURL        string  `yaml:"redis_url"`
	OpenRouteAPIKey string  `yaml:"openroute_api_key"`
	AuthMode        string  `yaml:"auth_mode"` // dev or hmac
	JWTSecret       string  `yaml:"jwt_secret"`
	RateRPS         float64 `yaml:"rate_rps"`
	RateBurst       int     `yaml:"rate_burst"`
}

// Load reads path (when non-empty) and then applies environment
// overrides. Missing file with an empty path is not an error; every
// setting has a usable default for local runs.
func Load(path string) (Settings, error) {
	s := Settings{
		Addr:      ":8080",
		LogLevel:  "INFO",
		AuthMode:  "dev",
		RateRPS:   50,
		RateBurst: 100,
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, err
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, err
		}
	}

	if v := os.Getenv("ADDR"); v != "" {
		s.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		s.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		s.RedisURL = v
	}
	if v := os.Getenv("OPENROUTESERVICE_API_KEY"); v != "" {
		s.OpenRouteAPIKey = v
	}
	if v := os.Getenv("AUTH_MODE"); v != "" {
		s.AuthMode = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		s.JWTSecret = v
	}
	if v := os.Getenv("RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			s.RateRPS = f
		}
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.RateBurst = n
		}
	}
	return s, nil
}

func (s *Settings) GetLogLevel() log.Level {
	switch s.LogLevel {
	case "DEBUG":
		return log.DebugLevel
	case "INFO":
		return log.InfoLevel
	case "WARN":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
