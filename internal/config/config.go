package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		ID             string `yaml:"id"`
		TTL            string `yaml:"ttl"`
		SubmitCooldown string `yaml:"submit_cooldown"`
	} `yaml:"quiz"`
	Auth struct {
		JWTSecret           string   `yaml:"jwt_secret"`
		TokenTTL            string   `yaml:"token_ttl"`
		VerifyTTL           string   `yaml:"verify_ttl"`
		AllowedEmailDomains []string `yaml:"allowed_email_domains"`
		RegisterSecret      string   `yaml:"register_secret"`
		BcryptCost          int      `yaml:"bcrypt_cost"`
	} `yaml:"auth"`
	Mail struct {
		Host                string `yaml:"host"`
		Port                int    `yaml:"port"`
		Username            string `yaml:"username"`
		Password            string `yaml:"password"`
		From                string `yaml:"from"`
		VerifyBaseURL       string `yaml:"verify_base_url"`
		AutoVerifyOnFailure bool   `yaml:"auto_verify_on_failure"`
	} `yaml:"mail"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Load reads YAML config from path, then applies environment overrides. A .env
// file in the working directory is loaded first when present. A missing config
// file is not an error: defaults and the environment are used instead.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Default returns the built-in settings.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "3001"
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.Quiz.ID = "main"
	cfg.Quiz.TTL = "10m"
	cfg.Quiz.SubmitCooldown = "5s"
	cfg.Auth.TokenTTL = "24h"
	cfg.Auth.VerifyTTL = "1h"
	cfg.Auth.AllowedEmailDomains = []string{"@ewhain.net", "@ewha.ac.kr"}
	cfg.Auth.BcryptCost = 10
	cfg.Mail.Host = "smtp.gmail.com"
	cfg.Mail.Port = 587
	cfg.Mail.VerifyBaseURL = "http://localhost:3001/api/users/verify"
	cfg.Log.Level = "info"
	return cfg
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.Postgres.URL, "DATABASE_URL")
	setFromEnv(&cfg.Redis.Addr, "REDIS_ADDR")
	setFromEnv(&cfg.Redis.Password, "REDIS_PASSWORD")
	setFromEnv(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setFromEnv(&cfg.Auth.RegisterSecret, "SECRET_WORD_FOR_REGISTER")
	setFromEnv(&cfg.Mail.Username, "MAIL_USER")
	setFromEnv(&cfg.Mail.Password, "MAIL_PASS")
	setFromEnv(&cfg.Log.Level, "LOG_LEVEL")
	if v := os.Getenv("MAIL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Mail.Port = port
		}
	}
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
