package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
}

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RedisURL string         `yaml:"redis_url"`
	Queue    string         `yaml:"queue"`
}

// loadConfig reads .env files, then the optional YAML file at path, then
// applies environment overrides.
func loadConfig(path string) (Config, error) {
	// Prefer the Rails app .env if present.
	_ = godotenv.Load("../benchmark_ui/.env")
	_ = godotenv.Load(".env")

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Database.Host, "POSTGRES_HOST")
	set(&cfg.Database.Port, "POSTGRES_PORT")
	set(&cfg.Database.User, "POSTGRES_USER")
	set(&cfg.Database.Password, "POSTGRES_PASSWORD")
	set(&cfg.Database.Name, "POSTGRES_DB")
	set(&cfg.Database.URL, "DATABASE_URL")
	set(&cfg.RedisURL, "REDIS_URL")
	set(&cfg.Queue, "WORKER_QUEUE")

	if cfg.RedisURL == "" {
		cfg.RedisURL = "redis://localhost:6379/0"
	}
	if cfg.Queue == "" {
		cfg.Queue = "default"
	}
}

func (c DatabaseConfig) DSN() (string, error) {
	if c.Name == "" {
		if c.URL != "" {
			return c.URL, nil
		}
		return "", errors.New("POSTGRES_DB not set; set env vars or DATABASE_URL")
	}
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, c.User, c.Password, c.Name), nil
}
