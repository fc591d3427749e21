// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON file and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address" env:"SERVER_ADDRESS"`

	// DatabaseDSN holds the PostgreSQL connection string. Empty selects the in-memory store.
	DatabaseDSN string `json:"database_dsn" env:"DATABASE_DSN"`

	// JWTSecret is the HMAC key used to sign session tokens.
	JWTSecret string `json:"jwt_secret" env:"JWT_SECRET"`

	// LogLevel is the minimum zap level to log.
	LogLevel string `json:"log_level" env:"LOG_LEVEL"`

	// BcryptCost is the work factor for password hashing.
	BcryptCost int `json:"bcrypt_cost" env:"BCRYPT_COST"`

	// Seed loads fixture users and todos on startup.
	Seed bool `json:"seed" env:"SEED"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"-" env:"SHUTDOWN_TIMEOUT"`

	// Config is the path to the Config file.
	Config string `json:"-" env:"CONFIG"`
}

// environment is the subset of variables that only come from the process environment.
type environment struct {
	// HerokuPort is the bare port number some platforms inject.
	HerokuPort string `env:"PORT"`
}

// Default returns the built-in defaults.
func Default() *Options {
	return &Options{
		Port:            "localhost:3000",
		LogLevel:        "info",
		BcryptCost:      10,
		ShutdownTimeout: 10 * time.Second,
		Config:          "config.json",
	}
}

// Parse parses the command-line flags, the JSON config file and environment
// variables, in that order of increasing precedence over the JSON file.
// args are the command-line arguments without the program name.
func Parse(args []string) (*Options, error) {
	options := Default()

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	port := fs.String("a", "", "run on ip:port server")
	dsn := fs.String("d", "", "db address")
	secret := fs.String("s", "", "token signing secret")
	level := fs.String("l", "", "log level")
	seed := fs.Bool("seed", false, "load fixture data on startup")
	fs.StringVar(&options.Config, "config", options.Config, "path to config file")
	fs.StringVar(&options.Config, "c", options.Config, "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Explicit flags override the JSON file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			options.Port = *port
		case "d":
			options.DatabaseDSN = *dsn
		case "s":
			options.JWTSecret = *secret
		case "l":
			options.LogLevel = *level
		case "seed":
			options.Seed = *seed
		}
	})

	var extra environment
	if err := env.Parse(&extra); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if extra.HerokuPort != "" {
		options.Port = ":" + extra.HerokuPort
	}

	if err := env.Parse(options); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if options.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required (-s or JWT_SECRET)")
	}

	return options, nil
}
