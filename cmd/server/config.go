package main

import (
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type config struct {
	Address       string
	DatabasePath  string
	EncryptionKey string
	UploadsDir    string
	Timezone      string
	Watch         bool
	LogLevel      slog.Level
	// DemoAccount is login:password of an account created on startup
	DemoAccount string
}

func envOr(key, def string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return def
}

// parseConfig reads flags. Every flag defaults to its environment variable,
// which may come from a .env file in the working directory.
func parseConfig(args []string) (*config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	watch, _ := strconv.ParseBool(envOr("WATCH", "false"))

	cfg := &config{}
	var logLevel string
	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	flags.StringVar(&cfg.Address, "address", envOr("ADDRESS", ":http"), "http address to listen to")
	flags.StringVar(&cfg.DatabasePath, "database-path", envOr("DATABASE_PATH", "sleeplog.db"), "path to the database")
	flags.StringVar(&cfg.EncryptionKey, "encryption-key", envOr("ENCRYPTION_KEY", "please-change-me"), "encryption key for session cookies")
	flags.StringVar(&cfg.UploadsDir, "uploads-dir", envOr("UPLOADS_DIR", "uploads"), "directory to store uploaded avatars in")
	flags.StringVar(&cfg.Timezone, "timezone", envOr("TIMEZONE", ""), "timezone used to decide what today is, local if empty")
	flags.BoolVar(&cfg.Watch, "watch", watch, "if true, will serve from filesystem")
	flags.StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "info"), "debug, info, warn or error")
	flags.StringVar(&cfg.DemoAccount, "demo-account", envOr("DEMO_ACCOUNT", ""), "login:password of an account to create on startup")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
		return nil, err
	}
	return cfg, nil
}
