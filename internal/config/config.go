// Package config resolves server configuration from flags and
// environment variables, in that precedence order, with an optional
// .env file loaded first via godotenv.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything main needs to wire up the server. The
// WebSocket endpoint and the read-only admin surface share one
// listener, so there is a single port.
type Config struct {
	Host     string
	Port     int
	StoreDir string
}

const (
	defaultHost     = "0.0.0.0"
	defaultPort     = 5678
	defaultStoreDir = "./data"
)

// Load parses args against flags seeded from environment variables
// (which are themselves seeded from a .env file, if present), so the
// precedence is flag > env > .env > built-in default.
func Load(args []string) (Config, error) {
	dotEnvPath := firstNonEmpty(os.Getenv("SCRABBLE_DOTENV"), ".env")
	if err := godotenv.Load(dotEnvPath); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config: load %s: %w", dotEnvPath, err)
	}

	fs := flag.NewFlagSet("scrabbled", flag.ContinueOnError)
	host := fs.String("host", envOrDefault("SCRABBLE_HOST", defaultHost), "address to listen on")
	port := fs.Int("port", envIntOrDefault("SCRABBLE_PORT", defaultPort), "port for the WebSocket and admin HTTP server")
	storeDir := fs.String("store-dir", envOrDefault("SCRABBLE_STORE_DIR", defaultStoreDir), "directory event logs are persisted under")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return Config{
		Host:     *host,
		Port:     *port,
		StoreDir: *storeDir,
	}, nil
}

func envOrDefault(key, def string) string {
	return firstNonEmpty(os.Getenv(key), def)
}

func envIntOrDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
