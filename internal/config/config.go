package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for a simulation run.
type Config struct {
	LogLevel    string
	LogFile     string // optional; logs are also appended here
	Rounds      int
	Seed        int64 // 0 derives a seed from the clock
	HistorySize int
	VWAPWindow  int // rounds
	BookDepth   int
	Scenario    string
}

// Load reads configuration from the environment, applies defaults, and
// validates values. If envPath names a readable file its entries are loaded
// first; variables already set in the environment take precedence. A
// missing env file is not an error.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	rounds, err := getInt("ROUNDS", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid ROUNDS: %w", err)
	}
	if rounds <= 0 {
		return nil, fmt.Errorf("invalid ROUNDS: must be > 0, got %d", rounds)
	}

	seed, err := getInt64("SEED", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid SEED: %w", err)
	}

	historySize, err := getInt("HISTORY_SIZE", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_SIZE: %w", err)
	}
	if historySize < 10 {
		return nil, fmt.Errorf("invalid HISTORY_SIZE: must be >= 10, got %d", historySize)
	}

	vwapWindow, err := getInt("VWAP_WINDOW", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid VWAP_WINDOW: %w", err)
	}
	if vwapWindow <= 0 {
		return nil, fmt.Errorf("invalid VWAP_WINDOW: must be > 0, got %d", vwapWindow)
	}

	bookDepth, err := getInt("BOOK_DEPTH", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOK_DEPTH: %w", err)
	}
	if bookDepth < 1 || bookDepth > 50 {
		return nil, fmt.Errorf("invalid BOOK_DEPTH: must be between 1 and 50, got %d", bookDepth)
	}

	return &Config{
		LogLevel:    logLevel,
		LogFile:     getStr("LOG_FILE", ""),
		Rounds:      rounds,
		Seed:        seed,
		HistorySize: historySize,
		VWAPWindow:  vwapWindow,
		BookDepth:   bookDepth,
		Scenario:    getStr("SCENARIO", ""),
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
