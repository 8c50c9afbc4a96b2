package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DBDSN          string
	CatalogPath    string
	CatalogSheet   string
	TextsPath      string
	LogFile        string
	LogLevel       string
	BotToken       string
	AdminID        int64
	AdminTokenHash string
	ManagerContact string
	SessionTTL     time.Duration
	SessionMax     int
	BroadcastRate  float64
	PollTimeout    int
}

// Load reads .env (when present) and then the environment. Variables already
// set in the environment win over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv(), nil
}

func FromEnv() Config {
	return Config{
		Port:           getEnv("PORT", "8080"),
		DBDSN:          getEnv("DB_DSN", "database/cart.db"), // parent dir is created on open
		CatalogPath:    getEnv("CATALOG_PATH", "data/products.xlsx"),
		CatalogSheet:   getEnv("CATALOG_SHEET", ""),
		TextsPath:      getEnv("TEXTS_PATH", ""),
		LogFile:        getEnv("LOG_FILE", "./techstore.log"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		BotToken:       getEnv("BOT_TOKEN", ""),
		AdminID:        getInt64("ADMIN_ID", 0),
		AdminTokenHash: getEnv("ADMIN_TOKEN_HASH", ""),
		ManagerContact: getEnv("MANAGER_CONTACT", "@Abu_Alonse"),
		SessionTTL:     getDuration("SESSION_TTL", 24*time.Hour),
		SessionMax:     getInt("SESSION_MAX", 10000),
		BroadcastRate:  getFloat("BROADCAST_RATE", 25),
		PollTimeout:    getInt("POLL_TIMEOUT", 60),
	}
}

// Fields is the loggable view of c; secrets only show whether they are set.
func (c Config) Fields() map[string]any {
	return map[string]any{
		"port":             c.Port,
		"db_dsn":           c.DBDSN,
		"catalog_path":     c.CatalogPath,
		"catalog_sheet":    c.CatalogSheet,
		"texts_path":       c.TextsPath,
		"log_file":         c.LogFile,
		"log_level":        c.LogLevel,
		"bot_token":        redact(c.BotToken),
		"admin_id":         c.AdminID,
		"admin_token_hash": redact(c.AdminTokenHash),
		"manager_contact":  c.ManagerContact,
		"session_ttl":      c.SessionTTL.String(),
		"session_max":      c.SessionMax,
		"broadcast_rate":   c.BroadcastRate,
		"poll_timeout":     c.PollTimeout,
	}
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "[set]"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func getInt64(key string, def int64) int64 {
	if n, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return n
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}
