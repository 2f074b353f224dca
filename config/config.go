package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port           string
	Store          string // "postgres" or "memory"
	DatabaseURL    string
	DBMaxConns     int32
	DBPreferIPv4   bool
	RequestTimeout time.Duration
	CORSOrigins    []string
	Debug          bool
	LogFormat      string

	DefaultUserPassword string

	MailHost     string
	MailPort     int
	MailUsername string
	MailPassword string
	MailFrom     string
	MailTimeout  time.Duration

	// RedisURL enables the board snapshot cache when set.
	RedisURL string
	CacheTTL time.Duration
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:                get("PORT", "8080"),
		Store:               strings.ToLower(get("STORE", "postgres")),
		DBMaxConns:          int32(getInt("DB_MAX_CONNS", 10)),
		DBPreferIPv4:        getBool("DB_PREFER_IPV4", false),
		RequestTimeout:      getDuration("REQUEST_TIMEOUT", 5*time.Second),
		CORSOrigins:         splitList(get("CORS_ORIGINS", "*")),
		Debug:               getBool("DEBUG", false),
		LogFormat:           strings.ToLower(get("LOG_FORMAT", "text")),
		DefaultUserPassword: get("DEFAULT_USER_PASSWORD", "password"),
		MailHost:            get("MAIL_HOST", ""),
		MailPort:            getInt("MAIL_PORT", 587),
		MailUsername:        get("MAIL_USERNAME", ""),
		MailPassword:        get("MAIL_PASSWORD", ""),
		MailFrom:            get("MAIL_FROM", "no-reply@businessboard.local"),
		MailTimeout:         getDuration("MAIL_TIMEOUT", 10*time.Second),
		RedisURL:            get("REDIS_URL", ""),
		CacheTTL:            getDuration("CACHE_TTL", 30*time.Second),
	}
	switch cfg.Store {
	case "postgres":
		cfg.DatabaseURL = must("DATABASE_URL")
	case "memory":
		cfg.DatabaseURL = get("DATABASE_URL", "")
	default:
		log.Fatalf("invalid STORE: %q (want postgres or memory)", cfg.Store)
	}
	return cfg
}

// ConfigureLogging applies the level and formatter to the standard logrus logger.
func (c Config) ConfigureLogging() {
	if c.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env: %s", k)
	}
	return v
}

func getInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Fatalf("invalid %s: %q", k, v)
	}
	return n
}

func getBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("invalid %s: %q", k, v)
	}
	return b
}

func getDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Fatalf("invalid %s: %q", k, v)
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
