package shared

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	BaseURL      string // listing base, e.g. https://www.trustpilot.com/review
	UserAgent    string // empty -> randomized per run
	MinInterval  time.Duration
	WaitTimeout  time.Duration // dynamic fetch: wait for review list
	PageTimeout  time.Duration // dynamic fetch: whole render
	Workers      int
	CacheTTL     time.Duration
	PageCacheTTL time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	return Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ""),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/trustharvest?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		BaseURL:      env("BASE_URL", "https://www.trustpilot.com/review"),
		UserAgent:    env("USER_AGENT", ""),
		MinInterval:  time.Duration(atoi("MIN_INTERVAL_MS", 500)) * time.Millisecond,
		WaitTimeout:  time.Duration(atoi("WAIT_TIMEOUT_SECONDS", 10)) * time.Second,
		PageTimeout:  time.Duration(atoi("PAGE_TIMEOUT_SECONDS", 60)) * time.Second,
		Workers:      atoi("HARVEST_WORKERS", 2),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		PageCacheTTL: time.Duration(atoi("PAGE_CACHE_TTL_SECONDS", 3600)) * time.Second,
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
