package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	// 后端地址：新闻、认证、TTS、音频服务都在同一个网关下
	BackendURL string

	BasicAuthUser string
	BasicAuthPass string
	WebRoot       string

	BreakingCron     string
	CleanupCron      string
	ArchiveRetention time.Duration

	PollerTZ    string
	SessionFile string
}

// fileConfig CONFIG_FILE 指向的 TOML，环境变量优先于文件
type fileConfig struct {
	AppPort              string `toml:"app_port"`
	PostgresDSN          string `toml:"postgres_dsn"`
	RedisAddr            string `toml:"redis_addr"`
	BackendURL           string `toml:"backend_url"`
	WebRoot              string `toml:"web_root"`
	BreakingCron         string `toml:"breaking_cron"`
	CleanupCron          string `toml:"cleanup_cron"`
	ArchiveRetentionDays int    `toml:"archive_retention_days"`
	PollerTZ             string `toml:"poller_tz"`
	SessionFile          string `toml:"session_file"`
}

func Load() *Config {
	var fc fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			log.Printf("warn: config file ignored: %v", err)
		} else {
			fc = loaded
		}
	}

	retentionDays := fc.ArchiveRetentionDays
	if retentionDays <= 0 {
		retentionDays = 7
	}
	if v := os.Getenv("ARCHIVE_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			retentionDays = n
		}
	}

	cfg := &Config{
		AppPort:          getEnv("APP_PORT", or(fc.AppPort, "9000")),
		PostgresDSN:      getEnv("POSTGRES_DSN", or(fc.PostgresDSN, "host=localhost user=newsvoice password=newsvoice dbname=newsvoice port=5432 sslmode=disable TimeZone=UTC")),
		RedisAddr:        getEnv("REDIS_ADDR", or(fc.RedisAddr, "localhost:6380")),
		BackendURL:       getEnv("BACKEND_URL", or(fc.BackendURL, "http://localhost:8000")),
		BasicAuthUser:    os.Getenv("APP_BASIC_USER"),
		BasicAuthPass:    os.Getenv("APP_BASIC_PASS"),
		WebRoot:          getEnv("WEB_ROOT", or(fc.WebRoot, "web/dist")),
		BreakingCron:     getEnv("BREAKING_CRON", or(fc.BreakingCron, "*/30 * * * *")),
		CleanupCron:      getEnv("CLEANUP_CRON", or(fc.CleanupCron, "0 3 * * *")),
		ArchiveRetention: time.Duration(retentionDays) * 24 * time.Hour,
		PollerTZ:         getEnv("POLLER_TZ", or(fc.PollerTZ, "Local")),
		SessionFile:      getEnv("SESSION_FILE", or(fc.SessionFile, defaultSessionFile())),
	}

	log.Printf("config loaded: port=%s backend=%s breaking=%s cleanup=%s", cfg.AppPort, cfg.BackendURL, cfg.BreakingCron, cfg.CleanupCron)
	return cfg
}

// Location 轮询器判断夜间时段使用的时区，无效时回退到本地时区
func (c *Config) Location() *time.Location {
	if c.PollerTZ == "" || c.PollerTZ == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.PollerTZ)
	if err != nil {
		log.Printf("warn: invalid POLLER_TZ %q, using local time: %v", c.PollerTZ, err)
		return time.Local
	}
	return loc
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	bs, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, fmt.Errorf("config file %s not found", path)
		}
		return fc, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(bs, &fc); err != nil {
		return fc, fmt.Errorf("parse config: %w", err)
	}
	return fc, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".newsvoice-session.toml"
	}
	return filepath.Join(dir, "newsvoice", "session.toml")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func or(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}
