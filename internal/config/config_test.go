package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_APP_PORT"

	// 环境变量未设置时，应该返回默认值
	_ = os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "9000" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "9000")
	}

	t.Setenv(key, "8080")
	if got := getEnv(key, "9000"); got != "8080" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "8080")
	}
}

func TestLoadReadsAuthAndPorts(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("APP_PORT", "1234")
	t.Setenv("APP_BASIC_USER", "user")
	t.Setenv("APP_BASIC_PASS", "pass")
	t.Setenv("ARCHIVE_RETENTION_DAYS", "3")

	cfg := Load()
	if cfg.AppPort != "1234" {
		t.Fatalf("AppPort = %q, want %q", cfg.AppPort, "1234")
	}
	if cfg.BasicAuthUser != "user" || cfg.BasicAuthPass != "pass" {
		t.Fatalf("BasicAuthUser/Pass not loaded correctly: %+v", cfg)
	}
	if cfg.ArchiveRetention != 72*time.Hour {
		t.Fatalf("ArchiveRetention = %v, want 72h", cfg.ArchiveRetention)
	}
}

func TestLoadTOMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newsvoice.toml")
	content := `
backend_url = "http://backend:8000"
breaking_cron = "*/10 * * * *"
archive_retention_days = 14
poller_tz = "Asia/Ho_Chi_Minh"
app_port = "7000"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "9100")
	t.Setenv("ARCHIVE_RETENTION_DAYS", "")
	t.Setenv("BACKEND_URL", "")
	t.Setenv("BREAKING_CRON", "")
	t.Setenv("POLLER_TZ", "")

	cfg := Load()
	if cfg.BackendURL != "http://backend:8000" || cfg.BreakingCron != "*/10 * * * *" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.AppPort != "9100" {
		t.Fatalf("env should win over file, AppPort = %q", cfg.AppPort)
	}
	if cfg.ArchiveRetention != 14*24*time.Hour {
		t.Fatalf("ArchiveRetention = %v", cfg.ArchiveRetention)
	}
	if cfg.CleanupCron != "0 3 * * *" {
		t.Fatalf("missing keys should keep defaults, CleanupCron = %q", cfg.CleanupCron)
	}
}

func TestLocationFallback(t *testing.T) {
	if loc := (&Config{PollerTZ: "Not/AZone"}).Location(); loc != time.Local {
		t.Fatalf("invalid zone should fall back to local, got %v", loc)
	}
	if loc := (&Config{PollerTZ: "UTC"}).Location(); loc.String() != "UTC" {
		t.Fatalf("Location = %v", loc)
	}
}
