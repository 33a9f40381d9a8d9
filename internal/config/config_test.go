// internal/config/config_test.go

package config

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DATA_FILE", "BANK_NAME", "BANK_IFSC", "REDIS_ADDR", "REDIS_PASS", "EVENTS_CHANNEL", "LOG_LEVEL", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.HTTPAddr != ":8080" || cfg.DataFile != "data.json" || cfg.EventsChannel != "ledger_events" {
		t.Fatalf("defaults=%+v", cfg)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("redis should be disabled by default, got %q", cfg.RedisAddr)
	}
	if cfg.LogLevel != zapcore.InfoLevel || len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("defaults=%+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("BANK_NAME", "Test Bank")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg := Load()
	if cfg.HTTPAddr != ":9090" || cfg.BankName != "Test Bank" || cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.LogLevel != zapcore.DebugLevel {
		t.Fatalf("level=%v want debug", cfg.LogLevel)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("origins=%q", cfg.CORSOrigins)
	}
}

func TestLoadBadLevelFallsBack(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	if got := Load().LogLevel; got != zapcore.InfoLevel {
		t.Fatalf("level=%v want info", got)
	}
}
