// internal/config/config.go
//
// 由環境變數載入服務設定；.env 檔為選用，由 main 先以 godotenv 載入。

package config

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// AppConfig 為服務啟動所需的全部設定。
type AppConfig struct {
	HTTPAddr string
	DataFile string

	BankName string
	BankIFSC string

	// RedisAddr 為空時不發佈交易事件。
	RedisAddr     string
	RedisPass     string
	EventsChannel string

	LogLevel    zapcore.Level
	CORSOrigins []string
}

// Load 讀取環境變數並套用預設值。
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DataFile:      getEnv("DATA_FILE", "data.json"),
		BankName:      getEnv("BANK_NAME", "STATE BANK OF GO"),
		BankIFSC:      getEnv("BANK_IFSC", "SBOG0001234"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPass:     getEnv("REDIS_PASS", ""),
		EventsChannel: getEnv("EVENTS_CHANNEL", "ledger_events"),
		LogLevel:      getLevel("LOG_LEVEL", zapcore.InfoLevel),
		CORSOrigins:   getEnvSlice("CORS_ORIGINS", []string{"*"}),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// getLevel 解析 debug / info / warn / error；無法解析時使用預設值。
func getLevel(key string, fallback zapcore.Level) zapcore.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return lvl
}
