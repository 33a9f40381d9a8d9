// cmd/server/main.go

// 本服務提供開戶、存提款、轉帳、計息、月費與透支等 RESTful API。
// 此檔案負責載入設定、初始化模組（bank, server, storage, events），
// 並啟動 HTTP 伺服器；啟動時載入 JSON 快照，結束前再保存一次。

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bankledger/internal/bank"
	"bankledger/internal/config"
	"bankledger/internal/events"
	"bankledger/internal/server"
	"bankledger/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Printf("bank server: %v", err)
		os.Exit(1)
	}
}

// run 回傳錯誤而非直接結束行程，讓 defer（logger.Sync、rdb.Close）得以執行。
func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env vars")
	}
	cfg := config.Load()

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	b := bank.NewBank(
		bank.WithLogger(logger),
		bank.WithIdentity(cfg.BankName, cfg.BankIFSC),
	)

	// 嘗試從上次的 JSON 快照載入資料，若不存在則以空銀行啟動
	snap, err := storage.LoadSnapshot(cfg.DataFile)
	switch {
	case err == nil:
		if err := b.Restore(snap); err != nil {
			logger.Error("restore snapshot", zap.String("file", cfg.DataFile), zap.Error(err))
			return fmt.Errorf("restore snapshot %s: %w", cfg.DataFile, err)
		}
		logger.Info("snapshot restored", zap.String("file", cfg.DataFile), zap.Int("accounts", len(snap.Accounts)))
	case errors.Is(err, storage.ErrNoSnapshot):
		logger.Info("no snapshot found, starting empty", zap.String("file", cfg.DataFile))
	default:
		logger.Error("load snapshot", zap.String("file", cfg.DataFile), zap.Error(err))
		return fmt.Errorf("load snapshot: %w", err)
	}

	// 請求並發觸發的寫入由 Writer 序列化
	persist := storage.NewWriter(cfg.DataFile, b.Snapshot).Save

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithCORSOrigins(cfg.CORSOrigins),
	}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       0,
		})
		defer rdb.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, events will fail until it recovers", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		cancel()
		opts = append(opts, server.WithPublisher(events.NewRedisPublisher(rdb, cfg.EventsChannel, logger)))
		logger.Info("ledger events enabled", zap.String("addr", cfg.RedisAddr), zap.String("channel", cfg.EventsChannel))
	}

	s := server.NewServer(b, persist, opts...)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("bank server starting", zap.String("addr", cfg.HTTPAddr), zap.String("bank", cfg.BankName))
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
		cancel()
	}

	if err := persist(); err != nil {
		logger.Error("final snapshot failed", zap.Error(err))
		return fmt.Errorf("final snapshot: %w", err)
	}
	return nil
}
