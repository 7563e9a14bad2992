package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shift-kanri/config"
	"shift-kanri/internal/api/handler"
	"shift-kanri/internal/api/router"
	"shift-kanri/internal/repository"
	"shift-kanri/internal/service"
	"shift-kanri/pkg/database"
	applogger "shift-kanri/pkg/logger"
	"shift-kanri/pkg/redis"
)

func main() {
	// 1. 設定読み込み
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定の読み込みに失敗: %v\n", err)
		os.Exit(1)
	}

	// 2. ロガー初期化
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ロガーの初期化に失敗: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("アプリケーション起動中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. データベース接続
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}

	// 3.1 マイグレーション適用
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("sql.DB の取得に失敗", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// 4. Redis 接続（任意：失敗してもレート制限なしで起動を続ける）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 接続に失敗。レート制限なしで起動します", zap.Error(err))
		rdb = nil
	}

	// 5. 依存注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, logger)
	h := handler.NewHandler(svc)

	// 6. ルータ初期化
	engine := router.Setup(cfg, h, rdb, logger)

	// 7. HTTP サーバ起動（graceful shutdown 対応）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP サーバ起動", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP サーバ異常終了", zap.Error(err))
		}
	}()

	// 8. シグナルを待って graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("終了シグナル受信。シャットダウンを開始します", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("サーバ停止時に異常", zap.Error(err))
	}

	if closeDB, _ := db.DB(); closeDB != nil {
		closeDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("サーバを停止しました")
}
