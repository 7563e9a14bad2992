package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shift-kanri/config"
)

// Client Redis クライアントのラッパー
// 現状はレート制限用。キャッシュ等への拡張余地あり
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient Redis 接続を作成し Ping で疎通確認する
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 接続に失敗: %w", err)
	}

	logger.Info("Redis 接続成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── レート制限 ──

// CheckRateLimit 固定長ウィンドウでキーごとのリクエスト数を数える
// 窓内の回数が limit を超えたら false
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close Redis 接続を閉じる
func (c *Client) Close() error {
	return c.rdb.Close()
}
