package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/5-logic/the-sync-backend-sub000/config"
)

// Client Redis 客户端封装
// 当前用于 Token 黑名单与邮件任务队列
type Client struct {
	rdb          *goredis.Client
	queueKey     string
	scheduledKey string
	logger       *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, mailCfg *config.MailConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{
		rdb:          rdb,
		queueKey:     mailCfg.QueueKey,
		scheduledKey: mailCfg.ScheduledKey,
		logger:       logger,
	}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 邮件任务队列 ──
//
// 投递语义为 at-least-once：本服务只负责入队，由外部 worker 消费。
// 立即任务 LPUSH 到列表；延迟任务 ZADD 到有序集合（score = 到期时间戳毫秒），
// 由 worker 轮询搬运。

// EmailJob 邮件任务
type EmailJob struct {
	JobType   string                 `json:"job_type"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}

// EnqueueEmail 将单条邮件任务入队
func (c *Client) EnqueueEmail(ctx context.Context, job EmailJob) error {
	job.CreatedAt = time.Now()
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("序列化邮件任务失败: %w", err)
	}
	return c.rdb.LPush(ctx, c.queueKey, raw).Err()
}

// EnqueueEmailBulk 批量入队，delay > 0 时进入延迟集合
func (c *Client) EnqueueEmailBulk(ctx context.Context, jobs []EmailJob, delay time.Duration) error {
	if len(jobs) == 0 {
		return nil
	}
	now := time.Now()

	if delay <= 0 {
		raws := make([]interface{}, 0, len(jobs))
		for _, job := range jobs {
			job.CreatedAt = now
			raw, err := json.Marshal(job)
			if err != nil {
				return fmt.Errorf("序列化邮件任务失败: %w", err)
			}
			raws = append(raws, raw)
		}
		return c.rdb.LPush(ctx, c.queueKey, raws...).Err()
	}

	due := float64(now.Add(delay).UnixMilli())
	members := make([]goredis.Z, 0, len(jobs))
	for _, job := range jobs {
		job.CreatedAt = now
		raw, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("序列化邮件任务失败: %w", err)
		}
		members = append(members, goredis.Z{Score: due, Member: raw})
	}
	return c.rdb.ZAdd(ctx, c.scheduledKey, members...).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
