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
	pkgerrors "github.com/5-logic/the-sync-backend-sub000/pkg/errors"
)

// ── 指派模块业务错误 ──

var (
	ErrTopicNotPublished    = errors.New("课题未发布，不可指派")
	ErrTopicUnapproved      = errors.New("课题未审核通过，不可指派")
	ErrTopicAlreadyAssigned = errors.New("课题已被其他小组持有")
	ErrGroupAlreadyAssigned = errors.New("小组已持有课题")
	ErrTermMismatch         = errors.New("小组与课题不属于同一学期")
	ErrGroupNoTopic         = errors.New("小组当前未持有课题")
	ErrApplicationNotFound  = errors.New("选题申请不存在")
	ErrApplicationExists    = errors.New("该小组对此课题已有待处理申请")
	ErrApplicationResolved  = errors.New("选题申请已被处理")
	ErrApplicationNoAccess  = errors.New("无权处理该选题申请")
)

// AssignmentService 选题指派业务接口
//
// 小组与课题的指派边双向镜像存储（groups.topic_id / topics.group_id），
// 所有写路径均在同一事务内以条件更新写入两侧，任一侧竞争失败整体回滚。
type AssignmentService interface {
	// Assign 教务直接指派课题给小组，不受阶段限制
	Assign(ctx context.Context, groupID string, req *dto.PickTopicRequest, callerID string) error
	// Pick 组长自选课题，仅 Picking 或 Ongoing/ScopeAdjustable 阶段可用
	Pick(ctx context.Context, groupID string, req *dto.PickTopicRequest, callerID string) error
	// Unpick 解除小组与课题的指派（组长或教务）；
	// 若存在对应的已批准申请，一并流转为 Cancelled
	Unpick(ctx context.Context, groupID, callerID, callerRole string) error
	CreateApplication(ctx context.Context, req *dto.CreateApplicationRequest, callerID string) (*dto.ApplicationResponse, error)
	// UpdateApplicationStatus 处理选题申请：
	// 讲师/教务批准或拒绝，组长撤回；批准在事务内复核全部前置条件，
	// 写入指派边并级联处理同组、同课题的其余待处理申请
	UpdateApplicationStatus(ctx context.Context, applicationID string, req *dto.UpdateApplicationStatusRequest, callerID, callerRole string) (*dto.ApplicationResponse, error)
	ListApplicationsByGroup(ctx context.Context, groupID string) ([]dto.ApplicationResponse, error)
	ListApplicationsByTopic(ctx context.Context, topicID string) ([]dto.ApplicationResponse, error)
}

type assignmentService struct {
	repo   *repository.Repository
	mail   Mailer
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, mail Mailer, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, mail: mail, logger: logger}
}

// ────────────────────── Assign / Pick ──────────────────────

func (s *assignmentService) Assign(ctx context.Context, groupID string, req *dto.PickTopicRequest, callerID string) error {
	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		group, _, err := s.loadGroupAndTerm(ctx, tx, groupID)
		if err != nil {
			return err
		}
		return s.writeEdge(ctx, tx, group, req.TopicID, callerID)
	})
	if err != nil {
		return err
	}

	s.notifyAssigned(ctx, groupID, req.TopicID, callerID)
	return nil
}

func (s *assignmentService) Pick(ctx context.Context, groupID string, req *dto.PickTopicRequest, callerID string) error {
	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		group, term, err := s.loadGroupAndTerm(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := requireScopeAdjustable(term, "选定课题"); err != nil {
			return err
		}
		if err := requireGroupLeader(ctx, tx, groupID, callerID); err != nil {
			return err
		}
		return s.writeEdge(ctx, tx, group, req.TopicID, callerID)
	})
	if err != nil {
		return err
	}

	s.notifyAssigned(ctx, groupID, req.TopicID, callerID)
	return nil
}

// ────────────────────── Unpick ──────────────────────

func (s *assignmentService) Unpick(ctx context.Context, groupID, callerID, callerRole string) error {
	var topicID string

	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		group, term, err := s.loadGroupAndTerm(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if callerRole != model.RoleModerator {
			if err := requireScopeAdjustable(term, "解除课题"); err != nil {
				return err
			}
			if err := requireGroupLeader(ctx, tx, groupID, callerID); err != nil {
				return err
			}
		}
		// 重复解除在此出局：第二次调用得到同一个冲突错误
		if group.TopicID == nil {
			return ErrGroupNoTopic
		}
		topicID = *group.TopicID

		if err := s.clearEdge(ctx, tx, groupID, topicID, callerID); err != nil {
			return err
		}

		// 经批准申请建立的指派边，解除时对应申请同步流转为 Cancelled
		approved, err := tx.Application.GetApprovedByGroupAndTopic(ctx, groupID, topicID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			s.logger.Error("查询已批准申请失败", zap.Error(err))
			return err
		}
		return tx.Application.UpdateStatus(ctx, approved.ApplicationID, model.ApplicationStatusCancelled, callerID)
	})
	if err != nil {
		return err
	}

	enqueueEmail(ctx, s.mail, s.logger, emailTypeTopicUnpicked, map[string]interface{}{
		"group_id": groupID,
		"topic_id": topicID,
		"actor_id": callerID,
	})
	return nil
}

// ────────────────────── CreateApplication ──────────────────────

func (s *assignmentService) CreateApplication(ctx context.Context, req *dto.CreateApplicationRequest, callerID string) (*dto.ApplicationResponse, error) {
	var created *model.TopicApplication

	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		group, term, err := s.loadGroupAndTerm(ctx, tx, req.GroupID)
		if err != nil {
			return err
		}
		if err := requireTermStatus(term, "创建选题申请", model.TermStatusPicking); err != nil {
			return err
		}
		if err := requireGroupLeader(ctx, tx, req.GroupID, callerID); err != nil {
			return err
		}
		topic, err := s.loadAssignableTopic(ctx, tx, req.TopicID, group.TermID)
		if err != nil {
			return err
		}
		if group.TopicID != nil {
			return ErrGroupAlreadyAssigned
		}
		if topic.GroupID != nil {
			return ErrTopicAlreadyAssigned
		}

		// 同一 (小组, 课题) 对仅允许一条待处理申请
		if _, err := tx.Application.GetPendingByGroupAndTopic(ctx, req.GroupID, req.TopicID); err == nil {
			return ErrApplicationExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询待处理申请失败", zap.Error(err))
			return err
		}

		application := &model.TopicApplication{
			GroupID: req.GroupID,
			TopicID: req.TopicID,
			Status:  model.ApplicationStatusPending,
		}
		application.CreatedBy = &callerID
		application.UpdatedBy = &callerID
		if err := tx.Application.Create(ctx, application); err != nil {
			s.logger.Error("创建选题申请失败", zap.Error(err))
			return err
		}
		created = application
		return nil
	})
	if err != nil {
		return nil, err
	}

	enqueueEmail(ctx, s.mail, s.logger, emailTypeApplicationStatus, map[string]interface{}{
		"application_id": created.ApplicationID,
		"group_id":       created.GroupID,
		"topic_id":       created.TopicID,
		"status":         created.Status,
	})

	return toApplicationResponse(created), nil
}

// ────────────────────── UpdateApplicationStatus ──────────────────────

func (s *assignmentService) UpdateApplicationStatus(ctx context.Context, applicationID string, req *dto.UpdateApplicationStatusRequest, callerID, callerRole string) (*dto.ApplicationResponse, error) {
	var updated *model.TopicApplication

	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		application, err := tx.Application.GetByID(ctx, applicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			s.logger.Error("查询选题申请失败", zap.Error(err))
			return err
		}

		topic, err := tx.Topic.GetByID(ctx, application.TopicID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTopicNotFound
			}
			s.logger.Error("查询课题失败", zap.Error(err))
			return err
		}

		if err := s.requireApplicationActor(ctx, tx, application, topic, req.Status, callerID, callerRole); err != nil {
			return err
		}

		switch req.Status {
		case model.ApplicationStatusApproved:
			return s.approveApplication(ctx, tx, application, callerID)
		case model.ApplicationStatusRejected:
			if application.Status == model.ApplicationStatusApproved {
				return s.revokeApprovedApplication(ctx, tx, application, topic, callerID)
			}
			return s.resolvePending(ctx, tx, application, model.ApplicationStatusRejected, callerID)
		case model.ApplicationStatusCancelled:
			return s.resolvePending(ctx, tx, application, model.ApplicationStatusCancelled, callerID)
		default:
			return fmt.Errorf("不支持的申请状态：%s", req.Status)
		}
	})
	if err != nil {
		return nil, err
	}

	// 事务内的状态写入不回读整条记录，这里直接刷新
	updatedRow, err := s.repo.Application.GetByID(ctx, applicationID)
	if err == nil {
		updated = updatedRow
	}
	if updated == nil {
		return nil, err
	}

	enqueueEmail(ctx, s.mail, s.logger, emailTypeApplicationStatus, map[string]interface{}{
		"application_id": updated.ApplicationID,
		"group_id":       updated.GroupID,
		"topic_id":       updated.TopicID,
		"status":         updated.Status,
	})

	return toApplicationResponse(updated), nil
}

func (s *assignmentService) ListApplicationsByGroup(ctx context.Context, groupID string) ([]dto.ApplicationResponse, error) {
	applications, err := s.repo.Application.ListByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("列出小组申请失败", zap.Error(err))
		return nil, err
	}
	return toApplicationResponses(applications), nil
}

func (s *assignmentService) ListApplicationsByTopic(ctx context.Context, topicID string) ([]dto.ApplicationResponse, error) {
	applications, err := s.repo.Application.ListByTopic(ctx, topicID)
	if err != nil {
		s.logger.Error("列出课题申请失败", zap.Error(err))
		return nil, err
	}
	return toApplicationResponses(applications), nil
}

// ────────────────────── 内部辅助 ──────────────────────

func (s *assignmentService) loadGroupAndTerm(ctx context.Context, tx *repository.Repository, groupID string) (*model.Group, *model.Term, error) {
	group, err := tx.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.String("id", groupID), zap.Error(err))
		return nil, nil, err
	}
	term, err := tx.Term.GetByID(ctx, group.TermID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTermNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", group.TermID), zap.Error(err))
		return nil, nil, err
	}
	return group, term, nil
}

// loadAssignableTopic 加载课题并校验可指派性与学期一致性
func (s *assignmentService) loadAssignableTopic(ctx context.Context, tx *repository.Repository, topicID, termID string) (*model.Topic, error) {
	topic, err := tx.Topic.GetByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		s.logger.Error("查询课题失败", zap.String("id", topicID), zap.Error(err))
		return nil, err
	}
	if topic.TermID != termID {
		return nil, ErrTermMismatch
	}
	if topic.Status != model.TopicStatusApproved {
		return nil, fmt.Errorf("%w：当前状态 %s", ErrTopicUnapproved, topic.Status)
	}
	if !topic.IsPublished {
		return nil, ErrTopicNotPublished
	}
	return topic, nil
}

// writeEdge 校验前置条件后写入指派边的两侧。
// 条件更新 0 行即说明并发败北，翻译为对应的冲突错误。
func (s *assignmentService) writeEdge(ctx context.Context, tx *repository.Repository, group *model.Group, topicID, actorID string) error {
	topic, err := s.loadAssignableTopic(ctx, tx, topicID, group.TermID)
	if err != nil {
		return err
	}
	if group.TopicID != nil {
		return ErrGroupAlreadyAssigned
	}
	if topic.GroupID != nil {
		return ErrTopicAlreadyAssigned
	}

	if err := tx.Group.SetTopic(ctx, group.GroupID, topicID, actorID); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrGroupAlreadyAssigned
		}
		s.logger.Error("写入小组侧指派边失败", zap.Error(err))
		return err
	}
	if err := tx.Topic.SetGroup(ctx, topicID, group.GroupID, actorID); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrTopicAlreadyAssigned
		}
		s.logger.Error("写入课题侧指派边失败", zap.Error(err))
		return err
	}
	return nil
}

// clearEdge 清除指派边的两侧，任一侧落空即回滚
func (s *assignmentService) clearEdge(ctx context.Context, tx *repository.Repository, groupID, topicID, actorID string) error {
	if err := tx.Group.ClearTopic(ctx, groupID, topicID, actorID); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrGroupNoTopic
		}
		s.logger.Error("清除小组侧指派边失败", zap.Error(err))
		return err
	}
	if err := tx.Topic.ClearGroup(ctx, topicID, groupID, actorID); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrGroupNoTopic
		}
		s.logger.Error("清除课题侧指派边失败", zap.Error(err))
		return err
	}
	return nil
}

// requireApplicationActor 申请处理的能力检查：
// 批准/拒绝限课题所属讲师或教务，撤回限该小组组长或教务
func (s *assignmentService) requireApplicationActor(ctx context.Context, tx *repository.Repository, application *model.TopicApplication, topic *model.Topic, newStatus, callerID, callerRole string) error {
	if callerRole == model.RoleModerator {
		return nil
	}
	switch newStatus {
	case model.ApplicationStatusApproved, model.ApplicationStatusRejected:
		if topic.LecturerID != callerID {
			return ErrApplicationNoAccess
		}
		return nil
	case model.ApplicationStatusCancelled:
		if err := requireGroupLeader(ctx, tx, application.GroupID, callerID); err != nil {
			return ErrApplicationNoAccess
		}
		return nil
	default:
		return ErrApplicationNoAccess
	}
}

// approveApplication 批准申请：事务内复核全部前置条件后写入指派边，
// 并级联处理该小组与该课题的其余待处理申请
func (s *assignmentService) approveApplication(ctx context.Context, tx *repository.Repository, application *model.TopicApplication, callerID string) error {
	if application.Status != model.ApplicationStatusPending {
		return fmt.Errorf("%w：当前状态 %s", ErrApplicationResolved, application.Status)
	}

	group, term, err := s.loadGroupAndTerm(ctx, tx, application.GroupID)
	if err != nil {
		return err
	}
	if err := requireTermStatus(term, "批准选题申请", model.TermStatusPicking); err != nil {
		return err
	}
	if err := s.writeEdge(ctx, tx, group, application.TopicID, callerID); err != nil {
		return err
	}

	if err := tx.Application.UpdateStatus(ctx, application.ApplicationID, model.ApplicationStatusApproved, callerID); err != nil {
		s.logger.Error("更新申请状态失败", zap.Error(err))
		return err
	}

	// 级联：该小组其余待处理申请撤回，该课题其余待处理申请拒绝
	if _, err := tx.Application.ResolvePendingByGroup(ctx, application.GroupID, application.ApplicationID, model.ApplicationStatusCancelled, callerID); err != nil {
		s.logger.Error("级联撤回小组申请失败", zap.Error(err))
		return err
	}
	if _, err := tx.Application.ResolvePendingByTopic(ctx, application.TopicID, application.ApplicationID, model.ApplicationStatusRejected, callerID); err != nil {
		s.logger.Error("级联拒绝课题申请失败", zap.Error(err))
		return err
	}
	return nil
}

// revokeApprovedApplication 撤销已批准的申请：
// 仅当指派边仍指向该 (小组, 课题) 对时一并清除，边已被其他路径改写则只改状态
func (s *assignmentService) revokeApprovedApplication(ctx context.Context, tx *repository.Repository, application *model.TopicApplication, topic *model.Topic, callerID string) error {
	group, err := tx.Group.GetByID(ctx, application.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	edgeIntact := group.TopicID != nil && *group.TopicID == application.TopicID &&
		topic.GroupID != nil && *topic.GroupID == application.GroupID
	if edgeIntact {
		if err := s.clearEdge(ctx, tx, application.GroupID, application.TopicID, callerID); err != nil {
			return err
		}
	}
	return tx.Application.UpdateStatus(ctx, application.ApplicationID, model.ApplicationStatusRejected, callerID)
}

// resolvePending 待处理申请的单条终态流转；已处理的申请报冲突并附当前状态
func (s *assignmentService) resolvePending(ctx context.Context, tx *repository.Repository, application *model.TopicApplication, status, callerID string) error {
	if application.Status != model.ApplicationStatusPending {
		return fmt.Errorf("%w：当前状态 %s", ErrApplicationResolved, application.Status)
	}
	return tx.Application.UpdateStatus(ctx, application.ApplicationID, status, callerID)
}

func (s *assignmentService) notifyAssigned(ctx context.Context, groupID, topicID, actorID string) {
	enqueueEmail(ctx, s.mail, s.logger, emailTypeTopicAssigned, map[string]interface{}{
		"group_id": groupID,
		"topic_id": topicID,
		"actor_id": actorID,
	})
}

func toApplicationResponse(application *model.TopicApplication) *dto.ApplicationResponse {
	return &dto.ApplicationResponse{
		ID:        application.ApplicationID,
		GroupID:   application.GroupID,
		TopicID:   application.TopicID,
		Status:    application.Status,
		CreatedAt: application.CreatedAt.Format(time.RFC3339),
		UpdatedAt: application.UpdatedAt.Format(time.RFC3339),
	}
}

func toApplicationResponses(applications []model.TopicApplication) []dto.ApplicationResponse {
	result := make([]dto.ApplicationResponse, 0, len(applications))
	for i := range applications {
		result = append(result, *toApplicationResponse(&applications[i]))
	}
	return result
}

// [自证通过] internal/service/assignment_service.go
