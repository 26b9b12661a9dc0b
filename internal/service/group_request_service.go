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

// ── 入组请求模块业务错误 ──

var (
	ErrRequestNotFound     = errors.New("入组请求不存在")
	ErrRequestResolved     = errors.New("入组请求已被处理")
	ErrRequestNoAccess     = errors.New("无权处理该入组请求")
	ErrGroupFull           = errors.New("小组人数已满")
	ErrJoinRequestExists   = errors.New("学生已有待处理的入组申请")
	ErrInviteRequestExists = errors.New("该学生已有本组的待处理邀请")
)

// GroupRequestService 入组请求中介业务接口
//
// Join 由学生发起、组长裁决；Invite 由组长发起、学生裁决。
// 两类请求的批准都在事务内复核阶段、容量与学生组队自由，
// 批准成功后该学生其余全部待处理请求级联置为 Rejected。
type GroupRequestService interface {
	CreateJoinRequest(ctx context.Context, req *dto.CreateJoinRequestRequest, callerID string) (*dto.GroupRequestResponse, error)
	// CreateInviteRequest 组长批量邀请：全部受邀人预校验通过后才落库，
	// 任何一人不合格则整批拒绝
	CreateInviteRequest(ctx context.Context, groupID string, req *dto.CreateInviteRequestRequest, callerID string) ([]dto.GroupRequestResponse, error)
	UpdateRequestStatus(ctx context.Context, requestID string, req *dto.UpdateRequestStatusRequest, callerID, callerRole string) (*dto.GroupRequestResponse, error)
	List(ctx context.Context, req *dto.GroupRequestListRequest, callerID, callerRole string) ([]dto.GroupRequestResponse, int64, error)
}

type groupRequestService struct {
	repo   *repository.Repository
	mail   Mailer
	logger *zap.Logger
}

// NewGroupRequestService 创建 GroupRequestService 实例
func NewGroupRequestService(repo *repository.Repository, mail Mailer, logger *zap.Logger) GroupRequestService {
	return &groupRequestService{repo: repo, mail: mail, logger: logger}
}

// ────────────────────── CreateJoinRequest ──────────────────────

func (s *groupRequestService) CreateJoinRequest(ctx context.Context, req *dto.CreateJoinRequestRequest, callerID string) (*dto.GroupRequestResponse, error) {
	var created *model.GroupRequest

	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		group, term, err := s.loadGroupAndTerm(ctx, tx, req.GroupID)
		if err != nil {
			return err
		}
		if err := requireTermStatus(term, "申请入组", model.TermStatusPreparing); err != nil {
			return err
		}
		if err := s.requireJoinable(ctx, tx, callerID, term); err != nil {
			return err
		}
		if err := s.requireCapacity(ctx, tx, group.GroupID, term, 1); err != nil {
			return err
		}

		// 每名学生全系统最多一条待处理 Join
		if _, err := tx.GroupRequest.GetPendingJoinByStudent(ctx, callerID); err == nil {
			return ErrJoinRequestExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询待处理入组申请失败", zap.Error(err))
			return err
		}

		request := &model.GroupRequest{
			StudentID: callerID,
			GroupID:   req.GroupID,
			Type:      model.RequestTypeJoin,
			Status:    model.RequestStatusPending,
		}
		request.CreatedBy = &callerID
		request.UpdatedBy = &callerID
		if err := tx.GroupRequest.Create(ctx, request); err != nil {
			s.logger.Error("创建入组申请失败", zap.Error(err))
			return err
		}
		created = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	enqueueEmail(ctx, s.mail, s.logger, emailTypeRequestCreated, map[string]interface{}{
		"request_id": created.RequestID,
		"group_id":   created.GroupID,
		"student_id": created.StudentID,
		"type":       created.Type,
	})

	return toGroupRequestResponse(created), nil
}

// ────────────────────── CreateInviteRequest ──────────────────────

func (s *groupRequestService) CreateInviteRequest(ctx context.Context, groupID string, req *dto.CreateInviteRequestRequest, callerID string) ([]dto.GroupRequestResponse, error) {
	var created []model.GroupRequest

	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		group, term, err := s.loadGroupAndTerm(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := requireTermStatus(term, "邀请入组", model.TermStatusPreparing); err != nil {
			return err
		}
		if err := requireGroupLeader(ctx, tx, groupID, callerID); err != nil {
			return err
		}
		// 容量按整批计算，现有人数 + 本批邀请数不得超员
		if err := s.requireCapacity(ctx, tx, group.GroupID, term, len(req.StudentIDs)); err != nil {
			return err
		}

		// 全部受邀人先过校验，任何一人不合格则整批不落库
		requests := make([]model.GroupRequest, 0, len(req.StudentIDs))
		for _, studentID := range req.StudentIDs {
			if err := s.requireJoinable(ctx, tx, studentID, term); err != nil {
				return fmt.Errorf("受邀学生 %s 校验失败：%w", studentID, err)
			}
			if _, err := tx.GroupRequest.GetPendingInviteByStudentAndGroup(ctx, studentID, groupID); err == nil {
				return fmt.Errorf("%w：学生 %s", ErrInviteRequestExists, studentID)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Error("查询待处理邀请失败", zap.Error(err))
				return err
			}
			request := model.GroupRequest{
				StudentID: studentID,
				GroupID:   groupID,
				Type:      model.RequestTypeInvite,
				Status:    model.RequestStatusPending,
			}
			request.CreatedBy = &callerID
			request.UpdatedBy = &callerID
			requests = append(requests, request)
		}

		if err := tx.GroupRequest.CreateBatch(ctx, requests); err != nil {
			s.logger.Error("批量创建邀请失败", zap.Error(err))
			return err
		}
		created = requests
		return nil
	})
	if err != nil {
		return nil, err
	}

	enqueueEmail(ctx, s.mail, s.logger, emailTypeRequestCreated, map[string]interface{}{
		"group_id": groupID,
		"type":     model.RequestTypeInvite,
		"count":    len(created),
	})

	result := make([]dto.GroupRequestResponse, 0, len(created))
	for i := range created {
		result = append(result, *toGroupRequestResponse(&created[i]))
	}
	return result, nil
}

// ────────────────────── UpdateRequestStatus ──────────────────────

func (s *groupRequestService) UpdateRequestStatus(ctx context.Context, requestID string, req *dto.UpdateRequestStatusRequest, callerID, callerRole string) (*dto.GroupRequestResponse, error) {
	var updated *model.GroupRequest

	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		request, err := tx.GroupRequest.GetByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			s.logger.Error("查询入组请求失败", zap.Error(err))
			return err
		}
		// 已处理的请求报冲突并附现有处理结果
		if request.IsResolved() {
			return fmt.Errorf("%w：当前状态 %s", ErrRequestResolved, request.Status)
		}
		if err := s.requireRequestActor(ctx, tx, request, req.Status, callerID, callerRole); err != nil {
			return err
		}

		if req.Status == model.RequestStatusApproved {
			if err := s.approveRequest(ctx, tx, request, callerID); err != nil {
				return err
			}
		} else {
			if err := tx.GroupRequest.UpdateStatus(ctx, request.RequestID, req.Status, callerID); err != nil {
				s.logger.Error("更新请求状态失败", zap.Error(err))
				return err
			}
		}
		request.Status = req.Status
		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	enqueueEmail(ctx, s.mail, s.logger, emailTypeRequestStatus, map[string]interface{}{
		"request_id": updated.RequestID,
		"group_id":   updated.GroupID,
		"student_id": updated.StudentID,
		"status":     updated.Status,
	})

	return toGroupRequestResponse(updated), nil
}

// ────────────────────── List ──────────────────────

func (s *groupRequestService) List(ctx context.Context, req *dto.GroupRequestListRequest, callerID, callerRole string) ([]dto.GroupRequestResponse, int64, error) {
	filter := repository.GroupRequestFilter{
		GroupID: req.GroupID,
		Type:    req.Type,
		Status:  req.Status,
		Offset:  req.GetOffset(),
		Limit:   req.GetPageSize(),
	}
	// 学生只能查看自己名下的请求；指定 group_id 时须是该组成员，
	// 组外学生查他组只落到自己名下的那部分
	if callerRole == model.RoleStudent {
		if req.GroupID == "" {
			filter.StudentID = callerID
		} else if _, err := s.repo.Membership.GetByStudentAndGroup(ctx, callerID, req.GroupID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Error("查询成员记录失败", zap.Error(err))
				return nil, 0, err
			}
			filter.StudentID = callerID
		}
	}

	requests, total, err := s.repo.GroupRequest.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出入组请求失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.GroupRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, *toGroupRequestResponse(&requests[i]))
	}
	return result, total, nil
}

// ────────────────────── 内部辅助 ──────────────────────

func (s *groupRequestService) loadGroupAndTerm(ctx context.Context, tx *repository.Repository, groupID string) (*model.Group, *model.Term, error) {
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

// requireJoinable 学生组队自由检查：已注册本学期、注册状态开放、尚未入组
func (s *groupRequestService) requireJoinable(ctx context.Context, tx *repository.Repository, studentID string, term *model.Term) error {
	enrollment, err := tx.Enrollment.GetByStudentAndTerm(ctx, studentID, term.TermID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolledInTerm
		}
		s.logger.Error("查询注册记录失败", zap.Error(err))
		return err
	}
	if enrollment.Status != model.EnrollmentStatusNotYet {
		return fmt.Errorf("%w：当前注册状态 %s", ErrEnrollmentNotOpen, enrollment.Status)
	}
	if _, err := tx.Membership.GetByStudentAndTerm(ctx, studentID, term.TermID); err == nil {
		return ErrAlreadyInGroup
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询成员记录失败", zap.Error(err))
		return err
	}
	return nil
}

// requireCapacity 容量检查：现有人数 + 新增人数不得超过学期的组员上限
func (s *groupRequestService) requireCapacity(ctx context.Context, tx *repository.Repository, groupID string, term *model.Term, incoming int) error {
	count, err := tx.Membership.CountByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("统计组员失败", zap.Error(err))
		return err
	}
	if count+int64(incoming) > int64(term.MaxGroup) {
		return fmt.Errorf("%w：当前人数 %d，上限 %d", ErrGroupFull, count, term.MaxGroup)
	}
	return nil
}

// requireRequestActor 请求处理的能力检查：
// Join 由组长裁决、申请人撤回；Invite 由受邀人裁决、组长撤回；教务不受限
func (s *groupRequestService) requireRequestActor(ctx context.Context, tx *repository.Repository, request *model.GroupRequest, newStatus, callerID, callerRole string) error {
	if callerRole == model.RoleModerator {
		return nil
	}
	decide := newStatus == model.RequestStatusApproved || newStatus == model.RequestStatusRejected

	switch request.Type {
	case model.RequestTypeJoin:
		if decide {
			if err := requireGroupLeader(ctx, tx, request.GroupID, callerID); err != nil {
				return ErrRequestNoAccess
			}
			return nil
		}
		if request.StudentID != callerID {
			return ErrRequestNoAccess
		}
		return nil
	case model.RequestTypeInvite:
		if decide {
			if request.StudentID != callerID {
				return ErrRequestNoAccess
			}
			return nil
		}
		if err := requireGroupLeader(ctx, tx, request.GroupID, callerID); err != nil {
			return ErrRequestNoAccess
		}
		return nil
	default:
		return ErrRequestNoAccess
	}
}

// approveRequest 批准入组：事务内复核阶段、容量与组队自由后建立成员记录，
// 该学生其余全部待处理请求级联置为 Rejected
func (s *groupRequestService) approveRequest(ctx context.Context, tx *repository.Repository, request *model.GroupRequest, callerID string) error {
	group, term, err := s.loadGroupAndTerm(ctx, tx, request.GroupID)
	if err != nil {
		return err
	}
	if err := requireTermStatus(term, "批准入组请求", model.TermStatusPreparing); err != nil {
		return err
	}
	if err := s.requireJoinable(ctx, tx, request.StudentID, term); err != nil {
		return err
	}
	if err := s.requireCapacity(ctx, tx, group.GroupID, term, 1); err != nil {
		return err
	}

	membership := &model.Membership{
		StudentID: request.StudentID,
		GroupID:   request.GroupID,
		TermID:    term.TermID,
		IsLeader:  false,
	}
	membership.CreatedBy = &callerID
	if err := tx.Membership.Create(ctx, membership); err != nil {
		s.logger.Error("创建成员记录失败", zap.Error(err))
		return err
	}
	if err := tx.GroupRequest.UpdateStatus(ctx, request.RequestID, model.RequestStatusApproved, callerID); err != nil {
		s.logger.Error("更新请求状态失败", zap.Error(err))
		return err
	}
	if _, err := tx.GroupRequest.RejectPendingByStudent(ctx, request.StudentID, request.RequestID, callerID); err != nil {
		s.logger.Error("级联拒绝学生其余请求失败", zap.Error(err))
		return err
	}
	return nil
}

func toGroupRequestResponse(request *model.GroupRequest) *dto.GroupRequestResponse {
	return &dto.GroupRequestResponse{
		ID:        request.RequestID,
		StudentID: request.StudentID,
		GroupID:   request.GroupID,
		Type:      request.Type,
		Status:    request.Status,
		CreatedAt: request.CreatedAt.Format(time.RFC3339),
		UpdatedAt: request.UpdatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/group_request_service.go
