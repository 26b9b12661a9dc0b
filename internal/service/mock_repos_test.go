package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/5-logic/the-sync-backend-sub000/internal/model"
	"github.com/5-logic/the-sync-backend-sub000/internal/repository"
	pkgerrors "github.com/5-logic/the-sync-backend-sub000/pkg/errors"
	"github.com/5-logic/the-sync-backend-sub000/pkg/redis"
)

// ── Mock TxManager ──
//
// 测试中事务即直通调用：回调直接收到同一套 mock 仓储，
// 条件更新的乐观锁语义由各 mock 自身保证。

type mockTxManager struct {
	repo *repository.Repository
}

func (m *mockTxManager) WithTx(_ context.Context, fn func(txRepo *repository.Repository) error) error {
	return fn(m.repo)
}

// ── Mock Mailer ──

type mockMailer struct {
	jobs []redis.EmailJob
}

func (m *mockMailer) EnqueueEmail(_ context.Context, job redis.EmailJob) error {
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockMailer) EnqueueEmailBulk(_ context.Context, jobs []redis.EmailJob, _ time.Duration) error {
	m.jobs = append(m.jobs, jobs...)
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%03d", len(m.users)+1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByCode(_ context.Context, code string) (*model.User, error) {
	for _, u := range m.users {
		if u.Code == code {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock TermRepository ──

type mockTermRepo struct {
	terms map[string]*model.Term
}

func newMockTermRepo() *mockTermRepo {
	return &mockTermRepo{terms: make(map[string]*model.Term)}
}

func (m *mockTermRepo) Create(_ context.Context, term *model.Term) error {
	if term.TermID == "" {
		term.TermID = "term-" + term.Code
	}
	m.terms[term.TermID] = term
	return nil
}

func (m *mockTermRepo) GetByID(_ context.Context, id string) (*model.Term, error) {
	if t, ok := m.terms[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) GetByCode(_ context.Context, code string) (*model.Term, error) {
	for _, t := range m.terms {
		if t.Code == code {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) GetActive(_ context.Context) (*model.Term, error) {
	for _, t := range m.terms {
		if t.IsActive() {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) CountActive(_ context.Context) (int64, error) {
	var count int64
	for _, t := range m.terms {
		if t.IsActive() {
			count++
		}
	}
	return count, nil
}

func (m *mockTermRepo) List(_ context.Context) ([]model.Term, error) {
	var result []model.Term
	for _, t := range m.terms {
		result = append(result, *t)
	}
	return result, nil
}

func (m *mockTermRepo) Update(_ context.Context, term *model.Term) error {
	m.terms[term.TermID] = term
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	enrollments map[string]*model.Enrollment
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{enrollments: make(map[string]*model.Enrollment)}
}

func (m *mockEnrollmentRepo) Create(_ context.Context, enrollment *model.Enrollment) error {
	if enrollment.EnrollmentID == "" {
		enrollment.EnrollmentID = fmt.Sprintf("enroll-%03d", len(m.enrollments)+1)
	}
	m.enrollments[enrollment.EnrollmentID] = enrollment
	return nil
}

func (m *mockEnrollmentRepo) GetByStudentAndTerm(_ context.Context, studentID, termID string) (*model.Enrollment, error) {
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.TermID == termID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) ListByTerm(_ context.Context, termID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.TermID == termID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) CountNonTerminalByTerm(_ context.Context, termID string) (int64, error) {
	var count int64
	for _, e := range m.enrollments {
		if e.TermID == termID && !e.IsTerminal() {
			count++
		}
	}
	return count, nil
}

func (m *mockEnrollmentRepo) BulkUpdateStatusByTerm(_ context.Context, termID, fromStatus, toStatus, _ string) (int64, error) {
	var affected int64
	for _, e := range m.enrollments {
		if e.TermID == termID && e.Status == fromStatus {
			e.Status = toStatus
			affected++
		}
	}
	return affected, nil
}

// ── Mock GroupRepository ──

type mockGroupRepo struct {
	groups       map[string]*model.Group
	requirements map[string][]model.GroupRequirement
	members      *mockMembershipRepo // GetByIDWithDetail / ListByTerm 预载成员用
}

func newMockGroupRepo(members *mockMembershipRepo) *mockGroupRepo {
	return &mockGroupRepo{
		groups:       make(map[string]*model.Group),
		requirements: make(map[string][]model.GroupRequirement),
		members:      members,
	}
}

func (m *mockGroupRepo) Create(_ context.Context, group *model.Group) error {
	if group.GroupID == "" {
		group.GroupID = fmt.Sprintf("group-%03d", len(m.groups)+1)
	}
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) GetByIDWithDetail(ctx context.Context, id string) (*model.Group, error) {
	g, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := *g
	detail.Memberships, _ = m.members.ListByGroup(ctx, id)
	detail.Requirements = m.requirements[id]
	return &detail, nil
}

func (m *mockGroupRepo) ListByTerm(ctx context.Context, termID string) ([]model.Group, error) {
	var result []model.Group
	for id, g := range m.groups {
		if g.TermID == termID {
			detail := *g
			detail.Memberships, _ = m.members.ListByGroup(ctx, id)
			result = append(result, detail)
		}
	}
	return result, nil
}

func (m *mockGroupRepo) CountByTerm(_ context.Context, termID string) (int64, error) {
	var count int64
	for _, g := range m.groups {
		if g.TermID == termID {
			count++
		}
	}
	return count, nil
}

func (m *mockGroupRepo) MaxCodeSeqByTerm(_ context.Context, termID string) (int64, error) {
	var max int64
	for _, g := range m.groups {
		if g.TermID != termID {
			continue
		}
		idx := strings.LastIndex(g.Code, "-G")
		if idx < 0 {
			continue
		}
		n, err := strconv.ParseInt(g.Code[idx+2:], 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

func (m *mockGroupRepo) CountUnassignedByTerm(_ context.Context, termID string) (int64, error) {
	var count int64
	for _, g := range m.groups {
		if g.TermID == termID && g.TopicID == nil {
			count++
		}
	}
	return count, nil
}

func (m *mockGroupRepo) Update(_ context.Context, group *model.Group) error {
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) SetTopic(_ context.Context, groupID, topicID, _ string) error {
	g, ok := m.groups[groupID]
	if !ok || g.TopicID != nil {
		return pkgerrors.ErrOptimisticLock
	}
	g.TopicID = &topicID
	return nil
}

func (m *mockGroupRepo) ClearTopic(_ context.Context, groupID, topicID, _ string) error {
	g, ok := m.groups[groupID]
	if !ok || g.TopicID == nil || *g.TopicID != topicID {
		return pkgerrors.ErrOptimisticLock
	}
	g.TopicID = nil
	return nil
}

func (m *mockGroupRepo) ReplaceRequirements(_ context.Context, groupID string, requirements []model.GroupRequirement) error {
	m.requirements[groupID] = requirements
	return nil
}

func (m *mockGroupRepo) ListRequirements(_ context.Context, groupID string) ([]model.GroupRequirement, error) {
	return m.requirements[groupID], nil
}

func (m *mockGroupRepo) Delete(_ context.Context, id string) error {
	delete(m.groups, id)
	return nil
}

// ── Mock MembershipRepository ──

type mockMembershipRepo struct {
	memberships map[string]*model.Membership
}

func newMockMembershipRepo() *mockMembershipRepo {
	return &mockMembershipRepo{memberships: make(map[string]*model.Membership)}
}

func (m *mockMembershipRepo) Create(_ context.Context, membership *model.Membership) error {
	if membership.MembershipID == "" {
		membership.MembershipID = fmt.Sprintf("mem-%03d", len(m.memberships)+1)
	}
	m.memberships[membership.MembershipID] = membership
	return nil
}

func (m *mockMembershipRepo) GetByStudentAndTerm(_ context.Context, studentID, termID string) (*model.Membership, error) {
	for _, mem := range m.memberships {
		if mem.StudentID == studentID && mem.TermID == termID {
			return mem, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMembershipRepo) GetByStudentAndGroup(_ context.Context, studentID, groupID string) (*model.Membership, error) {
	for _, mem := range m.memberships {
		if mem.StudentID == studentID && mem.GroupID == groupID {
			return mem, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMembershipRepo) GetLeader(_ context.Context, groupID string) (*model.Membership, error) {
	for _, mem := range m.memberships {
		if mem.GroupID == groupID && mem.IsLeader {
			return mem, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMembershipRepo) ListByGroup(_ context.Context, groupID string) ([]model.Membership, error) {
	var result []model.Membership
	for _, mem := range m.memberships {
		if mem.GroupID == groupID {
			result = append(result, *mem)
		}
	}
	return result, nil
}

func (m *mockMembershipRepo) CountByGroup(_ context.Context, groupID string) (int64, error) {
	var count int64
	for _, mem := range m.memberships {
		if mem.GroupID == groupID {
			count++
		}
	}
	return count, nil
}

func (m *mockMembershipRepo) SetLeaderFlag(_ context.Context, membershipID string, isLeader bool, _ string) error {
	if mem, ok := m.memberships[membershipID]; ok {
		mem.IsLeader = isLeader
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockMembershipRepo) Delete(_ context.Context, membershipID string) error {
	delete(m.memberships, membershipID)
	return nil
}

func (m *mockMembershipRepo) DeleteByGroup(_ context.Context, groupID string) error {
	for id, mem := range m.memberships {
		if mem.GroupID == groupID {
			delete(m.memberships, id)
		}
	}
	return nil
}

// ── Mock TopicRepository ──

type mockTopicRepo struct {
	topics map[string]*model.Topic
}

func newMockTopicRepo() *mockTopicRepo {
	return &mockTopicRepo{topics: make(map[string]*model.Topic)}
}

func (m *mockTopicRepo) Create(_ context.Context, topic *model.Topic) error {
	if topic.TopicID == "" {
		topic.TopicID = fmt.Sprintf("topic-%03d", len(m.topics)+1)
	}
	m.topics[topic.TopicID] = topic
	return nil
}

func (m *mockTopicRepo) GetByID(_ context.Context, id string) (*model.Topic, error) {
	if t, ok := m.topics[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicRepo) List(_ context.Context, filter repository.TopicFilter) ([]model.Topic, int64, error) {
	var result []model.Topic
	for _, t := range m.topics {
		if filter.TermID != "" && t.TermID != filter.TermID {
			continue
		}
		if filter.LecturerID != "" && t.LecturerID != filter.LecturerID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.PublishedOnly && !t.IsPublished {
			continue
		}
		result = append(result, *t)
	}
	return result, int64(len(result)), nil
}

func (m *mockTopicRepo) CountAssignableByTerm(_ context.Context, termID string) (int64, error) {
	var count int64
	for _, t := range m.topics {
		if t.TermID == termID && t.IsAssignable() {
			count++
		}
	}
	return count, nil
}

func (m *mockTopicRepo) CountByLecturerAndTerm(_ context.Context, lecturerID, termID string) (int64, error) {
	var count int64
	for _, t := range m.topics {
		if t.LecturerID == lecturerID && t.TermID == termID {
			count++
		}
	}
	return count, nil
}

func (m *mockTopicRepo) Update(_ context.Context, topic *model.Topic) error {
	m.topics[topic.TopicID] = topic
	return nil
}

func (m *mockTopicRepo) SetGroup(_ context.Context, topicID, groupID, _ string) error {
	t, ok := m.topics[topicID]
	if !ok || t.GroupID != nil {
		return pkgerrors.ErrOptimisticLock
	}
	t.GroupID = &groupID
	return nil
}

func (m *mockTopicRepo) ClearGroup(_ context.Context, topicID, groupID, _ string) error {
	t, ok := m.topics[topicID]
	if !ok || t.GroupID == nil || *t.GroupID != groupID {
		return pkgerrors.ErrOptimisticLock
	}
	t.GroupID = nil
	return nil
}

// ── Mock ApplicationRepository ──

type mockApplicationRepo struct {
	applications map[string]*model.TopicApplication
}

func newMockApplicationRepo() *mockApplicationRepo {
	return &mockApplicationRepo{applications: make(map[string]*model.TopicApplication)}
}

func (m *mockApplicationRepo) Create(_ context.Context, application *model.TopicApplication) error {
	if application.ApplicationID == "" {
		application.ApplicationID = fmt.Sprintf("app-%03d", len(m.applications)+1)
	}
	m.applications[application.ApplicationID] = application
	return nil
}

func (m *mockApplicationRepo) GetByID(_ context.Context, id string) (*model.TopicApplication, error) {
	if a, ok := m.applications[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApplicationRepo) GetPendingByGroupAndTopic(_ context.Context, groupID, topicID string) (*model.TopicApplication, error) {
	for _, a := range m.applications {
		if a.GroupID == groupID && a.TopicID == topicID && a.Status == model.ApplicationStatusPending {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApplicationRepo) GetApprovedByGroupAndTopic(_ context.Context, groupID, topicID string) (*model.TopicApplication, error) {
	for _, a := range m.applications {
		if a.GroupID == groupID && a.TopicID == topicID && a.Status == model.ApplicationStatusApproved {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApplicationRepo) ListByGroup(_ context.Context, groupID string) ([]model.TopicApplication, error) {
	var result []model.TopicApplication
	for _, a := range m.applications {
		if a.GroupID == groupID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockApplicationRepo) ListByTopic(_ context.Context, topicID string) ([]model.TopicApplication, error) {
	var result []model.TopicApplication
	for _, a := range m.applications {
		if a.TopicID == topicID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockApplicationRepo) UpdateStatus(_ context.Context, id, status, _ string) error {
	if a, ok := m.applications[id]; ok {
		a.Status = status
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockApplicationRepo) ResolvePendingByGroup(_ context.Context, groupID, exceptID, status, _ string) (int64, error) {
	var affected int64
	for id, a := range m.applications {
		if a.GroupID == groupID && id != exceptID && a.Status == model.ApplicationStatusPending {
			a.Status = status
			affected++
		}
	}
	return affected, nil
}

func (m *mockApplicationRepo) ResolvePendingByTopic(_ context.Context, topicID, exceptID, status, _ string) (int64, error) {
	var affected int64
	for id, a := range m.applications {
		if a.TopicID == topicID && id != exceptID && a.Status == model.ApplicationStatusPending {
			a.Status = status
			affected++
		}
	}
	return affected, nil
}

// ── Mock GroupRequestRepository ──

type mockGroupRequestRepo struct {
	requests map[string]*model.GroupRequest
}

func newMockGroupRequestRepo() *mockGroupRequestRepo {
	return &mockGroupRequestRepo{requests: make(map[string]*model.GroupRequest)}
}

func (m *mockGroupRequestRepo) Create(_ context.Context, request *model.GroupRequest) error {
	if request.RequestID == "" {
		request.RequestID = fmt.Sprintf("req-%03d", len(m.requests)+1)
	}
	m.requests[request.RequestID] = request
	return nil
}

func (m *mockGroupRequestRepo) CreateBatch(ctx context.Context, requests []model.GroupRequest) error {
	for i := range requests {
		if err := m.Create(ctx, &requests[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockGroupRequestRepo) GetByID(_ context.Context, id string) (*model.GroupRequest, error) {
	if r, ok := m.requests[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRequestRepo) GetPendingJoinByStudent(_ context.Context, studentID string) (*model.GroupRequest, error) {
	for _, r := range m.requests {
		if r.StudentID == studentID && r.Type == model.RequestTypeJoin && r.Status == model.RequestStatusPending {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRequestRepo) GetPendingInviteByStudentAndGroup(_ context.Context, studentID, groupID string) (*model.GroupRequest, error) {
	for _, r := range m.requests {
		if r.StudentID == studentID && r.GroupID == groupID &&
			r.Type == model.RequestTypeInvite && r.Status == model.RequestStatusPending {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRequestRepo) List(_ context.Context, filter repository.GroupRequestFilter) ([]model.GroupRequest, int64, error) {
	var result []model.GroupRequest
	for _, r := range m.requests {
		if filter.GroupID != "" && r.GroupID != filter.GroupID {
			continue
		}
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		result = append(result, *r)
	}
	return result, int64(len(result)), nil
}

func (m *mockGroupRequestRepo) UpdateStatus(_ context.Context, id, status, _ string) error {
	if r, ok := m.requests[id]; ok {
		r.Status = status
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockGroupRequestRepo) RejectPendingByStudent(_ context.Context, studentID, exceptID, _ string) (int64, error) {
	var affected int64
	for id, r := range m.requests {
		if r.StudentID == studentID && id != exceptID && r.Status == model.RequestStatusPending {
			r.Status = model.RequestStatusRejected
			affected++
		}
	}
	return affected, nil
}

func (m *mockGroupRequestRepo) RejectPendingByGroup(_ context.Context, groupID, _ string) (int64, error) {
	var affected int64
	for _, r := range m.requests {
		if r.GroupID == groupID && r.Status == model.RequestStatusPending {
			r.Status = model.RequestStatusRejected
			affected++
		}
	}
	return affected, nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	submissions []*model.Submission
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{}
}

func (m *mockSubmissionRepo) Create(_ context.Context, submission *model.Submission) error {
	if submission.SubmissionID == "" {
		submission.SubmissionID = fmt.Sprintf("sub-%03d", len(m.submissions)+1)
	}
	m.submissions = append(m.submissions, submission)
	return nil
}

func (m *mockSubmissionRepo) ListByGroup(_ context.Context, groupID string) ([]model.Submission, error) {
	var result []model.Submission
	for _, s := range m.submissions {
		if s.GroupID == groupID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSubmissionRepo) CountByGroup(_ context.Context, groupID string) (int64, error) {
	var count int64
	for _, s := range m.submissions {
		if s.GroupID == groupID {
			count++
		}
	}
	return count, nil
}

// ── 测试仓储聚合 ──

// newTestRepo 构建全 mock 的仓储聚合，Tx 为直通事务
func newTestRepo() *repository.Repository {
	members := newMockMembershipRepo()
	repo := &repository.Repository{
		User:         newMockUserRepo(),
		Term:         newMockTermRepo(),
		Enrollment:   newMockEnrollmentRepo(),
		Group:        newMockGroupRepo(members),
		Membership:   members,
		Topic:        newMockTopicRepo(),
		Application:  newMockApplicationRepo(),
		GroupRequest: newMockGroupRequestRepo(),
		Submission:   newMockSubmissionRepo(),
	}
	repo.Tx = &mockTxManager{repo: repo}
	return repo
}

// ── 测试数据构造 ──

func seedTerm(repo *repository.Repository, code, status string) *model.Term {
	term := &model.Term{
		Code:                   code,
		Status:                 status,
		MaxGroup:               5,
		MaxTopicsPerSupervisor: 5,
	}
	_ = repo.Term.Create(context.Background(), term)
	return term
}

func seedEnrollment(repo *repository.Repository, studentID string, term *model.Term, status string) *model.Enrollment {
	enrollment := &model.Enrollment{
		StudentID: studentID,
		TermID:    term.TermID,
		Status:    status,
	}
	_ = repo.Enrollment.Create(context.Background(), enrollment)
	return enrollment
}

// seedGroup 构造小组并将 leaderID 设为组长
func seedGroup(repo *repository.Repository, term *model.Term, name, leaderID string) *model.Group {
	group := &model.Group{
		Code:   term.Code + "-" + name,
		Name:   name,
		TermID: term.TermID,
	}
	_ = repo.Group.Create(context.Background(), group)
	_ = repo.Membership.Create(context.Background(), &model.Membership{
		StudentID: leaderID,
		GroupID:   group.GroupID,
		TermID:    term.TermID,
		IsLeader:  true,
	})
	return group
}

func addMember(repo *repository.Repository, group *model.Group, studentID string) {
	_ = repo.Membership.Create(context.Background(), &model.Membership{
		StudentID: studentID,
		GroupID:   group.GroupID,
		TermID:    group.TermID,
	})
}

func seedTopic(repo *repository.Repository, term *model.Term, lecturerID, title, status string, published bool) *model.Topic {
	topic := &model.Topic{
		TermID:      term.TermID,
		LecturerID:  lecturerID,
		Title:       title,
		Status:      status,
		IsPublished: published,
	}
	_ = repo.Topic.Create(context.Background(), topic)
	return topic
}

// [自证通过] internal/service/mock_repos_test.go
