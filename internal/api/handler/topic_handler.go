package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/5-logic/the-sync-backend-sub000/internal/dto"
	"github.com/5-logic/the-sync-backend-sub000/internal/service"
	"github.com/5-logic/the-sync-backend-sub000/pkg/response"
)

// TopicHandler 课题模块 HTTP 处理器
// 课题生命周期 + 选题申请工作流
type TopicHandler struct {
	topicSvc  service.TopicService
	assignSvc service.AssignmentService
}

// NewTopicHandler 创建 TopicHandler
func NewTopicHandler(topicSvc service.TopicService, assignSvc service.AssignmentService) *TopicHandler {
	return &TopicHandler{topicSvc: topicSvc, assignSvc: assignSvc}
}

// CreateTopic 创建课题（讲师）
// POST /api/v1/topics
func (h *TopicHandler) CreateTopic(c *gin.Context) {
	var req dto.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	topic, err := h.topicSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}

	response.Created(c, topic)
}

// ListTopics 课题列表
// GET /api/v1/topics
func (h *TopicHandler) ListTopics(c *gin.Context) {
	var req dto.TopicListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	topics, total, err := h.topicSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}

	response.OKPage(c, topics, total, req.GetPage(), req.GetPageSize())
}

// GetTopic 获取课题详情
// GET /api/v1/topics/:id
func (h *TopicHandler) GetTopic(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课题ID不能为空")
		return
	}

	topic, err := h.topicSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}

	response.OK(c, topic)
}

// SubmitTopic 提交课题审核（讲师）
// PUT /api/v1/topics/:id/submit
func (h *TopicHandler) SubmitTopic(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课题ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	topic, err := h.topicSvc.Submit(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}

	response.OK(c, topic)
}

// ReviewTopic 审核课题（教务）
// PUT /api/v1/topics/:id/review
func (h *TopicHandler) ReviewTopic(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课题ID不能为空")
		return
	}

	var req dto.ReviewTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	topic, err := h.topicSvc.Review(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}

	response.OK(c, topic)
}

// PublishTopic 发布/下架课题（教务）
// PUT /api/v1/topics/:id/publish
func (h *TopicHandler) PublishTopic(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课题ID不能为空")
		return
	}

	var req dto.PublishTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	topic, err := h.topicSvc.Publish(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTopicError(c, err)
		return
	}

	response.OK(c, topic)
}

// ── 选题申请工作流 ──

// CreateApplication 创建选题申请（组长）
// POST /api/v1/topic-applications
func (h *TopicHandler) CreateApplication(c *gin.Context) {
	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	application, err := h.assignSvc.CreateApplication(c.Request.Context(), &req, callerID)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}

	response.Created(c, application)
}

// UpdateApplicationStatus 处理选题申请（讲师/教务裁决，组长撤回）
// PUT /api/v1/topic-applications/:id/status
func (h *TopicHandler) UpdateApplicationStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
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

	application, err := h.assignSvc.UpdateApplicationStatus(c.Request.Context(), id, &req, callerID, callerRole)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}

	response.OK(c, application)
}

// ListTopicApplications 列出课题的选题申请
// GET /api/v1/topics/:id/applications
func (h *TopicHandler) ListTopicApplications(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课题ID不能为空")
		return
	}

	applications, err := h.assignSvc.ListApplicationsByTopic(c.Request.Context(), id)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": applications})
}

// handleTopicError 统一处理课题模块业务错误
func (h *TopicHandler) handleTopicError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTopicNotFound):
		response.NotFound(c, 14001, "课题不存在")
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, 12001, "学期不存在")
	case errors.Is(err, service.ErrTermPhaseConflict):
		response.Conflict(c, 12004, err.Error())
	case errors.Is(err, service.ErrTopicQuotaExceeded):
		response.Conflict(c, 14002, err.Error())
	case errors.Is(err, service.ErrTopicNotOwned):
		response.Forbidden(c, 14003, "仅课题所属讲师可执行此操作")
	case errors.Is(err, service.ErrTopicNotNew):
		response.Conflict(c, 14004, err.Error())
	case errors.Is(err, service.ErrTopicNotPending):
		response.Conflict(c, 14005, err.Error())
	case errors.Is(err, service.ErrTopicNotApproved):
		response.Conflict(c, 14006, err.Error())
	default:
		response.InternalError(c)
	}
}

// handleAssignmentError 统一处理指派模块业务错误
// 小组侧与课题侧的指派入口共用这一套映射
func handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 13001, "小组不存在")
	case errors.Is(err, service.ErrTopicNotFound):
		response.NotFound(c, 14001, "课题不存在")
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, 12001, "学期不存在")
	case errors.Is(err, service.ErrTermPhaseConflict):
		response.Conflict(c, 12004, err.Error())
	case errors.Is(err, service.ErrNotGroupLeader):
		response.Forbidden(c, 13007, "仅组长可执行此操作")
	case errors.Is(err, service.ErrTopicUnapproved):
		response.Conflict(c, 15001, err.Error())
	case errors.Is(err, service.ErrTopicNotPublished):
		response.Conflict(c, 15002, err.Error())
	case errors.Is(err, service.ErrTopicAlreadyAssigned):
		response.Conflict(c, 15003, err.Error())
	case errors.Is(err, service.ErrGroupAlreadyAssigned):
		response.Conflict(c, 15004, err.Error())
	case errors.Is(err, service.ErrTermMismatch):
		response.Conflict(c, 15005, err.Error())
	case errors.Is(err, service.ErrGroupNoTopic):
		response.Conflict(c, 15006, err.Error())
	case errors.Is(err, service.ErrApplicationNotFound):
		response.NotFound(c, 15007, "选题申请不存在")
	case errors.Is(err, service.ErrApplicationExists):
		response.Conflict(c, 15008, err.Error())
	case errors.Is(err, service.ErrApplicationResolved):
		response.Conflict(c, 15009, err.Error())
	case errors.Is(err, service.ErrApplicationNoAccess):
		response.Forbidden(c, 15010, "无权处理该选题申请")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/topic_handler.go
