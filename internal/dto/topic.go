package dto

// ── 课题模块 DTO ──

// CreateTopicRequest 创建课题请求（讲师）
type CreateTopicRequest struct {
	TermID      string `json:"term_id"     binding:"required,uuid"`
	Title       string `json:"title"       binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=5000"`
}

// ReviewTopicRequest 审核课题请求（教务）
type ReviewTopicRequest struct {
	Status string `json:"status" binding:"required,oneof=Approved Rejected"`
}

// PublishTopicRequest 发布课题请求
type PublishTopicRequest struct {
	IsPublished bool `json:"is_published"`
}

// TopicListRequest 课题列表查询参数
type TopicListRequest struct {
	PaginationRequest
	TermID        string `form:"term_id"        binding:"omitempty,uuid"`
	Status        string `form:"status"         binding:"omitempty,oneof=New Pending Approved Rejected"`
	PublishedOnly bool   `form:"published_only"`
}

// TopicResponse 课题信息响应
type TopicResponse struct {
	ID          string  `json:"id"`
	TermID      string  `json:"term_id"`
	LecturerID  string  `json:"lecturer_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	IsPublished bool    `json:"is_published"`
	GroupID     *string `json:"group_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ── 选题申请 DTO ──

// CreateApplicationRequest 创建选题申请请求（组长）
type CreateApplicationRequest struct {
	GroupID string `json:"group_id" binding:"required,uuid"`
	TopicID string `json:"topic_id" binding:"required,uuid"`
}

// UpdateApplicationStatusRequest 处理选题申请请求
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Approved Rejected Cancelled"`
}

// ApplicationResponse 选题申请响应
type ApplicationResponse struct {
	ID        string `json:"id"`
	GroupID   string `json:"group_id"`
	TopicID   string `json:"topic_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ── 指派操作 DTO ──

// PickTopicRequest 选定/指派课题请求
type PickTopicRequest struct {
	TopicID string `json:"topic_id" binding:"required,uuid"`
}

// [自证通过] internal/dto/topic.go
