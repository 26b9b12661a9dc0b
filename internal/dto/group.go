package dto

// ── 小组模块 DTO ──

// CreateGroupRequest 创建小组请求
type CreateGroupRequest struct {
	Name             string   `json:"name"             binding:"required,min=2,max=100"`
	RequiredSkills   []string `json:"required_skills"  binding:"omitempty,dive,min=1,max=100"`
	Responsibilities []string `json:"responsibilities" binding:"omitempty,dive,min=1,max=100"`
}

// UpdateGroupRequest 更新小组请求
// 技能/职责需求整组替换，绝不合并
type UpdateGroupRequest struct {
	Name             *string  `json:"name"             binding:"omitempty,min=2,max=100"`
	RequiredSkills   []string `json:"required_skills"  binding:"omitempty,dive,min=1,max=100"`
	Responsibilities []string `json:"responsibilities" binding:"omitempty,dive,min=1,max=100"`
}

// ChangeLeaderRequest 转让组长请求
type ChangeLeaderRequest struct {
	NewLeaderID string `json:"new_leader_id" binding:"required,uuid"`
}

// GroupResponse 小组信息响应
type GroupResponse struct {
	ID               string           `json:"id"`
	Code             string           `json:"code"`
	Name             string           `json:"name"`
	TermID           string           `json:"term_id"`
	TopicID          *string          `json:"topic_id,omitempty"`
	MemberCount      int              `json:"member_count"`
	Members          []MemberResponse `json:"members,omitempty"`
	RequiredSkills   []string         `json:"required_skills,omitempty"`
	Responsibilities []string         `json:"responsibilities,omitempty"`
	CreatedAt        string           `json:"created_at"`
	UpdatedAt        string           `json:"updated_at"`
}

// MemberResponse 小组成员响应
type MemberResponse struct {
	StudentID string `json:"student_id"`
	Code      string `json:"code"`
	FullName  string `json:"full_name"`
	IsLeader  bool   `json:"is_leader"`
}

// [自证通过] internal/dto/group.go
