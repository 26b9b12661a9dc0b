package model

// 课题状态
const (
	TopicStatusNew      = "New"
	TopicStatusPending  = "Pending"
	TopicStatusApproved = "Approved"
	TopicStatusRejected = "Rejected"
)

// Topic 课题表 — 对应 topics
// GroupID 与 Group.TopicID 互为镜像，构成小组↔课题双向指派边
type Topic struct {
	TopicID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"topic_id"`
	TermID      string  `gorm:"type:uuid;not null"                             json:"term_id"`
	LecturerID  string  `gorm:"type:uuid;not null"                             json:"lecturer_id"`
	Title       string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string  `gorm:"type:text"                                      json:"description,omitempty"`
	Status      string  `gorm:"type:varchar(20);not null;default:'New'"        json:"status"` // New | Pending | Approved | Rejected
	IsPublished bool    `gorm:"not null;default:false"                         json:"is_published"`
	GroupID     *string `gorm:"type:uuid"                                      json:"group_id,omitempty"`
	VersionedModel

	// 关联
	Term     *Term  `gorm:"foreignKey:TermID;references:TermID"       json:"term,omitempty"`
	Lecturer *User  `gorm:"foreignKey:LecturerID;references:UserID"   json:"lecturer,omitempty"`
	Group    *Group `gorm:"foreignKey:GroupID;references:GroupID"     json:"group,omitempty"`
}

// TableName 指定表名
func (Topic) TableName() string { return "topics" }

// IsAssignable 课题是否可被指派（已审核通过且已发布）
func (t *Topic) IsAssignable() bool {
	return t.Status == TopicStatusApproved && t.IsPublished
}

// [自证通过] internal/model/topic.go
