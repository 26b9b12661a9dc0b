package model

// 学期阶段（严格线性推进，不可跳跃、不可回退）
const (
	TermStatusNotYet    = "NotYet"
	TermStatusPreparing = "Preparing"
	TermStatusPicking   = "Picking"
	TermStatusOngoing   = "Ongoing"
	TermStatusEnd       = "End"
)

// Ongoing 子阶段（仅 status=Ongoing 时有意义，只能单向 ScopeAdjustable→ScopeLocked）
const (
	SubPhaseScopeAdjustable = "ScopeAdjustable"
	SubPhaseScopeLocked     = "ScopeLocked"
)

// TermPhaseOrder 阶段线性顺序表
var TermPhaseOrder = []string{
	TermStatusNotYet,
	TermStatusPreparing,
	TermStatusPicking,
	TermStatusOngoing,
	TermStatusEnd,
}

// Term 学期表 — 对应 terms
type Term struct {
	TermID                 string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"term_id"`
	Code                   string  `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Status                 string  `gorm:"type:varchar(20);not null;default:'NotYet'"     json:"status"`
	OngoingSubPhase        *string `gorm:"type:varchar(20)"                               json:"ongoing_sub_phase,omitempty"`
	MaxGroup               int     `gorm:"not null;default:5"                             json:"max_group"`
	MaxTopicsPerSupervisor int     `gorm:"not null;default:5"                             json:"max_topics_per_supervisor"`
	VersionedModel
}

// TableName 指定表名
func (Term) TableName() string { return "terms" }

// IsActive 是否处于活跃状态（非初始、非终态）
func (t *Term) IsActive() bool {
	return t.Status != TermStatusNotYet && t.Status != TermStatusEnd
}

// NextStatus 返回线性顺序中的下一阶段；已是终态时返回空串
func (t *Term) NextStatus() string {
	for i, s := range TermPhaseOrder {
		if s == t.Status && i+1 < len(TermPhaseOrder) {
			return TermPhaseOrder[i+1]
		}
	}
	return ""
}

// [自证通过] internal/model/term.go
