package repository

import (
	"errors"
	"goal_pilot_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepository struct {
	DB *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{DB: db}
}

// TableExists 偏好表可能尚未迁移（release 模式不自动迁移）
func (r *PreferenceRepository) TableExists() bool {
	return r.DB.Migrator().HasTable(&model.UserPreference{})
}

// FindByUserID 表不存在或没有记录时返回 (nil, nil)
func (r *PreferenceRepository) FindByUserID(userID uint) (*model.UserPreference, error) {
	if !r.TableExists() {
		return nil, nil
	}
	var pref model.UserPreference
	err := r.DB.Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// Upsert 按 user_id 插入或整体更新
func (r *PreferenceRepository) Upsert(pref *model.UserPreference) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"theme",
			"timezone",
			"week_starts_on",
			"daily_reminder_time",
			"email_notifications",
			"default_task_duration",
			"updated_at",
		}),
	}).Create(pref).Error
}
