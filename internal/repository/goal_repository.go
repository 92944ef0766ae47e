package repository

import (
	"goal_pilot_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// GoalRepository 处理目标的数据访问
type GoalRepository struct {
	DB *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{DB: db}
}

func (r *GoalRepository) Create(goal *model.Goal) error {
	return r.DB.Create(goal).Error
}

// Update 更新目标的可编辑字段
func (r *GoalRepository) Update(goal *model.Goal) error {
	return r.DB.Model(&model.Goal{}).
		Where("id = ? AND user_id = ?", goal.ID, goal.UserID).
		Updates(map[string]interface{}{
			"title":                 goal.Title,
			"description":           goal.Description,
			"current_level":         goal.CurrentLevel,
			"start_date":            goal.StartDate,
			"target_date":           goal.TargetDate,
			"daily_time_commitment": goal.DailyTimeCommitment,
			"weekly_schedule":       goal.WeeklySchedule,
			"status":                goal.Status,
			"updated_at":            time.Now(),
		}).Error
}

func (r *GoalRepository) UpdateStatus(id string, userID uint, status model.GoalStatus) (int64, error) {
	result := r.DB.Model(&model.Goal{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// FindByIDAndUserID 同时校验归属
func (r *GoalRepository) FindByIDAndUserID(id string, userID uint) (*model.Goal, error) {
	var goal model.Goal
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&goal).Error
	return &goal, err
}

func (r *GoalRepository) FindByID(id string) (*model.Goal, error) {
	var goal model.Goal
	err := r.DB.Where("id = ?", id).First(&goal).Error
	return &goal, err
}

func (r *GoalRepository) FindByUserID(userID uint, status model.GoalStatus) ([]model.Goal, error) {
	var goals []model.Goal
	q := r.DB.Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Find(&goals).Error
	return goals, err
}

// Delete 删除目标并级联删除其路线图、阶段与任务
func (r *GoalRepository) Delete(id string, userID uint) (int64, error) {
	var affected int64
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Goal{})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		if affected == 0 {
			return nil
		}

		var roadmapIDs []string
		if err := tx.Model(&model.Roadmap{}).Where("goal_id = ?", id).Pluck("id", &roadmapIDs).Error; err != nil {
			return err
		}
		return deleteRoadmaps(tx, roadmapIDs)
	})
	return affected, err
}
