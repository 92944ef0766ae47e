package repository

import (
	"goal_pilot_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type TaskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

// TaskQuery 任务查询条件，空字段不参与过滤；From/To 为闭区间 YYYY-MM-DD
type TaskQuery struct {
	UserID uint
	GoalID string
	From   string
	To     string
}

func (r *TaskRepository) CreateBatch(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.DB.CreateInBatches(tasks, taskBatchSize).Error
}

func (r *TaskRepository) Find(q TaskQuery) ([]model.Task, error) {
	var tasks []model.Task
	db := r.DB.Where("user_id = ?", q.UserID)
	if q.GoalID != "" {
		db = db.Where("roadmap_id IN (?)", r.DB.Model(&model.Roadmap{}).Select("id").Where("goal_id = ?", q.GoalID))
	}
	if q.From != "" {
		db = db.Where("scheduled_date >= ?", q.From)
	}
	if q.To != "" {
		db = db.Where("scheduled_date <= ?", q.To)
	}
	err := db.Order("scheduled_date, priority DESC, created_at").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) FindByIDAndUserID(id string, userID uint) (*model.Task, error) {
	var task model.Task
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&task).Error
	return &task, err
}

// CountByPhase 某阶段已生成的任务数
func (r *TaskRepository) CountByPhase(roadmapID, phaseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Task{}).
		Where("roadmap_id = ? AND phase_id = ?", roadmapID, phaseID).
		Count(&count).Error
	return count, err
}

func (r *TaskRepository) update(id string, userID uint, values map[string]interface{}) (int64, error) {
	values["updated_at"] = time.Now()
	result := r.DB.Model(&model.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(values)
	return result.RowsAffected, result.Error
}

func (r *TaskRepository) Complete(id string, userID uint, at time.Time) (int64, error) {
	return r.update(id, userID, map[string]interface{}{
		"completed":    true,
		"completed_at": at,
	})
}

func (r *TaskRepository) Uncomplete(id string, userID uint) (int64, error) {
	return r.update(id, userID, map[string]interface{}{
		"completed":    false,
		"completed_at": nil,
	})
}

// Reschedule 修改计划日期，rescheduled_count 单调递增
func (r *TaskRepository) Reschedule(id string, userID uint, date string) (int64, error) {
	return r.update(id, userID, map[string]interface{}{
		"scheduled_date":    date,
		"rescheduled_count": gorm.Expr("rescheduled_count + ?", 1),
	})
}

func (r *TaskRepository) UpdateDuration(id string, userID uint, minutes int) (int64, error) {
	return r.update(id, userID, map[string]interface{}{
		"actual_duration": minutes,
	})
}
