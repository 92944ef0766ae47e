package repository

import (
	"goal_pilot_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

const (
	stageBatchSize = 100
	taskBatchSize  = 500
)

type RoadmapRepository struct {
	DB *gorm.DB
}

func NewRoadmapRepository(db *gorm.DB) *RoadmapRepository {
	return &RoadmapRepository{DB: db}
}

func (r *RoadmapRepository) FindByIDAndUserID(id string, userID uint) (*model.Roadmap, error) {
	var roadmap model.Roadmap
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&roadmap).Error
	return &roadmap, err
}

// FindLatestByGoalID 目标当前的路线图
func (r *RoadmapRepository) FindLatestByGoalID(goalID string, userID uint) (*model.Roadmap, error) {
	var roadmap model.Roadmap
	err := r.DB.Where("goal_id = ? AND user_id = ?", goalID, userID).
		Order("created_at DESC").
		First(&roadmap).Error
	return &roadmap, err
}

// UpdatePlan 覆盖 ai_generated_plan（快速生成第二步使用）
func (r *RoadmapRepository) UpdatePlan(roadmap *model.Roadmap) error {
	return r.DB.Model(&model.Roadmap{}).
		Where("id = ?", roadmap.ID).
		Updates(map[string]interface{}{
			"ai_generated_plan": roadmap.AIGeneratedPlan,
			"milestones":        roadmap.Milestones,
			"ai_model":          roadmap.AIModel,
			"updated_at":        time.Now(),
		}).Error
}

// ReplaceForGoal 在同一事务中写入新路线图及其阶段、任务，并删除该目标原有的路线图。
// 任何一步失败都会回滚，原路线图保持不变。返回被删除的路线图 ID。
func (r *RoadmapRepository) ReplaceForGoal(roadmap *model.Roadmap, stages []model.ProgressStage, tasks []model.Task) ([]string, error) {
	var oldIDs []string
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Roadmap{}).
			Where("goal_id = ?", roadmap.GoalID).
			Pluck("id", &oldIDs).Error; err != nil {
			return err
		}

		if err := tx.Create(roadmap).Error; err != nil {
			return err
		}

		for i := range stages {
			stages[i].RoadmapID = roadmap.ID
		}
		if len(stages) > 0 {
			if err := tx.CreateInBatches(stages, stageBatchSize).Error; err != nil {
				return err
			}
		}

		for i := range tasks {
			tasks[i].RoadmapID = roadmap.ID
		}
		if len(tasks) > 0 {
			if err := tx.CreateInBatches(tasks, taskBatchSize).Error; err != nil {
				return err
			}
		}

		return deleteRoadmaps(tx, oldIDs)
	})
	if err != nil {
		return nil, err
	}
	return oldIDs, nil
}

// IDsByGoalID 目标下全部路线图 ID
func (r *RoadmapRepository) IDsByGoalID(goalID string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&model.Roadmap{}).Where("goal_id = ?", goalID).Pluck("id", &ids).Error
	return ids, err
}

func (r *RoadmapRepository) CountByGoalID(goalID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Roadmap{}).Where("goal_id = ?", goalID).Count(&count).Error
	return count, err
}

// deleteRoadmaps 物理删除路线图及其阶段、任务，须在事务内调用
func deleteRoadmaps(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("roadmap_id IN ?", ids).Delete(&model.Task{}).Error; err != nil {
		return err
	}
	if err := tx.Where("roadmap_id IN ?", ids).Delete(&model.ProgressStage{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&model.Roadmap{}).Error
}
