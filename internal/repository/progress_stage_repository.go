package repository

import (
	"goal_pilot_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressStageRepository struct {
	DB *gorm.DB
}

func NewProgressStageRepository(db *gorm.DB) *ProgressStageRepository {
	return &ProgressStageRepository{DB: db}
}

// ExistingPhaseIDs 路线图下已存在的 phase_id 集合
func (r *ProgressStageRepository) ExistingPhaseIDs(roadmapID string) (map[string]bool, error) {
	var phaseIDs []string
	if err := r.DB.Model(&model.ProgressStage{}).
		Where("roadmap_id = ?", roadmapID).
		Pluck("phase_id", &phaseIDs).Error; err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(phaseIDs))
	for _, id := range phaseIDs {
		existing[id] = true
	}
	return existing, nil
}

// CreateIgnoreDuplicates 批量插入阶段，(roadmap_id, phase_id) 冲突的行被跳过，返回实际插入行数
func (r *ProgressStageRepository) CreateIgnoreDuplicates(stages []model.ProgressStage) (int64, error) {
	if len(stages) == 0 {
		return 0, nil
	}
	result := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "roadmap_id"}, {Name: "phase_id"}},
		DoNothing: true,
	}).CreateInBatches(stages, stageBatchSize)
	return result.RowsAffected, result.Error
}

func (r *ProgressStageRepository) FindByRoadmapID(roadmapID string) ([]model.ProgressStage, error) {
	var stages []model.ProgressStage
	err := r.DB.Where("roadmap_id = ?", roadmapID).Order("phase_number").Find(&stages).Error
	return stages, err
}

func (r *ProgressStageRepository) FindByRoadmapAndPhase(roadmapID, phaseID string) (*model.ProgressStage, error) {
	var stage model.ProgressStage
	err := r.DB.Where("roadmap_id = ? AND phase_id = ?", roadmapID, phaseID).First(&stage).Error
	return &stage, err
}
