package model

import "gorm.io/datatypes"

type StageStatus string

const (
	StageActive    StageStatus = "active"
	StagePending   StageStatus = "pending"
	StageCompleted StageStatus = "completed"
)

// ProgressStage 路线图阶段落库后的记录，(roadmap_id, phase_id) 唯一
// swagger:model ProgressStage
type ProgressStage struct {
	UUIDBase
	RoadmapID          string                      `gorm:"type:varchar(36);not null;uniqueIndex:idx_stage_roadmap_phase" json:"roadmapId"`
	PhaseID            string                      `gorm:"size:64;not null;uniqueIndex:idx_stage_roadmap_phase" json:"phaseId"`
	PhaseNumber        int                         `gorm:"not null" json:"phaseNumber"`
	Title              string                      `gorm:"size:255;not null" json:"title"`
	Description        string                      `gorm:"type:text" json:"description"`
	DurationWeeks      int                         `gorm:"not null" json:"durationWeeks"`
	StartDate          string                      `gorm:"size:10;not null" json:"startDate"`
	EndDate            string                      `gorm:"size:10;not null" json:"endDate"`
	Status             StageStatus                 `gorm:"size:20;not null;default:'pending'" json:"status"`
	SkillsToLearn      datatypes.JSONSlice[string] `json:"skillsToLearn"`
	LearningObjectives datatypes.JSONSlice[string] `json:"learningObjectives"`
	KeyConcepts        datatypes.JSONSlice[string] `json:"keyConcepts"`
	Prerequisites      datatypes.JSONSlice[string] `json:"prerequisites"`
	Outcomes           datatypes.JSONSlice[string] `json:"outcomes"`
	Resources          datatypes.JSONSlice[string] `json:"resources"`
}

func (ProgressStage) TableName() string {
	return "progress_stages"
}
