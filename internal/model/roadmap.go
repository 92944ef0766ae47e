package model

import (
	"gorm.io/datatypes"
)

const (
	GenerationOverviewOnly = "overview_only"
	GenerationComplete     = "complete"

	// AIModelTemplate 模板生成的路线图在 ai_model 字段上使用的固定值
	AIModelTemplate = "template"
)

// PlanTask 路线图中某一阶段的每日任务模板
type PlanTask struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Type              string `json:"type"`
	EstimatedDuration int    `json:"estimated_duration"`
}

// PlanPhase 路线图阶段（AI 输出或模板）
type PlanPhase struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	DurationWeeks      int        `json:"duration_weeks"`
	Focus              string     `json:"focus,omitempty"`
	SkillsToLearn      []string   `json:"skills_to_learn,omitempty"`
	LearningObjectives []string   `json:"learning_objectives,omitempty"`
	KeyConcepts        []string   `json:"key_concepts,omitempty"`
	Prerequisites      []string   `json:"prerequisites,omitempty"`
	Outcomes           []string   `json:"outcomes,omitempty"`
	Resources          []string   `json:"resources,omitempty"`
	DailyTasks         []PlanTask `json:"daily_tasks,omitempty"`
}

type Milestone struct {
	Week        int    `json:"week"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// RoadmapPlan ai_generated_plan 列的结构
type RoadmapPlan struct {
	Overview                string      `json:"overview"`
	Phases                  []PlanPhase `json:"phases"`
	Timeline                string      `json:"timeline,omitempty"`
	TotalWeeks              int         `json:"total_weeks,omitempty"`
	EstimatedCompletionDate string      `json:"estimated_completion_date,omitempty"`
	GenerationStatus        string      `json:"generation_status,omitempty"`
	TemplateUsed            bool        `json:"template_used,omitempty"`
}

// swagger:model Roadmap
type Roadmap struct {
	UUIDBase
	GoalID          string                          `gorm:"type:varchar(36);index;not null" json:"goalId"`
	UserID          uint                            `gorm:"index;not null" json:"userId"`
	AIGeneratedPlan datatypes.JSONType[RoadmapPlan] `json:"aiGeneratedPlan"`
	Milestones      datatypes.JSONSlice[Milestone]  `json:"milestones"`
	AIModel         string                          `gorm:"size:100" json:"aiModel"`
	PromptVersion   string                          `gorm:"size:20" json:"promptVersion"`
}

func (Roadmap) TableName() string {
	return "roadmaps"
}

func (r *Roadmap) Plan() RoadmapPlan {
	return r.AIGeneratedPlan.Data()
}
