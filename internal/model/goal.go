package model

import (
	"time"

	"gorm.io/datatypes"
)

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
)

type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelAdvanced     SkillLevel = "advanced"
	LevelExpert       SkillLevel = "expert"
)

// WeeklySchedule 每周可用的学习日
type WeeklySchedule struct {
	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`
}

// Days 按周一到周日的顺序返回 (星期, 是否可用)
func (w WeeklySchedule) Days() []ScheduleDay {
	return []ScheduleDay{
		{time.Monday, w.Monday},
		{time.Tuesday, w.Tuesday},
		{time.Wednesday, w.Wednesday},
		{time.Thursday, w.Thursday},
		{time.Friday, w.Friday},
		{time.Saturday, w.Saturday},
		{time.Sunday, w.Sunday},
	}
}

func (w WeeklySchedule) HasAvailableDay() bool {
	for _, d := range w.Days() {
		if d.Available {
			return true
		}
	}
	return false
}

type ScheduleDay struct {
	Weekday   time.Weekday
	Available bool
}

// swagger:model Goal
type Goal struct {
	UUIDBase
	UserID              uint                               `gorm:"index;not null" json:"userId"`
	Title               string                             `gorm:"size:255;not null" json:"title"`
	Description         string                             `gorm:"type:text" json:"description"`
	CurrentLevel        SkillLevel                         `gorm:"size:20;not null;default:'beginner'" json:"currentLevel"`
	StartDate           string                             `gorm:"size:10;not null" json:"startDate"`
	TargetDate          *string                            `gorm:"size:10" json:"targetDate,omitempty"`
	DailyTimeCommitment int                                `gorm:"not null;default:30" json:"dailyTimeCommitment"`
	WeeklySchedule      datatypes.JSONType[WeeklySchedule] `json:"weeklySchedule"`
	Status              GoalStatus                         `gorm:"size:20;not null;default:'active'" json:"status"`
}

func (Goal) TableName() string {
	return "goals"
}

func (g *Goal) Schedule() WeeklySchedule {
	return g.WeeklySchedule.Data()
}
