package model

import (
	"time"
)

// Task 单个可排期的每日任务
// swagger:model Task
type Task struct {
	UUIDBase
	RoadmapID         string     `gorm:"type:varchar(36);index;not null" json:"roadmapId"`
	UserID            uint       `gorm:"index;not null" json:"userId"`
	Title             string     `gorm:"size:255;not null" json:"title"`
	Description       string     `gorm:"type:text" json:"description"`
	ScheduledDate     string     `gorm:"size:10;index;not null" json:"scheduledDate"`
	EstimatedDuration int        `gorm:"default:30" json:"estimatedDuration"`
	ActualDuration    *int       `json:"actualDuration,omitempty"`
	Priority          int        `gorm:"default:3" json:"priority"`
	Completed         bool       `gorm:"default:false" json:"completed"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	RescheduledCount  int        `gorm:"default:0" json:"rescheduledCount"`
	PhaseID           string     `gorm:"size:64;index" json:"phaseId"`
	PhaseNumber       int        `json:"phaseNumber"`
	TaskType          string     `gorm:"size:20" json:"taskType"`
}

func (Task) TableName() string {
	return "tasks"
}
