package planner

import (
	"fmt"
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/util"
	"time"

	"gorm.io/datatypes"
)

// AllocateStages 按阶段顺序连续分配日期：无重叠、无空档，第一个阶段为 active
func AllocateStages(roadmapID string, phases []model.PlanPhase, start time.Time) []model.ProgressStage {
	stages := make([]model.ProgressStage, 0, len(phases))
	weekOffset := 0
	for i, p := range phases {
		weeks := p.DurationWeeks
		if weeks < 1 {
			weeks = 1
		}
		stageStart := start.AddDate(0, 0, weekOffset*7)
		stageEnd := stageStart.AddDate(0, 0, weeks*7-1)

		status := model.StagePending
		if i == 0 {
			status = model.StageActive
		}

		stages = append(stages, model.ProgressStage{
			RoadmapID:          roadmapID,
			PhaseID:            p.ID,
			PhaseNumber:        i + 1,
			Title:              p.Title,
			Description:        p.Description,
			DurationWeeks:      weeks,
			StartDate:          util.FormatDate(stageStart),
			EndDate:            util.FormatDate(stageEnd),
			Status:             status,
			SkillsToLearn:      datatypes.NewJSONSlice(nonNil(p.SkillsToLearn)),
			LearningObjectives: datatypes.NewJSONSlice(nonNil(p.LearningObjectives)),
			KeyConcepts:        datatypes.NewJSONSlice(nonNil(p.KeyConcepts)),
			Prerequisites:      datatypes.NewJSONSlice(nonNil(p.Prerequisites)),
			Outcomes:           datatypes.NewJSONSlice(nonNil(p.Outcomes)),
			Resources:          datatypes.NewJSONSlice(nonNil(p.Resources)),
		})
		weekOffset += weeks
	}
	return stages
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// FilterNewStages 去掉 phase_id 已存在的阶段
func FilterNewStages(stages []model.ProgressStage, existing map[string]bool) []model.ProgressStage {
	out := make([]model.ProgressStage, 0, len(stages))
	for _, s := range stages {
		if !existing[s.PhaseID] {
			out = append(out, s)
		}
	}
	return out
}

// AvailableWeekdays 把每周计划转为可用星期集合
func AvailableWeekdays(schedule model.WeeklySchedule) map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, 7)
	for _, d := range schedule.Days() {
		if d.Available {
			set[d.Weekday] = true
		}
	}
	return set
}

// ScheduledDates 枚举 [start, end] 闭区间内落在可用星期的日期，升序
func ScheduledDates(start, end time.Time, available map[time.Weekday]bool) []string {
	var dates []string
	if len(available) == 0 {
		return dates
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if available[d.Weekday()] {
			dates = append(dates, util.FormatDate(d))
		}
	}
	return dates
}

var taskTypePriority = map[string]int{
	"study":    5,
	"practice": 4,
	"exercise": 3,
	"review":   2,
}

// TaskPriority 任务类型对应的优先级，未知类型为 3
func TaskPriority(taskType string) int {
	if p, ok := taskTypePriority[taskType]; ok {
		return p
	}
	return 3
}

// AssignTasks 为每个日期生成一条任务，模板循环使用；base 提供路线图、用户、阶段等公共字段
func AssignTasks(dates []string, templates []model.PlanTask, base model.Task, defaultDuration int) []model.Task {
	if len(templates) == 0 {
		return nil
	}
	tasks := make([]model.Task, 0, len(dates))
	for i, date := range dates {
		tmpl := templates[i%len(templates)]
		duration := tmpl.EstimatedDuration
		if duration <= 0 {
			duration = defaultDuration
		}
		task := base
		task.ID = ""
		task.Title = tmpl.Title
		task.Description = tmpl.Description
		task.ScheduledDate = date
		task.EstimatedDuration = duration
		task.Priority = TaskPriority(tmpl.Type)
		task.TaskType = tmpl.Type
		task.Completed = false
		task.CompletedAt = nil
		tasks = append(tasks, task)
	}
	return tasks
}

// DefaultTaskTemplates 模型不可用时的阶段任务模板
func DefaultTaskTemplates(phase model.PlanPhase, dailyMinutes int) []model.PlanTask {
	if dailyMinutes <= 0 {
		dailyMinutes = 30
	}
	focus := phase.Focus
	if focus == "" {
		focus = phase.Title
	}
	return []model.PlanTask{
		{
			Title:             fmt.Sprintf("Study: %s", phase.Title),
			Description:       fmt.Sprintf("Learn the core material for %s. Focus: %s.", phase.Title, focus),
			Type:              "study",
			EstimatedDuration: dailyMinutes,
		},
		{
			Title:             fmt.Sprintf("Practice: %s", phase.Title),
			Description:       fmt.Sprintf("Apply what you studied today with hands-on practice on %s.", focus),
			Type:              "practice",
			EstimatedDuration: dailyMinutes,
		},
		{
			Title:             fmt.Sprintf("Exercise: %s", phase.Title),
			Description:       "Complete a focused exercise to reinforce this stage's skills.",
			Type:              "exercise",
			EstimatedDuration: dailyMinutes,
		},
		{
			Title:             fmt.Sprintf("Review: %s", phase.Title),
			Description:       "Review your notes, revisit weak spots and log your progress.",
			Type:              "review",
			EstimatedDuration: dailyMinutes,
		},
	}
}

// BuildStageTasks 为一个已落库阶段生成全部任务
func BuildStageTasks(stage model.ProgressStage, userID uint, schedule model.WeeklySchedule, templates []model.PlanTask, dailyMinutes int) ([]model.Task, error) {
	start, err := util.ParseDate(stage.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := util.ParseDate(stage.EndDate)
	if err != nil {
		return nil, err
	}
	dates := ScheduledDates(start, end, AvailableWeekdays(schedule))
	base := model.Task{
		RoadmapID:   stage.RoadmapID,
		UserID:      userID,
		PhaseID:     stage.PhaseID,
		PhaseNumber: stage.PhaseNumber,
	}
	return AssignTasks(dates, templates, base, dailyMinutes), nil
}
