package planner

import (
	"encoding/json"
	"fmt"
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/util"
	"strings"
)

// GeneratedRoadmap 完整生成（流式）时模型返回的结构
type GeneratedRoadmap struct {
	model.RoadmapPlan
	Milestones []model.Milestone `json:"milestones"`
}

// GeneratedOverview 快速生成第一步的返回结构
type GeneratedOverview struct {
	Overview                string            `json:"overview"`
	Timeline                string            `json:"timeline"`
	TotalWeeks              int               `json:"total_weeks"`
	EstimatedCompletionDate string            `json:"estimated_completion_date"`
	Milestones              []model.Milestone `json:"milestones"`
}

// GeneratedStages 快速生成第二步的返回结构
type GeneratedStages struct {
	Stages []model.PlanPhase `json:"stages"`
}

// GeneratedTasks 单阶段任务生成的返回结构
type GeneratedTasks struct {
	Tasks []model.PlanTask `json:"tasks"`
}

// DecodeModelJSON 解析模型输出；去掉可能存在的 ``` 代码块包裹，失败时返回 ErrMalformedModelOutput
func DecodeModelJSON(raw string, v interface{}) error {
	text := strings.TrimSpace(raw)
	if text == "" {
		return util.ErrEmptyModelOutput
	}
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("%w: %v", util.ErrMalformedModelOutput, err)
	}
	return nil
}

// NormalizePhases 补全缺失或重复的阶段 id，周数至少为 1
func NormalizePhases(phases []model.PlanPhase) []model.PlanPhase {
	seen := make(map[string]bool, len(phases))
	out := make([]model.PlanPhase, 0, len(phases))
	for i, p := range phases {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" || seen[p.ID] {
			p.ID = fmt.Sprintf("phase-%d", i+1)
		}
		for seen[p.ID] {
			p.ID = p.ID + "-" + fmt.Sprint(i+1)
		}
		seen[p.ID] = true
		if p.DurationWeeks < 1 {
			p.DurationWeeks = 1
		}
		if strings.TrimSpace(p.Title) == "" {
			p.Title = fmt.Sprintf("Phase %d", i+1)
		}
		out = append(out, p)
	}
	return out
}

// MergeStageDetails 把模型返回的阶段详情按顺序合并到通用阶段上，id 与周数以通用阶段为准
func MergeStageDetails(base []model.PlanPhase, details []model.PlanPhase) []model.PlanPhase {
	out := make([]model.PlanPhase, len(base))
	copy(out, base)
	for i := range out {
		if i >= len(details) {
			break
		}
		d := details[i]
		if d.Description != "" {
			out[i].Description = d.Description
		}
		if d.Focus != "" {
			out[i].Focus = d.Focus
		}
		out[i].SkillsToLearn = d.SkillsToLearn
		out[i].LearningObjectives = d.LearningObjectives
		out[i].KeyConcepts = d.KeyConcepts
		out[i].Prerequisites = d.Prerequisites
		out[i].Outcomes = d.Outcomes
		out[i].Resources = d.Resources
	}
	return out
}

// TotalWeeks 计划阶段周数之和
func TotalWeeks(phases []model.PlanPhase) int {
	total := 0
	for _, p := range phases {
		total += p.DurationWeeks
	}
	return total
}
