package planner

import (
	"fmt"
	"goal_pilot_backend/internal/model"
	"strings"
)

// PromptVersion 记录在路线图上，提示词变更时递增
const PromptVersion = "v2.1"

// SystemPrompt 所有生成请求共用的 system 消息
const SystemPrompt = "You are an expert learning coach and curriculum designer. " +
	"You ALWAYS respond with a single valid JSON object and nothing else: " +
	"no markdown, no code fences, no commentary before or after the JSON."

// GoalPromptInput 渲染提示词所需的目标属性
type GoalPromptInput struct {
	Title        string
	Description  string
	Level        string
	DailyMinutes int
	Schedule     model.WeeklySchedule
	StartDate    string
	TargetDate   string
}

func GoalInput(g *model.Goal) GoalPromptInput {
	in := GoalPromptInput{
		Title:        g.Title,
		Description:  g.Description,
		Level:        string(g.CurrentLevel),
		DailyMinutes: g.DailyTimeCommitment,
		Schedule:     g.Schedule(),
		StartDate:    g.StartDate,
	}
	if g.TargetDate != nil {
		in.TargetDate = *g.TargetDate
	}
	return in
}

// AvailableDays 按周一到周日的顺序列出可用的星期
func AvailableDays(schedule model.WeeklySchedule) string {
	var days []string
	for _, d := range schedule.Days() {
		if d.Available {
			days = append(days, d.Weekday.String())
		}
	}
	return strings.Join(days, ", ")
}

func (in GoalPromptInput) replacer(extra ...string) *strings.Replacer {
	target := in.TargetDate
	if target == "" {
		target = "not specified"
	}
	description := in.Description
	if description == "" {
		description = "none"
	}
	pairs := []string{
		"{{title}}", in.Title,
		"{{description}}", description,
		"{{level}}", in.Level,
		"{{daily_minutes}}", fmt.Sprintf("%d", in.DailyMinutes),
		"{{available_days}}", AvailableDays(in.Schedule),
		"{{start_date}}", in.StartDate,
		"{{target_date}}", target,
	}
	return strings.NewReplacer(append(pairs, extra...)...)
}

const goalContext = `Goal: {{title}}
Details: {{description}}
Current level: {{level}}
Daily time commitment: {{daily_minutes}} minutes
Available days: {{available_days}}
Start date: {{start_date}}
Target date: {{target_date}}`

const fullRoadmapTemplate = `Create a complete learning roadmap for the goal below.

` + goalContext + `

Return JSON with this exact shape:
{
  "overview": "2-3 sentence summary",
  "timeline": "e.g. 12 weeks",
  "estimated_completion_date": "YYYY-MM-DD",
  "phases": [
    {
      "id": "phase-1",
      "title": "...",
      "description": "...",
      "duration_weeks": 2,
      "skills_to_learn": ["..."],
      "learning_objectives": ["..."],
      "key_concepts": ["..."],
      "prerequisites": ["..."],
      "outcomes": ["..."],
      "resources": ["..."],
      "daily_tasks": [
        {"title": "...", "description": "...", "type": "study|practice|exercise|review", "estimated_duration": {{daily_minutes}}}
      ]
    }
  ],
  "milestones": [{"week": 4, "title": "...", "description": "..."}]
}

Use 4-6 phases with unique ids "phase-1".."phase-N" and 3-5 daily tasks per phase.
Every daily task must fit within {{daily_minutes}} minutes.`

const overviewTemplate = `Summarize a learning plan for the goal below. Keep it short.

` + goalContext + `

Return JSON:
{
  "overview": "2-3 sentence summary",
  "timeline": "e.g. 12 weeks",
  "total_weeks": 12,
  "estimated_completion_date": "YYYY-MM-DD",
  "milestones": [{"week": 4, "title": "...", "description": "..."}]
}

Give exactly 3 milestones.`

const stageDetailTemplate = `Fill in the details of each learning stage for the goal below.

` + goalContext + `

Stages, in order:
{{stages}}

Return JSON:
{
  "stages": [
    {
      "title": "stage title exactly as given",
      "description": "1-2 sentences",
      "focus": "short phrase",
      "skills_to_learn": ["..."],
      "learning_objectives": ["..."],
      "key_concepts": ["..."],
      "outcomes": ["..."]
    }
  ]
}

Return one entry per stage in the same order. Keep each list to 3 items.`

const phaseTasksTemplate = `Design daily practice tasks for one stage of a learning plan.

` + goalContext + `

Stage: {{phase_title}}
Stage focus: {{phase_focus}}
Stage length: {{phase_weeks}} weeks

Return JSON:
{
  "tasks": [
    {"title": "...", "description": "...", "type": "study|practice|exercise|review", "estimated_duration": {{daily_minutes}}}
  ]
}

Give 4-6 distinct tasks that can be rotated across the stage. Each must fit within {{daily_minutes}} minutes.`

func FullRoadmapPrompt(in GoalPromptInput) string {
	return in.replacer().Replace(fullRoadmapTemplate)
}

func OverviewPrompt(in GoalPromptInput) string {
	return in.replacer().Replace(overviewTemplate)
}

func StageDetailPrompt(in GoalPromptInput, stages []GenericStage) string {
	lines := make([]string, 0, len(stages))
	for i, s := range stages {
		lines = append(lines, fmt.Sprintf("%d. %s (%d weeks)", i+1, s.Title, s.Weeks))
	}
	return in.replacer("{{stages}}", strings.Join(lines, "\n")).Replace(stageDetailTemplate)
}

func PhaseTasksPrompt(in GoalPromptInput, phase model.PlanPhase) string {
	focus := phase.Focus
	if focus == "" {
		focus = phase.Description
	}
	return in.replacer(
		"{{phase_title}}", phase.Title,
		"{{phase_focus}}", focus,
		"{{phase_weeks}}", fmt.Sprintf("%d", phase.DurationWeeks),
	).Replace(phaseTasksTemplate)
}
