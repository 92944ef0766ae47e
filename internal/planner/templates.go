// Package planner 路线图生成、排期、任务筛选与日历计算的纯逻辑，不依赖数据库和网络
package planner

import (
	"fmt"
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/util"
	"math"
	"strings"
	"time"
	"unicode"
)

// TemplatePhase 模板中的一个阶段
type TemplatePhase struct {
	Title string
	Weeks int
	Focus string
}

// Template 手工编写的课程模板，用于无需调用大模型的即时生成
type Template struct {
	Key    string
	Name   string
	Phases []TemplatePhase
}

func (t *Template) TotalWeeks() int {
	total := 0
	for _, p := range t.Phases {
		total += p.Weeks
	}
	return total
}

// 精确匹配阶段按此顺序检查
var templates = []Template{
	{
		Key:  "learn spanish",
		Name: "Spanish Language Learning",
		Phases: []TemplatePhase{
			{Title: "Foundations & Pronunciation", Weeks: 2, Focus: "Alphabet, pronunciation, greetings and basic phrases"},
			{Title: "Core Grammar & Vocabulary", Weeks: 4, Focus: "Present tense, articles, gender and the 500 most common words"},
			{Title: "Conversational Practice", Weeks: 4, Focus: "Everyday dialogues, listening comprehension and speaking drills"},
			{Title: "Past & Future Tenses", Weeks: 3, Focus: "Preterite, imperfect and future forms in context"},
			{Title: "Immersion & Fluency", Weeks: 3, Focus: "Native media, reading short texts and extended conversations"},
		},
	},
	{
		Key:  "learn python",
		Name: "Python Programming",
		Phases: []TemplatePhase{
			{Title: "Python Basics", Weeks: 2, Focus: "Syntax, variables, data types and control flow"},
			{Title: "Functions & Data Structures", Weeks: 3, Focus: "Functions, lists, dicts, sets and comprehensions"},
			{Title: "Object-Oriented Python", Weeks: 2, Focus: "Classes, inheritance and modules"},
			{Title: "Working with Libraries", Weeks: 3, Focus: "Standard library, pip, files, HTTP and testing"},
			{Title: "Capstone Project", Weeks: 2, Focus: "Build and ship a complete project"},
		},
	},
	{
		Key:  "learn javascript",
		Name: "JavaScript Development",
		Phases: []TemplatePhase{
			{Title: "JavaScript Fundamentals", Weeks: 2, Focus: "Syntax, types, functions and control flow"},
			{Title: "The DOM & Events", Weeks: 2, Focus: "Selecting elements, handling events and updating the page"},
			{Title: "Async JavaScript", Weeks: 3, Focus: "Callbacks, promises, async/await and fetch"},
			{Title: "Modern Tooling & Frameworks", Weeks: 3, Focus: "Modules, bundlers and a component framework"},
			{Title: "Portfolio Project", Weeks: 2, Focus: "Design, build and deploy a web application"},
		},
	},
	{
		Key:  "get fit",
		Name: "Fitness Transformation",
		Phases: []TemplatePhase{
			{Title: "Baseline & Habits", Weeks: 2, Focus: "Assess fitness level, build a routine and learn form"},
			{Title: "Foundational Strength", Weeks: 4, Focus: "Compound movements with progressive overload"},
			{Title: "Cardio Conditioning", Weeks: 3, Focus: "Endurance work, intervals and recovery"},
			{Title: "Performance Phase", Weeks: 3, Focus: "Increase intensity and track measurable gains"},
		},
	},
	{
		Key:  "learn guitar",
		Name: "Guitar Learning",
		Phases: []TemplatePhase{
			{Title: "Getting Started", Weeks: 2, Focus: "Holding the guitar, tuning and first open chords"},
			{Title: "Chords & Strumming", Weeks: 3, Focus: "Chord transitions and common strumming patterns"},
			{Title: "Scales & Technique", Weeks: 3, Focus: "Pentatonic and major scales, picking technique"},
			{Title: "Playing Songs", Weeks: 3, Focus: "Learn full songs and play along with recordings"},
			{Title: "Performance", Weeks: 1, Focus: "Record and perform a short set"},
		},
	},
	{
		Key:  "public speaking",
		Name: "Public Speaking Mastery",
		Phases: []TemplatePhase{
			{Title: "Overcoming Anxiety", Weeks: 1, Focus: "Breathing, mindset and low-stakes practice"},
			{Title: "Speech Structure", Weeks: 2, Focus: "Openings, storytelling and clear conclusions"},
			{Title: "Voice & Body Language", Weeks: 2, Focus: "Pacing, projection, gestures and eye contact"},
			{Title: "Live Practice", Weeks: 3, Focus: "Deliver talks, gather feedback and iterate"},
		},
	},
}

// 第二轮按关键词匹配，按顺序检查，命中即返回对应模板
var keywordCategories = []struct {
	key      string
	keywords []string
}{
	{"learn spanish", []string{"spanish", "french", "german", "italian", "portuguese", "japanese", "chinese", "mandarin", "korean", "language", "languages", "vocabulary", "fluent", "fluency"}},
	{"learn javascript", []string{"javascript", "js", "typescript", "react", "vue", "frontend", "web"}},
	{"learn python", []string{"python", "programming", "coding", "code", "developer", "software", "data"}},
	{"get fit", []string{"fit", "fitness", "workout", "exercise", "gym", "run", "running", "marathon", "strength", "muscle", "weight", "healthy", "health"}},
	{"learn guitar", []string{"guitar", "ukulele", "bass", "instrument", "chords", "music"}},
	{"public speaking", []string{"speaking", "speech", "speaker", "presentation", "presentations", "presenting", "communication", "talk", "talks"}},
}

func templateByKey(key string) *Template {
	for i := range templates {
		if templates[i].Key == key {
			return &templates[i]
		}
	}
	return nil
}

// Templates 返回所有内置模板
func Templates() []Template {
	return templates
}

// FindMatchingTemplate 按目标标题查找模板：先做子串匹配，再做关键词匹配，都不命中返回 nil
func FindMatchingTemplate(goalTitle string) *Template {
	normalized := strings.ToLower(strings.TrimSpace(goalTitle))
	if normalized == "" {
		return nil
	}

	for i := range templates {
		if strings.Contains(normalized, templates[i].Key) {
			return &templates[i]
		}
	}

	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}

	for _, category := range keywordCategories {
		for _, kw := range category.keywords {
			if words[kw] {
				return templateByKey(category.key)
			}
		}
	}
	return nil
}

// MilestoneWeeks 在总周数的 1/3、2/3 和终点处放置三个里程碑
func MilestoneWeeks(totalWeeks int) [3]int {
	if totalWeeks < 1 {
		totalWeeks = 1
	}
	first := int(math.Round(float64(totalWeeks) / 3))
	second := int(math.Round(float64(totalWeeks) * 2 / 3))
	if first < 1 {
		first = 1
	}
	if second < first {
		second = first
	}
	return [3]int{first, second, totalWeeks}
}

// phaseAtWeek 返回第 week 周所处的阶段
func phaseAtWeek(phases []model.PlanPhase, week int) model.PlanPhase {
	elapsed := 0
	for _, p := range phases {
		elapsed += p.DurationWeeks
		if week <= elapsed {
			return p
		}
	}
	return phases[len(phases)-1]
}

// BuildTemplatePlan 由模板直接生成路线图计划与里程碑，不调用大模型
func BuildTemplatePlan(t *Template, goalTitle string, start time.Time) (model.RoadmapPlan, []model.Milestone) {
	phases := make([]model.PlanPhase, 0, len(t.Phases))
	for i, p := range t.Phases {
		phases = append(phases, model.PlanPhase{
			ID:            fmt.Sprintf("phase-%d", i+1),
			Title:         p.Title,
			Description:   p.Focus,
			DurationWeeks: p.Weeks,
			Focus:         p.Focus,
		})
	}

	total := t.TotalWeeks()
	weeks := MilestoneWeeks(total)
	labels := [3]string{"Foundations in place", "Halfway there", "Goal achieved"}

	milestones := make([]model.Milestone, 0, 3)
	for i, week := range weeks {
		phase := phaseAtWeek(phases, week)
		milestones = append(milestones, model.Milestone{
			Week:        week,
			Title:       labels[i],
			Description: fmt.Sprintf("Week %d: %s", week, phase.Title),
		})
	}

	plan := model.RoadmapPlan{
		Overview:                fmt.Sprintf("%s: a %d-week %s curriculum in %d phases.", goalTitle, total, t.Name, len(phases)),
		Phases:                  phases,
		Timeline:                fmt.Sprintf("%d weeks", total),
		TotalWeeks:              total,
		EstimatedCompletionDate: start.AddDate(0, 0, total*7).Format(util.DateFormat),
		GenerationStatus:        model.GenerationComplete,
		TemplateUsed:            true,
	}
	return plan, milestones
}

// GenericStage 快速两阶段生成中使用的通用阶段
type GenericStage struct {
	Title string
	Weeks int
}

var (
	beginnerTrack = []GenericStage{
		{Title: "Foundations", Weeks: 2},
		{Title: "Core Skills", Weeks: 3},
		{Title: "Guided Practice", Weeks: 3},
		{Title: "Independent Projects", Weeks: 2},
		{Title: "Review & Next Steps", Weeks: 2},
	}
	intermediateTrack = []GenericStage{
		{Title: "Skill Assessment", Weeks: 1},
		{Title: "Advanced Concepts", Weeks: 3},
		{Title: "Applied Practice", Weeks: 3},
		{Title: "Specialization", Weeks: 3},
		{Title: "Mastery Project", Weeks: 2},
	}
)

// GenericStages 标题包含 "beginner" 时使用入门轨道，否则使用进阶轨道
func GenericStages(goalTitle string) []GenericStage {
	track := intermediateTrack
	if strings.Contains(strings.ToLower(goalTitle), "beginner") {
		track = beginnerTrack
	}
	out := make([]GenericStage, len(track))
	copy(out, track)
	return out
}

// GenericPhases 把通用阶段转为带 id 的计划阶段
func GenericPhases(stages []GenericStage) []model.PlanPhase {
	phases := make([]model.PlanPhase, 0, len(stages))
	for i, s := range stages {
		phases = append(phases, model.PlanPhase{
			ID:            fmt.Sprintf("phase-%d", i+1),
			Title:         s.Title,
			DurationWeeks: s.Weeks,
		})
	}
	return phases
}
