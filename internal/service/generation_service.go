package service

import (
	"context"
	"errors"
	"fmt"
	"goal_pilot_backend/internal/config"
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/planner"
	"goal_pilot_backend/internal/repository"
	"goal_pilot_backend/internal/util"
	"goal_pilot_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 生成策略，同时用作监控标签与归档文件名
const (
	StrategyInstant  = "instant"
	StrategyOverview = "overview"
	StrategyStages   = "stages"
	StrategyStream   = "stream"
	StrategyFast     = "fast"
)

// Archiver 保存与清理模型原始输出，实现方自行吞掉错误
type Archiver interface {
	ArchiveGeneration(ctx context.Context, roadmapID, strategy, raw string)
	PurgeGenerations(ctx context.Context, roadmapIDs []string)
}

// GenerationResult 一次生成落库后的结果
type GenerationResult struct {
	RoadmapID    string `json:"roadmapId"`
	StagesCount  int    `json:"stagesCount"`
	TasksCount   int    `json:"tasksCount"`
	TemplateUsed bool   `json:"templateUsed"`
}

// StreamEvent 流式生成过程中推送给客户端的事件
type StreamEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	Phases    int    `json:"phases,omitempty"`
	Chars     int    `json:"chars,omitempty"`
	RoadmapID string `json:"roadmapId,omitempty"`
}

const (
	EventStatus   = "status"
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
)

// GenerationService 路线图生成：模板、快速两步、流式
type GenerationService struct {
	GoalRepo    *repository.GoalRepository
	UserRepo    *repository.UserRepository
	RoadmapRepo *repository.RoadmapRepository
	LLM         LLMClient
	Settings    func() config.AIConfig
	Locker      GenerationLocker
	Archiver    Archiver

	ProgressInterval time.Duration
	Now              func() time.Time
}

func NewGenerationService(
	goalRepo *repository.GoalRepository,
	userRepo *repository.UserRepository,
	roadmapRepo *repository.RoadmapRepository,
	llm LLMClient,
	settings func() config.AIConfig,
	locker GenerationLocker,
	archiver Archiver,
	progressInterval time.Duration,
) *GenerationService {
	return &GenerationService{
		GoalRepo:         goalRepo,
		UserRepo:         userRepo,
		RoadmapRepo:      roadmapRepo,
		LLM:              llm,
		Settings:         settings,
		Locker:           locker,
		Archiver:         archiver,
		ProgressInterval: progressInterval,
		Now:              time.Now,
	}
}

func (s *GenerationService) findGoal(goalID string, userID uint) (*model.Goal, error) {
	goal, err := s.GoalRepo.FindByIDAndUserID(goalID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrGoalNotFound
		}
		return nil, err
	}
	return goal, nil
}

func (s *GenerationService) archive(ctx context.Context, roadmapID, strategy, raw string) {
	if s.Archiver == nil || raw == "" {
		return
	}
	s.Archiver.ArchiveGeneration(context.WithoutCancel(ctx), roadmapID, strategy, raw)
}

// saveRoadmap 替换目标的路线图，并清理被替换路线图的归档
func (s *GenerationService) saveRoadmap(ctx context.Context, roadmap *model.Roadmap, stages []model.ProgressStage, tasks []model.Task) error {
	replaced, err := s.RoadmapRepo.ReplaceForGoal(roadmap, stages, tasks)
	if err != nil {
		return err
	}
	if s.Archiver != nil && len(replaced) > 0 {
		s.Archiver.PurgeGenerations(context.WithoutCancel(ctx), replaced)
	}
	return nil
}

// buildRecords 由计划阶段生成阶段与任务；templatesFor 为空时使用默认任务模板
func buildRecords(goal *model.Goal, phases []model.PlanPhase, start time.Time, templatesFor func(model.PlanPhase) []model.PlanTask) ([]model.ProgressStage, []model.Task, error) {
	stages := planner.AllocateStages("", phases, start)
	schedule := goal.Schedule()

	var tasks []model.Task
	for i, stage := range stages {
		var templates []model.PlanTask
		if templatesFor != nil {
			templates = templatesFor(phases[i])
		}
		if len(templates) == 0 {
			templates = planner.DefaultTaskTemplates(phases[i], goal.DailyTimeCommitment)
		}
		stageTasks, err := planner.BuildStageTasks(stage, goal.UserID, schedule, templates, goal.DailyTimeCommitment)
		if err != nil {
			return nil, nil, err
		}
		tasks = append(tasks, stageTasks...)
	}
	return stages, tasks, nil
}

// GenerateInstant 模板生成：不调用大模型，直接写入路线图、阶段与任务
func (s *GenerationService) GenerateInstant(ctx context.Context, goalID string, userID uint) (*GenerationResult, error) {
	goal, err := s.findGoal(goalID, userID)
	if err != nil {
		return nil, err
	}

	tmpl := planner.FindMatchingTemplate(goal.Title)
	if tmpl == nil {
		return nil, util.ErrNoTemplate
	}

	release, err := s.Locker.Acquire(ctx, goal.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	start, err := util.ParseDate(goal.StartDate)
	if err != nil {
		return nil, err
	}

	plan, milestones := planner.BuildTemplatePlan(tmpl, goal.Title, start)
	stages, tasks, err := buildRecords(goal, plan.Phases, start, nil)
	if err != nil {
		return nil, err
	}

	roadmap := &model.Roadmap{
		GoalID:          goal.ID,
		UserID:          userID,
		AIGeneratedPlan: datatypes.NewJSONType(plan),
		Milestones:      datatypes.NewJSONSlice(milestones),
		AIModel:         model.AIModelTemplate,
		PromptVersion:   planner.PromptVersion,
	}
	if err := s.saveRoadmap(ctx, roadmap, stages, tasks); err != nil {
		return nil, fmt.Errorf("save template roadmap: %w", err)
	}

	logger.L().Info("Roadmap generated from template",
		zap.String("goal_id", goal.ID),
		zap.String("roadmap_id", roadmap.ID),
		zap.String("template", tmpl.Key),
		zap.Int("tasks", len(tasks)),
	)

	return &GenerationResult{
		RoadmapID:    roadmap.ID,
		StagesCount:  len(stages),
		TasksCount:   len(tasks),
		TemplateUsed: true,
	}, nil
}

// GenerateOverviewFast 快速生成第一步：只请求概述与里程碑，阶段先用通用轨道占位
func (s *GenerationService) GenerateOverviewFast(ctx context.Context, goalID string, userID uint) (*GenerationResult, error) {
	goal, err := s.findGoal(goalID, userID)
	if err != nil {
		return nil, err
	}

	release, err := s.Locker.Acquire(ctx, goal.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.generateOverview(ctx, goal)
}

// overviewDraft 概述请求的结果，尚未落库
type overviewDraft struct {
	plan       model.RoadmapPlan
	milestones []model.Milestone
	raw        string
}

func (s *GenerationService) requestOverview(ctx context.Context, goal *model.Goal) (*overviewDraft, error) {
	cfg := s.Settings()

	callCtx, cancel := context.WithTimeout(ctx, cfg.OverviewTimeout())
	defer cancel()

	raw, err := s.LLM.Chat(callCtx, ChatRequest{
		Purpose:   StrategyOverview,
		Model:     cfg.FastModel,
		System:    planner.SystemPrompt,
		Prompt:    planner.OverviewPrompt(planner.GoalInput(goal)),
		MaxTokens: cfg.OverviewMaxTokens,
		JSONMode:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("overview generation: %w", err)
	}

	var out planner.GeneratedOverview
	if err := planner.DecodeModelJSON(raw, &out); err != nil {
		return nil, err
	}

	start, err := util.ParseDate(goal.StartDate)
	if err != nil {
		return nil, err
	}

	phases := planner.GenericPhases(planner.GenericStages(goal.Title))
	total := planner.TotalWeeks(phases)
	plan := model.RoadmapPlan{
		Overview:                out.Overview,
		Phases:                  phases,
		Timeline:                out.Timeline,
		TotalWeeks:              total,
		EstimatedCompletionDate: out.EstimatedCompletionDate,
		GenerationStatus:        model.GenerationOverviewOnly,
	}
	if plan.Timeline == "" {
		plan.Timeline = fmt.Sprintf("%d weeks", total)
	}
	if plan.EstimatedCompletionDate == "" {
		plan.EstimatedCompletionDate = util.FormatDate(start.AddDate(0, 0, total*7))
	}

	return &overviewDraft{plan: plan, milestones: nonNilMilestones(out.Milestones), raw: raw}, nil
}

// requestStageDetails 为通用阶段请求详情，返回合并后的阶段
func (s *GenerationService) requestStageDetails(ctx context.Context, goal *model.Goal) ([]model.PlanPhase, string, error) {
	cfg := s.Settings()
	stages := planner.GenericStages(goal.Title)

	callCtx, cancel := context.WithTimeout(ctx, cfg.StageTimeout())
	defer cancel()

	raw, err := s.LLM.Chat(callCtx, ChatRequest{
		Purpose:   StrategyStages,
		Model:     cfg.FastModel,
		System:    planner.SystemPrompt,
		Prompt:    planner.StageDetailPrompt(planner.GoalInput(goal), stages),
		MaxTokens: cfg.StageMaxTokens,
		JSONMode:  true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("stage generation: %w", err)
	}

	var out planner.GeneratedStages
	if err := planner.DecodeModelJSON(raw, &out); err != nil {
		return nil, "", err
	}
	return planner.MergeStageDetails(planner.GenericPhases(stages), out.Stages), raw, nil
}

func (s *GenerationService) newFastRoadmap(goal *model.Goal, draft *overviewDraft) *model.Roadmap {
	return &model.Roadmap{
		GoalID:          goal.ID,
		UserID:          goal.UserID,
		AIGeneratedPlan: datatypes.NewJSONType(draft.plan),
		Milestones:      datatypes.NewJSONSlice(draft.milestones),
		AIModel:         s.Settings().FastModel,
		PromptVersion:   planner.PromptVersion,
	}
}

func (s *GenerationService) generateOverview(ctx context.Context, goal *model.Goal) (*GenerationResult, error) {
	draft, err := s.requestOverview(ctx, goal)
	if err != nil {
		return nil, err
	}

	roadmap := s.newFastRoadmap(goal, draft)
	if err := s.saveRoadmap(ctx, roadmap, nil, nil); err != nil {
		return nil, fmt.Errorf("save overview roadmap: %w", err)
	}
	s.archive(ctx, roadmap.ID, StrategyOverview, draft.raw)

	return &GenerationResult{RoadmapID: roadmap.ID}, nil
}

func nonNilMilestones(m []model.Milestone) []model.Milestone {
	if m == nil {
		return []model.Milestone{}
	}
	return m
}

// GenerateStagesFast 快速生成第二步：为通用阶段补全详情，并把计划标记为 complete。
// 只接受仍处于 overview_only 的路线图。
func (s *GenerationService) GenerateStagesFast(ctx context.Context, roadmapID string, userID uint) (*GenerationResult, error) {
	roadmap, err := s.findRoadmap(roadmapID, userID)
	if err != nil {
		return nil, err
	}
	goal, err := s.findGoal(roadmap.GoalID, userID)
	if err != nil {
		return nil, err
	}

	release, err := s.Locker.Acquire(ctx, goal.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	// 持锁后重新读取，避免与并发的第二步或重新生成交错
	roadmap, err = s.findRoadmap(roadmapID, userID)
	if err != nil {
		return nil, err
	}
	if roadmap.Plan().GenerationStatus != model.GenerationOverviewOnly {
		return nil, util.ErrStagesAlreadyGenerated
	}

	phases, raw, err := s.requestStageDetails(ctx, goal)
	if err != nil {
		return nil, err
	}

	plan := roadmap.Plan()
	plan.Phases = phases
	plan.TotalWeeks = planner.TotalWeeks(phases)
	plan.GenerationStatus = model.GenerationComplete

	roadmap.AIGeneratedPlan = datatypes.NewJSONType(plan)
	roadmap.AIModel = s.Settings().FastModel
	if err := s.RoadmapRepo.UpdatePlan(roadmap); err != nil {
		return nil, fmt.Errorf("save stage details: %w", err)
	}
	s.archive(ctx, roadmap.ID, StrategyStages, raw)

	return &GenerationResult{RoadmapID: roadmap.ID, StagesCount: len(phases)}, nil
}

func (s *GenerationService) findRoadmap(roadmapID string, userID uint) (*model.Roadmap, error) {
	roadmap, err := s.RoadmapRepo.FindByIDAndUserID(roadmapID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRoadmapNotFound
		}
		return nil, err
	}
	return roadmap, nil
}

// PrepareStream 在打开 SSE 之前完成校验：并发读取目标与用户，并占用生成锁。
// 返回的 release 必须在流结束后调用。
func (s *GenerationService) PrepareStream(ctx context.Context, goalID string, userID uint) (*model.Goal, func(), error) {
	var goal *model.Goal
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		goal, err = s.findGoal(goalID, userID)
		return err
	})
	g.Go(func() error {
		if _, err := s.UserRepo.FindByID(userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrUserNotFound
			}
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	release, err := s.Locker.Acquire(ctx, goal.ID)
	if err != nil {
		return nil, nil, err
	}
	return goal, release, nil
}

// GenerateStream 单次大请求的完整生成。emit 返回 false 表示客户端已断开，
// 此后不再推送事件，但仍会读完模型输出并落库。
func (s *GenerationService) GenerateStream(ctx context.Context, goal *model.Goal, emit func(StreamEvent) bool) (*GenerationResult, error) {
	cfg := s.Settings()
	connected := true
	send := func(ev StreamEvent) {
		if connected {
			connected = emit(ev)
		}
	}

	// 客户端断开不影响服务端继续生成
	streamCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.StreamTimeout())
	defer cancel()

	send(StreamEvent{Type: EventStatus, Message: "Generating your roadmap"})

	chunks, errs := s.LLM.ChatStream(streamCtx, ChatRequest{
		Purpose:   StrategyStream,
		Model:     cfg.Model,
		System:    planner.SystemPrompt,
		Prompt:    planner.FullRoadmapPrompt(planner.GoalInput(goal)),
		MaxTokens: cfg.RoadmapMaxTokens,
		JSONMode:  true,
	})

	tracker := planner.NewProgressTracker(s.ProgressInterval, s.Now)
	for chunk := range chunks {
		if tracker.Feed(chunk) {
			send(StreamEvent{
				Type:    EventProgress,
				Message: fmt.Sprintf("Planned %d items so far", tracker.Titles()),
				Phases:  tracker.Titles(),
				Chars:   tracker.Len(),
			})
		}
	}
	if err := <-errs; err != nil {
		return nil, fmt.Errorf("roadmap stream: %w", err)
	}

	send(StreamEvent{Type: EventStatus, Message: "Saving your roadmap"})

	raw := tracker.Text()
	var out planner.GeneratedRoadmap
	if err := planner.DecodeModelJSON(raw, &out); err != nil {
		return nil, err
	}

	start, err := util.ParseDate(goal.StartDate)
	if err != nil {
		return nil, err
	}

	plan := out.RoadmapPlan
	plan.Phases = planner.NormalizePhases(plan.Phases)
	plan.TotalWeeks = planner.TotalWeeks(plan.Phases)
	plan.GenerationStatus = model.GenerationComplete
	if plan.EstimatedCompletionDate == "" {
		plan.EstimatedCompletionDate = util.FormatDate(start.AddDate(0, 0, plan.TotalWeeks*7))
	}

	stages, tasks, err := buildRecords(goal, plan.Phases, start, func(p model.PlanPhase) []model.PlanTask {
		return p.DailyTasks
	})
	if err != nil {
		return nil, err
	}

	roadmap := &model.Roadmap{
		GoalID:          goal.ID,
		UserID:          goal.UserID,
		AIGeneratedPlan: datatypes.NewJSONType(plan),
		Milestones:      datatypes.NewJSONSlice(nonNilMilestones(out.Milestones)),
		AIModel:         cfg.Model,
		PromptVersion:   planner.PromptVersion,
	}
	if err := s.saveRoadmap(ctx, roadmap, stages, tasks); err != nil {
		return nil, fmt.Errorf("save streamed roadmap: %w", err)
	}
	s.archive(ctx, roadmap.ID, StrategyStream, raw)

	if !connected {
		logger.L().Info("Client disconnected, roadmap saved anyway",
			zap.String("goal_id", goal.ID),
			zap.String("roadmap_id", roadmap.ID),
		)
	}
	send(StreamEvent{Type: EventComplete, RoadmapID: roadmap.ID, Phases: len(stages)})

	return &GenerationResult{
		RoadmapID:   roadmap.ID,
		StagesCount: len(stages),
		TasksCount:  len(tasks),
	}, nil
}

// Regenerate 重新生成目标的路线图；新路线图写入成功后旧路线图才会被删除
func (s *GenerationService) Regenerate(ctx context.Context, goalID string, userID uint, strategy string) (*GenerationResult, error) {
	switch strategy {
	case StrategyInstant:
		return s.GenerateInstant(ctx, goalID, userID)
	case StrategyFast:
		return s.regenerateFast(ctx, goalID, userID)
	default:
		return nil, fmt.Errorf("%w: %q", util.ErrInvalidStrategy, strategy)
	}
}

// regenerateFast 两次模型请求并发完成后才一次性替换旧路线图，任一失败旧路线图保持不变
func (s *GenerationService) regenerateFast(ctx context.Context, goalID string, userID uint) (*GenerationResult, error) {
	goal, err := s.findGoal(goalID, userID)
	if err != nil {
		return nil, err
	}
	release, err := s.Locker.Acquire(ctx, goal.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		draft     *overviewDraft
		phases    []model.PlanPhase
		stagesRaw string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		draft, err = s.requestOverview(gctx, goal)
		return err
	})
	g.Go(func() error {
		var err error
		phases, stagesRaw, err = s.requestStageDetails(gctx, goal)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.L().Warn("Fast regeneration failed, keeping previous roadmap",
			zap.String("goal_id", goal.ID),
			zap.Error(err),
		)
		return nil, err
	}

	draft.plan.Phases = phases
	draft.plan.TotalWeeks = planner.TotalWeeks(phases)
	draft.plan.GenerationStatus = model.GenerationComplete

	roadmap := s.newFastRoadmap(goal, draft)
	if err := s.saveRoadmap(ctx, roadmap, nil, nil); err != nil {
		return nil, fmt.Errorf("save regenerated roadmap: %w", err)
	}
	s.archive(ctx, roadmap.ID, StrategyOverview, draft.raw)
	s.archive(ctx, roadmap.ID, StrategyStages, stagesRaw)

	return &GenerationResult{RoadmapID: roadmap.ID, StagesCount: len(phases)}, nil
}
