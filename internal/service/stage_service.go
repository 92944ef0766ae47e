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

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const StrategyPhaseTasks = "tasks"

// AutoCreateResult 自动创建阶段的结果；Phases 为空表示阶段已存在
type AutoCreateResult struct {
	Message string                `json:"message"`
	Phases  []model.ProgressStage `json:"phases,omitempty"`
}

type PhaseTasksResult struct {
	Message    string `json:"message"`
	TasksCount int64  `json:"tasksCount"`
}

// StageService 进度阶段与阶段任务的落库
type StageService struct {
	GoalRepo    *repository.GoalRepository
	RoadmapRepo *repository.RoadmapRepository
	StageRepo   *repository.ProgressStageRepository
	TaskRepo    *repository.TaskRepository
	LLM         LLMClient
	Settings    func() config.AIConfig
}

func NewStageService(
	goalRepo *repository.GoalRepository,
	roadmapRepo *repository.RoadmapRepository,
	stageRepo *repository.ProgressStageRepository,
	taskRepo *repository.TaskRepository,
	llm LLMClient,
	settings func() config.AIConfig,
) *StageService {
	return &StageService{
		GoalRepo:    goalRepo,
		RoadmapRepo: roadmapRepo,
		StageRepo:   stageRepo,
		TaskRepo:    taskRepo,
		LLM:         llm,
		Settings:    settings,
	}
}

// loadRoadmap 读取路线图及其目标，同时校验归属
func (s *StageService) loadRoadmap(roadmapID string, userID uint) (*model.Roadmap, *model.Goal, error) {
	roadmap, err := s.RoadmapRepo.FindByIDAndUserID(roadmapID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrRoadmapNotFound
		}
		return nil, nil, err
	}
	goal, err := s.GoalRepo.FindByIDAndUserID(roadmap.GoalID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrGoalNotFound
		}
		return nil, nil, err
	}
	return roadmap, goal, nil
}

// AutoCreate 按路线图计划创建缺失的阶段，可重复调用
func (s *StageService) AutoCreate(roadmapID string, userID uint) (*AutoCreateResult, error) {
	roadmap, goal, err := s.loadRoadmap(roadmapID, userID)
	if err != nil {
		return nil, err
	}

	start, err := util.ParseDate(goal.StartDate)
	if err != nil {
		return nil, err
	}

	existing, err := s.StageRepo.ExistingPhaseIDs(roadmap.ID)
	if err != nil {
		return nil, err
	}

	phases := planner.NormalizePhases(roadmap.Plan().Phases)
	candidates := planner.FilterNewStages(planner.AllocateStages(roadmap.ID, phases, start), existing)
	if len(candidates) == 0 {
		return &AutoCreateResult{Message: "Progress stages already exist"}, nil
	}

	// 并发请求之间的竞争由唯一索引兜底
	inserted, err := s.StageRepo.CreateIgnoreDuplicates(candidates)
	if err != nil {
		return nil, fmt.Errorf("create progress stages: %w", err)
	}
	if inserted == 0 {
		return &AutoCreateResult{Message: "Progress stages already exist"}, nil
	}

	return &AutoCreateResult{
		Message: fmt.Sprintf("Created %d progress stages", inserted),
		Phases:  candidates,
	}, nil
}

func (s *StageService) List(roadmapID string, userID uint) ([]model.ProgressStage, error) {
	if _, err := s.RoadmapRepo.FindByIDAndUserID(roadmapID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRoadmapNotFound
		}
		return nil, err
	}
	return s.StageRepo.FindByRoadmapID(roadmapID)
}

// phaseFor 在计划中查找阶段，找不到时用阶段记录本身的字段
func phaseFor(plan model.RoadmapPlan, stage *model.ProgressStage) model.PlanPhase {
	for _, p := range plan.Phases {
		if p.ID == stage.PhaseID {
			return p
		}
	}
	return model.PlanPhase{
		ID:            stage.PhaseID,
		Title:         stage.Title,
		Description:   stage.Description,
		DurationWeeks: stage.DurationWeeks,
	}
}

// GeneratePhaseTasksFast 为单个阶段生成任务；模型失败时退回默认模板，
// 阶段已有任务时直接返回已有数量
func (s *StageService) GeneratePhaseTasksFast(ctx context.Context, roadmapID, phaseID string, userID uint) (*PhaseTasksResult, error) {
	roadmap, goal, err := s.loadRoadmap(roadmapID, userID)
	if err != nil {
		return nil, err
	}

	stage, err := s.StageRepo.FindByRoadmapAndPhase(roadmap.ID, phaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStageNotFound
		}
		return nil, err
	}

	count, err := s.TaskRepo.CountByPhase(roadmap.ID, phaseID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return &PhaseTasksResult{Message: "Tasks already exist for this phase", TasksCount: count}, nil
	}

	phase := phaseFor(roadmap.Plan(), stage)
	templates := s.phaseTemplates(ctx, goal, phase)

	tasks, err := planner.BuildStageTasks(*stage, userID, goal.Schedule(), templates, goal.DailyTimeCommitment)
	if err != nil {
		return nil, err
	}
	if err := s.TaskRepo.CreateBatch(tasks); err != nil {
		return nil, fmt.Errorf("create phase tasks: %w", err)
	}

	return &PhaseTasksResult{
		Message:    fmt.Sprintf("Generated %d tasks for %s", len(tasks), stage.Title),
		TasksCount: int64(len(tasks)),
	}, nil
}

func (s *StageService) phaseTemplates(ctx context.Context, goal *model.Goal, phase model.PlanPhase) []model.PlanTask {
	fallback := planner.DefaultTaskTemplates(phase, goal.DailyTimeCommitment)
	if s.LLM == nil {
		return fallback
	}

	cfg := s.Settings()
	callCtx, cancel := context.WithTimeout(ctx, cfg.TaskTimeout())
	defer cancel()

	raw, err := s.LLM.Chat(callCtx, ChatRequest{
		Purpose:   StrategyPhaseTasks,
		Model:     cfg.FastModel,
		System:    planner.SystemPrompt,
		Prompt:    planner.PhaseTasksPrompt(planner.GoalInput(goal), phase),
		MaxTokens: cfg.TaskMaxTokens,
		JSONMode:  true,
	})
	if err == nil {
		var out planner.GeneratedTasks
		if err = planner.DecodeModelJSON(raw, &out); err == nil && len(out.Tasks) > 0 {
			return out.Tasks
		}
	}

	logger.L().Warn("Phase task generation failed, using default templates",
		zap.String("goal_id", goal.ID),
		zap.String("phase_id", phase.ID),
		zap.Error(err),
	)
	return fallback
}
