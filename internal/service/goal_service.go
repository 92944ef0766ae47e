package service

import (
	"context"
	"errors"
	"fmt"
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/repository"
	"goal_pilot_backend/internal/util"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MinDailyCommitment = 15
	MaxDailyCommitment = 480
)

// GoalInput 创建或修改目标时提交的字段
type GoalInput struct {
	Title               string               `json:"title" binding:"required"`
	Description         string               `json:"description"`
	CurrentLevel        model.SkillLevel     `json:"currentLevel"`
	StartDate           string               `json:"startDate" binding:"required"`
	TargetDate          *string              `json:"targetDate"`
	DailyTimeCommitment int                  `json:"dailyTimeCommitment"`
	WeeklySchedule      model.WeeklySchedule `json:"weeklySchedule"`
}

// GoalDetail 目标及其当前路线图
type GoalDetail struct {
	Goal    *model.Goal    `json:"goal"`
	Roadmap *model.Roadmap `json:"roadmap,omitempty"`
}

type GoalService struct {
	GoalRepo    *repository.GoalRepository
	RoadmapRepo *repository.RoadmapRepository
	Archiver    Archiver
}

func NewGoalService(goalRepo *repository.GoalRepository, roadmapRepo *repository.RoadmapRepository, archiver Archiver) *GoalService {
	return &GoalService{GoalRepo: goalRepo, RoadmapRepo: roadmapRepo, Archiver: archiver}
}

func invalidGoal(msg string) error {
	return fmt.Errorf("%w: %s", util.ErrInvalidGoal, msg)
}

// Validate 校验并规范化输入
func (in *GoalInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return invalidGoal("title is required")
	}
	if len(in.Title) > 255 {
		return invalidGoal("title must be at most 255 characters")
	}

	if in.CurrentLevel == "" {
		in.CurrentLevel = model.LevelBeginner
	}
	switch in.CurrentLevel {
	case model.LevelBeginner, model.LevelIntermediate, model.LevelAdvanced, model.LevelExpert:
	default:
		return invalidGoal("currentLevel must be beginner, intermediate, advanced or expert")
	}

	if in.DailyTimeCommitment == 0 {
		in.DailyTimeCommitment = 30
	}
	if in.DailyTimeCommitment < MinDailyCommitment || in.DailyTimeCommitment > MaxDailyCommitment {
		return invalidGoal(fmt.Sprintf("dailyTimeCommitment must be between %d and %d minutes", MinDailyCommitment, MaxDailyCommitment))
	}

	if !in.WeeklySchedule.HasAvailableDay() {
		return util.ErrInvalidSchedule
	}

	start, err := util.ParseDate(in.StartDate)
	if err != nil {
		return err
	}
	if in.TargetDate != nil && *in.TargetDate == "" {
		in.TargetDate = nil
	}
	if in.TargetDate != nil {
		target, err := util.ParseDate(*in.TargetDate)
		if err != nil {
			return err
		}
		if target.Before(start) {
			return invalidGoal("targetDate must not be before startDate")
		}
	}
	return nil
}

func (in *GoalInput) apply(goal *model.Goal) {
	goal.Title = in.Title
	goal.Description = in.Description
	goal.CurrentLevel = in.CurrentLevel
	goal.StartDate = in.StartDate
	goal.TargetDate = in.TargetDate
	goal.DailyTimeCommitment = in.DailyTimeCommitment
	goal.WeeklySchedule = datatypes.NewJSONType(in.WeeklySchedule)
}

func (s *GoalService) Create(userID uint, in GoalInput) (*model.Goal, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	goal := &model.Goal{UserID: userID, Status: model.GoalActive}
	in.apply(goal)
	if err := s.GoalRepo.Create(goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) List(userID uint, status model.GoalStatus) ([]model.Goal, error) {
	if status != "" && !validStatus(status) {
		return nil, invalidGoal("unknown status")
	}
	return s.GoalRepo.FindByUserID(userID, status)
}

func (s *GoalService) find(id string, userID uint) (*model.Goal, error) {
	goal, err := s.GoalRepo.FindByIDAndUserID(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrGoalNotFound
		}
		return nil, err
	}
	return goal, nil
}

// Get 返回目标及其最新路线图（可能尚未生成）
func (s *GoalService) Get(id string, userID uint) (*GoalDetail, error) {
	goal, err := s.find(id, userID)
	if err != nil {
		return nil, err
	}
	detail := &GoalDetail{Goal: goal}
	roadmap, err := s.RoadmapRepo.FindLatestByGoalID(goal.ID, userID)
	if err == nil {
		detail.Roadmap = roadmap
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return detail, nil
}

func (s *GoalService) Update(id string, userID uint, in GoalInput) (*model.Goal, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	goal, err := s.find(id, userID)
	if err != nil {
		return nil, err
	}
	in.apply(goal)
	if err := s.GoalRepo.Update(goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func validStatus(status model.GoalStatus) bool {
	switch status {
	case model.GoalActive, model.GoalCompleted, model.GoalPaused:
		return true
	}
	return false
}

func (s *GoalService) UpdateStatus(id string, userID uint, status model.GoalStatus) (*model.Goal, error) {
	if !validStatus(status) {
		return nil, invalidGoal("status must be active, completed or paused")
	}
	rows, err := s.GoalRepo.UpdateStatus(id, userID, status)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, util.ErrGoalNotFound
	}
	return s.find(id, userID)
}

// Delete 删除目标，级联删除路线图、阶段和任务，并清理生成归档
func (s *GoalService) Delete(ctx context.Context, id string, userID uint) error {
	if _, err := s.find(id, userID); err != nil {
		return err
	}
	roadmapIDs, err := s.RoadmapRepo.IDsByGoalID(id)
	if err != nil {
		return err
	}

	rows, err := s.GoalRepo.Delete(id, userID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return util.ErrGoalNotFound
	}

	if s.Archiver != nil && len(roadmapIDs) > 0 {
		s.Archiver.PurgeGenerations(context.WithoutCancel(ctx), roadmapIDs)
	}
	return nil
}
