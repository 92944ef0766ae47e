package service

import (
	"errors"
	"fmt"
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/planner"
	"goal_pilot_backend/internal/repository"
	"goal_pilot_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

// TaskListQuery 任务列表的查询参数
type TaskListQuery struct {
	GoalID   string
	Filter   planner.TaskFilter
	Page     int
	PageSize int
}

// TaskService 处理任务查询与任务操作
type TaskService struct {
	TaskRepo        *repository.TaskRepository
	DefaultPageSize int
	Now             func() time.Time
}

func NewTaskService(taskRepo *repository.TaskRepository, defaultPageSize int) *TaskService {
	return &TaskService{
		TaskRepo:        taskRepo,
		DefaultPageSize: defaultPageSize,
		Now:             time.Now,
	}
}

// List 读取用户任务后按日期分组筛选分页
func (s *TaskService) List(userID uint, q TaskListQuery) (planner.TaskPage, error) {
	tasks, err := s.TaskRepo.Find(repository.TaskQuery{UserID: userID, GoalID: q.GoalID})
	if err != nil {
		return planner.TaskPage{}, err
	}

	size := q.PageSize
	if size <= 0 {
		size = s.DefaultPageSize
	}
	browser := planner.NewTaskBrowser(size)
	browser.SetFilter(q.Filter)
	browser.SetPage(q.Page)
	return browser.View(tasks, s.Now()), nil
}

// afterUpdate 更新影响 0 行说明任务不存在或不属于该用户
func (s *TaskService) afterUpdate(id string, userID uint, rows int64, err error) (*model.Task, error) {
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, util.ErrTaskNotFound
	}
	task, err := s.TaskRepo.FindByIDAndUserID(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Complete(id string, userID uint) (*model.Task, error) {
	rows, err := s.TaskRepo.Complete(id, userID, s.Now())
	return s.afterUpdate(id, userID, rows, err)
}

func (s *TaskService) Uncomplete(id string, userID uint) (*model.Task, error) {
	rows, err := s.TaskRepo.Uncomplete(id, userID)
	return s.afterUpdate(id, userID, rows, err)
}

func (s *TaskService) Reschedule(id string, userID uint, date string) (*model.Task, error) {
	if _, err := util.ParseDate(date); err != nil {
		return nil, err
	}
	rows, err := s.TaskRepo.Reschedule(id, userID, date)
	return s.afterUpdate(id, userID, rows, err)
}

// UpdateDuration 记录实际用时（分钟）
func (s *TaskService) UpdateDuration(id string, userID uint, minutes int) (*model.Task, error) {
	if minutes <= 0 || minutes > 24*60 {
		return nil, fmt.Errorf("%w: duration must be between 1 and 1440 minutes", util.ErrInvalidTaskInput)
	}
	rows, err := s.TaskRepo.UpdateDuration(id, userID, minutes)
	return s.afterUpdate(id, userID, rows, err)
}
