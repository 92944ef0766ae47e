package service

import (
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/planner"
	"goal_pilot_backend/internal/repository"
	"goal_pilot_backend/internal/util"
	"time"
)

// CalendarView 日历接口的返回结构
type CalendarView struct {
	*planner.CalendarState
	SelectedTasks []model.Task `json:"selectedTasks"`
}

type CalendarService struct {
	TaskRepo *repository.TaskRepository
	Now      func() time.Time
}

func NewCalendarService(taskRepo *repository.TaskRepository) *CalendarService {
	return &CalendarService{TaskRepo: taskRepo, Now: time.Now}
}

// ParseMonth 解析 YYYY-MM，空字符串表示当前月
func (s *CalendarService) ParseMonth(month string) (time.Time, error) {
	if month == "" {
		return planner.MonthStart(s.Now()), nil
	}
	t, err := time.Parse(util.MonthFormat, month)
	if err != nil {
		return time.Time{}, util.ErrInvalidDate
	}
	return t, nil
}

// Month 一次取出网格范围内的任务并按日期分桶；selected 为空时选中今天
func (s *CalendarService) Month(userID uint, goalID string, month time.Time, selected string) (*CalendarView, error) {
	first, last := planner.GridRange(month)
	tasks, err := s.TaskRepo.Find(repository.TaskQuery{
		UserID: userID,
		GoalID: goalID,
		From:   util.FormatDate(first),
		To:     util.FormatDate(last),
	})
	if err != nil {
		return nil, err
	}

	now := s.Now()
	state := planner.NewCalendarState(month, tasks, now)

	// 今天不在网格内时单独统计
	if !state.Contains(state.TodayDate) {
		todays, err := s.TaskRepo.Find(repository.TaskQuery{
			UserID: userID,
			GoalID: goalID,
			From:   state.TodayDate,
			To:     state.TodayDate,
		})
		if err != nil {
			return nil, err
		}
		state.Today = planner.ComputeStats(todays)
	}

	if selected != "" {
		if _, err := util.ParseDate(selected); err != nil {
			return nil, err
		}
	} else {
		selected = state.TodayDate
	}

	return &CalendarView{
		CalendarState: state,
		SelectedTasks: state.Select(selected),
	}, nil
}
