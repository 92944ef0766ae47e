package planner

import (
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/util"
	"math"
	"time"
)

// MonthStart 返回 month 所在月的 1 号（UTC）
func MonthStart(month time.Time) time.Time {
	return time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// GridRange 日历网格的首尾日期：1 号当天或之前的周日，到月末当天或之后的周六
func GridRange(month time.Time) (time.Time, time.Time) {
	first := MonthStart(month)
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))
	return start, end
}

// MonthGrid 把网格区间按 7 天切分为若干周
func MonthGrid(month time.Time) [][]string {
	start, end := GridRange(month)
	var weeks [][]string
	var week []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		week = append(week, util.FormatDate(d))
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = nil
		}
	}
	return weeks
}

// DayStats 某一天的完成情况
type DayStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// ComputeStats 完成率 round(100*completed/total)，没有任务时为 0
func ComputeStats(tasks []model.Task) DayStats {
	stats := DayStats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			stats.Completed++
		}
	}
	if stats.Total > 0 {
		stats.Percentage = int(math.Round(100 * float64(stats.Completed) / float64(stats.Total)))
	}
	return stats
}

// CalendarState 一个月视图的状态：任务只在构造时按区间取一次，选择日期只做索引
type CalendarState struct {
	Month        string                  `json:"month"`
	Weeks        [][]string              `json:"weeks"`
	TasksByDate  map[string][]model.Task `json:"tasksByDate"`
	Today        DayStats                `json:"today"`
	TodayDate    string                  `json:"todayDate"`
	SelectedDate string                  `json:"selectedDate"`
}

func NewCalendarState(month time.Time, tasks []model.Task, now time.Time) *CalendarState {
	state := &CalendarState{
		Month:       MonthStart(month).Format(util.MonthFormat),
		Weeks:       MonthGrid(month),
		TasksByDate: GroupByDate(tasks),
		TodayDate:   util.Today(now),
	}
	state.Today = ComputeStats(state.TasksByDate[state.TodayDate])
	state.SelectedDate = state.TodayDate
	return state
}

// TasksOn 返回某天的任务，不会重新查询
func (s *CalendarState) TasksOn(date string) []model.Task {
	if tasks, ok := s.TasksByDate[date]; ok {
		return tasks
	}
	return []model.Task{}
}

func (s *CalendarState) Select(date string) []model.Task {
	s.SelectedDate = date
	return s.TasksOn(date)
}

// Contains 日期是否在当前网格内
func (s *CalendarState) Contains(date string) bool {
	if len(s.Weeks) == 0 {
		return false
	}
	first := s.Weeks[0][0]
	lastWeek := s.Weeks[len(s.Weeks)-1]
	return date >= first && date <= lastWeek[len(lastWeek)-1]
}
