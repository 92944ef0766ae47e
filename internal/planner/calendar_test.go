package planner

import (
	"goal_pilot_backend/internal/model"
	"testing"
	"time"
)

func TestMonthGrid(t *testing.T) {
	tests := []struct {
		month     time.Time
		first     string
		last      string
		weekCount int
	}{
		// 2026-01-01 是周四
		{time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), "2025-12-28", "2026-01-31", 5},
		// 2026-02-01 是周日，28 天正好 4 周
		{time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "2026-02-01", "2026-02-28", 4},
		// 2026-08-01 是周六，需要 6 周
		{time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), "2026-07-26", "2026-09-05", 6},
	}
	for _, tt := range tests {
		weeks := MonthGrid(tt.month)
		if len(weeks) != tt.weekCount {
			t.Errorf("%s: expected %d weeks, got %d", tt.month.Format("2006-01"), tt.weekCount, len(weeks))
			continue
		}
		if weeks[0][0] != tt.first {
			t.Errorf("%s: first date %s, want %s", tt.month.Format("2006-01"), weeks[0][0], tt.first)
		}
		last := weeks[len(weeks)-1]
		if last[6] != tt.last {
			t.Errorf("%s: last date %s, want %s", tt.month.Format("2006-01"), last[6], tt.last)
		}
		if date(weeks[0][0]).Weekday() != time.Sunday || date(last[6]).Weekday() != time.Saturday {
			t.Errorf("%s: grid must run Sunday..Saturday", tt.month.Format("2006-01"))
		}
		// 连续且每周 7 天
		prev := date(weeks[0][0]).AddDate(0, 0, -1)
		for _, w := range weeks {
			if len(w) != 7 {
				t.Fatalf("week with %d days", len(w))
			}
			for _, d := range w {
				if !prev.AddDate(0, 0, 1).Equal(date(d)) {
					t.Fatalf("non-contiguous grid at %s", d)
				}
				prev = date(d)
			}
		}
	}
}

func TestComputeStats(t *testing.T) {
	if s := ComputeStats(nil); s.Percentage != 0 || s.Total != 0 {
		t.Errorf("empty stats = %+v", s)
	}
	tasks := []model.Task{{Completed: true}, {Completed: true}, {Completed: true}, {}}
	if s := ComputeStats(tasks); s.Percentage != 75 || s.Completed != 3 || s.Total != 4 {
		t.Errorf("3 of 4 stats = %+v", s)
	}
	if s := ComputeStats([]model.Task{{Completed: true}, {}, {}}); s.Percentage != 33 {
		t.Errorf("1 of 3 should round to 33, got %d", s.Percentage)
	}
	if s := ComputeStats([]model.Task{{Completed: true}, {Completed: true}, {}}); s.Percentage != 67 {
		t.Errorf("2 of 3 should round to 67, got %d", s.Percentage)
	}
}

func TestCalendarState(t *testing.T) {
	now := time.Date(2026, 1, 14, 8, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ScheduledDate: "2026-01-14", Completed: true},
		{ScheduledDate: "2026-01-14"},
		{ScheduledDate: "2026-01-20"},
	}
	state := NewCalendarState(now, tasks, now)

	if state.Month != "2026-01" {
		t.Errorf("month = %s", state.Month)
	}
	if state.Today.Total != 2 || state.Today.Percentage != 50 {
		t.Errorf("today stats = %+v", state.Today)
	}
	if state.SelectedDate != "2026-01-14" {
		t.Errorf("default selection = %s", state.SelectedDate)
	}
	if got := state.Select("2026-01-20"); len(got) != 1 || state.SelectedDate != "2026-01-20" {
		t.Errorf("select returned %d tasks, selected %s", len(got), state.SelectedDate)
	}
	if got := state.TasksOn("2026-01-21"); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
	if !state.Contains("2025-12-28") || state.Contains("2026-02-01") {
		t.Error("Contains does not match grid bounds")
	}
}
