package planner

import (
	"goal_pilot_backend/internal/model"
	"reflect"
	"testing"
	"time"
)

func sampleTasks() []model.Task {
	mk := func(id, title, desc, date string, prio int, done bool) model.Task {
		t := model.Task{Title: title, Description: desc, ScheduledDate: date, Priority: prio, Completed: done}
		t.ID = id
		return t
	}
	return []model.Task{
		mk("1", "Read chapter 1", "Variables and types", "2026-01-08", 5, true),
		mk("2", "Practice loops", "Write three loops", "2026-01-09", 4, false),
		mk("3", "Review notes", "Go over CHAPTER 1", "2026-01-10", 2, false),
		mk("4", "Exercise set", "Functions drill", "2026-01-10", 5, false),
		mk("5", "Study closures", "", "2026-01-12", 5, true),
		mk("6", "Mock interview", "", "2026-01-17", 3, false),
		mk("7", "Project kickoff", "", "2026-01-18", 5, false),
		mk("8", "Old drill", "", "2026-01-02", 5, true),
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestTaskFilterApply(t *testing.T) {
	const today = "2026-01-10"
	tests := []struct {
		name   string
		filter TaskFilter
		want   []string
	}{
		{"no filters", TaskFilter{}, []string{"1", "2", "3", "4", "5", "6", "7", "8"}},
		{"search title or description case-insensitive", TaskFilter{Search: "chapter"}, []string{"1", "3"}},
		{"completed", TaskFilter{Status: StatusCompleted}, []string{"1", "5", "8"}},
		{"pending", TaskFilter{Status: StatusPending}, []string{"2", "3", "4", "6", "7"}},
		{"priority exact", TaskFilter{Priority: 4}, []string{"2"}},
		{"today", TaskFilter{Date: DateToday}, []string{"3", "4"}},
		{"within seven days", TaskFilter{Date: DateWeek}, []string{"3", "4", "5", "6"}},
		{"overdue and incomplete", TaskFilter{Date: DateOverdue}, []string{"2"}},
		{"composed with AND", TaskFilter{Search: "e", Status: StatusPending, Priority: 5, Date: DateToday}, []string{"4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(tt.filter.Apply(sampleTasks(), today))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaskFiltersCommute(t *testing.T) {
	tasks := sampleTasks()
	const today = "2026-01-10"

	statusThenPriority := TaskFilter{Priority: 5}.Apply(TaskFilter{Status: StatusCompleted}.Apply(tasks, today), today)
	priorityThenStatus := TaskFilter{Status: StatusCompleted}.Apply(TaskFilter{Priority: 5}.Apply(tasks, today), today)

	if !reflect.DeepEqual(ids(statusThenPriority), ids(priorityThenStatus)) {
		t.Errorf("filters do not commute: %v vs %v", ids(statusThenPriority), ids(priorityThenStatus))
	}
}

func TestGroupByDateAndSortedKeys(t *testing.T) {
	groups := GroupByDate(sampleTasks())
	if len(groups["2026-01-10"]) != 2 {
		t.Fatalf("expected 2 tasks on 2026-01-10, got %d", len(groups["2026-01-10"]))
	}
	keys := SortedDateKeys(groups)
	want := []string{"2026-01-02", "2026-01-08", "2026-01-09", "2026-01-10", "2026-01-12", "2026-01-17", "2026-01-18"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("got %v, want %v", keys, want)
	}
}

func TestPaginationCoversEveryGroup(t *testing.T) {
	keys := []string{"a", "b", "c", "d", "e", "f", "g"}
	for size := 1; size <= 9; size++ {
		pages := PageCount(len(keys), size)
		if want := (len(keys) + size - 1) / size; pages != want {
			t.Fatalf("size %d: PageCount = %d, want %d", size, pages, want)
		}
		var all []string
		for p := 1; p <= pages; p++ {
			all = append(all, PaginateDateGroups(keys, p, size)...)
		}
		if !reflect.DeepEqual(all, keys) {
			t.Fatalf("size %d: concatenated pages %v != keys", size, all)
		}
		if extra := PaginateDateGroups(keys, pages+1, size); len(extra) != 0 {
			t.Fatalf("size %d: page past the end returned %v", size, extra)
		}
	}

	if PageCount(0, 5) != 0 {
		t.Error("empty list should have 0 pages")
	}
	if PaginateDateGroups(keys, 0, 5) != nil {
		t.Error("page 0 should be empty")
	}
}

func TestTaskBrowserResetsPageOnFilterChange(t *testing.T) {
	b := NewTaskBrowser(2)
	setters := []func(){
		func() { b.SetSearch("loop") },
		func() { b.SetStatus(StatusPending) },
		func() { b.SetPriority(3) },
		func() { b.SetDate(DateWeek) },
		func() { b.SetFilter(TaskFilter{}) },
	}
	for i, set := range setters {
		b.SetPage(3)
		set()
		if b.Page() != 1 {
			t.Errorf("setter %d did not reset page, got %d", i, b.Page())
		}
	}
}

func TestTaskBrowserView(t *testing.T) {
	now := time.Date(2026, 1, 10, 15, 0, 0, 0, time.UTC)
	b := NewTaskBrowser(3)

	first := b.View(sampleTasks(), now)
	if first.TotalGroups != 7 || first.TotalPages != 3 || first.TotalTasks != 8 {
		t.Fatalf("unexpected totals: %+v", first)
	}
	if len(first.Groups) != 3 || first.Groups[0].Date != "2026-01-02" {
		t.Fatalf("unexpected first page: %+v", first.Groups)
	}

	b.SetPage(3)
	last := b.View(sampleTasks(), now)
	if len(last.Groups) != 1 || last.Groups[0].Date != "2026-01-18" {
		t.Fatalf("unexpected last page: %+v", last.Groups)
	}

	b.SetStatus(StatusCompleted)
	filtered := b.View(sampleTasks(), now)
	if filtered.Page != 1 || filtered.TotalTasks != 3 || filtered.TotalPages != 1 {
		t.Fatalf("unexpected filtered view: %+v", filtered)
	}
}
