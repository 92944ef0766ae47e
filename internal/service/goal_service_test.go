package service

import (
	"context"
	"errors"
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/util"
	"testing"
)

func validGoalInput() GoalInput {
	return GoalInput{
		Title:               "Learn Spanish",
		CurrentLevel:        model.LevelBeginner,
		StartDate:           "2026-01-05",
		DailyTimeCommitment: 30,
		WeeklySchedule:      model.WeeklySchedule{Monday: true, Friday: true},
	}
}

func TestGoalInputValidate(t *testing.T) {
	target := "2025-12-31"
	empty := ""
	tests := []struct {
		name    string
		mutate  func(*GoalInput)
		wantErr error
	}{
		{"valid", func(in *GoalInput) {}, nil},
		{"blank title", func(in *GoalInput) { in.Title = "   " }, util.ErrInvalidGoal},
		{"bad level", func(in *GoalInput) { in.CurrentLevel = "guru" }, util.ErrInvalidGoal},
		{"too little time", func(in *GoalInput) { in.DailyTimeCommitment = 10 }, util.ErrInvalidGoal},
		{"too much time", func(in *GoalInput) { in.DailyTimeCommitment = 481 }, util.ErrInvalidGoal},
		{"no available day", func(in *GoalInput) { in.WeeklySchedule = model.WeeklySchedule{} }, util.ErrInvalidSchedule},
		{"bad start date", func(in *GoalInput) { in.StartDate = "Jan 5" }, util.ErrInvalidDate},
		{"target before start", func(in *GoalInput) { in.TargetDate = &target }, util.ErrInvalidGoal},
		{"empty target is dropped", func(in *GoalInput) { in.TargetDate = &empty }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validGoalInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGoalInputDefaults(t *testing.T) {
	in := validGoalInput()
	in.CurrentLevel = ""
	in.DailyTimeCommitment = 0
	if err := in.Validate(); err != nil {
		t.Fatal(err)
	}
	if in.CurrentLevel != model.LevelBeginner || in.DailyTimeCommitment != 30 {
		t.Errorf("defaults = %q, %d", in.CurrentLevel, in.DailyTimeCommitment)
	}
}

func TestGoalServiceCRUD(t *testing.T) {
	f := newFixture(t)
	svc := NewGoalService(f.goals, f.roadmaps, f.archiver)

	goal, err := svc.Create(1, validGoalInput())
	if err != nil {
		t.Fatal(err)
	}
	if goal.Status != model.GoalActive || !goal.Schedule().Friday {
		t.Errorf("created goal = %+v", goal)
	}

	detail, err := svc.Get(goal.ID, 1)
	if err != nil || detail.Roadmap != nil {
		t.Fatalf("Get before generation = %+v, %v", detail, err)
	}
	if _, err := svc.Get(goal.ID, 2); !errors.Is(err, util.ErrGoalNotFound) {
		t.Errorf("other user: got %v", err)
	}

	in := validGoalInput()
	in.Title = "Learn Spanish fast"
	in.DailyTimeCommitment = 60
	updated, err := svc.Update(goal.ID, 1, in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Learn Spanish fast" || updated.DailyTimeCommitment != 60 {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := svc.UpdateStatus(goal.ID, 1, "archived"); !errors.Is(err, util.ErrInvalidGoal) {
		t.Errorf("bad status: got %v", err)
	}
	paused, err := svc.UpdateStatus(goal.ID, 1, model.GoalPaused)
	if err != nil || paused.Status != model.GoalPaused {
		t.Fatalf("pause = %+v, %v", paused, err)
	}
	list, _ := svc.List(1, model.GoalPaused)
	if len(list) != 1 {
		t.Errorf("paused goals = %d", len(list))
	}
}

func TestGoalDeleteCascades(t *testing.T) {
	f := newFixture(t)
	svc := NewGoalService(f.goals, f.roadmaps, f.archiver)
	user := f.seedUser(t, "a@example.com")
	goal, _ := svc.Create(user.ID, validGoalInput())

	result, err := f.gen.GenerateInstant(context.Background(), goal.ID, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	detail, _ := svc.Get(goal.ID, user.ID)
	if detail.Roadmap == nil || detail.Roadmap.ID != result.RoadmapID {
		t.Fatalf("Get should include the roadmap")
	}

	if err := svc.Delete(context.Background(), goal.ID, user.ID+1); !errors.Is(err, util.ErrGoalNotFound) {
		t.Errorf("delete by other user: got %v", err)
	}
	if err := svc.Delete(context.Background(), goal.ID, user.ID); err != nil {
		t.Fatal(err)
	}
	if n := f.countTasks(t, result.RoadmapID); n != 0 {
		t.Errorf("tasks left after delete: %d", n)
	}
	if stages, _ := f.stages.FindByRoadmapID(result.RoadmapID); len(stages) != 0 {
		t.Errorf("stages left after delete: %d", len(stages))
	}
	if len(f.archiver.purged) != 1 || f.archiver.purged[0] != result.RoadmapID {
		t.Errorf("purged archives = %v, want [%s]", f.archiver.purged, result.RoadmapID)
	}
}
