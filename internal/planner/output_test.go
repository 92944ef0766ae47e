package planner

import (
	"errors"
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/util"
	"testing"
)

func TestDecodeModelJSON(t *testing.T) {
	var out GeneratedRoadmap
	raw := "```json\n" + `{"overview":"o","phases":[{"id":"p1","title":"A","duration_weeks":2,"daily_tasks":[{"title":"t","type":"study"}]}],"milestones":[{"week":2,"title":"m"}]}` + "\n```"
	if err := DecodeModelJSON(raw, &out); err != nil {
		t.Fatal(err)
	}
	if out.Overview != "o" || len(out.Phases) != 1 || len(out.Milestones) != 1 {
		t.Fatalf("unexpected decode result: %+v", out)
	}
	if out.Phases[0].DailyTasks[0].Type != "study" {
		t.Fatalf("daily tasks not decoded: %+v", out.Phases[0])
	}
}

func TestDecodeModelJSONErrors(t *testing.T) {
	var v GeneratedTasks
	if err := DecodeModelJSON("{not json", &v); !errors.Is(err, util.ErrMalformedModelOutput) {
		t.Errorf("expected ErrMalformedModelOutput, got %v", err)
	}
	if err := DecodeModelJSON("   ", &v); !errors.Is(err, util.ErrEmptyModelOutput) {
		t.Errorf("expected ErrEmptyModelOutput, got %v", err)
	}
}

func TestNormalizePhases(t *testing.T) {
	phases := NormalizePhases([]model.PlanPhase{
		{ID: "a", Title: "A", DurationWeeks: 2},
		{ID: "a", Title: "B", DurationWeeks: 0},
		{Title: ""},
	})
	if phases[0].ID != "a" || phases[1].ID != "phase-2" || phases[2].ID != "phase-3" {
		t.Errorf("unexpected ids: %s %s %s", phases[0].ID, phases[1].ID, phases[2].ID)
	}
	if phases[1].DurationWeeks != 1 {
		t.Errorf("weeks should be clamped to 1, got %d", phases[1].DurationWeeks)
	}
	if phases[2].Title != "Phase 3" {
		t.Errorf("missing title should be filled, got %q", phases[2].Title)
	}
}

func TestMergeStageDetails(t *testing.T) {
	base := GenericPhases(GenericStages("beginner"))
	details := []model.PlanPhase{
		{ID: "ignored", Description: "start here", SkillsToLearn: []string{"x"}, DurationWeeks: 9},
	}
	merged := MergeStageDetails(base, details)
	if merged[0].ID != "phase-1" || merged[0].DurationWeeks != base[0].DurationWeeks {
		t.Errorf("id and weeks must come from the generic stage: %+v", merged[0])
	}
	if merged[0].Description != "start here" || len(merged[0].SkillsToLearn) != 1 {
		t.Errorf("details not merged: %+v", merged[0])
	}
	if merged[1].Description != "" {
		t.Errorf("stage without details should be untouched: %+v", merged[1])
	}
	if TotalWeeks(merged) != TotalWeeks(base) {
		t.Error("merge must not change total weeks")
	}
}
