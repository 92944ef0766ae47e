package planner

import (
	"goal_pilot_backend/internal/model"
	"testing"
	"time"
)

func TestFindMatchingTemplate(t *testing.T) {
	tests := []struct {
		title   string
		wantKey string
	}{
		{"Learn Spanish for my trip", "learn spanish"},
		{"  LEARN PYTHON  ", "learn python"},
		{"I want to learn JavaScript", "learn javascript"},
		{"Get fit before summer", "get fit"},
		{"Master public speaking", "public speaking"},
		{"Become fluent in French", "learn spanish"},
		{"Build a React portfolio", "learn javascript"},
		{"Start coding", "learn python"},
		{"Run a marathon", "get fit"},
		{"Play ukulele songs", "learn guitar"},
		{"Give better presentations", "public speaking"},
		{"xyz obscure goal", ""},
		{"brunch recipes", ""},
		{"", ""},
	}

	for _, tt := range tests {
		got := FindMatchingTemplate(tt.title)
		if tt.wantKey == "" {
			if got != nil {
				t.Errorf("FindMatchingTemplate(%q) = %q, want nil", tt.title, got.Key)
			}
			continue
		}
		if got == nil {
			t.Errorf("FindMatchingTemplate(%q) = nil, want %q", tt.title, tt.wantKey)
			continue
		}
		if got.Key != tt.wantKey {
			t.Errorf("FindMatchingTemplate(%q) = %q, want %q", tt.title, got.Key, tt.wantKey)
		}
	}
}

func TestTemplatesAreWellFormed(t *testing.T) {
	if len(Templates()) != 6 {
		t.Fatalf("expected 6 templates, got %d", len(Templates()))
	}
	for _, tmpl := range Templates() {
		if len(tmpl.Phases) == 0 {
			t.Errorf("template %q has no phases", tmpl.Key)
		}
		for _, p := range tmpl.Phases {
			if p.Weeks < 1 || p.Title == "" || p.Focus == "" {
				t.Errorf("template %q has an incomplete phase: %+v", tmpl.Key, p)
			}
		}
	}
}

func TestMilestoneWeeks(t *testing.T) {
	tests := []struct {
		total int
		want  [3]int
	}{
		{12, [3]int{4, 8, 12}},
		{16, [3]int{5, 11, 16}},
		{1, [3]int{1, 1, 1}},
		{2, [3]int{1, 1, 2}},
		{0, [3]int{1, 1, 1}},
	}
	for _, tt := range tests {
		if got := MilestoneWeeks(tt.total); got != tt.want {
			t.Errorf("MilestoneWeeks(%d) = %v, want %v", tt.total, got, tt.want)
		}
	}
}

func TestBuildTemplatePlan(t *testing.T) {
	tmpl := FindMatchingTemplate("learn python")
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	plan, milestones := BuildTemplatePlan(tmpl, "Learn Python", start)

	if !plan.TemplateUsed {
		t.Error("expected template_used to be set")
	}
	if plan.GenerationStatus != model.GenerationComplete {
		t.Errorf("unexpected generation status %q", plan.GenerationStatus)
	}
	if plan.TotalWeeks != 12 {
		t.Fatalf("expected 12 total weeks, got %d", plan.TotalWeeks)
	}
	if plan.EstimatedCompletionDate != "2026-03-30" {
		t.Errorf("unexpected completion date %s", plan.EstimatedCompletionDate)
	}
	if len(plan.Phases) != len(tmpl.Phases) {
		t.Fatalf("expected %d phases, got %d", len(tmpl.Phases), len(plan.Phases))
	}
	for i, p := range plan.Phases {
		if want := "phase-" + string(rune('1'+i)); p.ID != want {
			t.Errorf("phase %d id = %q, want %q", i, p.ID, want)
		}
	}
	if len(milestones) != 3 {
		t.Fatalf("expected 3 milestones, got %d", len(milestones))
	}
	weeks := []int{milestones[0].Week, milestones[1].Week, milestones[2].Week}
	if weeks[0] != 4 || weeks[1] != 8 || weeks[2] != 12 {
		t.Errorf("unexpected milestone weeks %v", weeks)
	}
}

func TestGenericStages(t *testing.T) {
	beginner := GenericStages("Complete beginner drawing")
	if beginner[0].Title != "Foundations" {
		t.Errorf("expected beginner track, got %q first", beginner[0].Title)
	}
	other := GenericStages("Improve chess rating")
	if other[0].Title != "Skill Assessment" {
		t.Errorf("expected intermediate track, got %q first", other[0].Title)
	}

	// 返回副本，修改不影响内置轨道
	beginner[0].Title = "changed"
	if GenericStages("beginner")[0].Title != "Foundations" {
		t.Error("GenericStages must return a copy")
	}

	phases := GenericPhases(other)
	if len(phases) != len(other) || phases[0].ID != "phase-1" || phases[0].DurationWeeks != other[0].Weeks {
		t.Errorf("unexpected generic phases: %+v", phases)
	}
}
