package repository

import (
	"errors"
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/testutil"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func seedGoal(t *testing.T, db *gorm.DB, userID uint) *model.Goal {
	t.Helper()
	goal := &model.Goal{
		UserID:              userID,
		Title:               "Learn Go",
		CurrentLevel:        model.LevelBeginner,
		StartDate:           "2026-01-05",
		DailyTimeCommitment: 30,
		WeeklySchedule:      datatypes.NewJSONType(model.WeeklySchedule{Monday: true}),
		Status:              model.GoalActive,
	}
	if err := NewGoalRepository(db).Create(goal); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	return goal
}

func newRoadmap(goal *model.Goal) *model.Roadmap {
	return &model.Roadmap{
		GoalID:          goal.ID,
		UserID:          goal.UserID,
		AIGeneratedPlan: datatypes.NewJSONType(model.RoadmapPlan{Overview: "plan"}),
		Milestones:      datatypes.NewJSONSlice([]model.Milestone{{Week: 1, Title: "m"}}),
		AIModel:         model.AIModelTemplate,
	}
}

func TestGoalRepositoryOwnership(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGoalRepository(db)
	goal := seedGoal(t, db, 1)

	if goal.ID == "" {
		t.Fatal("expected uuid to be assigned")
	}
	if _, err := repo.FindByIDAndUserID(goal.ID, 2); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("other user should not see the goal, got %v", err)
	}
	got, err := repo.FindByIDAndUserID(goal.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Schedule().Monday || got.Schedule().Tuesday {
		t.Errorf("weekly schedule not round-tripped: %+v", got.Schedule())
	}

	n, err := repo.UpdateStatus(goal.ID, 2, model.GoalPaused)
	if err != nil || n != 0 {
		t.Fatalf("status update by another user: n=%d err=%v", n, err)
	}
	n, err = repo.UpdateStatus(goal.ID, 1, model.GoalPaused)
	if err != nil || n != 1 {
		t.Fatalf("status update by owner: n=%d err=%v", n, err)
	}

	active, _ := repo.FindByUserID(1, model.GoalActive)
	paused, _ := repo.FindByUserID(1, model.GoalPaused)
	if len(active) != 0 || len(paused) != 1 {
		t.Errorf("status filter: active=%d paused=%d", len(active), len(paused))
	}
}

func TestReplaceForGoalAndCascadeDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	goal := seedGoal(t, db, 1)
	roadmaps := NewRoadmapRepository(db)
	stagesRepo := NewProgressStageRepository(db)
	tasksRepo := NewTaskRepository(db)

	first := newRoadmap(goal)
	stages := []model.ProgressStage{{PhaseID: "phase-1", PhaseNumber: 1, Title: "A", DurationWeeks: 1, StartDate: "2026-01-05", EndDate: "2026-01-11", Status: model.StageActive}}
	tasks := []model.Task{{UserID: 1, Title: "t", ScheduledDate: "2026-01-05", Priority: 3, PhaseID: "phase-1"}}
	if _, err := roadmaps.ReplaceForGoal(first, stages, tasks); err != nil {
		t.Fatal(err)
	}
	if stages[0].RoadmapID != first.ID || tasks[0].RoadmapID != first.ID {
		t.Fatal("children should be linked to the new roadmap")
	}

	second := newRoadmap(goal)
	replaced, err := roadmaps.ReplaceForGoal(second, nil, []model.Task{{UserID: 1, Title: "u", ScheduledDate: "2026-01-06"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(replaced) != 1 || replaced[0] != first.ID {
		t.Errorf("replaced ids = %v, want [%s]", replaced, first.ID)
	}
	if ids, _ := roadmaps.IDsByGoalID(goal.ID); len(ids) != 1 || ids[0] != second.ID {
		t.Errorf("ids by goal = %v", ids)
	}
	if n, _ := roadmaps.CountByGoalID(goal.ID); n != 1 {
		t.Fatalf("expected exactly one roadmap after replace, got %d", n)
	}
	latest, err := roadmaps.FindLatestByGoalID(goal.ID, 1)
	if err != nil || latest.ID != second.ID {
		t.Fatalf("latest roadmap = %v (%v), want %s", latest.ID, err, second.ID)
	}
	if got, _ := stagesRepo.FindByRoadmapID(first.ID); len(got) != 0 {
		t.Error("old stages should be deleted")
	}
	if all, _ := tasksRepo.Find(TaskQuery{UserID: 1}); len(all) != 1 || all[0].Title != "u" {
		t.Errorf("old tasks should be deleted, got %+v", all)
	}

	// 其他用户不能删除
	if n, err := NewGoalRepository(db).Delete(goal.ID, 2); err != nil || n != 0 {
		t.Fatalf("delete by other user: n=%d err=%v", n, err)
	}
	if n, _ := roadmaps.CountByGoalID(goal.ID); n != 1 {
		t.Fatal("roadmap must survive a foreign delete")
	}

	if n, err := NewGoalRepository(db).Delete(goal.ID, 1); err != nil || n != 1 {
		t.Fatalf("delete by owner: n=%d err=%v", n, err)
	}
	if n, _ := roadmaps.CountByGoalID(goal.ID); n != 0 {
		t.Error("roadmaps should cascade")
	}
	if all, _ := tasksRepo.Find(TaskQuery{UserID: 1}); len(all) != 0 {
		t.Error("tasks should cascade")
	}
}

func TestReplaceForGoalRollsBackOnFailure(t *testing.T) {
	db := testutil.NewTestDB(t)
	goal := seedGoal(t, db, 1)
	roadmaps := NewRoadmapRepository(db)

	original := newRoadmap(goal)
	if _, err := roadmaps.ReplaceForGoal(original, nil, nil); err != nil {
		t.Fatal(err)
	}

	// 重复的 (roadmap_id, phase_id) 触发唯一索引冲突
	dup := []model.ProgressStage{
		{PhaseID: "p", PhaseNumber: 1, Title: "A", DurationWeeks: 1, StartDate: "2026-01-05", EndDate: "2026-01-11"},
		{PhaseID: "p", PhaseNumber: 2, Title: "B", DurationWeeks: 1, StartDate: "2026-01-12", EndDate: "2026-01-18"},
	}
	if _, err := roadmaps.ReplaceForGoal(newRoadmap(goal), dup, nil); err == nil {
		t.Fatal("expected unique index violation")
	}

	latest, err := roadmaps.FindLatestByGoalID(goal.ID, 1)
	if err != nil || latest.ID != original.ID {
		t.Fatalf("original roadmap should survive a failed replace, got %v (%v)", latest.ID, err)
	}
}

func TestCreateIgnoreDuplicates(t *testing.T) {
	db := testutil.NewTestDB(t)
	goal := seedGoal(t, db, 1)
	roadmap := newRoadmap(goal)
	if _, err := NewRoadmapRepository(db).ReplaceForGoal(roadmap, nil, nil); err != nil {
		t.Fatal(err)
	}
	repo := NewProgressStageRepository(db)

	mk := func(phaseID string, n int) model.ProgressStage {
		return model.ProgressStage{RoadmapID: roadmap.ID, PhaseID: phaseID, PhaseNumber: n, Title: phaseID, DurationWeeks: 1, StartDate: "2026-01-05", EndDate: "2026-01-11"}
	}

	n, err := repo.CreateIgnoreDuplicates([]model.ProgressStage{mk("phase-1", 1), mk("phase-2", 2)})
	if err != nil || n != 2 {
		t.Fatalf("first insert: n=%d err=%v", n, err)
	}
	n, err = repo.CreateIgnoreDuplicates([]model.ProgressStage{mk("phase-2", 2), mk("phase-3", 3)})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 new row, got %d", n)
	}

	existing, err := repo.ExistingPhaseIDs(roadmap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(existing) != 3 || !existing["phase-3"] {
		t.Errorf("unexpected phase ids %v", existing)
	}
	stages, _ := repo.FindByRoadmapID(roadmap.ID)
	if len(stages) != 3 || stages[0].PhaseNumber != 1 || stages[2].PhaseNumber != 3 {
		t.Errorf("stages not ordered by phase number: %+v", stages)
	}
}

func TestTaskRepositoryActions(t *testing.T) {
	db := testutil.NewTestDB(t)
	goal := seedGoal(t, db, 1)
	other := seedGoal(t, db, 1)
	roadmap, otherRoadmap := newRoadmap(goal), newRoadmap(other)
	roadmaps := NewRoadmapRepository(db)
	if _, err := roadmaps.ReplaceForGoal(roadmap, nil, []model.Task{
		{UserID: 1, Title: "a", ScheduledDate: "2026-01-05", Priority: 3, PhaseID: "phase-1"},
		{UserID: 1, Title: "b", ScheduledDate: "2026-01-20", Priority: 5, PhaseID: "phase-1"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := roadmaps.ReplaceForGoal(otherRoadmap, nil, []model.Task{
		{UserID: 1, Title: "c", ScheduledDate: "2026-01-06", Priority: 3, PhaseID: "phase-1"},
	}); err != nil {
		t.Fatal(err)
	}
	repo := NewTaskRepository(db)

	inRange, _ := repo.Find(TaskQuery{UserID: 1, From: "2026-01-01", To: "2026-01-10"})
	if len(inRange) != 2 {
		t.Errorf("expected 2 tasks in range, got %d", len(inRange))
	}
	byGoal, _ := repo.Find(TaskQuery{UserID: 1, GoalID: goal.ID})
	if len(byGoal) != 2 {
		t.Errorf("expected 2 tasks for goal, got %d", len(byGoal))
	}
	if n, _ := repo.CountByPhase(roadmap.ID, "phase-1"); n != 2 {
		t.Errorf("expected 2 tasks in phase, got %d", n)
	}

	task := byGoal[0]
	at := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	if n, err := repo.Complete(task.ID, 1, at); err != nil || n != 1 {
		t.Fatalf("complete: n=%d err=%v", n, err)
	}
	got, _ := repo.FindByIDAndUserID(task.ID, 1)
	if !got.Completed || got.CompletedAt == nil {
		t.Fatalf("task not completed: %+v", got)
	}
	if _, err := repo.Uncomplete(task.ID, 1); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.FindByIDAndUserID(task.ID, 1)
	if got.Completed || got.CompletedAt != nil {
		t.Fatalf("task not uncompleted: %+v", got)
	}

	for i := 0; i < 2; i++ {
		if _, err := repo.Reschedule(task.ID, 1, "2026-02-01"); err != nil {
			t.Fatal(err)
		}
	}
	got, _ = repo.FindByIDAndUserID(task.ID, 1)
	if got.ScheduledDate != "2026-02-01" || got.RescheduledCount != 2 {
		t.Fatalf("reschedule: %+v", got)
	}

	if _, err := repo.UpdateDuration(task.ID, 1, 42); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.FindByIDAndUserID(task.ID, 1)
	if got.ActualDuration == nil || *got.ActualDuration != 42 {
		t.Fatalf("duration: %+v", got.ActualDuration)
	}

	if n, _ := repo.Complete(task.ID, 99, at); n != 0 {
		t.Error("another user must not complete the task")
	}
}

func TestPreferenceRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPreferenceRepository(db)

	pref, err := repo.FindByUserID(1)
	if err != nil || pref != nil {
		t.Fatalf("expected no row, got %+v %v", pref, err)
	}

	p := model.DefaultPreferences(1)
	p.Theme = "dark"
	if err := repo.Upsert(p); err != nil {
		t.Fatal(err)
	}
	update := model.DefaultPreferences(1)
	update.Theme = "light"
	update.DefaultTaskDuration = 45
	if err := repo.Upsert(update); err != nil {
		t.Fatal(err)
	}
	pref, err = repo.FindByUserID(1)
	if err != nil || pref == nil {
		t.Fatalf("expected row, got %v", err)
	}
	if pref.Theme != "light" || pref.DefaultTaskDuration != 45 {
		t.Errorf("upsert did not update: %+v", pref)
	}

	if err := db.Migrator().DropTable(&model.UserPreference{}); err != nil {
		t.Fatal(err)
	}
	pref, err = repo.FindByUserID(1)
	if err != nil || pref != nil {
		t.Fatalf("missing table should yield (nil, nil), got %+v %v", pref, err)
	}
}

func TestUserRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)

	a := &model.User{Name: "A", Email: "a@example.com", Password: "x"}
	b := &model.User{Name: "B", Email: "b@example.com", Password: "x"}
	if err := repo.Create(a); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(b); err != nil {
		t.Fatal(err)
	}

	taken, err := repo.EmailTakenByOther("b@example.com", a.ID)
	if err != nil || !taken {
		t.Fatalf("expected email taken, got %v %v", taken, err)
	}
	taken, _ = repo.EmailTakenByOther("a@example.com", a.ID)
	if taken {
		t.Fatal("own email must not count as taken")
	}

	if err := repo.UpdateProfile(a.ID, "Alice", "alice@example.com"); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateLastSeen(a.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.FindByEmail("alice@example.com")
	if got.Name != "Alice" || got.LastSeen == nil {
		t.Errorf("unexpected user %+v", got)
	}
}
