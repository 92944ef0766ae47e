package service

import (
	"context"
	"goal_pilot_backend/internal/config"
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/repository"
	"goal_pilot_backend/internal/testutil"
	"sync"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// fakeLLM 按 Purpose 返回预设内容，并记录收到的请求
type fakeLLM struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	chunks    []string
	streamErr error
	requests  []ChatRequest
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{responses: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeLLM) Chat(ctx context.Context, req ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err := f.errs[req.Purpose]; err != nil {
		return "", err
	}
	return f.responses[req.Purpose], nil
}

func (f *fakeLLM) ChatStream(ctx context.Context, req ChatRequest) (<-chan string, <-chan error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	chunks := append([]string(nil), f.chunks...)
	streamErr := f.streamErr
	f.mu.Unlock()

	out := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		defer close(out)
		for _, c := range chunks {
			out <- c
		}
		if streamErr != nil {
			errs <- streamErr
		}
	}()
	return out, errs
}

func (f *fakeLLM) lastRequest() ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// fakeArchiver 记录归档的 key 与被清理的路线图
type fakeArchiver struct {
	mu     sync.Mutex
	keys   []string
	purged []string
}

func (a *fakeArchiver) ArchiveGeneration(ctx context.Context, roadmapID, strategy, raw string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keys = append(a.keys, ArchiveKey(roadmapID, strategy))
}

func (a *fakeArchiver) PurgeGenerations(ctx context.Context, roadmapIDs []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.purged = append(a.purged, roadmapIDs...)
}

func testAIConfig() config.AIConfig {
	return config.AIConfig{
		Model:                  "big-model",
		FastModel:              "fast-model",
		OverviewTimeoutSeconds: 15,
		StageTimeoutSeconds:    10,
		TaskTimeoutSeconds:     10,
		StreamTimeoutSeconds:   60,
		OverviewMaxTokens:      800,
		StageMaxTokens:         1500,
		TaskMaxTokens:          600,
		RoadmapMaxTokens:       8000,
	}
}

type fixture struct {
	db       *gorm.DB
	llm      *fakeLLM
	locker   *MemoryLocker
	archiver *fakeArchiver
	users    *repository.UserRepository
	goals    *repository.GoalRepository
	roadmaps *repository.RoadmapRepository
	stages   *repository.ProgressStageRepository
	tasks    *repository.TaskRepository
	gen      *GenerationService
	stageSvc *StageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &fixture{
		db:       db,
		llm:      newFakeLLM(),
		locker:   NewMemoryLocker(),
		archiver: &fakeArchiver{},
		users:    repository.NewUserRepository(db),
		goals:    repository.NewGoalRepository(db),
		roadmaps: repository.NewRoadmapRepository(db),
		stages:   repository.NewProgressStageRepository(db),
		tasks:    repository.NewTaskRepository(db),
	}
	f.gen = NewGenerationService(f.goals, f.users, f.roadmaps, f.llm, testAIConfig, f.locker, f.archiver, 0)
	f.stageSvc = NewStageService(f.goals, f.roadmaps, f.stages, f.tasks, f.llm, testAIConfig)
	return f
}

func (f *fixture) seedUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{Name: "Tester", Email: email, Password: "x"}
	if err := f.users.Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// seedGoal 2026-01-05 是周一，每周一、三可用
func (f *fixture) seedGoal(t *testing.T, userID uint, title string) *model.Goal {
	t.Helper()
	goal := &model.Goal{
		UserID:              userID,
		Title:               title,
		CurrentLevel:        model.LevelBeginner,
		StartDate:           "2026-01-05",
		DailyTimeCommitment: 45,
		WeeklySchedule:      datatypes.NewJSONType(model.WeeklySchedule{Monday: true, Wednesday: true}),
		Status:              model.GoalActive,
	}
	if err := f.goals.Create(goal); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	return goal
}

func (f *fixture) countTasks(t *testing.T, roadmapID string) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&model.Task{}).Where("roadmap_id = ?", roadmapID).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func fixedNow(s string) func() time.Time {
	t, _ := time.Parse("2006-01-02 15:04", s)
	return func() time.Time { return t }
}

func repositoryTaskQuery(userID uint) repository.TaskQuery {
	return repository.TaskQuery{UserID: userID}
}
