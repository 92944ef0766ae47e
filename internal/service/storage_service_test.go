package service

import (
	"context"
	"goal_pilot_backend/internal/config"
	"goal_pilot_backend/internal/util"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalArchiveAndPurge(t *testing.T) {
	root := t.TempDir()
	svc := NewStorageService(&config.Config{
		Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: root},
	})
	if _, ok := svc.Provider.(*LocalStorageProvider); !ok {
		t.Fatalf("provider = %T, want local", svc.Provider)
	}
	ctx := context.Background()

	svc.ArchiveGeneration(ctx, "r1", StrategyOverview, `{"overview":"first"}`)
	svc.ArchiveGeneration(ctx, "r1", StrategyStages, `{"stages":[]}`)
	svc.ArchiveGeneration(ctx, "r2", StrategyStream, `{"phases":[]}`)
	// 同一 key 再次归档时覆盖
	svc.ArchiveGeneration(ctx, "r1", StrategyOverview, `{"overview":"second"}`)

	data, err := os.ReadFile(filepath.Join(root, "roadmaps", "r1", "overview.json"))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if string(data) != `{"overview":"second"}` {
		t.Errorf("archive content = %s", data)
	}

	svc.PurgeGenerations(ctx, []string{"r1", "missing", ""})

	if _, err := os.Stat(filepath.Join(root, "roadmaps", "r1")); !os.IsNotExist(err) {
		t.Errorf("r1 archive should be removed, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "roadmaps", "r2", "stream.json")); err != nil {
		t.Errorf("r2 archive should survive: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("purging must not remove the storage root: %v", err)
	}
}

func TestArchiveKey(t *testing.T) {
	if got := ArchiveKey("abc", StrategyStages); got != "roadmaps/abc/stages.json" {
		t.Errorf("ArchiveKey = %q", got)
	}
	if got := archivePrefix("abc"); got != "roadmaps/abc/" {
		t.Errorf("archivePrefix = %q", got)
	}
}
