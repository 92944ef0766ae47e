package configwatcher

import (
	"context"
	"goal_pilot_backend/internal/config"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const baseConfig = `server:
  port: "8080"
  mode: debug
database:
  driver: postgres
generation:
  tasks_page_size: 5
`

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(baseConfig), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, path, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 给 watcher 留出注册时间
	time.Sleep(200 * time.Millisecond)
	updated := baseConfig + "rate_limit:\n  max_requests: 42\n"
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.RateLimit.MaxRequests != 42 {
			t.Fatalf("expected reloaded max_requests 42, got %d", cfg.RateLimit.MaxRequests)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watcher returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
