package workflow_test

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"pps1c/internal/logging"
	"pps1c/internal/queue"
	"pps1c/internal/services"
	"pps1c/internal/stage"
	"pps1c/internal/testsupport"
	"pps1c/internal/workflow"
)

type stubStage struct {
	name        string
	prepareHook func(*queue.Item)
	executeHook func(*queue.Item)
	prepareErr  error
	executeErr  error
	health      stage.Health
}

func newStubStage(name string) *stubStage {
	return &stubStage{name: name, health: stage.Healthy(name)}
}

func (s *stubStage) Prepare(_ context.Context, item *queue.Item) error {
	if s.prepareHook != nil {
		s.prepareHook(item)
	}
	return s.prepareErr
}

func (s *stubStage) Execute(_ context.Context, item *queue.Item) error {
	if s.executeHook != nil {
		s.executeHook(item)
	}
	return s.executeErr
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

// retryingStage fails its first execution with the configured error and
// succeeds afterwards.
type retryingStage struct {
	stub      *stubStage
	attempts  *atomic.Int32
	failFirst error
}

func (s *retryingStage) Prepare(ctx context.Context, item *queue.Item) error {
	return s.stub.Prepare(ctx, item)
}

func (s *retryingStage) Execute(_ context.Context, _ *queue.Item) error {
	if s.attempts.Add(1) == 1 {
		return s.failFirst
	}
	return nil
}

func (s *retryingStage) HealthCheck(ctx context.Context) stage.Health {
	return s.stub.HealthCheck(ctx)
}

func startManager(t *testing.T, mgr *workflow.Manager) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(mgr.Stop)
}

func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Item {
	t.Helper()
	deadline := time.After(30 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for status %s", want)
		default:
		}
		item, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if item != nil && item.Status == want {
			return item
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func mustMkdirAll(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", p, err)
		}
	}
}

func TestManagerProcessesItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	mustMkdirAll(t, cfg.Paths.InputDir, cfg.Paths.OutputDir, cfg.Paths.WorkDir)
	store := testsupport.MustOpenStore(t, cfg)

	loader := newStubStage("loader")
	loader.executeHook = func(item *queue.Item) {
		item.SceneFile = "/tmp/scene.gob"
	}
	deriver := newStubStage("deriver")
	writer := newStubStage("writer")
	writer.executeHook = func(item *queue.Item) {
		item.OutputFile = "/tmp/out.nc"
	}

	mgr := workflow.NewManager(cfg, store, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{Loader: loader, Deriver: deriver, Writer: writer})
	startManager(t, mgr)

	item := testsupport.NewScan(t, store, "seviri", "MSG4", "scan-flow")
	final := waitForStatus(t, store, item.ID, queue.StatusCompleted)

	if final.SceneFile == "" {
		t.Fatal("expected scene file recorded by loader")
	}
	if final.OutputFile == "" {
		t.Fatal("expected output file recorded by writer")
	}
	if final.ProgressPercent != 100 {
		t.Fatalf("expected 100%% progress, got %v", final.ProgressPercent)
	}
}

func TestManagerMarksNonRetryableFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	mustMkdirAll(t, cfg.Paths.InputDir, cfg.Paths.OutputDir, cfg.Paths.WorkDir)
	store := testsupport.MustOpenStore(t, cfg)

	loader := newStubStage("loader")
	loader.executeErr = services.Wrap(services.ErrDecode, "loading", "unpack", "bad header", errors.New("short read"))

	mgr := workflow.NewManager(cfg, store, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{Loader: loader})
	startManager(t, mgr)

	item := testsupport.NewScan(t, store, "seviri", "MSG4", "scan-fail")
	final := waitForStatus(t, store, item.ID, queue.StatusFailed)

	if final.ErrorMessage == "" {
		t.Fatal("expected error message persisted")
	}
	if final.RetryCount != 0 {
		t.Fatalf("decode failure should not retry, got retry count %d", final.RetryCount)
	}
}

func TestManagerRetriesTransientFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	mustMkdirAll(t, cfg.Paths.InputDir, cfg.Paths.OutputDir, cfg.Paths.WorkDir)
	store := testsupport.MustOpenStore(t, cfg)

	var attempts atomic.Int32
	transientErr := services.Wrap(services.ErrTransient, "loading", "read", "input busy", nil)
	loader := &retryingStage{stub: newStubStage("loader"), attempts: &attempts, failFirst: transientErr}

	mgr := workflow.NewManager(cfg, store, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{Loader: loader})
	startManager(t, mgr)

	item := testsupport.NewScan(t, store, "avhrr", "Metop-B", "scan-retry")
	final := waitForStatus(t, store, item.ID, queue.StatusLoaded)

	if attempts.Load() < 2 {
		t.Fatalf("expected at least 2 attempts, got %d", attempts.Load())
	}
	if final.RetryCount == 0 {
		t.Fatal("expected retry count recorded")
	}
}

func TestManagerStartRequiresStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mustMkdirAll(t, cfg.Paths.InputDir, cfg.Paths.OutputDir, cfg.Paths.WorkDir)
	store := testsupport.MustOpenStore(t, cfg)

	mgr := workflow.NewManager(cfg, store, logging.NewNop())
	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected error when no stages configured")
	}
}

func TestManagerStatusReportsStageHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mustMkdirAll(t, cfg.Paths.InputDir, cfg.Paths.OutputDir, cfg.Paths.WorkDir)
	store := testsupport.MustOpenStore(t, cfg)

	loader := newStubStage("loader")
	loader.health = stage.Unhealthy("loader", "input unreadable")

	mgr := workflow.NewManager(cfg, store, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{Loader: loader})

	summary := mgr.Status(context.Background())
	if summary.Running {
		t.Fatal("manager should not report running before Start")
	}
	health, ok := summary.StageHealth["loader"]
	if !ok {
		t.Fatal("expected loader health entry")
	}
	if health.Ready {
		t.Fatal("expected unhealthy loader")
	}
}
