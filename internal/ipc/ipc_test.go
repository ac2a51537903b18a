package ipc_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pps1c/internal/daemon"
	"pps1c/internal/ipc"
	"pps1c/internal/logging"
	"pps1c/internal/queue"
	"pps1c/internal/stage"
	"pps1c/internal/testsupport"
	"pps1c/internal/workflow"
)

type noopStage struct{}

func (noopStage) Prepare(context.Context, *queue.Item) error { return nil }
func (noopStage) Execute(context.Context, *queue.Item) error { return nil }
func (noopStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("noop")
}

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = ""
	for _, dir := range []string{cfg.Paths.InputDir, cfg.Paths.OutputDir, cfg.Paths.WorkDir, cfg.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger)
	mgr.ConfigureStages(workflow.StageSet{Loader: noopStage{}})
	d, err := daemon.New(cfg, store, logger, mgr, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.Paths.WorkDir, "pps1cd.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	startResp, err := client.Start()
	if err != nil {
		t.Fatalf("Start RPC failed: %v", err)
	}
	if !startResp.Started {
		t.Fatalf("expected Started=true, message=%s", startResp.Message)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}
	if status.PID != os.Getpid() {
		t.Fatalf("expected PID %d, got %d", os.Getpid(), status.PID)
	}
	if status.QueueDBPath == "" || status.LockPath == "" {
		t.Fatalf("expected populated paths, got %#v", status)
	}

	scanA := testsupport.NewScan(t, store, "seviri", "MSG4", "MSG4-202101011200")
	scanB := testsupport.NewScan(t, store, "seviri", "MSG4", "MSG4-202101011215")
	scanB.SetFailed("decode failed")
	if err := store.Update(ctx, scanB); err != nil {
		t.Fatalf("Update scanB: %v", err)
	}
	scanC := testsupport.NewScan(t, store, "avhrr", "NOAA-19", "gac-orbit-1")
	scanC.Status = queue.StatusDeriving
	if err := store.Update(ctx, scanC); err != nil {
		t.Fatalf("Update scanC: %v", err)
	}

	listResp, err := client.QueueList(nil)
	if err != nil {
		t.Fatalf("QueueList failed: %v", err)
	}
	if len(listResp.Items) != 3 {
		t.Fatalf("expected 3 queue items, got %d", len(listResp.Items))
	}

	failedResp, err := client.QueueList([]string{string(queue.StatusFailed)})
	if err != nil {
		t.Fatalf("QueueList failed filter: %v", err)
	}
	if len(failedResp.Items) != 1 || failedResp.Items[0].ID != scanB.ID {
		t.Fatalf("expected failed item %d, got %#v", scanB.ID, failedResp.Items)
	}

	descResp, err := client.QueueDescribe(scanA.ID)
	if err != nil {
		t.Fatalf("QueueDescribe failed: %v", err)
	}
	if descResp.Item.ScanID != "MSG4-202101011200" || descResp.Item.Sensor != "seviri" {
		t.Fatalf("unexpected describe response: %#v", descResp.Item)
	}
	if _, err := client.QueueDescribe(9999); err == nil {
		t.Fatal("expected QueueDescribe to fail for unknown id")
	}

	healthResp, err := client.QueueHealth()
	if err != nil {
		t.Fatalf("QueueHealth failed: %v", err)
	}
	if healthResp.Total != 3 || healthResp.Failed != 1 {
		t.Fatalf("unexpected queue health: %#v", healthResp)
	}

	resetResp, err := client.QueueReset()
	if err != nil {
		t.Fatalf("QueueReset failed: %v", err)
	}
	if resetResp.Updated != 1 {
		t.Fatalf("expected 1 item reset, got %d", resetResp.Updated)
	}
	reloaded, err := store.GetByID(ctx, scanC.ID)
	if err != nil {
		t.Fatalf("GetByID scanC: %v", err)
	}
	if reloaded.Status != queue.StatusLoaded {
		t.Fatalf("expected deriving item to roll back to loaded, got %s", reloaded.Status)
	}

	retryResp, err := client.QueueRetry(nil)
	if err != nil {
		t.Fatalf("QueueRetry failed: %v", err)
	}
	if retryResp.Updated != 1 {
		t.Fatalf("expected 1 item retried, got %d", retryResp.Updated)
	}

	dbResp, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth failed: %v", err)
	}
	if !dbResp.DatabaseExists || !dbResp.TableExists {
		t.Fatalf("unexpected database health: %#v", dbResp)
	}
	if dbResp.TotalItems != 3 {
		t.Fatalf("expected 3 items in database health, got %d", dbResp.TotalItems)
	}

	clearResp, err := client.QueueClear()
	if err != nil {
		t.Fatalf("QueueClear failed: %v", err)
	}
	if clearResp.Removed != 3 {
		t.Fatalf("expected 3 items removed, got %d", clearResp.Removed)
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatalf("expected Stop to report stopped, got %#v", stopResp)
	}
	status, err = client.Status()
	if err != nil {
		t.Fatalf("Status after stop failed: %v", err)
	}
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}
