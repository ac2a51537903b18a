// Package daemonrun wires together the daemon process runtime: logging,
// queue store, workflow stages, input watcher, and the IPC server.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"log/slog"

	"pps1c/internal/announce"
	"pps1c/internal/config"
	"pps1c/internal/daemon"
	"pps1c/internal/ipc"
	"pps1c/internal/logging"
	"pps1c/internal/metrics"
	"pps1c/internal/pipeline"
	"pps1c/internal/queue"
	"pps1c/internal/watch"
	"pps1c/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	SocketPath  string
}

// SocketPath returns the IPC socket location for the given configuration.
func SocketPath(cfg *config.Config) string {
	if cfg == nil {
		return filepath.Join(os.TempDir(), "pps1cd.sock")
	}
	return filepath.Join(cfg.Paths.WorkDir, "pps1cd.sock")
}

// PIDPath returns the daemon pid file location for the given configuration.
func PIDPath(cfg *config.Config) string {
	if cfg == nil {
		return filepath.Join(os.TempDir(), "pps1cd.pid")
	}
	return filepath.Join(cfg.Paths.WorkDir, "pps1cd.pid")
}

// Run starts the pps1c daemon runtime loop and blocks until the context is
// canceled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("pps1c-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update pps1c.log link: %v\n", err)
	}
	if err := logging.CleanupOldLogs(cfg.Paths.LogDir, cfg.Logging.RetentionDays); err != nil {
		logger.Warn("log cleanup failed", logging.Error(err))
	}

	pidPath := PIDPath(cfg)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}
	defer store.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics()
	}

	var announcer *announce.Announcer
	if cfg.Announce.Enabled {
		announcer = announce.New(cfg, logger)
		defer announcer.Close()
	}

	workflowManager := workflow.NewManager(cfg, store, logger, workflow.WithMetrics(m))
	registerStages(workflowManager, cfg, store, logger, m, announcer)

	watcher := watch.New(cfg, store, logger, m)

	d, err := daemon.New(cfg, store, logger, workflowManager, watcher)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := opts.SocketPath
	if socketPath == "" {
		socketPath = SocketPath(cfg)
	}
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration and queue database access"),
		)
	}

	<-signalCtx.Done()
	logger.Info("pps1c daemon shutting down")
	return nil
}

func registerStages(mgr *workflow.Manager, cfg *config.Config, store *queue.Store, logger *slog.Logger, m *metrics.Metrics, announcer *announce.Announcer) {
	if mgr == nil || cfg == nil {
		return
	}

	mgr.ConfigureStages(workflow.StageSet{
		Loader:  pipeline.NewLoader(cfg, store, logger, m),
		Deriver: pipeline.NewDeriver(cfg, store, logger, m),
		Writer:  pipeline.NewWriter(cfg, store, logger, m, announcer),
	})
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "pps1c.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Symlink(target, current); err != nil {
		// Symlinks are unavailable on some filesystems; fall back to a
		// plain file holding the active log path.
		return os.WriteFile(current, []byte(target+"\n"), 0o644)
	}
	return nil
}
