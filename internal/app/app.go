package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/five82/taskboard/internal/config"
	"github.com/five82/taskboard/internal/mirror"
	"github.com/five82/taskboard/internal/notify"
	"github.com/five82/taskboard/internal/prefs"
	"github.com/five82/taskboard/internal/remote"
	"github.com/five82/taskboard/internal/store"
	"github.com/five82/taskboard/internal/ui"
)

// Options configure the taskboard application.
type Options struct {
	ConfigPath string // empty uses ~/.config/taskboard/config.toml
	EnvPath    string // empty uses ./.env when present
	PrefsPath  string // empty uses ~/.config/taskboard/prefs.toml
}

// Run boots the taskboard TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath, opts.EnvPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	backend, err := openBackend(cfg.Mirror)
	if err != nil {
		return fmt.Errorf("open mirror: %w", err)
	}
	m := mirror.New(backend, logger)
	defer func() {
		if err := m.Close(); err != nil {
			logger.WithError(err).Warn("close mirror failed")
		}
	}()

	client, err := remote.NewClient(cfg.APIURL, logger)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	toasts := notify.NewToasts(notify.DefaultMaxToasts, notify.DefaultLifetime)
	projects, tasks := buildStores(client, store.Deps{
		Mirror: m,
		Sink:   notify.Tee(toasts, notify.LogSink{Log: logger}),
		Log:    logger,
	})

	logger.WithFields(logrus.Fields{
		"api_url": client.BaseURL(),
		"mirror":  cfg.Mirror.Backend,
	}).Info("taskboard starting")

	// The UI opens on the mirrored copy and replaces it with the server's
	// once its first fetch returns.
	StartReconciler(ctx, projects, cfg.RefreshEvery, logger)

	err = ui.Run(ui.Options{
		Context:   ctx,
		Projects:  projects,
		Tasks:     tasks,
		Toasts:    toasts,
		Assignees: cfg.Assignees,
		Prefs:     prefs.Load(opts.PrefsPath),
		PrefsPath: opts.PrefsPath,

		FetchOnStart: true,
	})
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// buildStores wires both stores to each other and restores their mirrored
// state.
func buildStores(client *remote.Client, deps store.Deps) (*store.ProjectStore, *store.TaskStore) {
	projects := store.NewProjectStore(client, deps)
	tasks := store.NewTaskStore(client, deps)
	projects.BindTasks(tasks)
	tasks.BindProjects(projects)
	projects.Restore()
	tasks.Restore()
	return projects, tasks
}

func openBackend(cfg config.MirrorConfig) (mirror.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return mirror.NewMemory(), nil
	case config.BackendRedis:
		return mirror.OpenRedis(cfg.RedisURL, cfg.RedisPrefix)
	case config.BackendSQLite, "":
		return mirror.OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown mirror backend %q", cfg.Backend)
	}
}

// openLogger sends logs to the configured file; the terminal belongs to the
// TUI.
func openLogger(cfg config.Config) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})

	if cfg.LogFile == "" {
		logger.SetOutput(io.Discard)
		return logger, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(file)
	return logger, func() { _ = file.Close() }, nil
}
