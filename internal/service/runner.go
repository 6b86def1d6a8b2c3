// internal/service/runner.go
package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-launchpad/internal/config"
	"github.com/rovshanmuradov/token-launchpad/internal/events"
	"github.com/rovshanmuradov/token-launchpad/internal/launchpad"
	"github.com/rovshanmuradov/token-launchpad/internal/task"
)

type Runner struct {
	logger      *zap.Logger
	config      *config.Config
	registry    *launchpad.Registry
	taskManager *task.Manager
	executor    *Executor
	eventBus    *events.Bus
	shutdownCh  chan os.Signal
}

func NewRunner(cfg *config.Config, registry *launchpad.Registry, eventBus *events.Bus, logger *zap.Logger) *Runner {
	return &Runner{
		logger:      logger,
		config:      cfg,
		registry:    registry,
		taskManager: task.NewManager(logger),
		executor:    NewExecutor(registry, logger),
		eventBus:    eventBus,
		shutdownCh:  make(chan os.Signal, 1),
	}
}

// Run loads the task script and executes it: launch tasks first, in
// script order, then the remaining tasks across the worker pool.
func (r *Runner) Run(ctx context.Context) error {
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	shutdownCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sig := <-r.shutdownCh
		r.logger.Info("Signal received: " + sig.String())
		cancel()
	}()

	tasks, err := r.taskManager.LoadTasks(r.config.TasksFile)
	if err != nil {
		return err
	}
	r.logger.Info(fmt.Sprintf("Loaded %d tasks", len(tasks)))

	// Launches bind the aliases every later task depends on, so they
	// run up front and in order.
	var trades []*task.Task
	for i := range tasks {
		t := &tasks[i]
		if t.Operation == task.OperationLaunch {
			if err := r.executor.Execute(shutdownCtx, t); err != nil {
				return fmt.Errorf("launch task %s: %w", t.Name, err)
			}
			continue
		}
		trades = append(trades, t)
	}

	if len(trades) == 0 {
		r.logger.Info("No trade tasks to execute")
		return nil
	}

	taskCh := make(chan *task.Task, len(trades))
	for _, t := range trades {
		taskCh <- t
	}
	close(taskCh)

	numWorkers := r.config.Workers
	if numWorkers <= 0 {
		numWorkers = 1
	}
	r.logger.Info(fmt.Sprintf("Starting execution with %d workers", numWorkers))

	workerPool := NewWorkerPool(shutdownCtx, r.logger, r.executor, taskCh, r.eventBus)
	workerPool.Start(numWorkers)
	workerPool.Wait()

	r.logger.Info("All workers finished")
	return nil
}

func (r *Runner) Shutdown() {
	r.logger.Info("Shutting down gracefully")

	if err := r.logger.Sync(); err != nil {
		if !os.IsNotExist(err) &&
			err.Error() != "sync /dev/stdout: invalid argument" &&
			err.Error() != "sync /dev/stderr: inappropriate ioctl for device" {
			fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
		}
	}
}
