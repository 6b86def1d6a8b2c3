// internal/service/worker.go
package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-launchpad/internal/events"
	"github.com/rovshanmuradov/token-launchpad/internal/task"
)

type WorkerPool struct {
	wg       sync.WaitGroup
	ctx      context.Context
	tasks    <-chan *task.Task
	logger   *zap.Logger
	executor *Executor
	eventBus *events.Bus
}

func NewWorkerPool(
	ctx context.Context,
	logger *zap.Logger,
	executor *Executor,
	tasks <-chan *task.Task,
	eventBus *events.Bus,
) *WorkerPool {
	return &WorkerPool{
		ctx:      ctx,
		logger:   logger,
		executor: executor,
		tasks:    tasks,
		eventBus: eventBus,
	}
}

func (wp *WorkerPool) Start(n int) {
	for i := 0; i < n; i++ {
		wp.wg.Add(1)
		go wp.worker(i + 1)
	}
}

func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	logger := wp.logger.With(zap.Int("worker_id", id))
	logger.Info("Worker started")

	for {
		select {
		case <-wp.ctx.Done():
			logger.Info("Worker shutting down due to context cancellation")
			return
		case t, ok := <-wp.tasks:
			if !ok {
				logger.Info("Task channel closed")
				return
			}
			wp.handleTask(wp.ctx, t, logger)
		}
	}
}

func (wp *WorkerPool) handleTask(ctx context.Context, t *task.Task, logger *zap.Logger) {
	logger.Info("Executing task",
		zap.String("task", t.Name),
		zap.String("operation", string(t.Operation)),
		zap.String("account", t.Account),
		zap.String("token", t.Token))

	if err := wp.executor.Execute(ctx, t); err != nil {
		logger.Error("Task execution failed", zap.String("task", t.Name), zap.Error(err))

		if wp.eventBus != nil {
			handle, _ := wp.executor.Handle(t.Token)
			failEvent := events.OperationFailedEvent{
				BaseEvent:   events.NewBase(events.OperationFailed),
				Operation:   string(t.Operation),
				TokenHandle: handle,
				Account:     t.Account,
				Error:       err,
			}
			wp.eventBus.Publish(failEvent)
		}
		return
	}

	logger.Info("Task executed successfully", zap.String("task", t.Name))
}
