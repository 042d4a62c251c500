// Package engine runs documentation generation tasks on a worker pool.
// Tasks are enqueued by the API layer, claimed atomically through the
// store, and executed by a generate.Controller that persists progress
// as it advances. Completion and failure feed the notification manager.
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gitdocai/gitdocai/internal/config"
	"github.com/gitdocai/gitdocai/internal/generate"
	"github.com/gitdocai/gitdocai/internal/model"
	"github.com/gitdocai/gitdocai/internal/notification"
	"github.com/gitdocai/gitdocai/internal/store"
	"github.com/gitdocai/gitdocai/pkg/errors"
	"github.com/gitdocai/gitdocai/pkg/logger"
	"github.com/gitdocai/gitdocai/pkg/telemetry"
)

// Task represents a queued generation task. A task is identified by its
// Generation.ID; there is no separate task identifier.
type Task struct {
	Generation *model.Generation
	CreatedAt  time.Time
}

// Engine manages generation tasks and the worker pool that executes
// them. Duplicate submissions for a generation already queued or
// running are rejected.
type Engine struct {
	cfg   *config.Config
	store store.Store
	gen   generate.Generator

	taskQueue chan *Task
	workers   int
	workerWg  sync.WaitGroup

	mu      sync.Mutex
	queued  map[string]struct{} // generation IDs queued or executing
	started bool
	stopped bool

	// Callbacks (for server mode)
	onComplete func(task *Task, result *generate.Result)
	onError    func(task *Task, err error)

	// Shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewEngine creates a generation engine. The generator is usually the
// upstream API client; tests substitute fakes.
func NewEngine(cfg *config.Config, s store.Store, gen generate.Generator) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	workers := cfg.Generate.MaxConcurrent
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.Generate.QueueSize
	if queueSize <= 0 {
		queueSize = workers * 10
	}

	return &Engine{
		cfg:       cfg,
		store:     s,
		gen:       gen,
		taskQueue: make(chan *Task, queueSize),
		workers:   workers,
		queued:    make(map[string]struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetCallbacks sets the completion and error callbacks (for server mode).
func (e *Engine) SetCallbacks(onComplete func(*Task, *generate.Result), onError func(*Task, error)) {
	e.onComplete = onComplete
	e.onError = onError
}

// Start starts the worker pool and re-enqueues generations that were
// left pending or running by a previous process.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	logger.Info("Starting generation engine", zap.Int("workers", e.workers))

	for i := 0; i < e.workers; i++ {
		e.workerWg.Add(1)
		go e.worker(i)
	}

	e.recoverPending()

	logger.Info("Generation engine started", zap.Int("workers", e.workers))
}

// Stop stops the engine gracefully: no new tasks are accepted, queued
// tasks are drained, and in-flight controllers are cancelled through
// the engine context. Interrupted generations stay in the running state
// and are recovered on the next start.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	e.mu.Unlock()

	logger.Info("Stopping generation engine")

	e.cancel()
	close(e.taskQueue)
	e.workerWg.Wait()

	logger.Info("Generation engine stopped")
}

// Submit enqueues a generation task. The generation record must already
// exist in the store with pending status.
func (e *Engine) Submit(gen *model.Generation) (*Task, error) {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return nil, errors.New(errors.ErrCodeInternal, "generation engine is not running")
	}
	if _, exists := e.queued[gen.ID]; exists {
		e.mu.Unlock()
		return nil, errors.New(errors.ErrCodeGenerationInFlight, "generation is already queued")
	}

	task := &Task{
		Generation: gen,
		CreatedAt:  time.Now(),
	}

	select {
	case e.taskQueue <- task:
		e.queued[gen.ID] = struct{}{}
	default:
		e.mu.Unlock()
		return nil, errors.New(errors.ErrCodeConflict, "generation queue is full")
	}
	e.mu.Unlock()

	logger.Info("Generation task submitted",
		zap.String("generation_id", gen.ID),
		zap.String("repo_url", gen.RepoURL),
		zap.Int("queue_pending", len(e.taskQueue)),
	)

	return task, nil
}

// QueuedCount returns the number of tasks queued or executing.
func (e *Engine) QueuedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queued)
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// recoverPending re-enqueues generations left pending or running by a
// previous process so they are picked up after a restart.
func (e *Engine) recoverPending() {
	generations, err := e.store.Generation().ListPendingOrRunning()
	if err != nil {
		logger.Error("Failed to recover pending generations", zap.Error(err))
		return
	}
	if len(generations) == 0 {
		return
	}

	logger.Info("Recovering unfinished generations", zap.Int("count", len(generations)))

	for i := range generations {
		gen := generations[i]
		if _, err := e.Submit(&gen); err != nil {
			logger.Warn("Failed to re-enqueue generation",
				zap.String("generation_id", gen.ID),
				zap.Error(err),
			)
		}
	}
}

// worker processes tasks from the queue until the queue is closed.
func (e *Engine) worker(id int) {
	defer e.workerWg.Done()

	logger.Debug("Generation worker started", zap.Int("worker_id", id))

	for task := range e.taskQueue {
		if e.ctx.Err() != nil {
			e.release(task.Generation.ID)
			continue
		}
		e.processTask(task)
		e.release(task.Generation.ID)
	}

	logger.Debug("Generation worker stopped", zap.Int("worker_id", id))
}

// release removes a task from the dedup set once it leaves the queue.
func (e *Engine) release(generationID string) {
	e.mu.Lock()
	delete(e.queued, generationID)
	e.mu.Unlock()
}

// processTask executes a single generation task.
func (e *Engine) processTask(task *Task) {
	ctx, span := telemetry.StartSpan(e.ctx, "engine.processTask",
		telemetry.WithGenerationAttributes(
			task.Generation.ID,
			task.Generation.RepoURL,
			string(task.Generation.Kind),
		),
	)
	defer span.End()

	metrics := telemetry.GetMetrics()
	metrics.RecordGenerationStarted(ctx, string(task.Generation.Kind))
	startTime := time.Now()

	logger.Info("Processing generation task",
		zap.String("generation_id", task.Generation.ID),
		zap.String("repo_url", task.Generation.RepoURL),
	)

	current, err := e.store.Generation().GetByID(task.Generation.ID)
	if err != nil {
		logger.Error("Failed to load generation for processing",
			zap.String("generation_id", task.Generation.ID),
			zap.Error(err),
		)
		return
	}

	// Anything past pending/running was already handled elsewhere.
	if current.Status != model.GenerationStatusPending && current.Status != model.GenerationStatusRunning {
		logger.Info("Generation already processed, skipping",
			zap.String("generation_id", current.ID),
			zap.String("status", string(current.Status)),
		)
		return
	}

	// Claim the generation atomically so only one worker executes it.
	now := time.Now()
	updated, err := e.store.Generation().UpdateStatusToRunningIfPending(current.ID, now)
	if err != nil {
		logger.Error("Failed to update generation status",
			zap.String("generation_id", current.ID),
			zap.Error(err),
		)
		return
	}
	if !updated {
		logger.Info("Generation claimed by another worker, skipping",
			zap.String("generation_id", current.ID),
		)
		return
	}

	task.Generation = current
	task.Generation.Status = model.GenerationStatusRunning
	task.Generation.StartedAt = &now

	req := &generate.Request{
		RepoURL:            current.RepoURL,
		ProjectDescription: current.ProjectDescription,
		TargetAudience:     current.TargetAudience,
		Tone:               current.Tone,
		OutputFormat:       current.OutputFormat,
		PrimaryLanguage:    current.PrimaryLanguage,
		SelectedComponents: []string(current.SelectedComponents),
		TutorialType:       current.TutorialType,
	}

	controller := generate.NewController(e.gen, generate.ControllerConfig{
		StepInterval: e.cfg.Generate.StepInterval(),
		LingerDelay:  e.cfg.Generate.Linger(),
		OnProgress: func(p generate.Progress) {
			// The zero snapshot is the post-linger reset.
			if p == (generate.Progress{}) {
				if err := e.store.Generation().ResetProgress(current.ID); err != nil {
					logger.Warn("Failed to reset generation progress",
						zap.String("generation_id", current.ID),
						zap.Error(err),
					)
				}
				return
			}
			if err := e.store.Generation().UpdateProgress(current.ID, p.StepIndex, p.StepLabel, int(p.Percent)); err != nil {
				logger.Warn("Failed to persist generation progress",
					zap.String("generation_id", current.ID),
					zap.Error(err),
				)
			}
		},
	})

	if err := controller.Start(ctx, req); err != nil {
		telemetry.SetSpanError(span, err)
		metrics.RecordGenerationCompleted(ctx, "failed", time.Since(startTime).Seconds())
		e.handleError(task, err)
		return
	}

	result, err := controller.Wait(ctx)
	if err != nil {
		// Context cancellation during shutdown: leave the generation in
		// the running state so the next start recovers it.
		if e.ctx.Err() != nil {
			logger.Info("Generation interrupted by shutdown",
				zap.String("generation_id", current.ID),
			)
			return
		}
		telemetry.SetSpanError(span, err)
		metrics.RecordGenerationCompleted(ctx, "failed", time.Since(startTime).Seconds())
		e.handleError(task, err)
		return
	}

	if !result.Success {
		err := errors.New(errors.ErrCodeGenerationFailed, result.Error)
		telemetry.SetSpanError(span, err)
		metrics.RecordGenerationCompleted(ctx, "failed", time.Since(startTime).Seconds())
		e.handleError(task, err)
		return
	}

	// Tutorial documents carry a title heading even when the upstream
	// response omits one.
	document := result.Documentation
	if current.Kind == model.GenerationKindTutorial && !strings.HasPrefix(document, "#") {
		document = "# " + generate.TutorialTitle(current.TutorialType) + "\n\n" + document
	}

	duration := time.Since(startTime)
	if err := e.store.Generation().CompleteWithDocument(
		current.ID,
		document,
		result.Degraded,
		model.JSONMap(result.Metadata),
		duration,
	); err != nil {
		logger.Error("Failed to persist generation result",
			zap.String("generation_id", current.ID),
			zap.Error(err),
		)
		telemetry.SetSpanError(span, err)
		metrics.RecordGenerationCompleted(ctx, "failed", time.Since(startTime).Seconds())
		e.handleError(task, errors.Wrap(errors.ErrCodeDBQuery, "failed to persist generation result", err))
		return
	}

	if result.Degraded {
		metrics.RecordGenerationCompleted(ctx, "degraded", duration.Seconds())
	} else {
		metrics.RecordGenerationCompleted(ctx, "completed", duration.Seconds())
	}
	telemetry.SetSpanOK(span)

	e.notifyCompletion(ctx, current, result, duration)

	if e.onComplete != nil {
		e.onComplete(task, result)
	}

	logger.Info("Generation task completed",
		zap.String("generation_id", current.ID),
		zap.Bool("degraded", result.Degraded),
		zap.Duration("duration", duration),
	)
}

// notifyCompletion sends the completion or degraded notification.
func (e *Engine) notifyCompletion(ctx context.Context, gen *model.Generation, result *generate.Result, duration time.Duration) {
	extra := map[string]interface{}{
		"kind":        string(gen.Kind),
		"duration_ms": duration.Milliseconds(),
	}

	var notifyErr error
	if result.Degraded {
		reason := ""
		if r, ok := result.Metadata["fallback_reason"].(string); ok {
			reason = r
		}
		notifyErr = notification.NotifyGenerationDegraded(ctx, gen.ID, gen.RepoURL, reason, extra)
	} else {
		notifyErr = notification.NotifyGenerationCompleted(ctx, gen.ID, gen.RepoURL, extra)
	}

	if notifyErr != nil {
		logger.Warn("Failed to send generation completion notification",
			zap.String("generation_id", gen.ID),
			zap.Error(notifyErr),
		)
	}
}

// handleError records the failure and sends the failure notification.
func (e *Engine) handleError(task *Task, err error) {
	logger.Error("Generation task failed",
		zap.String("generation_id", task.Generation.ID),
		zap.Error(err),
	)

	if dbErr := e.store.Generation().UpdateStatusWithError(
		task.Generation.ID,
		model.GenerationStatusFailed,
		err.Error(),
	); dbErr != nil {
		logger.Error("Failed to update generation status to failed",
			zap.String("generation_id", task.Generation.ID),
			zap.Error(dbErr),
		)
	}

	extra := map[string]interface{}{
		"kind": string(task.Generation.Kind),
	}
	if notifyErr := notification.NotifyGenerationFailed(
		e.ctx,
		task.Generation.ID,
		task.Generation.RepoURL,
		err.Error(),
		extra,
	); notifyErr != nil {
		logger.Warn("Failed to send generation failure notification",
			zap.String("generation_id", task.Generation.ID),
			zap.Error(notifyErr),
		)
	}

	if e.onError != nil {
		e.onError(task, err)
	}
}
