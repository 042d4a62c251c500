package generate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/gitdocai/gitdocai/pkg/errors"
	"github.com/gitdocai/gitdocai/pkg/logger"
)

// GenerationSteps are the phase labels shown while a generation runs.
// The sequence advances on a fixed cadence regardless of how long the
// real upstream call takes.
var GenerationSteps = []string{
	"Cloning repository...",
	"Analyzing codebase...",
	"Detecting technologies...",
	"Generating documentation...",
	"Formatting output...",
	"Finalizing...",
}

// Progress is an observable snapshot of a running generation.
type Progress struct {
	StepIndex int     `json:"step_index"`
	StepLabel string  `json:"step_label"`
	Percent   float64 `json:"percent"`
}

// State is the controller lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Generator produces a generation result. *Client implements it; tests
// substitute fakes with injected latency.
type Generator interface {
	Generate(ctx context.Context, req *Request) *Result
}

// ControllerConfig tunes the progress simulation. Zero values select
// the production defaults.
type ControllerConfig struct {
	// StepInterval is the cadence between phase labels. Default 1s.
	StepInterval time.Duration
	// LingerDelay is how long the terminal progress stays visible
	// before resetting to zero. Default 2s. Negative disables the reset.
	LingerDelay time.Duration
	// DispatchStep is the phase index at which the real call is
	// dispatched. Default 3 (the "Generating documentation..." phase,
	// after the analysis phases).
	DispatchStep int
	// OnProgress, if set, is invoked for every progress snapshot.
	OnProgress func(Progress)
}

// Controller drives a single generation: it steps through the simulated
// phase sequence on a fixed cadence, dispatches the real call partway
// through, and surfaces the terminal result only after both the
// sequence is exhausted and the real result is available.
type Controller struct {
	gen Generator
	cfg ControllerConfig

	mu       sync.Mutex
	state    State
	progress Progress
	result   *Result

	// Barrier flags: the run finishes only when both are set.
	simDone  bool
	realDone bool

	done chan struct{}
}

// NewController creates a controller for the given generator.
func NewController(gen Generator, cfg ControllerConfig) *Controller {
	if cfg.StepInterval <= 0 {
		cfg.StepInterval = time.Second
	}
	if cfg.LingerDelay == 0 {
		cfg.LingerDelay = 2 * time.Second
	}
	if cfg.DispatchStep <= 0 || cfg.DispatchStep >= len(GenerationSteps) {
		cfg.DispatchStep = 3
	}
	return &Controller{gen: gen, cfg: cfg, state: StateIdle}
}

// Start begins a generation run. It returns immediately; observe the
// run through Progress/State/Result or wait on Done. Starting while a
// run is in flight is rejected; starting from a terminal state begins a
// fresh run and clears the previous result.
func (c *Controller) Start(ctx context.Context, req *Request) error {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.state == StateRunning {
		c.mu.Unlock()
		return apperrors.New(apperrors.ErrCodeGenerationInFlight, "a generation is already in progress")
	}
	c.state = StateRunning
	c.result = nil
	c.simDone = false
	c.realDone = false
	c.progress = Progress{}
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go c.runSimulation(ctx, req, done)
	return nil
}

// runSimulation steps through the phase labels and dispatches the real
// call at the configured phase.
func (c *Controller) runSimulation(ctx context.Context, req *Request, done chan struct{}) {
	dispatched := false
	total := len(GenerationSteps)

	for i, label := range GenerationSteps {
		snapshot := Progress{
			StepIndex: i,
			StepLabel: label,
			Percent:   float64(i+1) / float64(total) * 100,
		}
		c.mu.Lock()
		c.progress = snapshot
		c.mu.Unlock()
		if c.cfg.OnProgress != nil {
			c.cfg.OnProgress(snapshot)
		}

		if !dispatched && i >= c.cfg.DispatchStep {
			dispatched = true
			go c.runRealCall(ctx, req, done)
		}

		select {
		case <-ctx.Done():
			c.finishReal(&Result{Success: false, Error: ctx.Err().Error()}, done)
			c.finishSim(done)
			return
		case <-time.After(c.cfg.StepInterval):
		}
	}

	// A short sequence configuration could exhaust the phases before
	// the dispatch index is reached.
	if !dispatched {
		go c.runRealCall(ctx, req, done)
	}
	c.finishSim(done)
}

func (c *Controller) runRealCall(ctx context.Context, req *Request, done chan struct{}) {
	res := c.gen.Generate(ctx, req)
	c.finishReal(res, done)
}

// finishSim marks the simulated sequence exhausted and joins.
func (c *Controller) finishSim(done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != done || c.simDone {
		return
	}
	c.simDone = true
	c.maybeFinishLocked(done)
}

// finishReal records the real result and joins. The first result wins.
func (c *Controller) finishReal(res *Result, done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != done || c.realDone {
		return
	}
	c.realDone = true
	c.result = res
	c.maybeFinishLocked(done)
}

// maybeFinishLocked transitions to the terminal state once both
// completion flags are set. Callers hold c.mu.
func (c *Controller) maybeFinishLocked(done chan struct{}) {
	if !c.simDone || !c.realDone {
		return
	}
	if c.result != nil && c.result.Success {
		c.state = StateSucceeded
	} else {
		c.state = StateFailed
	}
	logger.Debug("Generation run finished",
		zap.String("state", c.state.String()),
		zap.Bool("degraded", c.result != nil && c.result.Degraded))
	close(done)

	if c.cfg.LingerDelay >= 0 {
		go c.resetProgressAfter(c.cfg.LingerDelay, done)
	}
}

// resetProgressAfter clears the progress display once the linger delay
// elapses. The result and error persist until the next run. The zero
// snapshot is reported through OnProgress so observers tracking the
// progress externally reset with it.
func (c *Controller) resetProgressAfter(delay time.Duration, done chan struct{}) {
	time.Sleep(delay)
	c.mu.Lock()
	if c.done != done {
		c.mu.Unlock()
		return
	}
	c.progress = Progress{}
	c.mu.Unlock()

	if c.cfg.OnProgress != nil {
		c.cfg.OnProgress(Progress{})
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Progress returns the current progress snapshot.
func (c *Controller) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// Result returns the terminal result, or nil while no run has finished.
func (c *Controller) Result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Done returns a channel closed when the current run reaches a terminal
// state, or nil if no run was started.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Wait blocks until the current run finishes or the context expires.
func (c *Controller) Wait(ctx context.Context) (*Result, error) {
	done := c.Done()
	if done == nil {
		return nil, apperrors.New(apperrors.ErrCodeGenerationPending, "no generation has been started")
	}
	select {
	case <-done:
		return c.Result(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
