package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitdocai/gitdocai/internal/config"
	"github.com/gitdocai/gitdocai/internal/generate"
	"github.com/gitdocai/gitdocai/internal/model"
	"github.com/gitdocai/gitdocai/internal/store"
	"github.com/gitdocai/gitdocai/pkg/errors"
	"github.com/gitdocai/gitdocai/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{
		Level:  "error",
		Format: "text",
	})
	m.Run()
}

// fakeGenerator returns a canned result after an optional delay and
// records the requests it received.
type fakeGenerator struct {
	mu     sync.Mutex
	delay  time.Duration
	result *generate.Result
	called chan struct{}
	reqs   []*generate.Request
}

func newFakeGenerator(result *generate.Result) *fakeGenerator {
	return &fakeGenerator{
		result: result,
		called: make(chan struct{}, 16),
	}
}

func (f *fakeGenerator) Generate(_ context.Context, req *generate.Request) *generate.Result {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	delay := f.delay
	f.mu.Unlock()

	select {
	case f.called <- struct{}{}:
	default:
	}

	if delay > 0 {
		time.Sleep(delay)
	}
	return f.result
}

func (f *fakeGenerator) requests() []*generate.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*generate.Request(nil), f.reqs...)
}

func testConfig(workers, queueSize int) *config.Config {
	return &config.Config{
		Generate: config.GenerateConfig{
			MaxConcurrent:  workers,
			QueueSize:      queueSize,
			StepIntervalMs: 5,
			LingerSeconds:  1,
		},
	}
}

func successResult() *generate.Result {
	return &generate.Result{
		Success:       true,
		Documentation: "# Widgets\n\nGenerated documentation.",
		Metadata: map[string]interface{}{
			"generated_at": "2025-06-01T12:00:00Z",
		},
	}
}

// newTestEngine wires an engine to a fresh store and starts it. The
// returned channels receive completion and error callbacks.
func newTestEngine(t *testing.T, gen generate.Generator, cfg *config.Config) (*Engine, store.Store, chan *generate.Result, chan error) {
	t.Helper()

	s, cleanup := store.SetupTestDB(t)
	t.Cleanup(cleanup)

	e := NewEngine(cfg, s, gen)

	completions := make(chan *generate.Result, 16)
	failures := make(chan error, 16)
	e.SetCallbacks(
		func(_ *Task, result *generate.Result) { completions <- result },
		func(_ *Task, err error) { failures <- err },
	)

	e.Start()
	t.Cleanup(e.Stop)

	return e, s, completions, failures
}

func waitForResult(t *testing.T, ch chan *generate.Result) *generate.Result {
	t.Helper()
	select {
	case result := <-ch:
		return result
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for generation to complete")
		return nil
	}
}

func waitForError(t *testing.T, ch chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for generation to fail")
		return nil
	}
}

func TestEngineProcessesTask(t *testing.T) {
	fake := newFakeGenerator(successResult())
	e, s, completions, _ := newTestEngine(t, fake, testConfig(2, 10))

	gen := store.CreateTestGeneration(t, s)
	_, err := e.Submit(gen)
	require.NoError(t, err)

	result := waitForResult(t, completions)
	assert.True(t, result.Success)

	stored, err := s.Generation().GetByID(gen.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GenerationStatusCompleted, stored.Status)
	assert.Equal(t, "# Widgets\n\nGenerated documentation.", stored.Document)
	assert.False(t, stored.Degraded)
	require.NotNil(t, stored.StartedAt)
	require.NotNil(t, stored.CompletedAt)
	assert.Greater(t, stored.Duration, int64(0))
	assert.Equal(t, 100, stored.Percent)

	reqs := fake.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, gen.RepoURL, reqs[0].RepoURL)
	assert.Equal(t, []string(gen.SelectedComponents), reqs[0].SelectedComponents)
}

func TestEngineResetsProgressAfterLinger(t *testing.T) {
	fake := newFakeGenerator(successResult())
	e, s, completions, _ := newTestEngine(t, fake, testConfig(1, 10))

	gen := store.CreateTestGeneration(t, s)
	_, err := e.Submit(gen)
	require.NoError(t, err)

	waitForResult(t, completions)

	// The terminal snapshot lingers for the configured window, then the
	// stored progress columns clear while status and document persist.
	deadline := time.Now().Add(5 * time.Second)
	for {
		stored, err := s.Generation().GetByID(gen.ID)
		require.NoError(t, err)
		if stored.StepLabel == "" && stored.Percent == 0 {
			assert.Equal(t, 0, stored.StepIndex)
			assert.Equal(t, model.GenerationStatusCompleted, stored.Status)
			assert.NotEmpty(t, stored.Document)
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("progress not reset after linger window: label=%q percent=%d",
				stored.StepLabel, stored.Percent)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestEngineDegradedResult(t *testing.T) {
	fake := newFakeGenerator(&generate.Result{
		Success:       true,
		Documentation: "# Widgets\n\nMock documentation.",
		Degraded:      true,
		Metadata: map[string]interface{}{
			"mock":            true,
			"fallback_reason": "upstream request failed: connection refused",
		},
	})
	e, s, completions, _ := newTestEngine(t, fake, testConfig(1, 10))

	gen := store.CreateTestGeneration(t, s)
	_, err := e.Submit(gen)
	require.NoError(t, err)

	result := waitForResult(t, completions)
	assert.True(t, result.Degraded)

	stored, err := s.Generation().GetByID(gen.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GenerationStatusCompleted, stored.Status)
	assert.True(t, stored.Degraded)
	assert.Equal(t, true, stored.Metadata["mock"])
}

func TestEngineFailedResult(t *testing.T) {
	fake := newFakeGenerator(&generate.Result{
		Success: false,
		Error:   "upstream reported failure",
	})
	e, s, _, failures := newTestEngine(t, fake, testConfig(1, 10))

	gen := store.CreateTestGeneration(t, s)
	_, err := e.Submit(gen)
	require.NoError(t, err)

	procErr := waitForError(t, failures)
	require.Error(t, procErr)
	assert.Contains(t, procErr.Error(), "upstream reported failure")

	stored, err := s.Generation().GetByID(gen.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GenerationStatusFailed, stored.Status)
	assert.Equal(t, "upstream reported failure", stored.ErrorMessage)
	require.NotNil(t, stored.CompletedAt)
}

func TestEngineDuplicateSubmission(t *testing.T) {
	fake := newFakeGenerator(successResult())
	fake.delay = 300 * time.Millisecond
	e, s, completions, _ := newTestEngine(t, fake, testConfig(1, 10))

	gen := store.CreateTestGeneration(t, s)
	_, err := e.Submit(gen)
	require.NoError(t, err)

	// Wait until the worker has dequeued the task, then resubmit.
	select {
	case <-fake.called:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for generator dispatch")
	}

	_, err = e.Submit(gen)
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeGenerationInFlight, appErr.Code)

	waitForResult(t, completions)
	assert.Equal(t, 0, e.QueuedCount())
}

func TestEngineQueueFull(t *testing.T) {
	fake := newFakeGenerator(successResult())
	fake.delay = 300 * time.Millisecond
	e, s, completions, _ := newTestEngine(t, fake, testConfig(1, 1))

	first := store.CreateTestGeneration(t, s)
	_, err := e.Submit(first)
	require.NoError(t, err)

	// Wait until the worker has dequeued the first task so the queue
	// slot is free for exactly one more.
	select {
	case <-fake.called:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for generator dispatch")
	}

	second := store.CreateTestGeneration(t, s)
	_, err = e.Submit(second)
	require.NoError(t, err)

	third := store.CreateTestGeneration(t, s)
	_, err = e.Submit(third)
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeConflict, appErr.Code)

	waitForResult(t, completions)
	waitForResult(t, completions)
}

func TestEngineSubmitBeforeStart(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	t.Cleanup(cleanup)

	e := NewEngine(testConfig(1, 10), s, newFakeGenerator(successResult()))

	gen := store.CreateTestGeneration(t, s)
	_, err := e.Submit(gen)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestEngineSubmitAfterStop(t *testing.T) {
	fake := newFakeGenerator(successResult())
	s, cleanup := store.SetupTestDB(t)
	t.Cleanup(cleanup)

	e := NewEngine(testConfig(1, 10), s, fake)
	e.Start()
	e.Stop()

	gen := store.CreateTestGeneration(t, s)
	_, err := e.Submit(gen)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestEngineRecoversUnfinishedGenerations(t *testing.T) {
	fake := newFakeGenerator(successResult())

	s, cleanup := store.SetupTestDB(t)
	t.Cleanup(cleanup)

	// Simulate generations left behind by a previous process.
	pending := store.CreateTestGeneration(t, s)
	interrupted := store.CreateTestGeneration(t, s, func(g *model.Generation) {
		g.Status = model.GenerationStatusRunning
	})

	e := NewEngine(testConfig(2, 10), s, fake)
	completions := make(chan *generate.Result, 16)
	e.SetCallbacks(func(_ *Task, result *generate.Result) { completions <- result }, nil)
	e.Start()
	t.Cleanup(e.Stop)

	waitForResult(t, completions)
	waitForResult(t, completions)

	for _, id := range []string{pending.ID, interrupted.ID} {
		stored, err := s.Generation().GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, model.GenerationStatusCompleted, stored.Status)
	}
}

func TestEngineTutorialHeadingPrefix(t *testing.T) {
	fake := newFakeGenerator(&generate.Result{
		Success:       true,
		Documentation: "Step through the setup and make a first change.",
	})
	e, s, completions, _ := newTestEngine(t, fake, testConfig(1, 10))

	gen := store.CreateTestGeneration(t, s, func(g *model.Generation) {
		g.Kind = model.GenerationKindTutorial
		g.TutorialType = "getting-started"
	})
	_, err := e.Submit(gen)
	require.NoError(t, err)

	waitForResult(t, completions)

	stored, err := s.Generation().GetByID(gen.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Document, "# Getting Started Tutorial\n\n"))
	assert.Contains(t, stored.Document, "Step through the setup")
}

func TestEngineSkipsAlreadyProcessed(t *testing.T) {
	fake := newFakeGenerator(successResult())
	e, s, completions, failures := newTestEngine(t, fake, testConfig(1, 10))

	gen := store.CreateTestGeneration(t, s, func(g *model.Generation) {
		g.Status = model.GenerationStatusCompleted
	})

	_, err := e.Submit(gen)
	require.NoError(t, err)

	// The worker loads the current record, sees a terminal status and
	// skips without invoking the generator or any callback.
	select {
	case <-completions:
		t.Fatal("completed generation should not be re-processed")
	case err := <-failures:
		t.Fatalf("unexpected error callback: %v", err)
	case <-time.After(200 * time.Millisecond):
	}
	assert.Empty(t, fake.requests())
}
