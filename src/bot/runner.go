// Package bot runs the periodic action-selection loop.
package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"minebot/src/activity"
	"minebot/src/llm/action"
	"minebot/src/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultCycleInterval    = 30 * time.Second
	DefaultRecoveryInterval = 10 * time.Second

	aiErrorLimit   = 50
	loopErrorLimit = 100
)

var ErrAlreadyRunning = errors.New("bot already running")

// Decider produces the suggestion for one cycle.
type Decider interface {
	Decide(ctx context.Context, situation, goal string) action.Decision
}

// Options configures a Runner.
type Options struct {
	Server           string
	Goal             string
	Situations       []string
	CycleInterval    time.Duration
	RecoveryInterval time.Duration
	Logger           zerolog.Logger
}

// Runner owns the bot state shared by the control surface and the loop
// goroutine: the active session, the current goal and the cycle counter.
// The counter is never reset while the process lives, stop/start included.
type Runner struct {
	decider          Decider
	log              *activity.Log
	memory           *activity.Memory
	server           string
	situations       []string
	cycleInterval    time.Duration
	recoveryInterval time.Duration
	logger           zerolog.Logger

	mu      sync.Mutex
	goal    string
	cycle   int64
	session string
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRunner creates an idle runner.
func NewRunner(decider Decider, log *activity.Log, memory *activity.Memory, opts Options) (*Runner, error) {
	if decider == nil {
		return nil, errors.New("decider cannot be nil")
	}
	if log == nil || memory == nil {
		return nil, errors.New("activity log and memory are required")
	}
	if len(opts.Situations) == 0 {
		return nil, errors.New("at least one situation is required")
	}
	if opts.CycleInterval <= 0 {
		opts.CycleInterval = DefaultCycleInterval
	}
	if opts.RecoveryInterval <= 0 {
		opts.RecoveryInterval = DefaultRecoveryInterval
	}

	return &Runner{
		decider:          decider,
		log:              log,
		memory:           memory,
		server:           opts.Server,
		situations:       append([]string(nil), opts.Situations...),
		cycleInterval:    opts.CycleInterval,
		recoveryInterval: opts.RecoveryInterval,
		logger:           opts.Logger,
		goal:             opts.Goal,
	}, nil
}

// Start moves the runner from idle to active and launches the loop. ctx
// bounds the lifetime of the loop, so it should be process scoped rather than
// tied to a single request. Starting an active runner returns
// ErrAlreadyRunning and leaves the existing loop untouched.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	prev := r.done
	done := make(chan struct{})

	r.session = uuid.NewString()
	r.cancel = cancel
	r.done = done

	r.log.Success(fmt.Sprintf("AI bot started on %s", r.server))
	r.logger.Info().Str("session", r.session).Msg("Run loop starting")

	go r.loop(loopCtx, prev, done)
	return nil
}

// Stop moves the runner to idle. The loop is cancelled right away: a
// pending pause ends immediately and an in-flight cycle finishes without
// starting another. Stop waits for the loop to exit until ctx is done.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.session = ""
	r.mu.Unlock()

	r.log.Warning("AI bot stopped")
	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		r.logger.Warn().Msg("Timed out waiting for run loop to exit")
		return ctx.Err()
	}
}

func (r *Runner) loop(ctx context.Context, prev <-chan struct{}, done chan struct{}) {
	defer close(done)

	// A previous session still finishing its last cycle goes first.
	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return
		}
	}

	r.log.Success(fmt.Sprintf("AI gameplay loop started for %s", r.server))

	for {
		pause := r.cycleInterval
		if err := r.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.log.Error("Error in AI loop: " + truncate(err.Error(), loopErrorLimit))
			pause = r.recoveryInterval
		}

		if !sleep(ctx, pause) {
			r.logger.Info().Msg("Run loop stopped")
			return
		}
	}
}

// RunCycle performs exactly one cycle: pick a situation, decide, log and
// remember. Panics are turned into errors.
func (r *Runner) RunCycle(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in cycle: %v", p)
		}
	}()

	r.mu.Lock()
	r.cycle++
	cycle := r.cycle
	goal := r.goal
	session := r.session
	r.mu.Unlock()

	situation := r.situations[rand.IntN(len(r.situations))]
	r.log.Info(fmt.Sprintf("Cycle %d: %s", cycle, situation))

	decision := r.decider.Decide(ctx, situation, goal)
	// A stopped session discards the in-flight decision.
	if err := ctx.Err(); err != nil {
		return err
	}
	if decision.Err != nil {
		r.log.Error("AI Error: " + truncate(decision.Err.Error(), aiErrorLimit))
	}

	suggestion := decision.Suggestion
	if err := suggestion.Validate(); err != nil {
		return fmt.Errorf("invalid suggestion: %w", err)
	}

	r.log.Success(fmt.Sprintf("AI chose: %s - %s", suggestion.Action, suggestion.Reason))
	if suggestion.ChatMessage != "" {
		r.log.Info("Chat: " + suggestion.ChatMessage)
	}

	record := model.MemoryRecord{
		Cycle:     cycle,
		Session:   session,
		Timestamp: time.Now(),
		Situation: situation,
		Action:    suggestion,
		Goal:      goal,
		Source:    decision.Source,
	}
	if err := r.memory.Add(ctx, record); err != nil {
		return fmt.Errorf("failed to store memory record: %w", err)
	}
	return nil
}

// SetGoal replaces the goal used by subsequent cycles
func (r *Runner) SetGoal(goal string) {
	r.mu.Lock()
	r.goal = goal
	r.mu.Unlock()
	r.log.Success("New goal set: " + goal)
}

// Goal returns the current goal
func (r *Runner) Goal() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.goal
}

// Active reports whether a session is running
func (r *Runner) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Status returns the control surface snapshot
func (r *Runner) Status() model.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.Status{
		Active:   r.cancel != nil,
		LogCount: r.log.Len(),
		Goal:     r.goal,
		Cycle:    r.cycle,
		Session:  r.session,
	}
}

// Health returns the machine readable health snapshot
func (r *Runner) Health() model.Health {
	status := "stopped"
	if r.Active() {
		status = "healthy"
	}
	return model.Health{
		Status:        status,
		Timestamp:     time.Now(),
		LogsCount:     r.log.Len(),
		MemoryEntries: r.memory.Len(),
	}
}

// Log returns the activity log
func (r *Runner) Log() *activity.Log {
	return r.log
}

// Memory returns the memory buffer
func (r *Runner) Memory() *activity.Memory {
	return r.memory
}

// sleep pauses for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
