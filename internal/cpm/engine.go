package cpm

import (
	"fmt"
	"log/slog"

	"github.com/jason-marshall/defense-pm-tool-sub006/internal/network"
)

// State is the lifecycle of an Engine.
type State int

const (
	Uninitialized State = iota
	Calculated
	Failed
)

func (s State) String() string {
	switch s {
	case Calculated:
		return "calculated"
	case Failed:
		return "failed"
	}
	return "uninitialized"
}

// Option configures an Engine.
type Option func(*Options)

// WithLogger routes pass-level debug logging to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithDeadline seeds the backward pass with deadline instead of the
// computed project finish.
func WithDeadline(deadline int) Option {
	return func(o *Options) { o.Deadline = &deadline }
}

// Engine is the entry point for scheduling one program. An Engine is not safe
// for concurrent use; run independent calculations on separate engines.
type Engine struct {
	opts     Options
	state    State
	schedule *Schedule
}

// NewEngine creates an Engine in state Uninitialized.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(&e.opts)
	}
	return e
}

// Calculate builds the network, certifies it is acyclic and runs the
// forward pass, backward pass and float classification. It returns one
// result per activity. Validation and cycle errors abort the calculation
// with no partial results and leave the engine Failed.
//
// Each call starts from scratch; nothing from a previous call is reused.
func (e *Engine) Calculate(activities []network.Activity, deps []network.Dependency) (map[string]Result, error) {
	return e.calculate(activities, deps, e.opts)
}

// CalculateProgram is Calculate for a loaded program. The program's deadline,
// if any, overrides the engine's for this call only.
func (e *Engine) CalculateProgram(p *network.Program) (map[string]Result, error) {
	opts := e.opts
	if p.Deadline != nil {
		WithDeadline(*p.Deadline)(&opts)
	}
	return e.calculate(p.Activities, p.Dependencies, opts)
}

func (e *Engine) calculate(activities []network.Activity, deps []network.Dependency, opts Options) (map[string]Result, error) {
	e.state = Uninitialized
	e.schedule = nil

	net, err := network.Build(activities, deps)
	if err != nil {
		e.state = Failed
		return nil, fmt.Errorf("build network: %w", err)
	}

	s, err := Analyze(net, opts)
	if err != nil {
		e.state = Failed
		return nil, fmt.Errorf("analyze network: %w", err)
	}

	e.schedule = s
	e.state = Calculated

	out := make(map[string]Result, len(s.Results))
	for id, r := range s.Results {
		out[id] = r
	}
	return out, nil
}

// State reports where the engine is in its lifecycle.
func (e *Engine) State() State {
	return e.state
}

// ProjectDuration returns the project finish from the last successful
// Calculate. It panics if there is none.
func (e *Engine) ProjectDuration() int {
	return e.mustSchedule("ProjectDuration").ProjectDuration
}

// Schedule returns a copy of the full analysis from the last successful
// Calculate. It panics if there is none.
func (e *Engine) Schedule() *Schedule {
	return e.mustSchedule("Schedule").clone()
}

func (e *Engine) mustSchedule(caller string) *Schedule {
	if e.state != Calculated {
		panic(fmt.Sprintf("cpm: %s called on engine in state %s", caller, e.state))
	}
	return e.schedule
}
