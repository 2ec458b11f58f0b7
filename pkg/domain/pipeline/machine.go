// Package pipeline models the lifecycle of one QA run:
// verify, sweep, summarize, calibrate.
package pipeline

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// States of a run. Untyped so they convert to statekit.StateID.
const (
	StateIdle       = "idle"
	StateVerified   = "verified"
	StateSwept      = "swept"
	StateSummarized = "summarized"
	StateCalibrated = "calibrated"
	StateFailed     = "failed"
)

// Events that drive a run forward.
const (
	EventVerify    = "verify"
	EventSweep     = "sweep"
	EventSummarize = "summarize"
	EventCalibrate = "calibrate"
	EventFail      = "fail"
)

// RunContext is the machine context. Verdict reports whether the corpus
// passed validation; the machine refuses to leave idle until it has.
type RunContext struct {
	RunID   string
	Verdict func() bool
}

// Machine wraps the statekit interpreter for one run.
type Machine struct {
	interpreter *statekit.Interpreter[RunContext]
}

// NewMachine builds a run machine in the idle state.
func NewMachine(runID string, verdict func() bool) (*Machine, error) {
	if verdict == nil {
		verdict = func() bool { return false }
	}

	builder := statekit.NewMachine[RunContext]("qa-run").
		WithInitial(statekit.StateID(StateIdle)).
		WithContext(RunContext{RunID: runID, Verdict: verdict}).
		WithGuard("verdictPassed", func(ctx RunContext, _ statekit.Event) bool {
			return ctx.Verdict()
		})

	builder.State(StateIdle).
		On(EventVerify).Target(StateVerified).Guard("verdictPassed").
		On(EventFail).Target(StateFailed).
		Done()

	builder.State(StateVerified).
		On(EventSweep).Target(StateSwept).
		On(EventFail).Target(StateFailed).
		Done()

	builder.State(StateSwept).
		On(EventSummarize).Target(StateSummarized).
		On(EventFail).Target(StateFailed).
		Done()

	builder.State(StateSummarized).
		On(EventCalibrate).Target(StateCalibrated).
		On(EventFail).Target(StateFailed).
		Done()

	builder.State(StateCalibrated).Done()
	builder.State(StateFailed).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build run machine: %w", err)
	}
	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &Machine{interpreter: interpreter}, nil
}

// Transition sends event and fails when the run did not move.
func (m *Machine) Transition(event string) error {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if m.Current() != before {
		return nil
	}
	return fmt.Errorf("event %q is not allowed while the run is %s", event, before)
}

// Current returns the current state.
func (m *Machine) Current() string {
	return string(m.interpreter.State().Value)
}

// IsFinal is true once the run has calibrated or failed.
func (m *Machine) IsFinal() bool {
	s := m.Current()
	return s == StateCalibrated || s == StateFailed
}
