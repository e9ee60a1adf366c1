package dispatch

import (
	"context"
	"log/slog"

	"github.com/qmuntal/stateless"
)

// State is a step in the lifecycle of one invoice request.
type State string

const (
	StateValidating State = "validating"
	StateGenerating State = "generating"
	StateSending    State = "sending"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

const (
	triggerValidated = "validated"
	triggerGenerated = "generated"
	triggerSent      = "sent"
	triggerFail      = "fail"
)

// newLifecycle returns the per-request machine
// VALIDATING → GENERATING → SENDING → DONE, with FAILED reachable from every
// non-terminal state. DONE and FAILED permit nothing.
func newLifecycle(logger *slog.Logger, strategy Strategy) *stateless.StateMachine {
	sm := stateless.NewStateMachine(StateValidating)

	sm.Configure(StateValidating).
		Permit(triggerValidated, StateGenerating).
		Permit(triggerFail, StateFailed)

	sm.Configure(StateGenerating).
		Permit(triggerGenerated, StateSending).
		Permit(triggerFail, StateFailed)

	sm.Configure(StateSending).
		Permit(triggerSent, StateDone).
		Permit(triggerFail, StateFailed)

	sm.Configure(StateDone)
	sm.Configure(StateFailed)

	sm.OnTransitioned(func(_ context.Context, t stateless.Transition) {
		logger.Debug("dispatch: transition",
			"strategy", strategy,
			"from", t.Source,
			"to", t.Destination,
		)
	})
	return sm
}

// kindFor maps the state a failure happened in to its error kind.
func kindFor(s State) Kind {
	switch s {
	case StateValidating:
		return KindValidation
	case StateSending:
		return KindDelivery
	default:
		return KindGeneration
	}
}

func currentState(sm *stateless.StateMachine) State {
	s, _ := sm.MustState().(State)
	return s
}
