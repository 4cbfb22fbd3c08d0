package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/catalogue/internal/domain"
)

var _ domain.TransitionValidator = (*Validator)(nil)

// Validator checks lifecycle events with looplab/fsm. The machine is
// stateful, so Apply builds one per call seeded with the record's status.
type Validator struct {
	events loopfsm.Events
}

// New creates a validator for the given transitions, or for
// domain.Transitions when none are given.
func New(transitions ...domain.Transition) *Validator {
	if len(transitions) == 0 {
		transitions = domain.Transitions
	}
	return &Validator{events: describe(transitions)}
}

// describe folds transitions sharing an event and destination into one
// EventDesc with several sources.
func describe(transitions []domain.Transition) loopfsm.Events {
	type edge struct {
		event domain.Event
		dst   domain.Status
	}
	sources := make(map[edge][]string)
	var order []edge

	for _, t := range transitions {
		e := edge{event: t.Event, dst: t.Dst}
		if _, seen := sources[e]; !seen {
			order = append(order, e)
		}
		sources[e] = append(sources[e], string(t.Src))
	}

	out := make(loopfsm.Events, 0, len(order))
	for _, e := range order {
		out = append(out, loopfsm.EventDesc{Name: string(e.event), Src: sources[e], Dst: string(e.dst)})
	}
	return out
}

// Apply returns the status event leads to from current, or a
// domain.TransitionError when the event is unknown or not allowed there.
func (v *Validator) Apply(ctx context.Context, current domain.Status, event domain.Event) (domain.Status, error) {
	machine := loopfsm.NewFSM(string(current), v.events, nil)

	if err := machine.Event(ctx, string(event)); err != nil {
		var (
			invalid loopfsm.InvalidEventError
			unknown loopfsm.UnknownEventError
			noop    loopfsm.NoTransitionError
		)
		if errors.As(err, &invalid) || errors.As(err, &unknown) || errors.As(err, &noop) {
			return "", &domain.TransitionError{Event: event, Current: current}
		}
		return "", err
	}

	return domain.Status(machine.Current()), nil
}
