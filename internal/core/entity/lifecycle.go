package entity

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/zeusync/outpost/internal/core/observability/log"
)

// Lifecycle states.
const (
	StateConstructed = "constructed"
	StateAttached    = "attached"
	StateActive      = "active"
	StateDisabled    = "disabled"
	StateDisposed    = "disposed"
)

const (
	eventAttach   = "attach"
	eventActivate = "activate"
	eventDisable  = "disable"
	eventEnable   = "enable"
	eventDispose  = "dispose"
)

func newLifecycle(logger log.Log) *fsm.FSM {
	return fsm.NewFSM(
		StateConstructed,
		fsm.Events{
			{Name: eventAttach, Src: []string{StateConstructed}, Dst: StateAttached},
			{Name: eventActivate, Src: []string{StateConstructed, StateAttached}, Dst: StateActive},
			{Name: eventDisable, Src: []string{StateActive}, Dst: StateDisabled},
			{Name: eventEnable, Src: []string{StateDisabled}, Dst: StateActive},
			{Name: eventDispose, Src: []string{StateConstructed, StateAttached, StateActive, StateDisabled}, Dst: StateDisposed},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Debug("entity state changed",
					log.String("from", e.Src),
					log.String("to", e.Dst),
				)
			},
		},
	)
}

// transition fires event if the current state allows it and reports whether
// the state changed.
func (e *Entity) transition(event string) bool {
	if !e.lifecycle.Can(event) {
		return false
	}
	return e.lifecycle.Event(context.Background(), event) == nil
}
