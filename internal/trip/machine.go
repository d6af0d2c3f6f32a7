// Package trip holds the status lifecycle rules and the pre-completion
// compliance check. Both are pure; persistence and the authoritative
// rejection of conflicting transitions belong to the store.
package trip

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"tripdash/internal/model"
)

const (
	eventStart    = "start"
	eventComplete = "complete"
)

// Guard and rejection messages, surfaced verbatim to the dashboard.
const (
	MsgAnotherActive   = "another trip is already in progress"
	MsgPlannedOnly     = "only planned trips can be deleted"
	MsgNoDirectFinish  = "planned trips cannot be completed before starting"
	MsgNoRegression    = "trips in progress can only be marked as completed"
	MsgCompletedFrozen = "completed trips cannot change status"
	MsgInvalidStatus   = "invalid status"
)

// newMachine builds a one-shot FSM seeded at the trip's current status.
// A fresh machine per call keeps the package stateless; the single-active
// guard closes over the sibling snapshot taken by the caller.
func newMachine(current model.TripStatus, selfID string, siblings []model.Trip) *fsm.FSM {
	events := fsm.Events{
		{Name: eventStart, Src: []string{string(model.StatusPlanned)}, Dst: string(model.StatusInProgress)},
		{Name: eventComplete, Src: []string{string(model.StatusInProgress)}, Dst: string(model.StatusCompleted)},
	}
	callbacks := fsm.Callbacks{
		"before_" + eventStart: func(_ context.Context, e *fsm.Event) {
			for _, s := range siblings {
				if s.ID != selfID && s.Status == model.StatusInProgress {
					e.Cancel(errors.New(MsgAnotherActive))
					break
				}
			}
		},
	}
	return fsm.NewFSM(string(current), events, callbacks)
}

// CanTransition reports whether the trip may move to target, given a
// snapshot of all sibling trips for the same account. The check is
// advisory: the caller must still expect the store to reject a conflicting
// transition that raced past this snapshot.
func CanTransition(t model.Trip, target model.TripStatus, siblings []model.Trip) (bool, string) {
	if !model.ValidStatus(target) {
		return false, MsgInvalidStatus
	}
	if target == t.Status {
		return false, fmt.Sprintf("trip is already %s", target)
	}

	var event string
	switch target {
	case model.StatusInProgress:
		event = eventStart
	case model.StatusCompleted:
		event = eventComplete
	default: // regression to PLANNED has no event
		return false, reasonFor(t.Status, target)
	}

	err := newMachine(t.Status, t.ID, siblings).Event(context.Background(), event)
	if err == nil {
		return true, ""
	}
	var canceled fsm.CanceledError
	if errors.As(err, &canceled) && canceled.Err != nil {
		return false, canceled.Err.Error()
	}
	return false, reasonFor(t.Status, target)
}

// reasonFor names why a transition is structurally impossible.
func reasonFor(from, target model.TripStatus) string {
	switch {
	case from == model.StatusCompleted:
		return MsgCompletedFrozen
	case from == model.StatusInProgress:
		return MsgNoRegression
	case from == model.StatusPlanned && target == model.StatusCompleted:
		return MsgNoDirectFinish
	}
	return MsgInvalidStatus
}

// AvailableOptions enumerates every status with its current legality, in a
// fixed order for stable dropdown rendering. Pure, no side effects.
func AvailableOptions(t model.Trip, siblings []model.Trip) []model.StatusOption {
	all := []model.TripStatus{model.StatusPlanned, model.StatusInProgress, model.StatusCompleted}
	opts := make([]model.StatusOption, 0, len(all))
	for _, s := range all {
		ok, reason := CanTransition(t, s, siblings)
		opts = append(opts, model.StatusOption{Status: s, Allowed: ok, Reason: reason})
	}
	return opts
}

// CanDelete allows deletion only before a trip starts accruing logs.
func CanDelete(t model.Trip) (bool, string) {
	if t.Status == model.StatusPlanned {
		return true, ""
	}
	return false, MsgPlannedOnly
}
