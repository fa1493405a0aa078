// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package etching

// State defines progress of the pending etching.
type State string

const (
	// StateValidated defines that the commit transaction is signed but not broadcast yet.
	StateValidated State = "validated"
	// StateCommitBroadcast defines that the commit transaction is sent to the network.
	StateCommitBroadcast State = "commit_broadcast"
	// StateRevealEligible defines that the commit transaction has enough confirmations.
	StateRevealEligible State = "reveal_eligible"
	// StateRevealBroadcast defines that the reveal transaction is sent to the network.
	StateRevealBroadcast State = "reveal_broadcast"
	// StateFailed defines that the last call failed, the record is kept for resume.
	StateFailed State = "failed"
)

// transitions lists allowed state transitions.
var transitions = map[State][]State{
	StateValidated:       {StateCommitBroadcast, StateFailed},
	StateCommitBroadcast: {StateRevealEligible, StateFailed},
	StateRevealEligible:  {StateRevealBroadcast, StateFailed},
	StateFailed:          {StateCommitBroadcast, StateRevealBroadcast},
}

// IsValid returns true if state is known.
func (s State) IsValid() bool {
	switch s {
	case StateValidated, StateCommitBroadcast, StateRevealEligible, StateRevealBroadcast, StateFailed:
		return true
	default:
		return false
	}
}

// CanTransition returns true if state may be changed to the next one.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// String returns state name.
func (s State) String() string {
	return string(s)
}
