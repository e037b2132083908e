package psyche

import (
	"errors"
	"fmt"
)

// ErrProtectedParticipant trips whenever a component is about to compute,
// read or write psychological state for the protected participant, or to
// select them as a vantage subject. It is a programming defect, not a
// runtime condition: callers abort the cycle loudly instead of skipping.
var ErrProtectedParticipant = errors.New("protected participant selected as simulation subject")

// GuardTrip carries enough context to identify the offending call site.
type GuardTrip struct {
	AgentID string
	Op      string
}

func (g *GuardTrip) Error() string {
	return fmt.Sprintf("%s: agent %s in op %s", ErrProtectedParticipant, g.AgentID, g.Op)
}

func (g *GuardTrip) Unwrap() error { return ErrProtectedParticipant }

// EnsureSimulated is the single protected-user check every component calls
// at entry when it accepts an agent as a psychology subject.
func EnsureSimulated(a Agent, op string) error {
	if a.Protected {
		return &GuardTrip{AgentID: a.ID, Op: op}
	}
	return nil
}

// EnsureSimulatedSource guards relationship writes: the protected
// participant may be a target but never a source.
func EnsureSimulatedSource(r Relationship, protectedID string, op string) error {
	if r.Source == protectedID {
		return &GuardTrip{AgentID: r.Source, Op: op}
	}
	return nil
}
