package ports

import (
	"context"

	"driftworld/internal/domain/psyche"
	"driftworld/internal/domain/world"
)

// CognitionRequest is the sanitized input to the narrative-generation
// wrapper: mapper output plus event metadata, never numeric state.
type CognitionRequest struct {
	AgentID       string
	CounterpartID string
	EventID       string
	Kind          world.EventKind
	Context       psyche.SemanticContext
}

// CognitionProvider wraps the external narrative service. Implementations
// are responsible for schema-validating their output before returning it;
// the integrator still re-validates as the last line of defense.
type CognitionProvider interface {
	Decide(ctx context.Context, req CognitionRequest) (psyche.Decision, error)
}
