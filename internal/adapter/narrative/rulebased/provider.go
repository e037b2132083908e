// Package rulebased is the offline cognition provider: a deterministic
// rule table over the semantic context. It keeps the full pipeline running
// (and testable) without a language model behind it.
package rulebased

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"driftworld/internal/adapter/narrative"
	"driftworld/internal/app/ports"
	"driftworld/internal/domain/psyche"
)

type Provider struct{}

func New() Provider { return Provider{} }

func (Provider) Decide(_ context.Context, req ports.CognitionRequest) (psyche.Decision, error) {
	joined := strings.ToLower(strings.Join(req.Context.Fragments, " | "))

	stance := psyche.StanceNone
	delta := psyche.DeltaNone
	switch {
	case strings.Contains(joined, "charged") || strings.Contains(joined, "explosive"):
		stance = psyche.StanceSoften
		delta = psyche.DeltaEaseTension
	case strings.Contains(joined, "tense"):
		stance = psyche.StanceApproach
		delta = psyche.DeltaEaseTension
	case strings.Contains(joined, "miserable") || strings.Contains(joined, "low"):
		stance = psyche.StanceWithdraw
		delta = psyche.DeltaCool
	case strings.Contains(joined, "bright") || strings.Contains(joined, "content"):
		stance = psyche.StanceApproach
		delta = psyche.DeltaWarm
	}
	if req.CounterpartID == "" || req.CounterpartID == req.AgentID {
		delta = psyche.DeltaNone
	}

	decision := psyche.Decision{
		ID:      deterministicDecisionID(req),
		AgentID: req.AgentID,
		Stance:  stance,
	}
	decision.RelationshipDelta = delta
	if delta != psyche.DeltaNone {
		decision.RelationshipTarget = req.CounterpartID
	}

	if req.Context.EventSummary != "" {
		salience := psyche.SalienceMedium
		if stance == psyche.StanceSoften {
			salience = psyche.SalienceHigh
		}
		decision.MemoryOps = []psyche.MemoryOp{{
			Kind:     psyche.MemoryEpisodic,
			Text:     req.Context.EventSummary,
			Salience: salience,
		}}
	}
	if strings.Contains(joined, "unresolved") {
		decision.IntentionOps = []psyche.IntentionOp{{
			Op:          psyche.IntentionCreate,
			Description: "settle what has been left hanging",
			Horizon:     psyche.HorizonMedium,
			Priority:    psyche.PriorityMedium,
		}}
	}

	// Round-trip through the shared schema so this provider honors the same
	// boundary contract as the remote one.
	raw, err := json.Marshal(decision)
	if err != nil {
		return psyche.Decision{}, fmt.Errorf("rulebased: marshal decision: %w", err)
	}
	return narrative.Decode(raw)
}

func deterministicDecisionID(req ports.CognitionRequest) string {
	key := req.AgentID + "/" + req.EventID
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("decision/"+key)).String()
}
