// Package narrative holds the shared boundary contract for cognition
// providers: the decision schema and its validator. Providers must pass
// their raw output through Decode before handing a decision to the app
// layer; symbolic classes only, never raw numbers.
package narrative

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"driftworld/internal/domain/psyche"
)

//go:embed decision.schema.json
var decisionSchemaSrc string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func decisionSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("decision.schema.json", decisionSchemaSrc)
	})
	return schema, schemaErr
}

// Decode validates raw provider output against the decision schema and
// unmarshals it. Unknown fields fail validation, including any attempt to
// smuggle numeric values past the symbolic classes.
func Decode(raw []byte) (psyche.Decision, error) {
	s, err := decisionSchema()
	if err != nil {
		return psyche.Decision{}, fmt.Errorf("compile decision schema: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return psyche.Decision{}, fmt.Errorf("%w: %v", psyche.ErrInvalidDecision, err)
	}
	if err := s.Validate(generic); err != nil {
		return psyche.Decision{}, fmt.Errorf("%w: %v", psyche.ErrInvalidDecision, err)
	}

	var d psyche.Decision
	if err := json.Unmarshal(raw, &d); err != nil {
		return psyche.Decision{}, fmt.Errorf("%w: %v", psyche.ErrInvalidDecision, err)
	}
	return d, nil
}
