// Package openai is the cognition provider backed by the OpenAI chat API.
// It sends only the sanitized semantic context and expects a JSON decision
// object, which is schema-validated before it leaves this package.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"driftworld/internal/adapter/narrative"
	"driftworld/internal/app/ports"
	"driftworld/internal/domain/psyche"
)

const systemPrompt = `You narrate the inner life of a character in a slow-burning social simulation.

You receive a set of prose fragments describing how the character currently feels, their relationships, and a summary of something that just happened. Decide how the character shifts in response.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "agent_id": "<the character id you were given>",
  "stance_shift": "none|soften|harden|approach|withdraw",
  "relationship_target": "<counterpart id, when a relationship shifts>",
  "relationship_delta_class": "none|warm|cool|deepen_trust|breach_trust|ease_tension|raise_tension",
  "intention_ops": [{"op": "create", "description": "...", "horizon": "short|medium|long", "priority": "low|medium|high"}],
  "memory_ops": [{"kind": "episodic|biographical", "text": "...", "salience": "low|medium|high"}],
  "arc_ops": [{"topic": "...", "weight": "low|medium|high", "valence_pole": "positive|negative"}]
}

Rules:
- Use ONLY the symbolic classes above. Never invent numeric values or extra fields.
- Memory text describes what the character experienced, never another entity's inner state.
- Keep decisions proportionate to what the fragments describe.`

type Provider struct {
	client oai.Client
	model  string
}

type config struct {
	baseURL string
	timeout time.Duration
}

type Option func(*config)

func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

func New(apiKey, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	return &Provider{client: oai.NewClient(reqOpts...), model: model}, nil
}

func (p *Provider) Decide(ctx context.Context, req ports.CognitionRequest) (psyche.Decision, error) {
	resp, err := p.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(userPrompt(req)),
		},
	})
	if err != nil {
		return psyche.Decision{}, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return psyche.Decision{}, fmt.Errorf("openai: empty choices in response")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	decision, err := narrative.Decode([]byte(raw))
	if err != nil {
		return psyche.Decision{}, fmt.Errorf("openai: %w", err)
	}
	if decision.AgentID != req.AgentID {
		return psyche.Decision{}, fmt.Errorf("%w: decision subject %q does not match request %q",
			psyche.ErrInvalidDecision, decision.AgentID, req.AgentID)
	}
	return decision, nil
}

func userPrompt(req ports.CognitionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Character id: %s\n", req.AgentID)
	if req.CounterpartID != "" {
		fmt.Fprintf(&b, "Counterpart id: %s\n", req.CounterpartID)
	}
	fmt.Fprintf(&b, "Occasion: %s\n", req.Kind)
	if req.Context.Scene != "" {
		fmt.Fprintf(&b, "Scene: %s\n", req.Context.Scene)
	}
	if req.Context.EventSummary != "" {
		fmt.Fprintf(&b, "What happened: %s\n", req.Context.EventSummary)
	}
	b.WriteString("How things stand:\n")
	for _, f := range req.Context.Fragments {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	return b.String()
}
