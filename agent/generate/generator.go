// Package generate builds grounded prompts and mediates the reasoning
// provider call for one dialogue turn.
package generate

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/pixelmart/order-agent/agent/contract"
	historyx "github.com/pixelmart/order-agent/agent/history"
	promptx "github.com/pixelmart/order-agent/agent/prompt"
	retryx "github.com/pixelmart/order-agent/agent/retry"
	sessionx "github.com/pixelmart/order-agent/agent/session"
	toolx "github.com/pixelmart/order-agent/agent/tool"
)

// Fixed user-facing texts for provider failure paths. Raw provider errors
// stay in the logs.
const (
	msgEmptyResponse = "Sorry, I could not generate a response. Could you say that again?"
	msgProviderDown  = "The assistant is temporarily unavailable. Please try again in a minute."
)

// Generator implements the response-generation step: degraded canned mode
// without a model, otherwise a grounded prompt with the place_order tool
// bound, invoked under the retry supervisor.
type Generator struct {
	runner   compose.Runnable[map[string]any, *schema.Message]
	mediator *toolx.Mediator
	catalog  contractx.CatalogReader
	prompts  promptx.PromptSet
	policy   retryx.Policy
}

type GeneratorOption func(*Generator)

// WithRetryPolicy overrides the provider retry policy (tests use this to
// avoid wall-clock sleeps).
func WithRetryPolicy(p retryx.Policy) GeneratorOption {
	return func(g *Generator) {
		g.policy = p
	}
}

// New compiles the prompt->model graph. A nil chatModel selects the
// deliberate degraded mode: no external calls, canned reply only.
func New(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	mediator *toolx.Mediator,
	catalog contractx.CatalogReader,
	opts ...GeneratorOption,
) (*Generator, error) {
	g := &Generator{
		mediator: mediator,
		catalog:  catalog,
		prompts:  promptx.LoadPromptSet(),
		policy:   retryx.Policy{},
	}

	if chatModel != nil {
		toolModel, err := chatModel.WithTools([]*schema.ToolInfo{toolx.PlaceOrderInfo()})
		if err != nil {
			return nil, fmt.Errorf("%w: bind place_order tool: %v", contractx.ErrModelInvoke, err)
		}
		runner, err := compileGenerateGraph(ctx, toolModel)
		if err != nil {
			return nil, err
		}
		g.runner = runner
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// Degraded reports whether the generator runs without a provider.
func (g *Generator) Degraded() bool {
	return g.runner == nil
}

// Generate produces the assistant reply for one sanitized user message.
// Provider failures never propagate; every path ends in chat text.
func (g *Generator) Generate(
	ctx context.Context,
	sanitizedText string,
	sess *sessionx.Session,
	hist []historyx.Message,
) (string, error) {
	if sess == nil {
		return "", fmt.Errorf("%w: session is required", contractx.ErrValidation)
	}

	if g.Degraded() {
		return g.prompts.Degraded, nil
	}

	grounding := BuildGrounding(ctx, sess, g.catalog)

	input := map[string]any{
		"system":    g.prompts.System,
		"grounding": grounding.Render(),
		"history":   toSchemaHistory(hist, sanitizedText),
		"query":     sanitizedText,
	}

	msg, err := retryx.Do(ctx, g.policy, func(ctx context.Context) (*schema.Message, error) {
		return g.runner.Invoke(ctx, input)
	})
	if err != nil {
		if retryx.IsQuotaExhausted(err) {
			log.Error().Err(err).Str("session", sess.Token).Msg("provider quota exhausted")
		} else {
			log.Error().Err(err).Str("session", sess.Token).Msg("provider call failed")
		}
		return msgProviderDown, nil
	}
	if msg == nil {
		return msgEmptyResponse, nil
	}

	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0]
		if call.Function.Name != toolx.ToolPlaceOrder {
			log.Warn().Str("tool", call.Function.Name).Msg("provider invoked undeclared tool")
			return msgEmptyResponse, nil
		}
		return g.mediator.Execute(ctx, call.Function.Arguments), nil
	}

	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return msgEmptyResponse, nil
	}
	return text, nil
}

func compileGenerateGraph(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.SystemMessage("{grounding}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add generate prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add generate model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add generate edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add generate edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add generate edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orderflow.generate_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile generate graph: %w", err)
	}
	return runner, nil
}

// toSchemaHistory converts the trailing stored turns, dropping the current
// user message when the history store already contains it.
func toSchemaHistory(hist []historyx.Message, query string) []*schema.Message {
	if n := len(hist); n > 0 && hist[n-1].FromUser && hist[n-1].Text == query {
		hist = hist[:n-1]
	}
	if len(hist) == 0 {
		return nil
	}

	out := make([]*schema.Message, 0, len(hist))
	for _, msg := range hist {
		if msg.FromUser {
			out = append(out, schema.UserMessage(msg.Text))
		} else {
			out = append(out, schema.AssistantMessage(msg.Text, nil))
		}
	}
	return out
}
