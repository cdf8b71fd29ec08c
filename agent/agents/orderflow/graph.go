package orderflow

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/pixelmart/order-agent/agent/nodes/orderflow"
)

func (e *Engine) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, e.maxMessageLen, e.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("resolve_session",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ResolveSession(ctx, in, e.sessions)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_session: %w", err)
	}

	if err := graph.AddLambdaNode("append_user_message",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AppendUserMessage(ctx, in, e.history)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node append_user_message: %w", err)
	}

	if err := graph.AddLambdaNode("extract_and_merge",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExtractAndMerge(ctx, in, e.sessions)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_and_merge: %w", err)
	}

	if err := graph.AddLambdaNode("generate_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.GenerateReply(ctx, in, e.history, e.generator, e.historyLimit)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node generate_reply: %w", err)
	}

	if err := graph.AddLambdaNode("append_assistant_message",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AppendAssistantMessage(ctx, in, e.history)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node append_assistant_message: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "resolve_session"},
		{"resolve_session", "append_user_message"},
		{"append_user_message", "extract_and_merge"},
		{"extract_and_merge", "generate_reply"},
		{"generate_reply", "append_assistant_message"},
		{"append_assistant_message", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orderflow.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
