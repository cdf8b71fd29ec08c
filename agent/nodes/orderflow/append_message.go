package orderflownode

import (
	"context"
	"fmt"

	contractx "github.com/pixelmart/order-agent/agent/contract"
	historyx "github.com/pixelmart/order-agent/agent/history"
)

// AppendUserMessage persists the sanitized inbound message.
func AppendUserMessage(ctx context.Context, in *GraphState, hist historyx.Store) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if _, err := hist.Append(ctx, in.Session.ID, in.Sanitized, true); err != nil {
		return nil, err
	}
	return in, nil
}

// AppendAssistantMessage persists the generated reply.
func AppendAssistantMessage(ctx context.Context, in *GraphState, hist historyx.Store) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if _, err := hist.Append(ctx, in.Session.ID, in.ReplyText, false); err != nil {
		return nil, err
	}
	return in, nil
}
