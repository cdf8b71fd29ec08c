package orderflownode

import (
	"context"
	"fmt"

	contractx "github.com/pixelmart/order-agent/agent/contract"
	generatex "github.com/pixelmart/order-agent/agent/generate"
	historyx "github.com/pixelmart/order-agent/agent/history"
)

const DefaultHistoryLimit = 10

// GenerateReply loads the trailing history window and asks the response
// generator for the assistant text.
func GenerateReply(
	ctx context.Context,
	in *GraphState,
	hist historyx.Store,
	gen *generatex.Generator,
	historyLimit int,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}

	recent, err := hist.Recent(ctx, in.Session.ID, historyLimit)
	if err != nil {
		return nil, err
	}
	in.History = recent

	reply, err := gen.Generate(ctx, in.Sanitized, in.Session, recent)
	if err != nil {
		return nil, err
	}
	in.ReplyText = reply
	return in, nil
}
