package orderflownode

import (
	"fmt"
	"strings"

	contractx "github.com/pixelmart/order-agent/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	text := strings.TrimSpace(in.ReplyText)
	if text == "" {
		return GraphOutput{}, fmt.Errorf("%w: generator returned empty reply", contractx.ErrValidation)
	}

	return GraphOutput{
		Reply: contractx.AssistantReply{
			Text:         text,
			SessionToken: in.Session.Token,
			Timestamp:    in.Now,
		},
	}, nil
}
