package orderflownode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/pixelmart/order-agent/agent/contract"
	extractx "github.com/pixelmart/order-agent/agent/extract"
	sessionx "github.com/pixelmart/order-agent/agent/session"
)

// ExtractAndMerge runs the field extractor against the current slots, merges
// discoveries, and re-reads the session so the generator sees post-merge
// state. A session missing after the merge is a storage inconsistency and
// fatal for the turn.
func ExtractAndMerge(ctx context.Context, in *GraphState, store sessionx.Store) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	found := extractx.Discover(in.Session.Slots, in.Sanitized)
	if len(found) > 0 {
		if err := store.MergeSlots(ctx, in.Token, found); err != nil {
			return nil, err
		}
		log.Debug().
			Str("session", in.Token).
			Int("discovered", len(found)).
			Msg("merged extracted slots")
	}

	sess, err := store.Load(ctx, in.Token)
	if err != nil {
		if errors.Is(err, sessionx.ErrNotFound) {
			return nil, fmt.Errorf("%w: token=%s vanished after merge", contractx.ErrSessionNotFound, in.Token)
		}
		return nil, err
	}

	in.Session = sess
	return in, nil
}
