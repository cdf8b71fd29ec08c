package orderflownode

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/pixelmart/order-agent/agent/contract"
	sessionx "github.com/pixelmart/order-agent/agent/session"
)

// ResolveSession loads the session for the token, transparently creating one
// for first-contact tokens. Client-generated tokens are common here, so an
// unknown token is not an error.
func ResolveSession(ctx context.Context, in *GraphState, store sessionx.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if in.Token == "" {
		in.Token = uuid.NewString()
	}

	sess, err := store.Load(ctx, in.Token)
	if err == nil {
		in.Session = sess
		return in, nil
	}
	if !errors.Is(err, sessionx.ErrNotFound) {
		return nil, err
	}

	sess = sessionx.New(in.Token, in.UserID, in.DisplayName, "", in.Now)
	if err := store.Save(ctx, sess); err != nil {
		return nil, err
	}
	log.Debug().Str("session", in.Token).Msg("created session for first-contact token")

	in.Session = sess
	return in, nil
}
