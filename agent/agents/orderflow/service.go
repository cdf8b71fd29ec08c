// Package orderflow is the engine facade: it owns the turn pipeline, the
// per-session serialization discipline, and the surface consumed by the
// transport layer.
package orderflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	contractx "github.com/pixelmart/order-agent/agent/contract"
	generatex "github.com/pixelmart/order-agent/agent/generate"
	historyx "github.com/pixelmart/order-agent/agent/history"
	nodex "github.com/pixelmart/order-agent/agent/nodes/orderflow"
	sessionx "github.com/pixelmart/order-agent/agent/session"
)

type Config struct {
	HistoryLimit  int `envconfig:"HISTORY_LIMIT" split_words:"true" default:"10"`
	MaxMessageLen int `envconfig:"MAX_MESSAGE_LEN" split_words:"true" default:"1000"`
}

// Engine processes dialogue turns. Turns for the same session token are
// serialized through a per-token mutex so a turn's merge always observes the
// previous turn's merge; cross-session turns run fully in parallel.
type Engine struct {
	sessions  sessionx.Store
	history   historyx.Store
	generator *generatex.Generator

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	historyLimit  int
	maxMessageLen int

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	now func() time.Time
}

func New(
	sessions sessionx.Store,
	history historyx.Store,
	generator *generatex.Generator,
	cfg Config,
) (*Engine, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if history == nil {
		return nil, errors.New("history store is required")
	}
	if generator == nil {
		return nil, errors.New("generator is required")
	}

	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = nodex.DefaultHistoryLimit
	}
	maxMessageLen := cfg.MaxMessageLen
	if maxMessageLen <= 0 {
		maxMessageLen = nodex.DefaultMaxMessageLen
	}

	e := &Engine{
		sessions:      sessions,
		history:       history,
		generator:     generator,
		historyLimit:  historyLimit,
		maxMessageLen: maxMessageLen,
		locks:         make(map[string]*sync.Mutex),
		now:           time.Now,
	}

	graphRunner, err := e.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	e.graphRunner = graphRunner

	return e, nil
}

// ProcessMessage handles one inbound chat message end to end and returns the
// assistant reply.
func (e *Engine) ProcessMessage(
	ctx context.Context,
	token string,
	text string,
	userID string,
	displayName string,
) (contractx.AssistantReply, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		// First contact without a client token: mint one up front so the
		// per-token lock covers session creation too.
		token = uuid.NewString()
	}

	lock := e.tokenLock(token)
	lock.Lock()
	defer lock.Unlock()

	out, err := e.graphRunner.Invoke(ctx, nodex.GraphInput{
		Token:       token,
		Text:        text,
		UserID:      userID,
		DisplayName: displayName,
	})
	if err != nil {
		return contractx.AssistantReply{}, err
	}
	return out.Reply, nil
}

// CreateSession provisions a session with a fresh token.
func (e *Engine) CreateSession(
	ctx context.Context,
	userID string,
	displayName string,
	language string,
) (*sessionx.Session, error) {
	sess := sessionx.New(uuid.NewString(), userID, displayName, language, e.now())
	if err := e.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSession looks a session up by its public token.
func (e *Engine) GetSession(ctx context.Context, token string) (*sessionx.Session, error) {
	sess, err := e.sessions.Load(ctx, token)
	if err != nil {
		if errors.Is(err, sessionx.ErrNotFound) {
			return nil, fmt.Errorf("%w: token=%s", contractx.ErrSessionNotFound, token)
		}
		return nil, err
	}
	return sess, nil
}

// UpdateContext patches slots directly, bypassing extraction. The merge
// keeps first-writer-wins semantics; use ClearSlot first to correct a value.
func (e *Engine) UpdateContext(ctx context.Context, token string, partial map[string]string) error {
	lock := e.tokenLock(strings.TrimSpace(token))
	lock.Lock()
	defer lock.Unlock()

	if err := e.sessions.MergeSlots(ctx, token, partial); err != nil {
		if errors.Is(err, sessionx.ErrNotFound) {
			return fmt.Errorf("%w: token=%s", contractx.ErrSessionNotFound, token)
		}
		return err
	}
	return nil
}

// ClearSlot resets one slot for correction flows.
func (e *Engine) ClearSlot(ctx context.Context, token string, field string) error {
	lock := e.tokenLock(strings.TrimSpace(token))
	lock.Lock()
	defer lock.Unlock()

	if err := e.sessions.ClearSlot(ctx, token, field); err != nil {
		if errors.Is(err, sessionx.ErrNotFound) {
			return fmt.Errorf("%w: token=%s", contractx.ErrSessionNotFound, token)
		}
		return err
	}
	return nil
}

func (e *Engine) tokenLock(token string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[token]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[token] = lock
	}
	return lock
}
