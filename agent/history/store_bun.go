package history

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// BunStore keeps message history in Postgres through bun.
type BunStore struct {
	db  *bun.DB
	now func() time.Time
}

var _ Store = (*BunStore)(nil)

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db, now: time.Now}
}

func (s *BunStore) Append(ctx context.Context, sessionID string, text string, fromUser bool) (int64, error) {
	msg := &Message{
		SessionID: sessionID,
		Text:      text,
		FromUser:  fromUser,
		Kind:      KindText,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(msg).Returning("id").Exec(ctx); err != nil {
		return 0, fmt.Errorf("append message: %w", err)
	}
	return msg.ID, nil
}

func (s *BunStore) Recent(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	var msgs []Message
	err := s.db.NewSelect().
		Model(&msgs).
		Where("m.session_id = ?", sessionID).
		OrderExpr("m.id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load recent messages: %w", err)
	}

	// Reverse into oldest-first order for prompt assembly.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
