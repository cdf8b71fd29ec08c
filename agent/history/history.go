// Package history is the append-only message log per session.
package history

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

const KindText = "text"

// Message is one stored chat turn. Immutable once appended.
type Message struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID        int64             `bun:"id,pk,autoincrement" json:"id"`
	SessionID string            `bun:"session_id,notnull" json:"session_id"`
	Text      string            `bun:"text,notnull" json:"text"`
	FromUser  bool              `bun:"from_user,notnull" json:"from_user"`
	Kind      string            `bun:"kind,notnull" json:"kind"`
	Metadata  map[string]string `bun:"metadata,type:jsonb,nullzero" json:"metadata,omitempty"`
	CreatedAt time.Time         `bun:"created_at,notnull" json:"created_at"`
}

// Store persists and reads back conversation history. Append returns the
// assigned message id; Recent returns up to limit messages, oldest first.
type Store interface {
	Append(ctx context.Context, sessionID string, text string, fromUser bool) (int64, error)
	Recent(ctx context.Context, sessionID string, limit int) ([]Message, error)
}
