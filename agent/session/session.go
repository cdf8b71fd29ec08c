package session

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Required slot keys for order placement. The slot context may carry
// accessory preference keys next to these; only the four below gate the
// place_order tool.
const (
	SlotAccountID    = "accountId"
	SlotPurchaseType = "purchaseType"
	SlotPlatform     = "platform"
	SlotPhone        = "phone"
)

// RequiredSlots returns the order-placement slots in collection priority.
func RequiredSlots() []string {
	return []string{SlotAccountID, SlotPurchaseType, SlotPlatform, SlotPhone}
}

var (
	ErrNotFound   = errors.New("session not found")
	ErrNilSession = errors.New("session is nil")
	ErrEmptyToken = errors.New("session token is empty")
)

// Session accumulates slot values and conversation metadata for one chat
// correlation token. Mutation goes through MergeSlots; slots are
// first-writer-wins until explicitly cleared.
type Session struct {
	// ID is the internal identifier message history is keyed by; Token is
	// the public correlation token handed to the client.
	ID          string            `json:"id"`
	Token       string            `json:"token"`
	UserID      string            `json:"user_id,omitempty"`
	DisplayName string            `json:"display_name,omitempty"`
	Language    string            `json:"language"`
	Active      bool              `json:"active"`
	Slots       map[string]string `json:"slots,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

const DefaultLanguage = "uk"

func New(token, userID, displayName, language string, now time.Time) *Session {
	lang := strings.TrimSpace(language)
	if lang == "" {
		lang = DefaultLanguage
	}
	return &Session{
		ID:          uuid.NewString(),
		Token:       token,
		UserID:      strings.TrimSpace(userID),
		DisplayName: strings.TrimSpace(displayName),
		Language:    lang,
		Active:      true,
		Slots:       make(map[string]string, 8),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *Session) EnsureSlots() {
	if s.Slots == nil {
		s.Slots = make(map[string]string, 8)
	}
}

// Slot returns the trimmed slot value, or "" when unset.
func (s *Session) Slot(key string) string {
	if s == nil || s.Slots == nil {
		return ""
	}
	return strings.TrimSpace(s.Slots[key])
}

func (s *Session) HasSlot(key string) bool {
	return s.Slot(key) != ""
}

// MergeSlots unions pairs into the slot context. An existing non-empty value
// always wins over a newly extracted one; empty incoming values are dropped.
// Returns the number of slots actually written.
func (s *Session) MergeSlots(pairs map[string]string) int {
	if s == nil || len(pairs) == 0 {
		return 0
	}
	s.EnsureSlots()
	written := 0
	for key, val := range pairs {
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if key == "" || val == "" {
			continue
		}
		if strings.TrimSpace(s.Slots[key]) != "" {
			continue
		}
		s.Slots[key] = val
		written++
	}
	return written
}

// ClearSlot removes one slot so a correction flow can re-collect it.
func (s *Session) ClearSlot(key string) {
	if s == nil || s.Slots == nil {
		return
	}
	delete(s.Slots, strings.TrimSpace(key))
}

// MissingSlots lists the required slots still absent, in collection priority.
func (s *Session) MissingSlots() []string {
	missing := make([]string, 0, 4)
	for _, key := range RequiredSlots() {
		if !s.HasSlot(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// ReadyForOrder reports whether all four required slots are filled.
func (s *Session) ReadyForOrder() bool {
	return len(s.MissingSlots()) == 0
}

// Clone returns a deep copy so stores can hand out sessions without aliasing
// their internal state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	dup := *s
	if s.Slots != nil {
		dup.Slots = make(map[string]string, len(s.Slots))
		for k, v := range s.Slots {
			dup.Slots[k] = v
		}
	}
	return &dup
}
