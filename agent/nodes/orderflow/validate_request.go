package orderflownode

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	contractx "github.com/pixelmart/order-agent/agent/contract"
	historyx "github.com/pixelmart/order-agent/agent/history"
	sessionx "github.com/pixelmart/order-agent/agent/session"
)

const DefaultMaxMessageLen = 1000

type GraphInput struct {
	Token       string
	Text        string
	UserID      string
	DisplayName string
}

type GraphOutput struct {
	Reply contractx.AssistantReply
}

type GraphState struct {
	Token       string
	Text        string
	Sanitized   string
	UserID      string
	DisplayName string
	Now         time.Time

	Session *sessionx.Session
	History []historyx.Message

	ReplyText string
}

// Injection-style patterns that hard-reject a message before any side
// effect.
var blockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)\bon\w+\s*=`),
	regexp.MustCompile(`(?i)\beval\s*\(`),
	regexp.MustCompile(`(?i)\bexpression\s*\(`),
}

// ValidateRequest rejects invalid input and sanitizes the rest. Rejection
// happens before any session or history write.
func ValidateRequest(in GraphInput, maxLen int, nowFn func() time.Time) (*GraphState, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLen
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: message is empty", contractx.ErrInvalidInput)
	}
	if len([]rune(text)) > maxLen {
		return nil, fmt.Errorf("%w: message exceeds %d characters", contractx.ErrInvalidInput, maxLen)
	}
	for _, pattern := range blockedPatterns {
		if pattern.MatchString(text) {
			return nil, fmt.Errorf("%w: message contains a blocked pattern", contractx.ErrInvalidInput)
		}
	}

	return &GraphState{
		Token:       strings.TrimSpace(in.Token),
		Text:        text,
		Sanitized:   Sanitize(text),
		UserID:      strings.TrimSpace(in.UserID),
		DisplayName: strings.TrimSpace(in.DisplayName),
		Now:         nowFn().UTC(),
	}, nil
}
