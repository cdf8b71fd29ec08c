// Package extract scans raw user utterances for order slot values using
// fixed lexical patterns. Everything here is pure: no I/O, no mutation of
// inputs, and absence of a match is not an error.
package extract

import (
	"regexp"
	"strings"

	sessionx "github.com/pixelmart/order-agent/agent/session"
)

var (
	// First standalone run of digits in the message.
	accountIDPattern = regexp.MustCompile(`\b\d+\b`)

	// Fixed purchase-type token set; longer tokens listed first so P2PS4
	// is not shadowed by a shorter prefix.
	purchaseTypePattern = regexp.MustCompile(`(?i)\b(P2PS4|P2PS5|P3A|P1|P3)\b`)

	// PS4/PS5 with an optional inserted space ("ps 4").
	platformPattern = regexp.MustCompile(`(?i)\bps\s?([45])\b`)

	// Leading-zero 10-digit national phone number.
	phonePattern = regexp.MustCompile(`\b0\d{9}\b`)
)

// PurchaseTypes is the closed enumeration accepted for the purchaseType slot.
var PurchaseTypes = []string{"P1", "P2PS4", "P2PS5", "P3", "P3A"}

// IsPurchaseType reports whether v (case-insensitively) is a valid token.
func IsPurchaseType(v string) bool {
	for _, t := range PurchaseTypes {
		if strings.EqualFold(strings.TrimSpace(v), t) {
			return true
		}
	}
	return false
}

// Discover returns the slot pairs newly found in text. A slot already
// non-empty in current is never rediscovered (first-writer-wins lives in the
// merge; skipping here keeps extraction cheap and side-effect free). Each
// pattern is evaluated against the whole message independently, so an
// account-shaped run and a phone-shaped run in one message do not suppress
// one another.
func Discover(current map[string]string, text string) map[string]string {
	found := make(map[string]string, 4)
	if strings.TrimSpace(text) == "" {
		return found
	}

	if !hasSlot(current, sessionx.SlotAccountID) {
		if m := accountIDPattern.FindString(text); m != "" {
			found[sessionx.SlotAccountID] = m
		}
	}

	if !hasSlot(current, sessionx.SlotPurchaseType) {
		if m := purchaseTypePattern.FindString(text); m != "" {
			found[sessionx.SlotPurchaseType] = strings.ToUpper(m)
		}
	}

	if !hasSlot(current, sessionx.SlotPlatform) {
		if m := platformPattern.FindStringSubmatch(text); len(m) == 2 {
			found[sessionx.SlotPlatform] = "PS" + m[1]
		}
	}

	if !hasSlot(current, sessionx.SlotPhone) {
		if m := phonePattern.FindString(text); m != "" {
			found[sessionx.SlotPhone] = m
		}
	}

	return found
}

func hasSlot(current map[string]string, key string) bool {
	if current == nil {
		return false
	}
	return strings.TrimSpace(current[key]) != ""
}
