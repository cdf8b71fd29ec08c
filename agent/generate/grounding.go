package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/pixelmart/order-agent/agent/contract"
	sessionx "github.com/pixelmart/order-agent/agent/session"
	toolx "github.com/pixelmart/order-agent/agent/tool"
)

// Grounding is the typed per-turn context injected into the provider prompt:
// slot state, missing-field summary, language, and the catalog/account
// snapshot. Keeping it a DTO keeps the prompt boundary testable.
type Grounding struct {
	Slots         map[string]string  `json:"slots"`
	MissingFields []string           `json:"missing_fields"`
	Language      string             `json:"language"`
	CatalogNames  []string           `json:"catalog_names"`
	Accounts      []contractx.Account `json:"accounts"`
}

// BuildGrounding assembles a fresh grounding block for one turn. Snapshot
// read failures degrade to an empty snapshot; grounding is best-effort and
// must not fail the turn.
func BuildGrounding(ctx context.Context, sess *sessionx.Session, catalog contractx.CatalogReader) Grounding {
	g := Grounding{
		Slots:    map[string]string{},
		Language: sessionx.DefaultLanguage,
	}
	if sess != nil {
		for k, v := range sess.Slots {
			if strings.TrimSpace(v) != "" {
				g.Slots[k] = v
			}
		}
		for _, key := range sess.MissingSlots() {
			g.MissingFields = append(g.MissingFields, toolx.FieldLabels[key])
		}
		if strings.TrimSpace(sess.Language) != "" {
			g.Language = sess.Language
		}
	}

	if catalog == nil {
		return g
	}

	items, err := catalog.ListActiveCatalogItems(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("catalog snapshot unavailable for grounding")
	}
	for _, item := range items {
		g.CatalogNames = append(g.CatalogNames, item.Name)
	}

	accounts, err := catalog.ListActiveAccounts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("account snapshot unavailable for grounding")
	}
	g.Accounts = accounts

	return g
}

// Render produces the grounding text block for the prompt.
func (g Grounding) Render() string {
	var b strings.Builder

	b.WriteString("Current order context:\n")
	if len(g.Slots) == 0 {
		b.WriteString("  (no fields collected yet)\n")
	}
	for _, key := range sessionx.RequiredSlots() {
		if v := g.Slots[key]; v != "" {
			fmt.Fprintf(&b, "  %s: %s\n", key, v)
		}
	}
	for k, v := range g.Slots {
		if !isRequiredSlot(k) {
			fmt.Fprintf(&b, "  %s: %s\n", k, v)
		}
	}

	if len(g.MissingFields) == 0 {
		b.WriteString("All required fields are collected; place the order now.\n")
	} else {
		fmt.Fprintf(&b, "Still missing: %s\n", strings.Join(g.MissingFields, ", "))
	}

	fmt.Fprintf(&b, "Customer language: %s\n", g.Language)

	if len(g.CatalogNames) > 0 {
		fmt.Fprintf(&b, "Available catalog items: %s\n", strings.Join(g.CatalogNames, ", "))
	}
	if len(g.Accounts) > 0 {
		b.WriteString("Open accounts:\n")
		for _, acc := range g.Accounts {
			fmt.Fprintf(&b, "  #%d %s [%s] %.2f\n", acc.ID, acc.Title, acc.Platform, acc.Price)
		}
	}

	return b.String()
}

func isRequiredSlot(key string) bool {
	for _, k := range sessionx.RequiredSlots() {
		if k == key {
			return true
		}
	}
	return false
}
