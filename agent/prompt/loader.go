package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/system.txt
	systemRaw string

	//go:embed template/degraded.txt
	degradedRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	// System is the fixed slot-collection policy for the reasoning provider.
	System string
	// Degraded is the canned reply used when no provider credential is
	// configured.
	Degraded string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		System:   strings.TrimSpace(systemRaw),
		Degraded: strings.TrimSpace(degradedRaw),
	}
}
