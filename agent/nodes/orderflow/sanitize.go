package orderflownode

import (
	"regexp"
	"strings"
)

var (
	scriptBlockPattern  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	markupTagPattern    = regexp.MustCompile(`<[^>]*>`)
	controlTokenPattern = regexp.MustCompile(`(?i)/(system|admin|root)\b`)
)

// Sanitize rewrites a message that already passed validation: control-token
// look-alikes and script/markup fragments are stripped. It never rejects.
func Sanitize(text string) string {
	out := scriptBlockPattern.ReplaceAllString(text, "")
	out = markupTagPattern.ReplaceAllString(out, "")
	out = controlTokenPattern.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
