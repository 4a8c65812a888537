// Package mask renders secret material safe for log output.
package mask

import (
	"strings"

	masker "github.com/goliatone/go-masker"
)

// Value masks a secret value for safe logging, preserving a couple of
// characters on each end when the value is long enough.
func Value(value string) string {
	if value == "" {
		return ""
	}
	if masked, err := masker.Default.String("preserveEnds(2,2)", value); err == nil {
		return masked
	}
	// Fallback masking if no rule is registered.
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}

// Values returns a masked copy of the provided map for safe logging.
func Values(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	masked := make(map[string]string, len(values))
	for key, val := range values {
		masked[key] = Value(val)
	}
	return masked
}
