package mask

import (
	"strings"
	"testing"
)

func TestValueHidesMiddle(t *testing.T) {
	masked := Value("super-secret-token")
	if masked == "super-secret-token" {
		t.Fatalf("value not masked")
	}
	if masked == "" {
		t.Fatalf("masked value empty")
	}
	if !strings.Contains(masked, "*") {
		t.Fatalf("expected masked characters, got %q", masked)
	}
}

func TestValueEmpty(t *testing.T) {
	if got := Value(""); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestValuesEmpty(t *testing.T) {
	if got := Values(nil); got != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestValuesMasksEach(t *testing.T) {
	got := Values(map[string]string{"API_KEY": "abcdefgh12345678"})
	if got["API_KEY"] == "abcdefgh12345678" {
		t.Fatalf("map value not masked")
	}
}
