package domain

import "testing"

func TestParseNumber(t *testing.T) {
	parsed, ok := ParseNumber("INV-2025-000042")
	if !ok {
		t.Fatalf("expected INV-2025-000042 to parse")
	}
	if parsed.Prefix != "INV" || parsed.Year != 2025 || parsed.Sequence != 42 {
		t.Fatalf("unexpected parse result: %+v", parsed)
	}

	for _, bad := range []string{"", "INV-25-000042", "inv-2025-000042", "INV2025000042", "INV-2025-"} {
		if _, ok := ParseNumber(bad); ok {
			t.Fatalf("expected %q to fail parsing", bad)
		}
	}
}
