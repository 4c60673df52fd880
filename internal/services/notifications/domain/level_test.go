package domain

import "testing"

func TestNormalizeLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]Level{
		"SUCCESS":  LevelSuccess,
		"info":     LevelInfo,
		" alert ":  LevelAlert,
		"WARNING":  LevelAlert,
		"warn":     LevelAlert,
		"Error":    LevelAlert,
		"CRITICAL": LevelCritical,
		"":         LevelInfo,
		"DEBUG":    LevelInfo,
	}
	for raw, want := range tests {
		if got := NormalizeLevel(raw); got != want {
			t.Errorf("NormalizeLevel(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	t.Parallel()

	if got := NormalizeCategory(" food "); got != "FOOD" {
		t.Fatalf("category = %q, want FOOD", got)
	}
	if got := NormalizeCategory("  "); got != DefaultCategory {
		t.Fatalf("category = %q, want %q", got, DefaultCategory)
	}
}
