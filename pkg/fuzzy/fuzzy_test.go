package fuzzy

import "testing"

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"Report", "report", 0},
		{"café", "cafe", 0},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  Ship   the Release-Notes! "); got != "ship the release notes" {
		t.Errorf("unexpected normalization %q", got)
	}
}

func TestScore(t *testing.T) {
	t.Run("no match scores zero", func(t *testing.T) {
		if s := Score("invoice", "Buy groceries", "milk and eggs"); s != 0 {
			t.Errorf("expected 0, got %v", s)
		}
	})

	t.Run("title beats content", func(t *testing.T) {
		inTitle := Score("budget", "Quarterly budget", "")
		inContent := Score("budget", "Quarterly review", "check the budget")
		if inTitle <= inContent {
			t.Errorf("title hit %v should outrank content hit %v", inTitle, inContent)
		}
	})

	t.Run("tolerates typos on longer terms", func(t *testing.T) {
		if s := Score("deploymnet", "Production deployment", ""); s == 0 {
			t.Error("expected typo to match")
		}
	})

	t.Run("short terms need exact or prefix hits", func(t *testing.T) {
		if s := Score("cat", "Feed the cow", ""); s != 0 {
			t.Errorf("expected no match for short term, got %v", s)
		}
		if s := Score("cat", "Categories cleanup", ""); s == 0 {
			t.Error("expected prefix match")
		}
	})

	t.Run("every term must match", func(t *testing.T) {
		if s := Score("write tests", "Write docs", ""); s != 0 {
			t.Errorf("expected 0 when a term is missing, got %v", s)
		}
	})
}

func TestMatch(t *testing.T) {
	if !Match("groc", "Buy groceries") {
		t.Error("prefix should match")
	}
	if Match("", "anything") {
		t.Error("empty query never matches")
	}
}
