package storage

import "testing"

// TestValuesClause verifies placeholder numbering for multi-row inserts.
func TestValuesClause(t *testing.T) {
	tests := []struct {
		rows, cols int
		want       string
	}{
		{1, 1, "($1)"},
		{1, 3, "($1,$2,$3)"},
		{2, 2, "($1,$2),($3,$4)"},
		{3, 1, "($1),($2),($3)"},
	}
	for _, tt := range tests {
		if got := valuesClause(tt.rows, tt.cols); got != tt.want {
			t.Errorf("valuesClause(%d, %d) = %q, want %q", tt.rows, tt.cols, got, tt.want)
		}
	}
}

// TestTruncInterval verifies bucket names map to date_trunc fields.
func TestTruncInterval(t *testing.T) {
	tests := map[string]string{
		"1 week":  "week",
		"week":    "week",
		"1 month": "month",
		"":        "month",
		"year":    "month",
	}
	for in, want := range tests {
		if got := truncInterval(in); got != want {
			t.Errorf("truncInterval(%q) = %q, want %q", in, got, want)
		}
	}
}
