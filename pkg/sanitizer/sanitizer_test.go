package sanitizer

import "testing"

func TestSanitizeCustomerName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Ada Lovelace  ",
			want:  "Ada Lovelace",
		},
		{
			name:  "multiple spaces between words",
			input: "Ada    Lovelace",
			want:  "Ada Lovelace",
		},
		{
			name:  "tabs and newlines",
			input: "Ada\t\nLovelace",
			want:  "Ada Lovelace",
		},
		{
			name:  "case preserved",
			input: "mcDonald",
			want:  "mcDonald",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "unicode letters",
			input: " José  Ñúñez ",
			want:  "José Ñúñez",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeCustomerName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeCustomerName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := SanitizeCustomerName(got); again != got {
				t.Errorf("SanitizeCustomerName is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitizeCategory(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Deluxe", "deluxe"},
		{"  Deluxe   Suite ", "deluxe suite"},
		{"SINGLE", "single"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeCategory(tt.input); got != tt.want {
			t.Errorf("SanitizeCategory(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeRoomNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"101", "101"},
		{"  12 b ", "12B"},
		{"a-3", "A-3"},
		{"\t", ""},
	}

	for _, tt := range tests {
		if got := SanitizeRoomNumber(tt.input); got != tt.want {
			t.Errorf("SanitizeRoomNumber(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizePrice(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{120, 120},
		{99.999, 100},
		{10.004, 10},
		{-5, -5},
	}

	for _, tt := range tests {
		if got := SanitizePrice(tt.input); got != tt.want {
			t.Errorf("SanitizePrice(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPipeline_Apply(t *testing.T) {
	p := Pipeline{TrimAndNormalize, func(s string) string { return s + "!" }}
	if got := p.Apply("  hi   there "); got != "hi there!" {
		t.Errorf("Pipeline.Apply() = %q", got)
	}
}
