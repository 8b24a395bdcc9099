package auth

import "testing"

func TestValidateCSRFToken(t *testing.T) {
	t.Parallel()

	token := GenerateCSRFToken()

	tests := []struct {
		name   string
		cookie string
		header string
		want   bool
	}{
		{"matching pair", token, token, true},
		{"mismatch", token, GenerateCSRFToken(), false},
		{"empty cookie", "", token, false},
		{"empty header", token, "", false},
		{"both empty", "", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidateCSRFToken(tt.cookie, tt.header); got != tt.want {
				t.Fatalf("ValidateCSRFToken(%q, %q) = %v, want %v", tt.cookie, tt.header, got, tt.want)
			}
		})
	}
}

func TestGenerateCSRFToken_Unique(t *testing.T) {
	t.Parallel()

	if GenerateCSRFToken() == GenerateCSRFToken() {
		t.Fatal("expected distinct tokens")
	}
}
