package auth

import (
	"errors"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "Sunny1day", nil},
		{"too short", "Ab1", ErrPasswordTooShort},
		{"no lowercase", "SUNNY1DAY", ErrPasswordNoLower},
		{"no uppercase", "sunny1day", ErrPasswordNoUpper},
		{"no digit", "SunnyDays", ErrPasswordNoDigit},
		{"exactly eight", "Abcdef12", nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePassword(tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Sunny1day")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "Sunny1day" {
		t.Fatal("hash equals plaintext")
	}

	if err := VerifyPassword(hash, "Sunny1day"); err != nil {
		t.Fatalf("VerifyPassword error: %v", err)
	}
	if err := VerifyPassword(hash, "Wrong1password"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestHashPassword_RejectsWeak(t *testing.T) {
	t.Parallel()

	if _, err := HashPassword("weak"); err == nil {
		t.Fatal("expected error for weak password")
	}
}

func TestVerifyPassword_EmptyHash(t *testing.T) {
	t.Parallel()

	if err := VerifyPassword("", "Sunny1day"); err == nil {
		t.Fatal("expected error for empty hash")
	}
}
