package athletes

import (
	"errors"
	"testing"

	"github.com/tsampaio/courtly/internal/booking"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		region   string
		expected string
	}{
		{"BR mobile with punctuation", "(11) 91234-5678", "BR", "+5511912345678"},
		{"BR mobile plain", "11912345678", "BR", "+5511912345678"},
		{"already E.164", "+5511912345678", "BR", "+5511912345678"},
		{"E.164 with spaces", "+55 11 91234 5678", "BR", "+5511912345678"},
		{"US number under US region", "(202) 555-0175", "US", "+12025550175"},
		{"foreign E.164 ignores region", "+12025550175", "BR", "+12025550175"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input, tt.region)
			if err != nil {
				t.Fatalf("NormalizePhone(%q): %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizePhoneInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"letters", "not-a-phone"},
		{"too short", "123"},
		{"email", "user@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizePhone(tt.input, "BR")
			var verr booking.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("NormalizePhone(%q): got %v, want ValidationError", tt.input, err)
			}
			if IsPhoneNumber(tt.input, "BR") {
				t.Errorf("IsPhoneNumber(%q) = true, want false", tt.input)
			}
		})
	}
}

func TestIsPhoneNumber(t *testing.T) {
	if !IsPhoneNumber("+5511912345678", "BR") {
		t.Error("expected valid E.164 number to pass")
	}
	if IsPhoneNumber("123", "BR") {
		t.Error("expected short number to fail")
	}
}
