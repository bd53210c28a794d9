package authutil

import (
	"strconv"
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name string
		pw   string
		want error
	}{
		{"valid", "secure-123", nil},
		{"at minimum", "abcdefg1", nil},
		{"at maximum", strings.Repeat("a", MaxPasswordLength), nil},
		{"multibyte counts characters", "비밀번호비밀번호", nil},
		{"empty", "", ErrPasswordTooShort},
		{"one short", "abcdef1", ErrPasswordTooShort},
		{"too long", strings.Repeat("a", MaxPasswordLength+1), ErrPasswordTooLong},
		{"common", "password", ErrPasswordCommon},
		{"common upper", "PASSWORD", ErrPasswordCommon},
		{"common mixed", "IloveYou", ErrPasswordCommon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePassword(tt.pw); got != tt.want {
				t.Errorf("ValidatePassword(%q): got %v, want %v", tt.pw, got, tt.want)
			}
		})
	}
}

func TestHashPassword_DifferentHashesForSamePassword(t *testing.T) {
	h1, err := HashPassword("SecurePassword123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("SecurePassword123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Error("expected different hashes for same password (random salt)")
	}
	if !strings.HasPrefix(h1, "$2") {
		t.Errorf("hash: got %q, want bcrypt prefix", h1)
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("SecurePassword123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	tests := []struct {
		name string
		pw   string
		hash string
		want bool
	}{
		{"correct", "SecurePassword123", hash, true},
		{"wrong", "WrongPassword456", hash, false},
		{"empty password", "", hash, false},
		{"invalid hash", "SecurePassword123", "not-a-valid-hash", false},
		{"empty hash", "SecurePassword123", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.pw, tt.hash); got != tt.want {
				t.Errorf("CheckPassword: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPasswordRules(t *testing.T) {
	rules := PasswordRules()
	if !strings.Contains(rules, strconv.Itoa(MinPasswordLength)) {
		t.Errorf("PasswordRules should mention the minimum length: %q", rules)
	}
}

func TestNewEmailToken(t *testing.T) {
	a, b := NewEmailToken(), NewEmailToken()
	if a == "" || a == b {
		t.Errorf("tokens: got %q and %q, want distinct non-empty", a, b)
	}
}
