package handler

import (
	"strings"
	"testing"
)

type passwordPayload struct {
	Password string `json:"password" validate:"required,password"`
}

func TestValidator_PasswordRule(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Str0ng&pw", false},
		{"too short", "S1&a", true},
		{"no uppercase", "weak1&pass", true},
		{"no lowercase", "WEAK1&PASS", true},
		{"no digit", "Weakest&pass", true},
		{"no special", "Weak1pass", true},
		{"empty", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(&passwordPayload{Password: tc.password})
			if tc.wantErr && err == nil {
				t.Fatalf("expected %q to be rejected", tc.password)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected %q to pass, got %v", tc.password, err)
			}
		})
	}
}

func TestValidator_RequiredEmailMessage(t *testing.T) {
	v := NewValidator()

	type payload struct {
		Email string `json:"email" validate:"required,email"`
	}

	err := v.Validate(&payload{})
	if err == nil {
		t.Fatal("expected error for missing email")
	}
	if !strings.Contains(err.Error(), "email is required") {
		t.Fatalf("unexpected message: %v", err)
	}

	err = v.Validate(&payload{Email: "not-an-email"})
	if err == nil || !strings.Contains(err.Error(), "valid email") {
		t.Fatalf("unexpected message: %v", err)
	}
}
