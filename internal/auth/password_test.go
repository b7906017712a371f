package auth

import (
	"strings"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter2") {
		t.Error("wrong password accepted")
	}
	if CheckPassword("", "hunter22") {
		t.Error("empty hash accepted a password")
	}
}

func TestGenerateRecoveryCode(t *testing.T) {
	code, err := GenerateRecoveryCode()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	parts := strings.Split(code, "-")
	if len(parts) != 3 {
		t.Fatalf("code %q does not have 3 groups", code)
	}
	for _, part := range parts {
		if len(part) != 4 {
			t.Errorf("group %q is not 4 characters", part)
		}
		for _, c := range part {
			if !strings.ContainsRune(recoveryCharset, c) {
				t.Errorf("code %q contains %q, which is outside the charset", code, c)
			}
		}
	}
	if strings.ContainsAny(code, "O0") {
		t.Errorf("code %q contains ambiguous characters", code)
	}

	other, err := GenerateRecoveryCode()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if code == other {
		t.Error("two generated codes are identical")
	}
}

func TestRecoveryCodeRoundTrip(t *testing.T) {
	code, err := GenerateRecoveryCode()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	hash, err := HashRecoveryCode(code)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !CheckRecoveryCode(hash, code) {
		t.Error("exact code rejected")
	}
	// Codes should compare equal however the user typed them.
	sloppy := " " + strings.ToLower(strings.ReplaceAll(code, "-", " ")) + " "
	if !CheckRecoveryCode(hash, sloppy) {
		t.Errorf("normalized form of %q rejected", code)
	}
	if CheckRecoveryCode(hash, "AAAA-BBBB-CCCC") {
		t.Error("wrong code accepted")
	}
}
