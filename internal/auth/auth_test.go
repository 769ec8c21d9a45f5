package auth

import (
	"strings"
	"testing"
	"time"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash = %q; expected argon2id PHC format", hash)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil || !ok {
		t.Errorf("VerifyPassword(correct) = (%v, %v); expected (true, nil)", ok, err)
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword(wrong) errored: %v", err)
	}
	if ok {
		t.Error("VerifyPassword accepted the wrong password")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("password123")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashPassword("password123")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical; salts are not random")
	}
}

func TestVerifyPassword_Malformed(t *testing.T) {
	if _, err := VerifyPassword("x", "not-a-hash"); err == nil {
		t.Error("expected an error for a malformed hash")
	}
	if _, err := VerifyPassword("x", "$bcrypt$v=19$m=1,t=1,p=1$aa$bb"); err == nil {
		t.Error("expected an error for a non-argon2id hash")
	}
}

func TestTokenService_IssueValidate(t *testing.T) {
	svc, err := NewTokenService("tilt", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}

	token, err := svc.Issue()
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := svc.Validate(token); err != nil {
		t.Errorf("Validate rejected a freshly issued token: %v", err)
	}
}

func TestTokenService_RejectsForeignToken(t *testing.T) {
	issuer, _ := NewTokenService("tilt", time.Hour)
	other, _ := NewTokenService("tilt", time.Hour)

	token, err := other.Issue()
	if err != nil {
		t.Fatal(err)
	}
	if err := issuer.Validate(token); err == nil {
		t.Error("Validate accepted a token signed with a different key")
	}

	if err := issuer.Validate("not.a.token"); err == nil {
		t.Error("Validate accepted garbage")
	}
}

func TestTokenService_Expiry(t *testing.T) {
	svc, err := NewTokenService("tilt", time.Nanosecond)
	if err != nil {
		t.Fatal(err)
	}

	token, err := svc.Issue()
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(10 * time.Millisecond)
	if err := svc.Validate(token); err == nil {
		t.Error("Validate accepted an expired token")
	}
}
