package app

import (
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"
	tok, err := MakeToken("user-1", RoleDoctor, secret)
	if err != nil {
		t.Fatalf("make token: %v", err)
	}
	claims, err := ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("uid = %q", claims.UserID)
	}
	if claims.Role != RoleDoctor {
		t.Errorf("role = %q", claims.Role)
	}
}

func TestTokenRejection(t *testing.T) {
	tok, err := MakeToken("user-1", RolePatient, "secret-a")
	if err != nil {
		t.Fatalf("make token: %v", err)
	}
	if _, err := ParseToken(tok, "secret-b"); err == nil {
		t.Error("token with wrong secret accepted")
	}
	if _, err := ParseToken("not.a.token", "secret-a"); err == nil {
		t.Error("garbage token accepted")
	}
}
