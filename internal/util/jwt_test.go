package util

import (
	"testing"
	"time"

	"eduquiz_backend/internal/model"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		Name:  "测试用户",
		Email: "test@example.com",
		Role:  model.Teacher,
	}
	user.ID = 42
	secret := "test-secret-at-least-32-characters-long"

	token, err := GenerateJWT(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}

	claims, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("ParseJWT() error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != model.Teacher {
		t.Errorf("Role = %q, want teacher", claims.Role)
	}
	if claims.Email != "test@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	user := &model.User{Email: "a@b.c", Role: model.Student}
	user.ID = 1

	token, err := GenerateJWT(user, "correct-secret-32-characters-long!!", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}

	if _, err := ParseJWT(token, "wrong-secret"); err == nil {
		t.Error("ParseJWT should reject token signed with a different secret")
	}
}

func TestParseJWTExpired(t *testing.T) {
	user := &model.User{Email: "a@b.c", Role: model.Student}
	user.ID = 1
	secret := "correct-secret-32-characters-long!!"

	token, err := GenerateJWT(user, secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}

	if _, err := ParseJWT(token, secret); err == nil {
		t.Error("ParseJWT should reject expired token")
	}
}

func TestShortCode(t *testing.T) {
	code := ShortCode("d94f3f01-9a8c-4e6b-b0a3-1f2e3d4c5b6a", 8)
	if len(code) != 8 {
		t.Errorf("len = %d, want 8", len(code))
	}
	if code != ShortCode("d94f3f01-9a8c-4e6b-b0a3-1f2e3d4c5b6a", 8) {
		t.Error("same input should produce same code")
	}
}
