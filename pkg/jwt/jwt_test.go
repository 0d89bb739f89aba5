package jwt

import (
	"testing"
	"time"

	"github.com/cliffordobure/daycare-sub000/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:        "test-secret-key-for-unit-testing-2026",
		JWTRefreshSecret: "test-refresh-secret-for-unit-testing",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-1", "admin", "center-1")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	claims, err := m.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken 失败: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("期望 UserID=user-1，实际=%s", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("期望 Role=admin，实际=%s", claims.Role)
	}
	if claims.CenterID != "center-1" {
		t.Errorf("期望 CenterID=center-1，实际=%s", claims.CenterID)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("期望 TokenType=access，实际=%s", claims.TokenType)
	}
	if claims.IssuedAt == nil {
		t.Error("IssuedAt 不应为空")
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}
}

func TestGenerateRefreshToken_TTL(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateRefreshToken("user-1", "parent", "center-1")
	if err != nil {
		t.Fatalf("GenerateRefreshToken 失败: %v", err)
	}

	claims, err := m.ParseRefreshToken(token)
	if err != nil {
		t.Fatalf("ParseRefreshToken 失败: %v", err)
	}

	// 检查过期时间约为 7 天
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 6*24*time.Hour || ttl > 8*24*time.Hour {
		t.Errorf("RefreshToken TTL 期望约7天，实际=%v", ttl)
	}
}

func TestParse_TokenTypesAreNotInterchangeable(t *testing.T) {
	m := newTestManager()

	access, _ := m.GenerateAccessToken("user-1", "admin", "")
	refresh, _ := m.GenerateRefreshToken("user-1", "admin", "")

	if _, err := m.ParseRefreshToken(access); err == nil {
		t.Error("Access Token 不应作为 Refresh Token 通过验证")
	}
	if _, err := m.ParseAccessToken(refresh); err == nil {
		t.Error("Refresh Token 不应作为 Access Token 通过验证")
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	m := newTestManager()

	_, err := m.ParseAccessToken("invalid.token.string")
	if err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.AuthConfig{
		JWTSecret:       "different-secret-key-0000",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})

	token, _ := m1.GenerateAccessToken("user-1", "admin", "center-1")
	if _, err := m2.ParseAccessToken(token); err == nil {
		t.Error("不同密钥签名的 token 不应通过验证")
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	m := newTestManager()
	// 签发时间回拨 2 小时，15 分钟有效期已过
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _ := m.GenerateAccessToken("user-1", "admin", "center-1")
	m.now = time.Now

	_, err := m.ParseAccessToken(token)
	if err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}
