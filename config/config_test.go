package config

import (
	"testing"
	"time"
)

func TestLoad_DefaultsWithEnvSecret(t *testing.T) {
	t.Setenv("DAYCARE_AUTH_JWT_SECRET", "test-secret-key-for-unit-testing")
	t.Setenv("DAYCARE_SERVER_PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("期望 port=9090，实际=%d", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenTTL != time.Hour {
		t.Errorf("期望 access_token_ttl=1h，实际=%v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.JWTRefreshSecret == "" || cfg.Auth.JWTRefreshSecret == cfg.Auth.JWTSecret {
		t.Error("refresh secret 应与 access secret 区分")
	}
	if cfg.Realtime.HeartbeatTimeout != 90*time.Second {
		t.Errorf("期望 heartbeat_timeout=90s，实际=%v", cfg.Realtime.HeartbeatTimeout)
	}
	if cfg.Mail.Configured() {
		t.Error("未配置 API Key 时 Mail.Configured 应为 false")
	}
	if cfg.SMS.Configured() {
		t.Error("未配置 Twilio 时 SMS.Configured 应为 false")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "缺少 JWT 密钥",
			cfg:     Config{Server: ServerConfig{Port: 8080}, Auth: AuthConfig{AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour}},
			wantErr: true,
		},
		{
			name:    "JWT 密钥过短",
			cfg:     Config{Server: ServerConfig{Port: 8080}, Auth: AuthConfig{JWTSecret: "short", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour}},
			wantErr: true,
		},
		{
			name:    "端口越界",
			cfg:     Config{Server: ServerConfig{Port: 70000}, Auth: AuthConfig{JWTSecret: "0123456789abcdef", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour}},
			wantErr: true,
		},
		{
			name:    "合法配置",
			cfg:     Config{Server: ServerConfig{Port: 8080}, Auth: AuthConfig{JWTSecret: "0123456789abcdef", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour}},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}
