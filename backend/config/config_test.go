package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("ORGADMIN_AUTH_JWT_SECRET", "test-secret-key-0123456789")
	t.Setenv("ORGADMIN_SERVER_PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望 Port=9090（环境变量覆盖），实际=%d", cfg.Server.Port)
	}
	if cfg.Database.Name != "org_admin" {
		t.Errorf("期望默认 db.name=org_admin，实际=%s", cfg.Database.Name)
	}
	if cfg.Cache.DeptTreeTTL != 10*time.Minute {
		t.Errorf("期望默认 DeptTreeTTL=10m，实际=%v", cfg.Cache.DeptTreeTTL)
	}
	if cfg.Auth.AccessTokenTTL != 2*time.Hour {
		t.Errorf("期望默认 AccessTokenTTL=2h，实际=%v", cfg.Auth.AccessTokenTTL)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 8181
auth:
  jwt_secret: "file-secret-key-0123456789"
log:
  level: debug
  format: console
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("期望 Port=8181，实际=%d", cfg.Server.Port)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("期望 Format=console，实际=%s", cfg.Log.Format)
	}
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 8080},
		Auth:   AuthConfig{JWTSecret: "short"},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("jwt_secret 过短时应返回错误")
	}
}

func TestValidate_RateLimit(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: 8080},
		Auth:      AuthConfig{JWTSecret: "test-secret-key-0123456789"},
		RateLimit: RateLimitConfig{Enabled: true},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("启用限流但未配置 limit/window 时应返回错误")
	}
}
