package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/a11enyan97/enterprise-approval-sys/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults 测试默认配置
func TestLoad_Defaults(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "approval", cfg.Database.DBName)
	assert.Equal(t, "uploads", cfg.OSS.KeyPrefix)
	assert.Equal(t, 600, cfg.OSS.PresignExpiry)
	assert.Equal(t, 60, cfg.OSS.UploadTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, config.IsProduction(cfg))
}

// TestLoad_FromFile 测试从配置文件加载
func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
env: production
server:
  port: 9090
database:
  host: db.internal
  dbname: approval_prod
oss:
  region: cn-north-1
  bucket: approval-files
  presign_expiry: 300
log:
  level: error
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.True(t, config.IsProduction(cfg))
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "approval_prod", cfg.Database.DBName)
	assert.Equal(t, "cn-north-1", cfg.OSS.Region)
	assert.Equal(t, "approval-files", cfg.OSS.Bucket)
	assert.Equal(t, 300, cfg.OSS.PresignExpiry)
	assert.Equal(t, "error", cfg.Log.Level)
	// 未覆盖的字段回落到默认值
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

// TestLoad_EnvOverride 测试环境变量覆盖
func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "17080")
	t.Setenv("APP_DATABASE_HOST", "env-db")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 17080, cfg.Server.Port)
	assert.Equal(t, "env-db", cfg.Database.Host)
}

// TestOSSConfig_Validate 测试对象存储配置校验
func TestOSSConfig_Validate(t *testing.T) {
	cfg := config.OSSConfig{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oss.region")
	assert.Contains(t, err.Error(), "oss.bucket")

	cfg = config.OSSConfig{
		Region:          "cn-north-1",
		AccessKeyID:     "ak",
		AccessKeySecret: "sk",
		Bucket:          "b",
	}
	assert.NoError(t, cfg.Validate())
}
