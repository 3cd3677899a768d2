package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormLogger "gorm.io/gorm/logger"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "42")
	t.Setenv("X_BAD_INT", "forty")
	t.Setenv("X_BOOL", "true")
	t.Setenv("X_LIST", " a, ,b ,c")
	t.Setenv("X_EMPTY", "  ")

	assert.Equal(t, 42, GetEnvInt("X_INT", 1))
	assert.Equal(t, 1, GetEnvInt("X_BAD_INT", 1))
	assert.True(t, GetEnvBool("X_BOOL", false))
	assert.True(t, GetEnvBool("X_MISSING_BOOL", true))
	assert.Equal(t, []string{"a", "b", "c"}, GetEnvList("X_LIST"))
	assert.Nil(t, GetEnvList("X_MISSING_LIST"))
	assert.Equal(t, "fallback", GetEnv("X_EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("X_MISSING", "fallback"))
}

func TestParseSecurityConfig(t *testing.T) {
	cfg, err := ParseSecurityConfig([]byte("security:\n  allowed_ips:\n    - 10.0.0.1\n    - \" 10.0.0.2 \"\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.AllowedIPs())

	cfg, err = ParseSecurityConfig([]byte("security:\n  allowed_ips: 127.0.0.1, 192.168.1.5\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1", "192.168.1.5"}, cfg.AllowedIPs())

	cfg, err = ParseSecurityConfig([]byte("other: true\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.AllowedIPs())

	_, err = ParseSecurityConfig([]byte("security:\n  allowed_ips:\n    a: b\n"))
	assert.Error(t, err)
}

func TestLoadSecurityConfig_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("security:\n  allowed_ips: [1.1.1.1]\n"), 0o600))
	t.Setenv("SECURITY_CONFIG", path)
	t.Setenv("STAFF_ALLOWED_IPS", "")

	cfg, err := LoadSecurityConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"1.1.1.1"}, cfg.AllowedIPs())

	t.Setenv("STAFF_ALLOWED_IPS", "2.2.2.2,3.3.3.3")
	cfg, err = LoadSecurityConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"2.2.2.2", "3.3.3.3"}, cfg.AllowedIPs())

	t.Setenv("SECURITY_CONFIG", filepath.Join(dir, "missing.yaml"))
	t.Setenv("STAFF_ALLOWED_IPS", "")
	cfg, err = LoadSecurityConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.AllowedIPs())
}

func TestNewGormLogger_LevelFollowsLogrus(t *testing.T) {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	gl := NewGormLogger(logrus.NewEntry(l)).(*GormLogger)
	assert.Equal(t, gormLogger.Info, gl.LogLevel)

	l.SetLevel(logrus.InfoLevel)
	gl = NewGormLogger(logrus.NewEntry(l)).(*GormLogger)
	assert.Equal(t, gormLogger.Warn, gl.LogLevel)

	silent := gl.LogMode(gormLogger.Silent).(*GormLogger)
	assert.Equal(t, gormLogger.Silent, silent.LogLevel)
	assert.Equal(t, gormLogger.Warn, gl.LogLevel)
}
