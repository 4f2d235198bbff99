package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
    t.Helper()
    path := filepath.Join(t.TempDir(), "config.yaml")
    require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
    return path
}

func TestLoadAppConfigMissingFileUsesDefaults(t *testing.T) {
    cfg, err := LoadAppConfig(filepath.Join(t.TempDir(), "absent.yaml"))
    require.NoError(t, err)

    assert.Equal(t, EngineTesseract, cfg.Engine.Kind)
    assert.True(t, cfg.Session.AutoCopy)
    assert.Equal(t, 3*time.Second, cfg.Session.NotificationTTL)
    assert.Equal(t, 2*time.Second, cfg.Session.CopiedTTL)
    assert.Equal(t, []string{"eng"}, cfg.Engine.Languages)
}

func TestLoadAppConfigFromYAML(t *testing.T) {
    path := writeConfig(t, `
server:
  addr: ":9090"
engine:
  kind: textract
  languages: [eng, deu]
session:
  autoCopy: false
  notificationTTL: 5s
preview:
  store: minio
`)
    cfg, err := LoadAppConfig(path)
    require.NoError(t, err)

    assert.Equal(t, ":9090", cfg.Server.Addr)
    assert.Equal(t, EngineTextract, cfg.Engine.Kind)
    assert.Equal(t, []string{"eng", "deu"}, cfg.Engine.Languages)
    assert.False(t, cfg.Session.AutoCopy)
    assert.Equal(t, 5*time.Second, cfg.Session.NotificationTTL)
    // untouched keys keep defaults
    assert.Equal(t, 2*time.Second, cfg.Session.CopiedTTL)
    assert.Equal(t, StoreMinio, cfg.Preview.Store)
}

func TestLoadAppConfigEnvOverrides(t *testing.T) {
    t.Setenv("OCR_ENGINE", "queue")
    t.Setenv("OCR_AUTO_COPY", "false")
    t.Setenv("OCR_LANGUAGES", "eng+fra")
    t.Setenv("OCR_NOTIFICATION_TTL", "1500ms")

    cfg, err := LoadAppConfig(filepath.Join(t.TempDir(), "absent.yaml"))
    require.NoError(t, err)

    assert.Equal(t, EngineQueue, cfg.Engine.Kind)
    assert.False(t, cfg.Session.AutoCopy)
    assert.Equal(t, []string{"eng", "fra"}, cfg.Engine.Languages)
    assert.Equal(t, 1500*time.Millisecond, cfg.Session.NotificationTTL)
}

func TestLoadAppConfigRejectsUnknownEngine(t *testing.T) {
    path := writeConfig(t, "engine:\n  kind: paddle\n")
    _, err := LoadAppConfig(path)
    assert.ErrorContains(t, err, "unsupported engine kind")
}

func TestLoadAppConfigRejectsBadYAML(t *testing.T) {
    path := writeConfig(t, "server: [unclosed")
    _, err := LoadAppConfig(path)
    assert.Error(t, err)
}
