package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/flywheel-apps/roi-import/internal/conf"
)

func testSettings() *conf.Settings {
	settings := &conf.Settings{}
	settings.Main.Name = "ROI-Import"
	settings.Flywheel.Timeout = 30 * time.Second
	settings.Import.Delimiter = ","
	settings.Import.FirstRow = 1
	settings.Import.Workers = 4
	return settings
}

func TestSaveWritesEffectiveSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cmd := Command(testSettings())
	cmd.SetArgs([]string{"save", path})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var restored conf.Settings
	require.NoError(t, yaml.Unmarshal(data, &restored))
	assert.Equal(t, "ROI-Import", restored.Main.Name)
	assert.Equal(t, 4, restored.Import.Workers)
	assert.Equal(t, 30*time.Second, restored.Flywheel.Timeout)
}

func TestSaveReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("main:\n  name: stale\n"), 0o644))

	settings := testSettings()
	settings.Import.Workers = 2

	cmd := Command(settings)
	cmd.SetArgs([]string{"save", path})
	require.NoError(t, cmd.Execute())

	var restored conf.Settings
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &restored))
	assert.Equal(t, "ROI-Import", restored.Main.Name)
	assert.Equal(t, 2, restored.Import.Workers)
}
