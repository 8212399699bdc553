package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vkbgen.yaml")
	content := `registry: xml/vk.xml
template: source/vkbind_template.h
output: vkbind.h
offline: true
strict: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "xml/vk.xml", f.Registry)
	assert.Equal(t, "source/vkbind_template.h", f.Template)
	assert.Equal(t, "vkbind.h", f.Output)
	assert.True(t, f.Offline)
	assert.True(t, f.Strict)
	assert.False(t, f.Download)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("registry: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}
