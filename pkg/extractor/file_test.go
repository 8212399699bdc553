package extractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkbind/vkbgen/pkg/types"
)

func TestReadTextFileStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.xml")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("<registry/>")...)
	require.NoError(t, os.WriteFile(path, content, 0644))

	data, err := ReadTextFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<registry/>", string(data))
}

func TestReadTextFilePlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.xml")
	require.NoError(t, os.WriteFile(path, []byte("<registry/>"), 0644))

	data, err := ReadTextFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<registry/>", string(data))
}

func TestReadTextFileMissing(t *testing.T) {
	_, err := ReadTextFile(filepath.Join(t.TempDir(), "absent.xml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrFailedToOpenFile)
}

func TestFileExtractorValidate(t *testing.T) {
	e := &FileExtractor{}
	ctx := context.Background()

	err := e.Validate(ctx, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidArgs)

	dir := t.TempDir()
	err = e.Validate(ctx, Options{Path: dir})
	require.Error(t, err)

	path := filepath.Join(dir, "vk.xml")
	require.NoError(t, os.WriteFile(path, []byte("<registry/>"), 0644))
	require.NoError(t, e.Validate(ctx, Options{Path: path}))

	data, err := e.Extract(ctx, Options{Path: path})
	require.NoError(t, err)
	assert.Equal(t, "<registry/>", string(data))
}

func TestWriteFileAtomicReplacesTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.h")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	require.NoError(t, WriteFileAtomic(path, []byte("new")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	// No temporary siblings left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
