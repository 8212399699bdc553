package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkbind/vkbgen/pkg/types"
)

func TestDownloadExtractorFetchesAndCaches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<registry/>"))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "vk.xml")
	e := &DownloadExtractor{Client: server.Client()}

	data, err := e.Extract(context.Background(), Options{URL: server.URL, Path: path})
	require.NoError(t, err)
	assert.Equal(t, "<registry/>", string(data))

	cached, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<registry/>", string(cached))
}

func TestDownloadExtractorRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	e := &DownloadExtractor{Client: server.Client()}
	_, err := e.Extract(context.Background(), Options{URL: server.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestDownloadExtractorValidate(t *testing.T) {
	e := &DownloadExtractor{}
	err := e.Validate(context.Background(), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidArgs)

	require.NoError(t, e.Validate(context.Background(), Options{URL: "https://example.com/vk.xml"}))
}

func TestDefaultRegistryHasBothSources(t *testing.T) {
	r := DefaultRegistry()

	_, ok := r.Get(types.SourceFile)
	assert.True(t, ok)
	_, ok = r.Get(types.SourceDownload)
	assert.True(t, ok)
}
