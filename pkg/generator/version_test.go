package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkbind/vkbgen/pkg/testutil"
	"github.com/vkbind/vkbgen/pkg/types"
)

func TestVulkanVersion(t *testing.T) {
	reg := testutil.NewMiniRegistry(
		testutil.WithFeature(types.Feature{Name: "VK_VERSION_1_0", Number: "1.0"}),
		testutil.WithFeature(types.Feature{Name: "VK_VERSION_1_3", Number: "1.3"}),
	)

	version, err := VulkanVersion(reg)
	require.NoError(t, err)
	assert.Equal(t, "1.3.250", version)
}

func TestVulkanVersionRequiresFeatures(t *testing.T) {
	reg := testutil.NewMiniRegistry()
	_, err := VulkanVersion(reg)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidArgs)
}

func TestRevision(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		version  string
		want     int
	}{
		{
			name:     "same version increments",
			previous: "/*\nvkbind - v1.3.250.7 - 2026-01-01\n*/",
			version:  "1.3.250",
			want:     8,
		},
		{
			name:     "changed version resets",
			previous: "/*\nvkbind - v1.3.250.7 - 2026-01-01\n*/",
			version:  "1.3.251",
			want:     0,
		},
		{
			name:     "missing banner resets",
			previous: "/* some other file */",
			version:  "1.3.250",
			want:     0,
		},
		{
			name:     "empty previous output",
			previous: "",
			version:  "1.3.250",
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Revision([]byte(tt.previous), tt.version))
		})
	}
}

func TestRevisionFromFileMissing(t *testing.T) {
	assert.Equal(t, 0, RevisionFromFile("does-not-exist.h", "1.3.250"))
}

func TestDateStamp(t *testing.T) {
	ts := time.Date(2026, time.August, 1, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "2026-08-01", DateStamp(ts))
}
