package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkbind/vkbgen/pkg/testutil"
	"github.com/vkbind/vkbgen/pkg/types"
)

func extensionNames(reg *types.Registry) []string {
	names := make([]string, 0, len(reg.Extensions))
	for i := range reg.Extensions {
		names = append(names, reg.Extensions[i].Name)
	}
	return names
}

func TestReorderPromotedExtensionFollowsTarget(t *testing.T) {
	reg := testutil.NewMiniRegistry(
		testutil.WithExtension(types.Extension{Name: "VK_EXT_thing", Number: "10", PromotedTo: "VK_KHR_thing"}),
		testutil.WithExtension(types.Extension{Name: "VK_EXT_other", Number: "11"}),
		testutil.WithExtension(types.Extension{Name: "VK_KHR_thing", Number: "12"}),
	)

	ReorderExtensions(reg)

	names := extensionNames(reg)
	require.Equal(t, []string{"VK_EXT_other", "VK_KHR_thing", "VK_EXT_thing"}, names)
}

func TestReorderPromotedToFeatureIsLeftAlone(t *testing.T) {
	reg := testutil.NewMiniRegistry(
		testutil.WithExtension(types.Extension{Name: "VK_KHR_promoted_to_core", Number: "20", PromotedTo: "VK_VERSION_1_1"}),
		testutil.WithExtension(types.Extension{Name: "VK_KHR_other", Number: "21"}),
	)

	ReorderExtensions(reg)
	assert.Equal(t, []string{"VK_KHR_promoted_to_core", "VK_KHR_other"}, extensionNames(reg))
}

func TestReorderIsIdempotent(t *testing.T) {
	reg := testutil.NewMiniRegistry(
		testutil.WithExtension(types.Extension{Name: "VK_EXT_thing", Number: "10", PromotedTo: "VK_KHR_thing"}),
		testutil.WithExtension(types.Extension{Name: "VK_KHR_thing", Number: "12"}),
	)

	ReorderExtensions(reg)
	first := extensionNames(reg)
	ReorderExtensions(reg)
	assert.Equal(t, first, extensionNames(reg))
}
