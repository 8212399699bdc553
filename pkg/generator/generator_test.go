package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkbind/vkbgen/pkg/testutil"
)

const tinyRegistryXML = `<registry>
    <types>
        <type name="uint32_t"/>
        <type category="define">#define <name>VK_HEADER_VERSION</name> 250</type>
        <type category="struct" name="VkExtent2D">
            <member><type>uint32_t</type> <name>width</name></member>
        </type>
    </types>
    <feature api="vulkan" name="VK_VERSION_1_0" number="1.0">
        <require>
            <type name="VK_HEADER_VERSION"/>
            <type name="VkExtent2D"/>
        </require>
    </feature>
</registry>
`

func writeRunFixtures(t *testing.T) (dir string, opts Options) {
	t.Helper()
	dir = t.TempDir()

	registryPath := filepath.Join(dir, "vk.xml")
	require.NoError(t, os.WriteFile(registryPath, []byte(tinyRegistryXML), 0644))

	templatePath := filepath.Join(dir, "template.h")
	require.NoError(t, os.WriteFile(templatePath, []byte(testutil.TemplateText), 0644))

	return dir, Options{
		RegistryPath: registryPath,
		TemplatePath: templatePath,
		OutputPath:   filepath.Join(dir, "vkbind.h"),
		Offline:      true,
	}
}

func TestRunGeneratesHeader(t *testing.T) {
	_, opts := writeRunFixtures(t)

	result, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "1.0.250", result.Version)
	assert.Equal(t, 0, result.Revision)

	out, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	content := string(out)

	assert.Contains(t, content, "vkbind - v1.0.250.0")
	assert.Contains(t, content, "#define VK_VERSION_1_0 1")
	assert.Contains(t, content, "typedef struct VkExtent2D")
}

func TestRunRevisionIncrementsAcrossRuns(t *testing.T) {
	_, opts := writeRunFixtures(t)

	first, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Revision)

	second, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Revision)
}

func TestRunLeavesPreviousOutputOnFailure(t *testing.T) {
	_, opts := writeRunFixtures(t)

	require.NoError(t, os.WriteFile(opts.OutputPath, []byte("previous contents"), 0644))

	opts.TemplatePath = filepath.Join(filepath.Dir(opts.TemplatePath), "missing-template.h")
	_, err := Run(context.Background(), opts)
	require.Error(t, err)

	out, readErr := os.ReadFile(opts.OutputPath)
	require.NoError(t, readErr)
	assert.Equal(t, "previous contents", string(out))
}

func TestRunOfflineWithMissingRegistryFails(t *testing.T) {
	dir, opts := writeRunFixtures(t)
	opts.RegistryPath = filepath.Join(dir, "absent.xml")

	_, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")
}

func TestRunRequiresPaths(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	require.Error(t, err)
}
