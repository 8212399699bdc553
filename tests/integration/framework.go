// Package integration provides a test framework for end-to-end runs of
// the full registry-to-header pipeline on synthetic mini-registries.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vkbind/vkbgen/pkg/generator"
	"github.com/vkbind/vkbgen/pkg/testutil"
)

// Harness manages the temporary file layout of one pipeline run.
type Harness struct {
	T       *testing.T
	TempDir string

	RegistryPath string
	TemplatePath string
	OutputPath   string
}

// NewHarness creates a harness rooted in a per-test temp directory with
// the default template already in place.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	dir := t.TempDir()
	h := &Harness{
		T:            t,
		TempDir:      dir,
		RegistryPath: filepath.Join(dir, "vk.xml"),
		TemplatePath: filepath.Join(dir, "template.h"),
		OutputPath:   filepath.Join(dir, "vkbind.h"),
	}
	h.WriteTemplate(testutil.TemplateText)
	return h
}

// WriteRegistry writes the registry XML the next run will consume.
func (h *Harness) WriteRegistry(content string) {
	h.T.Helper()
	require.NoError(h.T, os.WriteFile(h.RegistryPath, []byte(content), 0644))
}

// WriteTemplate replaces the template file.
func (h *Harness) WriteTemplate(content string) {
	h.T.Helper()
	require.NoError(h.T, os.WriteFile(h.TemplatePath, []byte(content), 0644))
}

// WriteOutput seeds a pre-existing generated header, for revision tests.
func (h *Harness) WriteOutput(content string) {
	h.T.Helper()
	require.NoError(h.T, os.WriteFile(h.OutputPath, []byte(content), 0644))
}

// Generate runs the pipeline offline and returns the run result.
func (h *Harness) Generate() (*generator.Result, error) {
	return generator.Run(context.Background(), generator.Options{
		RegistryPath: h.RegistryPath,
		TemplatePath: h.TemplatePath,
		OutputPath:   h.OutputPath,
		Offline:      true,
	})
}

// MustGenerate runs the pipeline and fails the test on error, returning
// the generated header contents.
func (h *Harness) MustGenerate() (*generator.Result, string) {
	h.T.Helper()

	result, err := h.Generate()
	require.NoError(h.T, err)

	out, err := os.ReadFile(h.OutputPath)
	require.NoError(h.T, err)
	return result, string(out)
}

// baseTypesXML is the scaffolding shared by the scenario registries: the
// scalar passthrough types, the handle macro, flags base types, the header
// version define, VkResult, and the dispatchable handle chain.
const baseTypesXML = `
        <type name="uint32_t"/>
        <type name="uint64_t"/>
        <type name="char"/>
        <type name="void"/>
        <type category="define">#define <name>VK_DEFINE_HANDLE</name>(object) typedef struct object##_T* object;</type>
        <type category="define">// Version of this file
#define <name>VK_HEADER_VERSION</name> 250</type>
        <type category="basetype">typedef <type>uint32_t</type> <name>VkFlags</name>;</type>
        <type category="basetype">typedef <type>uint64_t</type> <name>VkFlags64</name>;</type>
        <type category="handle"><type>VK_DEFINE_HANDLE</type>(<name>VkInstance</name>)</type>
        <type category="handle" parent="VkInstance"><type>VK_DEFINE_HANDLE</type>(<name>VkPhysicalDevice</name>)</type>
        <type category="handle" parent="VkPhysicalDevice"><type>VK_DEFINE_HANDLE</type>(<name>VkDevice</name>)</type>
        <type category="handle" parent="VkDevice"><type>VK_DEFINE_HANDLE</type>(<name>VkCommandBuffer</name>)</type>
        <type name="VkResult" category="enum"/>
`

// baseEnumsXML pairs with baseTypesXML.
const baseEnumsXML = `
    <enums name="VkResult" type="enum">
        <enum value="0" name="VK_SUCCESS"/>
        <enum value="-1" name="VK_ERROR_OUT_OF_HOST_MEMORY"/>
    </enums>
`
