package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkbind/vkbgen/pkg/types"
)

const fixtureXML = `<?xml version="1.0" encoding="UTF-8"?>
<registry>
    <platforms comment="Khronos platform names">
        <platform name="win32" protect="VK_USE_PLATFORM_WIN32_KHR" comment="Microsoft Win32 API"/>
        <platform name="mir" protect="VK_USE_PLATFORM_MIR_KHR" comment="Mir display server"/>
        <platform name="xlib" protect="VK_USE_PLATFORM_XLIB_KHR" comment="X Window System, Xlib client library"/>
    </platforms>
    <tags>
        <tag name="KHR" author="Khronos" contact="Tom Olson"/>
        <tag name="EXT" author="Multivendor" contact="Multiple"/>
    </tags>
    <types comment="Vulkan type definitions">
        <comment>A stray comment element</comment>
        <type name="vk_platform" category="include">Includes vk_platform.h</type>
        <type name="uint32_t" requires="vk_platform"/>
        <type name="uint64_t" requires="vk_platform"/>
        <type name="char" requires="vk_platform"/>
        <type name="void" requires="vk_platform"/>
        <type category="define">#define <name>VK_DEFINE_HANDLE</name>(object) typedef struct object##_T* object;</type>
        <type category="define">// Version of this file
#define <name>VK_HEADER_VERSION</name> 250</type>
        <type category="basetype">typedef <type>uint32_t</type> <name>VkFlags</name>;</type>
        <type category="handle" objtypeenum="VK_OBJECT_TYPE_INSTANCE"><type>VK_DEFINE_HANDLE</type>(<name>VkInstance</name>)</type>
        <type category="handle" parent="VkInstance"><type>VK_DEFINE_HANDLE</type>(<name>VkPhysicalDevice</name>)</type>
        <type name="VkSampleCountFlagBits" category="enum"/>
        <type requires="VkSampleCountFlagBits" category="bitmask">typedef <type>VkFlags</type> <name>VkSampleCountFlags</name>;</type>
        <type category="struct" name="VkExtent2D">
            <member><type>uint32_t</type>        <name>width</name></member>
            <member><type>uint32_t</type>        <name>height</name></member>
        </type>
        <type category="struct" name="VkLayerProperties" returnedonly="true">
            <member><type>char</type>            <name>layerName</name>[<enum>VK_MAX_EXTENSION_NAME_SIZE</enum>]</member>
            <member><type>uint32_t</type>        <name>specVersion</name><comment>version of the layer</comment></member>
        </type>
        <type category="funcpointer">typedef void* (VKAPI_PTR *<name>PFN_vkAllocationFunction</name>)(
    void*                                       pUserData,
    <type>size_t</type>                         size,
    <type>size_t</type>                         alignment);</type>
    </types>
    <enums name="API Constants" comment="misc constants">
        <enum value="256"   name="VK_MAX_EXTENSION_NAME_SIZE"/>
        <enum value="(~0U)" name="VK_REMAINING_MIP_LEVELS"/>
    </enums>
    <enums name="VkSampleCountFlagBits" type="bitmask">
        <enum bitpos="0" name="VK_SAMPLE_COUNT_1_BIT"/>
        <enum bitpos="1" name="VK_SAMPLE_COUNT_2_BIT"/>
    </enums>
    <commands comment="Vulkan command definitions">
        <command successcodes="VK_SUCCESS" errorcodes="VK_ERROR_OUT_OF_HOST_MEMORY">
            <proto><type>VkResult</type> <name>vkCreateInstance</name></proto>
            <param>const <type>VkInstanceCreateInfo</type>* <name>pCreateInfo</name></param>
            <param optional="true">const <type>VkAllocationCallbacks</type>* <name>pAllocator</name></param>
            <param><type>VkInstance</type>* <name>pInstance</name></param>
        </command>
        <command name="vkCreateInstance2" alias="vkCreateInstance"/>
    </commands>
    <feature api="vulkan" name="VK_VERSION_1_0" number="1.0" comment="Vulkan core API interface definitions">
        <require comment="Header boilerplate">
            <type name="vk_platform"/>
        </require>
        <require comment="Fundamental objects">
            <type name="VkExtent2D"/>
            <enum name="VK_MAX_EXTENSION_NAME_SIZE"/>
            <command name="vkCreateInstance"/>
        </require>
    </feature>
    <extensions comment="Vulkan extension interface definitions">
        <extension name="VK_EXT_old_thing" number="2" type="instance" supported="vulkan" deprecatedby="VK_KHR_new_thing">
            <require>
                <type name="VkExtent2D"/>
            </require>
        </extension>
        <extension name="VK_EXT_disabled_thing" number="3" supported="disabled">
            <require>
                <type name="VkExtent2D"/>
            </require>
        </extension>
        <extension name="VK_KHR_mir_surface" number="4" type="instance" supported="vulkan" platform="mir">
            <require>
                <type name="VkExtent2D"/>
            </require>
        </extension>
        <extension name="VK_KHR_new_thing" number="5" type="instance" supported="vulkan">
            <require>
                <enum value="&quot;VK_KHR_new_thing&quot;" name="VK_KHR_NEW_THING_EXTENSION_NAME"/>
                <enum offset="0" extends="VkSampleCountFlagBits" dir="-" name="VK_SAMPLE_COUNT_WEIRD_BIT_KHR"/>
            </require>
        </extension>
    </extensions>
</registry>
`

func TestParseFixture(t *testing.T) {
	reg, err := Parse([]byte(fixtureXML))
	require.NoError(t, err)

	// Mir is skipped at both the platform and extension level.
	require.Len(t, reg.Platforms, 2)
	assert.Equal(t, "win32", reg.Platforms[0].Name)
	assert.Equal(t, "VK_USE_PLATFORM_WIN32_KHR", reg.Platforms[0].Protect)
	assert.Equal(t, "xlib", reg.Platforms[1].Name)

	require.Len(t, reg.Tags, 2)
	assert.Equal(t, "KHR", reg.Tags[0].Name)

	// Types.
	includeType, ok := reg.TypeByName("vk_platform")
	require.True(t, ok)
	assert.Equal(t, types.CategoryInclude, includeType.Category)

	plain, ok := reg.TypeByName("uint32_t")
	require.True(t, ok)
	assert.Equal(t, types.CategoryNone, plain.Category)
	assert.Equal(t, "vk_platform", plain.Requires)

	define, ok := reg.TypeByName("VK_DEFINE_HANDLE")
	require.True(t, ok)
	assert.Contains(t, define.VerbatimValue, "#define VK_DEFINE_HANDLE(object)")

	headerVersion, ok := reg.TypeByName("VK_HEADER_VERSION")
	require.True(t, ok)
	assert.Contains(t, headerVersion.VerbatimValue, "250")

	basetype, ok := reg.TypeByName("VkFlags")
	require.True(t, ok)
	assert.Equal(t, "uint32_t", basetype.Type)

	handle, ok := reg.TypeByName("VkPhysicalDevice")
	require.True(t, ok)
	assert.Equal(t, "VK_DEFINE_HANDLE", handle.Type)
	assert.Equal(t, "VkInstance", handle.Parent)

	bitmask, ok := reg.TypeByName("VkSampleCountFlags")
	require.True(t, ok)
	assert.Equal(t, "VkFlags", bitmask.Type)
	assert.Equal(t, "VkSampleCountFlagBits", bitmask.Requires)

	// Struct members, including the enum-sized array and comment capture.
	layerProps, ok := reg.TypeByName("VkLayerProperties")
	require.True(t, ok)
	require.Len(t, layerProps.Members, 2)
	assert.Equal(t, "VK_MAX_EXTENSION_NAME_SIZE", layerProps.Members[0].ArrayEnum)
	assert.Equal(t, "layerName[VK_MAX_EXTENSION_NAME_SIZE]", layerProps.Members[0].NameC)
	assert.Equal(t, "version of the layer", layerProps.Members[1].Comment)

	// Funcpointer decode.
	fp, ok := reg.TypeByName("PFN_vkAllocationFunction")
	require.True(t, ok)
	assert.Equal(t, "void*", fp.FuncPointer.ReturnType)
	require.Len(t, fp.FuncPointer.Params, 3)
	assert.Equal(t, "void*", fp.FuncPointer.Params[0].TypeC)
	assert.Equal(t, "pUserData", fp.FuncPointer.Params[0].Name)
	assert.Equal(t, "size_t", fp.FuncPointer.Params[1].TypeName)

	// Define-style enums explode into single-item containers.
	maxExt, ok := reg.EnumByName("VK_MAX_EXTENSION_NAME_SIZE")
	require.True(t, ok)
	assert.Equal(t, "", maxExt.Type)
	require.Len(t, maxExt.Items, 1)
	assert.Equal(t, "256", maxExt.Items[0].Value)

	sampleCount, ok := reg.EnumByName("VkSampleCountFlagBits")
	require.True(t, ok)
	assert.Equal(t, "bitmask", sampleCount.Type)
	require.Len(t, sampleCount.Items, 2)

	// Commands, including the alias form.
	create, ok := reg.CommandByName("vkCreateInstance")
	require.True(t, ok)
	assert.Equal(t, "VkResult", create.ReturnType)
	assert.Equal(t, "VK_SUCCESS", create.SuccessCodes)
	require.Len(t, create.Parameters, 3)
	assert.Equal(t, "const VkInstanceCreateInfo*", create.Parameters[0].TypeC)
	assert.Equal(t, "true", create.Parameters[1].Optional)

	aliased, ok := reg.CommandByName("vkCreateInstance2")
	require.True(t, ok)
	assert.Equal(t, "vkCreateInstance", aliased.Alias)
	assert.Empty(t, aliased.Parameters)

	// Features.
	require.Len(t, reg.Features, 1)
	feature := reg.Features[0]
	assert.Equal(t, "1.0", feature.Number)
	require.Len(t, feature.Requires, 2)
	assert.Equal(t, "vkCreateInstance", feature.Requires[1].Commands[0].Name)

	// Extensions: disabled and mir-only entries are skipped; the
	// deprecated extension moved after its deprecator.
	require.Len(t, reg.Extensions, 2)
	assert.Equal(t, "VK_KHR_new_thing", reg.Extensions[0].Name)
	assert.Equal(t, "VK_EXT_old_thing", reg.Extensions[1].Name)
	assert.Equal(t, "VK_KHR_new_thing", reg.Extensions[1].DeprecatedBy)

	newThing := reg.Extensions[0]
	require.Len(t, newThing.Requires, 1)
	require.Len(t, newThing.Requires[0].Enums, 2)
	added := newThing.Requires[0].Enums[1]
	assert.Equal(t, "VkSampleCountFlagBits", added.Extends)
	assert.Equal(t, "-", added.Dir)
	assert.Equal(t, "0", added.Offset)
}

func TestParseRejectsWrongRoot(t *testing.T) {
	_, err := Parse([]byte(`<notregistry/>`))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrParse)
}

func TestParseRejectsMissingPlatformProtect(t *testing.T) {
	_, err := Parse([]byte(`<registry><platforms><platform name="win32"/></platforms></registry>`))
	require.Error(t, err)

	var parseErr *types.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Path, "platform[name=win32]")
}

func TestParseRejectsExtensionWithoutSupported(t *testing.T) {
	_, err := Parse([]byte(`<registry><extensions><extension name="VK_KHR_x"/></extensions></registry>`))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrParse)
}
