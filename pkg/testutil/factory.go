// Package testutil provides builders for the synthetic mini-registries
// used across the unit and integration tests.
package testutil

import "github.com/vkbind/vkbgen/pkg/types"

// RegistryOption mutates a registry under construction.
type RegistryOption func(*types.Registry)

// NewMiniRegistry creates a registry with the scaffolding every
// synthetic test needs: the C scalar types, the handle-definition
// macros, the flags base types, VK_HEADER_VERSION, VkResult, and the
// VkInstance/VkPhysicalDevice/VkDevice/VkQueue/VkCommandBuffer handle
// chain. Options layer test-specific entities on top.
func NewMiniRegistry(opts ...RegistryOption) *types.Registry {
	reg := types.NewRegistry()

	reg.Tags = []types.Tag{
		{Name: "KHR", Author: "Khronos", Contact: "Tom Olson"},
		{Name: "EXT", Author: "Multivendor", Contact: "Multiple"},
	}

	for _, scalar := range []string{"void", "char", "float", "uint8_t", "int32_t", "uint32_t", "uint64_t", "size_t"} {
		reg.AddType(types.Type{Name: scalar})
	}

	reg.AddType(types.Type{
		Name:          "VK_DEFINE_HANDLE",
		Category:      types.CategoryDefine,
		VerbatimValue: "#define VK_DEFINE_HANDLE(object) typedef struct object##_T* object;",
	})
	reg.AddType(types.Type{
		Name:          "VK_DEFINE_NON_DISPATCHABLE_HANDLE",
		Category:      types.CategoryDefine,
		VerbatimValue: "#define VK_DEFINE_NON_DISPATCHABLE_HANDLE(object) typedef uint64_t object;",
	})
	reg.AddType(types.Type{
		Name:          "VK_HEADER_VERSION",
		Category:      types.CategoryDefine,
		VerbatimValue: "// Version of this file\n#define VK_HEADER_VERSION 250",
	})

	reg.AddType(types.Type{
		Name:          "VkFlags",
		Category:      types.CategoryBasetype,
		Type:          "uint32_t",
		VerbatimValue: "typedef uint32_t VkFlags;",
	})
	reg.AddType(types.Type{
		Name:          "VkFlags64",
		Category:      types.CategoryBasetype,
		Type:          "uint64_t",
		VerbatimValue: "typedef uint64_t VkFlags64;",
	})
	reg.AddType(types.Type{
		Name:          "VkBool32",
		Category:      types.CategoryBasetype,
		Type:          "uint32_t",
		VerbatimValue: "typedef uint32_t VkBool32;",
	})

	reg.AddType(types.Type{Name: "VkInstance", Category: types.CategoryHandle, Type: "VK_DEFINE_HANDLE"})
	reg.AddType(types.Type{Name: "VkPhysicalDevice", Category: types.CategoryHandle, Type: "VK_DEFINE_HANDLE", Parent: "VkInstance"})
	reg.AddType(types.Type{Name: "VkDevice", Category: types.CategoryHandle, Type: "VK_DEFINE_HANDLE", Parent: "VkPhysicalDevice"})
	reg.AddType(types.Type{Name: "VkQueue", Category: types.CategoryHandle, Type: "VK_DEFINE_HANDLE", Parent: "VkDevice"})
	reg.AddType(types.Type{Name: "VkCommandBuffer", Category: types.CategoryHandle, Type: "VK_DEFINE_HANDLE", Parent: "VkDevice"})

	reg.AddType(types.Type{Name: "VkResult", Category: types.CategoryEnum})
	reg.AddEnumContainer(types.EnumContainer{
		Name: "VkResult",
		Type: "enum",
		Items: []types.EnumItem{
			{Name: "VK_SUCCESS", Value: "0"},
			{Name: "VK_NOT_READY", Value: "1"},
			{Name: "VK_ERROR_OUT_OF_HOST_MEMORY", Value: "-1"},
		},
	})

	for _, opt := range opts {
		opt(reg)
	}

	return reg
}

// WithType adds an arbitrary type.
func WithType(t types.Type) RegistryOption {
	return func(reg *types.Registry) { reg.AddType(t) }
}

// WithStruct adds a struct type with the given members.
func WithStruct(name string, members ...types.Member) RegistryOption {
	return func(reg *types.Registry) {
		reg.AddType(types.Type{Name: name, Category: types.CategoryStruct, Members: members})
	}
}

// WithEnumContainer adds an enum container together with its type entry.
func WithEnumContainer(container types.EnumContainer) RegistryOption {
	return func(reg *types.Registry) {
		reg.AddType(types.Type{Name: container.Name, Category: types.CategoryEnum})
		reg.AddEnumContainer(container)
	}
}

// WithCommand adds a command.
func WithCommand(command types.Command) RegistryOption {
	return func(reg *types.Registry) { reg.AddCommand(command) }
}

// WithFeature appends a feature block.
func WithFeature(feature types.Feature) RegistryOption {
	return func(reg *types.Registry) { reg.Features = append(reg.Features, feature) }
}

// WithExtension appends an extension block.
func WithExtension(extension types.Extension) RegistryOption {
	return func(reg *types.Registry) { reg.Extensions = append(reg.Extensions, extension) }
}

// Member is a shorthand member/parameter constructor for the common case
// where the C expression is just the bare type name.
func Member(typeName, name string) types.Member {
	return types.Member{TypeC: typeName, TypeName: typeName, NameC: name, Name: name}
}

// PointerMember builds a member whose C expression is a pointer to the
// named type.
func PointerMember(typeName, name string) types.Member {
	return types.Member{TypeC: typeName + "*", TypeName: typeName, NameC: name, Name: name}
}

// RequireTypes builds a require block referencing the named types.
func RequireTypes(names ...string) types.Require {
	var req types.Require
	for _, name := range names {
		req.Types = append(req.Types, types.RequireType{Name: name})
	}
	return req
}

// RequireCommands builds a require block referencing the named commands.
func RequireCommands(names ...string) types.Require {
	var req types.Require
	for _, name := range names {
		req.Commands = append(req.Commands, types.RequireCommand{Name: name})
	}
	return req
}

// TemplateText is a minimal header template carrying every placeholder
// the substituter recognizes, for end-to-end tests.
const TemplateText = `/*
vkbind - v<<vulkan_version>>.<<revision>> - <<date>>
*/
/*<<vulkan_main>>*/
/*<<vulkan_funcpointers_decl_global>>*/
struct VkbAPI {
    /*<<vulkan_funcpointers_decl_global:4>>*/
};
/*
<<safe_global_api_docs>>
*/
static void load_global(void) {
    /*<<load_global_api_funcpointers>>*/
}
static void load_safe_global(void) {
    /*<<load_safe_global_api>>*/
}
static void set_struct(VkbAPI* pAPI) {
    /*<<set_struct_api_from_global>>*/
}
static void set_global(VkbAPI* pAPI) {
    /*<<set_global_api_from_struct>>*/
}
static void load_instance(VkInstance instance, VkbAPI* pAPI) {
    /*<<load_instance_api>>*/
}
static void load_device(VkDevice device, VkbAPI* pAPI) {
    /*<<load_device_api>>*/
}
`
