package generator

import "strings"

// Placeholder tags recognized in the template. Anything else that looks
// like a <<...>> token passes through to the output untouched.
const (
	TagMain                     = "/*<<vulkan_main>>*/"
	TagFuncPointersDecl         = "/*<<vulkan_funcpointers_decl_global>>*/"
	TagFuncPointersDeclIndented = "/*<<vulkan_funcpointers_decl_global:4>>*/"
	TagLoadGlobal               = "/*<<load_global_api_funcpointers>>*/"
	TagSetStructFromGlobal      = "/*<<set_struct_api_from_global>>*/"
	TagSetGlobalFromStruct      = "/*<<set_global_api_from_struct>>*/"
	TagLoadInstance             = "/*<<load_instance_api>>*/"
	TagLoadDevice               = "/*<<load_device_api>>*/"
	TagLoadSafeGlobal           = "/*<<load_safe_global_api>>*/"
	TagSafeGlobalDocs           = "<<safe_global_api_docs>>"
	TagVulkanVersion            = "<<vulkan_version>>"
	TagRevision                 = "<<revision>>"
	TagDate                     = "<<date>>"
)

// Tags lists every recognized placeholder in substitution order.
var Tags = []string{
	TagMain,
	TagFuncPointersDecl,
	TagFuncPointersDeclIndented,
	TagLoadGlobal,
	TagSetStructFromGlobal,
	TagSetGlobalFromStruct,
	TagLoadInstance,
	TagLoadDevice,
	TagLoadSafeGlobal,
	TagSafeGlobalDocs,
	TagVulkanVersion,
	TagRevision,
	TagDate,
}

// Substitute replaces every recognized tag in the template with its
// generated fragment. All fragments are fully materialized before this
// runs; there is no streaming substitution.
func Substitute(template string, fragments map[string]string) string {
	out := template
	for _, tag := range Tags {
		fragment, ok := fragments[tag]
		if !ok {
			continue
		}
		out = strings.ReplaceAll(out, tag, fragment)
	}
	return out
}
