package resolver

import "github.com/vkbind/vkbgen/pkg/types"

// ReorderExtensions moves every extension with a promotedto field so it
// sits immediately after the extension it was promoted to. Promoted
// extensions alias types in their promoting counterparts, so the
// promoted declarations have to land first for the alias typedefs to
// compile. A promotedto value naming a feature rather than an extension
// leaves the extension in place. The pass is idempotent.
func ReorderExtensions(reg *types.Registry) {
	var promoted []string
	for i := range reg.Extensions {
		if reg.Extensions[i].PromotedTo != "" {
			promoted = append(promoted, reg.Extensions[i].Name)
		}
	}

	for _, name := range promoted {
		oldIdx, ok := reg.ExtensionIndex(name)
		if !ok {
			continue
		}
		target := reg.Extensions[oldIdx].PromotedTo
		if _, ok := reg.ExtensionIndex(target); !ok {
			continue
		}

		moved := reg.Extensions[oldIdx]
		reg.Extensions = append(reg.Extensions[:oldIdx], reg.Extensions[oldIdx+1:]...)

		targetIdx, _ := reg.ExtensionIndex(target)
		reg.Extensions = append(reg.Extensions, types.Extension{})
		copy(reg.Extensions[targetIdx+2:], reg.Extensions[targetIdx+1:])
		reg.Extensions[targetIdx+1] = moved
	}
}
