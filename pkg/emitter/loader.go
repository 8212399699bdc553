package emitter

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/vkbind/vkbgen/pkg/types"
)

// IsDeviceLevelCommand reports whether a command dispatches on a device:
// its first parameter is VkDevice or a handle whose parent chain reaches
// VkDevice. Aliased commands inherit the classification of their target.
func (s *State) IsDeviceLevelCommand(command *types.Command) bool {
	if command.Alias != "" {
		if base, ok := s.reg.CommandByName(command.Alias); ok {
			return s.IsDeviceLevelCommand(base)
		}
		return false
	}
	if len(command.Parameters) == 0 {
		return false
	}
	first := command.Parameters[0].TypeName
	return first == "VkDevice" || s.reg.IsHandleChildOf("VkDevice", first)
}

// IsInstanceLevelCommand reports whether a command dispatches on an
// instance or any handle below it.
func (s *State) IsInstanceLevelCommand(command *types.Command) bool {
	if command.Alias != "" {
		if base, ok := s.reg.CommandByName(command.Alias); ok {
			return s.IsInstanceLevelCommand(base)
		}
		return false
	}
	if len(command.Parameters) == 0 {
		return false
	}
	first := command.Parameters[0].TypeName
	return first == "VkInstance" || s.reg.IsHandleChildOf("VkInstance", first)
}

// commandLine produces the table entry for one command, or ok=false to
// skip it (the command stays out of the table's emitted set as well, so
// a later feature or extension can still claim it).
type commandLine func(command *types.Command) (line string, ok bool)

// writeCommandTable walks commands in the canonical order - features by
// ascending version, then cross-platform extensions, then per-platform
// extensions under their protect guards - emitting one line per command
// with a per-table duplicate filter. preseed names commands handled
// specially by the template (the proc-address getters themselves).
func (s *State) writeCommandTable(sep string, includeExtensions, includePlatforms bool, line commandLine, preseed ...string) string {
	var buf strings.Builder
	seen := sets.New[string](preseed...)
	wroteAny := false

	emit := func(rc *types.RequireCommand) {
		command, ok := s.reg.CommandByName(rc.Name)
		if !ok || seen.Has(rc.Name) {
			return
		}
		text, ok := line(command)
		if !ok {
			return
		}
		if wroteAny {
			buf.WriteString(sep)
		}
		buf.WriteString(text)
		seen.Insert(rc.Name)
		wroteAny = true
	}

	for f := range s.reg.Features {
		for r := range s.reg.Features[f].Requires {
			require := &s.reg.Features[f].Requires[r]
			for c := range require.Commands {
				emit(&require.Commands[c])
			}
		}
	}

	if includeExtensions {
		for x := range s.reg.Extensions {
			ext := &s.reg.Extensions[x]
			if ext.Platform != "" {
				continue
			}
			for r := range ext.Requires {
				for c := range ext.Requires[r].Commands {
					emit(&ext.Requires[r].Commands[c])
				}
			}
		}
	}

	if includePlatforms {
		for p := range s.reg.Platforms {
			platform := &s.reg.Platforms[p]
			buf.WriteString("\n#ifdef " + platform.Protect)
			for x := range s.reg.Extensions {
				ext := &s.reg.Extensions[x]
				if ext.Platform != platform.Name {
					continue
				}
				for r := range ext.Requires {
					for c := range ext.Requires[r].Commands {
						emit(&ext.Requires[r].Commands[c])
					}
				}
			}
			buf.WriteString("\n#endif /*" + platform.Protect + "*/")
		}
	}

	return buf.String()
}

// FuncPointersDecl renders one "PFN_<name> <name>;" declaration per
// command, indented for use at file scope (0) or inside the API struct
// (4).
func (s *State) FuncPointersDecl(indentation int) string {
	sep := "\n" + strings.Repeat(" ", indentation)
	return s.writeCommandTable(sep, true, true, func(c *types.Command) (string, bool) {
		return "PFN_" + c.Name + " " + c.Name + ";", true
	})
}

// LoadGlobalAPIFuncPointers renders the dlsym-based global table used
// right after the Vulkan shared object is opened.
func (s *State) LoadGlobalAPIFuncPointers() string {
	return s.writeCommandTable("\n    ", true, true, func(c *types.Command) (string, bool) {
		return c.Name + " = (PFN_" + c.Name + ")vkb_dlsym(g_vkbVulkanSO, \"" + c.Name + "\");", true
	})
}

// SetStructAPIFromGlobal renders the assignments copying the bound global
// pointers into an API struct.
func (s *State) SetStructAPIFromGlobal() string {
	return s.writeCommandTable("\n        ", true, true, func(c *types.Command) (string, bool) {
		return "pAPI->" + c.Name + " = " + c.Name + ";", true
	})
}

// SetGlobalAPIFromStruct renders the inverse assignments binding an API
// struct back onto the global pointers.
func (s *State) SetGlobalAPIFromStruct() string {
	return s.writeCommandTable("\n    ", true, true, func(c *types.Command) (string, bool) {
		return c.Name + " = pAPI->" + c.Name + ";", true
	})
}

// LoadInstanceAPI renders the vkGetInstanceProcAddr table. The getter
// itself is resolved by hand in the template, so it is preseeded out.
func (s *State) LoadInstanceAPI() string {
	return s.writeCommandTable("\n    ", true, true, func(c *types.Command) (string, bool) {
		return "pAPI->" + c.Name + " = (PFN_" + c.Name + ")vkGetInstanceProcAddr(instance, \"" + c.Name + "\");", true
	}, "vkGetInstanceProcAddr")
}

// LoadDeviceAPI renders the vkGetDeviceProcAddr table covering only
// device-level commands.
func (s *State) LoadDeviceAPI() string {
	return s.writeCommandTable("\n    ", true, true, func(c *types.Command) (string, bool) {
		if !s.IsDeviceLevelCommand(c) {
			return "", false
		}
		return "pAPI->" + c.Name + " = (PFN_" + c.Name + ")pAPI->vkGetDeviceProcAddr(device, \"" + c.Name + "\");", true
	}, "vkGetDeviceProcAddr")
}

// LoadSafeGlobalAPI renders the subset of core commands that are legal to
// resolve before any instance exists, via vkGetInstanceProcAddr(NULL, ...).
// Extensions are excluded: pre-instance resolution is only specified for
// core entry points.
func (s *State) LoadSafeGlobalAPI() string {
	return s.writeCommandTable("\n    ", false, false, func(c *types.Command) (string, bool) {
		if s.IsInstanceLevelCommand(c) {
			return "", false
		}
		return c.Name + " = (PFN_" + c.Name + ")vkGetInstanceProcAddr(NULL, \"" + c.Name + "\");", true
	}, "vkGetInstanceProcAddr")
}

// SafeGlobalAPIDocs renders the human-readable listing of safe-global
// commands grouped by the feature version that introduced them.
// vkGetInstanceProcAddr is listed manually under 1.0 because the loader
// resolves it before the table runs.
func (s *State) SafeGlobalAPIDocs() string {
	var buf strings.Builder

	for f := range s.reg.Features {
		feature := &s.reg.Features[f]
		seen := sets.New[string]()

		buf.WriteString("\nVulkan " + feature.Number + "\n")

		if feature.Number == "1.0" {
			buf.WriteString("    vkGetInstanceProcAddr")
			seen.Insert("vkGetInstanceProcAddr")
		}

		for r := range feature.Requires {
			require := &feature.Requires[r]
			for c := range require.Commands {
				rc := &require.Commands[c]
				command, ok := s.reg.CommandByName(rc.Name)
				if !ok || seen.Has(rc.Name) || s.IsInstanceLevelCommand(command) {
					continue
				}
				if seen.Len() == 0 {
					buf.WriteString("    ")
				} else {
					buf.WriteString("\n    ")
				}
				buf.WriteString(command.Name)
				seen.Insert(rc.Name)
			}
		}
	}

	return buf.String()
}
