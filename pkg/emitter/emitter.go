// Package emitter renders the parsed registry into C declaration
// fragments, one per feature and extension, plus the loader tables the
// template splices into the generated header.
package emitter

import (
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/vkbind/vkbgen/pkg/resolver"
	"github.com/vkbind/vkbgen/pkg/types"
)

// State carries the per-run emission bookkeeping: the resolved dependency
// sets and the three already-emitted name filters that stop later
// features and extensions from re-declaring earlier symbols. It is only
// ever driven from the single generator goroutine.
type State struct {
	reg *types.Registry

	featureDeps   []*resolver.DependencySet
	extensionDeps []*resolver.DependencySet

	emittedDefines  sets.Set[string]
	emittedTypes    sets.Set[string]
	emittedCommands sets.Set[string]
}

// New creates emission state over a resolved registry. The dependency set
// slices must parallel reg.Features and reg.Extensions (post-reorder).
func New(reg *types.Registry, featureDeps, extensionDeps []*resolver.DependencySet) *State {
	return &State{
		reg:             reg,
		featureDeps:     featureDeps,
		extensionDeps:   extensionDeps,
		emittedDefines:  sets.New[string](),
		emittedTypes:    sets.New[string](),
		emittedCommands: sets.New[string](),
	}
}

// Main renders the complete API section: every feature in version order,
// then cross-platform extensions, then platform-specific extensions
// grouped under their platform guards.
func (s *State) Main() string {
	var buf strings.Builder

	for i := range s.reg.Features {
		s.writeFeature(&buf, i)
	}

	for i := range s.reg.Extensions {
		if s.reg.Extensions[i].Platform == "" {
			s.writeExtension(&buf, i)
		}
	}

	for p := range s.reg.Platforms {
		platform := &s.reg.Platforms[p]

		buf.WriteString("#ifdef " + platform.Protect + "\n")

		// Platform-specific includes come first inside the guard so the
		// block reads like a hand-written header section.
		for i := range s.reg.Extensions {
			if s.reg.Extensions[i].Platform == platform.Name {
				s.writeIncludes(&buf, s.extensionDeps[i])
			}
		}
		for i := range s.reg.Extensions {
			if s.reg.Extensions[i].Platform == platform.Name {
				s.writeExtension(&buf, i)
			}
		}

		buf.WriteString("#endif /*" + platform.Protect + "*/\n\n")
	}

	return buf.String()
}

func (s *State) writeFeature(buf *strings.Builder, idx int) {
	feature := &s.reg.Features[idx]
	deps := s.featureDeps[idx]

	buf.WriteString("\n#define " + feature.Name + " 1\n")
	s.writeIncludes(buf, deps)

	for i := range feature.Requires {
		s.writeRequireDefineEnums(buf, &feature.Requires[i])
	}
	buf.WriteString("\n")

	s.writeDependencies(buf, deps)

	for i := range feature.Requires {
		s.writeRequireCommands(buf, feature.Requires[i].Commands)
	}
}

func (s *State) writeExtension(buf *strings.Builder, idx int) {
	extension := &s.reg.Extensions[idx]
	deps := s.extensionDeps[idx]

	buf.WriteString("\n#define " + extension.Name + " 1\n")
	s.writeIncludes(buf, deps)

	for i := range extension.Requires {
		s.writeRequireDefineEnums(buf, &extension.Requires[i])
	}
	buf.WriteString("\n")

	s.writeDependencies(buf, deps)

	for i := range extension.Requires {
		s.writeRequireCommands(buf, extension.Requires[i].Commands)
	}
}

func (s *State) writeIncludes(buf *strings.Builder, deps *resolver.DependencySet) {
	for _, ti := range deps.TypeIndices {
		t := &s.reg.Types[ti]

		// The header carries its own platform plumbing, so the registry's
		// vk_platform pseudo-include is suppressed.
		if t.Name == "vk_platform" {
			continue
		}

		if t.Category == types.CategoryInclude && !s.emittedTypes.Has(t.Name) {
			buf.WriteString("#include <" + t.Name + ">\n")
			s.emittedTypes.Insert(t.Name)
		}
	}
}

// writeRequireDefineEnums emits the #define-style constants a feature or
// extension declares directly inside its require blocks (entries with an
// explicit value and no extends target).
func (s *State) writeRequireDefineEnums(buf *strings.Builder, require *types.Require) {
	for i := range require.Enums {
		re := &require.Enums[i]
		if re.Value == "" || re.Extends != "" || s.emittedDefines.Has(re.Name) {
			continue
		}
		if re.Alias != "" {
			buf.WriteString("#define " + re.Name + " " + re.Alias + "\n")
		} else {
			buf.WriteString("#define " + re.Name + " " + re.Value + "\n")
		}
		s.emittedDefines.Insert(re.Name)
	}
}

func (s *State) writeRequireCommands(buf *strings.Builder, commands []types.RequireCommand) {
	for _, rc := range commands {
		command, ok := s.reg.CommandByName(rc.Name)
		if !ok || s.emittedCommands.Has(command.Name) {
			continue
		}
		if command.Alias != "" {
			// Aliased commands are re-emitted as full declarations. A
			// typedef would be nicer, but the target can sit behind a
			// conditional compilation guard.
			if base, ok := s.reg.CommandByName(command.Alias); ok {
				writeCommandTypedef(buf, base, command.Name)
			}
		} else {
			writeCommandTypedef(buf, command, command.Name)
		}
		s.emittedCommands.Insert(command.Name)
	}
}

// writeDependencies emits the ordered dependency set of one feature or
// extension, category by category, honoring the global emitted filters.
func (s *State) writeDependencies(buf *strings.Builder, deps *resolver.DependencySet) {
	s.writeDefines(buf, deps)
	s.writeBasetypes(buf, deps)
	s.writeHandles(buf, deps)
	s.writeBitmasksAndEnums(buf, deps)
	s.writeStructsAndFuncPointers(buf, deps)
}

func (s *State) writeDefines(buf *strings.Builder, deps *resolver.DependencySet) {
	count := 0
	for _, ti := range deps.TypeIndices {
		t := &s.reg.Types[ti]
		if t.Category != types.CategoryDefine || s.emittedDefines.Has(t.Name) {
			continue
		}
		defineValue := CleanDefineValue(t.VerbatimValue)
		if defineValue == "" {
			continue
		}
		buf.WriteString(defineValue + "\n")
		count++
		s.emittedDefines.Insert(t.Name)
	}
	if count > 0 {
		buf.WriteString("\n")
	}

	// #define-style enum containers.
	count = 0
	for _, ei := range deps.EnumIndices {
		e := &s.reg.Enums[ei]
		if e.Type != "" || len(e.Items) == 0 || s.emittedDefines.Has(e.Items[0].Name) {
			continue
		}
		item := e.Items[0]
		if item.Alias != "" {
			buf.WriteString("#define " + item.Name + " " + item.Alias + "\n")
		} else {
			buf.WriteString("#define " + item.Name + " " + item.Value + "\n")
		}
		count++
		s.emittedDefines.Insert(item.Name)
	}
	if count > 0 {
		buf.WriteString("\n")
	}
}

func (s *State) writeBasetypes(buf *strings.Builder, deps *resolver.DependencySet) {
	count := 0
	for _, ti := range deps.TypeIndices {
		t := &s.reg.Types[ti]
		if t.Category != types.CategoryBasetype || s.emittedTypes.Has(t.Name) {
			continue
		}
		buf.WriteString(t.VerbatimValue + "\n")
		count++
		s.emittedTypes.Insert(t.Name)
	}
	if count > 0 {
		buf.WriteString("\n")
	}
}

func (s *State) writeHandles(buf *strings.Builder, deps *resolver.DependencySet) {
	count := 0
	for _, ti := range deps.TypeIndices {
		t := &s.reg.Types[ti]
		if t.Category != types.CategoryHandle || s.emittedTypes.Has(t.Name) {
			continue
		}
		if t.Alias != "" {
			buf.WriteString("typedef " + t.Alias + " " + t.Name + ";\n")
		} else {
			buf.WriteString(t.Type + "(" + t.Name + ")\n")
			count++
		}
		s.emittedTypes.Insert(t.Name)
	}
	if count > 0 {
		buf.WriteString("\n")
	}
}

// writeBitmasksAndEnums emits bitmask and enum types in one shared pass:
// an aliased bitmask can be typed against an enum (and vice versa), so
// splitting the categories would reorder declarations incorrectly.
func (s *State) writeBitmasksAndEnums(buf *strings.Builder, deps *resolver.DependencySet) {
	count := 0
	for _, ti := range deps.TypeIndices {
		t := &s.reg.Types[ti]
		if t.Category != types.CategoryBitmask && t.Category != types.CategoryEnum {
			continue
		}
		if s.emittedTypes.Has(t.Name) {
			continue
		}

		if t.Alias != "" {
			buf.WriteString("typedef " + t.Alias + " " + t.Name + ";\n")
			s.emittedTypes.Insert(t.Name)
			continue
		}

		if t.Category == types.CategoryBitmask {
			if t.Requires != "" || t.Bitvalues != "" {
				containerName := t.Requires
				if containerName == "" {
					containerName = t.Bitvalues
				}
				if container, ok := s.reg.EnumByName(containerName); ok {
					s.writeFlagBits(buf, container, t)
					count++
				}
			}
			buf.WriteString("typedef " + t.Type + " " + t.Name + ";\n")
		}

		if t.Category == types.CategoryEnum {
			if container, ok := s.reg.EnumByName(t.Name); ok && container.Type == "enum" {
				s.writeEnum(buf, container)
				count++
			}
		}

		s.emittedTypes.Insert(t.Name)
	}
	if count > 0 {
		buf.WriteString("\n")
	}
}

// writeFlagBits renders the FlagBits container referenced by a bitmask
// type. Containers backed by a 64-bit integer cannot use a C enum, so
// their items become static const values of the typedef'd flags type,
// with aliased items evaluated down to concrete values (a const
// initializer cannot reference another const in C89).
func (s *State) writeFlagBits(buf *strings.Builder, container *types.EnumContainer, t *types.Type) {
	use64 := t.Bitvalues != ""

	buf.WriteString("\n")

	var prefix string
	if use64 {
		buf.WriteString("typedef " + t.Type + " " + container.Name + ";\n")
		prefix = "static const " + container.Name + " "
	} else {
		buf.WriteString("typedef enum\n{\n")
		prefix = "    "
	}

	written := sets.New[string]()
	valueCount := 0

	writeSeparator := func() {
		if !use64 && valueCount > 0 {
			buf.WriteString(",\n")
		}
	}
	finishLine := func() {
		if use64 {
			buf.WriteString(";\n")
		}
	}

	for i := range container.Items {
		item := container.Items[i]
		writeSeparator()

		resolved := item
		if use64 && item.Alias != "" {
			if found, ok := s.reg.FindEnumValue(item.Alias); ok {
				resolved = found
			}
		}

		switch {
		case resolved.Bitpos != "":
			buf.WriteString(prefix + item.Name + " = " + BitposHex(atoi(resolved.Bitpos), container.Name))
		case resolved.Alias != "":
			buf.WriteString(prefix + item.Name + " = " + resolved.Alias)
		default:
			buf.WriteString(prefix + item.Name + " = " + resolved.Value)
		}
		finishLine()

		written.Insert(item.Name)
		valueCount++
	}

	// Items added by features and extensions, non-aliased first, aliases
	// at the bottom.
	appendItem := func(re *types.RequireEnum) {
		writeSeparator()
		if re.Bitpos != "" {
			buf.WriteString(prefix + re.Name + " = " + BitposHex(atoi(re.Bitpos), re.Extends))
		} else {
			buf.WriteString(prefix + re.Name + " = " + re.Value)
		}
		finishLine()
		written.Insert(re.Name)
		valueCount++
	}
	appendAliasedItem := func(re *types.RequireEnum) {
		writeSeparator()
		if use64 {
			if resolved, ok := s.reg.FindEnumValue(re.Alias); ok {
				if resolved.Bitpos != "" {
					buf.WriteString(prefix + re.Name + " = " + BitposHex(atoi(resolved.Bitpos), re.Extends))
				} else {
					buf.WriteString(prefix + re.Name + " = " + resolved.Value)
				}
				buf.WriteString(";\n")
			} else {
				buf.WriteString(prefix + re.Name + " = " + re.Alias + ";\n")
			}
		} else {
			buf.WriteString(prefix + re.Name + " = " + re.Alias)
		}
		written.Insert(re.Name)
		valueCount++
	}

	s.eachFeatureRequireEnum(container.Name, func(re *types.RequireEnum) {
		if re.Alias == "" && !written.Has(re.Name) {
			appendItem(re)
		}
	})
	s.eachExtensionRequireEnum(container.Name, func(re *types.RequireEnum, _ *types.Extension) {
		if re.Alias == "" && !written.Has(re.Name) {
			appendItem(re)
		}
	})
	s.eachFeatureRequireEnum(container.Name, func(re *types.RequireEnum) {
		if re.Alias != "" && !written.Has(re.Name) {
			appendAliasedItem(re)
		}
	})
	s.eachExtensionRequireEnum(container.Name, func(re *types.RequireEnum, _ *types.Extension) {
		if re.Alias != "" && !written.Has(re.Name) {
			appendAliasedItem(re)
		}
	})

	if !use64 {
		if valueCount > 0 {
			buf.WriteString(",\n")
		}
		buf.WriteString("    " + MaxEnumToken(s.reg, container.Name) + " = 0x7FFFFFFF")
		buf.WriteString("\n} " + container.Name + ";\n")
	}
}

// writeEnum renders a regular 32-bit enum container as an anonymous enum
// typedef, appending items added by later features and extensions and
// terminating with the synthesized _MAX_ENUM value.
func (s *State) writeEnum(buf *strings.Builder, container *types.EnumContainer) {
	written := sets.New[string]()

	buf.WriteString("typedef enum\n{\n")
	for i, item := range container.Items {
		if i > 0 {
			buf.WriteString(",\n")
		}
		if item.Alias != "" {
			buf.WriteString("    " + item.Name + " = " + item.Alias)
		} else {
			buf.WriteString("    " + item.Name + " = " + item.Value)
		}
		written.Insert(item.Name)
	}

	// Two passes so aliased values collect at the bottom of the enum.
	s.eachFeatureRequireEnum(container.Name, func(re *types.RequireEnum) {
		if re.Alias != "" || written.Has(re.Name) {
			return
		}
		buf.WriteString(",\n")
		if re.Value != "" {
			buf.WriteString("    " + re.Name + " = " + re.Value)
		} else {
			buf.WriteString("    " + re.Name + " = " + ExtensionEnumValue(re, re.ExtNumber))
		}
		written.Insert(re.Name)
	})
	s.eachExtensionRequireEnum(container.Name, func(re *types.RequireEnum, ext *types.Extension) {
		if re.Alias != "" || written.Has(re.Name) {
			return
		}
		buf.WriteString(",\n")
		if re.Value != "" {
			buf.WriteString("    " + re.Name + " = " + re.Value)
		} else {
			extnumber := re.ExtNumber
			if extnumber == "" {
				extnumber = ext.Number
			}
			buf.WriteString("    " + re.Name + " = " + ExtensionEnumValue(re, extnumber))
		}
		written.Insert(re.Name)
	})

	s.eachFeatureRequireEnum(container.Name, func(re *types.RequireEnum) {
		if re.Alias == "" || written.Has(re.Name) {
			return
		}
		buf.WriteString(",\n    " + re.Name + " = " + re.Alias)
		written.Insert(re.Name)
	})
	s.eachExtensionRequireEnum(container.Name, func(re *types.RequireEnum, _ *types.Extension) {
		if re.Alias == "" || written.Has(re.Name) {
			return
		}
		buf.WriteString(",\n    " + re.Name + " = " + re.Alias)
		written.Insert(re.Name)
	})

	buf.WriteString(",\n")
	buf.WriteString("    " + MaxEnumToken(s.reg, container.Name) + " = 0x7FFFFFFF")
	buf.WriteString("\n} " + container.Name + ";\n\n")
}

// writeStructsAndFuncPointers emits structs, unions and funcpointers in
// one shared pass. A struct can hold a callback member of a funcpointer
// type whose parameters point back at the struct; keeping both kinds in
// the same iteration preserves the resolver's cycle-safe order.
func (s *State) writeStructsAndFuncPointers(buf *strings.Builder, deps *resolver.DependencySet) {
	wasFuncPointerLast := false
	count := 0
	for _, ti := range deps.TypeIndices {
		t := &s.reg.Types[ti]
		if s.emittedTypes.Has(t.Name) {
			continue
		}

		if t.Category == types.CategoryStruct || t.Category == types.CategoryUnion {
			if t.Alias != "" {
				buf.WriteString("typedef " + t.Alias + " " + t.Name + ";\n\n")
			} else {
				if wasFuncPointerLast {
					buf.WriteString("\n")
				}
				buf.WriteString("typedef " + t.Category + " " + t.Name + "\n{\n")
				for i := range t.Members {
					buf.WriteString("    " + t.Members[i].TypeC + " " + t.Members[i].NameC + ";\n")
				}
				buf.WriteString("} " + t.Name + ";\n\n")
				count++
			}
			s.emittedTypes.Insert(t.Name)
			wasFuncPointerLast = false
		}

		if t.Category == types.CategoryFuncPointer {
			if t.Alias != "" {
				// Same beta-extension caveat as aliased commands: forward
				// the full declaration rather than a typedef.
				if base, ok := s.reg.TypeByName(t.Alias); ok {
					writeFuncPointerTypedef(buf, &base.FuncPointer, t.Name)
					count++
				}
			} else {
				writeFuncPointerTypedef(buf, &t.FuncPointer, t.Name)
				count++
			}
			s.emittedTypes.Insert(t.Name)
			wasFuncPointerLast = true
		}
	}
	if count > 0 {
		buf.WriteString("\n")
	}
}

// eachFeatureRequireEnum visits every require enum across all features
// that extends the named container.
func (s *State) eachFeatureRequireEnum(container string, fn func(*types.RequireEnum)) {
	for f := range s.reg.Features {
		for r := range s.reg.Features[f].Requires {
			require := &s.reg.Features[f].Requires[r]
			for e := range require.Enums {
				if require.Enums[e].Extends == container {
					fn(&require.Enums[e])
				}
			}
		}
	}
}

// eachExtensionRequireEnum visits every require enum across all
// extensions that extends the named container.
func (s *State) eachExtensionRequireEnum(container string, fn func(*types.RequireEnum, *types.Extension)) {
	for x := range s.reg.Extensions {
		ext := &s.reg.Extensions[x]
		for r := range ext.Requires {
			require := &ext.Requires[r]
			for e := range require.Enums {
				if require.Enums[e].Extends == container {
					fn(&require.Enums[e], ext)
				}
			}
		}
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
