// Package resolver computes, for each feature and extension, the ordered
// transitive closure of types and enum containers it requires, such that
// every entry can be emitted in list order without forward references.
package resolver

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/vkbind/vkbgen/pkg/types"
)

// DependencySet is the resolved closure of one feature or extension.
// TypeIndices and EnumIndices index into the registry's Types and Enums
// slices; a referent always appears at a lower index than anything that
// depends on it.
type DependencySet struct {
	Kind        string // "feature" or "extension"
	Name        string
	TypeIndices []int
	EnumIndices []int

	// Unresolved records referenced names with no declaring entity. The
	// pipeline reports these as warnings, or as errors in strict mode.
	Unresolved []error
}

// ResolveFeature computes the dependency closure of a feature.
func ResolveFeature(reg *types.Registry, feature *types.Feature) *DependencySet {
	w := newWalker(reg)
	for i := range feature.Requires {
		w.addRequire(&feature.Requires[i], feature.Name)
	}
	return w.finish("feature", feature.Name)
}

// ResolveExtension computes the dependency closure of an extension.
func ResolveExtension(reg *types.Registry, extension *types.Extension) *DependencySet {
	w := newWalker(reg)
	for i := range extension.Requires {
		w.addRequire(&extension.Requires[i], extension.Name)
	}
	return w.finish("extension", extension.Name)
}

// walker performs the depth-first post-order walk. A node is marked on
// entry so self-references and struct/funcpointer cycles terminate, and
// appended to the output list only once its subtree completes.
type walker struct {
	reg *types.Registry

	typeIndices []int
	enumIndices []int
	typeSeen    sets.Set[string]
	enumSeen    sets.Set[string]

	unresolved []error
}

func newWalker(reg *types.Registry) *walker {
	return &walker{
		reg:      reg,
		typeSeen: sets.New[string](),
		enumSeen: sets.New[string](),
	}
}

func (w *walker) finish(kind, name string) *DependencySet {
	return &DependencySet{
		Kind:        kind,
		Name:        name,
		TypeIndices: w.typeIndices,
		EnumIndices: w.enumIndices,
		Unresolved:  w.unresolved,
	}
}

func (w *walker) addRequire(require *types.Require, referrer string) {
	for _, rt := range require.Types {
		w.addType(rt.Name, referrer)
	}
	for _, re := range require.Enums {
		// Only #define-style containers resolve here; entries that extend
		// another container reference an item, not a container, and are
		// picked up during enum emission.
		w.addEnumIfPresent(re.Name)
	}
	for _, rc := range require.Commands {
		w.addCommand(rc.Name, referrer)
	}
}

func (w *walker) addType(name, referrer string) {
	if name == "" || w.typeSeen.Has(name) {
		return
	}

	idx, ok := w.reg.TypeIndex(name)
	if !ok {
		w.unresolved = append(w.unresolved, &types.DependencyError{Name: name, Referrer: referrer})
		return
	}
	w.typeSeen.Insert(name)

	t := &w.reg.Types[idx]

	// An aliased type depends on its target, which must be declared first.
	if t.Alias != "" {
		w.addType(t.Alias, t.Name)
	}

	switch t.Category {
	case types.CategoryDefine, types.CategoryBasetype, types.CategoryBitmask,
		types.CategoryHandle, types.CategoryEnum:
		if t.Type != "" {
			w.addType(t.Type, t.Name)
		}
		if t.Requires != "" {
			w.addType(t.Requires, t.Name)
		}
		if t.Bitvalues != "" {
			w.addType(t.Bitvalues, t.Name)
		}
	case types.CategoryStruct, types.CategoryUnion:
		for i := range t.Members {
			member := &t.Members[i]
			if member.TypeName == name {
				// Self-reference through a pointer member.
				continue
			}
			if member.ArrayEnum != "" {
				w.addEnum(member.ArrayEnum, t.Name)
			}
			w.addType(member.TypeName, t.Name)
		}
	case types.CategoryFuncPointer:
		w.addType(t.FuncPointer.ReturnType, t.Name)
		for i := range t.FuncPointer.Params {
			param := &t.FuncPointer.Params[i]
			if param.ArrayEnum != "" {
				w.addEnum(param.ArrayEnum, t.Name)
			}
			w.addType(param.TypeName, t.Name)
		}
	case types.CategoryNone:
		if t.Requires != "" {
			w.addType(t.Requires, t.Name)
		}
		if t.Bitvalues != "" {
			w.addType(t.Bitvalues, t.Name)
		}
	}

	w.typeIndices = append(w.typeIndices, idx)
}

func (w *walker) addEnum(name, referrer string) {
	if name == "" || w.enumSeen.Has(name) {
		return
	}
	idx, ok := w.reg.EnumIndex(name)
	if !ok {
		w.unresolved = append(w.unresolved, &types.DependencyError{Name: name, Referrer: referrer})
		return
	}
	w.enumSeen.Insert(name)
	w.enumIndices = append(w.enumIndices, idx)
}

func (w *walker) addEnumIfPresent(name string) {
	if name == "" || w.enumSeen.Has(name) {
		return
	}
	idx, ok := w.reg.EnumIndex(name)
	if !ok {
		return
	}
	w.enumSeen.Insert(name)
	w.enumIndices = append(w.enumIndices, idx)
}

func (w *walker) addCommand(name, referrer string) {
	command, ok := w.reg.CommandByName(name)
	if !ok {
		w.unresolved = append(w.unresolved, &types.DependencyError{Name: name, Referrer: referrer})
		return
	}

	w.addType(command.ReturnType, command.Name)
	for i := range command.Parameters {
		w.addType(command.Parameters[i].TypeName, command.Name)
	}
}
