// Package types provides the in-memory model of the Vulkan API registry
// shared by the parser, resolver and emitter.
package types

// Type categories as they appear in the registry's category attribute.
// A type with no category attribute is stored with CategoryNone; it can
// still participate in dependency closures as a forward declaration.
const (
	CategoryNone        = ""
	CategoryInclude     = "include"
	CategoryDefine      = "define"
	CategoryBasetype    = "basetype"
	CategoryHandle      = "handle"
	CategoryBitmask     = "bitmask"
	CategoryEnum        = "enum"
	CategoryStruct      = "struct"
	CategoryUnion       = "union"
	CategoryFuncPointer = "funcpointer"
)

// Platform describes an entry of the <platforms> section. Protect is the
// preprocessor macro gating that platform's declarations.
type Platform struct {
	Name    string
	Protect string
}

// Tag is a vendor suffix entry from the <tags> section (e.g. "KHR").
type Tag struct {
	Name    string
	Author  string
	Contact string
}

// Member is a struct/union member or a function parameter. TypeC holds the
// full C type expression assembled from the element's mixed content, while
// TypeName is the bare identifier inside the <type> child. ArrayEnum names
// the enum used as a fixed array dimension, if any.
type Member struct {
	TypeC     string
	TypeName  string
	NameC     string
	Name      string
	ArrayEnum string

	// Attributes carried through from the registry.
	Comment        string
	Values         string
	Optional       string
	NoAutoValidity string
	Len            string
	ExternSync     string
}

// FuncPointer holds the decoded pieces of a funcpointer typedef.
type FuncPointer struct {
	Name       string
	ReturnType string
	Params     []Member
}

// Type is one entry of the <types> section. Exactly which fields are
// meaningful depends on Category. When Alias is set the type is a forwarded
// alias and everything except Name, Category and Alias is empty.
type Type struct {
	Name      string
	Category  string
	Alias     string
	Requires  string
	Bitvalues string
	Parent    string

	// Type is set by the inner <type> child (handle macro name, bitmask
	// backing type, basetype target).
	Type string

	ReturnedOnly string

	// Members is populated for struct and union categories.
	Members []Member

	// FuncPointer is populated for the funcpointer category.
	FuncPointer FuncPointer

	// VerbatimValue is free-form C source captured from define and
	// basetype elements.
	VerbatimValue string
}

// EnumItem is a single value within an enum container. Exactly one of
// Alias, Value and Bitpos is meaningful.
type EnumItem struct {
	Name   string
	Alias  string
	Value  string
	Bitpos string
}

// EnumContainer is one <enums> block. Containers with Type == "" represent
// standalone #define-style enums; they always carry exactly one item.
type EnumContainer struct {
	Name  string
	Type  string
	Items []EnumItem
}

// Command is one <command> entry. Aliased commands carry only Name and
// Alias.
type Command struct {
	Name         string
	Alias        string
	ReturnTypeC  string
	ReturnType   string
	Parameters   []Member
	SuccessCodes string
	ErrorCodes   string
}

// RequireType references a type by name from a <require> block.
type RequireType struct {
	Name string
}

// RequireEnum references or extends an enum from a <require> block. When
// Extends is set the entry adds an item to a previously declared container,
// with the value computed from Value, Bitpos, or Offset/ExtNumber/Dir.
type RequireEnum struct {
	Name      string
	Alias     string
	Value     string
	Extends   string
	Bitpos    string
	ExtNumber string
	Offset    string
	Comment   string
	Dir       string
}

// RequireCommand references a command by name from a <require> block.
type RequireCommand struct {
	Name string
}

// Require is one <require> block inside a feature or extension.
type Require struct {
	Feature   string
	Extension string
	Comment   string
	Types     []RequireType
	Enums     []RequireEnum
	Commands  []RequireCommand
}

// Feature is a Vulkan version block (e.g. VK_VERSION_1_2).
type Feature struct {
	API      string
	Name     string
	Number   string
	Comment  string
	Requires []Require
}

// Extension is a <extension> block. Extensions with supported="disabled"
// or platform="mir" are never added to the registry.
type Extension struct {
	Name         string
	Number       string
	Type         string
	RequiresAttr string
	Platform     string
	Author       string
	Contact      string
	Supported    string
	PromotedTo   string
	DeprecatedBy string
	Requires     []Require
}

// Registry is the complete parsed model. It is built once by the parser
// and treated as read-only afterwards, except for the extension reorder
// performed before dependency resolution.
type Registry struct {
	Platforms  []Platform
	Tags       []Tag
	Types      []Type
	Enums      []EnumContainer
	Commands   []Command
	Features   []Feature
	Extensions []Extension

	typeIndex    map[string]int
	enumIndex    map[string]int
	commandIndex map[string]int
}

// NewRegistry returns an empty registry ready for population.
func NewRegistry() *Registry {
	return &Registry{
		typeIndex:    make(map[string]int),
		enumIndex:    make(map[string]int),
		commandIndex: make(map[string]int),
	}
}

// AddType appends a type. The first registration of a name wins, matching
// the registry's own duplicate-tolerant layout.
func (r *Registry) AddType(t Type) {
	r.Types = append(r.Types, t)
	if _, ok := r.typeIndex[t.Name]; !ok {
		r.typeIndex[t.Name] = len(r.Types) - 1
	}
}

// AddEnumContainer appends an enum container.
func (r *Registry) AddEnumContainer(e EnumContainer) {
	r.Enums = append(r.Enums, e)
	if _, ok := r.enumIndex[e.Name]; !ok {
		r.enumIndex[e.Name] = len(r.Enums) - 1
	}
}

// AddCommand appends a command.
func (r *Registry) AddCommand(c Command) {
	r.Commands = append(r.Commands, c)
	if _, ok := r.commandIndex[c.Name]; !ok {
		r.commandIndex[c.Name] = len(r.Commands) - 1
	}
}

// TypeIndex returns the index of the named type.
func (r *Registry) TypeIndex(name string) (int, bool) {
	i, ok := r.typeIndex[name]
	return i, ok
}

// TypeByName returns the named type.
func (r *Registry) TypeByName(name string) (*Type, bool) {
	if i, ok := r.typeIndex[name]; ok {
		return &r.Types[i], true
	}
	return nil, false
}

// EnumIndex returns the index of the named enum container.
func (r *Registry) EnumIndex(name string) (int, bool) {
	i, ok := r.enumIndex[name]
	return i, ok
}

// EnumByName returns the named enum container.
func (r *Registry) EnumByName(name string) (*EnumContainer, bool) {
	if i, ok := r.enumIndex[name]; ok {
		return &r.Enums[i], true
	}
	return nil, false
}

// CommandIndex returns the index of the named command.
func (r *Registry) CommandIndex(name string) (int, bool) {
	i, ok := r.commandIndex[name]
	return i, ok
}

// CommandByName returns the named command.
func (r *Registry) CommandByName(name string) (*Command, bool) {
	if i, ok := r.commandIndex[name]; ok {
		return &r.Commands[i], true
	}
	return nil, false
}

// ExtensionIndex returns the index of the named extension. Extensions are
// looked up linearly because the reorder pass permutes the slice.
func (r *Registry) ExtensionIndex(name string) (int, bool) {
	for i := range r.Extensions {
		if r.Extensions[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// FindEnumValue locates the concrete value of a named enum item, following
// alias chains until an item with a Value or Bitpos is reached. The search
// covers the base containers first, then items added by features, then
// items added by extensions.
func (r *Registry) FindEnumValue(name string) (EnumItem, bool) {
	for i := range r.Enums {
		for _, item := range r.Enums[i].Items {
			if item.Name != name {
				continue
			}
			if item.Alias == "" {
				return item, true
			}
			return r.FindEnumValue(item.Alias)
		}
	}

	for i := range r.Features {
		if item, ok := r.findRequireEnumValue(r.Features[i].Requires, name); ok {
			return item, true
		}
	}
	for i := range r.Extensions {
		if item, ok := r.findRequireEnumValue(r.Extensions[i].Requires, name); ok {
			return item, true
		}
	}

	return EnumItem{}, false
}

func (r *Registry) findRequireEnumValue(requires []Require, name string) (EnumItem, bool) {
	for _, req := range requires {
		for _, re := range req.Enums {
			if re.Name != name {
				continue
			}
			if re.Alias == "" {
				return EnumItem{Name: re.Name, Value: re.Value, Bitpos: re.Bitpos}, true
			}
			return r.FindEnumValue(re.Alias)
		}
	}
	return EnumItem{}, false
}

// IsHandleChildOf reports whether child is a handle whose parent chain
// reaches parent. A type is never a child of itself.
func (r *Registry) IsHandleChildOf(parent, child string) bool {
	if parent == child {
		return false
	}
	t, ok := r.TypeByName(child)
	if !ok || t.Category != CategoryHandle {
		return false
	}
	if t.Parent == parent {
		return true
	}
	if t.Parent == "" {
		return false
	}
	return r.IsHandleChildOf(parent, t.Parent)
}

// ExtractTag returns the vendor tag suffix of a name, or "" when the name
// is untagged.
func (r *Registry) ExtractTag(name string) string {
	for _, tag := range r.Tags {
		if len(name) > len(tag.Name) && name[len(name)-len(tag.Name):] == tag.Name {
			return tag.Name
		}
	}
	return ""
}
