// Package parser turns the registry XML DOM into the in-memory model.
// It fails fast on structural problems and performs no recovery.
package parser

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/vkbind/vkbgen/pkg/types"
)

// Parse reads the registry document from raw XML bytes.
func Parse(data []byte) (*types.Registry, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrParse, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, types.NewParseError("/", "document has no root element")
	}
	if root.Tag != "registry" {
		return nil, types.NewParseError(elementPath(root), "expected root element %q, got %q", "registry", root.Tag)
	}

	return ParseRegistry(root)
}

// ParseRegistry populates a registry model from the <registry> element.
func ParseRegistry(root *etree.Element) (*types.Registry, error) {
	reg := types.NewRegistry()

	for _, el := range root.ChildElements() {
		var err error
		switch el.Tag {
		case "platforms":
			err = parsePlatforms(reg, el)
		case "tags":
			err = parseTags(reg, el)
		case "types":
			err = parseTypes(reg, el)
		case "enums":
			err = parseEnums(reg, el)
		case "commands":
			err = parseCommands(reg, el)
		case "feature":
			err = parseFeature(reg, el)
		case "extensions":
			err = parseExtensions(reg, el)
		}
		if err != nil {
			return nil, err
		}
	}

	return reg, nil
}

func parsePlatforms(reg *types.Registry, el *etree.Element) error {
	for _, child := range el.ChildElements() {
		if child.Tag != "platform" {
			continue
		}
		platform := types.Platform{
			Name:    child.SelectAttrValue("name", ""),
			Protect: child.SelectAttrValue("protect", ""),
		}
		if platform.Name == "" {
			return types.NewParseError(elementPath(child), "platform is missing the name attribute")
		}
		if platform.Protect == "" {
			return types.NewParseError(elementPath(child), "platform %q is missing the protect attribute", platform.Name)
		}

		// Vulkan dropped Mir support; the registry still carries it.
		if platform.Name == "mir" {
			continue
		}

		reg.Platforms = append(reg.Platforms, platform)
	}
	return nil
}

func parseTags(reg *types.Registry, el *etree.Element) error {
	for _, child := range el.ChildElements() {
		if child.Tag != "tag" {
			continue
		}
		tag := types.Tag{
			Name:    child.SelectAttrValue("name", ""),
			Author:  child.SelectAttrValue("author", ""),
			Contact: child.SelectAttrValue("contact", ""),
		}
		if tag.Name == "" {
			return types.NewParseError(elementPath(child), "tag is missing the name attribute")
		}
		reg.Tags = append(reg.Tags, tag)
	}
	return nil
}

func parseTypes(reg *types.Registry, el *etree.Element) error {
	for _, child := range el.ChildElements() {
		if child.Tag == "comment" {
			continue
		}
		if child.Tag != "type" {
			continue
		}

		t := types.Type{
			Name:         strings.TrimSpace(child.SelectAttrValue("name", "")),
			Category:     strings.TrimSpace(child.SelectAttrValue("category", "")),
			Alias:        strings.TrimSpace(child.SelectAttrValue("alias", "")),
			Requires:     strings.TrimSpace(child.SelectAttrValue("requires", "")),
			Bitvalues:    strings.TrimSpace(child.SelectAttrValue("bitvalues", "")),
			ReturnedOnly: child.SelectAttrValue("returnedonly", ""),
			Parent:       child.SelectAttrValue("parent", ""),
		}

		switch t.Category {
		case types.CategoryFuncPointer:
			if err := parseFuncPointerType(&t, child); err != nil {
				return err
			}
		case types.CategoryStruct, types.CategoryUnion:
			for _, memberEl := range child.ChildElements() {
				if memberEl.Tag != "member" {
					continue
				}
				t.Members = append(t.Members, parseStructMember(memberEl))
			}
		case types.CategoryDefine, types.CategoryBasetype:
			parseVerbatimType(&t, child)
		case types.CategoryBitmask, types.CategoryHandle:
			for _, inner := range child.ChildElements() {
				switch inner.Tag {
				case "type":
					t.Type = inner.Text()
				case "name":
					t.Name = inner.Text()
				}
			}
		}

		if t.Name == "" {
			return types.NewParseError(elementPath(child), "type has neither a name attribute nor a name child")
		}

		reg.AddType(t)
	}
	return nil
}

// parseFuncPointerType decodes a funcpointer typedef. The declaration is
// free-form C split across child nodes: leading text carrying the return
// type, the <name> child, then the parameter list broken over text and
// <type> nodes.
func parseFuncPointerType(t *types.Type, el *etree.Element) error {
	nameIdx := -1
	for i, tok := range el.Child {
		if node, ok := tok.(*etree.Element); ok && node.Tag == "name" {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return types.NewParseError(elementPath(el), "funcpointer has no name child")
	}

	var lead string
	for _, tok := range el.Child[:nameIdx] {
		if node, ok := tok.(*etree.CharData); ok {
			lead += node.Data
		}
	}
	t.FuncPointer.ReturnType = funcPointerReturnType(lead)

	nameEl := el.Child[nameIdx].(*etree.Element)
	t.FuncPointer.Name = nameEl.Text()
	t.Name = t.FuncPointer.Name

	raw := flattenFuncPointerParams(el.Child[nameIdx+1:])
	for _, param := range splitFuncPointerParams(raw) {
		if member, ok := parseFuncPointerParam(param); ok {
			t.FuncPointer.Params = append(t.FuncPointer.Params, member)
		}
	}

	return nil
}

func parseStructMember(el *etree.Element) types.Member {
	pair := parseTypeNamePair(el)

	member := types.Member{
		TypeC:          pair.TypeC,
		TypeName:       pair.TypeName,
		NameC:          pair.NameC,
		Name:           pair.Name,
		ArrayEnum:      pair.ArrayEnum,
		Values:         el.SelectAttrValue("values", ""),
		Optional:       el.SelectAttrValue("optional", ""),
		NoAutoValidity: el.SelectAttrValue("noautovalidity", ""),
		Len:            el.SelectAttrValue("len", ""),
	}

	for _, child := range el.ChildElements() {
		if child.Tag == "comment" {
			member.Comment = strings.TrimSpace(child.Text())
		}
	}

	return member
}

// parseVerbatimType captures define and basetype bodies as C source,
// keeping a single space between element-sourced fragments so tokens do
// not fuse.
func parseVerbatimType(t *types.Type, el *etree.Element) {
	for _, tok := range el.Child {
		switch node := tok.(type) {
		case *etree.Element:
			switch node.Tag {
			case "name":
				t.Name = node.Text()
			case "type":
				t.Type = node.Text()
			}
			if len(t.VerbatimValue) > 0 && t.VerbatimValue[len(t.VerbatimValue)-1] != ' ' {
				t.VerbatimValue += " "
			}
			t.VerbatimValue += node.Text()
		case *etree.CharData:
			t.VerbatimValue += node.Data
		}
	}
}

func parseEnums(reg *types.Registry, el *etree.Element) error {
	container := types.EnumContainer{
		Name: strings.TrimSpace(el.SelectAttrValue("name", "")),
		Type: strings.TrimSpace(el.SelectAttrValue("type", "")),
	}

	for _, child := range el.ChildElements() {
		if child.Tag != "enum" {
			continue
		}

		item := types.EnumItem{
			Name:   strings.TrimSpace(child.SelectAttrValue("name", "")),
			Alias:  strings.TrimSpace(child.SelectAttrValue("alias", "")),
			Value:  strings.TrimSpace(child.SelectAttrValue("value", "")),
			Bitpos: strings.TrimSpace(child.SelectAttrValue("bitpos", "")),
		}
		if item.Name == "" {
			return types.NewParseError(elementPath(child), "enum item is missing the name attribute")
		}

		if container.Type == "" {
			// An <enums> block with no type holds #define-style constants.
			// Each item becomes its own single-item container keyed by the
			// item name.
			reg.AddEnumContainer(types.EnumContainer{
				Name:  item.Name,
				Items: []types.EnumItem{item},
			})
			continue
		}

		container.Items = append(container.Items, item)
	}

	if container.Type != "" {
		reg.AddEnumContainer(container)
	}
	return nil
}

func parseCommands(reg *types.Registry, el *etree.Element) error {
	for _, child := range el.ChildElements() {
		if child.Tag != "command" {
			continue
		}
		command, err := parseCommand(child)
		if err != nil {
			return err
		}
		reg.AddCommand(command)
	}
	return nil
}

func parseCommand(el *etree.Element) (types.Command, error) {
	command := types.Command{
		SuccessCodes: el.SelectAttrValue("successcodes", ""),
		ErrorCodes:   el.SelectAttrValue("errorcodes", ""),
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "proto":
			pair := parseTypeNamePair(child)
			command.ReturnTypeC = pair.TypeC
			command.ReturnType = pair.TypeName
			command.Name = pair.Name
		case "param":
			pair := parseTypeNamePair(child)
			command.Parameters = append(command.Parameters, types.Member{
				TypeC:      pair.TypeC,
				TypeName:   pair.TypeName,
				NameC:      pair.NameC,
				Name:       pair.Name,
				ArrayEnum:  pair.ArrayEnum,
				Optional:   child.SelectAttrValue("optional", ""),
				ExternSync: child.SelectAttrValue("externsync", ""),
			})
		}
	}

	// Aliased commands carry their own name in the name attribute along
	// with the alias attribute, and no proto.
	if name := el.SelectAttrValue("name", ""); name != "" {
		command.Name = name
	}
	command.Alias = el.SelectAttrValue("alias", "")

	if command.Name == "" {
		return types.Command{}, types.NewParseError(elementPath(el), "command has neither a proto name nor a name attribute")
	}

	return command, nil
}

func parseRequire(el *etree.Element) types.Require {
	require := types.Require{
		Feature:   strings.TrimSpace(el.SelectAttrValue("feature", "")),
		Extension: strings.TrimSpace(el.SelectAttrValue("extension", "")),
		Comment:   el.SelectAttrValue("comment", ""),
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "type":
			require.Types = append(require.Types, types.RequireType{
				Name: strings.TrimSpace(child.SelectAttrValue("name", "")),
			})
		case "enum":
			require.Enums = append(require.Enums, types.RequireEnum{
				Name:      strings.TrimSpace(child.SelectAttrValue("name", "")),
				Alias:     strings.TrimSpace(child.SelectAttrValue("alias", "")),
				Value:     strings.TrimSpace(child.SelectAttrValue("value", "")),
				Extends:   strings.TrimSpace(child.SelectAttrValue("extends", "")),
				Bitpos:    strings.TrimSpace(child.SelectAttrValue("bitpos", "")),
				ExtNumber: strings.TrimSpace(child.SelectAttrValue("extnumber", "")),
				Offset:    strings.TrimSpace(child.SelectAttrValue("offset", "")),
				Comment:   child.SelectAttrValue("comment", ""),
				Dir:       strings.TrimSpace(child.SelectAttrValue("dir", "")),
			})
		case "command":
			require.Commands = append(require.Commands, types.RequireCommand{
				Name: strings.TrimSpace(child.SelectAttrValue("name", "")),
			})
		}
	}

	return require
}

func parseFeature(reg *types.Registry, el *etree.Element) error {
	feature := types.Feature{
		API:     strings.TrimSpace(el.SelectAttrValue("api", "")),
		Name:    strings.TrimSpace(el.SelectAttrValue("name", "")),
		Number:  strings.TrimSpace(el.SelectAttrValue("number", "")),
		Comment: el.SelectAttrValue("comment", ""),
	}
	if feature.Name == "" {
		return types.NewParseError(elementPath(el), "feature is missing the name attribute")
	}

	for _, child := range el.ChildElements() {
		if child.Tag == "require" {
			feature.Requires = append(feature.Requires, parseRequire(child))
		}
	}

	reg.Features = append(reg.Features, feature)
	return nil
}

func parseExtensions(reg *types.Registry, el *etree.Element) error {
	for _, child := range el.ChildElements() {
		if child.Tag != "extension" {
			continue
		}
		if err := parseExtension(reg, child); err != nil {
			return err
		}
	}
	return nil
}

func parseExtension(reg *types.Registry, el *etree.Element) error {
	supported := el.SelectAttrValue("supported", "")
	if supported == "" {
		return types.NewParseError(elementPath(el), "extension is missing the supported attribute")
	}
	if supported == "disabled" {
		return nil
	}

	platform := strings.TrimSpace(el.SelectAttrValue("platform", ""))
	if platform == "mir" {
		return nil
	}

	extension := types.Extension{
		Name:         strings.TrimSpace(el.SelectAttrValue("name", "")),
		Number:       strings.TrimSpace(el.SelectAttrValue("number", "")),
		Type:         strings.TrimSpace(el.SelectAttrValue("type", "")),
		RequiresAttr: strings.TrimSpace(el.SelectAttrValue("requires", "")),
		Platform:     platform,
		Author:       strings.TrimSpace(el.SelectAttrValue("author", "")),
		Contact:      strings.TrimSpace(el.SelectAttrValue("contact", "")),
		Supported:    strings.TrimSpace(supported),
		PromotedTo:   strings.TrimSpace(el.SelectAttrValue("promotedto", "")),
		DeprecatedBy: strings.TrimSpace(el.SelectAttrValue("deprecatedby", "")),
	}
	if extension.Name == "" {
		return types.NewParseError(elementPath(el), "extension is missing the name attribute")
	}

	for _, child := range el.ChildElements() {
		if child.Tag == "require" {
			extension.Requires = append(extension.Requires, parseRequire(child))
		}
	}

	reg.Extensions = append(reg.Extensions, extension)

	// Deprecation adjustment: an earlier extension deprecated by this one
	// moves to the end so its alias typedefs follow the declarations they
	// alias.
	for i := range reg.Extensions {
		if reg.Extensions[i].DeprecatedBy == extension.Name {
			moved := reg.Extensions[i]
			reg.Extensions = append(reg.Extensions[:i], reg.Extensions[i+1:]...)
			reg.Extensions = append(reg.Extensions, moved)
			break
		}
	}

	return nil
}

// elementPath renders a positional identifier for error reporting, e.g.
// "registry/types/type[name=VkDevice]".
func elementPath(el *etree.Element) string {
	var parts []string
	for e := el; e != nil && e.Tag != ""; e = e.Parent() {
		part := e.Tag
		if name := e.SelectAttrValue("name", ""); name != "" {
			part += "[name=" + name + "]"
		}
		parts = append([]string{part}, parts...)
	}
	return strings.Join(parts, "/")
}
