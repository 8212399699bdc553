package parser

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/vkbind/vkbgen/pkg/types"
)

// typeNamePair is the result of decoding one of the registry's
// mixed-content declarations (struct members, command protos and
// parameters). The registry splits a declaration like
// "const <type>void</type>* pNext" over interleaved text and element
// nodes, so the decode walks children in document order, accumulating
// text into the type expression until the <name> child, then into the
// name expression until a <comment> child or the end of the element.
type typeNamePair struct {
	TypeC     string
	TypeName  string
	NameC     string
	Name      string
	ArrayEnum string
}

func parseTypeNamePair(el *etree.Element) typeNamePair {
	var p typeNamePair

	inName := false
	for _, tok := range el.Child {
		switch node := tok.(type) {
		case *etree.Element:
			if !inName {
				if node.Tag == "name" {
					inName = true
					p.Name = node.Text()
					p.NameC += node.Text()
					continue
				}
				if node.Tag == "type" {
					p.TypeName = node.Text()
				}
				p.TypeC += node.Text()
				continue
			}
			if node.Tag == "comment" {
				// A comment terminates the name segment.
				p.trim()
				return p
			}
			if node.Tag == "enum" {
				p.ArrayEnum = node.Text()
			}
			p.NameC += node.Text()
		case *etree.CharData:
			if inName {
				p.NameC += node.Data
			} else {
				p.TypeC += node.Data
			}
		}
	}

	p.trim()
	return p
}

func (p *typeNamePair) trim() {
	p.TypeC = strings.TrimSpace(p.TypeC)
	p.TypeName = strings.TrimSpace(p.TypeName)
	p.NameC = strings.TrimSpace(p.NameC)
	p.Name = strings.TrimSpace(p.Name)
	p.ArrayEnum = strings.TrimSpace(p.ArrayEnum)
}

// funcPointerReturnType extracts the return type out of the leading
// "typedef <ret> (VKAPI_PTR *" text of a funcpointer declaration.
func funcPointerReturnType(lead string) string {
	rest := strings.TrimPrefix(lead, "typedef ")
	if i := strings.Index(rest, "(VKAPI_PTR *"); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}

// flattenFuncPointerParams reassembles the parameter portion of a
// funcpointer declaration into a single string, re-inserting
// <type>X</type> fences around type elements. The registry wraps <type>
// tags around the bare type identifier only, not the whole parameter, so
// the parameter list has to be re-tokenized by hand afterwards.
func flattenFuncPointerParams(tokens []etree.Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		switch node := tok.(type) {
		case *etree.Element:
			b.WriteString("<")
			b.WriteString(node.Tag)
			b.WriteString(">")
			b.WriteString(node.Text())
			b.WriteString("</")
			b.WriteString(node.Tag)
			b.WriteString(">")
		case *etree.CharData:
			b.WriteString(node.Data)
		}
	}
	return b.String()
}

// splitFuncPointerParams splits the flattened parameter string into the
// parameter list. Commas inside parentheses do not separate parameters.
func splitFuncPointerParams(raw string) []string {
	clean := strings.ReplaceAll(strings.ReplaceAll(raw, ")(", ""), ");", "")

	var params []string
	var b strings.Builder
	depth := 0
	for _, r := range clean {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				params = append(params, strings.TrimSpace(b.String()))
				b.Reset()
				continue
			}
		}
		b.WriteRune(r)
	}
	if last := strings.TrimSpace(b.String()); last != "" {
		params = append(params, last)
	}
	return params
}

// parseFuncPointerParam decodes one flattened parameter. The separator
// between type and name is the last space; the bare type identifier sits
// between the re-inserted <type> fences.
func parseFuncPointerParam(param string) (types.Member, bool) {
	if param == "void" {
		return types.Member{}, false
	}

	lastSpace := strings.LastIndex(param, " ")
	if lastSpace < 0 {
		return types.Member{}, false
	}
	paramType := strings.TrimSpace(param[:lastSpace])
	paramName := strings.TrimSpace(param[lastSpace:])

	typeC := strings.ReplaceAll(strings.ReplaceAll(paramType, "<type>", ""), "</type>", "")

	var typeName string
	if beg := strings.Index(paramType, "<type>"); beg >= 0 {
		if end := strings.Index(paramType, "</type>"); end > beg {
			typeName = paramType[beg+len("<type>") : end]
		}
	}

	return types.Member{
		TypeC:    typeC,
		TypeName: typeName,
		NameC:    paramName,
		Name:     paramName,
	}, true
}
