package emitter

import (
	"strings"

	"github.com/vkbind/vkbgen/pkg/types"
)

// writeFunctionTypedef renders a command or funcpointer as a PFN_
// function-pointer typedef. Funcpointer names already carry the PFN_
// prefix, so it is only added when absent.
func writeFunctionTypedef(buf *strings.Builder, returnTypeC, name string, parameters []types.Member) {
	prefix := ""
	if !strings.Contains(name, "PFN_") {
		prefix = "PFN_"
	}

	buf.WriteString("typedef ")
	buf.WriteString(returnTypeC)
	buf.WriteString(" (VKAPI_PTR *")
	buf.WriteString(prefix)
	buf.WriteString(name)
	buf.WriteString(")(")
	if len(parameters) > 0 {
		for i := range parameters {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(parameters[i].TypeC)
			buf.WriteString(" ")
			buf.WriteString(parameters[i].NameC)
		}
	} else {
		buf.WriteString("void")
	}
	buf.WriteString(");\n")
}

// writeCommandTypedef renders a command declaration under the given name
// (the name differs from the command's own when forwarding an alias).
func writeCommandTypedef(buf *strings.Builder, command *types.Command, name string) {
	writeFunctionTypedef(buf, command.ReturnTypeC, name, command.Parameters)
}

// writeFuncPointerTypedef renders a funcpointer declaration under the
// given name.
func writeFuncPointerTypedef(buf *strings.Builder, fp *types.FuncPointer, name string) {
	writeFunctionTypedef(buf, fp.ReturnType, name, fp.Params)
}
