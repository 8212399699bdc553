package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vkbind/vkbgen/pkg/types"
)

// CleanDefineValue normalizes the captured body of a define element:
// line continuations are joined and // comments removed. A comment that
// owns its whole line disappears together with its newline; a trailing
// comment leaves the line ending in place.
func CleanDefineValue(value string) string {
	result := strings.TrimSpace(value)
	result = strings.ReplaceAll(result, "\\\n", "")

	for {
		pos := strings.Index(result, "//")
		if pos < 0 {
			break
		}

		wholeLine := pos == 0 || result[pos-1] == '\n'

		end := strings.Index(result[pos+2:], "\n")
		if end < 0 {
			result = result[:pos]
			continue
		}
		end += pos + 2
		if wholeLine {
			end++
		} else if result[end-1] == '\r' {
			end--
		}

		result = result[:pos] + result[end:]
	}

	return result
}

// ExtensionEnumValue computes the token value of an extension-added enum
// item from its offset, the extension number and the direction sign. See
// "Assigning Extension Token Values" in the Vulkan style guide.
func ExtensionEnumValue(re *types.RequireEnum, extnumber string) string {
	dir := 1
	if re.Dir == "-" {
		dir = -1
	}
	ext, _ := strconv.Atoi(extnumber)
	off, _ := strconv.Atoi(re.Offset)
	return strconv.Itoa((1000000000 + (ext-1)*1000 + off) * dir)
}

// BitposHex renders a bit position as a C literal: an 8-hex-digit
// unsigned value below bit 32, and a cast-and-shift expression above it
// (the split form keeps old compilers that lack 64-bit literals happy).
func BitposHex(bitpos int, typeName string) string {
	if bitpos < 32 {
		return fmt.Sprintf("0x%08x", uint32(1)<<bitpos)
	}
	value := uint64(1) << bitpos
	return fmt.Sprintf("(%s)(((%s)0x%08x << 32) | (0x%08x))",
		typeName, typeName, uint32(value>>32), uint32(value&0xFFFFFFFF))
}

// NameToUpperCaseStyle converts a Vk-prefixed type name into the
// registry's macro spelling: VkSampleCountFlagBits -> VK_SAMPLE_COUNT_FLAG_BITS.
func NameToUpperCaseStyle(name string) string {
	result := "VK"
	for i := 2; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			result += "_"
			result += string(c)
		} else {
			result += strings.ToUpper(string(c))
		}
	}
	return result
}

// MaxEnumToken synthesizes the _MAX_ENUM terminator for an enum type
// name. The vendor tag is stripped before the case conversion and
// re-appended after the _MAX_ENUM suffix.
func MaxEnumToken(reg *types.Registry, enumName string) string {
	tag := reg.ExtractTag(enumName)

	result := NameToUpperCaseStyle(enumName[:len(enumName)-len(tag)])
	result += "_MAX_ENUM"
	if tag != "" {
		result += "_" + tag
	}
	return result
}
