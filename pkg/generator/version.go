package generator

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vkbind/vkbgen/pkg/emitter"
	"github.com/vkbind/vkbgen/pkg/extractor"
	"github.com/vkbind/vkbgen/pkg/types"
)

// revisionBanner is the prefix of the version line stamped into the
// generated header; it is the only machine-parsed state read back from a
// previous run.
const revisionBanner = "vkbind - v"

// VulkanVersion derives the Vulkan version the registry describes: the
// last feature's number joined with the integer value of the
// VK_HEADER_VERSION define.
func VulkanVersion(reg *types.Registry) (string, error) {
	if len(reg.Features) == 0 {
		return "", fmt.Errorf("registry declares no features: %w", types.ErrInvalidArgs)
	}
	version := reg.Features[len(reg.Features)-1].Number

	for i := range reg.Types {
		t := &reg.Types[i]
		if t.Category != types.CategoryDefine || t.Name != "VK_HEADER_VERSION" {
			continue
		}
		cleaned := emitter.CleanDefineValue(t.VerbatimValue)
		if idx := strings.Index(cleaned, t.Name); idx >= 0 {
			version += "." + strings.TrimSpace(cleaned[idx+len(t.Name):])
		}
		break
	}

	return version, nil
}

// Revision computes the generator revision: if the previous output's
// banner carries the same Vulkan version, the revision increments by
// one; a changed version or missing banner resets it to zero.
func Revision(previous []byte, currentVersion string) int {
	content := string(previous)
	idx := strings.Index(content, revisionBanner)
	if idx < 0 {
		return 0
	}
	rest := content[idx+len(revisionBanner):]

	// Banner layout: v<maj>.<min>.<hdr>.<rev> - <date>
	var segments []string
	for i := 0; i < 3; i++ {
		dot := strings.Index(rest, ".")
		if dot < 0 {
			return 0
		}
		segments = append(segments, rest[:dot])
		rest = rest[dot+1:]
	}
	space := strings.Index(rest, " ")
	if space < 0 {
		return 0
	}
	prevRevision := rest[:space]

	previousVersion := strings.Join(segments, ".")
	if previousVersion != currentVersion {
		return 0
	}

	rev, err := strconv.Atoi(prevRevision)
	if err != nil {
		return 0
	}
	return rev + 1
}

// RevisionFromFile reads the previous output, tolerating its absence.
func RevisionFromFile(path, currentVersion string) int {
	if _, err := os.Stat(path); err != nil {
		return 0
	}
	previous, err := extractor.ReadTextFile(path)
	if err != nil {
		return 0
	}
	return Revision(previous, currentVersion)
}

// DateStamp renders the <<date>> fragment.
func DateStamp(t time.Time) string {
	return t.Format("2006-01-02")
}
