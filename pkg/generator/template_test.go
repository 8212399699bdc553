package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteReplacesKnownTags(t *testing.T) {
	template := "head\n/*<<vulkan_main>>*/\ntail v<<vulkan_version>>.<<revision>> - <<date>>\n"
	out := Substitute(template, map[string]string{
		TagMain:          "MAIN",
		TagVulkanVersion: "1.3.250",
		TagRevision:      "7",
		TagDate:          "2026-08-01",
	})

	assert.Equal(t, "head\nMAIN\ntail v1.3.250.7 - 2026-08-01\n", out)
}

func TestSubstituteLeavesUnknownTokensAlone(t *testing.T) {
	template := "before <<unknown_token>> after /*<<also_unknown>>*/"
	out := Substitute(template, map[string]string{TagMain: "MAIN"})
	assert.Equal(t, template, out)
}

func TestSubstituteMissingFragmentLeavesTag(t *testing.T) {
	template := "/*<<load_device_api>>*/"
	out := Substitute(template, map[string]string{})
	assert.Equal(t, template, out)
}
