//go:build property

package markdown

import (
	"regexp"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var blockTag = regexp.MustCompile(`<(/?)(ul|ol|blockquote|pre)>`)

var sampleLines = []string{
	"# heading",
	"###### deep heading",
	"- item",
	"  * starred item",
	"1. first",
	"> quoted",
	"```",
	"```go",
	"plain text with **bold**",
	"`code` and [a](b)",
	"",
	"   ",
}

// TestRenderProperties validates the block structure of rendered markdown
func TestRenderProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4242)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	// Property: at most one of list, blockquote and code is open at a time
	properties.Property("block states are mutually exclusive", prop.ForAll(
		func(picks []int) bool {
			lines := make([]string, 0, len(picks))
			for _, p := range picks {
				lines = append(lines, sampleLines[p])
			}
			out := Render(strings.Join(lines, "\n"))

			depth := 0
			open := ""
			for _, m := range blockTag.FindAllStringSubmatch(out, -1) {
				if m[1] == "" {
					if depth != 0 {
						return false
					}
					depth++
					open = m[2]
					continue
				}
				if depth != 1 || open != m[2] {
					return false
				}
				depth--
			}
			return depth == 0
		},
		gen.SliceOf(gen.IntRange(0, len(sampleLines)-1)),
	))

	// Property: every heading level maps to the matching tag
	properties.Property("heading level matches tag", prop.ForAll(
		func(level int, text string) bool {
			text = strings.TrimSpace(text)
			if text == "" {
				return true
			}
			out := Render(strings.Repeat("#", level) + " " + text)
			tag := "h" + string(rune('0'+level))
			return strings.HasPrefix(out, "<"+tag+">") && strings.HasSuffix(out, "</"+tag+">")
		},
		gen.IntRange(1, 6),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
