//go:build property

package nav

import (
	"fmt"
	"testing"

	"github.com/conneroisu/patterns/internal/registry"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestPatternProperties validates the pattern codec against generated catalogs
func TestPatternProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	codec := NewCodec("base")

	// Property: formatting then resolving a variant returns its fragment
	properties.Property("format and resolve round trip", prop.ForAll(
		func(component, variant string, grouped bool) bool {
			if component == "" || variant == "" {
				return true
			}
			fragment := fmt.Sprintf("components/%s/%s/index.html", component, variant)
			id := component
			if grouped {
				fragment = fmt.Sprintf("components/group/%s/%s/index.html", component, variant)
				id = "group/" + component
			}
			catalog := registry.Build(registry.Manifest{Fragments: []string{fragment}})

			state := codec.ResolvePattern(catalog, codec.Format(id, variant))
			return !state.Fallback && state.Fragment == fragment
		},
		gen.Identifier(),
		gen.Identifier(),
		gen.Bool(),
	))

	// Property: any pattern resolves to some view without panicking
	properties.Property("resolve is total", prop.ForAll(
		func(pattern string) bool {
			state := codec.ResolvePattern(registry.Build(registry.Manifest{Fragments: []string{
				"components/accordion/base/index.html",
			}}), pattern)
			return state.View == ViewRoot || state.Fragment != ""
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
