package nav

import (
	"net/url"
	"testing"

	"github.com/conneroisu/patterns/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *registry.Catalog {
	return registry.Build(registry.Manifest{
		Fragments: []string{
			"components/accordion/base/index.html",
			"components/accordion/outline/index.html",
			"components/button/base/index.html",
			"components/forms/radio/base/index.html",
			"components/forms/radio/inline/index.html",
		},
	})
}

func TestFormat(t *testing.T) {
	codec := NewCodec("base")

	assert.Equal(t, "accordion", codec.Format("accordion", "base"))
	assert.Equal(t, "accordion:outline", codec.Format("accordion", "outline"))
	assert.Equal(t, "forms/radio:inline", codec.Format("forms/radio", "inline"))

	custom := NewCodec("default")
	assert.Equal(t, "accordion:base", custom.Format("accordion", "base"))
	assert.Equal(t, "accordion", custom.Format("accordion", "default"))

	assert.Equal(t, "base", NewCodec("").DefaultVariant)
}

func TestParse(t *testing.T) {
	codec := NewCodec("base")

	tests := []struct {
		pattern   string
		component string
		variant   string
	}{
		{"accordion", "accordion", "base"},
		{"accordion:outline", "accordion", "outline"},
		{"forms/radio:inline", "forms/radio", "inline"},
		{"a:b:c", "a", "b"},
		{"accordion:outline:extra:more", "accordion", "outline"},
		{"accordion:", "accordion", ""},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			component, variant := codec.Parse(tt.pattern)
			assert.Equal(t, tt.component, component)
			assert.Equal(t, tt.variant, variant)
		})
	}
}

func TestResolve(t *testing.T) {
	codec := NewCodec("base")
	catalog := testCatalog()

	tests := []struct {
		name     string
		query    url.Values
		expected State
	}{
		{
			name:     "empty query shows root",
			query:    url.Values{},
			expected: Root(),
		},
		{
			name:     "empty pattern shows root",
			query:    url.Values{QueryParam: []string{""}},
			expected: Root(),
		},
		{
			name:  "base variant",
			query: url.Values{QueryParam: []string{"accordion"}},
			expected: State{
				View:        ViewPattern,
				Layout:      LayoutPattern,
				Pattern:     "accordion",
				ComponentID: "accordion",
				Variant:     "base",
				Fragment:    "components/accordion/base/index.html",
				Readme:      "components/accordion/base/README.md",
			},
		},
		{
			name:  "grouped variant",
			query: url.Values{QueryParam: []string{"forms/radio:inline"}},
			expected: State{
				View:        ViewPattern,
				Layout:      LayoutPattern,
				Pattern:     "forms/radio:inline",
				ComponentID: "forms/radio",
				Variant:     "inline",
				Fragment:    "components/forms/radio/inline/index.html",
				Readme:      "components/forms/radio/inline/README.md",
			},
		},
		{
			name:  "unknown pattern falls back to first component",
			query: url.Values{QueryParam: []string{"nope"}},
			expected: State{
				View:        ViewPattern,
				Layout:      LayoutPattern,
				Pattern:     "accordion",
				ComponentID: "accordion",
				Variant:     "base",
				Fragment:    "components/accordion/base/index.html",
				Readme:      "components/accordion/base/README.md",
				Requested:   "nope",
				Fallback:    true,
			},
		},
		{
			name:  "extra colon fields are ignored",
			query: url.Values{QueryParam: []string{"accordion:outline:x"}},
			expected: State{
				View:        ViewPattern,
				Layout:      LayoutPattern,
				Pattern:     "accordion:outline",
				ComponentID: "accordion",
				Variant:     "outline",
				Fragment:    "components/accordion/outline/index.html",
				Readme:      "components/accordion/outline/README.md",
			},
		},
		{
			name:  "explicit empty variant falls back",
			query: url.Values{QueryParam: []string{"button:"}},
			expected: State{
				View:        ViewPattern,
				Layout:      LayoutPattern,
				Pattern:     "accordion",
				ComponentID: "accordion",
				Variant:     "base",
				Fragment:    "components/accordion/base/index.html",
				Readme:      "components/accordion/base/README.md",
				Requested:   "button:",
				Fallback:    true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, codec.Resolve(catalog, tt.query))
		})
	}
}

func TestResolveEmptyCatalog(t *testing.T) {
	state := NewCodec("base").ResolvePattern(registry.Build(registry.Manifest{}), "accordion")

	assert.Equal(t, ViewRoot, state.View)
	assert.Equal(t, LayoutReadmeOnly, state.Layout)
	assert.True(t, state.Fallback)
}

func TestFormatResolveRoundTrip(t *testing.T) {
	codec := NewCodec("base")
	catalog := testCatalog()

	for _, comp := range catalog.Components() {
		for _, v := range comp.Variants {
			pattern := codec.Format(comp.ID, v.Name)
			state := codec.ResolvePattern(catalog, pattern)

			require.False(t, state.Fallback, pattern)
			assert.Equal(t, v.Path, state.Fragment)
			assert.Equal(t, pattern, state.Pattern)
		}
	}

	state := codec.ResolvePattern(catalog, "accordion:outline")
	assert.Equal(t, "components/accordion/outline/index.html", state.Fragment)
}

func TestHref(t *testing.T) {
	assert.Equal(t, "/patterns/", Href("/patterns/", ""))
	assert.Equal(t, "/?pattern=accordion", Href("/", "accordion"))
	assert.Equal(t, "/?pattern=accordion%3Aoutline", Href("/", "accordion:outline"))

	parsed, err := url.Parse(Href("/", "forms/radio:inline"))
	require.NoError(t, err)
	assert.Equal(t, "forms/radio:inline", parsed.Query().Get(QueryParam))
}
