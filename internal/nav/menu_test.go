package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMenu(t *testing.T) {
	codec := NewCodec("base")
	catalog := testCatalog()
	state := codec.ResolvePattern(catalog, "forms/radio:inline")

	menu := codec.BuildMenu(catalog, state, MenuOptions{Base: "/"})

	require.Len(t, menu.Groups, 1)
	forms := menu.Groups[0]
	assert.Equal(t, "forms", forms.Label)
	require.Len(t, forms.Components, 1)

	radio := forms.Components[0]
	assert.True(t, radio.Collapsible)
	assert.True(t, radio.Open)
	require.Len(t, radio.Entries, 2)
	assert.Equal(t, "base", radio.Entries[0].Label)
	assert.Equal(t, "forms/radio", radio.Entries[0].Pattern)
	assert.False(t, radio.Entries[0].Active)
	assert.Equal(t, "inline", radio.Entries[1].Label)
	assert.True(t, radio.Entries[1].Active)

	require.Len(t, menu.Components, 2)
	accordion := menu.Components[0]
	assert.True(t, accordion.Collapsible)
	assert.False(t, accordion.Open)

	button := menu.Components[1]
	assert.False(t, button.Collapsible)
	require.Len(t, button.Entries, 1)
	assert.Equal(t, "button", button.Entries[0].Label)
	assert.Equal(t, "/?pattern=button", button.Entries[0].Href)
	assert.Equal(t, "components/button/base/index.html", button.Entries[0].Fragment)
}

func TestBuildMenuRootStateHasNothingActive(t *testing.T) {
	codec := NewCodec("base")
	menu := codec.BuildMenu(testCatalog(), Root(), MenuOptions{Base: "/"})

	for _, comp := range menu.Components {
		assert.False(t, comp.Open)
		for _, entry := range comp.Entries {
			assert.False(t, entry.Active)
		}
	}
}

func TestMenuTitleCase(t *testing.T) {
	labels := newLabeler(true)
	assert.Equal(t, "Date Picker", labels.label("date-picker"))
	assert.Equal(t, "Radio Group", labels.label("radio_group"))

	plain := newLabeler(false)
	assert.Equal(t, "date-picker", plain.label("date-picker"))

	codec := NewCodec("base")
	menu := codec.BuildMenu(testCatalog(), Root(), MenuOptions{Base: "/", TitleCase: true})
	assert.Equal(t, "Forms", menu.Groups[0].Label)
	assert.Equal(t, "Outline", menu.Components[0].Entries[1].Label)
}
