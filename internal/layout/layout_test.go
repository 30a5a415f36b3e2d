package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		startTop float64
		delta    float64
		expected Rows
	}{
		{
			name:     "free movement",
			startTop: 300,
			delta:    50,
			expected: Rows{Top: 350, Splitter: 8, Bottom: 442},
		},
		{
			name:     "top pane hits minimum",
			startTop: 300,
			delta:    -250,
			expected: Rows{Top: 160, Splitter: 8, Bottom: 632},
		},
		{
			name:     "bottom pane hits minimum",
			startTop: 300,
			delta:    600,
			expected: Rows{Top: 632, Splitter: 8, Bottom: 160},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clamp(tt.startTop, tt.delta, 800, 8, 160))
		})
	}
}

func TestClampKeepsMinimums(t *testing.T) {
	for delta := -1000.0; delta <= 1000; delta += 37 {
		rows := Clamp(400, delta, 800, 8, 160)
		assert.GreaterOrEqual(t, rows.Top, 160.0)
		assert.GreaterOrEqual(t, rows.Bottom, 160.0)
		assert.Equal(t, 800.0, rows.Top+rows.Splitter+rows.Bottom)
	}
}

func TestClampTinyContainer(t *testing.T) {
	rows := Clamp(100, 0, 200, 8, 160)
	assert.Equal(t, 32.0, rows.Top)
	assert.Equal(t, 160.0, rows.Bottom)
}

func TestGridTemplate(t *testing.T) {
	assert.Equal(t, "350px 8px 442px", Rows{Top: 350, Splitter: 8, Bottom: 442}.GridTemplate())
	assert.Equal(t, "350.5px 8px 441.5px", Rows{Top: 350.5, Splitter: 8, Bottom: 441.5}.GridTemplate())
}

func TestParseRows(t *testing.T) {
	rows, err := ParseRows("350px 8px 442px")
	require.NoError(t, err)
	assert.Equal(t, Rows{Top: 350, Splitter: 8, Bottom: 442}, rows)

	for _, bad := range []string{"", "1fr", "1px 2px", "1px 2em 3px", "-1px 8px 3px", "NaNpx 8px 3px"} {
		_, err := ParseRows(bad)
		assert.Error(t, err, bad)
	}
}

func TestRestore(t *testing.T) {
	rows, err := Restore("300px 8px 492px", 800, 8, 160)
	require.NoError(t, err)
	assert.Equal(t, Rows{Top: 300, Splitter: 8, Bottom: 492}, rows)

	// A smaller window pulls the split back into range
	rows, err = Restore("700px 8px 92px", 600, 8, 160)
	require.NoError(t, err)
	assert.Equal(t, Rows{Top: 432, Splitter: 8, Bottom: 160}, rows)

	// Without a container the saved total is used
	rows, err = Restore("100px 8px 692px", 0, 0, 160)
	require.NoError(t, err)
	assert.Equal(t, Rows{Top: 160, Splitter: 8, Bottom: 632}, rows)

	_, err = Restore("garbage", 800, 8, 160)
	assert.Error(t, err)
}
