// Package layout holds the split-pane geometry of the main area: the preview
// on top, a splitter, and the README below.
package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CookieName is the cookie the shell script stores the last split in.
const CookieName = "pattern-split"

// Rows is one arrangement of the three grid rows, in pixels.
type Rows struct {
	Top      float64 `json:"top"`
	Splitter float64 `json:"splitter"`
	Bottom   float64 `json:"bottom"`
}

// GridTemplate renders the rows as a grid-template-rows value.
func (r Rows) GridTemplate() string {
	return px(r.Top) + " " + px(r.Splitter) + " " + px(r.Bottom)
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// ParseRows reads a value written by GridTemplate.
func ParseRows(template string) (Rows, error) {
	fields := strings.Fields(template)
	if len(fields) != 3 {
		return Rows{}, fmt.Errorf("expected three rows, got %d", len(fields))
	}

	values := make([]float64, 3)
	for i, field := range fields {
		number, ok := strings.CutSuffix(field, "px")
		if !ok {
			return Rows{}, fmt.Errorf("row %q is not in pixels", field)
		}
		v, err := strconv.ParseFloat(number, 64)
		if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return Rows{}, fmt.Errorf("invalid row height %q", field)
		}
		values[i] = v
	}
	return Rows{Top: values[0], Splitter: values[1], Bottom: values[2]}, nil
}

// Clamp computes the rows after dragging the splitter by delta from a top
// pane of startTop. The top pane is kept within
// [minPane, container-splitter-minPane] and the bottom pane takes the rest.
// When the container is too small for both minimums the upper bound wins,
// matching min(max(x, lo), hi).
func Clamp(startTop, delta, container, splitter, minPane float64) Rows {
	maxTop := container - splitter - minPane
	top := math.Min(math.Max(startTop+delta, minPane), maxTop)
	return Rows{
		Top:      top,
		Splitter: splitter,
		Bottom:   container - splitter - top,
	}
}

// Restore re-clamps a saved split into a container of the given height,
// keeping the saved top pane where it still fits. The saved value
// determines the container height when container is zero.
func Restore(saved string, container, splitter, minPane float64) (Rows, error) {
	rows, err := ParseRows(saved)
	if err != nil {
		return Rows{}, err
	}
	if container <= 0 {
		container = rows.Top + rows.Splitter + rows.Bottom
	}
	if splitter <= 0 {
		splitter = rows.Splitter
	}
	return Clamp(rows.Top, 0, container, splitter, minPane), nil
}
