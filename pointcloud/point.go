package pointcloud

import (
	"image/color"
)

// Data is what a point carries besides its position: an optional display color and an
// optional tag, which navigation outputs use for the index of the gap or refinement step the
// point belongs to. Data is immutable once built.
type Data interface {
	HasColor() bool
	RGB255() (uint8, uint8, uint8)
	Color() color.Color

	HasValue() bool
	Value() int
}

type marker struct {
	rgb     color.NRGBA
	colored bool
	tag     int
	tagged  bool
}

// NewMarker returns data colored c and tagged with index.
func NewMarker(c color.NRGBA, index int) Data {
	return marker{rgb: c, colored: true, tag: index, tagged: true}
}

// NewColoredData returns untagged data colored c.
func NewColoredData(c color.NRGBA) Data {
	return marker{rgb: c, colored: true}
}

// NewValueData returns uncolored data tagged with v.
func NewValueData(v int) Data {
	return marker{tag: v, tagged: true}
}

func (m marker) HasColor() bool {
	return m.colored
}

func (m marker) RGB255() (uint8, uint8, uint8) {
	return m.rgb.R, m.rgb.G, m.rgb.B
}

func (m marker) Color() color.Color {
	return m.rgb
}

func (m marker) HasValue() bool {
	return m.tagged
}

func (m marker) Value() int {
	return m.tag
}
