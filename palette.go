package pointviz

import "github.com/gogpu/gg"

// Palette holds the marker color for each of the ten label classes.
var Palette = [10]gg.RGBA{
	gg.RGB(204.0/255, 102.0/255, 102.0/255),
	gg.RGB(204.0/255, 163.0/255, 102.0/255),
	gg.RGB(184.0/255, 204.0/255, 102.0/255),
	gg.RGB(122.0/255, 204.0/255, 102.0/255),
	gg.RGB(102.0/255, 204.0/255, 143.0/255),
	gg.RGB(102.0/255, 204.0/255, 204.0/255),
	gg.RGB(102.0/255, 143.0/255, 204.0/255),
	gg.RGB(122.0/255, 102.0/255, 204.0/255),
	gg.RGB(184.0/255, 102.0/255, 204.0/255),
	gg.RGB(204.0/255, 102.0/255, 163.0/255),
}

// LabelColor returns the palette color for label. Labels outside 0-9 wrap.
func LabelColor(label int) gg.RGBA {
	n := len(Palette)
	return Palette[((label%n)+n)%n]
}
