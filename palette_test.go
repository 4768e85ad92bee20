package pointviz

import "testing"

func TestLabelColor(t *testing.T) {
	tests := []struct {
		label int
		want  int
	}{
		{0, 0},
		{3, 3},
		{9, 9},
		{10, 0},
		{13, 3},
		{-1, 9},
	}
	for _, tt := range tests {
		if got := LabelColor(tt.label); got != Palette[tt.want] {
			t.Errorf("LabelColor(%d) = %v, want Palette[%d] = %v", tt.label, got, tt.want, Palette[tt.want])
		}
	}
}

func TestPaletteFirstEntry(t *testing.T) {
	c := Palette[0]
	if c.R != 204.0/255 || c.G != 102.0/255 || c.B != 102.0/255 || c.A != 1 {
		t.Errorf("Palette[0] = %v, want (204,102,102)/255 opaque", c)
	}
}
