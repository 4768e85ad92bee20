package main

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/pointviz/dataset"
)

// Tooltip layout in pixels.
const (
	thumbSize      = 100
	tooltipPadding = 8
	tooltipOffset  = 16
	tooltipFont    = 16
)

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func tooltipFace() (text.Face, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	return fontSource.Face(tooltipFont), nil
}

// swizzler is implemented by textures that can be read back as the RGBA
// image a shader samples from them.
type swizzler interface {
	Swizzled() *image.RGBA
}

// thumbnailOf returns the image the tooltip shows for pt: its uploaded
// texture when the device can read it back, otherwise the image rebuilt
// from the store's pixels.
func thumbnailOf(store *dataset.Store, pt dataset.Point) (image.Image, error) {
	if sw, ok := pt.Texture.(swizzler); ok {
		if img := sw.Swizzled(); img != nil {
			return img, nil
		}
	}
	return store.Thumbnail(pt.Index)
}

// scaleThumbnail enlarges a thumbnail to thumbSize×thumbSize.
func scaleThumbnail(src image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, thumbSize, thumbSize))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// drawTooltip draws "Label: n" and the enlarged thumbnail in a panel below
// and right of (x, y), shifted to stay inside the frame.
func drawTooltip(dc *gg.Context, x, y, label int, thumb image.Image) error {
	face, err := tooltipFace()
	if err != nil {
		return fmt.Errorf("tooltip font: %w", err)
	}
	dc.SetFont(face)

	caption := fmt.Sprintf("Label: %d", label)
	tw, th := dc.MeasureString(caption)
	w := max(tw, thumbSize) + 2*tooltipPadding
	h := th + thumbSize + 3*tooltipPadding

	px := min(float64(x+tooltipOffset), float64(dc.Width())-w)
	py := min(float64(y+tooltipOffset), float64(dc.Height())-h)
	px, py = max(px, 0), max(py, 0)

	dc.SetRGBA(0.05, 0.05, 0.06, 0.9)
	dc.DrawRoundedRectangle(px, py, w, h, 4)
	if err := dc.Fill(); err != nil {
		return err
	}

	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(caption, px+tooltipPadding, py+tooltipPadding, 0, 0)

	img := gg.ImageBufFromImage(scaleThumbnail(thumb))
	dc.DrawImage(img, px+tooltipPadding, py+th+2*tooltipPadding)
	return nil
}
