// Package playback decodes sign animations and plays them on a display.
package playback

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DecodeGIF reads every frame of an animated GIF, composited onto a full
// logical-screen RGBA canvas so partial frames and disposal methods render
// the same way a browser would.
func DecodeGIF(r io.Reader) ([]*image.RGBA, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, err
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("gif has no frames")
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}

	canvas := image.NewRGBA(bounds)
	frames := make([]*image.RGBA, 0, len(g.Image))
	var previous *image.RGBA

	for i, src := range g.Image {
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			previous = cloneRGBA(canvas)
		}

		draw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)
		frames = append(frames, cloneRGBA(canvas))

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, src.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			if previous != nil {
				canvas = previous
			}
		}
	}

	return frames, nil
}

// ScaleToWidth shrinks img uniformly so it is at most maxWidth pixels wide.
// Narrower images are returned unchanged.
func ScaleToWidth(img *image.RGBA, maxWidth int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}

	newH := h * maxWidth / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// PhraseName turns an asset filename into a display name:
// "nice_to_meet_you.gif" becomes "Nice To Meet You".
func PhraseName(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	return cases.Title(language.English).String(base)
}

// WindowTitle is the title of the display for an asset
func WindowTitle(file string) string {
	return "Sign Language - " + PhraseName(file)
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
