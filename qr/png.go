package qr

import (
	"bytes"
	"image"
	"image/png"

	"github.com/zeebo/errs/v2"
	"golang.org/x/image/draw"
)

// renderPNG scales every module to the same whole number of pixels and
// centers the code on a canvas of opts.Size pixels. A canvas smaller than
// the code grows to one pixel per module.
func renderPNG(bm [][]bool, opts Options) ([]byte, error) {
	img := rasterize(bm, opts)
	if opts.Logo != nil {
		overlay(img, opts.Logo)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errs.Wrap(err)
	}
	return buf.Bytes(), nil
}

func rasterize(bm [][]bool, opts Options) *image.NRGBA {
	dim := len(bm) + 2*opts.Border
	size := opts.Size
	if size < dim {
		size = dim
	}
	scale := size / dim
	off := (size-dim*scale)/2 + opts.Border*scale

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	fg := image.NewUniform(opts.Foreground)
	for y, row := range bm {
		for x, dark := range row {
			if !dark {
				continue
			}
			r := image.Rect(off+x*scale, off+y*scale, off+(x+1)*scale, off+(y+1)*scale)
			draw.Draw(img, r, fg, image.Point{}, draw.Over)
		}
	}
	return img
}

// overlay draws logo centered over img, fit inside a square a fifth of the
// image width while keeping its aspect ratio.
func overlay(img draw.Image, logo image.Image) {
	lb := logo.Bounds()
	if lb.Empty() {
		return
	}

	b := img.Bounds()
	box := b.Dx() / 5
	if box == 0 {
		return
	}

	w, h := box, box
	if lb.Dx() > lb.Dy() {
		h = max(1, box*lb.Dy()/lb.Dx())
	} else if lb.Dy() > lb.Dx() {
		w = max(1, box*lb.Dx()/lb.Dy())
	}

	x := b.Min.X + (b.Dx()-w)/2
	y := b.Min.Y + (b.Dy()-h)/2
	draw.CatmullRom.Scale(img, image.Rect(x, y, x+w, y+h), logo, lb, draw.Over, nil)
}
