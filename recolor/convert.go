// Package recolor maps the pixels of an image onto a palette, optionally
// resizing, quantizing, averaging and blurring on the way.
package recolor

import (
	"errors"
	"image"
	"image/color"

	"nordify/palette"
	"nordify/parallel"

	"github.com/disintegration/imaging"
)

var ErrEmptyImage = errors.New("image has no pixels")

// Convert recolors img with the colors of pal. The stages run in a fixed
// order, each one enabled by opt:
//
//	resize -> quantize -> recolor -> blur -> restore size
//
// img is not modified. The result only depends on the inputs.
func Convert(img image.Image, opt Options, pal palette.Palette) (*image.NRGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	if err := palette.Validate(pal); err != nil {
		return nil, err
	}

	buf := imaging.Clone(img)
	srcSize := buf.Rect.Size()

	dstSize, resized := opt.resizeTarget(srcSize)
	if resized {
		buf = resize(buf, dstSize, opt.Resample)
	}

	if opt.quantizeEnabled() {
		quantize(buf, opt.Quantize, opt.TransparencyTolerance)
	}

	buf = average(buf, opt)
	if opt.Dither {
		dither(buf, pal, opt.TransparencyTolerance)
	} else {
		remap(buf, pal, opt)
	}

	if opt.blurEnabled() {
		buf = imaging.Blur(buf, opt.Blur)
	}

	if resized && opt.Restore {
		buf = resize(buf, srcSize, opt.Resample)
	}

	return buf, nil
}

func resize(img *image.NRGBA, size image.Point, r Resample) *image.NRGBA {
	filter := imaging.NearestNeighbor
	if r == Linear {
		filter = imaging.Linear
	}
	return imaging.Resize(img, size.X, size.Y, filter)
}

// quantize reduces img to a palette trained on its own visible pixels.
func quantize(img *image.NRGBA, sampleFac int, tolerance uint8) {
	samples := make([]color.NRGBA, 0, img.Rect.Dx()*img.Rect.Dy())
	for y := range img.Rect.Dy() {
		row := img.Pix[y*img.Stride : y*img.Stride+img.Rect.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			if row[i+3] > tolerance {
				samples = append(samples, color.NRGBA{R: row[i], G: row[i+1], B: row[i+2], A: row[i+3]})
			}
		}
	}
	if len(samples) == 0 {
		return
	}

	trained := trainPalette(samples, sampleFac)
	dither(img, &trained, tolerance)
}

// remap replaces, in place, every pixel of img above the transparency
// tolerance with its nearest palette color. Rows are independent and split
// between opt.Workers goroutines.
func remap(img *image.NRGBA, pal palette.Palette, opt Options) {
	w := img.Rect.Dx()
	parallel.Map(img.Rect.Dy(), opt.Workers, func(y int) {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := range w {
			px := row[x*4 : x*4+4 : x*4+4]
			if px[3] <= opt.TransparencyTolerance {
				continue
			}

			c := pal.Convert(color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]})
			px[0], px[1], px[2] = c.R, c.G, c.B
		}
	})
}

// average returns a copy of img where every pixel above the tolerance holds
// the mean color of its kernel, or img itself when averaging is disabled.
func average(img *image.NRGBA, opt Options) *image.NRGBA {
	kernel, ok := opt.avgKernel()
	if !ok {
		return img
	}

	dst := imaging.Clone(img)
	w := img.Rect.Dx()
	parallel.Map(img.Rect.Dy(), opt.Workers, func(y int) {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := range w {
			px := row[x*4 : x*4+4 : x*4+4]
			if px[3] <= opt.TransparencyTolerance {
				continue
			}
			c := averageAt(img, x, y, kernel, opt.TransparencyTolerance)
			px[0], px[1], px[2] = c.R, c.G, c.B
		}
	})
	return dst
}

// averageAt is the mean RGB of the kernel centered on (x, y), clipped to the
// image and skipping pixels at or below the tolerance. The alpha of (x, y)
// is kept.
func averageAt(img *image.NRGBA, x, y int, kernel image.Point, tolerance uint8) color.NRGBA {
	b := image.Rect(x-kernel.X/2, y-kernel.Y/2, x-kernel.X/2+kernel.X, y-kernel.Y/2+kernel.Y).
		Intersect(image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()))

	var r, g, bl, n uint32
	for ky := b.Min.Y; ky < b.Max.Y; ky++ {
		off := ky*img.Stride + b.Min.X*4
		for kx := b.Min.X; kx < b.Max.X; kx++ {
			if img.Pix[off+3] > tolerance {
				r += uint32(img.Pix[off])
				g += uint32(img.Pix[off+1])
				bl += uint32(img.Pix[off+2])
				n++
			}
			off += 4
		}
	}

	off := y*img.Stride + x*4
	c := color.NRGBA{R: img.Pix[off], G: img.Pix[off+1], B: img.Pix[off+2], A: img.Pix[off+3]}
	if n == 0 {
		return c
	}
	c.R = uint8((r + n/2) / n)
	c.G = uint8((g + n/2) / n)
	c.B = uint8((bl + n/2) / n)
	return c
}
