package recolor

import (
	"fmt"
	"image"
	"math"
)

// Resample selects the filter used when resizing.
type Resample int

const (
	Nearest Resample = iota
	Linear
)

func (r Resample) String() string {
	switch r {
	case Linear:
		return "linear"
	default:
		return "nearest"
	}
}

const (
	MinQuantize = 1
	MaxQuantize = 30

	// DefaultTransparencyTolerance leaves mostly transparent pixels alone.
	DefaultTransparencyTolerance = 190
)

// Options configures Convert. Every stage has an "off" value and the zero
// value of a field never fails a conversion: it disables the stage.
type Options struct {
	// Resize resamples the image to the given size before any other stage.
	// A zero axis keeps the aspect ratio. Disabled when both axes are zero
	// or negative.
	Resize image.Point
	// Downscale divides both axes by the factor when Resize is unset.
	// Disabled at 1 or below.
	Downscale float64
	Resample  Resample
	// Restore resamples the result back to the input size after a resize.
	Restore bool

	// Quantize is the sample factor of the trained quantizer, 1 (best,
	// slowest) to 30. Anything else disables quantization.
	Quantize int

	// Avg is the size of the kernel averaged around every pixel before the
	// palette lookup. A zero axis counts as one pixel; disabled when both
	// axes are zero or negative.
	Avg image.Point

	// Pixels with an alpha at or below TransparencyTolerance are not
	// recolored.
	TransparencyTolerance uint8

	// Dither diffuses the recoloring error over neighbouring pixels.
	Dither bool

	// Blur is the sigma of the Gaussian blur applied after recoloring.
	// Disabled at zero or below.
	Blur float64

	// Workers is the number of goroutines recoloring rows: 1 is sequential,
	// below 1 uses GOMAXPROCS. The result does not depend on it.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Restore:               true,
		TransparencyTolerance: DefaultTransparencyTolerance,
	}
}

func (o Options) quantizeEnabled() bool {
	return o.Quantize >= MinQuantize && o.Quantize <= MaxQuantize
}

func (o Options) blurEnabled() bool {
	return o.Blur > 0 && !math.IsNaN(o.Blur) && !math.IsInf(o.Blur, 0)
}

// avgKernel returns the kernel size, or false when averaging is disabled.
func (o Options) avgKernel() (image.Point, bool) {
	if o.Avg.X <= 0 && o.Avg.Y <= 0 {
		return image.Point{}, false
	}
	return image.Pt(max(o.Avg.X, 1), max(o.Avg.Y, 1)), true
}

// resizeTarget returns the size a src-sized image is resampled to, or false
// when resizing is disabled or would not change anything.
func (o Options) resizeTarget(src image.Point) (image.Point, bool) {
	var dst image.Point
	switch {
	case o.Resize.X > 0 || o.Resize.Y > 0:
		dst = image.Pt(max(o.Resize.X, 0), max(o.Resize.Y, 0))
		if dst.X == 0 {
			dst.X = max(int(math.Round(float64(src.X)*float64(dst.Y)/float64(src.Y))), 1)
		}
		if dst.Y == 0 {
			dst.Y = max(int(math.Round(float64(src.Y)*float64(dst.X)/float64(src.X))), 1)
		}
	case o.Downscale > 1 && !math.IsInf(o.Downscale, 0):
		dst = image.Pt(
			max(int(math.Round(float64(src.X)/o.Downscale)), 1),
			max(int(math.Round(float64(src.Y)/o.Downscale)), 1),
		)
	default:
		return src, false
	}

	return dst, dst != src
}

// String describes the enabled stages, for logging.
func (o Options) String() string {
	return fmt.Sprintf("resize=%v downscale=%g resample=%s restore=%t quantize=%d avg=%v tolerance=%d dither=%t blur=%g",
		o.Resize, o.Downscale, o.Resample, o.Restore, o.Quantize, o.Avg, o.TransparencyTolerance, o.Dither, o.Blur)
}
