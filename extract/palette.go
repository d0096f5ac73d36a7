// Package extract builds palettes out of the dominant colors of an image.
package extract

import (
	"image"
	"math"
	"slices"

	"nordify/palette"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

type Method int

const (
	MethodKMeans Method = iota
	MethodDominantColor
)

func (m Method) String() string {
	switch m {
	case MethodDominantColor:
		return "dominantcolor"
	default:
		return "kmeans"
	}
}

// maxSamples bounds the pixels handed to kmeans.
const maxSamples = 12000

// Palette returns up to k colors of img, darkest first. kmeans falls back to
// dominantcolor when it cannot cluster the image. Results vary between runs.
func Palette(img image.Image, k int, method Method) palette.Dynamic {
	var cols []colorful.Color
	if method == MethodKMeans {
		cols = kMeansColors(img, k)
	}
	if len(cols) == 0 {
		cols = dominantColors(img, k)
	}

	sortByLuminance(cols)

	pal := make(palette.Dynamic, 0, len(cols))
	for _, c := range cols {
		pal.Append(c)
	}
	return pal
}

func kMeansColors(img image.Image, k int) []colorful.Color {
	b := img.Bounds()
	if k <= 0 || b.Empty() {
		return nil
	}

	step := 1
	if n := b.Dx() * b.Dy(); n > maxSamples {
		step = int(math.Sqrt(float64(n)/maxSamples)) + 1
	}

	var dataset clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			// un-premultiply so translucent pixels count with their own color
			dataset = append(dataset, clusters.Coordinates{
				float64(r) / float64(a),
				float64(g) / float64(a),
				float64(bl) / float64(a),
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	cc, err := kmeans.New().Partition(dataset, min(k, len(dataset)))
	if err != nil {
		return nil
	}

	// most populated clusters first, empty ones dropped
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	cols := make([]colorful.Color, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		cols = append(cols, colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped())
	}
	return cols
}

func dominantColors(img image.Image, k int) []colorful.Color {
	if k <= 0 || img.Bounds().Empty() {
		return nil
	}

	cols := make([]colorful.Color, 0, k)
	for _, c := range dominantcolor.FindWeight(img, k) {
		col, _ := colorful.MakeColor(c.RGBA)
		cols = append(cols, col.Clamped())
	}
	return cols
}

func luminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func sortByLuminance(cols []colorful.Color) {
	slices.SortStableFunc(cols, func(a, b colorful.Color) int {
		la, lb := luminance(a), luminance(b)
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return 0
	})
}
