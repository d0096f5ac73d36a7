package recolor

import (
	"image"
	"image/color"

	"nordify/palette"
)

// dither maps every pixel of img above tolerance to pal in place,
// spreading the rounding error with Floyd-Steinberg weights. Pixels at or
// below the tolerance neither change nor take part in the diffusion.
func dither(img *image.NRGBA, pal palette.Palette, tolerance uint8) {
	w, h := img.Rect.Dx(), img.Rect.Dy()

	// cur and next hold the error diffused into the current and the next
	// row, with one pixel of padding on each side.
	cur := make([][3]int32, w+2)
	next := make([][3]int32, w+2)

	for y := range h {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := range w {
			px := row[x*4 : x*4+4 : x*4+4]
			if px[3] <= tolerance {
				continue
			}

			e := cur[x+1]
			c := color.NRGBA{
				R: clamp8(int32(px[0]) + e[0]/16),
				G: clamp8(int32(px[1]) + e[1]/16),
				B: clamp8(int32(px[2]) + e[2]/16),
				A: px[3],
			}
			// only the clamped color's error is diffused
			want := [3]int32{int32(c.R), int32(c.G), int32(c.B)}
			c = pal.Convert(c)
			px[0], px[1], px[2] = c.R, c.G, c.B

			for ch, v := range [3]uint8{c.R, c.G, c.B} {
				diff := want[ch] - int32(v)
				cur[x+2][ch] += diff * 7
				next[x][ch] += diff * 3
				next[x+1][ch] += diff * 5
				next[x+2][ch] += diff
			}
		}

		cur, next = next, cur
		clear(next)
	}
}

func clamp8(v int32) uint8 {
	return uint8(max(0, min(255, v)))
}
