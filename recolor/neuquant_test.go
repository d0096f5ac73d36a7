package recolor

import (
	"image/color"
	"testing"

	"nordify/palette"
)

func TestTrainPaletteSingleColor(t *testing.T) {
	c := color.NRGBA{R: 200, G: 40, B: 90, A: 255}
	samples := make([]color.NRGBA, 1000)
	for i := range samples {
		samples[i] = c
	}

	pal := trainPalette(samples, 1)
	if pal.Len() != netSize {
		t.Fatalf("trained %d colors, want %d", pal.Len(), netSize)
	}
	if d := palette.Distance(pal.Convert(c), c); d != 0 {
		t.Errorf("nearest trained color is %d away from the only input color", d)
	}
}

func TestTrainPaletteDeterministic(t *testing.T) {
	img := makeGradient(64, 64, 255)
	samples := make([]color.NRGBA, 0, 64*64)
	for y := range 64 {
		for x := range 64 {
			samples = append(samples, img.NRGBAAt(x, y))
		}
	}

	for _, fac := range []int{1, 10, 30} {
		a, b := trainPalette(samples, fac), trainPalette(samples, fac)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("sample factor %d: entry %d differs: %v vs %v", fac, i, a[i], b[i])
			}
		}
	}
}

func TestTrainPaletteTooFewSamples(t *testing.T) {
	samples := []color.NRGBA{{R: 1, G: 2, B: 3, A: 255}}
	pal := trainPalette(samples, 30)

	// no training happens, the initial grey ramp is returned
	for i, c := range pal {
		if c.R != c.G || c.G != c.B || int(c.R) != i {
			t.Fatalf("entry %d = %v, want grey %d", i, c, i)
		}
	}
}

func TestDither(t *testing.T) {
	img := makeNRGBA(16, 16, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	img.SetNRGBA(0, 0, color.NRGBA{R: 128, G: 128, B: 128, A: 20})
	pal := palette.NewStatic(0x000000, 0xFFFFFF)

	dither(img, pal, 190)

	if c := img.NRGBAAt(0, 0); c != (color.NRGBA{R: 128, G: 128, B: 128, A: 20}) {
		t.Errorf("transparent pixel changed to %v", c)
	}

	var white int
	for y := range 16 {
		for x := range 16 {
			if x == 0 && y == 0 {
				continue
			}
			c := img.NRGBAAt(x, y)
			if !inPalette(pal, c) {
				t.Fatalf("pixel (%d,%d) = %v is not a palette color", x, y, c)
			}
			if c.R == 255 {
				white++
			}
		}
	}

	// mid grey dithers to roughly half white, half black
	if white < 100 || white > 155 {
		t.Errorf("%d of 255 pixels are white", white)
	}
}

func TestDitherErrorDoesNotBleed(t *testing.T) {
	const w, red, blue = 64, 400, 40
	img := makeNRGBA(w, red+blue, color.NRGBA{R: 255, A: 255})
	for y := red; y < red+blue; y++ {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{B: 255, A: 255})
		}
	}

	dither(img, palette.Nord, 190)

	var reddish int
	for y := red + 5; y < red+blue; y++ {
		for x := range w {
			if c := img.NRGBAAt(x, y); c.R > c.B {
				reddish++
			}
		}
	}
	if reddish != 0 {
		t.Errorf("%d pixels of the blue band took the red band's hue", reddish)
	}
}
