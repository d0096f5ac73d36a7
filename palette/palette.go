package palette

import (
	"errors"
	"image/color"
	"math"
)

var ErrEmptyPalette = errors.New("palette has no colors")

// Palette is an ordered, read-only set of reference colors answering
// nearest-color queries. Implementations are safe for concurrent use once
// built.
type Palette interface {
	Len() int
	// Index returns the position of the first entry closest to c, or -1 if
	// the palette is empty.
	Index(c color.NRGBA) int
	// Convert replaces the RGB channels of c with its nearest entry. Alpha is
	// kept.
	Convert(c color.NRGBA) color.NRGBA
	Lookup(i int) (color.NRGBA, bool)
	Colors() color.Palette
}

var (
	_ Palette = &Static{}
	_ Palette = &Dynamic{}
)

// Distance is the squared euclidean distance between the RGB channels of a
// and b. Alpha does not participate.
func Distance(a, b color.NRGBA) int32 {
	dr := int32(a.R) - int32(b.R)
	dg := int32(a.G) - int32(b.G)
	db := int32(a.B) - int32(b.B)
	return dr*dr + dg*dg + db*db
}

func Validate(p Palette) error {
	if p == nil || p.Len() == 0 {
		return ErrEmptyPalette
	}
	return nil
}

func nearest(entries []color.NRGBA, c color.NRGBA) int {
	ret, best := -1, int32(math.MaxInt32)
	for i, v := range entries {
		sum := Distance(v, c)
		if sum < best {
			if sum == 0 {
				return i
			}
			ret, best = i, sum
		}
	}
	return ret
}

func convert(entries []color.NRGBA, c color.NRGBA) color.NRGBA {
	i := nearest(entries, c)
	if i < 0 {
		return c
	}
	e := entries[i]
	c.R, c.G, c.B = e.R, e.G, e.B
	return c
}

func lookup(entries []color.NRGBA, i int) (color.NRGBA, bool) {
	if i < 0 || i >= len(entries) {
		return color.NRGBA{}, false
	}
	return entries[i], true
}

func colors(entries []color.NRGBA) color.Palette {
	pal := make(color.Palette, len(entries))
	for i, e := range entries {
		pal[i] = e
	}
	return pal
}

func fromHex(hex uint32) color.NRGBA {
	return color.NRGBA{
		R: uint8(hex >> 16),
		G: uint8(hex >> 8),
		B: uint8(hex),
		A: 0xFF,
	}
}

func opaque(c color.Color) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0xFF
	return n
}

// Static is a fixed-size palette built once, usually at start-up from a
// compile-time table.
type Static struct {
	entries []color.NRGBA
}

func NewStatic(hex ...uint32) *Static {
	p := &Static{entries: make([]color.NRGBA, len(hex))}
	for i, h := range hex {
		p.entries[i] = fromHex(h)
	}
	return p
}

// MustStatic is NewStatic for package-level tables; it panics on an empty
// table.
func MustStatic(hex ...uint32) *Static {
	if len(hex) == 0 {
		panic(ErrEmptyPalette)
	}
	return NewStatic(hex...)
}

// Concat joins palettes into a single fixed palette, keeping their order.
func Concat(ps ...Palette) *Static {
	n := 0
	for _, p := range ps {
		n += p.Len()
	}

	res := &Static{entries: make([]color.NRGBA, 0, n)}
	for _, p := range ps {
		for i := range p.Len() {
			e, _ := p.Lookup(i)
			res.entries = append(res.entries, e)
		}
	}
	return res
}

func (p *Static) Len() int { return len(p.entries) }

func (p *Static) Index(c color.NRGBA) int { return nearest(p.entries, c) }

func (p *Static) Convert(c color.NRGBA) color.NRGBA { return convert(p.entries, c) }

func (p *Static) Lookup(i int) (color.NRGBA, bool) { return lookup(p.entries, i) }

func (p *Static) Colors() color.Palette { return colors(p.entries) }

// Dynamic returns a growable copy of the palette.
func (p *Static) Dynamic() Dynamic {
	d := make(Dynamic, len(p.entries))
	copy(d, p.entries)
	return d
}

// Dynamic is a variable-length palette, typically parsed from text or
// trained from an image.
type Dynamic []color.NRGBA

func (p *Dynamic) Append(cs ...color.Color) {
	for _, c := range cs {
		*p = append(*p, opaque(c))
	}
}

func (p *Dynamic) AppendHex(hex ...uint32) {
	for _, h := range hex {
		*p = append(*p, fromHex(h))
	}
}

func (p *Dynamic) Len() int { return len(*p) }

func (p *Dynamic) Index(c color.NRGBA) int { return nearest(*p, c) }

func (p *Dynamic) Convert(c color.NRGBA) color.NRGBA { return convert(*p, c) }

func (p *Dynamic) Lookup(i int) (color.NRGBA, bool) { return lookup(*p, i) }

func (p *Dynamic) Colors() color.Palette { return colors(*p) }
