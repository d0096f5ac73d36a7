package palette

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func rgb(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b color.NRGBA
		want int32
	}{
		{rgb(0, 0, 0), rgb(0, 0, 0), 0},
		{rgb(255, 255, 255), rgb(0, 0, 0), 195075},
		{color.NRGBA{R: 173, G: 87, B: 119, A: 255}, rgb(0, 255, 255), 76649},
		{color.NRGBA{R: 10, G: 20, B: 30, A: 0}, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, 0},
		{rgb(1, 2, 3), rgb(4, 6, 15), 9 + 16 + 144},
	}

	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := Distance(tt.b, tt.a); got != tt.want {
			t.Errorf("Distance(%v, %v) = %d, want %d (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestDistanceIdentity(t *testing.T) {
	for v := 0; v < 256; v += 5 {
		c := color.NRGBA{R: uint8(v), G: uint8(255 - v), B: uint8(v / 2), A: uint8(v)}
		if d := Distance(c, c); d != 0 {
			t.Fatalf("Distance(%v, %v) = %d", c, c, d)
		}
	}
}

func TestIndexIsNearest(t *testing.T) {
	for _, pal := range []Palette{Nord, Aurora, Frost, PolarNight, SnowStorm} {
		for r := 0; r < 256; r += 17 {
			for g := 0; g < 256; g += 17 {
				for b := 0; b < 256; b += 17 {
					c := rgb(uint8(r), uint8(g), uint8(b))
					i := pal.Index(c)
					best, _ := pal.Lookup(i)
					for j := range pal.Len() {
						e, _ := pal.Lookup(j)
						if Distance(e, c) < Distance(best, c) {
							t.Fatalf("Index(%v) = %d (%v), but %d (%v) is closer", c, i, best, j, e)
						}
					}
				}
			}
		}
	}
}

func TestIndexTieBreaksOnFirst(t *testing.T) {
	pal := NewStatic(0x000000, 0x020202, 0x000000)
	if i := pal.Index(rgb(1, 1, 1)); i != 0 {
		t.Errorf("Index = %d, want 0", i)
	}
	if i := pal.Index(rgb(0, 0, 0)); i != 0 {
		t.Errorf("Index = %d, want 0", i)
	}
}

func TestConvertKeepsAlpha(t *testing.T) {
	c := Frost.Convert(color.NRGBA{R: 0x80, G: 0xC0, B: 0xD0, A: 42})
	if want := (color.NRGBA{R: 0x88, G: 0xC0, B: 0xD0, A: 42}); c != want {
		t.Errorf("Convert = %v, want %v", c, want)
	}
}

func TestEmptyPalette(t *testing.T) {
	var pal Dynamic
	c := color.NRGBA{R: 1, G: 2, B: 3, A: 4}

	if i := pal.Index(c); i != -1 {
		t.Errorf("Index = %d, want -1", i)
	}
	if got := pal.Convert(c); got != c {
		t.Errorf("Convert = %v, want %v", got, c)
	}
	if err := Validate(&pal); !errors.Is(err, ErrEmptyPalette) {
		t.Errorf("Validate = %v, want ErrEmptyPalette", err)
	}
	if err := Validate(nil); !errors.Is(err, ErrEmptyPalette) {
		t.Errorf("Validate(nil) = %v, want ErrEmptyPalette", err)
	}
}

func TestMustStaticPanicsOnEmptyTable(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustStatic() did not panic")
		}
	}()
	MustStatic()
}

func TestLookup(t *testing.T) {
	if c, ok := Frost.Lookup(3); !ok || c != rgb(0x5E, 0x81, 0xAC) {
		t.Errorf("Lookup(3) = %v, %t", c, ok)
	}
	for _, i := range []int{-1, 4, 100} {
		if _, ok := Frost.Lookup(i); ok {
			t.Errorf("Lookup(%d) found an entry", i)
		}
	}
}

func TestNordConcat(t *testing.T) {
	subs := []*Static{Aurora, Frost, PolarNight, SnowStorm}
	sizes := []int{5, 4, 4, 3}

	if Nord.Len() != 16 {
		t.Fatalf("Nord.Len() = %d, want 16", Nord.Len())
	}

	i := 0
	for s, sub := range subs {
		if sub.Len() != sizes[s] {
			t.Errorf("sub-palette %d has %d colors, want %d", s, sub.Len(), sizes[s])
		}
		for j := range sub.Len() {
			want, _ := sub.Lookup(j)
			if got, _ := Nord.Lookup(i); got != want {
				t.Errorf("Nord[%d] = %v, want %v", i, got, want)
			}
			i++
		}
	}
}

func TestStaticToDynamicCopies(t *testing.T) {
	d := Frost.Dynamic()
	d[0] = rgb(1, 2, 3)
	d.AppendHex(0xFFFFFF)

	if c, _ := Frost.Lookup(0); c != rgb(0x8F, 0xBC, 0xBB) {
		t.Errorf("Frost changed to %v", c)
	}
	if d.Len() != 5 || Frost.Len() != 4 {
		t.Errorf("lengths = %d, %d", d.Len(), Frost.Len())
	}
}

func TestBuiltin(t *testing.T) {
	for _, name := range []string{"nord", "NORD", "Polar-Night", "snow-storm", "aurora", "frost"} {
		if _, ok := Builtin(name); !ok {
			t.Errorf("Builtin(%q) not found", name)
		}
	}
	if _, ok := Builtin("solarized"); ok {
		t.Error("Builtin(solarized) found")
	}
	if names := BuiltinNames(); len(names) != 5 || names[0] != "aurora" {
		t.Errorf("BuiltinNames() = %v", names)
	}
}

func TestParse(t *testing.T) {
	pal, err := ParseString("#8FBCBB\n#88c0d0 (nord8)\nskip this\n#5e81ac")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	want := Dynamic{rgb(0x8F, 0xBC, 0xBB), rgb(0x88, 0xC0, 0xD0), rgb(0x5E, 0x81, 0xAC)}
	if len(pal) != len(want) {
		t.Fatalf("got %d colors, want %d", len(pal), len(want))
	}
	for i := range want {
		if pal[i] != want[i] {
			t.Errorf("color %d = %v, want %v", i, pal[i], want[i])
		}
	}
}

func TestParseMessy(t *testing.T) {
	const s = `
	========== Nord Frost Palette ==========
	#8FBCBB is called nord7
	#88c0d0 (nord8)
	#81A1C1
	skip this line
	  #5e81ac -- an informative comment about nord10
	#
	`
	pal, err := ParseString(s)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(pal) != Frost.Len() {
		t.Fatalf("got %d colors, want %d", len(pal), Frost.Len())
	}
	for i := range pal {
		if want, _ := Frost.Lookup(i); pal[i] != want {
			t.Errorf("color %d = %v, want %v", i, pal[i], want)
		}
	}
}

func TestParseFailsOnFirstBadColor(t *testing.T) {
	_, err := ParseString("#8FBCBB\n#nord8\n#zzzzzz\n")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if perr.Line != 2 || perr.Token != "nord8" {
		t.Errorf("ParseError = %+v", perr)
	}
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Errorf("err = %v, want wrapped strconv.ErrSyntax", err)
	}
}

func TestParseNoColors(t *testing.T) {
	pal, err := ParseString("nothing to see\n\n")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(pal) != 0 {
		t.Errorf("got %d colors", len(pal))
	}
}

func TestFormatParses(t *testing.T) {
	var buf bytes.Buffer
	if err := Format(&buf, Nord); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "#bf616a\n") {
		t.Errorf("Format output starts with %q", buf.String()[:8])
	}

	pal, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pal.Len() != Nord.Len() {
		t.Fatalf("got %d colors, want %d", pal.Len(), Nord.Len())
	}
	for i := range pal {
		if want, _ := Nord.Lookup(i); pal[i] != want {
			t.Errorf("color %d = %v, want %v", i, pal[i], want)
		}
	}
}

func TestRIFF(t *testing.T) {
	src := Aurora.Dynamic()
	var buf bytes.Buffer
	if n, err := src.WriteRIFF(&buf); err != nil || n != int64(src.Len()) {
		t.Fatalf("WriteRIFF = %d, %v", n, err)
	}

	var dst Dynamic
	if n, err := dst.ReadRIFF(&buf); err != nil || n != int64(src.Len()) {
		t.Fatalf("ReadRIFF = %d, %v", n, err)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Errorf("color %d = %v, want %v", i, dst[i], src[i])
		}
	}
}

func TestReadRIFFRejectsOtherForms(t *testing.T) {
	data := []byte("RIFF\x04\x00\x00\x00WAVE")
	var pal Dynamic
	if _, err := pal.ReadRIFF(bytes.NewReader(data)); err == nil {
		t.Error("ReadRIFF accepted a WAVE stream")
	}
}

func TestLoadPalette(t *testing.T) {
	dir := t.TempDir()

	text := filepath.Join(dir, "frost.txt")
	if err := os.WriteFile(text, []byte("#8FBCBB\n#88C0D0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	riff := filepath.Join(dir, "aurora.PAL")
	var buf bytes.Buffer
	src := Aurora.Dynamic()
	if _, err := src.WriteRIFF(&buf); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(riff, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("no colors here\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		want    int
		wantErr error
	}{
		{"nord", 16, nil},
		{"Snow-Storm", 3, nil},
		{text, 2, nil},
		{riff, 5, nil},
		{empty, 0, ErrEmptyPalette},
		{filepath.Join(dir, "missing"), 0, os.ErrNotExist},
	}

	for _, tt := range tests {
		pal, err := LoadPalette(tt.name)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadPalette(%q) error = %v, want %v", tt.name, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("LoadPalette(%q): %v", tt.name, err)
			continue
		}
		if pal.Len() != tt.want {
			t.Errorf("LoadPalette(%q) has %d colors, want %d", tt.name, pal.Len(), tt.want)
		}
	}
}
