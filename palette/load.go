package palette

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadPalette resolves a built-in palette name or reads a palette file.
// Files ending in ".pal" are read as RIFF palettes, anything else as a
// palette string.
func LoadPalette(name string) (_ Palette, err error) {
	if p, ok := Builtin(name); ok {
		return p, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("palette %q is not %s and could not be opened: %w", name, builtinHelp(), err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("could not close palette %q: %w", name, closeErr)
		}
	}()

	var pal Dynamic
	if strings.EqualFold(filepath.Ext(name), ".pal") {
		_, err = pal.ReadRIFF(f)
	} else {
		pal, err = Parse(f)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load palette %q: %w", name, err)
	}

	if err = Validate(&pal); err != nil {
		return nil, fmt.Errorf("could not load palette %q: %w", name, err)
	}
	return &pal, nil
}
