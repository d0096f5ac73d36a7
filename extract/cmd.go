package extract

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"nordify/palette"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type CLICmd struct {
	Image  string `arg:"" help:"Image to take the colors from" type:"existingfile"`
	Output string `arg:"" help:"Palette file to write, RIFF if it ends in .pal, a palette string otherwise"`
	Colors int    `short:"n" help:"Number of colors to extract" default:"16"`
	Method string `help:"Extraction method" enum:"kmeans,dominant" default:"kmeans"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if c.Colors < 1 || c.Colors > 256 {
		return fmt.Errorf("invalid number of colors: %d", c.Colors)
	}

	dir := filepath.Dir(c.Output)
	if info, err := os.Stat(dir); err != nil {
		return fmt.Errorf("invalid output path %q: %w", c.Output, err)
	} else if !info.IsDir() {
		return fmt.Errorf("invalid output path %q: not a directory", dir)
	}

	return nil
}

func (c *CLICmd) Run() error {
	logger := slog.Default().With("file", c.Image)

	f, err := os.Open(c.Image)
	if err != nil {
		return fmt.Errorf("could not open image %q: %w", c.Image, err)
	}
	img, _, err := image.Decode(f)
	if closeErr := f.Close(); closeErr != nil {
		logger.Error("could not close image", "error", closeErr)
	}
	if err != nil {
		return fmt.Errorf("could not decode image %q: %w", c.Image, err)
	}

	method := MethodKMeans
	if c.Method == "dominant" {
		method = MethodDominantColor
	}

	pal := Palette(img, c.Colors, method)
	if err := palette.Validate(&pal); err != nil {
		return fmt.Errorf("could not extract colors from %q: %w", c.Image, err)
	}
	logger.Info("extracted palette", "method", method, "colors", pal.Len())

	return writePalette(c.Output, &pal)
}

func writePalette(name string, pal *palette.Dynamic) (err error) {
	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("could not create palette file %q: %w", name, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("could not close palette file %q: %w", name, closeErr)
		}
	}()

	if strings.EqualFold(filepath.Ext(name), ".pal") {
		_, err = pal.WriteRIFF(out)
	} else {
		err = palette.Format(out, pal)
	}
	if err != nil {
		return fmt.Errorf("could not write palette file %q: %w", name, err)
	}

	slog.Info("saved palette", "file", name)
	return nil
}
