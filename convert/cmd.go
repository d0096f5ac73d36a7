package convert

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"nordify/palette"
	"nordify/parallel"
	"nordify/recolor"

	"github.com/alecthomas/kong"
)

var ErrTypeMismatch = errors.New("INPUT and OUTPUT must both be either a file or a directory")

type CLICmd struct {
	Input  string `arg:"" help:"Input file or directory"`
	Output string `arg:"" help:"Output file or directory. A directory input needs an existing output directory."`

	Blur      float64 `short:"b" help:"Blur the result by a given sigma" placeholder:"SIGMA" default:"0" env:"IGN_BLUR"`
	Quantize  int     `short:"q" help:"Quantize the image with a given factor of samples, between 1 and 30. Any other value disables quantization." placeholder:"SAMPLEFAC" default:"0" env:"IGN_QUANTIZE"`
	Palette   string  `short:"p" help:"Palette name (nord, aurora, frost, polar-night, snow-storm), palette text file or PAL file in RIFF format" default:"nord" env:"IGN_PALETTE"`
	Tolerance uint8   `help:"Pixels with an alpha at or below this are not recolored" default:"190"`
	Avg       string  `help:"Average a WxH kernel around every pixel before recoloring" placeholder:"WxH" group:"averaging"`
	Dither    bool    `help:"Diffuse the recoloring error over neighbouring pixels" default:"false"`
	Resize    string  `help:"Resize to WxH before processing, a zero side keeps the aspect ratio" placeholder:"WxH" group:"resize"`
	Downscale float64 `help:"Divide both sides by this factor before processing" default:"0" group:"resize"`
	Linear    bool    `help:"Use linear instead of nearest neighbour resampling" default:"false" group:"resize"`
	NoRestore bool    `help:"Keep the reduced size instead of restoring the original one" default:"false" group:"resize"`
	Format    string  `help:"Output format in directory mode. If prefixed with 'unsup:' will convert only unsupported formats" enum:"same,gif,unsup:gif,jpeg,unsup:jpeg,png,unsup:png,bmp,unsup:bmp,tiff,unsup:tiff" default:"unsup:png"`
	FailFast  bool    `help:"Stop at the first file that fails in directory mode" default:"false"`

	pal     palette.Palette
	opts    recolor.Options
	inDir   bool
	outDir  bool
	outFile string
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	inInfo, err := os.Stat(c.Input)
	if err != nil {
		return fmt.Errorf("invalid input path %q: %w", c.Input, err)
	}
	c.inDir = inInfo.IsDir()

	outInfo, err := os.Stat(c.Output)
	switch {
	case err == nil:
		c.outDir = outInfo.IsDir()
	case errors.Is(err, os.ErrNotExist):
		c.outDir = false
	default:
		return fmt.Errorf("invalid output path %q: %w", c.Output, err)
	}

	if c.inDir && !c.outDir {
		return ErrTypeMismatch
	}

	c.outFile = c.Output
	if !c.inDir && c.outDir {
		c.outFile = filepath.Join(c.Output, filepath.Base(c.Input))
	}

	if c.pal, err = palette.LoadPalette(c.Palette); err != nil {
		return err
	}

	c.opts = recolor.DefaultOptions()
	c.opts.Blur = c.Blur
	c.opts.Quantize = c.Quantize
	c.opts.TransparencyTolerance = c.Tolerance
	c.opts.Dither = c.Dither
	c.opts.Downscale = c.Downscale
	c.opts.Restore = !c.NoRestore
	if c.Linear {
		c.opts.Resample = recolor.Linear
	}

	if c.Avg != "" {
		if c.opts.Avg, err = parseSize(c.Avg); err != nil {
			return fmt.Errorf("invalid averaging kernel: %w", err)
		}
	}
	if c.Resize != "" {
		if c.opts.Resize, err = parseSize(c.Resize); err != nil {
			return fmt.Errorf("invalid resize dimensions: %w", err)
		}
	}

	return nil
}

func (c *CLICmd) Run(pool *parallel.Pool) error {
	slog.Info("converting", "input", c.Input, "output", c.Output, "palette", c.Palette, "options", c.opts)

	if !c.inDir {
		opts := c.opts
		opts.Workers = pool.Workers
		pool.Wait(true)

		// into a directory the input name is kept and --format applies
		format := ""
		if c.outDir {
			format = c.Format
		}

		logger := slog.Default().With("file", c.Input)
		if _, err := convertFile(logger, c.Input, c.outFile, format, opts, c.pal); err != nil {
			return err
		}
		return nil
	}

	files, err := os.ReadDir(c.Input)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Input, err)
	}

	// files are already spread over the pool, rows of one file are not
	opts := c.opts
	opts.Workers = 1
	if pool.Workers == 1 {
		opts.Workers = 0
	}

	var processedCount, errCount atomic.Uint64
	var failed atomic.Bool
	var written sync.Map
	for _, file := range files {
		if !file.Type().IsRegular() {
			continue
		}

		pool.Do(func() {
			srcPath := filepath.Join(c.Input, file.Name())
			logger := slog.Default().With("file", srcPath)

			if c.FailFast && failed.Load() {
				logger.Warn("skipped after earlier failure")
				return
			}

			dest, err := convertFile(logger, srcPath, filepath.Join(c.Output, file.Name()), c.Format, opts, c.pal)
			if err != nil {
				errCount.Add(1)
				failed.Store(true)
				logger.Error("could not convert image", "error", err)
				return
			}
			if other, loaded := written.LoadOrStore(dest, srcPath); loaded {
				logger.Warn("output overwrites another converted image", "to", dest, "other", other)
			}
			processedCount.Add(1)
		})
	}

	pool.Wait(true)

	processed := processedCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "processed", processed, "errors", errors,
		"total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}

// convertFile decodes src, recolors it and saves it to dest. An empty
// format picks the encoder from the extension of dest. It returns the path
// actually written, which may differ from dest in its extension.
func convertFile(logger *slog.Logger, src, dest, format string, opts recolor.Options, pal palette.Palette) (string, error) {
	imgFile, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("could not open image: %w", err)
	}

	img, imgType, err := image.Decode(imgFile)
	if closeErr := imgFile.Close(); closeErr != nil {
		logger.Error("could not close image", "error", closeErr)
	}
	if err != nil {
		return "", fmt.Errorf("could not decode image: %w", err)
	}

	logger.Debug("decoded", "type", imgType, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	out, err := recolor.Convert(img, opts, pal)
	if err != nil {
		return "", fmt.Errorf("could not recolor image: %w", err)
	}

	if format == "" {
		if format, err = formatFromExt(dest); err != nil {
			return "", err
		}
	}

	if err = save(out, imgType, format, dest, pal.Colors()); err != nil {
		return "", fmt.Errorf("could not save image: %w", err)
	}
	_, dest = resolveDest(imgType, format, dest)
	logger.Info("converted", "to", dest)
	return dest, nil
}

// parseSize reads "WxH", "W" meaning "WxW".
func parseSize(s string) (image.Point, error) {
	ws, hs, found := strings.Cut(strings.ToLower(s), "x")
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	if !found {
		return image.Pt(w, w), nil
	}

	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	return image.Pt(w, h), nil
}
