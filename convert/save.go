package convert

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

var extFormats = map[string]string{
	".gif":  "gif",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".bmp":  "bmp",
	".tif":  "tiff",
	".tiff": "tiff",
}

func formatFromExt(name string) (string, error) {
	if f, ok := extFormats[strings.ToLower(filepath.Ext(name))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format: %q", filepath.Ext(name))
}

func encodable(format string) bool {
	switch format {
	case "gif", "jpeg", "png", "bmp", "tiff":
		return true
	}
	return false
}

// resolveDest returns the format img is encoded in and the path it is
// written to. outType is a format name, "same" to keep imgType, or
// "unsup:<format>" to fall back to <format> only when imgType cannot be
// encoded. The extension of dest follows a format change.
func resolveDest(imgType, outType, dest string) (string, string) {
	outType, unsupOnly := strings.CutPrefix(outType, "unsup:")
	if (unsupOnly && encodable(imgType)) || (outType == "same") {
		outType = imgType
	}

	destDir, destName := filepath.Split(dest)
	if extType, err := formatFromExt(destName); err != nil || extType != outType {
		oldExt := filepath.Ext(destName)
		destName = fmt.Sprintf("%s.%s", destName[:len(destName)-len(oldExt)], outType)
	}
	return outType, filepath.Join(destDir, destName)
}

// save encodes img to the destination picked by resolveDest. The file is
// written under a temporary name and renamed once complete. GIF output is
// dithered to pal.
func save(img image.Image, imgType, outType, dest string, pal color.Palette) (err error) {
	outType, dest = resolveDest(imgType, outType, dest)
	destDir, destName := filepath.Split(dest)
	if destDir == "" {
		destDir = "."
	}

	outFile, err := os.CreateTemp(destDir, destName)
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", destName, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", destName, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", destName, defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), filepath.Join(destDir, destName)); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", destName, defErr)
			}
		}
		if err != nil {
			_ = os.Remove(outFile.Name())
		}
	}()

	switch outType {
	case "gif":
		if err = gif.Encode(outFile, img, &gif.Options{NumColors: 256, Quantizer: gifQuantizer(pal), Drawer: draw.FloydSteinberg}); err != nil {
			return fmt.Errorf("could not encode GIF destination %q: %w", destName, err)
		}
	case "jpeg":
		if err = jpeg.Encode(outFile, img, &jpeg.Options{Quality: 100}); err != nil {
			return fmt.Errorf("could not encode JPEG destination %q: %w", destName, err)
		}
	case "png":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		if err = enc.Encode(outFile, img); err != nil {
			return fmt.Errorf("could not encode PNG destination %q: %w", destName, err)
		}
	case "bmp":
		if err = bmp.Encode(outFile, img); err != nil {
			return fmt.Errorf("could not encode BMP destination %q: %w", destName, err)
		}
	case "tiff":
		if err = tiff.Encode(outFile, img, nil); err != nil {
			return fmt.Errorf("could not encode TIFF destination %q: %w", destName, err)
		}
	default:
		return fmt.Errorf("unsupported output format: %s", outType)
	}

	canRename = true
	return err
}

// gifQuantizer always answers with the recoloring palette, plus a
// transparent entry when there is room for one.
type gifQuantizer color.Palette

func (q gifQuantizer) Quantize(p color.Palette, _ image.Image) color.Palette {
	p = append(p[:0], q[:min(len(q), cap(p))]...)
	if len(p) < cap(p) {
		p = append(p, color.Transparent)
	}
	return p
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
