package texture

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// Format is an export encoding.
type Format string

const (
	// FormatWebP encodes lossless WebP.
	FormatWebP Format = "webp"
	// FormatPNG encodes PNG.
	FormatPNG Format = "png"
)

// FormatFor picks the export format from a file extension.
//
// Parameters:
//   - path: the destination file
//
// Returns:
//   - Format: the matching format
//   - error: ErrUnsupportedFormat for other extensions
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".webp":
		return FormatWebP, nil
	case ".png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Encode writes an image in the given format.
//
// Parameters:
//   - w: the destination
//   - img: the image
//   - format: the encoding
//
// Returns:
//   - error: ErrUnsupportedFormat or a wrapped encode error
func Encode(w io.Writer, img image.Image, format Format) error {
	var err error
	switch format {
	case FormatWebP:
		err = nativewebp.Encode(w, img, nil)
	case FormatPNG:
		err = png.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("texture: encode %s: %w", format, err)
	}
	return nil
}

// Save writes an image to path in the format implied by its extension, creating parent
// directories as needed.
//
// Parameters:
//   - path: the destination file, .webp or .png
//   - img: the image
//
// Returns:
//   - error: ErrUnsupportedFormat or a wrapped create or encode error
func Save(path string, img image.Image) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("texture: create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("texture: create %s: %w", path, err)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("texture: close %s: %w", path, err)
	}
	return nil
}

// ExportPatterns renders every registered pattern into dir as <name>.<format>.
//
// Parameters:
//   - dir: the destination directory
//   - width, height: the pattern size
//   - format: the encoding
//
// Returns:
//   - []string: the written files
//   - error: the first generate or save error
func ExportPatterns(dir string, width, height int, format Format) ([]string, error) {
	var written []string
	for _, p := range Patterns() {
		img, err := GeneratePattern(p, width, height)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, string(p)+"."+string(format))
		if err := Save(path, img); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
