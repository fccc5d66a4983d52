// Package texture decodes projection images, generates calibration test patterns, exports
// snapshots and uploads images as projector textures.
package texture

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// MaxSize is the largest edge length of an uploaded image. Larger images are downscaled.
const MaxSize = 4096

// Uploader creates GPU textures from pixel data. renderer.Renderer satisfies it.
type Uploader interface {
	CreateImageTexture(label string, stagingData common.TextureStagingData) (*renderer.Texture, error)
}

// decoder pairs a format name and its magic prefix with a decode function. '?' in magic matches
// any byte.
type decoder struct {
	name   string
	magic  string
	decode func(io.Reader) (image.Image, error)
}

// decoders is checked in order. TGA has no magic and is the fallback. The tga package registers
// an empty prefix with package image, so image.Decode would route every input to it.
var decoders = []decoder{
	{"png", "\x89PNG\r\n\x1a\n", png.Decode},
	{"jpeg", "\xff\xd8", jpeg.Decode},
	{"gif", "GIF8", gif.Decode},
	{"bmp", "BM", bmp.Decode},
	{"tiff", "II*\x00", tiff.Decode},
	{"tiff", "MM\x00*", tiff.Decode},
	{"webp", "RIFF????WEBP", webp.Decode},
}

func matchMagic(magic string, head []byte) bool {
	if len(head) < len(magic) {
		return false
	}
	for i := range len(magic) {
		if magic[i] != '?' && magic[i] != head[i] {
			return false
		}
	}
	return true
}

// Decode reads a PNG, JPEG, GIF, BMP, TIFF or WebP image by its magic bytes. Anything else is
// decoded as TGA.
//
// Parameters:
//   - r: the encoded image
//
// Returns:
//   - *image.NRGBA: the decoded image
//   - string: the detected format name
//   - error: a wrapped decode error
func Decode(r io.Reader) (*image.NRGBA, string, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(12)

	name, decode := "tga", tga.Decode
	for _, d := range decoders {
		if matchMagic(d.magic, head) {
			name, decode = d.name, d.decode
			break
		}
	}
	img, err := decode(br)
	if err != nil {
		return nil, "", fmt.Errorf("texture: decode %s: %w", name, err)
	}
	return ToNRGBA(img), name, nil
}

// Load reads and decodes an image file.
//
// Parameters:
//   - path: the image file
//
// Returns:
//   - *image.NRGBA: the decoded image
//   - error: a wrapped read or decode error
func Load(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	img, _, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("texture: load %s: %w", path, err)
	}
	return img, nil
}

// ToNRGBA converts any image to non-premultiplied RGBA with its origin at (0, 0).
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Fit downscales an image so neither edge exceeds maxEdge, keeping the aspect ratio.
// Images that already fit are returned unchanged.
//
// Parameters:
//   - img: the source image
//   - maxEdge: the largest allowed edge length
//
// Returns:
//   - *image.NRGBA: the fitted image
func Fit(img *image.NRGBA, maxEdge int) *image.NRGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return img
	}
	nw, nh := maxEdge, maxEdge
	if w >= h {
		nh = max(1, h*maxEdge/w)
	} else {
		nw = max(1, w*maxEdge/h)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// StagingData packs an image as tightly strided RGBA8 rows, top to bottom.
//
// Parameters:
//   - img: the image
//
// Returns:
//   - common.TextureStagingData: the pixels and size
func StagingData(img *image.NRGBA) common.TextureStagingData {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	row := w * 4
	pixels := make([]byte, row*h)
	for y := range h {
		start := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(pixels[y*row:(y+1)*row], img.Pix[start:start+row])
	}
	return common.TextureStagingData{Pixels: pixels, Width: uint32(w), Height: uint32(h)}
}

// Upload fits an image to MaxSize and creates a GPU texture from it. The returned texture
// satisfies projector.TextureHandle.
//
// Parameters:
//   - u: the texture factory
//   - label: the debug label of the texture
//   - img: the image
//
// Returns:
//   - *renderer.Texture: the texture, owned by the caller
//   - error: ErrInvalidSize for empty images, or the wrapped creation error
func Upload(u Uploader, label string, img image.Image) (*renderer.Texture, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, b.Dx(), b.Dy())
	}
	data := StagingData(Fit(ToNRGBA(img), MaxSize))
	tex, err := u.CreateImageTexture(label, data)
	if err != nil {
		return nil, fmt.Errorf("texture: upload %s: %w", label, err)
	}
	return tex, nil
}

// LoadFile loads an image file and uploads it.
//
// Parameters:
//   - u: the texture factory
//   - path: the image file, also used as the label
//
// Returns:
//   - *renderer.Texture: the texture, owned by the caller
//   - error: a wrapped load or upload error
func LoadFile(u Uploader, path string) (*renderer.Texture, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Upload(u, path, img)
}
