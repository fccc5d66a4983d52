package texture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer"
	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(img *image.NRGBA, x, y int) color.NRGBA {
	return img.NRGBAAt(x, y)
}

func TestPatternsAreOpaque(t *testing.T) {
	assert.Len(t, Patterns(), 12)
	for _, p := range Patterns() {
		t.Run(string(p), func(t *testing.T) {
			img, err := GeneratePattern(p, 320, 180)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 320, 180), img.Bounds())
			for i := 3; i < len(img.Pix); i += 4 {
				if img.Pix[i] != 255 {
					t.Fatalf("pixel %d is not opaque", i/4)
				}
			}
		})
	}
}

func TestGeneratePatternErrors(t *testing.T) {
	_, err := GeneratePattern("plaid", 10, 10)
	assert.ErrorIs(t, err, ErrUnknownPattern)
	_, err = GeneratePattern(PatternGrid, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidSize)

	p, ok := ParsePattern("color_bars_smpte")
	assert.True(t, ok)
	assert.Equal(t, PatternColorBarsSMPTE, p)
	_, ok = ParsePattern("plaid")
	assert.False(t, ok)

	img, err := GeneratePattern(PatternMixed, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, img.Bounds().Dx())
}

func TestGridPattern(t *testing.T) {
	img, err := GeneratePattern(PatternGrid, DefaultPatternWidth, DefaultPatternHeight)
	require.NoError(t, err)
	assert.Equal(t, green, at(img, 10, 10))
	assert.Equal(t, green, at(img, 1910, 1070))
	assert.Equal(t, red, at(img, 960, 300))
	assert.Equal(t, white, at(img, 240, 300))
	assert.Equal(t, black, at(img, 300, 300))
}

func TestBarsAndCheckerboard(t *testing.T) {
	smpte, err := GeneratePattern(PatternColorBarsSMPTE, DefaultPatternWidth, DefaultPatternHeight)
	require.NoError(t, err)
	assert.Equal(t, rgb(192, 192, 192), at(smpte, 10, 10))
	assert.Equal(t, rgb(0, 0, 192), at(smpte, 10, 1070))
	assert.Equal(t, black, at(smpte, 300, 1070))

	full, err := GeneratePattern(PatternColorBarsFull, DefaultPatternWidth, DefaultPatternHeight)
	require.NoError(t, err)
	assert.Equal(t, white, at(full, 10, 10))
	assert.Equal(t, black, at(full, 1900, 10))

	checker, err := GeneratePattern(PatternCheckerboard, 256, 256)
	require.NoError(t, err)
	assert.Equal(t, white, at(checker, 10, 10))
	assert.Equal(t, black, at(checker, 70, 10))
	assert.Equal(t, white, at(checker, 70, 70))
}

func TestGradients(t *testing.T) {
	h, err := GeneratePattern(PatternGradientHorizontal, 1920, 4)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), at(h, 0, 1).R)
	assert.Equal(t, uint8(127), at(h, 960, 1).R)

	v, err := GeneratePattern(PatternGradientVertical, 4, 100)
	require.NoError(t, err)
	assert.Equal(t, uint8(127), at(v, 2, 50).G)

	r, err := GeneratePattern(PatternGradientRadial, 200, 100)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), at(r, 100, 50).B)
	assert.Greater(t, at(r, 0, 0).B, uint8(250))
}

func TestFocusPattern(t *testing.T) {
	img, err := GeneratePattern(PatternFocus, DefaultPatternWidth, DefaultPatternHeight)
	require.NoError(t, err)
	assert.Equal(t, rgb(128, 128, 128), at(img, 5, 605))
	assert.Equal(t, white, at(img, 100, 100))
}

func TestFitAndStaging(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 18, 14))
	src.Set(10, 10, color.RGBA{R: 255, A: 255})
	n := ToNRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 8, 4), n.Bounds())
	assert.Equal(t, red, at(n, 0, 0))
	assert.Same(t, n, ToNRGBA(n))

	assert.Same(t, n, Fit(n, 8))
	fitted := Fit(n, 4)
	assert.Equal(t, image.Rect(0, 0, 4, 2), fitted.Bounds())

	data := StagingData(n)
	assert.Equal(t, uint32(8), data.Width)
	assert.Equal(t, uint32(4), data.Height)
	assert.Len(t, data.Pixels, 8*4*4)
	assert.Equal(t, []byte{255, 0, 0, 255}, data.Pixels[:4])

	sub := n.SubImage(image.Rect(1, 1, 3, 2)).(*image.NRGBA)
	assert.Len(t, StagingData(sub).Pixels, 2*1*4)
}

type fakeUploader struct {
	labels []string
	data   []common.TextureStagingData
}

func (f *fakeUploader) CreateImageTexture(label string, data common.TextureStagingData) (*renderer.Texture, error) {
	f.labels = append(f.labels, label)
	f.data = append(f.data, data)
	return &renderer.Texture{Label: label, Width: data.Width, Height: data.Height}, nil
}

func TestUpload(t *testing.T) {
	u := &fakeUploader{}
	img, err := GeneratePattern(PatternGrid, MaxSize*2, 16)
	require.NoError(t, err)

	tex, err := Upload(u, "grid", img)
	require.NoError(t, err)
	assert.Equal(t, uint32(MaxSize), tex.Width)
	assert.Equal(t, uint32(8), tex.Height)
	assert.Equal(t, []string{"grid"}, u.labels)

	_, err = Upload(u, "empty", image.NewNRGBA(image.Rectangle{}))
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestSaveAndDecode(t *testing.T) {
	dir := t.TempDir()
	img, err := GeneratePattern(PatternCheckerboard, 128, 64)
	require.NoError(t, err)

	for _, name := range []string{"a.webp", "b.png"} {
		path := filepath.Join(dir, "out", name)
		require.NoError(t, Save(path, img))
		decoded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, img.Bounds(), decoded.Bounds())
		assert.Equal(t, at(img, 10, 10), at(decoded, 10, 10))
		assert.Equal(t, at(img, 70, 10), at(decoded, 70, 10))
	}

	assert.ErrorIs(t, Save(filepath.Join(dir, "c.gif"), img), ErrUnsupportedFormat)
	_, _, err = Decode(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestDecodeDetectsFormat(t *testing.T) {
	img, err := GeneratePattern(PatternCheckerboard, 32, 16)
	require.NoError(t, err)

	var pngBuf, tgaBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))
	require.NoError(t, tga.Encode(&tgaBuf, img))
	webpPath := filepath.Join(t.TempDir(), "a.webp")
	require.NoError(t, Save(webpPath, img))
	webpRaw, err := os.ReadFile(webpPath)
	require.NoError(t, err)

	cases := map[string][]byte{
		"png":  pngBuf.Bytes(),
		"webp": webpRaw,
		"tga":  tgaBuf.Bytes(),
	}
	for want, raw := range cases {
		t.Run(want, func(t *testing.T) {
			decoded, format, err := Decode(bytes.NewReader(raw))
			require.NoError(t, err)
			assert.Equal(t, want, format)
			assert.Equal(t, img.Bounds(), decoded.Bounds())
			assert.Equal(t, at(img, 1, 1), at(decoded, 1, 1))
			assert.Equal(t, at(img, 20, 1), at(decoded, 20, 1))
		})
	}
}

func TestExportPatterns(t *testing.T) {
	files, err := ExportPatterns(t.TempDir(), 64, 36, FormatPNG)
	require.NoError(t, err)
	assert.Len(t, files, len(Patterns()))
	for _, f := range files {
		assert.FileExists(t, f)
	}
}

func TestLoadBatch(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := range 5 {
		p := filepath.Join(dir, string(rune('a'+i))+".png")
		writePNG(t, p, image.NewNRGBA(image.Rect(0, 0, i+1, 1)))
		paths = append(paths, p)
	}
	paths = append(paths, filepath.Join(dir, "missing.png"))

	results := LoadBatch(paths, 3)
	require.Len(t, results, 6)
	for i := range 5 {
		require.NoError(t, results[i].Err)
		assert.Equal(t, paths[i], results[i].Path)
		assert.Equal(t, i+1, results[i].Image.Bounds().Dx())
	}
	assert.Error(t, results[5].Err)
	assert.Empty(t, LoadBatch(nil, 0))
}

func TestLoadBatchReusesWorkers(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.png")
	writePNG(t, p, image.NewNRGBA(image.Rect(0, 0, 2, 2)))
	paths := []string{p, p, p, p}

	LoadBatch(paths, 2)
	before := runtime.NumGoroutine()
	for range 10 {
		for _, r := range LoadBatch(paths, 2) {
			require.NoError(t, r.Err)
		}
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before+2)
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slide.png")
	writePNG(t, path, image.NewNRGBA(image.Rect(0, 0, 1, 1)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := NewWatcher(ctx)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(path))
	require.NoError(t, w.Add(path))

	writePNG(t, filepath.Join(dir, "other.png"), image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	writePNG(t, path, image.NewNRGBA(image.Rect(0, 0, 2, 2)))

	want, err := canonical(path)
	require.NoError(t, err)
	select {
	case got := <-w.Changes():
		assert.Equal(t, want, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	w.Remove(path)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
