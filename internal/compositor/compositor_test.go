package compositor

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/onepage/internal/apperr"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodePNG(t *testing.T, raw []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func assertColorNear(t *testing.T, want, got color.NRGBA, delta float64) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, delta, "red")
	assert.InDelta(t, want.G, got.G, delta, "green")
	assert.InDelta(t, want.B, got.B, delta, "blue")
	assert.InDelta(t, want.A, got.A, delta, "alpha")
}

func newTestComposer() *Composer {
	return New(Options{Settle: -1}, nil)
}

func TestLayout(t *testing.T) {
	tests := []struct {
		name          string
		frame         Frame
		w, h          int
		width, height int
		frameRect     image.Rectangle
		screen        image.Rectangle
	}{
		{
			name: "phone", frame: FramePhone, w: 1000, h: 500,
			width: 800, height: 752,
			frameRect: image.Rect(240, 48, 560, 704),
			screen:    image.Rect(256, 64, 544, 688),
		},
		{
			name: "browser", frame: FrameBrowser, w: 1000, h: 500,
			width: 800, height: 600,
			frameRect: image.Rect(48, 99, 752, 500),
			screen:    image.Rect(48, 148, 752, 500),
		},
		{
			name: "glass", frame: FrameGlass, w: 1000, h: 500,
			width: 800, height: 600,
			frameRect: image.Rect(48, 111, 752, 488),
			screen:    image.Rect(73, 136, 727, 463),
		},
		{
			name: "none tall", frame: FrameNone, w: 500, h: 1000,
			width: 800, height: 1504,
			frameRect: image.Rect(48, 48, 752, 1456),
			screen:    image.Rect(48, 48, 752, 1456),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Layout(tt.frame, tt.w, tt.h)
			assert.Equal(t, tt.width, g.Width)
			assert.Equal(t, tt.height, g.Height)
			assert.Equal(t, tt.frameRect, g.Frame)
			assert.Equal(t, tt.screen, g.Screen)
		})
	}
}

func TestLayoutPhoneScreenIsFixed(t *testing.T) {
	for _, size := range [][2]int{{100, 100}, {1920, 1080}, {400, 3000}} {
		g := Layout(FramePhone, size[0], size[1])
		assert.Equal(t, phoneScreenW, g.Screen.Dx())
		assert.Equal(t, phoneScreenH, g.Screen.Dy())
		assert.True(t, g.Cover)
	}
}

func TestGeometryScale(t *testing.T) {
	g := Layout(FrameBrowser, 1000, 500).Scale(2)
	assert.Equal(t, 1600, g.Width)
	assert.Equal(t, 1200, g.Height)
	assert.Equal(t, image.Rect(96, 198, 1504, 296), g.Toolbar)
}

func TestCoverRect(t *testing.T) {
	r := coverRect(image.Rect(0, 0, 1000, 500), 288, 624)
	assert.Equal(t, image.Rect(384, 0, 615, 500), r)
}

func TestComposePhoneTransparent(t *testing.T) {
	red := color.NRGBA{R: 0xff, A: 0xff}
	res, err := newTestComposer().Compose(context.Background(), Request{
		Image:      solid(1000, 500, red),
		Frame:      FramePhone,
		Background: BackgroundTransparent,
		Scale:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, 1600, res.Width)
	assert.Equal(t, 1504, res.Height)
	assert.Equal(t, 2*res.Geometry.Width, res.Width)
	assert.Equal(t, 2*res.Geometry.Height, res.Height)

	img := decodePNG(t, res.PNG)
	assert.Equal(t, image.Rect(0, 0, 1600, 1504), img.Bounds())
	assert.Equal(t, uint8(0), nrgbaAt(img, 0, 0).A)
	assertColorNear(t, red, nrgbaAt(img, 800, 752), 3)
	// The notch covers the top center of the screen.
	assertColorNear(t, color.NRGBA{A: 0xff}, nrgbaAt(img, 800, 2*64+10), 3)
}

func TestComposeBackgrounds(t *testing.T) {
	tests := []struct {
		bg          Background
		top, bottom string
	}{
		{BackgroundAurora, "#667eea", "#764ba2"},
		{BackgroundDeepSea, "#330867", "#30cfd0"},
		{BackgroundSolidDark, "#0f172a", "#0f172a"},
		{BackgroundSolidGray, "#f3f4f6", "#f3f4f6"},
	}
	for _, tt := range tests {
		t.Run(string(tt.bg), func(t *testing.T) {
			res, err := newTestComposer().Compose(context.Background(), Request{
				Image:      solid(200, 100, color.White),
				Frame:      FrameNone,
				Background: tt.bg,
				Scale:      1,
			})
			require.NoError(t, err)
			img := decodePNG(t, res.PNG)
			b := img.Bounds()
			assertColorNear(t, mustHex(tt.top), nrgbaAt(img, 0, 0), 2)
			assertColorNear(t, mustHex(tt.bottom), nrgbaAt(img, b.Max.X-1, b.Max.Y-1), 2)
		})
	}
}

func TestComposeDefaults(t *testing.T) {
	res, err := newTestComposer().Compose(context.Background(), Request{Image: solid(1000, 500, color.White)})
	require.NoError(t, err)
	assert.Equal(t, 1600, res.Width)
	assert.Equal(t, 1200, res.Height)
	assert.Contains(t, res.DataURL(), "data:image/png;base64,")
}

func TestComposeFromDataURL(t *testing.T) {
	src := DataURL(encodePNG(t, solid(64, 32, color.White)))
	res, err := newTestComposer().Compose(context.Background(), Request{Source: src, Frame: FrameGlass, Background: BackgroundSunset})
	require.NoError(t, err)
	assert.Equal(t, 1600, res.Width)
}

func TestComposeFromHTTP(t *testing.T) {
	raw := encodePNG(t, solid(40, 20, color.White))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/private.png" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(raw)
	}))
	defer srv.Close()

	c := New(Options{Settle: -1, Loader: &Loader{Client: srv.Client()}}, nil)
	_, err := c.Compose(context.Background(), Request{Source: srv.URL + "/shot.png"})
	require.NoError(t, err)

	_, err = c.Compose(context.Background(), Request{Source: srv.URL + "/private.png"})
	require.Error(t, err)
	var re *RasterizationError
	require.True(t, errors.As(err, &re))
	assert.Contains(t, re.Reason, "403")
	assert.Equal(t, apperr.KindRasterization, apperr.KindOf(err))
	assert.True(t, apperr.IsRetryable(err))
}

func TestComposeRejectsUnknownOptions(t *testing.T) {
	c := newTestComposer()
	_, err := c.Compose(context.Background(), Request{Image: solid(10, 10, color.White), Frame: "polaroid"})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = c.Compose(context.Background(), Request{Image: solid(10, 10, color.White), Background: "plaid"})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestComposeBadSources(t *testing.T) {
	c := newTestComposer()
	for _, src := range []string{"", "data:image/png;base64,!!!", "data:text/plain,hello", "/etc/passwd"} {
		_, err := c.Compose(context.Background(), Request{Source: src})
		assert.Equal(t, apperr.KindRasterization, apperr.KindOf(err), src)
	}
}

func TestLoaderFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, solid(8, 4, color.White)), 0o644))

	img, err := (&Loader{AllowFiles: true}).Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	_, err = (&Loader{}).Load(context.Background(), path)
	require.Error(t, err)
}

func TestComposeHonorsCancellation(t *testing.T) {
	c := New(Options{Settle: time.Hour}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Compose(ctx, Request{Image: solid(10, 10, color.White)})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSave(t *testing.T) {
	res, err := newTestComposer().Compose(context.Background(), Request{Image: solid(10, 10, color.White), Scale: 1})
	require.NoError(t, err)

	now := time.UnixMilli(1700000000123)
	dir := t.TempDir()
	path, err := res.Save(dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "onepage-image-1700000000123.png"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.PNG, raw)
}

func TestOptionsAreValid(t *testing.T) {
	for _, f := range Frames {
		assert.True(t, Frame(f.ID).Valid())
	}
	for _, b := range Backgrounds {
		assert.True(t, Background(b.ID).Valid())
	}
	assert.False(t, Frame("").Valid())
}

func TestLayoutCapsTallSources(t *testing.T) {
	for _, f := range []Frame{FrameNone, FrameBrowser, FrameGlass} {
		t.Run(string(f), func(t *testing.T) {
			g := Layout(f, 1, 4000)
			assert.True(t, g.Cover)
			assert.Equal(t, g.Screen.Dx()*maxAspect, g.Screen.Dy())
			assert.LessOrEqual(t, g.Scale(MaxScale).Height, 4*(3*maxContent+toolbarHeight+2*capturePadding))
		})
	}

	g := Layout(FrameNone, 500, 1000)
	assert.False(t, g.Cover)
}

func TestComposeTallSourceIsBounded(t *testing.T) {
	res, err := newTestComposer().Compose(context.Background(), Request{
		Image:      solid(1, 40, color.White),
		Frame:      FrameNone,
		Background: BackgroundSolidGray,
		Scale:      1,
	})
	require.NoError(t, err)
	assert.Equal(t, 800, res.Width)
	assert.Equal(t, 704*maxAspect+2*capturePadding, res.Height)
}

func TestComposeRejectsLargeScale(t *testing.T) {
	_, err := newTestComposer().Compose(context.Background(), Request{Image: solid(4, 4, color.White), Scale: MaxScale + 1})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

// pngHeader returns a PNG signature and IHDR chunk declaring w×h, with no
// pixel data.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 2 // truecolor

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	crc := crc32.NewIEEE()
	crc.Write([]byte("IHDR"))
	crc.Write(ihdr)
	buf.WriteString("IHDR")
	buf.Write(ihdr)
	binary.Write(&buf, binary.BigEndian, crc.Sum32())
	return buf.Bytes()
}

func TestLoaderRejectsOversizedImages(t *testing.T) {
	_, err := (&Loader{}).Load(context.Background(), DataURL(pngHeader(100000, 100000)))
	require.Error(t, err)
	var rerr *RasterizationError
	require.True(t, errors.As(err, &rerr))
	assert.Contains(t, rerr.Reason, "100000x100000")
}
