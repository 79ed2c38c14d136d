package compositor

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Frame is the chrome drawn around the source image.
type Frame string

const (
	FrameBrowser Frame = "browser"
	FramePhone   Frame = "phone"
	FrameGlass   Frame = "glass"
	FrameNone    Frame = "none"
)

// Background fills the capture area behind the frame.
type Background string

const (
	BackgroundAurora      Background = "gradient-1"
	BackgroundDeepSea     Background = "gradient-2"
	BackgroundSunset      Background = "gradient-3"
	BackgroundSolidGray   Background = "solid-gray"
	BackgroundSolidDark   Background = "solid-dark"
	BackgroundTransparent Background = "transparent"
)

// Option describes a selectable frame or background for pickers.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	CSS  string `json:"css,omitempty"`
}

// Frames lists the frames in picker order.
var Frames = []Option{
	{ID: string(FrameBrowser), Name: "浏览器窗口"},
	{ID: string(FramePhone), Name: "手机外壳"},
	{ID: string(FrameGlass), Name: "毛玻璃卡片"},
	{ID: string(FrameNone), Name: "原图+阴影"},
}

// Backgrounds lists the backgrounds in picker order with their CSS
// equivalents.
var Backgrounds = []Option{
	{ID: string(BackgroundAurora), Name: "极光紫", CSS: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)"},
	{ID: string(BackgroundDeepSea), Name: "深海蓝", CSS: "linear-gradient(to top, #30cfd0 0%, #330867 100%)"},
	{ID: string(BackgroundSunset), Name: "落日橙", CSS: "linear-gradient(120deg, #f6d365 0%, #fda085 100%)"},
	{ID: string(BackgroundSolidGray), Name: "高级灰", CSS: "#f3f4f6"},
	{ID: string(BackgroundSolidDark), Name: "暗夜黑", CSS: "#0f172a"},
	{ID: string(BackgroundTransparent), Name: "透明", CSS: "transparent"},
}

// Valid reports whether f is a known frame.
func (f Frame) Valid() bool {
	for _, o := range Frames {
		if o.ID == string(f) {
			return true
		}
	}
	return false
}

// Valid reports whether b is a known background.
func (b Background) Valid() bool {
	for _, o := range Backgrounds {
		if o.ID == string(b) {
			return true
		}
	}
	return false
}

// paint describes how to fill the capture area: a solid color, a linear
// gradient, or nothing.
type paint struct {
	solid  color.NRGBA
	angle  float64 // CSS degrees; 0 points up, 90 right
	from   color.NRGBA
	to     color.NRGBA
	isGrad bool
	empty  bool
}

func paintFor(b Background) paint {
	switch b {
	case BackgroundAurora:
		return paint{isGrad: true, angle: 135, from: mustHex("#667eea"), to: mustHex("#764ba2")}
	case BackgroundDeepSea:
		return paint{isGrad: true, angle: 0, from: mustHex("#30cfd0"), to: mustHex("#330867")}
	case BackgroundSunset:
		return paint{isGrad: true, angle: 120, from: mustHex("#f6d365"), to: mustHex("#fda085")}
	case BackgroundSolidGray:
		return paint{solid: mustHex("#f3f4f6")}
	case BackgroundSolidDark:
		return paint{solid: mustHex("#0f172a")}
	default:
		return paint{empty: true}
	}
}

// at returns the paint color at (x, y) in a w×h box, following CSS
// linear-gradient geometry: the gradient line passes through the center and
// is long enough that the corners get the end colors.
func (p paint) at(x, y, w, h float64) color.NRGBA {
	if !p.isGrad {
		return p.solid
	}
	rad := p.angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	length := math.Abs(w*dx) + math.Abs(h*dy)
	if length == 0 {
		return p.from
	}
	t := ((x-w/2)*dx+(y-h/2)*dy)/length + 0.5
	return lerp(p.from, p.to, t)
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	t = math.Max(0, math.Min(1, t))
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// parseHex parses "#rgb" or "#rrggbb".
func parseHex(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func mustHex(s string) color.NRGBA {
	c, err := parseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
