package compositor

import (
	"image"
	"math"
)

// Capture area metrics in CSS pixels.
const (
	capturePadding = 48
	minAreaWidth   = 800
	minAreaHeight  = 600
	maxContent     = 768

	toolbarHeight = 49 // 24px row, 12px padding each side, 1px rule

	phoneWidth   = 320
	phoneBorder  = 4
	phonePadding = 12
	phoneScreenW = phoneWidth - 2*(phoneBorder+phonePadding)
	phoneScreenH = 624

	glassInset = 25 // 24px padding plus a 1px border

	// maxAspect bounds screen height to this multiple of its width. Taller
	// sources are cropped.
	maxAspect = 3
)

// Geometry places the frame and the source image inside the capture area.
// All rectangles share the capture area's coordinate space.
type Geometry struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	Frame   image.Rectangle `json:"frame"`
	Toolbar image.Rectangle `json:"toolbar,omitempty"`
	Screen  image.Rectangle `json:"screen"`

	// Cover is set when the image is cropped to fill Screen rather than
	// scaled to its width.
	Cover bool `json:"cover"`
}

// Layout computes the capture geometry for a srcW×srcH image in frame f.
// Images are scaled to the content width, except in the phone frame where
// they are cropped to the fixed screen. Sources taller than maxAspect times
// the screen width are cropped as well.
func Layout(f Frame, srcW, srcH int) Geometry {
	if srcW <= 0 || srcH <= 0 {
		srcW, srcH = 800, 500
	}
	content := min(minAreaWidth-2*capturePadding, maxContent)
	var g Geometry
	fit := func(w int) int {
		h := max(1, int(math.Round(float64(w)*float64(srcH)/float64(srcW))))
		if h > w*maxAspect {
			g.Cover = true
			return w * maxAspect
		}
		return h
	}

	var fw, fh int
	switch f {
	case FramePhone:
		fw = phoneWidth
		fh = phoneScreenH + 2*(phoneBorder+phonePadding)
		g.Cover = true
	case FrameGlass:
		fw = content
		fh = fit(content-2*glassInset) + 2*glassInset
	case FrameBrowser:
		fw = content
		fh = toolbarHeight + fit(content)
	default:
		fw = content
		fh = fit(content)
	}

	g.Width = max(minAreaWidth, fw+2*capturePadding)
	g.Height = max(minAreaHeight, fh+2*capturePadding)
	x0 := (g.Width - fw) / 2
	y0 := (g.Height - fh) / 2
	g.Frame = image.Rect(x0, y0, x0+fw, y0+fh)

	switch f {
	case FramePhone:
		g.Screen = g.Frame.Inset(phoneBorder + phonePadding)
	case FrameGlass:
		g.Screen = g.Frame.Inset(glassInset)
	case FrameBrowser:
		g.Toolbar = image.Rect(x0, y0, x0+fw, y0+toolbarHeight)
		g.Screen = image.Rect(x0, y0+toolbarHeight, x0+fw, y0+fh)
	default:
		g.Screen = g.Frame
	}
	return g
}

// Scale returns g in device pixels at the given factor.
func (g Geometry) Scale(s float64) Geometry {
	px := func(v int) int { return int(math.Round(float64(v) * s)) }
	rect := func(r image.Rectangle) image.Rectangle {
		if r.Empty() {
			return image.Rectangle{}
		}
		return image.Rect(px(r.Min.X), px(r.Min.Y), px(r.Max.X), px(r.Max.Y))
	}
	return Geometry{
		Width:   px(g.Width),
		Height:  px(g.Height),
		Frame:   rect(g.Frame),
		Toolbar: rect(g.Toolbar),
		Screen:  rect(g.Screen),
		Cover:   g.Cover,
	}
}
