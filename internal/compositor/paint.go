package compositor

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// corners holds per-corner radii in device pixels.
type corners struct{ tl, tr, br, bl float64 }

func round(r float64) corners { return corners{r, r, r, r} }

// coverage returns how much of the pixel centered at (x, y) lies inside a
// w×h rounded rectangle anchored at the origin.
func coverage(x, y, w, h float64, c corners) float64 {
	var cx, cy, rad float64
	switch {
	case x < c.tl && y < c.tl:
		cx, cy, rad = c.tl, c.tl, c.tl
	case x > w-c.tr && y < c.tr:
		cx, cy, rad = w-c.tr, c.tr, c.tr
	case x > w-c.br && y > h-c.br:
		cx, cy, rad = w-c.br, h-c.br, c.br
	case x < c.bl && y > h-c.bl:
		cx, cy, rad = c.bl, h-c.bl, c.bl
	default:
		return 1
	}
	d := math.Hypot(x-cx, y-cy) - rad
	return math.Max(0, math.Min(1, 0.5-d))
}

// roundedMask returns an antialiased mask of r with rounded corners. The mask
// bounds are r itself so it can be used with a zero mask point.
func roundedMask(r image.Rectangle, c corners) *image.Alpha {
	m := image.NewAlpha(r)
	w, h := float64(r.Dx()), float64(r.Dy())
	limit := math.Min(w, h) / 2
	clamp := func(v float64) float64 { return math.Max(0, math.Min(v, limit)) }
	c = corners{clamp(c.tl), clamp(c.tr), clamp(c.br), clamp(c.bl)}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		fy := float64(y-r.Min.Y) + 0.5
		for x := r.Min.X; x < r.Max.X; x++ {
			fx := float64(x-r.Min.X) + 0.5
			m.SetAlpha(x, y, color.Alpha{A: uint8(math.Round(coverage(fx, fy, w, h, c) * 255))})
		}
	}
	return m
}

// fillMask paints col through mask over dst.
func fillMask(dst xdraw.Image, mask *image.Alpha, col color.Color) {
	r := mask.Bounds().Intersect(dst.Bounds())
	xdraw.DrawMask(dst, r, image.NewUniform(col), image.Point{}, mask, r.Min, xdraw.Over)
}

func fillRounded(dst xdraw.Image, r image.Rectangle, c corners, col color.Color) {
	if r.Empty() {
		return
	}
	fillMask(dst, roundedMask(r, c), col)
}

// strokeRounded draws a border of width px just inside r.
func strokeRounded(dst xdraw.Image, r image.Rectangle, c corners, width int, col color.Color) {
	if r.Empty() || width <= 0 {
		return
	}
	outer := roundedMask(r, c)
	w := float64(width)
	inner := roundedMask(r.Inset(width), corners{c.tl - w, c.tr - w, c.br - w, c.bl - w})
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			a := int(outer.AlphaAt(x, y).A) - int(inner.AlphaAt(x, y).A)
			outer.SetAlpha(x, y, color.Alpha{A: uint8(max(0, a))})
		}
	}
	fillMask(dst, outer, col)
}

// dropShadow approximates a blurred box shadow by stacking translucent
// rounded rectangles that grow outward from r.
func dropShadow(dst xdraw.Image, r image.Rectangle, radius float64, blur, offsetY int, strength uint8) {
	const layers = 8
	if blur <= 0 || r.Empty() {
		return
	}
	a := max(1, int(strength)/layers)
	for i := layers; i >= 1; i-- {
		spread := blur * i / layers
		rr := r.Inset(-spread).Add(image.Pt(0, offsetY))
		fillRounded(dst, rr, round(radius+float64(spread)), color.NRGBA{A: uint8(a)})
	}
}

// glow paints a soft disc of col centered at c, fading to nothing at radius
// and restricted to clip.
func glow(dst xdraw.Image, c image.Point, radius int, col color.NRGBA, clip *image.Alpha) {
	if radius <= 0 {
		return
	}
	box := image.Rect(c.X-radius, c.Y-radius, c.X+radius, c.Y+radius).Intersect(clip.Bounds())
	if box.Empty() {
		return
	}
	m := image.NewAlpha(box)
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			d := math.Hypot(float64(x-c.X)+0.5, float64(y-c.Y)+0.5) / float64(radius)
			if d >= 1 {
				continue
			}
			fall := 1 - d*d*(3-2*d)
			a := fall * float64(col.A) * float64(clip.AlphaAt(x, y).A) / 255
			m.SetAlpha(x, y, color.Alpha{A: uint8(math.Round(a))})
		}
	}
	fillMask(dst, m, withAlpha(col, 0xff))
}

// drawImage scales src into r. With cover set the source is center-cropped
// to r's aspect ratio first. Pixels outside clip are left untouched.
func drawImage(dst xdraw.Image, r image.Rectangle, src image.Image, cover bool, clip *image.Alpha) {
	if r.Empty() {
		return
	}
	sr := src.Bounds()
	if cover {
		sr = coverRect(sr, r.Dx(), r.Dy())
	}
	var opts *xdraw.Options
	if clip != nil {
		opts = &xdraw.Options{DstMask: clip}
	}
	xdraw.CatmullRom.Scale(dst, r, src, sr, xdraw.Over, opts)
}

// coverRect returns the centered region of sr with the aspect ratio w:h.
func coverRect(sr image.Rectangle, w, h int) image.Rectangle {
	sw, sh := float64(sr.Dx()), float64(sr.Dy())
	scale := math.Max(float64(w)/sw, float64(h)/sh)
	cw := int(math.Round(float64(w) / scale))
	ch := int(math.Round(float64(h) / scale))
	cw, ch = min(max(cw, 1), sr.Dx()), min(max(ch, 1), sr.Dy())
	x0 := sr.Min.X + (sr.Dx()-cw)/2
	y0 := sr.Min.Y + (sr.Dy()-ch)/2
	return image.Rect(x0, y0, x0+cw, y0+ch)
}

// fillBackground paints the whole of dst with p.
func fillBackground(dst *image.RGBA, p paint) {
	if p.empty {
		return
	}
	b := dst.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if !p.isGrad {
		xdraw.Draw(dst, b, image.NewUniform(p.solid), image.Point{}, xdraw.Src)
		return
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, p.at(float64(x-b.Min.X)+0.5, float64(y-b.Min.Y)+0.5, w, h))
		}
	}
}
