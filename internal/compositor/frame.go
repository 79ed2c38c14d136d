package compositor

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

var (
	white    = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black    = color.NRGBA{A: 0xff}
	gray100  = mustHex("#f3f4f6")
	gray200  = mustHex("#e5e7eb")
	gray800  = mustHex("#1f2937")
	dotRed   = mustHex("#f87171")
	dotAmber = mustHex("#facc15")
	dotGreen = mustHex("#4ade80")
	blue500  = mustHex("#3b82f6")
)

// drawFrame paints frame f and the source image into dst. g is in device
// pixels and s converts CSS pixels to device pixels.
func drawFrame(dst xdraw.Image, f Frame, g Geometry, s float64, src image.Image) {
	px := func(v int) int { return int(float64(v)*s + 0.5) }
	r := func(v float64) float64 { return v * s }

	switch f {
	case FrameBrowser:
		dropShadow(dst, g.Frame, r(12), px(24), px(12), 0x40)
		fillRounded(dst, g.Frame, round(r(12)), white)
		fillRounded(dst, g.Toolbar, corners{tl: r(12), tr: r(12)}, gray100)
		rule := g.Toolbar
		rule.Min.Y = rule.Max.Y - max(1, px(1))
		xdraw.Draw(dst, rule, image.NewUniform(gray200), image.Point{}, xdraw.Src)

		cy := g.Toolbar.Min.Y + px(24)
		for i, c := range []color.NRGBA{dotRed, dotAmber, dotGreen} {
			cx := g.Toolbar.Min.X + px(22+20*i)
			dot := image.Rect(cx-px(6), cy-px(6), cx+px(6), cy+px(6))
			fillRounded(dst, dot, round(r(6)), c)
		}
		pill := image.Rect(g.Toolbar.Min.X+px(84), g.Toolbar.Min.Y+px(12), g.Toolbar.Max.X-px(16), g.Toolbar.Min.Y+px(36))
		fillRounded(dst, pill, round(r(6)), white)

		drawImage(dst, g.Screen, src, g.Cover, roundedMask(g.Screen, corners{br: r(12), bl: r(12)}))

	case FramePhone:
		dropShadow(dst, g.Frame, r(48), px(32), px(16), 0x50)
		fillRounded(dst, g.Frame, round(r(48)), gray800)
		fillRounded(dst, g.Frame.Inset(px(phoneBorder)), round(r(44)), black)
		drawImage(dst, g.Screen, src, true, roundedMask(g.Screen, round(r(40))))

		cx := (g.Screen.Min.X + g.Screen.Max.X) / 2
		notch := image.Rect(cx-px(64), g.Screen.Min.Y, cx+px(64), g.Screen.Min.Y+px(24))
		fillRounded(dst, notch, corners{br: r(12), bl: r(12)}, black)

	case FrameGlass:
		dropShadow(dst, g.Frame, r(16), px(24), px(12), 0x30)
		card := roundedMask(g.Frame, round(r(16)))
		fillMask(dst, card, withAlpha(white, 0x1a))
		glow(dst, image.Pt(g.Frame.Max.X-px(40), g.Frame.Min.Y+px(40)), px(120), withAlpha(white, 0x1a), card)
		glow(dst, image.Pt(g.Frame.Min.X+px(40), g.Frame.Max.Y-px(40)), px(120), withAlpha(blue500, 0x33), card)
		strokeRounded(dst, g.Frame, round(r(16)), max(1, px(1)), withAlpha(white, 0x33))
		drawImage(dst, g.Screen, src, g.Cover, roundedMask(g.Screen, round(r(8))))

	default:
		dropShadow(dst, g.Screen, r(8), px(24), px(12), 0x40)
		drawImage(dst, g.Screen, src, g.Cover, roundedMask(g.Screen, round(r(8))))
	}
}
