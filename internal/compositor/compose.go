// Package compositor renders a screenshot inside a decorative frame on a
// styled background and encodes the result as a PNG at a fixed pixel ratio.
package compositor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/onepage/internal/apperr"
	"github.com/ziadkadry99/onepage/internal/logging"
	"github.com/ziadkadry99/onepage/internal/metrics"
)

const (
	DefaultScale  = 2.0
	MaxScale      = 4.0
	DefaultSettle = 100 * time.Millisecond

	// Placeholder is shown until the user uploads a screenshot.
	Placeholder = "https://placehold.co/800x500/e2e8f0/64748b?text=Upload+Your+Screenshot"
)

// Request describes one composition.
type Request struct {
	// Source is a data URL, http(s) URL or local path. Ignored when Image
	// is set.
	Source     string
	Image      image.Image
	Frame      Frame
	Background Background
	// Scale is the device pixel ratio; zero means DefaultScale.
	Scale float64
}

// Result is a finished composition.
type Result struct {
	PNG      []byte
	Width    int
	Height   int
	Geometry Geometry // in CSS pixels
}

// DataURL returns the PNG as a data URL.
func (r *Result) DataURL() string { return DataURL(r.PNG) }

// Options configures a Composer.
type Options struct {
	Loader *Loader
	// Settle is how long to wait before capturing so that a freshly
	// selected source has landed. Zero means DefaultSettle; negative
	// disables the wait.
	Settle time.Duration
	Scale  float64
}

// Composer produces framed images.
type Composer struct {
	loader *Loader
	settle time.Duration
	scale  float64
	logger *zap.Logger
}

// New creates a Composer.
func New(opts Options, logger *zap.Logger) *Composer {
	c := &Composer{
		loader: opts.Loader,
		settle: opts.Settle,
		scale:  opts.Scale,
		logger: logging.OrNop(logger),
	}
	if c.loader == nil {
		c.loader = &Loader{}
	}
	if c.settle == 0 {
		c.settle = DefaultSettle
	}
	if c.scale <= 0 {
		c.scale = DefaultScale
	}
	return c
}

// Compose renders req. The output bitmap is exactly Scale times the capture
// area in each dimension.
func (c *Composer) Compose(ctx context.Context, req Request) (res *Result, err error) {
	if req.Frame == "" {
		req.Frame = FrameBrowser
	}
	if req.Background == "" {
		req.Background = BackgroundAurora
	}
	if !req.Frame.Valid() {
		return nil, apperr.InvalidInput(fmt.Sprintf("unknown frame %q", req.Frame), nil)
	}
	if !req.Background.Valid() {
		return nil, apperr.InvalidInput(fmt.Sprintf("unknown background %q", req.Background), nil)
	}
	scale := req.Scale
	if scale <= 0 {
		scale = c.scale
	}
	if scale > MaxScale {
		return nil, apperr.InvalidInput(fmt.Sprintf("scale %g exceeds %g", scale, MaxScale), nil)
	}

	defer func() {
		metrics.Compositions.WithLabelValues(string(req.Frame), metrics.Result(err)).Inc()
		if err != nil {
			c.logger.Warn("composition failed", zap.String("frame", string(req.Frame)), zap.Error(err))
		}
	}()

	src := req.Image
	if src == nil {
		src, err = c.loader.Load(ctx, req.Source)
		if err != nil {
			return nil, err
		}
	}

	if c.settle > 0 {
		t := time.NewTimer(c.settle)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, &RasterizationError{Source: req.Source, Reason: "cancelled", Err: ctx.Err()}
		case <-t.C:
		}
	}

	start := time.Now()
	b := src.Bounds()
	css := Layout(req.Frame, b.Dx(), b.Dy())
	dev := css.Scale(scale)

	canvas := image.NewRGBA(image.Rect(0, 0, dev.Width, dev.Height))
	fillBackground(canvas, paintFor(req.Background))
	drawFrame(canvas, req.Frame, dev, scale, src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, &RasterizationError{Source: req.Source, Reason: "encoding png", Err: err}
	}
	metrics.CompositionDuration.Observe(time.Since(start).Seconds())

	c.logger.Debug("composed image",
		zap.String("frame", string(req.Frame)),
		zap.String("background", string(req.Background)),
		zap.Int("width", dev.Width),
		zap.Int("height", dev.Height),
	)
	return &Result{PNG: buf.Bytes(), Width: dev.Width, Height: dev.Height, Geometry: css}, nil
}
