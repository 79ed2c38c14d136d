package compositor

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/ziadkadry99/onepage/internal/apperr"
)

const (
	// maxSourceBytes caps how much of a remote or local source is read.
	maxSourceBytes = 32 << 20
	// maxSourcePixels caps the decoded size of a source image.
	maxSourcePixels = 40_000_000
)

// RasterizationError reports that an image could not be produced from a
// source. The user is expected to retry, possibly with another source.
type RasterizationError struct {
	Source string
	Reason string
	Err    error
}

func (e *RasterizationError) Error() string {
	src := e.Source
	if strings.HasPrefix(src, "data:") {
		src = "data URL"
	}
	msg := fmt.Sprintf("rasterizing %s: %s", src, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// ErrorKind classifies the error for reporting.
func (e *RasterizationError) ErrorKind() apperr.Kind { return apperr.KindRasterization }

// Loader fetches and decodes source images from data URLs, http(s) URLs,
// and local paths.
type Loader struct {
	Client *http.Client
	// AllowFiles permits local paths and file:// URLs.
	AllowFiles bool
}

// Load returns the decoded image referenced by ref.
func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	raw, err := l.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, &RasterizationError{Source: ref, Reason: "unsupported image data", Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxSourcePixels || cfg.Height > maxSourcePixels ||
		cfg.Width*cfg.Height > maxSourcePixels {
		return nil, &RasterizationError{Source: ref, Reason: fmt.Sprintf("image is %dx%d, larger than allowed", cfg.Width, cfg.Height)}
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &RasterizationError{Source: ref, Reason: "unsupported image data", Err: err}
	}
	return img, nil
}

func (l *Loader) fetch(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case ref == "":
		return nil, &RasterizationError{Source: ref, Reason: "no image source"}
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURL(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetchHTTP(ctx, ref)
	}

	path := ref
	if strings.HasPrefix(ref, "file://") {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, &RasterizationError{Source: ref, Reason: "malformed file URL", Err: err}
		}
		path = u.Path
	}
	if !l.AllowFiles {
		return nil, &RasterizationError{Source: ref, Reason: "local files are not allowed"}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &RasterizationError{Source: ref, Reason: "reading file", Err: err}
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxSourceBytes))
	if err != nil {
		return nil, &RasterizationError{Source: ref, Reason: "reading file", Err: err}
	}
	return raw, nil
}

func (l *Loader) fetchHTTP(ctx context.Context, ref string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, &RasterizationError{Source: ref, Reason: "malformed URL", Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &RasterizationError{Source: ref, Reason: "fetching image", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RasterizationError{Source: ref, Reason: fmt.Sprintf("image host refused access (status %d)", resp.StatusCode)}
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return nil, &RasterizationError{Source: ref, Reason: "fetching image", Err: err}
	}
	return raw, nil
}

// decodeDataURL decodes "data:[<mediatype>][;base64],<data>".
func decodeDataURL(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, &RasterizationError{Source: ref, Reason: "malformed data URL"}
	}
	if strings.HasSuffix(meta, ";base64") {
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, &RasterizationError{Source: ref, Reason: "malformed data URL", Err: err}
		}
		return raw, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, &RasterizationError{Source: ref, Reason: "malformed data URL", Err: err}
	}
	return []byte(s), nil
}

// DataURL encodes PNG bytes as a data URL.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
