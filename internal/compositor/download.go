package compositor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
)

// DownloadName is the file name a composition is saved under.
func DownloadName(t time.Time) string {
	return fmt.Sprintf("onepage-image-%d.png", t.UnixMilli())
}

// Save writes the PNG into dir under DownloadName and returns its path.
func (r *Result) Save(dir string, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, DownloadName(now))
	if err := atomic.WriteFile(path, bytes.NewReader(r.PNG)); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
