package export

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/natefinch/atomic"
)

// Clipboard receives an exported payload.
type Clipboard interface {
	Write(p Payload) error
}

// SystemClipboard puts the plain-text shadow on the OS clipboard. The system
// clipboard API available here is text-only, so the HTML fragment is written
// to HTMLPath instead when one is set.
type SystemClipboard struct {
	HTMLPath string
}

func (c SystemClipboard) Write(p Payload) error {
	if c.HTMLPath != "" {
		if err := WriteHTMLFile(c.HTMLPath, p); err != nil {
			return err
		}
	}
	if clipboard.Unsupported {
		return fmt.Errorf("no system clipboard available")
	}
	if err := clipboard.WriteAll(p.Text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}

// WriteHTMLFile atomically writes the HTML fragment to path.
func WriteHTMLFile(path string, p Payload) error {
	if err := atomic.WriteFile(path, strings.NewReader(p.HTML)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
