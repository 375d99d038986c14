package backend

import (
	"context"
	"errors"
	"time"

	"github.com/atomicstack/tabflip/internal/host"
	"github.com/atomicstack/tabflip/internal/logging/events"
	"github.com/atomicstack/tabflip/internal/store"
	"github.com/atomicstack/tabflip/internal/tabs"
)

// DefaultQuality is the JPEG quality requested for previews.
const DefaultQuality = 50

// Capturer grabs a window's visible surface and files it as a tab preview.
type Capturer struct {
	host  host.Host
	store *store.Store
	opts  host.CaptureOptions
	now   func() time.Time
}

// NewCapturer returns a capturer requesting JPEGs at quality.
func NewCapturer(h host.Host, s *store.Store, quality int) *Capturer {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Capturer{
		host:  h,
		store: s,
		opts:  host.CaptureOptions{Format: "jpeg", Quality: quality},
		now:   time.Now,
	}
}

// Capture stores a preview for tab. Failures are traced and otherwise
// ignored; there is no retry.
func (c *Capturer) Capture(ctx context.Context, window tabs.WindowID, tab tabs.ID) bool {
	data, err := c.host.CaptureVisibleSurface(ctx, window, c.opts)
	if err == nil && len(data) == 0 {
		err = errors.New("empty capture")
	}
	if err != nil {
		events.Preview.CaptureFailed(int(window), int(tab), err)
		return false
	}
	c.store.PutPreview(tab, tabs.Preview{
		Format:     c.opts.Format,
		Data:       data,
		CapturedAt: c.now(),
	})
	events.Preview.Capture(int(window), int(tab), len(data))
	return true
}
