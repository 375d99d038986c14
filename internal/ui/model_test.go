package ui

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/tabflip/internal/cycle"
	"github.com/atomicstack/tabflip/internal/tabs"
)

type fakeGateway struct {
	mu        sync.Mutex
	recents   []tabs.Descriptor
	err       error
	windows   []*tabs.WindowID
	activated []tabs.ID
}

func (g *fakeGateway) GetRecents(ctx context.Context, window *tabs.WindowID) ([]tabs.Descriptor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.windows = append(g.windows, window)
	if g.err != nil {
		return nil, g.err
	}
	return append([]tabs.Descriptor(nil), g.recents...), nil
}

func (g *fakeGateway) ActivateTab(ctx context.Context, id tabs.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.activated = append(g.activated, id)
	return nil
}

func (g *fakeGateway) Activated() []tabs.ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]tabs.ID(nil), g.activated...)
}

func descriptors(ids ...int) []tabs.Descriptor {
	out := make([]tabs.Descriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, tabs.Descriptor{
			ID:      tabs.ID(id),
			Title:   "Tab " + string(rune('A'+id%26)),
			Address: "https://www.example.com/" + string(rune('a'+id%26)),
		})
	}
	return out
}

var (
	altQ    = tea.Key{Code: 'q', Mod: tea.ModAlt}
	altUp   = tea.Key{Code: tea.KeyLeftAlt}
	escape  = tea.Key{Code: tea.KeyEscape}
	enter   = tea.Key{Code: tea.KeyEnter}
	altDown = tea.Key{Code: tea.KeyLeftAlt, Mod: tea.ModAlt}
)

func newHarness(gw *fakeGateway, opts Options) *Harness {
	return NewHarness(NewModel(context.Background(), gw, opts))
}

func selectedID(t *testing.T, h *Harness) tabs.ID {
	t.Helper()
	d, ok := h.Model().Controller().Session().Current()
	require.True(t, ok, "no open session")
	return d.ID
}

func TestGestureCommitsOnModifierRelease(t *testing.T) {
	gw := &fakeGateway{recents: descriptors(5, 3, 7, 2)}
	h := newHarness(gw, Options{})

	h.Press(altQ)
	assert.Equal(t, tabs.ID(3), selectedID(t, h))
	h.Press(altQ)
	assert.Equal(t, tabs.ID(7), selectedID(t, h))
	h.Release(altUp)

	assert.Equal(t, []tabs.ID{7}, gw.Activated())
	assert.Equal(t, cycle.StateIdle, h.Model().Controller().State())
}

func TestReverseGestureSelectsOldest(t *testing.T) {
	gw := &fakeGateway{recents: descriptors(5, 3, 7, 2)}
	h := newHarness(gw, Options{})
	h.Press(tea.Key{Code: 'Q', BaseCode: 'q', Mod: tea.ModAlt | tea.ModShift})
	assert.Equal(t, tabs.ID(2), selectedID(t, h))
}

func TestLayoutIndependentKeyMatch(t *testing.T) {
	gw := &fakeGateway{recents: descriptors(1, 2, 3)}
	h := newHarness(gw, Options{})
	h.Press(tea.Key{Code: 'œ', BaseCode: 'q', Text: "œ", Mod: tea.ModAlt})
	assert.Equal(t, cycle.StateBrowsing, h.Model().Controller().State(), "alt+q producing œ should open")
}

func TestEscapeCancelsWithoutActivation(t *testing.T) {
	gw := &fakeGateway{recents: descriptors(1, 2, 3)}
	h := newHarness(gw, Options{})
	h.Press(altQ)
	h.Press(tea.Key{Code: tea.KeyEscape, Mod: tea.ModAlt})
	h.Release(altUp)
	assert.Empty(t, gw.Activated(), "cancel must not activate")
	assert.False(t, h.Model().Quitting(), "cancel during a session should not quit")
}

func TestBlurCancels(t *testing.T) {
	gw := &fakeGateway{recents: descriptors(1, 2, 3)}
	h := newHarness(gw, Options{})
	h.Press(altQ)
	h.Send(tea.BlurMsg{})
	assert.Equal(t, cycle.StateIdle, h.Model().Controller().State())
	h.Release(altUp)
	assert.Empty(t, gw.Activated(), "blur must not activate")
}

func TestSingleCandidateShowsNothing(t *testing.T) {
	gw := &fakeGateway{recents: descriptors(9)}
	h := newHarness(gw, Options{})
	h.Press(altQ)
	assert.Equal(t, cycle.StateIdle, h.Model().Controller().State())
	assert.Contains(t, h.View(), "to cycle tabs")
}

func TestFetchErrorIsReported(t *testing.T) {
	gw := &fakeGateway{err: errors.New("gateway unavailable")}
	h := newHarness(gw, Options{})
	h.Press(altQ)
	assert.Equal(t, cycle.StateIdle, h.Model().Controller().State())
	assert.Contains(t, h.View(), "gateway unavailable")
}

func TestStaleResponseDoesNotOpen(t *testing.T) {
	h := newHarness(&fakeGateway{}, Options{})
	h.Send(recentsLoadedMsg{generation: 42, tabs: descriptors(1, 2, 3)})
	assert.Equal(t, cycle.StateIdle, h.Model().Controller().State(), "stale response opened the overlay")
}

func TestOnceQuitsAfterCommit(t *testing.T) {
	gw := &fakeGateway{recents: descriptors(1, 2)}
	h := newHarness(gw, Options{Once: true})
	h.Press(altQ)
	h.Release(altUp)
	assert.True(t, h.Model().Quitting())
}

func TestEscapeWhileIdleQuits(t *testing.T) {
	h := newHarness(&fakeGateway{}, Options{})
	h.Press(escape)
	assert.True(t, h.Model().Quitting())
}

func TestOpenOnStartCommitsWithEnter(t *testing.T) {
	gw := &fakeGateway{recents: descriptors(4, 8)}
	h := newHarness(gw, Options{Open: true})
	assert.Equal(t, tabs.ID(8), selectedID(t, h))
	h.Press(tea.Key{Code: 'x'})
	assert.Equal(t, cycle.StateBrowsing, h.Model().Controller().State(), "programmatic session closed on unrelated key")
	h.Press(enter)
	assert.Equal(t, []tabs.ID{8}, gw.Activated())
}

func TestModifierDownPrefetchesForInstantOpen(t *testing.T) {
	gw := &fakeGateway{recents: descriptors(1, 2, 3)}
	h := newHarness(gw, Options{})
	h.Press(altDown)
	require.Len(t, gw.windows, 1, "prefetch on modifier down")
	h.Press(altQ)
	assert.Len(t, gw.windows, 1, "prefetched snapshot reused")
	assert.Equal(t, tabs.ID(2), selectedID(t, h))
}

func TestWindowIsForwarded(t *testing.T) {
	gw := &fakeGateway{recents: descriptors(1, 2)}
	w := tabs.WindowID(4)
	h := newHarness(gw, Options{Window: &w})
	h.Press(altQ)
	require.Len(t, gw.windows, 1)
	require.NotNil(t, gw.windows[0])
	assert.Equal(t, tabs.WindowID(4), *gw.windows[0])
}

func TestSessionViewShowsCards(t *testing.T) {
	gw := &fakeGateway{recents: []tabs.Descriptor{
		{ID: 1, Title: "Inbox", Address: "https://www.mail.example/"},
		{ID: 2, Title: "docs", Address: "https://docs.example/go"},
	}}
	h := newHarness(gw, Options{ShowFooter: true})
	h.Press(altQ)

	view := h.View()
	for _, want := range []string{"recent tabs 2/2", "Inbox", "mail.example", "docs.example", "D", "no preview", "esc"} {
		assert.Contains(t, view, want)
	}
}

func TestNarrowTerminalKeepsSelectionVisible(t *testing.T) {
	gw := &fakeGateway{recents: descriptors(1, 2, 3, 4, 5)}
	h := newHarness(gw, Options{Width: cardOuterWidth * 2})
	h.Press(altQ)
	h.Press(altQ)
	h.Press(altQ)
	view := h.View()
	assert.Contains(t, view, "Tab E", "selected card missing")
	assert.NotContains(t, view, "Tab B", "scrolled window should hide the first card")
}

func TestVisibleRange(t *testing.T) {
	cases := []struct {
		n, selected, perRow, start, end int
	}{
		{5, 1, 10, 0, 5},
		{5, 1, 2, 0, 2},
		{5, 3, 2, 2, 4},
		{5, 4, 1, 4, 5},
	}
	for _, tc := range cases {
		start, end := visibleRange(tc.n, tc.selected, tc.perRow)
		assert.Equal(t, [2]int{tc.start, tc.end}, [2]int{start, end},
			"visibleRange(%d,%d,%d)", tc.n, tc.selected, tc.perRow)
	}
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 50}))
	return buf.Bytes()
}

func TestRenderThumbnailSize(t *testing.T) {
	p := &tabs.Preview{Format: "jpeg", Data: encodeJPEG(t, 64, 40)}
	out, err := renderThumbnail(p, 12, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, lipgloss.Height(out))
	for i, line := range strings.Split(out, "\n") {
		assert.Equal(t, 12, ansi.StringWidth(line), "row %d", i)
	}
}

func TestRenderThumbnailRejectsGarbage(t *testing.T) {
	_, err := renderThumbnail(&tabs.Preview{Data: []byte("nope")}, 4, 2)
	assert.Error(t, err)
}

func TestThumbnailIsCached(t *testing.T) {
	m := NewModel(context.Background(), &fakeGateway{}, Options{})
	d := tabs.Descriptor{ID: 3, Preview: &tabs.Preview{Data: encodeJPEG(t, 16, 16), CapturedAt: time.Unix(10, 0)}}
	first, ok := m.thumbnail(d, 4, 2)
	require.True(t, ok)
	assert.Len(t, m.thumbs, 1)
	second, _ := m.thumbnail(d, 4, 2)
	assert.Equal(t, first, second)
	assert.Len(t, m.thumbs, 1, "cached thumbnail reused")
}

func TestTranslateKey(t *testing.T) {
	k := translateKey(tea.Key{Code: 'œ', BaseCode: 'q', Mod: tea.ModAlt | tea.ModShift}, false)
	assert.Equal(t, 'q', k.Physical())
	assert.True(t, k.Mods.Has(cycle.ModAlt|cycle.ModShift))

	k = translateKey(tea.Key{Code: tea.KeyRightAlt}, true)
	assert.Equal(t, cycle.ModAlt, k.ModKey)
	assert.True(t, k.Release)

	k = translateKey(tea.Key{Code: tea.KeyEscape}, false)
	assert.Equal(t, cycle.SpecialEscape, k.Special)
}
