package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/tabflip/internal/tabs"
)

// Kitty keyboard protocol sequences as a terminal sends them once all keys
// are reported as escape codes. 57443 is left alt; ":3" marks a release.
const (
	kittyAltPress   = "\x1b[57443;3u"
	kittyAltRelease = "\x1b[57443;3:3u"
	kittyAltQ       = "\x1b[113;3u"
	kittyAltQUp     = "\x1b[113;3:3u"
	// The Q key on a Russian layout: code й (1081), base layout key q.
	kittyAltQCyrillic = "\x1b[1081::113;3u"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type runningProgram struct {
	program *tea.Program
	input   *io.PipeWriter
	output  *syncBuffer
	done    chan error
}

func startProgram(t *testing.T, gw *fakeGateway) *runningProgram {
	t.Helper()
	r, w := io.Pipe()
	rp := &runningProgram{input: w, output: &syncBuffer{}, done: make(chan error, 1)}
	model := NewModel(context.Background(), gw, Options{})
	rp.program = tea.NewProgram(model, tea.WithInput(r), tea.WithOutput(rp.output))
	go func() {
		_, err := rp.program.Run()
		rp.done <- err
	}()
	t.Cleanup(func() {
		rp.program.Quit()
		_ = w.Close()
		select {
		case <-rp.done:
		case <-time.After(2 * time.Second):
			t.Error("program did not exit")
		}
	})
	return rp
}

func (rp *runningProgram) write(t *testing.T, seqs ...string) {
	t.Helper()
	for _, seq := range seqs {
		_, err := io.WriteString(rp.input, seq)
		require.NoError(t, err)
	}
}

// enableKeyReporting waits for the renderer's own keyboard request, then
// delivers the initial size that triggers the extra flags.
func (rp *runningProgram) enableKeyReporting(t *testing.T) {
	t.Helper()
	base := ansi.KittyKeyboard(ansi.KittyDisambiguateEscapeCodes|ansi.KittyReportEventTypes, 1)
	require.Eventually(t, func() bool {
		return strings.Contains(rp.output.String(), base)
	}, 2*time.Second, 5*time.Millisecond, "renderer never requested keyboard enhancements")

	rp.program.Send(tea.WindowSizeMsg{Width: 120, Height: 40})
	extra := ansi.KittyKeyboard(keyReportingFlags, 2)
	require.Eventually(t, func() bool {
		return strings.Contains(rp.output.String(), extra)
	}, 2*time.Second, 5*time.Millisecond, "model never requested modifier and alternate key reporting")

	out := rp.output.String()
	assert.Less(t, strings.Index(out, base), strings.LastIndex(out, extra),
		"extra flags must be added after the renderer's request")
}

func waitActivated(t *testing.T, gw *fakeGateway, want ...tabs.ID) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(gw.Activated()) == len(want)
	}, 2*time.Second, 5*time.Millisecond, "no activation arrived")
	assert.Equal(t, want, gw.Activated())
}

func TestProgramRequestsModifierAndAlternateKeys(t *testing.T) {
	assert.NotZero(t, keyReportingFlags&ansi.KittyReportAllKeysAsEscapeCodes)
	assert.NotZero(t, keyReportingFlags&ansi.KittyReportAlternateKeys)

	rp := startProgram(t, &fakeGateway{recents: descriptors(5, 3, 7, 2)})
	rp.enableKeyReporting(t)

	rp.program.Send(tea.WindowSizeMsg{Width: 100, Height: 30})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, strings.Count(rp.output.String(), ansi.KittyKeyboard(keyReportingFlags, 2)),
		"flags are requested once per size change sequence")
}

func TestProgramCommitsOnModifierRelease(t *testing.T) {
	gw := &fakeGateway{recents: descriptors(5, 3, 7, 2)}
	rp := startProgram(t, gw)
	rp.enableKeyReporting(t)

	rp.write(t, kittyAltPress, kittyAltQ, kittyAltQUp)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, gw.Activated(), "releasing only the cycle key must not commit")

	rp.write(t, kittyAltRelease)
	waitActivated(t, gw, 3)
}

func TestProgramMatchesBaseLayoutKey(t *testing.T) {
	gw := &fakeGateway{recents: descriptors(5, 3, 7, 2)}
	rp := startProgram(t, gw)
	rp.enableKeyReporting(t)

	rp.write(t, kittyAltPress, kittyAltQCyrillic, kittyAltQCyrillic, kittyAltRelease)
	waitActivated(t, gw, 7)
}
