package command

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/atomicstack/tabflip/internal/logging/events"
)

// Request encapsulates an asynchronous gateway call.
type Request struct {
	ID      string
	Label   string
	Timeout time.Duration
	Handler func(context.Context) tea.Msg
}

// Bus runs requests as Bubble Tea commands.
type Bus struct {
	ctx context.Context
}

// New initialises a command bus whose requests derive from ctx.
func New(ctx context.Context) *Bus {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Bus{ctx: ctx}
}

// Execute wraps req into a Bubble Tea command while emitting trace logs.
func (b *Bus) Execute(req Request) tea.Cmd {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	events.Command.Queue(req.ID, req.Label)
	return func() tea.Msg {
		if req.Handler == nil {
			events.Command.Skip(req.ID, req.Label)
			return nil
		}
		ctx := b.ctx
		if req.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, req.Timeout)
			defer cancel()
		}
		msg := req.Handler(ctx)
		events.Command.Result(req.ID, req.Label, fmt.Sprintf("%T", msg))
		return msg
	}
}
