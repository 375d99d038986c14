package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/atomicstack/tabflip/internal/format/table"
	"github.com/atomicstack/tabflip/internal/gateway"
	"github.com/atomicstack/tabflip/internal/tabs"
)

// ErrNoMatch reports that no recent tab matched an activate query.
var ErrNoMatch = errors.New("no recent tab matches")

var recentsColumns = []table.Column{
	{Align: table.AlignRight},
	{Align: table.AlignRight},
	{Max: 48},
	{Max: 32},
	{},
}

// Recents prints the recents list of cfg.Window, most recent first. A
// non-empty filter keeps fuzzy matches on title or address.
func Recents(ctx context.Context, cfg Config, out io.Writer, filter string) error {
	list, err := gateway.NewClient(cfg.Addr).GetRecents(ctx, cfg.Window)
	if err != nil {
		return fmt.Errorf("fetch recents: %w", err)
	}
	list = FilterRecents(list, filter)
	if len(list) == 0 {
		fmt.Fprintln(out, "no recent tabs")
		return nil
	}
	rows := make([][]string, 0, len(list)+1)
	rows = append(rows, []string{"#", "ID", "TITLE", "HOST", "PREVIEW"})
	for i, d := range list {
		rows = append(rows, []string{
			strconv.Itoa(i),
			strconv.Itoa(int(d.ID)),
			d.Title,
			d.Host(),
			previewSummary(d.Preview),
		})
	}
	for _, line := range table.Format(rows, recentsColumns) {
		fmt.Fprintln(out, line)
	}
	return nil
}

// Activate foregrounds the recent tab best matching query. A numeric query
// naming a listed tab ID selects that tab directly.
func Activate(ctx context.Context, cfg Config, out io.Writer, query string) error {
	client := gateway.NewClient(cfg.Addr)
	list, err := client.GetRecents(ctx, cfg.Window)
	if err != nil {
		return fmt.Errorf("fetch recents: %w", err)
	}
	target, ok := Best(list, query)
	if !ok {
		return fmt.Errorf("%w %q", ErrNoMatch, query)
	}
	if err := client.ActivateTab(ctx, target.ID); err != nil {
		return fmt.Errorf("activate tab %d: %w", target.ID, err)
	}
	if cfg.Verbose {
		fmt.Fprintf(out, "switched to tab %d: %s\n", target.ID, target.Title)
	}
	return nil
}

// FilterRecents keeps descriptors whose title or address fuzzily match
// query, preserving recency order.
func FilterRecents(list []tabs.Descriptor, query string) []tabs.Descriptor {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return list
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, labels(list))
	if len(ranks) == 0 {
		return []tabs.Descriptor{}
	}
	matches := make(map[int]struct{}, len(ranks))
	for _, rank := range ranks {
		matches[rank.OriginalIndex] = struct{}{}
	}
	filtered := make([]tabs.Descriptor, 0, len(matches))
	for idx, d := range list {
		if _, ok := matches[idx]; ok {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// Best picks the closest fuzzy match for query. Ties go to the more recent
// tab.
func Best(list []tabs.Descriptor, query string) (tabs.Descriptor, bool) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" || len(list) == 0 {
		return tabs.Descriptor{}, false
	}
	if id, err := strconv.Atoi(trimmed); err == nil {
		for _, d := range list {
			if int(d.ID) == id {
				return d, true
			}
		}
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, labels(list))
	if len(ranks) == 0 {
		return tabs.Descriptor{}, false
	}
	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance || (rank.Distance == best.Distance && rank.OriginalIndex < best.OriginalIndex) {
			best = rank
		}
	}
	return list[best.OriginalIndex], true
}

func labels(list []tabs.Descriptor) []string {
	out := make([]string, len(list))
	for i, d := range list {
		out[i] = d.Title + " " + d.Address
	}
	return out
}

func previewSummary(p *tabs.Preview) string {
	if p == nil {
		return "-"
	}
	summary := humanize.Bytes(uint64(len(p.Data)))
	if !p.CapturedAt.IsZero() {
		summary += ", " + humanize.Time(p.CapturedAt)
	}
	return summary
}
