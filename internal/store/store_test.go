package store

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/tabflip/internal/tabs"
)

func ids(values ...int) []tabs.ID {
	out := make([]tabs.ID, len(values))
	for i, v := range values {
		out[i] = tabs.ID(v)
	}
	return out
}

func TestPushMovesExistingTabToFrontWithoutGrowing(t *testing.T) {
	s := New()
	for _, id := range []int{2, 7, 3, 5} {
		s.Push(1, tabs.ID(id))
	}
	assert.Equal(t, ids(5, 3, 7, 2), s.Snapshot(1))
	s.Push(1, 7)
	assert.Equal(t, ids(7, 5, 3, 2), s.Snapshot(1), "7 moves to front")
	s.Push(1, 7)
	assert.Equal(t, ids(7, 5, 3, 2), s.Snapshot(1), "repeated push is a no-op")
}

func TestPushTruncatesToCapacity(t *testing.T) {
	s := New()
	for id := 1; id <= 8; id++ {
		s.Push(1, tabs.ID(id))
	}
	assert.Equal(t, ids(8, 7, 6, 5, 4), s.Snapshot(1))
}

func TestStacksStayBoundedAndDistinct(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := New()
	for i := 0; i < 2000; i++ {
		window := tabs.WindowID(rng.Intn(3) + 1)
		id := tabs.ID(rng.Intn(12) + 1)
		if rng.Intn(5) == 0 {
			s.Remove(id)
		} else {
			s.Push(window, id)
		}
		for w := tabs.WindowID(1); w <= 3; w++ {
			stack := s.Snapshot(w)
			require.LessOrEqual(t, len(stack), MaxMRU, "stack %d: %v", w, stack)
			seen := map[tabs.ID]bool{}
			for _, id := range stack {
				require.False(t, seen[id], "duplicate %d in stack %v", id, stack)
				seen[id] = true
			}
		}
	}
}

func TestSnapshotCreatesEmptyStackLazily(t *testing.T) {
	s := New()
	assert.Empty(t, s.Snapshot(9))
	assert.Equal(t, 1, s.Stats().Windows)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New()
	s.Push(1, 1)
	s.Push(1, 2)
	snap := s.Snapshot(1)
	snap[0] = 99
	assert.Equal(t, tabs.ID(2), s.Snapshot(1)[0], "snapshot mutation must not leak into the store")
}

func TestRemoveDropsFromAllStacksAndCache(t *testing.T) {
	s := New()
	s.Push(1, 4)
	s.Push(1, 1)
	s.Push(2, 4)
	s.PutPreview(4, tabs.Preview{Format: "jpeg", Data: []byte{1}})
	s.Remove(4)
	assert.Equal(t, ids(1), s.Snapshot(1))
	assert.Empty(t, s.Snapshot(2))
	_, ok := s.Preview(4)
	assert.False(t, ok, "preview removed")
}

func TestReseedPlacesActiveTabFirst(t *testing.T) {
	s := New()
	s.Push(3, 100)
	live := []tabs.Tab{
		{ID: 1, Window: 1},
		{ID: 2, Window: 1},
		{ID: 3, Window: 1, Active: true},
		{ID: 4, Window: 1},
		{ID: 5, Window: 1},
		{ID: 6, Window: 1},
		{ID: 10, Window: 2, Active: true},
		{ID: 11, Window: 2},
	}
	s.Reseed(live)
	assert.Equal(t, ids(3, 1, 2, 4, 5), s.Snapshot(1))
	assert.Equal(t, ids(10, 11), s.Snapshot(2))
	assert.Empty(t, s.Snapshot(3), "stale window dropped")
}

func TestPutPreviewLatestWriteWins(t *testing.T) {
	s := New()
	s.PutPreview(1, tabs.Preview{Data: []byte("old")})
	s.PutPreview(1, tabs.Preview{Data: []byte("new")})
	p, ok := s.Preview(1)
	require.True(t, ok)
	assert.Equal(t, "new", string(p.Data))
	assert.Equal(t, 1, s.PreviewCount())
}

func TestPruneEvictsNonMembersFirst(t *testing.T) {
	s := New()
	// Two member tabs inserted first so that insertion order alone would
	// evict them.
	s.Push(1, 1)
	s.Push(1, 2)
	s.PutPreview(1, tabs.Preview{})
	s.PutPreview(2, tabs.Preview{})
	for id := 100; id < 118; id++ {
		s.PutPreview(tabs.ID(id), tabs.Preview{})
	}
	require.Equal(t, MaxPreviews, s.PreviewCount())

	s.PutPreview(200, tabs.Preview{})

	assert.Equal(t, MaxPreviews, s.PreviewCount())
	for _, member := range []tabs.ID{1, 2} {
		_, ok := s.Preview(member)
		assert.True(t, ok, "member preview %d evicted", member)
	}
	_, ok := s.Preview(100)
	assert.False(t, ok, "oldest non-member 100 evicted")
	_, ok = s.Preview(200)
	assert.True(t, ok, "new preview present")
}

func TestPruneFallsBackToOldestMembers(t *testing.T) {
	s := New(WithMaxMRU(5), WithMaxPreviews(2))
	for id := 1; id <= 3; id++ {
		s.Push(1, tabs.ID(id))
		s.PutPreview(tabs.ID(id), tabs.Preview{})
	}
	assert.Equal(t, 2, s.PreviewCount())
	_, ok := s.Preview(1)
	assert.False(t, ok, "oldest member evicted")
}

func TestCacheStaysBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New()
	for i := 0; i < 1000; i++ {
		id := tabs.ID(rng.Intn(60))
		if rng.Intn(2) == 0 {
			s.Push(tabs.WindowID(rng.Intn(4)), id)
		}
		s.PutPreview(id, tabs.Preview{})
		require.LessOrEqual(t, s.PreviewCount(), MaxPreviews)
	}
}

func TestPruneNeverEvictsMemberWhileNonMemberExists(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for round := 0; round < 200; round++ {
		s := New()
		for i := 0; i < MaxPreviews; i++ {
			id := tabs.ID(rng.Intn(40))
			if rng.Intn(4) == 0 {
				s.Push(1, id)
			}
			s.PutPreview(id, tabs.Preview{})
		}
		before := map[tabs.ID]bool{}
		nonMembers := 0
		for id := tabs.ID(0); id < 40; id++ {
			if _, ok := s.Preview(id); ok {
				before[id] = s.Contains(id)
				if !before[id] {
					nonMembers++
				}
			}
		}
		s.PutPreview(1000, tabs.Preview{})
		if nonMembers == 0 {
			continue
		}
		for id, member := range before {
			if !member {
				continue
			}
			_, ok := s.Preview(id)
			require.True(t, ok, "round %d: member %d evicted while %d non-members existed", round, id, nonMembers)
		}
	}
}
