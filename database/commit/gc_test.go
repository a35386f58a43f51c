package commit

import (
	"errors"
	"sort"
	"testing"

	"github.com/Fantom-foundation/Arbor/go/common"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type testGraph struct {
	edges   map[common.Hash][]common.Hash
	deleted []common.Hash
	fail    error
}

func (g *testGraph) graph() Graph[common.Hash] {
	return Graph[common.Hash]{
		ID: func(h common.Hash) common.Hash { return h },
		Children: func(h common.Hash) ([]common.Hash, error) {
			if g.fail != nil {
				return nil, g.fail
			}
			return g.edges[h], nil
		},
		Delete: func(h common.Hash) error {
			delete(g.edges, h)
			g.deleted = append(g.deleted, h)
			return nil
		},
	}
}

func TestCollectGarbage_OnlyExclusivelyOwnedNodesAreDeleted(t *testing.T) {
	// root1 -> a -> shared, root2 -> b -> shared
	g := &testGraph{edges: map[common.Hash][]common.Hash{
		{1}:  {{10}},
		{2}:  {{11}},
		{10}: {{20}},
		{11}: {{20}},
		{20}: nil,
	}}
	deleted, err := CollectGarbage(g.graph(), []common.Hash{{1}}, []common.Hash{{2}})
	if err != nil {
		t.Fatalf("failed to collect garbage: %v", err)
	}
	if deleted != 2 {
		t.Errorf("unexpected number of deleted nodes: %d", deleted)
	}
	sort.Slice(g.deleted, func(i, j int) bool { return g.deleted[i].Compare(g.deleted[j]) < 0 })
	if want := []common.Hash{{1}, {10}}; !slices.Equal(g.deleted, want) {
		t.Errorf("unexpected deleted nodes: got %v, want %v", g.deleted, want)
	}
	remaining := maps.Keys(g.edges)
	if len(remaining) != 3 {
		t.Errorf("unexpected remaining nodes: %v", remaining)
	}
}

func TestCollectGarbage_SharedDescendantsAreVisitedOnce(t *testing.T) {
	g := &testGraph{edges: map[common.Hash][]common.Hash{
		{1}: {{2}, {3}},
		{2}: {{4}},
		{3}: {{4}},
		{4}: nil,
	}}
	deleted, err := CollectGarbage(g.graph(), []common.Hash{{1}, {1}}, nil)
	if err != nil {
		t.Fatalf("failed to collect garbage: %v", err)
	}
	if deleted != 4 || len(g.edges) != 0 {
		t.Errorf("all nodes should be deleted exactly once, got %d, left %v", deleted, g.edges)
	}
}

func TestCollectGarbage_LoadErrorsAreReported(t *testing.T) {
	injected := errors.New("injected")
	g := &testGraph{edges: map[common.Hash][]common.Hash{{1}: nil}, fail: injected}
	if _, err := CollectGarbage(g.graph(), []common.Hash{{1}}, nil); !errors.Is(err, injected) {
		t.Errorf("expected injected error, got %v", err)
	}
	if len(g.deleted) != 0 {
		t.Errorf("nothing should be deleted on errors")
	}
}
