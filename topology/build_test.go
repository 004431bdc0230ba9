package topology

import (
	"testing"

	"github.com/dedis/dissec/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The fixed interior layout for depth=3, fanout=4, group_size=3 is
// 1 querier + 3 + 12 + 48 = 64 nodes; this seed's 16 contributor-count
// draws add 175 more.
func TestBuildTreeSizeForReferenceSeed(t *testing.T) {
	source := rng.NewSource("str")
	nodes := Build(Settings{Fanout: 4, Depth: 3, GroupSize: 3}, source)

	assert.Len(t, nodes, 239)
}

func TestBuildTreeEveryNonRootGroupHasGroupSizeMembers(t *testing.T) {
	source := rng.NewSource("42")
	nodes := Build(Settings{Fanout: 4, Depth: 3, GroupSize: 3}, source)

	for addr, n := range nodes {
		// Contributors are leaves, not groups: each is a single address.
		if n.Role == Contributor {
			require.Len(t, n.Tree.Members, 1, "node %d", addr)
		} else {
			require.Len(t, n.Tree.Members, 3, "node %d", addr)
		}
		if n.Role == Aggregator || n.Role == LeafAggregator {
			require.Len(t, n.Tree.Parents, 3, "node %d", addr)
		}
	}
}

func TestBuildTreeQuerierHasOneChildGroup(t *testing.T) {
	source := rng.NewSource("42")
	nodes := Build(Settings{Fanout: 4, Depth: 3, GroupSize: 3}, source)

	querier := nodes[0]
	require.Equal(t, Querier, querier.Role)
	assert.Len(t, querier.Tree.Children, 1)
}

func TestBuildTreeEveryContributorIsInExactlyOneLeafGroup(t *testing.T) {
	source := rng.NewSource("42")
	nodes := Build(Settings{Fanout: 4, Depth: 3, GroupSize: 3}, source)

	seen := make(map[Address]int)
	for _, n := range nodes {
		if n.Role == LeafAggregator && n.Tree.IsLeader() {
			for _, group := range n.Tree.Children {
				seen[group[0]]++
			}
		}
	}
	for _, n := range nodes {
		if n.Role == Contributor {
			assert.Equal(t, 1, seen[n.Address])
		}
	}
}
