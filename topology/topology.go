// Package topology defines the tree shape the simulator runs over:
// addresses, roles, per-node topology views and channel state. Tree
// nodes reference each other only by Address, never by pointer; the
// manager owns the registry that resolves an Address to a node.
package topology

import "fmt"

// Address identifies a node. Addresses are assigned densely starting at
// 0 (the querier) during tree construction.
type Address int

// NodeRole names the part a node plays in the aggregation tree.
type NodeRole int

const (
	Querier NodeRole = iota
	Aggregator
	LeafAggregator
	Contributor
	Replacement
)

func (r NodeRole) String() string {
	switch r {
	case Querier:
		return "Querier"
	case Aggregator:
		return "Aggregator"
	case LeafAggregator:
		return "LeafAggregator"
	case Contributor:
		return "Contributor"
	case Replacement:
		return "Replacement"
	default:
		return fmt.Sprintf("NodeRole(%d)", int(r))
	}
}

// ChannelState records one endpoint of a channel this node has opened to
// a peer. Maintained channels receive periodic health checks.
type ChannelState struct {
	PeerAddress Address
	Maintained  bool
}

// TreeNode is one node's view of its place in the tree: its own group
// (Members), the parent group it position-wise corresponds to (Parents),
// and the ordered groups of children hanging off it (Children).
type TreeNode struct {
	Address  Address
	Depth    int
	Members  []Address
	Parents  []Address
	Children [][]Address
}

// Position returns this node's index within its own Members, which is
// also, by construction, its index in the parent-facing channel set.
func (t TreeNode) Position() int {
	for i, m := range t.Members {
		if m == t.Address {
			return i
		}
	}
	return -1
}

// IsLeader reports whether this node occupies position 0 of its group,
// the member responsible for group-leader duties (a leaf aggregator's
// leader requests data from the contributors; an aggregator's leader
// opens channels to the other members of its group).
func (t TreeNode) IsLeader() bool {
	return t.Position() == 0
}
