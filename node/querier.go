package node

import (
	"github.com/dedis/dissec/log"
	"github.com/dedis/dissec/message"
	"github.com/dedis/dissec/share"
	"github.com/dedis/dissec/topology"
)

// querierSendData folds in the share arriving from each top-level child
// group, position-wise like an interior aggregator (the querier's
// degenerate group holds GroupSize copies of address 0, so its own
// Position() is always 0). Once every expected position has reported,
// the query is complete: the final aggregate is recorded under the
// querier's own address and FinishedWorking is set. Downward Stop
// propagation is left to the natural drain of the queue.
func (n *Node) querierSendData(msg *message.Message) []message.Message {
	if msg.Content.Data == nil {
		return nil
	}
	n.Aggregates[topology.Address(msg.Emitter)] = *msg.Content.Data

	// Later group members of the top-level children keep reporting after
	// the first completion; their shares are stored but don't complete
	// the query twice.
	if n.FinishedWorking {
		return nil
	}

	expected := make([]share.Share, 0, len(n.Tree.Children))
	for _, group := range n.Tree.Children {
		s, ok := n.Aggregates[n.expectedChildShare(group)]
		if !ok {
			return nil
		}
		expected = append(expected, s)
	}

	n.FinishedWorking = true
	n.Aggregates[n.Address] = share.Aggregate(expected)
	log.Lvl1("querier", n.Address, "completed query with", len(expected), "child shares, aggregate value", n.Aggregates[n.Address].Value)
	return nil
}
