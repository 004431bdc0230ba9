package node

import (
	"github.com/dedis/dissec/message"
	"github.com/dedis/dissec/share"
)

// ShareSampler is the minimal randomness surface a contributor needs to
// split its secret: a uniform draw in [0, 1), scaled to [0, 10000) for
// each offset. Satisfied by *rng.Source, the same generator the manager
// uses to build the tree and sample lifetimes, so a contributor's share
// split consumes from the one deterministic stream.
type ShareSampler interface {
	Float64() float64
}

// contributorRequestData splits SecretValue into GroupSize additive
// shares on first receipt: GroupSize-1 uniform offsets in [0, 10000),
// plus a final share of SecretValue minus their sum, so the shares sum
// back to the secret. It spends 3*crypto_cost verifying the query, then
// self-dispatches one PrepareData per parent so PrepareData can look up
// the right share by target address. A second RequestData, as sent by a
// replacement node, is a no-op placeholder.
func (n *Node) contributorRequestData(msg *message.Message) []message.Message {
	if len(n.Shares) != 0 {
		return nil
	}

	var buffer float64
	for i := 0; i < n.Settings.Tree.GroupSize-1; i++ {
		offset := 10000.0
		if n.ShareSource != nil {
			offset = n.ShareSource.Float64() * 10000.0
		}
		buffer += offset
		n.Shares = append(n.Shares, share.New(offset, int(n.Address)))
	}
	n.Shares = append(n.Shares, share.New(n.SecretValue-buffer, int(n.Address)))

	n.LocalTime += 3 * n.Settings.Costs.Crypto

	out := make([]message.Message, 0, len(n.Tree.Parents))
	for _, parent := range n.Tree.Parents {
		m := message.New(
			message.PrepareData,
			n.LocalTime,
			int(n.Address),
			n.LocalTime+n.messageLatency(),
			int(n.Address),
		)
		target := int(parent)
		m.Content.TargetNode = &target
		out = append(out, m)
	}
	return out
}

// contributorPrepareData looks up the share prepared for the parent
// named in Content.TargetNode (by that parent's position in
// Tree.Parents) and sends it.
func (n *Node) contributorPrepareData(msg *message.Message) []message.Message {
	target := *msg.Content.TargetNode

	position := -1
	for i, parent := range n.Tree.Parents {
		if int(parent) == target {
			position = i
			break
		}
	}

	out := message.New(
		message.SendData,
		n.LocalTime,
		int(n.Address),
		n.LocalTime+n.messageLatency(),
		target,
	)
	s := n.Shares[position]
	out.Content.Data = &s
	return []message.Message{out}
}
