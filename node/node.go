// Package node implements the per-role message state machines: the
// common base behaviour (channel establishment, health checks) shared by
// every role, and the role-specific handling of the data-collection
// messages (RequestData, PrepareData, SendData).
//
// One concrete Node type tagged by NodeRole covers all roles; dispatch
// is a switch over Role × Message.Type, with the shared default handlers
// factored as methods any role can fall through to.
package node

import (
	"github.com/dedis/dissec/config"
	"github.com/dedis/dissec/message"
	"github.com/dedis/dissec/share"
	"github.com/dedis/dissec/topology"
)

// Node is the runtime state of one simulated party. Exactly one exists
// per topology.Address; the manager package owns the registry and never
// lets one Node reach into another's state.
type Node struct {
	Settings config.RunSettings
	Address  topology.Address
	Role     topology.NodeRole
	Tree     topology.TreeNode

	LocalTime       float64
	DeathTime       float64
	OpenedChannels  []topology.ChannelState
	Aggregates      map[topology.Address]share.Share
	SecretValue     float64
	Shares          []share.Share
	FinishedWorking bool

	// ShareSource is the contributor's randomness surface for splitting
	// SecretValue into shares. Unused by every other role. The manager
	// wires in its own rng.Source here for contributors at setup time.
	ShareSource ShareSampler
}

// New creates a node for the given role and topology position. Every
// contributor is assigned the same placeholder secret value (50.0); the
// share scheme's security is not modelled.
func New(settings config.RunSettings, role topology.NodeRole, tree topology.TreeNode) *Node {
	return &Node{
		Settings:    settings,
		Address:     tree.Address,
		Role:        role,
		Tree:        tree,
		SecretValue: 50.0,
		Aggregates:  make(map[topology.Address]share.Share),
	}
}

// Outcome is the result of handling one message: either a bounce (the
// message must be re-queued at the node's own local time with no other
// effect), or a possibly empty set of follow-up messages produced by
// a successful delivery.
type Outcome struct {
	Bounce   bool
	Messages []message.Message
}

// Handle dispatches msg to the node's state machine:
//   - a message arriving at or after the node's death time is consumed
//     silently (no state change, no follow-ups, not a bounce);
//   - a message arriving before the node's local time, that isn't a
//     RequestHealth, bounces: the caller is expected to re-queue it at
//     the node's current local time;
//   - otherwise the node's local time advances to the message's arrival
//     time and the appropriate handler runs, with the resulting advance
//     in local time recorded as the message's Work.
func (n *Node) Handle(msg *message.Message) Outcome {
	if n.DeathTime <= msg.ArrivalTime {
		return Outcome{}
	}
	if msg.ArrivalTime < n.LocalTime && msg.Type != message.RequestHealth {
		msg.ArrivalTime = n.LocalTime
		return Outcome{Bounce: true}
	}

	if n.LocalTime < msg.ArrivalTime {
		n.LocalTime = msg.ArrivalTime
	}
	timeBefore := n.LocalTime
	msg.Delivered = true

	var out []message.Message
	switch msg.Type {
	case message.ScheduleHealthCheck:
		out = n.handleScheduleHealthCheck(msg)
	case message.RequestHealth:
		out = n.handleRequestHealth(msg)
	case message.ConfirmHealth:
		out = n.handleConfirmHealth(msg)
	case message.OpenChannel:
		out = n.handleOpenChannel(msg)
	case message.ConfirmChannel:
		out = n.handleConfirmChannel(msg)
	case message.RequestData:
		if n.Role == topology.Contributor {
			out = n.contributorRequestData(msg)
		} else {
			out = n.handleRequestData(msg)
		}
	case message.PrepareData:
		if n.Role == topology.Contributor {
			out = n.contributorPrepareData(msg)
		} else {
			out = n.handlePrepareData(msg)
		}
	case message.SendData:
		if n.Role == topology.Querier {
			out = n.querierSendData(msg)
		} else {
			out = n.handleSendData(msg)
		}
	case message.Stop:
		out = nil
	default:
		panic("node: unknown message type")
	}

	msg.Work = n.LocalTime - timeBefore
	return Outcome{Messages: out}
}

func (n *Node) messageLatency() float64 {
	return n.Settings.Costs.Comm
}

// handleScheduleHealthCheck emits a RequestHealth to every maintained
// channel and reschedules itself one health-check period later.
func (n *Node) handleScheduleHealthCheck(msg *message.Message) []message.Message {
	var out []message.Message
	for _, ch := range n.OpenedChannels {
		if !ch.Maintained {
			continue
		}
		out = append(out, message.New(
			message.RequestHealth,
			n.LocalTime,
			int(n.Address),
			n.LocalTime+n.messageLatency(),
			int(ch.PeerAddress),
		))
	}
	out = append(out, message.NewTimeout(
		message.ScheduleHealthCheck,
		int(n.Address),
		n.LocalTime,
		n.LocalTime+n.Settings.HealthCheckPeriod,
	))
	return out
}

func (n *Node) handleRequestHealth(msg *message.Message) []message.Message {
	return []message.Message{message.New(
		message.ConfirmHealth,
		n.LocalTime,
		int(n.Address),
		n.LocalTime+n.messageLatency(),
		msg.Emitter,
	)}
}

func (n *Node) handleConfirmHealth(msg *message.Message) []message.Message {
	return nil
}

func (n *Node) handleOpenChannel(msg *message.Message) []message.Message {
	n.OpenedChannels = append(n.OpenedChannels, topology.ChannelState{PeerAddress: topology.Address(msg.Emitter), Maintained: true})
	n.LocalTime += 3 * n.Settings.Costs.Crypto
	return []message.Message{message.New(
		message.ConfirmChannel,
		n.LocalTime,
		int(n.Address),
		n.LocalTime+n.messageLatency(),
		msg.Emitter,
	)}
}

func (n *Node) handleConfirmChannel(msg *message.Message) []message.Message {
	n.OpenedChannels = append(n.OpenedChannels, topology.ChannelState{PeerAddress: topology.Address(msg.Emitter), Maintained: true})
	n.LocalTime += 3 * n.Settings.Costs.Crypto
	return nil
}

// handleRequestData, handlePrepareData and handleSendData have
// role-specific overrides (contributor.go, querier.go); the definitions
// here are the base no-op / positional-fold behaviour shared by
// aggregators and leaf aggregators.
func (n *Node) handleRequestData(msg *message.Message) []message.Message {
	return nil
}

func (n *Node) handlePrepareData(msg *message.Message) []message.Message {
	return nil
}

// expectedChildShare returns the address this node expects a share from
// in the given child group: position 0 for a leaf aggregator (its
// children are single contributors), or this node's own position within
// its group for an aggregator, so each member collects along its own
// lane through the tree.
func (n *Node) expectedChildShare(childGroup []topology.Address) topology.Address {
	if n.Role == topology.LeafAggregator {
		return childGroup[0]
	}
	return childGroup[n.Tree.Position()]
}

func (n *Node) handleSendData(msg *message.Message) []message.Message {
	if msg.Content.Data == nil {
		return nil
	}
	n.Aggregates[topology.Address(msg.Emitter)] = *msg.Content.Data

	expected := make([]share.Share, 0, len(n.Tree.Children))
	for _, group := range n.Tree.Children {
		s, ok := n.Aggregates[n.expectedChildShare(group)]
		if !ok {
			return nil
		}
		expected = append(expected, s)
	}

	position := n.Tree.Position()
	aggregate := share.Aggregate(expected)
	out := message.New(
		message.SendData,
		n.LocalTime,
		int(n.Address),
		n.LocalTime+n.messageLatency(),
		int(n.Tree.Parents[position]),
	)
	out.Content.Data = &aggregate
	return []message.Message{out}
}
