// Package manager is the discrete-event scheduler: it owns the node
// registry, the message queue and the global logical clock, and wires
// setup and the event loop around them. The Manager exclusively owns
// nodes and the queue; node.Node values never reach into one another.
package manager

import (
	"errors"

	"github.com/dedis/dissec/config"
	"github.com/dedis/dissec/failure"
	"github.com/dedis/dissec/log"
	"github.com/dedis/dissec/message"
	"github.com/dedis/dissec/node"
	"github.com/dedis/dissec/recording"
	"github.com/dedis/dissec/rng"
	"github.com/dedis/dissec/topology"
)

// QuerierAddress is always 0: the querier is the first address assigned
// during tree construction.
const QuerierAddress = topology.Address(0)

// Manager is the simulator's scheduler: setup builds the tree and
// schedules the initial messages, then Run drains the event queue until
// it's empty, recording every delivered message as it goes.
type Manager struct {
	Settings  config.RunSettings
	Nodes     map[topology.Address]*node.Node
	Queue     *message.Queue
	Recording *recording.Recording

	CurrentTime float64
	rand        *rng.Source
}

// New validates settings and returns a Manager ready for Setup. Invalid
// settings (non-positive average failure time, zero group size) are
// rejected here, before any state is built.
func New(settings config.RunSettings, fullExport bool) (*Manager, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Manager{
		Settings:  settings,
		Nodes:     make(map[topology.Address]*node.Node),
		Queue:     message.NewQueue(),
		Recording: recording.New(settings, fullExport),
		rand:      rng.NewSource(settings.Seed),
	}, nil
}

// Setup builds the tree, samples lifetimes, applies the failure mode's
// construction-time effect, opens the initial channels, and schedules
// the initial ScheduleHealthCheck and RequestData messages.
func (m *Manager) Setup() {
	built := topology.Build(topology.Settings{
		Fanout:    m.Settings.Tree.Fanout,
		Depth:     m.Settings.Tree.Depth,
		GroupSize: m.Settings.Tree.GroupSize,
	}, m.rand)

	for addr, b := range built {
		n := node.New(m.Settings, b.Role, b.Tree)
		if b.Role == topology.Contributor {
			n.ShareSource = m.rand
		}
		m.Nodes[addr] = n
		if b.Role == topology.Contributor {
			m.Recording.InitialContributors++
		}
	}

	failure.GenerateLifetimes(m.Nodes, m.rand, m.Settings.AverageFailureTime)

	m.CurrentTime = m.Settings.TreeConstructionLatency()

	switch m.Settings.BuildingBlocks.FailureHandling {
	case config.LocalFailurePropagation:
		failure.PropagateLocal(m.Nodes, m.CurrentTime)
	case config.NodeReplacement:
		m.CurrentTime = failure.ExtendForReplacement(m.Nodes, m.CurrentTime, m.Settings.ReplacementUnitCost())
	case config.FullFailurePropagation:
		// No construction-time action: dead receivers swallow messages
		// at runtime via node.Node.Handle's dead-on-arrival check.
	}

	m.initializeChannels()
	m.scheduleInitialMessages()

	log.Lvl1("manager: built", len(m.Nodes), "nodes, current_time", m.CurrentTime)
}

// initializeChannels opens the channels each role needs before any
// message is exchanged: the querier opens maintained channels to its
// top-level children; aggregators open an unmaintained channel to their
// positional parent, an unmaintained channel to their leader (or to
// every other member if they are the leader), and a maintained channel
// to their positional child in every child group; leaf aggregators open
// an unmaintained channel to their parent and maintained channels to
// their fellow members; contributors open none (they discover parents
// lazily from TreeNode.Parents on RequestData).
func (m *Manager) initializeChannels() {
	for _, n := range m.Nodes {
		position := n.Tree.Position()

		switch n.Role {
		case topology.Querier:
			for _, child := range n.Tree.Children[0] {
				n.OpenedChannels = append(n.OpenedChannels, topology.ChannelState{PeerAddress: child, Maintained: true})
			}

		case topology.Aggregator:
			parent := n.Tree.Parents[position]
			n.OpenedChannels = append(n.OpenedChannels, topology.ChannelState{PeerAddress: parent, Maintained: false})

			if position == 0 {
				for _, member := range n.Tree.Members {
					if member == n.Address {
						continue
					}
					n.OpenedChannels = append(n.OpenedChannels, topology.ChannelState{PeerAddress: member, Maintained: false})
				}
			} else {
				leader := n.Tree.Members[0]
				n.OpenedChannels = append(n.OpenedChannels, topology.ChannelState{PeerAddress: leader, Maintained: false})
			}

			for _, group := range n.Tree.Children {
				n.OpenedChannels = append(n.OpenedChannels, topology.ChannelState{PeerAddress: group[position], Maintained: true})
			}

		case topology.LeafAggregator:
			parent := n.Tree.Parents[position]
			n.OpenedChannels = append(n.OpenedChannels, topology.ChannelState{PeerAddress: parent, Maintained: false})

			for _, member := range n.Tree.Members {
				if member == n.Address {
					continue
				}
				n.OpenedChannels = append(n.OpenedChannels, topology.ChannelState{PeerAddress: member, Maintained: true})
			}

		case topology.Contributor:
			// No channels at setup.
		}
	}
}

// scheduleInitialMessages pushes every non-contributor's first
// ScheduleHealthCheck, and the leaf-aggregator leaders' initial
// RequestData to their contributor children, onto the queue at
// CurrentTime. Nodes are walked in ascending address order, not map
// order: the queue stamps an insertion sequence on every push, and
// identical runs must stamp identical sequences for traces to match.
// Addresses are dense from 0, so a plain counting loop covers the
// registry.
func (m *Manager) scheduleInitialMessages() {
	for addr := topology.Address(0); int(addr) < len(m.Nodes); addr++ {
		n := m.Nodes[addr]
		if n.Role == topology.Contributor {
			continue
		}
		m.Queue.Push(message.NewTimeout(message.ScheduleHealthCheck, int(addr), m.CurrentTime, m.CurrentTime))

		if n.Role == topology.LeafAggregator && n.Tree.IsLeader() {
			for _, group := range n.Tree.Children {
				for _, contributor := range group {
					m.Queue.Push(message.New(
						message.RequestData,
						m.CurrentTime,
						int(addr),
						m.CurrentTime+m.Settings.Costs.Comm,
						int(contributor),
					))
				}
			}
		}
	}
}

// ErrUnknownReceiver is returned by Run if a message's receiver address
// isn't in the registry: a programmer error in setup, not a modeled
// runtime condition.
var ErrUnknownReceiver = errors.New("manager: message addressed to unknown node")

// Run drains the event queue: pop the earliest-eligible message,
// dispatch it to its receiver, re-queue it on a bounce or record it and
// queue its follow-ups on delivery, until the queue empties.
func (m *Manager) Run() error {
	for m.Queue.Len() > 0 {
		msg := m.Queue.Pop()

		receiver, ok := m.Nodes[topology.Address(msg.Receiver)]
		if !ok {
			return ErrUnknownReceiver
		}

		outcome := receiver.Handle(&msg)
		if outcome.Bounce {
			m.Queue.Push(msg)
			continue
		}
		// A message swallowed by a dead receiver is consumed silently: it
		// is neither recorded nor allowed to advance the global clock.
		if !msg.Delivered {
			continue
		}

		m.CurrentTime = msg.ArrivalTime
		m.Recording.Record(msg)
		for _, follow := range outcome.Messages {
			m.Queue.Push(follow)
		}
	}

	m.finalizeRecording()
	return nil
}

// finalizeRecording computes FinalContributors, the count of
// contributors still alive (DeathTime > CurrentTime) once the queue has
// drained, feeding recording.Recording.Completeness.
func (m *Manager) finalizeRecording() {
	alive := 0
	for _, n := range m.Nodes {
		if n.Role == topology.Contributor && n.DeathTime > m.CurrentTime {
			alive++
		}
	}
	m.Recording.FinalContributors = alive
}
