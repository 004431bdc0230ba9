// Package message defines the simulator's wire messages and their total
// order: a closed set of message types, each with a priority, and a
// Message that carries emitter/receiver addresses, departure/arrival
// times and a recorded work cost.
package message

import "github.com/dedis/dissec/share"

// Type is the closed set of message kinds the simulator's nodes exchange.
type Type int

const (
	Stop Type = iota
	RequestData
	PrepareData
	SendData
	ScheduleHealthCheck
	RequestHealth
	ConfirmHealth
	OpenChannel
	ConfirmChannel
)

func (t Type) String() string {
	switch t {
	case Stop:
		return "Stop"
	case RequestData:
		return "RequestData"
	case PrepareData:
		return "PrepareData"
	case SendData:
		return "SendData"
	case ScheduleHealthCheck:
		return "ScheduleHealthCheck"
	case RequestHealth:
		return "RequestHealth"
	case ConfirmHealth:
		return "ConfirmHealth"
	case OpenChannel:
		return "OpenChannel"
	case ConfirmChannel:
		return "ConfirmChannel"
	default:
		return "Unknown"
	}
}

// Priority returns the tie-break priority used when two messages share an
// arrival time: Stop, OpenChannel and ConfirmChannel preempt everything,
// RequestData preempts ordinary traffic, and everything else is equal.
func (t Type) Priority() int {
	switch t {
	case Stop, OpenChannel, ConfirmChannel:
		return 255
	case RequestData:
		return 1
	default:
		return 0
	}
}

// Content carries a message's optional payload: a share in transit, or
// the address of the node a contributor is about to serve (used to
// thread PrepareData's self-dispatch through to the right parent).
type Content struct {
	Data       *share.Share
	TargetNode *int
}

// Address identifies a node. It is a plain alias of topology.Address's
// underlying type to avoid a dependency cycle between message and
// topology; the two are kept interchangeable by node/manager callers.
type Address = int

// Message is one event in the simulation: a typed, timestamped exchange
// between two addresses.
type Message struct {
	Type          Type
	Emitter       Address
	Receiver      Address
	DepartureTime float64
	ArrivalTime   float64
	Delivered     bool
	Work          float64
	Content       Content

	// seq is the monotonically increasing stamp the queue assigns at
	// insertion time, breaking ties between same-time, same-priority
	// messages in a stable order.
	seq uint64
}

// New creates a message with no payload.
func New(typ Type, departureTime float64, emitter Address, arrivalTime float64, receiver Address) Message {
	return Message{
		Type:          typ,
		Emitter:       emitter,
		Receiver:      receiver,
		DepartureTime: departureTime,
		ArrivalTime:   arrivalTime,
	}
}

// NewTimeout creates a self-addressed message, used for a node's own
// rescheduled health-check timer.
func NewTimeout(typ Type, emitter Address, departureTime float64, arrivalTime float64) Message {
	return New(typ, departureTime, emitter, arrivalTime, emitter)
}

// Less reports whether m sorts before other in delivery order: earlier
// arrival time first; ties broken by descending priority, then by
// insertion order.
func (m Message) Less(other Message) bool {
	if m.ArrivalTime != other.ArrivalTime {
		return m.ArrivalTime < other.ArrivalTime
	}
	if m.Type.Priority() != other.Type.Priority() {
		return m.Type.Priority() > other.Type.Priority()
	}
	return m.seq < other.seq
}
