package node

import (
	"testing"

	"github.com/dedis/dissec/config"
	"github.com/dedis/dissec/message"
	"github.com/dedis/dissec/share"
	"github.com/dedis/dissec/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() config.RunSettings {
	return config.RunSettings{
		Tree:              config.Tree{Fanout: 4, Depth: 3, GroupSize: 3},
		HealthCheckPeriod: 500,
		Costs:             config.Costs{Crypto: 10, Comm: 20, Compute: 0},
	}
}

func TestHandleBouncesMessageArrivingBeforeLocalTime(t *testing.T) {
	n := New(testSettings(), topology.Aggregator, topology.TreeNode{Address: 0})
	n.DeathTime = 1e9
	n.LocalTime = 1000

	msg := message.New(message.ScheduleHealthCheck, 0, 0, 0, 0)
	out := n.Handle(&msg)

	require.True(t, out.Bounce)
	assert.Equal(t, 1000.0, msg.ArrivalTime)
	assert.Empty(t, out.Messages)
}

func TestHandleDeliversScheduleHealthCheckAtArrivalTime(t *testing.T) {
	n := New(testSettings(), topology.Aggregator, topology.TreeNode{Address: 0})
	n.DeathTime = 1e9

	msg := message.New(message.ScheduleHealthCheck, 0, 0, 1000, 0)
	out := n.Handle(&msg)

	require.False(t, out.Bounce)
	assert.Equal(t, 1000.0, n.LocalTime)
	assert.True(t, msg.Delivered)
}

func TestHandleSilentlyConsumesMessageForDeadReceiver(t *testing.T) {
	n := New(testSettings(), topology.Aggregator, topology.TreeNode{Address: 0})
	n.DeathTime = 5

	msg := message.New(message.ScheduleHealthCheck, 0, 0, 10, 0)
	out := n.Handle(&msg)

	assert.False(t, out.Bounce)
	assert.Empty(t, out.Messages)
	assert.False(t, msg.Delivered)
	assert.Equal(t, 0.0, n.LocalTime)
}

func TestHandleOpenChannelRepliesWithConfirmChannel(t *testing.T) {
	n := New(testSettings(), topology.Aggregator, topology.TreeNode{Address: 1})
	n.DeathTime = 1e9

	msg := message.New(message.OpenChannel, 0, 2, 100, 1)
	out := n.Handle(&msg)

	require.Len(t, out.Messages, 1)
	assert.Equal(t, message.ConfirmChannel, out.Messages[0].Type)
	assert.Equal(t, 2, out.Messages[0].Receiver)
	require.Len(t, n.OpenedChannels, 1)
	assert.Equal(t, topology.Address(2), n.OpenedChannels[0].PeerAddress)
	assert.True(t, n.OpenedChannels[0].Maintained)
}

func TestContributorSplitsShareOnFirstRequestDataOnly(t *testing.T) {
	settings := testSettings()
	n := New(settings, topology.Contributor, topology.TreeNode{Address: 10, Parents: []topology.Address{1, 2, 3}})
	n.DeathTime = 1e9

	msg := message.New(message.RequestData, 0, 0, 0, 10)
	out := n.Handle(&msg)
	require.Len(t, out.Messages, 3)
	for _, m := range out.Messages {
		assert.Equal(t, message.PrepareData, m.Type)
	}
	require.Len(t, n.Shares, 3)

	var total float64
	for _, s := range n.Shares {
		total += s.Value
	}
	assert.InDelta(t, n.SecretValue, total, 1e-9)

	// Arrive after the first handling's local time so the message is
	// delivered rather than bounced.
	msg2 := message.New(message.RequestData, 0, 0, 100, 10)
	out2 := n.Handle(&msg2)
	require.False(t, out2.Bounce)
	assert.Empty(t, out2.Messages)
}

func TestQuerierCompletesOnceEveryChildGroupReports(t *testing.T) {
	settings := testSettings()
	n := New(settings, topology.Querier, topology.TreeNode{
		Address:  0,
		Members:  []topology.Address{0, 0, 0},
		Children: [][]topology.Address{{1, 2, 3}},
	})
	n.DeathTime = 1e9

	msg := message.New(message.SendData, 0, 1, 100, 0)
	s := share.New(12.0, 1)
	msg.Content.Data = &s
	out := n.Handle(&msg)

	assert.Empty(t, out.Messages)
	assert.True(t, n.FinishedWorking)
}
