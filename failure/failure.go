// Package failure implements the simulator's crash model: lifetime
// sampling and the three failure-handling modes selected by
// config.BuildingBlocks.FailureHandling. Everything here operates on the
// node registry directly, keeping the package independent of the manager
// package's event loop.
package failure

import (
	"sort"

	"github.com/dedis/dissec/node"
	"github.com/dedis/dissec/topology"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// GenerateLifetimes samples DeathTime for every node independently from
// Exp(1/averageFailureTime). A sampled death time is always strictly
// positive; distuv.Exponential never returns exactly zero for a
// non-degenerate rate. src is the manager's *rng.Source, which
// implements rand.Source and so feeds distuv's generator directly, the
// same deterministic stream used to build the tree and split
// contributor shares. Nodes are visited in ascending address order,
// never in map order: each draw advances the shared stream, so the
// visit order is part of the reproducibility contract.
func GenerateLifetimes(nodes map[topology.Address]*node.Node, src rand.Source, averageFailureTime float64) {
	dist := distuv.Exponential{
		Rate: 1.0 / averageFailureTime,
		Src:  src,
	}
	addrs := make([]topology.Address, 0, len(nodes))
	for addr := range nodes {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	for _, addr := range addrs {
		nodes[addr].DeathTime = dist.Rand()
	}
}

// PropagateLocal implements LocalFailurePropagation's construction-time
// step: every node whose DeathTime is already less than currentTime is
// treated as detected, and every member of its own group and of every
// group in its subtree (found via its TreeNode's Children, recursing
// through each child group's first member) is marked dead for the
// remainder of the run by zeroing DeathTime.
func PropagateLocal(nodes map[topology.Address]*node.Node, currentTime float64) {
	var failed []topology.Address
	for addr, n := range nodes {
		if n.DeathTime < currentTime {
			failed = append(failed, addr)
		}
	}
	// Recursion order doesn't change the result (every descendant is
	// zeroed regardless of where the walk starts), but a sorted order
	// keeps the traversal stable across Go's randomized map iteration.
	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })

	for _, addr := range failed {
		stopSubtree(nodes, addr)
	}
}

func stopSubtree(nodes map[topology.Address]*node.Node, addr topology.Address) {
	n := nodes[addr]
	for _, member := range n.Tree.Members {
		nodes[member].DeathTime = 0
	}
	for _, child := range n.Tree.Children {
		stopSubtree(nodes, child[0])
	}
}

// ExtendForReplacement implements NodeReplacement's construction-time
// step: walking nodes in ascending DeathTime order, for every node whose
// DeathTime is still less than the running current time, add one
// unitCost (10*crypto + 8*comm) and advance current time by it before
// checking the next node. The extension compounds sequentially rather
// than as a flat count*unitCost multiply: an earlier extension can push
// current time past more nodes' death times, and those replacements
// cost time too.
func ExtendForReplacement(nodes map[topology.Address]*node.Node, currentTime float64, unitCost float64) float64 {
	sorted := make([]*node.Node, 0, len(nodes))
	for _, n := range nodes {
		sorted = append(sorted, n)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DeathTime < sorted[j].DeathTime })

	i := 0
	for i < len(sorted) && currentTime > sorted[i].DeathTime {
		currentTime += unitCost
		i++
	}
	return currentTime
}
