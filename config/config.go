// Package config holds the simulator's run settings: tree shape,
// failure-handling mode, cost model, timing, and their TOML loading.
package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// FailureHandling selects which of the three failure-handling modes the
// manager applies.
type FailureHandling int

const (
	FullFailurePropagation FailureHandling = iota
	LocalFailurePropagation
	NodeReplacement
)

func (f FailureHandling) String() string {
	switch f {
	case FullFailurePropagation:
		return "FullFailurePropagation"
	case LocalFailurePropagation:
		return "LocalFailurePropagation"
	case NodeReplacement:
		return "NodeReplacement"
	default:
		return "Unknown"
	}
}

// ParseFailureHandling accepts the three names above or their short
// lowercase aliases "full", "local" and "replacement", for use by the
// CLI/TOML layer. Matching is case-sensitive.
func ParseFailureHandling(s string) (FailureHandling, error) {
	switch s {
	case "FullFailurePropagation", "full":
		return FullFailurePropagation, nil
	case "LocalFailurePropagation", "local":
		return LocalFailurePropagation, nil
	case "NodeReplacement", "replacement":
		return NodeReplacement, nil
	default:
		return 0, fmt.Errorf("unknown failure-handling mode %q", s)
	}
}

// BuildingBlocks selects the protocol variant to simulate.
type BuildingBlocks struct {
	FailureHandling FailureHandling
}

// Costs is the per-operation time cost model, in simulated time units.
type Costs struct {
	Crypto  float64
	Comm    float64
	Compute float64
}

// Tree describes the shape of the aggregation tree.
type Tree struct {
	Fanout    int
	Depth     int
	GroupSize int
}

// RunSettings is the full configuration of one simulation run.
type RunSettings struct {
	Seed               string
	Tree               Tree
	BuildingBlocks     BuildingBlocks
	AverageFailureTime float64
	HealthCheckPeriod  float64
	Costs              Costs
}

// Validate reports configuration errors that are fatal at startup: a
// non-positive average failure time, or a zero group size or fanout.
func (s RunSettings) Validate() error {
	if s.AverageFailureTime <= 0 {
		return errors.New("average_failure_time must be positive")
	}
	if s.Tree.GroupSize == 0 {
		return errors.New("group_size must not be zero")
	}
	if s.Tree.Fanout == 0 {
		return errors.New("fanout must not be zero")
	}
	return nil
}

// TreeConstructionLatency is the virtual time the scheduler's setup
// phase advances the global clock by before any messages are processed,
// modelling the cryptographic and communication cost of laying out the
// tree itself.
func (s RunSettings) TreeConstructionLatency() float64 {
	return float64(s.Tree.Depth)*4*s.Costs.Crypto + 2*s.Costs.Comm
}

// ReplacementUnitCost is the extra construction-time cost NodeReplacement
// charges per detected failure: the parent signs, the backup answers, the
// parent confirms, the backup verifies, then the backup signs and the
// members reply with their children.
func (s RunSettings) ReplacementUnitCost() float64 {
	return 10*s.Costs.Crypto + 8*s.Costs.Comm
}

// fileFormat is the on-disk TOML shape, using lower_snake_case keys in
// the style of the CSV column names; the fanout, depth and comm_cost keys
// are shorter than their CSV columns (tree_fanout, tree_depth,
// communication_cost).
type fileFormat struct {
	Seed               string  `toml:"seed"`
	Fanout             int     `toml:"fanout"`
	Depth              int     `toml:"depth"`
	GroupSize          int     `toml:"group_size"`
	FailureHandling    string  `toml:"failure_handling"`
	AverageFailureTime float64 `toml:"average_failure_time"`
	HealthCheckPeriod  float64 `toml:"health_check_period"`
	CryptoCost         float64 `toml:"crypto_cost"`
	CommCost           float64 `toml:"comm_cost"`
	ComputeCost        float64 `toml:"compute_cost"`
}

// LoadFile reads and validates a RunSettings from a TOML file.
func LoadFile(path string) (RunSettings, error) {
	var ff fileFormat
	if _, err := toml.DecodeFile(path, &ff); err != nil {
		return RunSettings{}, err
	}
	mode, err := ParseFailureHandling(ff.FailureHandling)
	if err != nil {
		return RunSettings{}, err
	}
	settings := RunSettings{
		Seed: ff.Seed,
		Tree: Tree{
			Fanout:    ff.Fanout,
			Depth:     ff.Depth,
			GroupSize: ff.GroupSize,
		},
		BuildingBlocks:     BuildingBlocks{FailureHandling: mode},
		AverageFailureTime: ff.AverageFailureTime,
		HealthCheckPeriod:  ff.HealthCheckPeriod,
		Costs: Costs{
			Crypto:  ff.CryptoCost,
			Comm:    ff.CommCost,
			Compute: ff.ComputeCost,
		},
	}
	return settings, settings.Validate()
}
