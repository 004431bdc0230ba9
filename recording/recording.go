// Package recording implements the simulator's trace and summary
// metrics, and their CSV serialization. A Recording is a plain value the
// manager owns; message handlers never reach into it.
package recording

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dedis/dissec/config"
	"github.com/dedis/dissec/message"
)

// Recording accumulates the per-message trace and the summary metrics
// derived from it as the manager drains the event queue.
type Recording struct {
	Settings   config.RunSettings
	FullExport bool

	TotalWork           float64
	TotalLatency        float64
	TotalBandwidth      float64
	InitialContributors int
	FinalContributors   int

	sentMessages []message.Message
}

// New returns an empty Recording for the given run settings.
func New(settings config.RunSettings, fullExport bool) *Recording {
	return &Recording{Settings: settings, FullExport: fullExport}
}

// Record appends one delivered message to the trace (in full-export
// mode only) and folds it into the running summary metrics. Total work,
// total latency and bandwidth accumulate regardless of export mode,
// since the summary row needs them even when the per-message trace is
// discarded.
func (r *Recording) Record(msg message.Message) {
	if r.FullExport {
		r.sentMessages = append(r.sentMessages, msg)
	}
	r.TotalWork += msg.Work
	r.TotalLatency = msg.ArrivalTime
	if msg.Content.Data != nil {
		r.TotalBandwidth++
	}
}

// Messages returns the per-message trace accumulated so far. It is only
// populated in full-export mode.
func (r *Recording) Messages() []message.Message {
	return r.sentMessages
}

// Completeness is (initial-final)/initial contributors. A run with zero
// initial contributors (degenerate settings) reports zero rather than
// dividing by zero.
func (r *Recording) Completeness() float64 {
	if r.InitialContributors == 0 {
		return 0
	}
	return float64(r.InitialContributors-r.FinalContributors) / float64(r.InitialContributors)
}

// columns is the CSV header; consumers depend on this exact order.
var columns = []string{
	"seed", "failure_handling", "average_failure_time", "health_check_period",
	"communication_cost", "crypto_cost", "compute_cost",
	"tree_depth", "tree_fanout", "group_size",
	"total_work", "total_latency", "total_bandwidth", "completeness",
	"message_type", "emitter_address", "receiver_address",
	"departure_time", "arrival_time",
}

func (r *Recording) settingsColumns() []string {
	return []string{
		r.Settings.Seed,
		r.Settings.BuildingBlocks.FailureHandling.String(),
		strconv.FormatFloat(r.Settings.AverageFailureTime, 'g', -1, 64),
		strconv.FormatFloat(r.Settings.HealthCheckPeriod, 'g', -1, 64),
		strconv.FormatFloat(r.Settings.Costs.Comm, 'g', -1, 64),
		strconv.FormatFloat(r.Settings.Costs.Crypto, 'g', -1, 64),
		strconv.FormatFloat(r.Settings.Costs.Compute, 'g', -1, 64),
		strconv.Itoa(r.Settings.Tree.Depth),
		strconv.Itoa(r.Settings.Tree.Fanout),
		strconv.Itoa(r.Settings.Tree.GroupSize),
		strconv.FormatFloat(r.TotalWork, 'g', -1, 64),
		strconv.FormatFloat(r.TotalLatency, 'g', -1, 64),
		strconv.FormatFloat(r.TotalBandwidth, 'g', -1, 64),
		strconv.FormatFloat(r.Completeness(), 'g', -1, 64),
	}
}

// rows renders the CSV body: one row per recorded message in full-export
// mode, or a single summary row whose final five fields are the
// Stop/zero sentinel.
func (r *Recording) rows() [][]string {
	if !r.FullExport {
		return [][]string{append(r.settingsColumns(), "Stop", "0", "0", "0", "0")}
	}
	rows := make([][]string, 0, len(r.sentMessages))
	prefix := r.settingsColumns()
	for _, msg := range r.sentMessages {
		row := append(append([]string(nil), prefix...),
			msg.Type.String(),
			strconv.Itoa(msg.Emitter),
			strconv.Itoa(msg.Receiver),
			strconv.FormatFloat(msg.DepartureTime, 'g', -1, 64),
			strconv.FormatFloat(msg.ArrivalTime, 'g', -1, 64),
		)
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV writes the trace (full-export mode: one row per delivered
// message; summary mode: one sentinel row) to a timestamped file inside
// dir, creating dir if it doesn't exist. timestamp is injected by the
// caller rather than read from the clock here, keeping this package
// free of wall-clock reads.
func (r *Recording) WriteCSV(dir string, timestamp string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("trace-%s.csv", timestamp)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return "", err
	}
	for _, row := range r.rows() {
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return path, w.Error()
}
