// Command dissec runs one discrete-event simulation of the hierarchical
// secure-aggregation protocol and writes its trace to a CSV file.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dedis/dissec/config"
	"github.com/dedis/dissec/log"
	"github.com/dedis/dissec/manager"
	uuid "github.com/satori/go.uuid"
)

var (
	seed               = "42"
	fanout             = 4
	depth              = 3
	groupSize          = 3
	failureHandling    = "full"
	averageFailureTime = 10000.0
	healthCheckPeriod  = 500.0
	cryptoCost         = 10.0
	commCost           = 20.0
	computeCost        = 5.0
	configFile         = ""
	outputDir          = "outputs"
	fullExport         = false
	debugLevel         = log.DebugVisible()
)

func init() {
	flag.StringVar(&seed, "seed", seed, "seed string for the deterministic PRNG")
	flag.IntVar(&fanout, "fanout", fanout, "tree fanout")
	flag.IntVar(&depth, "depth", depth, "tree depth")
	flag.IntVar(&groupSize, "group-size", groupSize, "group size")
	flag.StringVar(&failureHandling, "failure-handling", failureHandling, "full, local or replacement")
	flag.Float64Var(&averageFailureTime, "average-failure-time", averageFailureTime, "mean of the exponential lifetime distribution")
	flag.Float64Var(&healthCheckPeriod, "health-check-period", healthCheckPeriod, "period between ScheduleHealthCheck timeouts")
	flag.Float64Var(&cryptoCost, "crypto-cost", cryptoCost, "time cost of one cryptographic operation")
	flag.Float64Var(&commCost, "comm-cost", commCost, "time cost of one message hop")
	flag.Float64Var(&computeCost, "compute-cost", computeCost, "time cost of one compute step")
	flag.StringVar(&configFile, "config", configFile, "TOML settings file (overrides the flags above if set)")
	flag.StringVar(&outputDir, "out", outputDir, "directory the CSV trace is written to")
	flag.BoolVar(&fullExport, "full-export", fullExport, "write one CSV row per delivered message instead of a single summary row")
	flag.IntVar(&debugLevel, "debug", debugLevel, "debugging level, 0 is silent, 5 is flood")
}

func main() {
	flag.Parse()
	log.SetDebugVisible(debugLevel)

	settings, err := resolveSettings()
	log.ErrFatal(err, "invalid configuration")

	runID := uuid.NewV5(uuid.NamespaceURL, settings.Seed)
	log.Lvl1("dissec: starting run", runID, "seed", settings.Seed, "failure handling", settings.BuildingBlocks.FailureHandling)

	m, err := manager.New(settings, fullExport)
	log.ErrFatal(err, "could not create manager")

	m.Setup()
	log.ErrFatal(m.Run(), "simulation failed")

	timestamp := time.Now().UTC().Format("20060102-150405")
	path, err := m.Recording.WriteCSV(outputDir, timestamp)
	if err != nil {
		log.Error("could not write trace:", err)
		os.Exit(1)
	}

	log.Lvl1("dissec: wrote trace to", path)
	fmt.Printf("total_latency=%.2f total_work=%.2f total_bandwidth=%.0f completeness=%.4f\n",
		m.Recording.TotalLatency, m.Recording.TotalWork, m.Recording.TotalBandwidth, m.Recording.Completeness())
}

func resolveSettings() (config.RunSettings, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}

	mode, err := config.ParseFailureHandling(failureHandling)
	if err != nil {
		return config.RunSettings{}, err
	}

	settings := config.RunSettings{
		Seed: seed,
		Tree: config.Tree{
			Fanout:    fanout,
			Depth:     depth,
			GroupSize: groupSize,
		},
		BuildingBlocks:     config.BuildingBlocks{FailureHandling: mode},
		AverageFailureTime: averageFailureTime,
		HealthCheckPeriod:  healthCheckPeriod,
		Costs: config.Costs{
			Crypto:  cryptoCost,
			Comm:    commCost,
			Compute: computeCost,
		},
	}
	return settings, settings.Validate()
}
