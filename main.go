package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"

	"github.com/forklab/propsim/config"
	"github.com/forklab/propsim/simulation"
)

func main() {
	var (
		periods   = flag.Int("periods", 10000, "number of 600-second block periods to simulate")
		seed      = flag.Int64("seed", 1, "seed for the run's random source")
		topology  = flag.String("topology", "", "network description file (default: built-in three-miner scenario)")
		trace     = flag.Int("trace", 0, "retain the most recent N simulation events and dump them after the run")
		logLevel  = flag.String("log-level", "info", "log level: debug, info, warn, error")
		logFormat = flag.String("log-format", "text", "log format: text or json")
		logFile   = flag.String("log-file", "", "write logs to this file with rotation instead of stderr")
	)
	flag.Parse()

	logger := newLogger(*logLevel, *logFormat, *logFile)

	cfg := config.Default()
	if *topology != "" {
		parsed, err := config.LoadTopology(*topology)
		if err != nil {
			logger.WithError(err).Fatal("failed to load topology")
		}
		cfg = parsed
	}
	cfg.Periods = *periods
	cfg.Seed = *seed

	sim, err := simulation.NewSimulation(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to build simulation")
	}

	var recorder *simulation.Recorder
	if *trace > 0 {
		recorder, err = simulation.NewRecorder(*trace)
		if err != nil {
			logger.WithError(err).Fatal("failed to build recorder")
		}
		recorder.Start(sim.Feed())
	}

	sim.Run()

	if recorder != nil {
		recorder.Stop()
		for _, ev := range recorder.Recent() {
			fmt.Printf("%-10s miner=%s height=%d time=%d hash=%s\n",
				ev.Kind, ev.Miner, ev.Height, ev.Time, ev.Hash)
		}
	}

	printReport(sim.Report())
}

func newLogger(level, format, file string) *logrus.Logger {
	logger := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad log level %q: %v\n", level, err)
		os.Exit(1)
	}
	logger.SetLevel(lvl)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if file != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
		})
	}
	return logger
}

func printReport(reports []simulation.MinerReport) {
	for i, r := range reports {
		fmt.Printf("\nMiner %d - %s\n", i, r.Name)
		fmt.Printf("  Hashrate proportion: %.1f%%\n", r.Hashrate*100)
		fmt.Printf("  Current block height: %d\n", r.TipHeight)
		fmt.Printf("  Total known blocks: %d\n", r.KnownBlocks)
		fmt.Printf("  Blocks by this miner in main chain: %d\n", r.BlocksInChain)
		fmt.Printf("  Blocks found by this miner: %d\n", r.BlocksMined)
		fmt.Printf("  Percentage of main chain: %.4f%%\n", r.ChainShare*100)
		fmt.Printf("  Stale Blocks: %d\n", r.StaleBlocks)
		fmt.Printf("  Stale rate: %.4f\n", r.StaleRate)
	}
}
