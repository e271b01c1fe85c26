// Copyright (c) 2023 Colin McRae

package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "lllport"
	version = "v0.1.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Low-cardinality portfolio construction via LLL lattice reduction",
		Version: version,
		Long: `lllport embeds a per-instrument risk feature matrix into an integer
lattice, LLL-reduces it, and reports the sparse integer instrument
combinations the reduction finds, ordered by risk norm.`,
	}

	reduceCmd := &cobra.Command{
		Use:   "reduce",
		Short: "Embed, reduce and decode a feature matrix",
		Long: `Load run parameters and a feature matrix, embed the features into a
square integer basis, LLL-reduce it, and print every decoded combination
with its risk norm, smallest risk first.`,
		RunE: runReduce,
	}
	reduceCmd.Flags().String("config", "config.yaml", "Run parameters (delta, scale, padSeed, maxSteps)")
	reduceCmd.Flags().String("features", "features.yaml", "Instrument ids and risk vectors")
	rootCmd.AddCommand(reduceCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
