// Copyright (c) 2023 Colin McRae

package main

import (
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/finlattice/lllport/lllops"
	"github.com/finlattice/lllport/portfolio"
	"github.com/finlattice/lllport/rational"
)

// runConfig holds the reduction parameters loaded from the config file.
type runConfig struct {
	Delta    string `yaml:"delta"` // rational, e.g. "3/4"
	Scale    int64  `yaml:"scale"`
	PadSeed  int64  `yaml:"padSeed"`
	MaxSteps int    `yaml:"maxSteps"`
}

// featureFile is the on-disk form of the feature matrix. Instrument
// order in the file is the column order of the transform.
type featureFile struct {
	Instruments []instrument `yaml:"instruments"`
}

type instrument struct {
	ID   string    `yaml:"id"`
	Risk []float64 `yaml:"risk"`
}

func runReduce(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	featuresPath, err := cmd.Flags().GetString("features")
	if err != nil {
		return err
	}

	config, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", configPath, err)
	}
	ids, features, err := loadFeatures(featuresPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", featuresPath, err)
	}
	log.Info().
		Int("instruments", len(ids)).
		Str("delta", config.Delta).
		Int64("scale", config.Scale).
		Int64("padSeed", config.PadSeed).
		Msg("starting reduction")

	delta, err := parseRational(config.Delta)
	if err != nil {
		return fmt.Errorf("parsing delta %q: %w", config.Delta, err)
	}
	reducer, err := lllops.NewReducer(delta)
	if err != nil {
		return err
	}
	reducer.SetMaxSteps(config.MaxSteps)

	basis, err := portfolio.Embed(features, config.Scale, config.PadSeed)
	if err != nil {
		return err
	}
	log.Info().Int("dimension", basis.NumRows()).Msg("embedded feature matrix")

	_, transform, err := reducer.Reduce(basis)
	if err != nil {
		return err
	}
	log.Info().Msg("reduction complete")

	combinations, err := portfolio.Decode(transform, ids)
	if err != nil {
		return err
	}

	type rankedCombination struct {
		combination portfolio.SparseCombination
		norm        float64
	}
	ranked := make([]rankedCombination, 0, len(combinations))
	for _, combination := range combinations {
		norm, err := portfolio.RiskNorm(combination, features, ids)
		if err != nil {
			return err
		}
		ranked = append(ranked, rankedCombination{combination: combination, norm: norm})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].norm < ranked[j].norm })

	for rank, entry := range ranked {
		fmt.Printf("%3d  risk %8.5f  %s\n", rank+1, entry.norm, formatCombination(entry.combination, ids))
	}
	return nil
}

func loadConfig(path string) (*runConfig, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := &runConfig{Delta: "3/4", Scale: 1000}
	if err = yaml.Unmarshal(contents, config); err != nil {
		return nil, err
	}
	return config, nil
}

func loadFeatures(path string) ([]string, [][]float64, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var file featureFile
	if err = yaml.Unmarshal(contents, &file); err != nil {
		return nil, nil, err
	}
	ids := make([]string, len(file.Instruments))
	features := make([][]float64, len(file.Instruments))
	for i, entry := range file.Instruments {
		ids[i] = entry.ID
		features[i] = entry.Risk
	}
	return ids, features, nil
}

// parseRational parses "num/den" or a bare integer into a Rational.
func parseRational(s string) (*rational.Rational, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	num, ok := new(big.Int).SetString(strings.TrimSpace(parts[0]), 10)
	if !ok {
		return nil, fmt.Errorf("cannot parse numerator %q", parts[0])
	}
	if len(parts) == 1 {
		return rational.NewFromInt(num), nil
	}
	den, ok := new(big.Int).SetString(strings.TrimSpace(parts[1]), 10)
	if !ok {
		return nil, fmt.Errorf("cannot parse denominator %q", parts[1])
	}
	return rational.NewFromQuotient(num, den)
}

// formatCombination renders coefficients in instrument order, e.g.
// "+1 AAPL -2 MSFT".
func formatCombination(combination portfolio.SparseCombination, ids []string) string {
	var sb strings.Builder
	for _, id := range ids {
		coefficient, ok := combination[id]
		if !ok {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("%+d %s", coefficient, id))
	}
	return sb.String()
}
