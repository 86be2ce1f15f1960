package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/p2p-research-tools/fbas-reward-distributor/benchmark"
)

var performanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "Time the exact power-index ranking across a range of synthetic topology sizes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := benchConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}
		if err := checkOutputClobber(); err != nil {
			log.Fatal().Err(err).Msg("refusing to run")
		}
		existing, err := readExistingPerf()
		if err != nil {
			log.Fatal().Err(err).Msg("could not read existing results")
		}
		results, err := benchmark.RunPerformance(log, cfg, existing)
		if err != nil {
			log.Fatal().Err(err).Msg("performance sweep failed")
		}
		err = writeCSV(func(w io.Writer) error {
			return benchmark.WritePerfCSV(w, results)
		})
		if err != nil {
			log.Fatal().Err(err).Msg("could not write results")
		}
	},
}

func init() {
	rootCmd.AddCommand(performanceCmd)
}

// readExistingPerf loads previously recorded rows when resuming into an
// existing output file.
func readExistingPerf() ([]benchmark.PerfResult, error) {
	if !flagUpdate || flagOut == "" {
		return nil, nil
	}
	file, err := os.Open(flagOut)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", flagOut, err)
	}
	defer file.Close()
	return benchmark.ReadPerfCSV(file)
}
