package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/p2p-research-tools/fbas-reward-distributor/benchmark"
)

var flagMaxExponent int

var accuracyCmd = &cobra.Command{
	Use:   "accuracy",
	Short: "Measure how fast the sampled power indices converge to the exact ones",
	Long: `Measure how fast the sampled power indices converge to the exact ones. For
every topology size and run, the exact indices are computed once and compared
against estimates at sample counts 10^1 up to 10^max-exponent.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := benchConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}
		cfg.MaxExponent = flagMaxExponent
		if err := checkOutputClobber(); err != nil {
			log.Fatal().Err(err).Msg("refusing to run")
		}
		existing, err := readExistingAccuracy()
		if err != nil {
			log.Fatal().Err(err).Msg("could not read existing results")
		}
		results, err := benchmark.RunAccuracy(log, cfg, existing)
		if err != nil {
			log.Fatal().Err(err).Msg("accuracy sweep failed")
		}
		err = writeCSV(func(w io.Writer) error {
			return benchmark.WriteAccuracyCSV(w, results)
		})
		if err != nil {
			log.Fatal().Err(err).Msg("could not write results")
		}
	},
}

func init() {
	rootCmd.AddCommand(accuracyCmd)

	accuracyCmd.Flags().IntVar(&flagMaxExponent, "max-exponent", 6,
		"largest sample count to test, as a power of ten")
}

// readExistingAccuracy loads previously recorded rows when resuming into an
// existing output file.
func readExistingAccuracy() ([]benchmark.AccuracyResult, error) {
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
	return benchmark.ReadAccuracyCSV(file)
}
