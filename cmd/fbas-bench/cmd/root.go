package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/p2p-research-tools/fbas-reward-distributor/benchmark"
)

var (
	flagTopology             string
	flagMaxTopTier           int
	flagRuns                 int
	flagJobs                 int
	flagOut                  string
	flagUpdate               bool
	flagSeed                 uint64
	flagNoQuorumIntersection bool
	flagLevel                string

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fbas-bench",
	Short: "Measure runtime and approximation accuracy of the ranking engines on synthetic topologies",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagTopology, "topology", "t", string(benchmark.TopologyStellar),
		fmt.Sprintf("synthetic topology generator: %s or %s",
			benchmark.TopologySymmetric, benchmark.TopologyStellar))
	rootCmd.PersistentFlags().IntVarP(&flagMaxTopTier, "max-top-tier", "m", 0,
		"largest top-tier size to generate")
	_ = rootCmd.MarkPersistentFlagRequired("max-top-tier")
	rootCmd.PersistentFlags().IntVarP(&flagRuns, "runs", "r", 10,
		"number of measurement runs per size")
	rootCmd.PersistentFlags().IntVarP(&flagJobs, "jobs", "j", 1,
		"number of measurement tasks run in parallel")
	rootCmd.PersistentFlags().StringVarP(&flagOut, "out", "o", "",
		"output CSV file, stdout when omitted")
	rootCmd.PersistentFlags().BoolVarP(&flagUpdate, "update", "u", false,
		"keep rows already present in the output file and only compute the missing ones")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0,
		"base sampling seed for reproducible accuracy sweeps, drawn fresh when omitted")
	rootCmd.PersistentFlags().BoolVar(&flagNoQuorumIntersection, "no-quorum-intersection", false,
		"demote a quorum intersection violation from an error to a warning")
	rootCmd.PersistentFlags().StringVarP(&flagLevel, "loglevel", "l", "info",
		"level for logging output")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	viper.SetEnvPrefix("FBAS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(rootCmd.PersistentFlags())
}

func initLogger() {
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(strings.ToLower(viper.GetString("loglevel")))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	log = log.Level(lvl)
}

// benchConfig assembles the sweep configuration from the parsed flags. The
// seed is only forwarded when the flag was given.
func benchConfig() (benchmark.Config, error) {
	topology, err := benchmark.ParseTopology(viper.GetString("topology"))
	if err != nil {
		return benchmark.Config{}, err
	}
	cfg := benchmark.Config{
		Topology:              topology,
		MaxTopTierSize:        flagMaxTopTier,
		Runs:                  flagRuns,
		Jobs:                  viper.GetInt("jobs"),
		SkipIntersectionCheck: flagNoQuorumIntersection,
		ShowProgress:          true,
	}
	if rootCmd.PersistentFlags().Changed("seed") {
		seed := flagSeed
		cfg.Seed = &seed
	}
	return cfg, nil
}

// checkOutputClobber refuses to overwrite recorded results unless resuming.
func checkOutputClobber() error {
	if flagOut == "" || flagUpdate {
		return nil
	}
	if _, err := os.Stat(flagOut); err == nil {
		return fmt.Errorf("output file %s exists, resume with --update or pick another path", flagOut)
	}
	return nil
}

// writeCSV streams the results to the output file, or to stdout when no file
// was given.
func writeCSV(write func(io.Writer) error) error {
	if flagOut == "" {
		return write(os.Stdout)
	}
	file, err := os.Create(flagOut)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
