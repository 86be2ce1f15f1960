package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/p2p-research-tools/fbas-reward-distributor/distributor"
)

var (
	flagAlg                  string
	flagSamples              uint64
	flagSeed                 uint64
	flagIgnoreInactive       bool
	flagNoQuorumIntersection bool
	flagPublicKeys           bool
	flagOutput               string
	flagJobs                 int
	flagLevel                string

	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fbas-dist",
	Short: "Rank the nodes of a federated byzantine agreement system and split rewards by influence",
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
	rootCmd.PersistentFlags().StringVarP(&flagAlg, "alg", "a", string(distributor.NodeRank),
		fmt.Sprintf("ranking algorithm: %s, %s or %s",
			distributor.NodeRank, distributor.PowerIndexEnum, distributor.PowerIndexApprox))
	rootCmd.PersistentFlags().Uint64VarP(&flagSamples, "samples", "s", 0,
		"number of sampled orderings, required for power-index-approx")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0,
		"sampling seed for power-index-approx, drawn fresh when omitted")
	rootCmd.PersistentFlags().BoolVarP(&flagIgnoreInactive, "ignore-inactive", "i", false,
		"drop nodes marked inactive in the input before any analysis")
	rootCmd.PersistentFlags().BoolVar(&flagNoQuorumIntersection, "no-quorum-intersection", false,
		"demote a quorum intersection violation from an error to a warning")
	rootCmd.PersistentFlags().BoolVarP(&flagPublicKeys, "pks", "p", false,
		"include public keys in the report")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", outputTable,
		"report format: table or json")
	rootCmd.PersistentFlags().IntVarP(&flagJobs, "jobs", "j", 0,
		"number of parallel workers, all CPUs when 0")
	rootCmd.PersistentFlags().StringVarP(&flagLevel, "loglevel", "l", "info",
		"level for logging output")

	cobra.OnInitialize(initConfig)
}

// initConfig lets environment variables such as FBAS_LOGLEVEL and FBAS_JOBS
// override flag defaults.
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

// runConfig assembles the distributor configuration from the parsed flags. The
// seed is only forwarded when the flag was given, so omitting it draws a fresh
// one.
func runConfig() (distributor.Config, error) {
	alg, err := distributor.ParseAlgorithm(viper.GetString("alg"))
	if err != nil {
		return distributor.Config{}, err
	}
	cfg := distributor.Config{
		Algorithm:             alg,
		Samples:               flagSamples,
		SkipIntersectionCheck: flagNoQuorumIntersection,
		IncludePublicKeys:     flagPublicKeys,
		Workers:               viper.GetInt("jobs"),
	}
	if rootCmd.PersistentFlags().Changed("seed") {
		seed := flagSeed
		cfg.Seed = &seed
	}
	return cfg, nil
}
