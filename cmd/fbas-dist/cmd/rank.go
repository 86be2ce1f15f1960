package cmd

import (
	"github.com/spf13/cobra"

	"github.com/p2p-research-tools/fbas-reward-distributor/distributor"
)

var rankCmd = &cobra.Command{
	Use:   "rank [nodes-path]",
	Short: "Compute an influence score for every node of the topology",
	Long: `Compute an influence score for every node of the topology, read from the given
JSON file or from stdin. Scores are reported in descending order, ties broken
by ascending node ID.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		system, err := loadFbas(args)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load topology")
		}
		cfg, err := runConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}
		ranking, err := distributor.Rank(log, system, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("ranking failed")
		}
		if err := renderRanking(ranking); err != nil {
			log.Fatal().Err(err).Msg("could not render report")
		}
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)
}
