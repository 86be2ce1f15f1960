package cmd

import (
	"github.com/spf13/cobra"

	"github.com/p2p-research-tools/fbas-reward-distributor/distributor"
)

var flagReward float64

var distributeCmd = &cobra.Command{
	Use:   "distribute [nodes-path]",
	Short: "Split a total reward between the nodes in proportion to their influence",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		system, err := loadFbas(args)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load topology")
		}
		cfg, err := runConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}
		cfg.TotalReward = flagReward
		dist, err := distributor.Distribute(log, system, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("reward distribution failed")
		}
		if err := renderDistribution(dist); err != nil {
			log.Fatal().Err(err).Msg("could not render report")
		}
	},
}

func init() {
	rootCmd.AddCommand(distributeCmd)

	distributeCmd.Flags().Float64VarP(&flagReward, "reward", "r", 1,
		"total reward value to split between the nodes")
}
