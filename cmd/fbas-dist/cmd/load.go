package cmd

import (
	"fmt"
	"os"

	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
)

// loadFbas parses the topology from the given path, or from stdin when no path
// is given, and applies the inactive-node filter when requested.
func loadFbas(args []string) (*fbas.Fbas, error) {
	in := os.Stdin
	source := "stdin"
	if len(args) > 0 {
		file, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("could not open topology file: %w", err)
		}
		defer file.Close()
		in = file
		source = args[0]
	}

	system, err := fbas.ParseNodes(in)
	if err != nil {
		return nil, fmt.Errorf("could not parse topology from %s: %w", source, err)
	}
	if flagIgnoreInactive {
		before := system.NumNodes()
		system = system.FilterActive()
		log.Debug().
			Int("before", before).
			Int("after", system.NumNodes()).
			Msg("filtered inactive nodes")
	}
	log.Info().Str("source", source).Int("nodes", system.NumNodes()).Msg("topology loaded")
	return system, nil
}
