package main

import "github.com/p2p-research-tools/fbas-reward-distributor/cmd/fbas-dist/cmd"

func main() {
	cmd.Execute()
}
