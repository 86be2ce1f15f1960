package main

import "github.com/p2p-research-tools/fbas-reward-distributor/cmd/fbas-bench/cmd"

func main() {
	cmd.Execute()
}
