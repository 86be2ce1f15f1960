package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/p2p-research-tools/fbas-reward-distributor/distributor"
	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// renderRanking writes the score report to stdout in the selected format.
func renderRanking(ranking *distributor.Ranking) error {
	switch flagOutput {
	case outputJSON:
		return renderJSON(ranking.Entries)
	case outputTable:
		table := newTable("score")
		for _, e := range ranking.Entries {
			appendRow(table, e.ID, e.PublicKey, e.Score)
		}
		table.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format %q (supported: %s, %s)",
			flagOutput, outputTable, outputJSON)
	}
}

// renderDistribution writes the score and reward report to stdout.
func renderDistribution(dist *distributor.Distribution) error {
	switch flagOutput {
	case outputJSON:
		return renderJSON(dist.Entries)
	case outputTable:
		table := newTable("score", "reward")
		for _, e := range dist.Entries {
			appendRow(table, e.ID, e.PublicKey, e.Score, e.Reward)
		}
		table.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format %q (supported: %s, %s)",
			flagOutput, outputTable, outputJSON)
	}
}

func renderJSON(entries interface{}) error {
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode report: %w", err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}

func newTable(valueColumns ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	headers := []string{"node"}
	if flagPublicKeys {
		headers = append(headers, "public key")
	}
	table.SetHeader(append(headers, valueColumns...))
	return table
}

func appendRow(table *tablewriter.Table, id fbas.NodeID, publicKey string, values ...float64) {
	row := []string{strconv.Itoa(int(id))}
	if flagPublicKeys {
		row = append(row, publicKey)
	}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 3, 64))
	}
	table.Append(row)
}
