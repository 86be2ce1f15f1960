package distributor

import (
	"math"
	"sort"

	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
)

// NodeScore is one row of a ranking report.
type NodeScore struct {
	ID        fbas.NodeID `json:"nodeId"`
	PublicKey string      `json:"publicKey,omitempty"`
	Score     float64     `json:"score"`
}

// NodeReward is one row of a distribution report.
type NodeReward struct {
	ID        fbas.NodeID `json:"nodeId"`
	PublicKey string      `json:"publicKey,omitempty"`
	Score     float64     `json:"score"`
	Reward    float64     `json:"reward"`
}

// scoreEntries assembles the ranking rows: raw score descending, ties broken
// by ascending node ID, then values rounded to three decimals for reporting.
func scoreEntries(f *fbas.Fbas, scores []float64, includeKeys bool) []NodeScore {
	entries := make([]NodeScore, len(scores))
	for i, score := range scores {
		entries[i] = NodeScore{ID: fbas.NodeID(i), Score: score}
		if includeKeys {
			entries[i].PublicKey = f.Node(fbas.NodeID(i)).PublicKey
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].ID < entries[j].ID
	})
	for i := range entries {
		entries[i].Score = roundReport(entries[i].Score)
	}
	return entries
}

// rewardEntries assembles the distribution rows, ordered like scoreEntries.
func rewardEntries(f *fbas.Fbas, scores, rewards []float64, includeKeys bool) []NodeReward {
	entries := make([]NodeReward, len(scores))
	for i, score := range scores {
		entries[i] = NodeReward{ID: fbas.NodeID(i), Score: score, Reward: rewards[i]}
		if includeKeys {
			entries[i].PublicKey = f.Node(fbas.NodeID(i)).PublicKey
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].ID < entries[j].ID
	})
	for i := range entries {
		entries[i].Score = roundReport(entries[i].Score)
		entries[i].Reward = roundReport(entries[i].Reward)
	}
	return entries
}

// roundReport rounds a report value to three decimal places. Raw score and
// reward vectors are never rounded.
func roundReport(v float64) float64 {
	return math.Round(v*1000) / 1000
}
