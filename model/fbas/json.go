package fbas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
)

// The JSON shape follows the stellarbeat node export: an array of node
// records, each carrying a public key, an activity flag and a recursive
// quorum set. Validators may reference peers by public key or by integer
// position in the array.

type nodeRecord struct {
	PublicKey string           `json:"publicKey"`
	Active    *bool            `json:"active,omitempty"`
	QuorumSet *quorumSetRecord `json:"quorumSet"`
}

type quorumSetRecord struct {
	Threshold       int               `json:"threshold"`
	Validators      []validatorRef    `json:"validators"`
	InnerQuorumSets []quorumSetRecord `json:"innerQuorumSets,omitempty"`
}

// validatorRef is either a public-key string or an integer node reference.
type validatorRef struct {
	key   string
	index int
	byKey bool
}

func (v *validatorRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		v.byKey = true
		return json.Unmarshal(data, &v.key)
	}
	return json.Unmarshal(data, &v.index)
}

func (v validatorRef) MarshalJSON() ([]byte, error) {
	if v.byKey {
		return json.Marshal(v.key)
	}
	return json.Marshal(v.index)
}

// ParseNodes reads a stellarbeat-style JSON node array and builds the
// validated Fbas. Unknown fields in the records are ignored, so raw network
// crawler exports can be fed in directly.
func ParseNodes(r io.Reader) (*Fbas, error) {
	var records []nodeRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("could not decode node records: %w", err)
	}

	keyToID := make(map[string]NodeID, len(records))
	for i, rec := range records {
		if rec.PublicKey == "" {
			continue
		}
		if _, exists := keyToID[rec.PublicKey]; exists {
			return nil, fmt.Errorf("duplicate public key %q at node %d", rec.PublicKey, i)
		}
		keyToID[rec.PublicKey] = NodeID(i)
	}

	var merr *multierror.Error
	nodes := make([]Node, len(records))
	for i, rec := range records {
		node := Node{
			ID:        NodeID(i),
			PublicKey: rec.PublicKey,
			Active:    rec.Active == nil || *rec.Active,
		}
		if rec.QuorumSet != nil {
			qs, err := rec.QuorumSet.resolve(keyToID)
			if err != nil {
				merr = multierror.Append(merr, InvalidTopologyError{
					NodeID:    NodeID(i),
					PublicKey: rec.PublicKey,
					Err:       err,
				})
				continue
			}
			node.QuorumSet = qs
		}
		nodes[i] = node
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}

	return New(nodes)
}

// NewFromJSON builds the validated Fbas from raw JSON bytes.
func NewFromJSON(data []byte) (*Fbas, error) {
	return ParseNodes(bytes.NewReader(data))
}

// resolve converts the record into a QuorumSet, mapping public-key references
// through the node table.
func (r *quorumSetRecord) resolve(keyToID map[string]NodeID) (QuorumSet, error) {
	qs := QuorumSet{Threshold: r.Threshold}
	for _, ref := range r.Validators {
		if ref.byKey {
			id, ok := keyToID[ref.key]
			if !ok {
				return QuorumSet{}, fmt.Errorf("unknown validator %q", ref.key)
			}
			qs.Validators = append(qs.Validators, id)
			continue
		}
		qs.Validators = append(qs.Validators, NodeID(ref.index))
	}
	for i := range r.InnerQuorumSets {
		inner, err := r.InnerQuorumSets[i].resolve(keyToID)
		if err != nil {
			return QuorumSet{}, fmt.Errorf("inner quorum set %d: %w", i, err)
		}
		qs.InnerSets = append(qs.InnerSets, inner)
	}
	return qs, nil
}

// MarshalJSON emits the node table in the same stellarbeat-style shape that
// ParseNodes accepts. References to nodes with a public key are emitted as
// key strings, all others as integer references.
func (f *Fbas) MarshalJSON() ([]byte, error) {
	records := make([]nodeRecord, len(f.nodes))
	for i := range f.nodes {
		active := f.nodes[i].Active
		qs := f.encodeQuorumSet(&f.nodes[i].QuorumSet)
		records[i] = nodeRecord{
			PublicKey: f.nodes[i].PublicKey,
			Active:    &active,
			QuorumSet: &qs,
		}
	}
	return json.Marshal(records)
}

func (f *Fbas) encodeQuorumSet(qs *QuorumSet) quorumSetRecord {
	rec := quorumSetRecord{Threshold: qs.Threshold}
	for _, id := range qs.Validators {
		if key := f.nodes[id].PublicKey; key != "" {
			rec.Validators = append(rec.Validators, validatorRef{key: key, byKey: true})
			continue
		}
		rec.Validators = append(rec.Validators, validatorRef{index: int(id)})
	}
	for i := range qs.InnerSets {
		rec.InnerQuorumSets = append(rec.InnerQuorumSets, f.encodeQuorumSet(&qs.InnerSets[i]))
	}
	return rec
}
