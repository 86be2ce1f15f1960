package fbas

// NodeID is the dense integer identity of a node, assigned by input order at
// load time. All engine-internal references use node IDs; public keys are kept
// for display only.
type NodeID int

// Node is one participant of the federated Byzantine agreement system,
// together with the quorum set it declares over its peers.
type Node struct {
	ID        NodeID
	PublicKey string
	Active    bool
	QuorumSet QuorumSet
}
