// Package merkle is a content-addressed journal of flow runs. Every flow input
// and output is a node; an output links to its input and a chat turn links to
// the previous turn, so a node hash names a whole conversation up to that point.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Node types.
const (
	TypeInput  = "input"
	TypeOutput = "output"
)

// Bucket is the hashable content of a node.
type Bucket struct {
	// Type is TypeInput or TypeOutput.
	Type string `json:"type"`

	// Flow is the flow name that produced the node.
	Flow string `json:"flow"`

	// Role is "user" for inputs and "assistant" for outputs.
	Role string `json:"role"`

	// Text is the human readable content (question, answer, itinerary).
	Text string `json:"text"`

	// Payload is the JSON encoded flow input or output.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Model names the model or backend that answered; empty for inputs.
	Model string `json:"model,omitempty"`
}

// Node represents a single content-addressed node in the journal DAG
type Node struct {
	// Hash is the content-addressed identifier (SHA-256, hex-encoded)
	Hash string `json:"hash"`

	// ParentHash links to the previous node hash.
	// This will be nil for root nodes.
	ParentHash *string `json:"parent_hash"`

	Bucket Bucket `json:"bucket"`
}

type hashInput struct {
	Bucket Bucket `json:"bucket"`
	Parent string `json:"parent,omitempty"`
}

// NewNode creates a new node with the computed hash for the provided content
func NewNode(bucket Bucket, parent *Node) *Node {
	n := &Node{
		Bucket: bucket,
	}

	if parent != nil {
		parentHash := parent.Hash
		n.ParentHash = &parentHash
	}

	n.Hash = n.computeHash()
	return n
}

// Valid reports whether Hash matches the node's content and parent link.
func (n *Node) Valid() bool {
	return n.Hash == n.computeHash()
}

// computeHash calculates the content-addressed hash for a node
func (n *Node) computeHash() string {
	i := hashInput{
		Bucket: n.Bucket,
	}

	if n.ParentHash != nil {
		i.Parent = *n.ParentHash
	}

	// Struct field order makes the encoding deterministic
	data, err := json.Marshal(i)
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
