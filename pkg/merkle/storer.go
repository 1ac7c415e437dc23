package merkle

import "context"

// Storer persists and traverses journal nodes. Put is idempotent: identical
// content with an identical parent hashes the same and is stored once.
type Storer interface {
	// Put stores a node. If the node already exists (by hash), this is a no-op.
	Put(ctx context.Context, node *Node) error

	// Get retrieves a node by its hash. Returns ErrNotFound if the node doesn't exist.
	Get(ctx context.Context, hash string) (*Node, error)

	// Has checks if a node exists by its hash.
	Has(ctx context.Context, hash string) (bool, error)

	// GetByParent retrieves all nodes that have the given parent hash.
	// Pass nil to get root nodes (nodes with no parent).
	GetByParent(ctx context.Context, parentHash *string) ([]*Node, error)

	// List returns all nodes in the store.
	List(ctx context.Context) ([]*Node, error)

	// Roots returns all root nodes (nodes with no parent).
	Roots(ctx context.Context) ([]*Node, error)

	// Leaves returns all leaf nodes (nodes with no children).
	Leaves(ctx context.Context) ([]*Node, error)

	// Ancestry returns the path from a node back to its root (node first, root last).
	Ancestry(ctx context.Context, hash string) ([]*Node, error)

	// Depth returns the depth of a node (0 for roots).
	Depth(ctx context.Context, hash string) (int, error)

	// Close closes the store and releases any resources.
	Close() error
}

// ErrNotFound is returned when a node doesn't exist in the store.
type ErrNotFound struct {
	Hash string
}

func (e ErrNotFound) Error() string {
	if e.Hash == "" {
		return "node not found"
	}

	return "node not found: " + e.Hash
}

// ancestry walks parent links with get until a root is reached.
func ancestry(ctx context.Context, get func(context.Context, string) (*Node, error), hash string) ([]*Node, error) {
	var path []*Node
	for {
		node, err := get(ctx, hash)
		if err != nil {
			return nil, err
		}
		path = append(path, node)

		if node.ParentHash == nil {
			return path, nil
		}
		hash = *node.ParentHash
	}
}
