// Package storage provides the embedded graph-kernel interface and its
// implementations (in-memory and Badger-backed) for the provenance graph
// store.
//
// The kernel is intentionally generic: it knows about labeled nodes and
// typed directed edges with property maps, not about provenance semantics.
// Domain concerns (PLUSObject, PLUSActor, PLUSEdge, privilege classes) are
// layered on top by the schema package and the object factory; this package
// is the only one permitted to touch persistent state.
package storage

import (
	"context"
	"errors"
)

// Common errors returned by Engine implementations.
var (
	ErrNotFound         = errors.New("storage: not found")
	ErrAlreadyExists    = errors.New("storage: already exists")
	ErrInvalidID        = errors.New("storage: invalid id")
	ErrInvalidData      = errors.New("storage: invalid data")
	ErrInvalidEdge      = errors.New("storage: invalid edge: start or end node not found")
	ErrStorageClosed    = errors.New("storage: closed")
	ErrIterationStopped = errors.New("storage: iteration stopped")
)

// NodeID uniquely identifies a node within an Engine.
type NodeID string

// EdgeID uniquely identifies a directed relationship within an Engine.
type EdgeID string

// Node is a labeled vertex in the property graph: a set of labels
// (e.g. "Provenance", "Actor") plus an arbitrary property map.
type Node struct {
	ID         NodeID
	Labels     []string
	Properties map[string]any
}

// HasLabel reports whether the node carries the given label.
func (n *Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Edge is a directed, typed relationship between two nodes, carrying its
// own property map (e.g. "workflow", "npeid", "created").
type Edge struct {
	ID         EdgeID
	StartNode  NodeID
	EndNode    NodeID
	Type       string
	Properties map[string]any
}

// Engine is the graph-kernel interface. Implementations must be safe for
// concurrent use, enforce label/property uniqueness constraints declared
// through GetSchema, and provide read-your-writes semantics within the
// scope of a single Transaction.
type Engine interface {
	// Node operations
	CreateNode(node *Node) error
	GetNode(id NodeID) (*Node, error)
	UpdateNode(node *Node) error
	DeleteNode(id NodeID) error

	// Edge operations
	CreateEdge(edge *Edge) error
	GetEdge(id EdgeID) (*Edge, error)
	DeleteEdge(id EdgeID) error

	// Lookups
	GetNodeByProperty(label, property string, value any) (*Node, error)
	GetNodesByLabel(label string) ([]*Node, error)
	GetOutgoingEdges(nodeID NodeID) ([]*Edge, error)
	GetIncomingEdges(nodeID NodeID) ([]*Edge, error)
	GetEdgesByType(edgeType string) ([]*Edge, error)
	GetEdgeByProperty(property string, value any) ([]*Edge, error)
	FindEdge(startID, endID NodeID, edgeType string, workflow *string) (*Edge, error)

	AllNodes() ([]*Node, error)
	AllEdges() ([]*Edge, error)

	// Schema operations
	GetSchema() *SchemaManager

	// Bulk operations (not used by Report/StoreCollection, which store
	// element by element).
	BulkCreateNodes(nodes []*Node) error
	BulkCreateEdges(edges []*Edge) error

	// Transactions
	Begin() (*Transaction, error)

	Close() error

	NodeCount() (int64, error)
	EdgeCount() (int64, error)
}

// StreamingEngine extends Engine with streaming iteration, for engines
// whose full node/edge sets should not be loaded into memory at once
// (StreamNodesWithFallback/StreamEdgesWithFallback fall back to
// AllNodes/AllEdges when an Engine does not implement this).
type StreamingEngine interface {
	Engine

	StreamNodes(ctx context.Context, fn func(node *Node) error) error
	StreamEdges(ctx context.Context, fn func(edge *Edge) error) error
}

// NodeVisitor is called once per node during a streamed iteration.
type NodeVisitor func(node *Node) error

// EdgeVisitor is called once per edge during a streamed iteration.
type EdgeVisitor func(edge *Edge) error

// StreamNodesWithFallback iterates every node in engine, preferring the
// StreamingEngine interface and falling back to AllNodes otherwise.
func StreamNodesWithFallback(ctx context.Context, engine Engine, fn NodeVisitor) error {
	if streamer, ok := engine.(StreamingEngine); ok {
		return streamer.StreamNodes(ctx, fn)
	}

	nodes, err := engine.AllNodes()
	if err != nil {
		return err
	}
	for _, node := range nodes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := fn(node); err != nil {
			if errors.Is(err, ErrIterationStopped) {
				return nil
			}
			return err
		}
	}
	return nil
}

// StreamEdgesWithFallback iterates every edge in engine, preferring the
// StreamingEngine interface and falling back to AllEdges otherwise.
func StreamEdgesWithFallback(ctx context.Context, engine Engine, fn EdgeVisitor) error {
	if streamer, ok := engine.(StreamingEngine); ok {
		return streamer.StreamEdges(ctx, fn)
	}

	edges, err := engine.AllEdges()
	if err != nil {
		return err
	}
	for _, edge := range edges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := fn(edge); err != nil {
			if errors.Is(err, ErrIterationStopped) {
				return nil
			}
			return err
		}
	}
	return nil
}

// CollectLabels returns the set of distinct labels present in engine.
func CollectLabels(ctx context.Context, engine Engine) ([]string, error) {
	set := make(map[string]struct{})
	err := StreamNodesWithFallback(ctx, engine, func(node *Node) error {
		for _, l := range node.Labels {
			set[l] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(set))
	for l := range set {
		labels = append(labels, l)
	}
	return labels, nil
}
