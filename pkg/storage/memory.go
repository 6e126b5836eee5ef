package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryEngine is a thread-safe, in-process graph storage implementation.
// It is the default substrate for tests and for small stores where
// durability does not matter; BadgerEngine is the persistent counterpart.
//
// All public methods are safe for concurrent use. Returned nodes/edges are
// deep-copied on the way out so callers cannot mutate engine-owned state.
type MemoryEngine struct {
	mu    sync.RWMutex
	nodes map[NodeID]*Node
	edges map[EdgeID]*Edge

	nodesByLabel    map[string]map[NodeID]struct{}
	outgoingEdges   map[NodeID]map[EdgeID]struct{}
	incomingEdges   map[NodeID]map[EdgeID]struct{}
	edgesByType     map[string]map[EdgeID]struct{}
	edgesByProperty map[string]map[EdgeID]struct{} // "prop:value" -> edge ids

	schema *SchemaManager
	closed bool
}

// NewMemoryEngine creates an empty in-memory storage engine ready for
// immediate concurrent use.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{
		nodes:           make(map[NodeID]*Node),
		edges:           make(map[EdgeID]*Edge),
		nodesByLabel:    make(map[string]map[NodeID]struct{}),
		outgoingEdges:   make(map[NodeID]map[EdgeID]struct{}),
		incomingEdges:   make(map[NodeID]map[EdgeID]struct{}),
		edgesByType:     make(map[string]map[EdgeID]struct{}),
		edgesByProperty: make(map[string]map[EdgeID]struct{}),
		schema:          NewSchemaManager(),
	}
}

func copyNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	props := make(map[string]any, len(n.Properties))
	for k, v := range n.Properties {
		props[k] = v
	}
	labels := make([]string, len(n.Labels))
	copy(labels, n.Labels)
	return &Node{ID: n.ID, Labels: labels, Properties: props}
}

func copyEdge(e *Edge) *Edge {
	if e == nil {
		return nil
	}
	props := make(map[string]any, len(e.Properties))
	for k, v := range e.Properties {
		props[k] = v
	}
	return &Edge{ID: e.ID, StartNode: e.StartNode, EndNode: e.EndNode, Type: e.Type, Properties: props}
}

// CreateNode inserts node, enforcing any unique constraints declared on its
// labels. Re-inserting an existing ID returns ErrAlreadyExists so callers
// (graphstore.StoreObject) can treat it as idempotent, per invariant 1.
func (m *MemoryEngine) CreateNode(node *Node) error {
	if node == nil || node.ID == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageClosed
	}
	if _, exists := m.nodes[node.ID]; exists {
		return ErrAlreadyExists
	}
	for _, label := range node.Labels {
		for prop, val := range node.Properties {
			if err := m.schema.ValidateUnique(label, prop, val, string(node.ID)); err != nil {
				return err
			}
		}
	}

	stored := copyNode(node)
	m.nodes[node.ID] = stored
	for _, label := range node.Labels {
		m.indexLabel(label, node.ID)
		for prop, val := range node.Properties {
			m.schema.RecordUnique(label, prop, val, node.ID)
		}
	}
	return nil
}

func (m *MemoryEngine) indexLabel(label string, id NodeID) {
	if m.nodesByLabel[label] == nil {
		m.nodesByLabel[label] = make(map[NodeID]struct{})
	}
	m.nodesByLabel[label][id] = struct{}{}
}

// GetNode returns a copy of the node with the given id, or ErrNotFound.
func (m *MemoryEngine) GetNode(id NodeID) (*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyNode(n), nil
}

// UpdateNode replaces the stored node's properties in place. The core API
// has no partial-update operation (§3 Lifecycle); callers re-store the
// whole node.
func (m *MemoryEngine) UpdateNode(node *Node) error {
	if node == nil || node.ID == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.nodes[node.ID]
	if !ok {
		return ErrNotFound
	}
	for _, label := range old.Labels {
		delete(m.nodesByLabel[label], node.ID)
		for prop, val := range old.Properties {
			m.schema.ForgetUnique(label, prop, val)
		}
	}
	for _, label := range node.Labels {
		for prop, val := range node.Properties {
			if err := m.schema.ValidateUnique(label, prop, val, string(node.ID)); err != nil {
				return err
			}
		}
	}
	m.nodes[node.ID] = copyNode(node)
	for _, label := range node.Labels {
		m.indexLabel(label, node.ID)
		for prop, val := range node.Properties {
			m.schema.RecordUnique(label, prop, val, node.ID)
		}
	}
	return nil
}

// DeleteNode removes the node, its label index entries, and any uniqueness
// claims it held. Callers must ensure incident edges are already gone
// (graphstore.DeleteObject enforces cascade semantics); DeleteNode itself does not
// touch edges.
func (m *MemoryEngine) DeleteNode(id NodeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return ErrNotFound
	}
	for _, label := range n.Labels {
		delete(m.nodesByLabel[label], id)
		for prop, val := range n.Properties {
			m.schema.ForgetUnique(label, prop, val)
		}
	}
	delete(m.nodes, id)
	return nil
}

// CreateEdge inserts a directed edge after verifying both endpoints exist
// (invariant 2 / ErrInvalidEdge otherwise).
func (m *MemoryEngine) CreateEdge(edge *Edge) error {
	if edge == nil || edge.ID == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[edge.StartNode]; !ok {
		return ErrInvalidEdge
	}
	if _, ok := m.nodes[edge.EndNode]; !ok {
		return ErrInvalidEdge
	}
	if _, exists := m.edges[edge.ID]; exists {
		return ErrAlreadyExists
	}

	stored := copyEdge(edge)
	m.edges[edge.ID] = stored

	if m.outgoingEdges[edge.StartNode] == nil {
		m.outgoingEdges[edge.StartNode] = make(map[EdgeID]struct{})
	}
	m.outgoingEdges[edge.StartNode][edge.ID] = struct{}{}

	if m.incomingEdges[edge.EndNode] == nil {
		m.incomingEdges[edge.EndNode] = make(map[EdgeID]struct{})
	}
	m.incomingEdges[edge.EndNode][edge.ID] = struct{}{}

	if m.edgesByType[edge.Type] == nil {
		m.edgesByType[edge.Type] = make(map[EdgeID]struct{})
	}
	m.edgesByType[edge.Type][edge.ID] = struct{}{}

	for prop, val := range edge.Properties {
		key := fmt.Sprintf("%s:%v", prop, val)
		if m.edgesByProperty[key] == nil {
			m.edgesByProperty[key] = make(map[EdgeID]struct{})
		}
		m.edgesByProperty[key][edge.ID] = struct{}{}
	}
	return nil
}

// GetEdge returns a copy of the edge with the given id, or ErrNotFound.
func (m *MemoryEngine) GetEdge(id EdgeID) (*Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.edges[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyEdge(e), nil
}

// DeleteEdge removes the edge and its index entries.
func (m *MemoryEngine) DeleteEdge(id EdgeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.edges[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.outgoingEdges[e.StartNode], id)
	delete(m.incomingEdges[e.EndNode], id)
	delete(m.edgesByType[e.Type], id)
	for prop, val := range e.Properties {
		key := fmt.Sprintf("%s:%v", prop, val)
		delete(m.edgesByProperty[key], id)
	}
	delete(m.edges, id)
	return nil
}

// GetNodeByProperty performs an auto-indexed lookup: label x property =
// value -> at most one node (§4.2). Returns ErrNotFound if none match.
func (m *MemoryEngine) GetNodeByProperty(label, property string, value any) (*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.nodesByLabel[label]
	for id := range ids {
		n := m.nodes[id]
		if v, ok := n.Properties[property]; ok && v == value {
			return copyNode(n), nil
		}
	}
	return nil, ErrNotFound
}

// GetNodesByLabel returns every node carrying label.
func (m *MemoryEngine) GetNodesByLabel(label string) ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.nodesByLabel[label]
	result := make([]*Node, 0, len(ids))
	for id := range ids {
		result = append(result, copyNode(m.nodes[id]))
	}
	return result, nil
}

// GetOutgoingEdges returns every edge whose StartNode is nodeID.
func (m *MemoryEngine) GetOutgoingEdges(nodeID NodeID) ([]*Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.outgoingEdges[nodeID]
	result := make([]*Edge, 0, len(ids))
	for id := range ids {
		result = append(result, copyEdge(m.edges[id]))
	}
	return result, nil
}

// GetIncomingEdges returns every edge whose EndNode is nodeID.
func (m *MemoryEngine) GetIncomingEdges(nodeID NodeID) ([]*Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.incomingEdges[nodeID]
	result := make([]*Edge, 0, len(ids))
	for id := range ids {
		result = append(result, copyEdge(m.edges[id]))
	}
	return result, nil
}

// GetEdgesByType returns every edge of the given relationship type.
func (m *MemoryEngine) GetEdgesByType(edgeType string) ([]*Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.edgesByType[edgeType]
	result := make([]*Edge, 0, len(ids))
	for id := range ids {
		result = append(result, copyEdge(m.edges[id]))
	}
	return result, nil
}

// GetEdgeByProperty is the auto-index lookup for relationship properties
// (e.g. "workflow", "npeid") described in §6.
func (m *MemoryEngine) GetEdgeByProperty(property string, value any) ([]*Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := fmt.Sprintf("%s:%v", property, value)
	ids := m.edgesByProperty[key]
	result := make([]*Edge, 0, len(ids))
	for id := range ids {
		result = append(result, copyEdge(m.edges[id]))
	}
	return result, nil
}

// FindEdge matches the first edge by (start, end, type, workflow), treating
// a nil workflow on both sides as equal per §4.3's delete-matching rule.
func (m *MemoryEngine) FindEdge(startID, endID NodeID, edgeType string, workflow *string) (*Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id := range m.outgoingEdges[startID] {
		e := m.edges[id]
		if e.EndNode != endID || e.Type != edgeType {
			continue
		}
		ew, _ := e.Properties["workflow"].(string)
		switch {
		case workflow == nil && ew == "":
			return copyEdge(e), nil
		case workflow != nil && ew == *workflow:
			return copyEdge(e), nil
		}
	}
	return nil, ErrNotFound
}

// AllNodes returns every node in the engine.
func (m *MemoryEngine) AllNodes() ([]*Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		result = append(result, copyNode(n))
	}
	return result, nil
}

// AllEdges returns every edge in the engine.
func (m *MemoryEngine) AllEdges() ([]*Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*Edge, 0, len(m.edges))
	for _, e := range m.edges {
		result = append(result, copyEdge(e))
	}
	return result, nil
}

// GetSchema returns the engine's schema manager.
func (m *MemoryEngine) GetSchema() *SchemaManager { return m.schema }

// BulkCreateNodes inserts nodes one at a time, stopping at the first error
// that is not a duplicate-key skip.
func (m *MemoryEngine) BulkCreateNodes(nodes []*Node) error {
	for _, n := range nodes {
		if err := m.CreateNode(n); err != nil && err != ErrAlreadyExists {
			return err
		}
	}
	return nil
}

// BulkCreateEdges inserts edges one at a time, stopping at the first error
// that is not a duplicate-key skip.
func (m *MemoryEngine) BulkCreateEdges(edges []*Edge) error {
	for _, e := range edges {
		if err := m.CreateEdge(e); err != nil && err != ErrAlreadyExists {
			return err
		}
	}
	return nil
}

// Begin starts a new Transaction scoped to this engine.
func (m *MemoryEngine) Begin() (*Transaction, error) {
	return NewTransaction(m), nil
}

// Close releases the engine. MemoryEngine holds no external resources;
// Close only flips the closed flag so further writes fail fast.
func (m *MemoryEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// NodeCount returns the number of stored nodes.
func (m *MemoryEngine) NodeCount() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.nodes)), nil
}

// EdgeCount returns the number of stored edges.
func (m *MemoryEngine) EdgeCount() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.edges)), nil
}

// StreamNodes satisfies StreamingEngine by iterating the in-memory node
// map directly; there is no paging cost to avoid, but implementing the
// interface lets callers (CollectLabels) use one code path regardless
// of which engine backs the store.
func (m *MemoryEngine) StreamNodes(ctx context.Context, fn func(node *Node) error) error {
	nodes, err := m.AllNodes()
	if err != nil {
		return err
	}
	for _, n := range nodes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

// StreamEdges satisfies StreamingEngine; see StreamNodes.
func (m *MemoryEngine) StreamEdges(ctx context.Context, fn func(edge *Edge) error) error {
	edges, err := m.AllEdges()
	if err != nil {
		return err
	}
	for _, e := range edges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

var _ Engine = (*MemoryEngine)(nil)
var _ StreamingEngine = (*MemoryEngine)(nil)
