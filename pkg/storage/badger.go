// Package storage - BadgerEngine provides persistent, disk-based storage
// using BadgerDB, implementing the same Engine interface as MemoryEngine.
//
// Key Structure:
//   - Nodes: 0x01 + nodeID -> JSON(Node)
//   - Edges: 0x02 + edgeID -> JSON(Edge)
//   - Label Index: 0x03 + label + 0x00 + nodeID -> empty
//   - Outgoing Index: 0x04 + nodeID + 0x00 + edgeID -> empty
//   - Incoming Index: 0x05 + nodeID + 0x00 + edgeID -> empty
//   - Type Index: 0x06 + edgeType + 0x00 + edgeID -> empty
//   - Property Index: 0x07 + prop + 0x00 + value + 0x00 + edgeID -> empty
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

const (
	prefixNode          = byte(0x01)
	prefixEdge          = byte(0x02)
	prefixLabelIndex    = byte(0x03)
	prefixOutgoingIndex = byte(0x04)
	prefixIncomingIndex = byte(0x05)
	prefixTypeIndex     = byte(0x06)
	prefixPropertyIndex = byte(0x07)
)

// BadgerEngine provides persistent storage using BadgerDB. It satisfies the
// same Engine interface as MemoryEngine so client and traversal code never
// need to know which engine backs a given store.
type BadgerEngine struct {
	db     *badger.DB
	schema *SchemaManager
	mu     sync.RWMutex
	closed bool
}

// BadgerOptions configures the BadgerDB engine.
type BadgerOptions struct {
	// DataDir is the directory for storing data files. Required unless
	// InMemory is set.
	DataDir string

	// InMemory runs BadgerDB in memory-only mode. Data is not persisted;
	// useful for tests that want persistence-shaped semantics without disk
	// I/O.
	InMemory bool

	// SyncWrites forces fsync after each write. Slower but more durable.
	SyncWrites bool

	// Logger for BadgerDB's internal logging. If nil, logging is silenced.
	Logger badger.Logger

	// LowMemory applies memory-constrained settings, for containerized
	// deployments.
	LowMemory bool
}

// NewBadgerEngine opens a persistent storage engine rooted at dataDir.
func NewBadgerEngine(dataDir string) (*BadgerEngine, error) {
	return NewBadgerEngineWithOptions(BadgerOptions{DataDir: dataDir})
}

// NewBadgerEngineWithOptions opens a BadgerEngine with custom configuration.
func NewBadgerEngineWithOptions(opts BadgerOptions) (*BadgerEngine, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir)

	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}
	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(opts.Logger)
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	if opts.LowMemory {
		badgerOpts = badgerOpts.
			WithMemTableSize(16 << 20).
			WithValueLogFileSize(64 << 20).
			WithNumMemtables(2).
			WithNumLevelZeroTables(2).
			WithNumLevelZeroTablesStall(4).
			WithValueThreshold(1024).
			WithBlockCacheSize(32 << 20).
			WithIndexCacheSize(16 << 20)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to open badger: %w", err)
	}

	return &BadgerEngine{
		db:     db,
		schema: NewSchemaManager(),
	}, nil
}

// NewBadgerEngineInMemory opens an in-memory BadgerDB, for tests that want
// persistent-engine code paths exercised without touching disk.
func NewBadgerEngineInMemory() (*BadgerEngine, error) {
	return NewBadgerEngineWithOptions(BadgerOptions{InMemory: true})
}

// ---- key encoding ----

func nodeKey(id NodeID) []byte {
	return append([]byte{prefixNode}, []byte(id)...)
}

func edgeKey(id EdgeID) []byte {
	return append([]byte{prefixEdge}, []byte(id)...)
}

func labelIndexKey(label string, nodeID NodeID) []byte {
	l := strings.ToLower(label)
	key := make([]byte, 0, 1+len(l)+1+len(nodeID))
	key = append(key, prefixLabelIndex)
	key = append(key, []byte(l)...)
	key = append(key, 0x00)
	key = append(key, []byte(nodeID)...)
	return key
}

func labelIndexPrefix(label string) []byte {
	l := strings.ToLower(label)
	key := make([]byte, 0, 1+len(l)+1)
	key = append(key, prefixLabelIndex)
	key = append(key, []byte(l)...)
	key = append(key, 0x00)
	return key
}

func outgoingIndexKey(nodeID NodeID, edgeID EdgeID) []byte {
	key := make([]byte, 0, 1+len(nodeID)+1+len(edgeID))
	key = append(key, prefixOutgoingIndex)
	key = append(key, []byte(nodeID)...)
	key = append(key, 0x00)
	key = append(key, []byte(edgeID)...)
	return key
}

func outgoingIndexPrefix(nodeID NodeID) []byte {
	key := make([]byte, 0, 1+len(nodeID)+1)
	key = append(key, prefixOutgoingIndex)
	key = append(key, []byte(nodeID)...)
	key = append(key, 0x00)
	return key
}

func incomingIndexKey(nodeID NodeID, edgeID EdgeID) []byte {
	key := make([]byte, 0, 1+len(nodeID)+1+len(edgeID))
	key = append(key, prefixIncomingIndex)
	key = append(key, []byte(nodeID)...)
	key = append(key, 0x00)
	key = append(key, []byte(edgeID)...)
	return key
}

func incomingIndexPrefix(nodeID NodeID) []byte {
	key := make([]byte, 0, 1+len(nodeID)+1)
	key = append(key, prefixIncomingIndex)
	key = append(key, []byte(nodeID)...)
	key = append(key, 0x00)
	return key
}

func typeIndexKey(edgeType string, edgeID EdgeID) []byte {
	key := make([]byte, 0, 1+len(edgeType)+1+len(edgeID))
	key = append(key, prefixTypeIndex)
	key = append(key, []byte(edgeType)...)
	key = append(key, 0x00)
	key = append(key, []byte(edgeID)...)
	return key
}

func typeIndexPrefix(edgeType string) []byte {
	key := make([]byte, 0, 1+len(edgeType)+1)
	key = append(key, prefixTypeIndex)
	key = append(key, []byte(edgeType)...)
	key = append(key, 0x00)
	return key
}

func propertyIndexKey(property string, value any, edgeID EdgeID) []byte {
	valStr := fmt.Sprintf("%v", value)
	key := make([]byte, 0, 1+len(property)+1+len(valStr)+1+len(edgeID))
	key = append(key, prefixPropertyIndex)
	key = append(key, []byte(property)...)
	key = append(key, 0x00)
	key = append(key, []byte(valStr)...)
	key = append(key, 0x00)
	key = append(key, []byte(edgeID)...)
	return key
}

func propertyIndexPrefix(property string, value any) []byte {
	valStr := fmt.Sprintf("%v", value)
	key := make([]byte, 0, 1+len(property)+1+len(valStr)+1)
	key = append(key, prefixPropertyIndex)
	key = append(key, []byte(property)...)
	key = append(key, 0x00)
	key = append(key, []byte(valStr)...)
	key = append(key, 0x00)
	return key
}

// extractIDFromIndexKey extracts the trailing ID after the last 0x00
// separator in an index key of the form prefix + ... + 0x00 + id.
func extractIDFromIndexKey(key []byte) string {
	for i := len(key) - 1; i > 0; i-- {
		if key[i] == 0x00 {
			return string(key[i+1:])
		}
	}
	return ""
}

// ---- serialization ----

type serializableNode struct {
	ID         string         `json:"id"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

type serializableEdge struct {
	ID         string         `json:"id"`
	StartNode  string         `json:"startNode"`
	EndNode    string         `json:"endNode"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

func encodeNode(n *Node) ([]byte, error) {
	return json.Marshal(serializableNode{ID: string(n.ID), Labels: n.Labels, Properties: n.Properties})
}

func decodeNode(data []byte) (*Node, error) {
	var sn serializableNode
	if err := json.Unmarshal(data, &sn); err != nil {
		return nil, err
	}
	return &Node{ID: NodeID(sn.ID), Labels: sn.Labels, Properties: sn.Properties}, nil
}

func encodeEdge(e *Edge) ([]byte, error) {
	return json.Marshal(serializableEdge{
		ID: string(e.ID), StartNode: string(e.StartNode), EndNode: string(e.EndNode),
		Type: e.Type, Properties: e.Properties,
	})
}

func decodeEdge(data []byte) (*Edge, error) {
	var se serializableEdge
	if err := json.Unmarshal(data, &se); err != nil {
		return nil, err
	}
	return &Edge{
		ID: EdgeID(se.ID), StartNode: NodeID(se.StartNode), EndNode: NodeID(se.EndNode),
		Type: se.Type, Properties: se.Properties,
	}, nil
}

// ---- node operations ----

func (b *BadgerEngine) guardOpen() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrStorageClosed
	}
	return nil
}

// CreateNode inserts a node, enforcing declared uniqueness constraints.
func (b *BadgerEngine) CreateNode(node *Node) error {
	if node == nil || node.ID == "" {
		return ErrInvalidID
	}
	if err := b.guardOpen(); err != nil {
		return err
	}
	for _, label := range node.Labels {
		for prop, val := range node.Properties {
			if err := b.schema.ValidateUnique(label, prop, val, string(node.ID)); err != nil {
				return err
			}
		}
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		key := nodeKey(node.ID)
		if _, err := txn.Get(key); err == nil {
			return ErrAlreadyExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		data, err := encodeNode(node)
		if err != nil {
			return fmt.Errorf("storage: failed to encode node: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		for _, label := range node.Labels {
			if err := txn.Set(labelIndexKey(label, node.ID), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, label := range node.Labels {
		for prop, val := range node.Properties {
			b.schema.RecordUnique(label, prop, val, node.ID)
		}
	}
	return nil
}

// GetNode retrieves a node by ID.
func (b *BadgerEngine) GetNode(id NodeID) (*Node, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if err := b.guardOpen(); err != nil {
		return nil, err
	}

	var node *Node
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decErr error
			node, decErr = decodeNode(val)
			return decErr
		})
	})
	return node, err
}

// UpdateNode replaces a node's stored state, re-validating and updating
// uniqueness claims.
func (b *BadgerEngine) UpdateNode(node *Node) error {
	if node == nil || node.ID == "" {
		return ErrInvalidID
	}
	if err := b.guardOpen(); err != nil {
		return err
	}

	var existing *Node
	err := b.db.Update(func(txn *badger.Txn) error {
		key := nodeKey(node.ID)
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			var decErr error
			existing, decErr = decodeNode(val)
			return decErr
		}); err != nil {
			return err
		}

		for _, label := range node.Labels {
			for prop, val := range node.Properties {
				if err := b.schema.ValidateUnique(label, prop, val, string(node.ID)); err != nil {
					return err
				}
			}
		}

		for _, label := range existing.Labels {
			if err := txn.Delete(labelIndexKey(label, node.ID)); err != nil {
				return err
			}
		}
		data, err := encodeNode(node)
		if err != nil {
			return fmt.Errorf("storage: failed to encode node: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		for _, label := range node.Labels {
			if err := txn.Set(labelIndexKey(label, node.ID), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, label := range existing.Labels {
		for prop, val := range existing.Properties {
			b.schema.ForgetUnique(label, prop, val)
		}
	}
	for _, label := range node.Labels {
		for prop, val := range node.Properties {
			b.schema.RecordUnique(label, prop, val, node.ID)
		}
	}
	return nil
}

// DeleteNode removes a node and its label index entries. Incident edges
// must already be gone (graphstore.DeleteObject enforces cascade semantics).
func (b *BadgerEngine) DeleteNode(id NodeID) error {
	if id == "" {
		return ErrInvalidID
	}
	if err := b.guardOpen(); err != nil {
		return err
	}

	var removed *Node
	err := b.db.Update(func(txn *badger.Txn) error {
		key := nodeKey(id)
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			var decErr error
			removed, decErr = decodeNode(val)
			return decErr
		}); err != nil {
			return err
		}
		for _, label := range removed.Labels {
			if err := txn.Delete(labelIndexKey(label, id)); err != nil {
				return err
			}
		}
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}
	for _, label := range removed.Labels {
		for prop, val := range removed.Properties {
			b.schema.ForgetUnique(label, prop, val)
		}
	}
	return nil
}

// ---- edge operations ----

// CreateEdge inserts a directed edge after verifying both endpoints exist.
func (b *BadgerEngine) CreateEdge(edge *Edge) error {
	if edge == nil || edge.ID == "" {
		return ErrInvalidID
	}
	if err := b.guardOpen(); err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		key := edgeKey(edge.ID)
		if _, err := txn.Get(key); err == nil {
			return ErrAlreadyExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if _, err := txn.Get(nodeKey(edge.StartNode)); err == badger.ErrKeyNotFound {
			return ErrInvalidEdge
		} else if err != nil {
			return err
		}
		if _, err := txn.Get(nodeKey(edge.EndNode)); err == badger.ErrKeyNotFound {
			return ErrInvalidEdge
		} else if err != nil {
			return err
		}

		data, err := encodeEdge(edge)
		if err != nil {
			return fmt.Errorf("storage: failed to encode edge: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		if err := txn.Set(outgoingIndexKey(edge.StartNode, edge.ID), []byte{}); err != nil {
			return err
		}
		if err := txn.Set(incomingIndexKey(edge.EndNode, edge.ID), []byte{}); err != nil {
			return err
		}
		if err := txn.Set(typeIndexKey(edge.Type, edge.ID), []byte{}); err != nil {
			return err
		}
		for prop, val := range edge.Properties {
			if err := txn.Set(propertyIndexKey(prop, val, edge.ID), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetEdge retrieves an edge by ID.
func (b *BadgerEngine) GetEdge(id EdgeID) (*Edge, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if err := b.guardOpen(); err != nil {
		return nil, err
	}

	var edge *Edge
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(edgeKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decErr error
			edge, decErr = decodeEdge(val)
			return decErr
		})
	})
	return edge, err
}

// DeleteEdge removes an edge and its index entries.
func (b *BadgerEngine) DeleteEdge(id EdgeID) error {
	if id == "" {
		return ErrInvalidID
	}
	if err := b.guardOpen(); err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		key := edgeKey(id)
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var edge *Edge
		if err := item.Value(func(val []byte) error {
			var decErr error
			edge, decErr = decodeEdge(val)
			return decErr
		}); err != nil {
			return err
		}
		if err := txn.Delete(outgoingIndexKey(edge.StartNode, id)); err != nil {
			return err
		}
		if err := txn.Delete(incomingIndexKey(edge.EndNode, id)); err != nil {
			return err
		}
		if err := txn.Delete(typeIndexKey(edge.Type, id)); err != nil {
			return err
		}
		for prop, val := range edge.Properties {
			if err := txn.Delete(propertyIndexKey(prop, val, id)); err != nil {
				return err
			}
		}
		return txn.Delete(key)
	})
}

// ---- lookups ----

// GetNodeByProperty scans the label index for the first node whose
// property matches value.
func (b *BadgerEngine) GetNodeByProperty(label, property string, value any) (*Node, error) {
	if err := b.guardOpen(); err != nil {
		return nil, err
	}
	var found *Node
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := labelIndexPrefix(label)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			nodeID := NodeID(extractIDFromIndexKey(it.Item().Key()))
			if nodeID == "" {
				continue
			}
			item, err := txn.Get(nodeKey(nodeID))
			if err != nil {
				continue
			}
			var node *Node
			if err := item.Value(func(val []byte) error {
				var decErr error
				node, decErr = decodeNode(val)
				return decErr
			}); err != nil {
				continue
			}
			if v, ok := node.Properties[property]; ok && v == value {
				found = node
				return ErrIterationStopped
			}
		}
		return nil
	})
	if err != nil && err != ErrIterationStopped {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// GetNodesByLabel returns every node carrying label.
func (b *BadgerEngine) GetNodesByLabel(label string) ([]*Node, error) {
	if err := b.guardOpen(); err != nil {
		return nil, err
	}
	var nodes []*Node
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := labelIndexPrefix(label)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			nodeID := NodeID(extractIDFromIndexKey(it.Item().Key()))
			if nodeID == "" {
				continue
			}
			item, err := txn.Get(nodeKey(nodeID))
			if err != nil {
				continue
			}
			var node *Node
			if err := item.Value(func(val []byte) error {
				var decErr error
				node, decErr = decodeNode(val)
				return decErr
			}); err != nil {
				continue
			}
			nodes = append(nodes, node)
		}
		return nil
	})
	return nodes, err
}

func (b *BadgerEngine) edgesByIndexPrefix(prefix []byte) ([]*Edge, error) {
	var edges []*Edge
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			edgeID := EdgeID(extractIDFromIndexKey(it.Item().Key()))
			if edgeID == "" {
				continue
			}
			item, err := txn.Get(edgeKey(edgeID))
			if err != nil {
				continue
			}
			var edge *Edge
			if err := item.Value(func(val []byte) error {
				var decErr error
				edge, decErr = decodeEdge(val)
				return decErr
			}); err != nil {
				continue
			}
			edges = append(edges, edge)
		}
		return nil
	})
	return edges, err
}

// GetOutgoingEdges returns every edge whose StartNode is nodeID.
func (b *BadgerEngine) GetOutgoingEdges(nodeID NodeID) ([]*Edge, error) {
	if nodeID == "" {
		return nil, ErrInvalidID
	}
	if err := b.guardOpen(); err != nil {
		return nil, err
	}
	return b.edgesByIndexPrefix(outgoingIndexPrefix(nodeID))
}

// GetIncomingEdges returns every edge whose EndNode is nodeID.
func (b *BadgerEngine) GetIncomingEdges(nodeID NodeID) ([]*Edge, error) {
	if nodeID == "" {
		return nil, ErrInvalidID
	}
	if err := b.guardOpen(); err != nil {
		return nil, err
	}
	return b.edgesByIndexPrefix(incomingIndexPrefix(nodeID))
}

// GetEdgesByType returns every edge of the given relationship type.
func (b *BadgerEngine) GetEdgesByType(edgeType string) ([]*Edge, error) {
	if err := b.guardOpen(); err != nil {
		return nil, err
	}
	return b.edgesByIndexPrefix(typeIndexPrefix(edgeType))
}

// GetEdgeByProperty returns every edge carrying property=value.
func (b *BadgerEngine) GetEdgeByProperty(property string, value any) ([]*Edge, error) {
	if err := b.guardOpen(); err != nil {
		return nil, err
	}
	return b.edgesByIndexPrefix(propertyIndexPrefix(property, value))
}

// FindEdge matches the first edge by (start, end, type, workflow), treating
// a nil workflow and an empty "workflow" property as equal.
func (b *BadgerEngine) FindEdge(startID, endID NodeID, edgeType string, workflow *string) (*Edge, error) {
	outgoing, err := b.GetOutgoingEdges(startID)
	if err != nil {
		return nil, err
	}
	for _, e := range outgoing {
		if e.EndNode != endID || e.Type != edgeType {
			continue
		}
		ew, _ := e.Properties["workflow"].(string)
		if (workflow == nil && ew == "") || (workflow != nil && ew == *workflow) {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

// AllNodes returns every node in the engine.
func (b *BadgerEngine) AllNodes() ([]*Node, error) {
	if err := b.guardOpen(); err != nil {
		return nil, err
	}
	var nodes []*Node
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := []byte{prefixNode}
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var node *Node
			if err := it.Item().Value(func(val []byte) error {
				var decErr error
				node, decErr = decodeNode(val)
				return decErr
			}); err != nil {
				continue
			}
			nodes = append(nodes, node)
		}
		return nil
	})
	return nodes, err
}

// AllEdges returns every edge in the engine.
func (b *BadgerEngine) AllEdges() ([]*Edge, error) {
	if err := b.guardOpen(); err != nil {
		return nil, err
	}
	var edges []*Edge
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := []byte{prefixEdge}
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var edge *Edge
			if err := it.Item().Value(func(val []byte) error {
				var decErr error
				edge, decErr = decodeEdge(val)
				return decErr
			}); err != nil {
				continue
			}
			edges = append(edges, edge)
		}
		return nil
	})
	return edges, err
}

// GetSchema returns the engine's schema manager.
func (b *BadgerEngine) GetSchema() *SchemaManager { return b.schema }

// BulkCreateNodes inserts nodes one at a time, stopping at the first error
// that is not a duplicate-key skip.
func (b *BadgerEngine) BulkCreateNodes(nodes []*Node) error {
	for _, n := range nodes {
		if err := b.CreateNode(n); err != nil && err != ErrAlreadyExists {
			return err
		}
	}
	return nil
}

// BulkCreateEdges inserts edges one at a time, stopping at the first error
// that is not a duplicate-key skip.
func (b *BadgerEngine) BulkCreateEdges(edges []*Edge) error {
	for _, e := range edges {
		if err := b.CreateEdge(e); err != nil && err != ErrAlreadyExists {
			return err
		}
	}
	return nil
}

// Begin starts a new Transaction scoped to this engine.
func (b *BadgerEngine) Begin() (*Transaction, error) {
	return NewTransaction(b), nil
}

// NodeCount returns the total number of stored nodes.
func (b *BadgerEngine) NodeCount() (int64, error) {
	if err := b.guardOpen(); err != nil {
		return 0, err
	}
	var count int64
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := []byte{prefixNode}
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// EdgeCount returns the total number of stored edges.
func (b *BadgerEngine) EdgeCount() (int64, error) {
	if err := b.guardOpen(); err != nil {
		return 0, err
	}
	var count int64
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := []byte{prefixEdge}
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close closes the underlying BadgerDB database.
func (b *BadgerEngine) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

// Sync forces a sync of all data to disk.
func (b *BadgerEngine) Sync() error {
	if err := b.guardOpen(); err != nil {
		return err
	}
	return b.db.Sync()
}

// RunGC runs garbage collection on the BadgerDB value log. Safe to call
// periodically on long-running processes.
func (b *BadgerEngine) RunGC() error {
	if err := b.guardOpen(); err != nil {
		return err
	}
	return b.db.RunValueLogGC(0.5)
}

// Size returns the approximate on-disk size of the database in bytes.
func (b *BadgerEngine) Size() (lsm, vlog int64) {
	if err := b.guardOpen(); err != nil {
		return 0, 0
	}
	return b.db.Size()
}

// StreamNodes implements StreamingEngine, iterating nodes without loading
// the full set into memory.
func (b *BadgerEngine) StreamNodes(ctx context.Context, fn func(node *Node) error) error {
	if err := b.guardOpen(); err != nil {
		return err
	}
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.PrefetchSize = 100
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte{prefixNode}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			var node *Node
			if err := it.Item().Value(func(val []byte) error {
				var decErr error
				node, decErr = decodeNode(val)
				return decErr
			}); err != nil {
				continue
			}
			if err := fn(node); err != nil {
				if err == ErrIterationStopped {
					return nil
				}
				return err
			}
		}
		return nil
	})
}

// StreamEdges implements StreamingEngine, iterating edges without loading
// the full set into memory.
func (b *BadgerEngine) StreamEdges(ctx context.Context, fn func(edge *Edge) error) error {
	if err := b.guardOpen(); err != nil {
		return err
	}
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.PrefetchSize = 100
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte{prefixEdge}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			var edge *Edge
			if err := it.Item().Value(func(val []byte) error {
				var decErr error
				edge, decErr = decodeEdge(val)
				return decErr
			}); err != nil {
				continue
			}
			if err := fn(edge); err != nil {
				if err == ErrIterationStopped {
					return nil
				}
				return err
			}
		}
		return nil
	})
}

var _ Engine = (*BadgerEngine)(nil)
var _ StreamingEngine = (*BadgerEngine)(nil)
