// Package storage - Transaction support for atomic operations.
//
// This file implements transaction semantics for the graph kernel's
// modifications, giving ACID-like behavior for multi-step writes (such as
// storing one provenance object together with its owner and privilege
// edges).
//
// A Transaction is bound to an Engine, not a concrete implementation, so
// the same transaction semantics cover both MemoryEngine and BadgerEngine.
// Each operation is applied to the engine as soon as it is called (there is
// no separate buffer-then-apply phase), and its inverse is recorded; Commit
// discards the inverse log, Rollback replays it in reverse order. This
// trades strict isolation (a concurrent reader can observe a transaction's
// writes before it commits) for an implementation that works uniformly
// across storage engines; callers open one transaction per logical unit of
// work (e.g. graphstore.StoreObject) and nothing reads the store
// mid-transaction.
package storage

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Transaction errors.
var (
	ErrTransactionClosed = errors.New("storage: transaction already closed")
)

// TransactionStatus represents the current state of a transaction.
type TransactionStatus string

const (
	TxStatusActive     TransactionStatus = "active"
	TxStatusCommitted  TransactionStatus = "committed"
	TxStatusRolledBack TransactionStatus = "rolled_back"
)

// undoStep is one entry in a transaction's inverse-operation log.
type undoStep func(engine Engine) error

// Transaction is a scoped unit of work against a single Engine. Every
// exported storage operation that needs atomicity (graphstore.StoreObject,
// graphstore.DeleteObject, ...) opens its own Transaction and commits
// or rolls it back before returning.
type Transaction struct {
	mu sync.Mutex

	ID        string
	StartTime time.Time
	Status    TransactionStatus

	engine Engine
	undo   []undoStep

	// Metadata is attached via SetMetadata and logged at commit time,
	// mirroring Neo4j's CALL tx.setMetaData().
	Metadata map[string]interface{}
}

// NewTransaction opens a new transaction bound to engine.
func NewTransaction(engine Engine) *Transaction {
	return &Transaction{
		ID:        generateTxID(),
		StartTime: time.Now(),
		Status:    TxStatusActive,
		engine:    engine,
		Metadata:  make(map[string]interface{}),
	}
}

func generateTxID() string {
	return "tx-" + time.Now().Format("20060102150405.000000")
}

// IsActive reports whether the transaction has neither committed nor
// rolled back.
func (tx *Transaction) IsActive() bool {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.Status == TxStatusActive
}

func (tx *Transaction) requireActive() error {
	if tx.Status != TxStatusActive {
		return ErrTransactionClosed
	}
	return nil
}

// CreateNode applies a node creation and records its inverse.
func (tx *Transaction) CreateNode(node *Node) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.requireActive(); err != nil {
		return err
	}
	if err := tx.engine.CreateNode(node); err != nil {
		return err
	}
	id := node.ID
	tx.undo = append(tx.undo, func(e Engine) error { return e.DeleteNode(id) })
	return nil
}

// UpdateNode applies a node replacement and records its inverse.
func (tx *Transaction) UpdateNode(node *Node) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.requireActive(); err != nil {
		return err
	}
	prior, err := tx.engine.GetNode(node.ID)
	if err != nil {
		return err
	}
	if err := tx.engine.UpdateNode(node); err != nil {
		return err
	}
	tx.undo = append(tx.undo, func(e Engine) error { return e.UpdateNode(prior) })
	return nil
}

// DeleteNode applies a node deletion and records its inverse.
func (tx *Transaction) DeleteNode(nodeID NodeID) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.requireActive(); err != nil {
		return err
	}
	prior, err := tx.engine.GetNode(nodeID)
	if err != nil {
		return err
	}
	if err := tx.engine.DeleteNode(nodeID); err != nil {
		return err
	}
	tx.undo = append(tx.undo, func(e Engine) error { return e.CreateNode(prior) })
	return nil
}

// CreateEdge applies an edge creation and records its inverse.
func (tx *Transaction) CreateEdge(edge *Edge) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.requireActive(); err != nil {
		return err
	}
	if err := tx.engine.CreateEdge(edge); err != nil {
		return err
	}
	id := edge.ID
	tx.undo = append(tx.undo, func(e Engine) error { return e.DeleteEdge(id) })
	return nil
}

// DeleteEdge applies an edge deletion and records its inverse.
func (tx *Transaction) DeleteEdge(edgeID EdgeID) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.requireActive(); err != nil {
		return err
	}
	prior, err := tx.engine.GetEdge(edgeID)
	if err != nil {
		return err
	}
	if err := tx.engine.DeleteEdge(edgeID); err != nil {
		return err
	}
	tx.undo = append(tx.undo, func(e Engine) error { return e.CreateEdge(prior) })
	return nil
}

// GetNode reads through to the underlying engine. Read-your-writes is
// automatic since writes are applied immediately rather than buffered.
func (tx *Transaction) GetNode(nodeID NodeID) (*Node, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.requireActive(); err != nil {
		return nil, err
	}
	return tx.engine.GetNode(nodeID)
}

// OperationCount returns the number of operations applied so far.
func (tx *Transaction) OperationCount() int {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return len(tx.undo)
}

// Commit finalizes the transaction, discarding its undo log.
func (tx *Transaction) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.requireActive(); err != nil {
		return err
	}
	if len(tx.Metadata) > 0 {
		log.Printf("[Transaction %s] committing (%d ops) metadata=%v", tx.ID, len(tx.undo), tx.Metadata)
	}
	tx.Status = TxStatusCommitted
	tx.undo = nil
	return nil
}

// Rollback undoes every applied operation in reverse order. Errors from
// individual undo steps are logged rather than returned, since a failed
// undo should not mask the original error that triggered the rollback.
func (tx *Transaction) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.requireActive(); err != nil {
		return err
	}
	for i := len(tx.undo) - 1; i >= 0; i-- {
		if err := tx.undo[i](tx.engine); err != nil {
			log.Printf("[Transaction %s] rollback step %d failed: %v", tx.ID, i, err)
		}
	}
	tx.undo = nil
	tx.Status = TxStatusRolledBack
	return nil
}

// SetMetadata attaches metadata for audit logging at commit time, mirroring
// Neo4j's CALL tx.setMetaData(). Merges with any existing metadata; total
// size is capped at 2048 characters to match Neo4j's own limit.
func (tx *Transaction) SetMetadata(metadata map[string]interface{}) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.requireActive(); err != nil {
		return err
	}
	totalSize := 0
	for k, v := range metadata {
		totalSize += len(k)
		if v != nil {
			totalSize += len(fmt.Sprint(v))
		}
	}
	if totalSize > 2048 {
		return fmt.Errorf("storage: transaction metadata too large: %d chars (max 2048)", totalSize)
	}
	for k, v := range metadata {
		tx.Metadata[k] = v
	}
	return nil
}

// GetMetadata returns a copy of the transaction's metadata.
func (tx *Transaction) GetMetadata() map[string]interface{} {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	result := make(map[string]interface{})
	for k, v := range tx.Metadata {
		result[k] = v
	}
	return result
}
