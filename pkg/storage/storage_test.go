package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEngine_NodeCRUD(t *testing.T) {
	e := NewMemoryEngine()
	n := &Node{ID: "Provenance:plus:o1", Labels: []string{"Provenance"}, Properties: map[string]any{"oid": "plus:o1", "name": "O1"}}
	require.NoError(t, e.CreateNode(n))

	got, err := e.GetNode(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "O1", got.Properties["name"])
	assert.True(t, got.HasLabel("Provenance"))

	got.Properties["name"] = "O1-renamed"
	require.NoError(t, e.UpdateNode(got))
	reread, err := e.GetNode(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "O1-renamed", reread.Properties["name"])

	require.NoError(t, e.DeleteNode(n.ID))
	_, err = e.GetNode(n.ID)
	assert.Error(t, err)
}

func TestMemoryEngine_EdgeRequiresExistingEndpoints(t *testing.T) {
	e := NewMemoryEngine()
	require.NoError(t, e.CreateNode(&Node{ID: "Provenance:plus:o1", Labels: []string{"Provenance"}, Properties: map[string]any{"oid": "plus:o1"}}))

	err := e.CreateEdge(&Edge{ID: "e1", StartNode: "Provenance:plus:o1", EndNode: "Provenance:plus:missing", Type: "input-to"})
	assert.Error(t, err)
}

func TestMemoryEngine_GetNodeByProperty(t *testing.T) {
	e := NewMemoryEngine()
	require.NoError(t, e.CreateNode(&Node{ID: "Actor:plus:a1", Labels: []string{"Actor"}, Properties: map[string]any{"aid": "plus:a1", "name": "A1"}}))

	got, err := e.GetNodeByProperty("Actor", "name", "A1")
	require.NoError(t, err)
	assert.Equal(t, NodeID("Actor:plus:a1"), got.ID)

	_, err = e.GetNodeByProperty("Actor", "name", "nope")
	assert.Error(t, err)
}

func TestMemoryEngine_TransactionRollback(t *testing.T) {
	e := NewMemoryEngine()
	tx, err := e.Begin()
	require.NoError(t, err)

	require.NoError(t, tx.CreateNode(&Node{ID: "Provenance:plus:tx1", Labels: []string{"Provenance"}, Properties: map[string]any{"oid": "plus:tx1"}}))
	require.NoError(t, tx.Rollback())

	_, err = e.GetNode("Provenance:plus:tx1")
	assert.Error(t, err)
}

func TestMemoryEngine_TransactionCommit(t *testing.T) {
	e := NewMemoryEngine()
	tx, err := e.Begin()
	require.NoError(t, err)

	require.NoError(t, tx.CreateNode(&Node{ID: "Provenance:plus:tx2", Labels: []string{"Provenance"}, Properties: map[string]any{"oid": "plus:tx2"}}))
	require.NoError(t, tx.Commit())

	got, err := e.GetNode("Provenance:plus:tx2")
	require.NoError(t, err)
	assert.Equal(t, "plus:tx2", got.Properties["oid"])
}

func TestMemoryEngine_NodeCount(t *testing.T) {
	e := NewMemoryEngine()
	require.NoError(t, e.CreateNode(&Node{ID: "Provenance:plus:o1", Labels: []string{"Provenance"}, Properties: map[string]any{"oid": "plus:o1"}}))
	require.NoError(t, e.CreateNode(&Node{ID: "Provenance:plus:o2", Labels: []string{"Provenance"}, Properties: map[string]any{"oid": "plus:o2"}}))

	n, err := e.NodeCount()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
