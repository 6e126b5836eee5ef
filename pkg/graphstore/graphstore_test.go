package graphstore

import (
	"testing"

	"github.com/orneryd/provgraph/pkg/perrors"
	"github.com/orneryd/provgraph/pkg/provenance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *GraphStore {
	t.Helper()
	g := OpenMemory()
	require.NoError(t, g.Bootstrap())
	t.Cleanup(func() { g.Close() })
	return g
}

func TestBootstrap_IsIdempotent(t *testing.T) {
	g := newTestStore(t)
	require.NoError(t, g.Bootstrap())
	require.NoError(t, g.Bootstrap())

	n, err := g.Engine.GetNode(nodeID(LabelProvenance, provenance.DefaultWorkflowOID))
	require.NoError(t, err)
	assert.Equal(t, provenance.DefaultWorkflowOID, n.Properties["oid"])
}

func TestStoreObject_DuplicateOIDIsIdempotent(t *testing.T) {
	// S6: inserting the same oid twice returns the existing node, no error.
	g := newTestStore(t)
	o := &provenance.PLUSObject{OID: "plus:o1", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "first"}
	_, err := g.StoreObject(o)
	require.NoError(t, err)

	dup := &provenance.PLUSObject{OID: "plus:o1", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "second"}
	_, err = g.StoreObject(dup)
	require.NoError(t, err)

	n, err := g.GetNode("plus:o1")
	require.NoError(t, err)
	assert.Equal(t, "first", n.Properties["name"])
}

func TestStoreEdge_MissingEndpointFails(t *testing.T) {
	// Invariant 2 / property 3: a dangling edge insert fails and leaves the
	// store unchanged.
	g := newTestStore(t)
	_, err := g.StoreObject(&provenance.PLUSObject{OID: "plus:o1", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "o1"})
	require.NoError(t, err)

	err = g.StoreEdge(&provenance.PLUSEdge{From: "plus:o1", To: "plus:missing", Type: provenance.EdgeInputTo})
	assert.ErrorIs(t, err, perrors.ErrDanglingEdge)

	n, err := g.GetNode("plus:missing")
	assert.Error(t, err)
	assert.Nil(t, n)
}

func TestStoreCollection_S1(t *testing.T) {
	g := newTestStore(t)
	col := provenance.NewProvenanceCollection()
	col.AddActor(&provenance.PLUSActor{AID: "plus:a1", Name: "A1", Type: provenance.ActorUser})
	col.AddObject(&provenance.PLUSObject{OID: "plus:o1", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "O1"})
	col.AddObject(&provenance.PLUSObject{OID: "plus:o2", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "O2"})
	col.AddObject(&provenance.PLUSObject{OID: "plus:o3", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "O3"})
	col.AddEdge(&provenance.PLUSEdge{From: "plus:o1", To: "plus:o2", Type: provenance.EdgeInputTo})
	col.AddEdge(&provenance.PLUSEdge{From: "plus:o2", To: "plus:o3", Type: provenance.EdgeGenerated})

	n, err := g.StoreCollection(col)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	for _, oid := range []string{"plus:o1", "plus:o2", "plus:o3"} {
		node, err := g.Exists(oid)
		require.NoError(t, err)
		assert.NotNil(t, node)
	}
}

func TestDeleteObject_RequiresCascadeWhenEdgesRemain(t *testing.T) {
	g := newTestStore(t)
	_, err := g.StoreObject(&provenance.PLUSObject{OID: "plus:o1", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "o1"})
	require.NoError(t, err)
	_, err = g.StoreObject(&provenance.PLUSObject{OID: "plus:o2", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "o2"})
	require.NoError(t, err)
	require.NoError(t, g.StoreEdge(&provenance.PLUSEdge{From: "plus:o1", To: "plus:o2", Type: provenance.EdgeInputTo}))

	err = g.DeleteObject("plus:o1", false)
	assert.Error(t, err)

	require.NoError(t, g.DeleteObject("plus:o1", true))
	n, err := g.GetNode("plus:o1")
	assert.Error(t, err)
	assert.Nil(t, n)
}
