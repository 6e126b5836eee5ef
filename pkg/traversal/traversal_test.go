package traversal

import (
	"testing"

	"github.com/orneryd/provgraph/pkg/factory"
	"github.com/orneryd/provgraph/pkg/graphstore"
	"github.com/orneryd/provgraph/pkg/privilege"
	"github.com/orneryd/provgraph/pkg/provenance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTraverser(t *testing.T) (*graphstore.GraphStore, *Traverser) {
	t.Helper()
	g := graphstore.OpenMemory()
	require.NoError(t, g.Bootstrap())
	t.Cleanup(func() { g.Close() })
	fac := factory.New(g)
	priv := privilege.New(g)
	return g, New(g, fac, priv)
}

func seedChain(t *testing.T, g *graphstore.GraphStore) {
	t.Helper()
	col := provenance.NewProvenanceCollection()
	col.AddObject(&provenance.PLUSObject{OID: "plus:o1", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "O1"})
	col.AddObject(&provenance.PLUSObject{OID: "plus:o2", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "O2"})
	col.AddObject(&provenance.PLUSObject{OID: "plus:o3", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "O3"})
	col.AddEdge(&provenance.PLUSEdge{From: "plus:o1", To: "plus:o2", Type: provenance.EdgeInputTo})
	col.AddEdge(&provenance.PLUSEdge{From: "plus:o2", To: "plus:o3", Type: provenance.EdgeGenerated})
	_, err := g.StoreCollection(col)
	require.NoError(t, err)
}

// S1: forward traversal from o1 reaches o2 and o3.
func TestExpand_ForwardReachesDescendants(t *testing.T) {
	g, tr := newTestTraverser(t)
	seedChain(t, g)

	settings := provenance.TraversalSettings{
		BreadthFirst: true, Forward: true, IncludeNodes: true, IncludeEdges: true,
	}
	d, err := tr.Traverse(provenance.PIDAdmin, "plus:o1", settings)
	require.NoError(t, err)
	assert.Len(t, d.Objects, 3)
	assert.Len(t, d.Edges, 2)
}

// S2: backward traversal from o3 reaches o1 and o2, with o3 untagged
// upstream of nothing further.
func TestExpand_BackwardReachesAncestors(t *testing.T) {
	g, tr := newTestTraverser(t)
	seedChain(t, g)

	settings := provenance.TraversalSettings{
		BreadthFirst: true, Backward: true, IncludeNodes: true, IncludeEdges: true,
	}
	d, err := tr.Traverse(provenance.PIDAdmin, "plus:o3", settings)
	require.NoError(t, err)
	assert.Len(t, d.Objects, 3)
	assert.Len(t, d.Edges, 2)
}

// Testable property 5: traversal bounds. MaxDepth 1 from o1 forward reaches
// only o2, not o3.
func TestExpand_RespectsMaxDepth(t *testing.T) {
	g, tr := newTestTraverser(t)
	seedChain(t, g)

	settings := provenance.TraversalSettings{
		BreadthFirst: true, Forward: true, IncludeNodes: true, MaxDepth: 1,
	}
	d, err := tr.Traverse(provenance.PIDAdmin, "plus:o1", settings)
	require.NoError(t, err)
	var oids []string
	for _, o := range d.Objects {
		oids = append(oids, o.OID)
	}
	assert.Contains(t, oids, "plus:o1")
	assert.Contains(t, oids, "plus:o2")
	assert.NotContains(t, oids, "plus:o3")
}

// Testable property 5: the N cap stops collection once reached.
func TestExpand_RespectsNodeLimit(t *testing.T) {
	g, tr := newTestTraverser(t)
	seedChain(t, g)

	settings := provenance.TraversalSettings{
		BreadthFirst: true, Forward: true, IncludeNodes: true, N: 1,
	}
	d, err := tr.Traverse(provenance.PIDAdmin, "plus:o1", settings)
	require.NoError(t, err)
	assert.Len(t, d.Objects, 1)
}

// S5: an NPE edge is only followed across when FollowNPIDs is set.
func TestExpand_NPEOnlyFollowedWhenRequested(t *testing.T) {
	g, tr := newTestTraverser(t)
	seedChain(t, g)
	require.NoError(t, g.StoreNPE(&provenance.NPE{From: "plus:o1", To: "npid:external-1", Type: "external-ref"}))

	settings := provenance.TraversalSettings{
		BreadthFirst: true, Forward: true, IncludeNodes: true, IncludeNPEs: true,
	}
	d, err := tr.Traverse(provenance.PIDAdmin, "plus:o1", settings)
	require.NoError(t, err)
	assert.Len(t, d.NPEs, 1)
	// without followNPIDs the external id's node never gets hydrated as an object
	for _, o := range d.Objects {
		assert.NotEqual(t, "npid:external-1", o.OID)
	}
}

func TestExpand_UnknownStartIsNotFound(t *testing.T) {
	_, tr := newTestTraverser(t)
	_, err := tr.Traverse(provenance.PIDAdmin, "plus:nope", provenance.TraversalSettings{BreadthFirst: true, Forward: true})
	assert.Error(t, err)
}
