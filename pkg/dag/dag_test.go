package dag

import (
	"testing"

	"github.com/orneryd/provgraph/pkg/provenance"
	"github.com/stretchr/testify/assert"
)

func chainDAG() *provenance.LineageDAG {
	d := provenance.NewLineageDAG("plus:o1")
	d.AddObject(&provenance.PLUSObject{OID: "plus:o1", Name: "O1"})
	d.AddObject(&provenance.PLUSObject{OID: "plus:o2", Name: "O2"})
	d.AddObject(&provenance.PLUSObject{OID: "plus:o3", Name: "O3"})
	d.AddEdge(&provenance.PLUSEdge{From: "plus:o1", To: "plus:o2", Type: provenance.EdgeInputTo})
	d.AddEdge(&provenance.PLUSEdge{From: "plus:o2", To: "plus:o3", Type: provenance.EdgeGenerated})
	return d
}

// S2/testable property 8: heads have no inbound edge, feet have no outbound
// edge.
func TestTagHeadsFeet(t *testing.T) {
	d := chainDAG()
	tagHeadsFeet(d)

	v, ok := d.TagValue("plus:o1", "head")
	assert.True(t, ok)
	assert.Equal(t, "true", v)
	_, ok = d.TagValue("plus:o1", "foot")
	assert.False(t, ok)

	_, ok = d.TagValue("plus:o2", "head")
	assert.False(t, ok)
	_, ok = d.TagValue("plus:o2", "foot")
	assert.False(t, ok)

	v, ok = d.TagValue("plus:o3", "foot")
	assert.True(t, ok)
	assert.Equal(t, "true", v)
	_, ok = d.TagValue("plus:o3", "head")
	assert.False(t, ok)
}

// Testable property 8: an edge whose far endpoint never made it into the
// DAG marks the visible endpoint as having more available beyond the cut.
func TestTagDanglers(t *testing.T) {
	d := provenance.NewLineageDAG("plus:o2")
	d.AddObject(&provenance.PLUSObject{OID: "plus:o2", Name: "O2"})
	d.AddEdge(&provenance.PLUSEdge{From: "plus:o1", To: "plus:o2", Type: provenance.EdgeInputTo})
	d.AddEdge(&provenance.PLUSEdge{From: "plus:o2", To: "plus:o3", Type: provenance.EdgeGenerated})

	tagDanglers(d)

	v, ok := d.TagValue("plus:o2", "more-available")
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

// Testable property 7 / scenario S3: taint marker propagates forward along
// downstream edges.
func TestTraceTaint_PropagatesForward(t *testing.T) {
	d := chainDAG()
	d.AddObject(&provenance.PLUSObject{OID: "plus:taint-1", Name: "taint"})
	d.AddEdge(&provenance.PLUSEdge{From: "plus:taint-1", To: "plus:o1", Type: provenance.EdgeMarks})

	traceTaint(d)

	for _, oid := range []string{"plus:o1", "plus:o2", "plus:o3"} {
		v, ok := d.TagValue(oid, "tainted-by")
		assert.True(t, ok)
		assert.Equal(t, "plus:taint-1", v)
	}
}

func TestDrawInferredEdges_BridgesMissingNode(t *testing.T) {
	d := provenance.NewLineageDAG("plus:o1")
	d.AddObject(&provenance.PLUSObject{OID: "plus:o1", Name: "O1"})
	d.AddObject(&provenance.PLUSObject{OID: "plus:o3", Name: "O3"})
	// plus:o2 is never added to d.Objects: it was filtered from view.
	d.AddEdge(&provenance.PLUSEdge{From: "plus:o1", To: "plus:o2", Type: provenance.EdgeInputTo})
	d.AddEdge(&provenance.PLUSEdge{From: "plus:o2", To: "plus:o3", Type: provenance.EdgeGenerated})

	drawInferredEdges(d)

	a := assert.New(t)
	a.Len(d.Edges, 1)
	a.Equal("plus:o1", d.Edges[0].From)
	a.Equal("plus:o3", d.Edges[0].To)
	a.Equal(provenance.EdgeUnspecified, d.Edges[0].Type)
}

func TestProcess_RunsAllPassesWithoutError(t *testing.T) {
	d := chainDAG()
	assert.NotPanics(t, func() { Process(d) })
}
