package client

import (
	"testing"

	"github.com/orneryd/provgraph/pkg/provenance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c := OpenMemory()
	t.Cleanup(func() { c.Close() })
	return c
}

func seedChain(t *testing.T, c *Client) {
	t.Helper()
	col := provenance.NewProvenanceCollection()
	col.AddActor(&provenance.PLUSActor{AID: "plus:a1", Name: "A1", Type: provenance.ActorUser})
	col.AddObject(&provenance.PLUSObject{OID: "plus:o1", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "O1"})
	col.AddObject(&provenance.PLUSObject{OID: "plus:o2", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "O2"})
	col.AddObject(&provenance.PLUSObject{OID: "plus:o3", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "O3"})
	col.AddEdge(&provenance.PLUSEdge{From: "plus:o1", To: "plus:o2", Type: provenance.EdgeInputTo})
	col.AddEdge(&provenance.PLUSEdge{From: "plus:o2", To: "plus:o3", Type: provenance.EdgeGenerated})
	n, err := c.Report(col)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestSetLogLevel_GatesDebugLogging(t *testing.T) {
	c := newTestClient(t)
	assert.False(t, c.cfg.ShouldLog("debug"), "default level should suppress debug")

	c.SetLogLevel("debug")
	assert.True(t, c.cfg.ShouldLog("debug"))

	// debugf must not panic whether or not the level is enabled.
	c.debugf("test message %d", 1)
	c.SetLogLevel("info")
	c.debugf("test message %d", 2)
}

func TestLabels_ReflectsStoredNodeKinds(t *testing.T) {
	c := newTestClient(t)
	seedChain(t, c)

	labels, err := c.Labels()
	require.NoError(t, err)
	assert.Contains(t, labels, "Provenance")
	assert.Contains(t, labels, "Actor")
}

// Testable property 2: a collection referencing a dangling edge is
// rejected at the facade boundary.
func TestReport_RejectsDanglingEdge(t *testing.T) {
	c := newTestClient(t)
	col := provenance.NewProvenanceCollection()
	col.AddObject(&provenance.PLUSObject{OID: "plus:o1", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "O1"})
	col.AddEdge(&provenance.PLUSEdge{From: "plus:o1", To: "plus:missing", Type: provenance.EdgeInputTo})

	_, err := c.Report(col)
	assert.Error(t, err)
}

// S6: reporting the same collection twice is idempotent.
func TestReport_DuplicateIsIdempotent(t *testing.T) {
	c := newTestClient(t)
	seedChain(t, c)

	col := provenance.NewProvenanceCollection()
	col.AddObject(&provenance.PLUSObject{OID: "plus:o1", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "O1-dup"})
	n, err := c.Report(col)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

// S1/S2 at the facade level: getGraph forward and backward.
func TestGetGraph_ForwardAndBackward(t *testing.T) {
	c := newTestClient(t)
	seedChain(t, c)
	admin := &User{PrivilegeClass: provenance.PIDAdmin}

	fwd, err := c.GetGraph(admin, "plus:o1", provenance.TraversalSettings{
		BreadthFirst: true, Forward: true, IncludeNodes: true, IncludeEdges: true,
	})
	require.NoError(t, err)
	assert.Len(t, fwd.Objects, 3)

	back, err := c.GetGraph(admin, "plus:o3", provenance.TraversalSettings{
		BreadthFirst: true, Backward: true, IncludeNodes: true, IncludeEdges: true,
	})
	require.NoError(t, err)
	assert.Len(t, back.Objects, 3)
}

// Testable property 6 / S4: surrogate filter monotonicity. A public viewer
// sees an object of a dominant privilege class only as a redacted
// surrogate, never as a full node nor as nothing (since PUBLIC still
// resolves through the default class's own dominance).
func TestGetSingleNode_SurrogateFilterForLowerViewer(t *testing.T) {
	c := newTestClient(t)
	obj := &provenance.PLUSObject{
		OID: "plus:secret", Type: provenance.TypeData, Subtype: provenance.SubtypeGeneric, Name: "top secret",
		Privilege: []provenance.PrivilegeClass{
			{PID: provenance.PIDPublic, Name: provenance.PIDPublic},
			{PID: provenance.PIDNationalSecurity, Name: provenance.PIDNationalSecurity},
		},
	}
	_, err := c.Store.StoreObject(obj)
	require.NoError(t, err)

	public := &User{PrivilegeClass: provenance.PIDPublic}
	got, err := c.GetSingleNode(public, "plus:secret")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "[REDACTED]", got.Name)

	admin := &User{PrivilegeClass: provenance.PIDAdmin}
	got, err = c.GetSingleNode(admin, "plus:secret")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "top secret", got.Name)
}

// Testable property 7 / S3: taint(o1) then getAllTaintSources(o3) finds the
// taint object upstream of o3 through the chain.
func TestTaint_PropagatesToDownstreamSources(t *testing.T) {
	c := newTestClient(t)
	seedChain(t, c)
	admin := &User{PrivilegeClass: provenance.PIDAdmin}

	taintObj, err := c.Taint(admin, "plus:o1", "contaminated input")
	require.NoError(t, err)
	require.NotNil(t, taintObj)

	sources, err := c.GetAllTaintSources(admin, "plus:o3")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, taintObj.OID, sources[0].OID)
}

func TestRemoveTaints_DropsMarksEdgesOnly(t *testing.T) {
	c := newTestClient(t)
	seedChain(t, c)
	admin := &User{PrivilegeClass: provenance.PIDAdmin}

	_, err := c.Taint(admin, "plus:o1", "bad batch")
	require.NoError(t, err)

	n, err := c.RemoveTaints("plus:o1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sources, err := c.GetAllTaintSources(admin, "plus:o1")
	require.NoError(t, err)
	assert.Len(t, sources, 0)
}

func TestQuery_FiltersByLabelAndProp(t *testing.T) {
	c := newTestClient(t)
	seedChain(t, c)
	admin := &User{PrivilegeClass: provenance.PIDAdmin}

	coll, err := c.Query(admin, "label:Provenance prop:oid=plus:o2 limit:10")
	require.NoError(t, err)
	require.Len(t, coll.Objects, 1)
	assert.Equal(t, "plus:o2", coll.Objects[0].OID)
}

func TestExists_TrueAndFalse(t *testing.T) {
	c := newTestClient(t)
	seedChain(t, c)

	ok, err := c.Exists("plus:o1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists("plus:nope")
	require.NoError(t, err)
	assert.False(t, ok)
}
