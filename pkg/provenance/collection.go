package provenance

import "time"

// ProvenanceCollection is the in-memory container a writer hands to
// client.Report: an unordered bag of actors, objects, edges, and NPEs that
// GraphStore.StoreCollection persists element by element (§4.3
// store(collection)).
type ProvenanceCollection struct {
	Actors  []*PLUSActor
	Objects []*PLUSObject
	Edges   []*PLUSEdge
	NPEs    []*NPE
}

// NewProvenanceCollection returns an empty collection ready for appends.
func NewProvenanceCollection() *ProvenanceCollection {
	return &ProvenanceCollection{}
}

// AddObject appends o, a convenience for callers building a collection
// incrementally.
func (c *ProvenanceCollection) AddObject(o *PLUSObject) { c.Objects = append(c.Objects, o) }

// AddActor appends a.
func (c *ProvenanceCollection) AddActor(a *PLUSActor) { c.Actors = append(c.Actors, a) }

// AddEdge appends e.
func (c *ProvenanceCollection) AddEdge(e *PLUSEdge) { c.Edges = append(c.Edges, e) }

// AddNPE appends n.
func (c *ProvenanceCollection) AddNPE(n *NPE) { c.NPEs = append(c.NPEs, n) }

// LineageDAG is the result of a C6 traversal plus C7 post-processing: a
// provenance collection with a chosen focus node, per-node/edge tags
// (head/foot/more-available/taint markers), and a fingerprint.
type LineageDAG struct {
	ProvenanceCollection

	// Focus is the OID the traversal was requested for, even when the
	// traversal started from an NPID or pulled in many more nodes.
	Focus string

	// Tags maps an OID (or npeid) to a set of key/value annotations written
	// by the post-processing passes: "head", "foot", "more-available",
	// "tainted-by".
	Tags map[string]map[string]string

	fingerprint Fingerprint
}

// NewLineageDAG returns an empty DAG focused on focus.
func NewLineageDAG(focus string) *LineageDAG {
	return &LineageDAG{
		Focus: focus,
		Tags:  make(map[string]map[string]string),
	}
}

// Tag records key=value against id, creating the tag set on first use.
func (d *LineageDAG) Tag(id, key, value string) {
	set, ok := d.Tags[id]
	if !ok {
		set = make(map[string]string)
		d.Tags[id] = set
	}
	set[key] = value
}

// TagValue returns the value tagged key against id, and whether it was set.
func (d *LineageDAG) TagValue(id, key string) (string, bool) {
	set, ok := d.Tags[id]
	if !ok {
		return "", false
	}
	v, ok := set[key]
	return v, ok
}

// HasNode reports whether oid is among the DAG's collected objects.
func (d *LineageDAG) HasNode(oid string) bool {
	for _, o := range d.Objects {
		if o.OID == oid {
			return true
		}
	}
	return false
}

// RecordPhase adds a named timing to the DAG's fingerprint, in nanoseconds.
func (d *LineageDAG) RecordPhase(name string, dur time.Duration) {
	if d.fingerprint.Durations == nil {
		d.fingerprint.Durations = make(map[string]int64)
	}
	d.fingerprint.Durations[name] = dur.Nanoseconds()
}

// Fingerprint returns the accumulated timing/statistics for this DAG,
// filling in node/edge/NPE counts from the current collection state.
func (d *LineageDAG) Fingerprint() Fingerprint {
	fp := d.fingerprint
	fp.NodeCount = len(d.Objects)
	fp.EdgeCount = len(d.Edges)
	fp.NPECount = len(d.NPEs)
	return fp
}
